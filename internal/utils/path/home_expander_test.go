package pathutils_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/noteport/internal/utils/path"
)

const (
	testHomeDirectoryConstant           = "/home/operator"
	testHomeExpanderSubtestNameTemplate = "%d_%s"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name           string
		provider       pathutils.HomeDirectoryProvider
		candidatePath  string
		expectedResult string
	}{
		{
			name:           "bare_tilde",
			provider:       fixedHomeDirectory(testHomeDirectoryConstant),
			candidatePath:  "~",
			expectedResult: testHomeDirectoryConstant,
		},
		{
			name:           "tilde_prefix",
			provider:       fixedHomeDirectory(testHomeDirectoryConstant),
			candidatePath:  "~/exports/tickets.json",
			expectedResult: filepath.Join(testHomeDirectoryConstant, "exports", "tickets.json"),
		},
		{
			name:           "absolute_path_unchanged",
			provider:       fixedHomeDirectory(testHomeDirectoryConstant),
			candidatePath:  "/data/tickets.json",
			expectedResult: "/data/tickets.json",
		},
		{
			name:           "other_user_unchanged",
			provider:       fixedHomeDirectory(testHomeDirectoryConstant),
			candidatePath:  "~someone/tickets.json",
			expectedResult: "~someone/tickets.json",
		},
		{
			name: "provider_failure_unchanged",
			provider: func() (string, error) {
				return "", errors.New("no home")
			},
			candidatePath:  "~/tickets.json",
			expectedResult: "~/tickets.json",
		},
		{
			name:           "empty_path",
			provider:       fixedHomeDirectory(testHomeDirectoryConstant),
			candidatePath:  "",
			expectedResult: "",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testHomeExpanderSubtestNameTemplate, testCaseIndex, testCase.name), func(subtest *testing.T) {
			expander := pathutils.NewHomeExpanderWithProvider(testCase.provider)
			require.Equal(subtest, testCase.expectedResult, expander.Expand(testCase.candidatePath))
		})
	}
}

func TestHomeExpanderExpandAll(testInstance *testing.T) {
	inputFile := "~/tickets.json"
	logDirectory := "./logs"
	summaryFile := ""

	expander := pathutils.NewHomeExpanderWithProvider(fixedHomeDirectory(testHomeDirectoryConstant))
	expander.ExpandAll(&inputFile, &logDirectory, &summaryFile, nil)

	require.Equal(testInstance, filepath.Join(testHomeDirectoryConstant, "tickets.json"), inputFile)
	require.Equal(testInstance, "./logs", logDirectory)
	require.Empty(testInstance, summaryFile)
}

func fixedHomeDirectory(homeDirectory string) pathutils.HomeDirectoryProvider {
	return func() (string, error) {
		return homeDirectory, nil
	}
}
