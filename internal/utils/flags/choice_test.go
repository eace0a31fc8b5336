package flags

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSubtestNameTemplateConstant = "%d_%s"

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "no_default",
			choices:        []string{"staging", "production"},
			description:    "Destination API mode.",
			expectedOutput: "`<staging|production>` Destination API mode.",
		},
		{
			name:           "default_highlighted",
			defaultChoice:  "production",
			choices:        []string{"staging", "production"},
			description:    "Destination API mode.",
			expectedOutput: "`<staging|PRODUCTION>` Destination API mode.",
		},
		{
			name:           "empty_description",
			defaultChoice:  "staging",
			choices:        []string{"staging", "production"},
			expectedOutput: "`<STAGING|production>`",
		},
		{
			name:           "duplicates_and_whitespace",
			choices:        []string{" staging ", "Staging", "", "production"},
			description:    "Mode.",
			expectedOutput: "`<staging|production>` Mode.",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtest *testing.T) {
			require.Equal(subtest, testCase.expectedOutput, FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestNormalizeChoice(testInstance *testing.T) {
	choices := []string{"staging", "production"}

	testCases := []struct {
		name           string
		value          string
		expectedChoice string
		expectedError  string
	}{
		{name: "exact", value: "staging", expectedChoice: "staging"},
		{name: "mixed_case", value: " Production ", expectedChoice: "production"},
		{name: "unsupported", value: "s", expectedError: "unsupported value \"s\", expected one of staging, production"},
		{name: "empty", value: "", expectedError: "unsupported value \"(empty)\", expected one of staging, production"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtest *testing.T) {
			choice, choiceError := NormalizeChoice(testCase.value, choices)
			if len(testCase.expectedError) > 0 {
				require.EqualError(subtest, choiceError, testCase.expectedError)
				return
			}
			require.NoError(subtest, choiceError)
			require.Equal(subtest, testCase.expectedChoice, choice)
		})
	}
}
