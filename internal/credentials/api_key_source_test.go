package credentials_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/noteport/internal/credentials"
)

const testSubtestNameTemplateConstant = "%d_%s"

func TestParseAPIKeySource(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedSource credentials.APIKeySource
		expectError    bool
	}{
		{name: "default", input: credentials.DefaultAPIKeySourceConstant, expectedSource: credentials.APIKeySource{Type: credentials.APIKeySourceEnvironment, Reference: "API_KEY"}},
		{name: "bare_variable", input: "FRESHSERVICE_KEY", expectedSource: credentials.APIKeySource{Type: credentials.APIKeySourceEnvironment, Reference: "FRESHSERVICE_KEY"}},
		{name: "file", input: "file: /run/secrets/key ", expectedSource: credentials.APIKeySource{Type: credentials.APIKeySourceFile, Reference: "/run/secrets/key"}},
		{name: "dotenv", input: "DOTENV:.env", expectedSource: credentials.APIKeySource{Type: credentials.APIKeySourceDotenv, Reference: ".env"}},
		{name: "empty", input: "  ", expectError: true},
		{name: "missing_reference", input: "env:", expectError: true},
		{name: "unsupported", input: "vault:secret/key", expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtest *testing.T) {
			source, parseError := credentials.ParseAPIKeySource(testCase.input)
			if testCase.expectError {
				require.Error(subtest, parseError)
				return
			}
			require.NoError(subtest, parseError)
			require.Equal(subtest, testCase.expectedSource, source)
		})
	}
}

func TestAPIKeyResolverResolve(testInstance *testing.T) {
	environment := map[string]string{"API_KEY": " env-key ", "BLANK": "  "}
	lookup := func(key string) (string, bool) {
		value, found := environment[key]
		return value, found
	}
	files := map[string]string{"/secrets/key": "file-key\n", "/secrets/empty": "\n"}
	reader := func(path string) ([]byte, error) {
		contents, found := files[path]
		if !found {
			return nil, os.ErrNotExist
		}
		return []byte(contents), nil
	}
	resolver := credentials.NewAPIKeyResolverWithDependencies(lookup, reader, nil)

	dotenvPath := filepath.Join(testInstance.TempDir(), ".env")
	require.NoError(testInstance, os.WriteFile(dotenvPath, []byte("API_KEY=dotenv-key\nSTAGING_ENDPOINT=https://example.test/api/v2/\n"), 0o600))

	testCases := []struct {
		name        string
		source      credentials.APIKeySource
		expectedKey string
		expectError bool
	}{
		{name: "environment", source: credentials.APIKeySource{Type: credentials.APIKeySourceEnvironment, Reference: "API_KEY"}, expectedKey: "env-key"},
		{name: "environment_missing", source: credentials.APIKeySource{Type: credentials.APIKeySourceEnvironment, Reference: "MISSING"}, expectError: true},
		{name: "environment_blank", source: credentials.APIKeySource{Type: credentials.APIKeySourceEnvironment, Reference: "BLANK"}, expectError: true},
		{name: "file", source: credentials.APIKeySource{Type: credentials.APIKeySourceFile, Reference: "/secrets/key"}, expectedKey: "file-key"},
		{name: "file_empty", source: credentials.APIKeySource{Type: credentials.APIKeySourceFile, Reference: "/secrets/empty"}, expectError: true},
		{name: "file_missing", source: credentials.APIKeySource{Type: credentials.APIKeySourceFile, Reference: "/secrets/none"}, expectError: true},
		{name: "dotenv", source: credentials.APIKeySource{Type: credentials.APIKeySourceDotenv, Reference: dotenvPath}, expectedKey: "dotenv-key"},
		{name: "unsupported", source: credentials.APIKeySource{Type: "vault", Reference: "x"}, expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtest *testing.T) {
			apiKey, resolveError := resolver.Resolve(testCase.source)
			if testCase.expectError {
				require.Error(subtest, resolveError)
				return
			}
			require.NoError(subtest, resolveError)
			require.Equal(subtest, testCase.expectedKey, apiKey)
		})
	}
}

func TestAPIKeyResolverWrapsFileErrors(testInstance *testing.T) {
	resolver := credentials.NewAPIKeyResolverWithDependencies(nil, func(string) ([]byte, error) { return nil, os.ErrPermission }, nil)
	_, resolveError := resolver.Resolve(credentials.APIKeySource{Type: credentials.APIKeySourceFile, Reference: "/secrets/key"})
	require.True(testInstance, errors.Is(resolveError, os.ErrPermission))
}
