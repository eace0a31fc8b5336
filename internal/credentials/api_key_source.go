package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultAPIKeySourceConstant reads the key from the API_KEY environment variable.
	DefaultAPIKeySourceConstant = "env:" + DefaultAPIKeyVariableConstant

	// DefaultAPIKeyVariableConstant names the variable holding the destination API key.
	DefaultAPIKeyVariableConstant = "API_KEY"

	apiKeySourceSeparatorConstant         = ":"
	environmentSourceTypeValueConstant    = "env"
	fileSourceTypeValueConstant           = "file"
	dotenvSourceTypeValueConstant         = "dotenv"
	sourceMissingErrorMessageConstant     = "api key source must be provided"
	referenceMissingErrorTemplateConstant = "api key source %q requires a reference"
	unsupportedSourceTemplateConstant     = "unsupported api key source type %q"
	environmentKeyMissingTemplateConstant = "environment variable %s is not set"
	fileReadErrorTemplateConstant         = "unable to read api key file %s: %w"
	fileKeyEmptyErrorTemplateConstant     = "api key file %s is empty"
	dotenvReadErrorTemplateConstant       = "unable to read env file %s: %w"
	dotenvKeyMissingErrorTemplateConstant = "env file %s does not define %s"
)

// APIKeySourceType enumerates where the API key can be read from.
type APIKeySourceType string

// API key source types.
const (
	APIKeySourceEnvironment APIKeySourceType = APIKeySourceType(environmentSourceTypeValueConstant)
	APIKeySourceFile        APIKeySourceType = APIKeySourceType(fileSourceTypeValueConstant)
	APIKeySourceDotenv      APIKeySourceType = APIKeySourceType(dotenvSourceTypeValueConstant)
)

// APIKeySource points at the API key: an environment variable, a plain file, or a dotenv file.
type APIKeySource struct {
	Type      APIKeySourceType
	Reference string
}

// ParseAPIKeySource reads "env:NAME", "file:PATH" or "dotenv:PATH"; a bare value names an environment variable.
func ParseAPIKeySource(sourceValue string) (APIKeySource, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return APIKeySource{}, errors.New(sourceMissingErrorMessageConstant)
	}

	sourceType, reference, separated := strings.Cut(trimmedValue, apiKeySourceSeparatorConstant)
	if !separated {
		return APIKeySource{Type: APIKeySourceEnvironment, Reference: trimmedValue}, nil
	}

	normalizedType := APIKeySourceType(strings.ToLower(strings.TrimSpace(sourceType)))
	trimmedReference := strings.TrimSpace(reference)
	switch normalizedType {
	case APIKeySourceEnvironment, APIKeySourceFile, APIKeySourceDotenv:
		if len(trimmedReference) == 0 {
			return APIKeySource{}, fmt.Errorf(referenceMissingErrorTemplateConstant, normalizedType)
		}
		return APIKeySource{Type: normalizedType, Reference: trimmedReference}, nil
	default:
		return APIKeySource{}, fmt.Errorf(unsupportedSourceTemplateConstant, normalizedType)
	}
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// DotenvReader parses a dotenv file into key/value pairs.
type DotenvReader func(path string) (map[string]string, error)

// APIKeyResolver reads API keys from their configured source.
type APIKeyResolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
	dotenvReader      DotenvReader
}

// NewAPIKeyResolver builds a resolver backed by the process environment and file system.
func NewAPIKeyResolver() *APIKeyResolver {
	return NewAPIKeyResolverWithDependencies(nil, nil, nil)
}

// NewAPIKeyResolverWithDependencies builds a resolver with overridable lookups; nil values use the defaults.
func NewAPIKeyResolverWithDependencies(environmentLookup EnvironmentLookup, fileReader FileReader, dotenvReader DotenvReader) *APIKeyResolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileReader == nil {
		fileReader = os.ReadFile
	}
	if dotenvReader == nil {
		dotenvReader = readDotenvFile
	}
	return &APIKeyResolver{environmentLookup: environmentLookup, fileReader: fileReader, dotenvReader: dotenvReader}
}

// Resolve returns the trimmed API key; empty keys are errors.
func (resolver *APIKeyResolver) Resolve(source APIKeySource) (string, error) {
	switch source.Type {
	case APIKeySourceEnvironment:
		value, found := resolver.environmentLookup(source.Reference)
		trimmedValue := strings.TrimSpace(value)
		if !found || len(trimmedValue) == 0 {
			return "", fmt.Errorf(environmentKeyMissingTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	case APIKeySourceFile:
		contents, readError := resolver.fileReader(source.Reference)
		if readError != nil {
			return "", fmt.Errorf(fileReadErrorTemplateConstant, source.Reference, readError)
		}
		trimmedValue := strings.TrimSpace(string(contents))
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(fileKeyEmptyErrorTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	case APIKeySourceDotenv:
		values, readError := resolver.dotenvReader(source.Reference)
		if readError != nil {
			return "", fmt.Errorf(dotenvReadErrorTemplateConstant, source.Reference, readError)
		}
		trimmedValue := strings.TrimSpace(values[DefaultAPIKeyVariableConstant])
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(dotenvKeyMissingErrorTemplateConstant, source.Reference, DefaultAPIKeyVariableConstant)
		}
		return trimmedValue, nil
	default:
		return "", fmt.Errorf(unsupportedSourceTemplateConstant, source.Type)
	}
}

func readDotenvFile(path string) (map[string]string, error) {
	return godotenv.Read(path)
}
