package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/noteport/cmd/cli"
	"github.com/temirov/noteport/internal/utils"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
	snippetFileNameConstant          = "config.yaml"
	readmeEnvironmentPrefixConstant  = "NOTEPORTREADME"
)

var supportedReplayKeys = map[string]struct{}{
	"input_file":              {},
	"mode":                    {},
	"time_wait":               {},
	"bigcomments_support":     {},
	"primary_actor":           {},
	"secondary_actor":         {},
	"number_to_process":       {},
	"dry_run":                 {},
	"assume_yes":              {},
	"ticket_type":             {},
	"request_timeout":         {},
	"log_directory":           {},
	"error_payload_directory": {},
	"summary_file":            {},
	"api_key_source":          {},
	"endpoints":               {},
}

func TestReadmeConfigurationUsesSupportedKeys(testInstance *testing.T) {
	snippetContent := readReadmeConfigurationSnippet(testInstance)

	var document struct {
		Common map[string]any `yaml:"common"`
		Replay map[string]any `yaml:"replay"`
	}
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &document))
	require.NotEmpty(testInstance, document.Replay)

	for replayKey := range document.Replay {
		_, supported := supportedReplayKeys[replayKey]
		require.True(testInstance, supported, "unsupported replay key %s", replayKey)
	}
	require.Contains(testInstance, document.Common, "log_level")
}

func TestReadmeConfigurationLoads(testInstance *testing.T) {
	snippetPath := filepath.Join(testInstance.TempDir(), snippetFileNameConstant)
	require.NoError(testInstance, os.WriteFile(snippetPath, []byte(readReadmeConfigurationSnippet(testInstance)), 0o600))

	loader := utils.NewConfigurationLoader("config", "yaml", readmeEnvironmentPrefixConstant, nil)
	var configuration cli.ApplicationConfiguration
	_, loadError := loader.LoadConfiguration(snippetPath, map[string]any{}, &configuration)
	require.NoError(testInstance, loadError)

	replayConfiguration := configuration.Replay.Sanitize()
	require.Equal(testInstance, "staging", replayConfiguration.Mode)
	require.Equal(testInstance, 30*time.Second, replayConfiguration.RequestTimeout)
	require.Equal(testInstance, int64(50001234567), replayConfiguration.PrimaryActor)
	require.Equal(testInstance, "https://example-sandbox.freshservice.com/api/v2/", replayConfiguration.Endpoint())
}

func readReadmeConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	contentBytes, readError := os.ReadFile(filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant))
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	fenceEndRelativeIndex := strings.Index(contentText[headerIndex:], yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : headerIndex+fenceEndRelativeIndex])
}
