package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	environmentFilesContextKeyConstant      = commandContextKey("environmentFiles")
)

type commandContextKey string

// CommandContextAccessor stores configuration provenance on command contexts so that
// subcommands can record where their settings came from.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, configurationFilePathAvailable := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	if !configurationFilePathAvailable {
		return "", false
	}
	return configurationFilePath, true
}

// WithEnvironmentFiles attaches the dotenv files that were loaded.
func (accessor CommandContextAccessor) WithEnvironmentFiles(parentContext context.Context, environmentFiles []string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	duplicatedFiles := append([]string(nil), environmentFiles...)
	return context.WithValue(parentContext, environmentFilesContextKeyConstant, duplicatedFiles)
}

// EnvironmentFiles extracts the loaded dotenv files from the provided context.
func (accessor CommandContextAccessor) EnvironmentFiles(executionContext context.Context) ([]string, bool) {
	if executionContext == nil {
		return nil, false
	}
	environmentFiles, environmentFilesAvailable := executionContext.Value(environmentFilesContextKeyConstant).([]string)
	return environmentFiles, environmentFilesAvailable
}
