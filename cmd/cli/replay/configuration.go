package replay

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/temirov/noteport/internal/credentials"
	"github.com/temirov/noteport/internal/freshservice"
	replaycore "github.com/temirov/noteport/internal/replay"
	"github.com/temirov/noteport/internal/utils/flags"
)

const (
	// ModeStagingConstant selects the sandbox destination.
	ModeStagingConstant = "staging"

	// ModeProductionConstant selects the live destination.
	ModeProductionConstant = "production"

	defaultStagingEndpointConstant       = "https://cbportal-fs-sandbox.freshservice.com/api/v2/"
	defaultProductionEndpointConstant    = "https://cbportal.freshservice.com/api/v2/"
	defaultLogDirectoryConstant          = "./logs/"
	defaultTimeWaitMillisecondsConstant  = 1000
	stagingEndpointEnvironmentConstant   = "STAGING_ENDPOINT"
	productionEndpointEnvironmentConst   = "PRODUCTION_ENDPOINT"
	logDirectoryEnvironmentConstant      = "LOG_DIRECTORY"
	errorPayloadDirectoryEnvironmentName = "ERROR_PAYLOAD_DIRECTORY"
	configurationKeyInputFile            = "input_file"
	configurationKeyMode                 = "mode"
	configurationKeyTimeWait             = "time_wait"
	configurationKeyBigCommentsSupport   = "bigcomments_support"
	configurationKeyPrimaryActor         = "primary_actor"
	configurationKeySecondaryActor       = "secondary_actor"
	configurationKeyNumberToProcess      = "number_to_process"
	configurationKeyDryRun               = "dry_run"
	configurationKeyAssumeYes            = "assume_yes"
	configurationKeyTicketType           = "ticket_type"
	configurationKeyRequestTimeout       = "request_timeout"
	configurationKeyLogDirectory         = "log_directory"
	configurationKeyErrorPayloadDir      = "error_payload_directory"
	configurationKeySummaryFile          = "summary_file"
	configurationKeyAPIKeySource         = "api_key_source"
	configurationKeyStagingEndpoint      = "endpoints.staging"
	configurationKeyProductionEndpoint   = "endpoints.production"
	configurationKeySeparator            = "."
	missingInputFileMessageConstant      = "input file must be provided (--input-file)"
	invalidModeTemplateConstant          = "invalid mode: %w"
	negativeTimeWaitTemplateConstant     = "time wait must not be negative, got %d"
	missingPrimaryActorMessageConstant   = "primary actor must be a positive agent identifier (--primary-actor)"
	negativeSecondaryActorTemplate       = "secondary actor must not be negative, got %d"
	negativeTicketLimitTemplateConstant  = "number of tickets to process must not be negative, got %d"
	missingEndpointTemplateConstant      = "no endpoint configured for mode %q"
)

// EndpointConfiguration holds the destination base URLs per mode.
type EndpointConfiguration struct {
	Staging    string `mapstructure:"staging"`
	Production string `mapstructure:"production"`
}

// CommandConfiguration captures persisted settings of the replay command.
type CommandConfiguration struct {
	InputFile             string                `mapstructure:"input_file"`
	Mode                  string                `mapstructure:"mode"`
	TimeWait              int                   `mapstructure:"time_wait"`
	BigCommentsSupport    bool                  `mapstructure:"bigcomments_support"`
	PrimaryActor          int64                 `mapstructure:"primary_actor"`
	SecondaryActor        int64                 `mapstructure:"secondary_actor"`
	NumberToProcess       int                   `mapstructure:"number_to_process"`
	DryRun                bool                  `mapstructure:"dry_run"`
	AssumeYes             bool                  `mapstructure:"assume_yes"`
	TicketType            string                `mapstructure:"ticket_type"`
	RequestTimeout        time.Duration         `mapstructure:"request_timeout"`
	LogDirectory          string                `mapstructure:"log_directory"`
	ErrorPayloadDirectory string                `mapstructure:"error_payload_directory"`
	SummaryFile           string                `mapstructure:"summary_file"`
	APIKeySource          string                `mapstructure:"api_key_source"`
	Endpoints             EndpointConfiguration `mapstructure:"endpoints"`
}

// DefaultCommandConfiguration returns the built-in replay settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		TimeWait:       defaultTimeWaitMillisecondsConstant,
		TicketType:     replaycore.DefaultTicketTypeFilterConstant,
		RequestTimeout: freshservice.DefaultRequestTimeoutConstant,
		LogDirectory:   defaultLogDirectoryConstant,
		APIKeySource:   credentials.DefaultAPIKeySourceConstant,
		Endpoints: EndpointConfiguration{
			Staging:    defaultStagingEndpointConstant,
			Production: defaultProductionEndpointConstant,
		},
	}
}

// EnvironmentLookup reads an environment variable.
type EnvironmentLookup func(name string) (string, bool)

// DefaultConfigurationValues lists the viper defaults under prefix. Values from the
// STAGING_ENDPOINT, PRODUCTION_ENDPOINT, LOG_DIRECTORY and ERROR_PAYLOAD_DIRECTORY
// variables (usually loaded from .env) replace the built-in defaults.
func DefaultConfigurationValues(prefix string, lookupEnvironment EnvironmentLookup) map[string]any {
	defaults := DefaultCommandConfiguration()
	if lookupEnvironment != nil {
		defaults.Endpoints.Staging = environmentValueOr(lookupEnvironment, stagingEndpointEnvironmentConstant, defaults.Endpoints.Staging)
		defaults.Endpoints.Production = environmentValueOr(lookupEnvironment, productionEndpointEnvironmentConst, defaults.Endpoints.Production)
		defaults.LogDirectory = environmentValueOr(lookupEnvironment, logDirectoryEnvironmentConstant, defaults.LogDirectory)
		defaults.ErrorPayloadDirectory = environmentValueOr(lookupEnvironment, errorPayloadDirectoryEnvironmentName, defaults.ErrorPayloadDirectory)
	}

	trimmedPrefix := strings.TrimSuffix(strings.TrimSpace(prefix), configurationKeySeparator)
	qualify := func(key string) string {
		if len(trimmedPrefix) == 0 {
			return key
		}
		return trimmedPrefix + configurationKeySeparator + key
	}

	return map[string]any{
		qualify(configurationKeyInputFile):          defaults.InputFile,
		qualify(configurationKeyMode):               defaults.Mode,
		qualify(configurationKeyTimeWait):           defaults.TimeWait,
		qualify(configurationKeyBigCommentsSupport): defaults.BigCommentsSupport,
		qualify(configurationKeyPrimaryActor):       defaults.PrimaryActor,
		qualify(configurationKeySecondaryActor):     defaults.SecondaryActor,
		qualify(configurationKeyNumberToProcess):    defaults.NumberToProcess,
		qualify(configurationKeyDryRun):             defaults.DryRun,
		qualify(configurationKeyAssumeYes):          defaults.AssumeYes,
		qualify(configurationKeyTicketType):         defaults.TicketType,
		qualify(configurationKeyRequestTimeout):     defaults.RequestTimeout.String(),
		qualify(configurationKeyLogDirectory):       defaults.LogDirectory,
		qualify(configurationKeyErrorPayloadDir):    defaults.ErrorPayloadDirectory,
		qualify(configurationKeySummaryFile):        defaults.SummaryFile,
		qualify(configurationKeyAPIKeySource):       defaults.APIKeySource,
		qualify(configurationKeyStagingEndpoint):    defaults.Endpoints.Staging,
		qualify(configurationKeyProductionEndpoint): defaults.Endpoints.Production,
	}
}

// Sanitize trims text settings and normalises the mode.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.InputFile = strings.TrimSpace(configuration.InputFile)
	sanitized.Mode = strings.ToLower(strings.TrimSpace(configuration.Mode))
	sanitized.TicketType = strings.TrimSpace(configuration.TicketType)
	sanitized.LogDirectory = strings.TrimSpace(configuration.LogDirectory)
	sanitized.ErrorPayloadDirectory = strings.TrimSpace(configuration.ErrorPayloadDirectory)
	sanitized.SummaryFile = strings.TrimSpace(configuration.SummaryFile)
	sanitized.APIKeySource = strings.TrimSpace(configuration.APIKeySource)
	sanitized.Endpoints.Staging = strings.TrimSpace(configuration.Endpoints.Staging)
	sanitized.Endpoints.Production = strings.TrimSpace(configuration.Endpoints.Production)
	if len(sanitized.APIKeySource) == 0 {
		sanitized.APIKeySource = credentials.DefaultAPIKeySourceConstant
	}
	if sanitized.RequestTimeout <= 0 {
		sanitized.RequestTimeout = freshservice.DefaultRequestTimeoutConstant
	}
	return sanitized
}

// Validate reports the first setting that prevents a run.
func (configuration CommandConfiguration) Validate() error {
	if len(configuration.InputFile) == 0 {
		return errors.New(missingInputFileMessageConstant)
	}
	if _, choiceError := flags.NormalizeChoice(configuration.Mode, supportedModes); choiceError != nil {
		return fmt.Errorf(invalidModeTemplateConstant, choiceError)
	}

	switch {
	case configuration.TimeWait < 0:
		return fmt.Errorf(negativeTimeWaitTemplateConstant, configuration.TimeWait)
	case configuration.PrimaryActor <= 0:
		return errors.New(missingPrimaryActorMessageConstant)
	case configuration.SecondaryActor < 0:
		return fmt.Errorf(negativeSecondaryActorTemplate, configuration.SecondaryActor)
	case configuration.NumberToProcess < 0:
		return fmt.Errorf(negativeTicketLimitTemplateConstant, configuration.NumberToProcess)
	case len(configuration.Endpoint()) == 0:
		return fmt.Errorf(missingEndpointTemplateConstant, configuration.Mode)
	}
	return nil
}

// Endpoint returns the base URL for the configured mode.
func (configuration CommandConfiguration) Endpoint() string {
	switch configuration.Mode {
	case ModeStagingConstant:
		return configuration.Endpoints.Staging
	case ModeProductionConstant:
		return configuration.Endpoints.Production
	default:
		return ""
	}
}

// BaselineWait converts the configured wait into a duration.
func (configuration CommandConfiguration) BaselineWait() time.Duration {
	return time.Duration(configuration.TimeWait) * time.Millisecond
}

func environmentValueOr(lookupEnvironment EnvironmentLookup, name string, fallback string) string {
	value, found := lookupEnvironment(name)
	trimmedValue := strings.TrimSpace(value)
	if !found || len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}
