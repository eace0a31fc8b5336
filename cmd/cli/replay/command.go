package replay

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/noteport/internal/credentials"
	"github.com/temirov/noteport/internal/freshservice"
	"github.com/temirov/noteport/internal/importfile"
	replaycore "github.com/temirov/noteport/internal/replay"
	"github.com/temirov/noteport/internal/ui"
	"github.com/temirov/noteport/internal/utils"
	"github.com/temirov/noteport/internal/utils/flags"
)

const (
	commandNameConstant                    = "replay"
	commandShortDescriptionConstant        = "Replay exported ticket notes onto Freshservice tickets"
	commandLongDescriptionConstant         = "replay reads a Freshdesk ticket export, finds the Freshservice ticket carrying each FDID and posts the exported notes in their original order, skipping tickets that were already migrated."
	toolNameConstant                       = "noteport"
	defaultToolVersionConstant             = "dev"
	flagInputFileName                      = "input-file"
	flagInputFileShorthand                 = "i"
	flagInputFileUsage                     = "Path to the exported tickets JSON file."
	flagModeName                           = "mode"
	flagModeShorthand                      = "m"
	flagModeUsage                          = "Destination API mode."
	flagTimeWaitName                       = "time-wait"
	flagTimeWaitShorthand                  = "t"
	flagTimeWaitUsage                      = "Milliseconds to wait between API calls."
	flagBigCommentsName                    = "bigcomments-support"
	flagBigCommentsShorthand               = "b"
	flagBigCommentsUsage                   = "Replay tickets with 50 or more notes."
	flagPrimaryActorName                   = "primary-actor"
	flagPrimaryActorShorthand              = "p"
	flagPrimaryActorUsage                  = "Agent ID that authored the original migration."
	flagSecondaryActorName                 = "secondary-actor"
	flagSecondaryActorShorthand            = "s"
	flagSecondaryActorUsage                = "Agent ID used by earlier note replays; tickets it touched are skipped."
	flagNumberToProcessName                = "number-to-process"
	flagNumberToProcessShorthand           = "n"
	flagNumberToProcessUsage               = "Number of tickets to process, 0 for all."
	flagDryRunName                         = "dry-run"
	flagDryRunShorthand                    = "d"
	flagDryRunUsage                        = "Check eligibility without posting notes."
	flagAssumeYesName                      = "yes"
	flagAssumeYesShorthand                 = "y"
	flagAssumeYesUsage                     = "Skip the confirmation prompt."
	flagTicketTypeName                     = "ticket-type"
	flagTicketTypeUsage                    = "Ticket type filter used when resolving tickets; empty disables it."
	flagRequestTimeoutName                 = "request-timeout"
	flagRequestTimeoutUsage                = "Timeout of a single API request."
	flagSummaryFileName                    = "summary-file"
	flagSummaryFileUsage                   = "Write the run summary as YAML to this path."
	flagLogDirectoryName                   = "log-directory"
	flagLogDirectoryUsage                  = "Directory receiving the run log."
	flagErrorPayloadDirectoryName          = "error-payload-directory"
	flagErrorPayloadDirectoryUsage         = "Directory receiving payloads of notes that failed to post."
	flagAPIKeySourceName                   = "api-key-source"
	flagAPIKeySourceUsage                  = "Where to read the API key: env:NAME, file:PATH or dotenv:PATH."
	confirmationPromptConstant             = "Do you want to proceed? (y/n): "
	declinedMessageConstant                = "User opted not to proceed. Exiting script."
	logMessageRunLogOpenedConstant         = "Run log opened"
	logMessageSummaryWrittenConstant       = "Run summary written"
	logFieldRunIdentifierConstant          = "run_id"
	logFieldLogFileConstant                = "log_file"
	logFieldSummaryFileConstant            = "summary_file"
	logFieldInputFileConstant              = "input_file"
	logFieldConfigurationFileConstant      = "config_file"
	logFieldEnvironmentFilesConstant       = "environment_files"
	runLogPreparationErrorTemplateConstant = "unable to prepare run log: %w"
	confirmationErrorTemplateConstant      = "unable to read confirmation: %w"
	apiKeySourceErrorTemplateConstant      = "invalid api key source: %w"
	apiKeyResolutionErrorTemplateConstant  = "unable to read api key: %w"
	clientCreationErrorTemplateConstant    = "unable to create destination client: %w"
)

var supportedModes = []string{ModeStagingConstant, ModeProductionConstant}

// LoggerProvider yields the diagnostic logger.
type LoggerProvider func() *zap.Logger

// LogLevelProvider yields the level used for the run log file.
type LogLevelProvider func() utils.LogLevel

// ConfigurationProvider yields the loaded replay configuration.
type ConfigurationProvider func() CommandConfiguration

// ConfirmationPrompter asks the operator a yes/no question.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// PrompterFactory constructs confirmation prompters scoped to a command.
type PrompterFactory func(*cobra.Command) ConfirmationPrompter

// CommandBuilder assembles the replay cobra command with substitutable dependencies.
type CommandBuilder struct {
	LoggerProvider         LoggerProvider
	LogLevelProvider       LogLevelProvider
	ConfigurationProvider  ConfigurationProvider
	PrompterFactory        PrompterFactory
	HTTPClient             freshservice.HTTPDoer
	Sleeper                freshservice.Sleeper
	Clock                  freshservice.Clock
	EnvironmentLookup      EnvironmentLookup
	APIKeyResolver         *credentials.APIKeyResolver
	InterruptSubscription  InterruptSubscription
	RunIdentifierGenerator func() string
	ToolVersion            string
}

// Build constructs the replay command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	flagSet := command.Flags()
	flagSet.StringP(flagInputFileName, flagInputFileShorthand, "", flagInputFileUsage)
	flagSet.StringP(flagModeName, flagModeShorthand, "", flags.FormatChoiceUsage("", supportedModes, flagModeUsage))
	flagSet.IntP(flagTimeWaitName, flagTimeWaitShorthand, defaultTimeWaitMillisecondsConstant, flagTimeWaitUsage)
	flagSet.BoolP(flagBigCommentsName, flagBigCommentsShorthand, false, flagBigCommentsUsage)
	flagSet.Int64P(flagPrimaryActorName, flagPrimaryActorShorthand, 0, flagPrimaryActorUsage)
	flagSet.Int64P(flagSecondaryActorName, flagSecondaryActorShorthand, 0, flagSecondaryActorUsage)
	flagSet.IntP(flagNumberToProcessName, flagNumberToProcessShorthand, 0, flagNumberToProcessUsage)
	flagSet.BoolP(flagDryRunName, flagDryRunShorthand, false, flagDryRunUsage)
	flagSet.BoolP(flagAssumeYesName, flagAssumeYesShorthand, false, flagAssumeYesUsage)
	flagSet.String(flagTicketTypeName, replaycore.DefaultTicketTypeFilterConstant, flagTicketTypeUsage)
	flagSet.Duration(flagRequestTimeoutName, freshservice.DefaultRequestTimeoutConstant, flagRequestTimeoutUsage)
	flagSet.String(flagSummaryFileName, "", flagSummaryFileUsage)
	flagSet.String(flagLogDirectoryName, defaultLogDirectoryConstant, flagLogDirectoryUsage)
	flagSet.String(flagErrorPayloadDirectoryName, "", flagErrorPayloadDirectoryUsage)
	flagSet.String(flagAPIKeySourceName, credentials.DefaultAPIKeySourceConstant, flagAPIKeySourceUsage)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration, configurationError := builder.parseConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	clock := builder.resolveClock()
	startedAt := clock.Now()
	diagnosticLogger := resolveLogger(builder.LoggerProvider)

	tickets, loadError := importfile.NewLoader().Load(configuration.InputFile)
	if loadError != nil {
		return loadError
	}
	selectedTickets := importfile.Truncate(tickets, configuration.NumberToProcess)

	runIdentifier := builder.resolveRunIdentifier()
	runLog, runLogError := builder.openRunLog(configuration, clock)
	if runLogError != nil {
		return runLogError
	}
	defer func() {
		_ = runLog.Close()
	}()

	runLogger := zap.New(zapcore.NewTee(diagnosticLogger.Core(), runLog.Logger.Core())).
		With(zap.String(logFieldRunIdentifierConstant, runIdentifier))
	contextAccessor := utils.NewCommandContextAccessor()
	configurationFilePath, _ := contextAccessor.ConfigurationFilePath(command.Context())
	environmentFiles, _ := contextAccessor.EnvironmentFiles(command.Context())
	runLogger.Info(
		logMessageRunLogOpenedConstant,
		zap.String(logFieldLogFileConstant, runLog.Path),
		zap.String(logFieldInputFileConstant, configuration.InputFile),
		zap.String(logFieldConfigurationFileConstant, configurationFilePath),
		zap.Strings(logFieldEnvironmentFilesConstant, environmentFiles),
	)

	observers := replaycore.ObserverGroup{
		ui.NewConsoleReporter(command.OutOrStdout(), ui.ColorsEnabled(ui.EnvironmentLookup(builder.resolveEnvironmentLookup()))),
		ui.NewLogEventWriter(runLogger),
	}
	observers.Observe(replaycore.Event{Kind: replaycore.EventRunPlanned, Plan: &replaycore.RunPlan{
		ToolName:        toolNameConstant,
		ToolVersion:     builder.resolveToolVersion(),
		RunIdentifier:   runIdentifier,
		Mode:            configuration.Mode,
		StartedAt:       startedAt,
		TicketCount:     len(selectedTickets),
		NoteCount:       importfile.CountNotes(selectedTickets),
		EstimatedLength: importfile.EstimateRunTime(selectedTickets),
		DryRun:          configuration.DryRun,
	}})

	if !configuration.AssumeYes {
		confirmed, confirmError := builder.resolvePrompter(command).Confirm(confirmationPromptConstant)
		if confirmError != nil {
			return fmt.Errorf(confirmationErrorTemplateConstant, confirmError)
		}
		if !confirmed {
			fmt.Fprintln(command.OutOrStdout(), declinedMessageConstant)
			runLogger.Info(declinedMessageConstant)
			return nil
		}
	}

	apiKey, apiKeyError := builder.resolveAPIKey(configuration.APIKeySource)
	if apiKeyError != nil {
		return apiKeyError
	}

	statistics := replaycore.NewRunStatistics(startedAt)
	client, clientError := freshservice.NewClient(freshservice.ClientConfiguration{
		BaseURL:        configuration.Endpoint(),
		APIKey:         apiKey,
		BaselineWait:   configuration.BaselineWait(),
		RequestTimeout: configuration.RequestTimeout,
	}, freshservice.ClientDependencies{
		HTTPClient:   builder.HTTPClient,
		Sleeper:      builder.Sleeper,
		Clock:        clock,
		CallRecorder: statistics,
		Logger:       runLogger,
	})
	if clientError != nil {
		return fmt.Errorf(clientCreationErrorTemplateConstant, clientError)
	}

	var payloadArchive replaycore.FailedPayloadArchive
	if len(configuration.ErrorPayloadDirectory) > 0 {
		payloadArchive = replaycore.NewDirectoryPayloadArchive(configuration.ErrorPayloadDirectory)
	}

	cancellation := replaycore.NewCancellationToken()
	stopWatchingInterrupts := watchInterrupts(builder.InterruptSubscription, cancellation, observers)
	defer stopWatchingInterrupts()

	controller := replaycore.NewController(replaycore.ControllerDependencies{
		Resolver:    replaycore.NewTicketResolver(client, configuration.TicketType),
		Eligibility: replaycore.NewEligibilityChecker(client),
		Replayer: replaycore.NewCommentReplayer(replaycore.CommentReplayerDependencies{
			Creator:  client,
			Sleeper:  builder.Sleeper,
			Observer: observers,
			Archive:  payloadArchive,
			Logger:   runLogger,
		}),
		Pacer:        client,
		Sleeper:      builder.Sleeper,
		Clock:        clock,
		Observer:     observers,
		Statistics:   statistics,
		Cancellation: cancellation,
	}, replaycore.ControllerOptions{
		PrimaryActor:      configuration.PrimaryActor,
		SecondaryActor:    configuration.SecondaryActor,
		DryRun:            configuration.DryRun,
		BigCommentSupport: configuration.BigCommentsSupport,
		MaxTickets:        configuration.NumberToProcess,
	})

	summary, runError := controller.Run(resolveContext(command), selectedTickets)
	if runError != nil {
		return runError
	}

	if len(configuration.SummaryFile) > 0 {
		if summaryError := replaycore.WriteSummaryFile(configuration.SummaryFile, summary, runIdentifier); summaryError != nil {
			return summaryError
		}
		runLogger.Info(logMessageSummaryWrittenConstant, zap.String(logFieldSummaryFileConstant, configuration.SummaryFile))
	}

	return nil
}

func (builder *CommandBuilder) openRunLog(configuration CommandConfiguration, clock freshservice.Clock) (*utils.FileLogger, error) {
	logFilePath, resolveError := utils.NewLogFilePathResolverWithClock(clock.Now).Resolve(configuration.LogDirectory, configuration.InputFile)
	if resolveError != nil {
		return nil, fmt.Errorf(runLogPreparationErrorTemplateConstant, resolveError)
	}
	runLog, createError := utils.NewLoggerFactory().CreateFileLogger(builder.resolveLogLevel(), logFilePath)
	if createError != nil {
		return nil, fmt.Errorf(runLogPreparationErrorTemplateConstant, createError)
	}
	return runLog, nil
}

func (builder *CommandBuilder) resolveAPIKey(sourceValue string) (string, error) {
	source, parseError := credentials.ParseAPIKeySource(sourceValue)
	if parseError != nil {
		return "", fmt.Errorf(apiKeySourceErrorTemplateConstant, parseError)
	}
	resolver := builder.APIKeyResolver
	if resolver == nil {
		resolver = credentials.NewAPIKeyResolver()
	}
	apiKey, resolveError := resolver.Resolve(source)
	if resolveError != nil {
		return "", fmt.Errorf(apiKeyResolutionErrorTemplateConstant, resolveError)
	}
	return apiKey, nil
}

func (builder *CommandBuilder) resolvePrompter(command *cobra.Command) ConfirmationPrompter {
	if builder.PrompterFactory != nil {
		if prompter := builder.PrompterFactory(command); prompter != nil {
			return prompter
		}
	}
	return ui.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
}

func (builder *CommandBuilder) resolveClock() freshservice.Clock {
	if builder.Clock == nil {
		return freshservice.SystemClock{}
	}
	return builder.Clock
}

func (builder *CommandBuilder) resolveRunIdentifier() string {
	if builder.RunIdentifierGenerator == nil {
		return uuid.NewString()
	}
	return builder.RunIdentifierGenerator()
}

func (builder *CommandBuilder) resolveLogLevel() utils.LogLevel {
	if builder.LogLevelProvider == nil {
		return utils.LogLevelInfo
	}
	return builder.LogLevelProvider()
}

func (builder *CommandBuilder) resolveToolVersion() string {
	if len(builder.ToolVersion) == 0 {
		return defaultToolVersionConstant
	}
	return builder.ToolVersion
}

func resolveContext(command *cobra.Command) context.Context {
	if executionContext := command.Context(); executionContext != nil {
		return executionContext
	}
	return context.Background()
}
