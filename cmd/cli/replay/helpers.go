package replay

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	replaycore "github.com/temirov/noteport/internal/replay"
	pathutils "github.com/temirov/noteport/internal/utils/path"
)

// InterruptSubscription starts delivering interrupt signals and returns a function that stops delivery.
type InterruptSubscription func() (<-chan os.Signal, func())

// SubscribeToInterrupts relays SIGINT.
func SubscribeToInterrupts() (<-chan os.Signal, func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	return signals, func() {
		signal.Stop(signals)
	}
}

// watchInterrupts sets the token on the first interrupt; the run then stops between tickets.
func watchInterrupts(subscribe InterruptSubscription, token *replaycore.CancellationToken, observer replaycore.EventObserver) func() {
	if subscribe == nil {
		subscribe = SubscribeToInterrupts
	}
	signals, unsubscribe := subscribe()
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case _, open := <-signals:
				if !open {
					return
				}
				if token.Request() {
					observer.Observe(replaycore.Event{Kind: replaycore.EventCancellationRequested})
				}
			}
		}
	}()

	return func() {
		if unsubscribe != nil {
			unsubscribe()
		}
		close(done)
	}
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) (CommandConfiguration, error) {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	flagSet := command.Flags()
	overrideString(flagSet, flagInputFileName, &configuration.InputFile)
	overrideString(flagSet, flagModeName, &configuration.Mode)
	overrideString(flagSet, flagTicketTypeName, &configuration.TicketType)
	overrideString(flagSet, flagSummaryFileName, &configuration.SummaryFile)
	overrideString(flagSet, flagLogDirectoryName, &configuration.LogDirectory)
	overrideString(flagSet, flagErrorPayloadDirectoryName, &configuration.ErrorPayloadDirectory)
	overrideString(flagSet, flagAPIKeySourceName, &configuration.APIKeySource)
	if flagSet.Changed(flagTimeWaitName) {
		configuration.TimeWait, _ = flagSet.GetInt(flagTimeWaitName)
	}
	if flagSet.Changed(flagNumberToProcessName) {
		configuration.NumberToProcess, _ = flagSet.GetInt(flagNumberToProcessName)
	}
	if flagSet.Changed(flagPrimaryActorName) {
		configuration.PrimaryActor, _ = flagSet.GetInt64(flagPrimaryActorName)
	}
	if flagSet.Changed(flagSecondaryActorName) {
		configuration.SecondaryActor, _ = flagSet.GetInt64(flagSecondaryActorName)
	}
	if flagSet.Changed(flagRequestTimeoutName) {
		configuration.RequestTimeout, _ = flagSet.GetDuration(flagRequestTimeoutName)
	}
	overrideBool(flagSet, flagBigCommentsName, &configuration.BigCommentsSupport)
	overrideBool(flagSet, flagDryRunName, &configuration.DryRun)
	overrideBool(flagSet, flagAssumeYesName, &configuration.AssumeYes)

	configuration = configuration.Sanitize()

	pathutils.NewHomeExpander().ExpandAll(
		&configuration.InputFile,
		&configuration.LogDirectory,
		&configuration.ErrorPayloadDirectory,
		&configuration.SummaryFile,
	)

	if validationError := configuration.Validate(); validationError != nil {
		return CommandConfiguration{}, validationError
	}
	return configuration, nil
}

func overrideString(flagSet *pflag.FlagSet, flagName string, target *string) {
	if !flagSet.Changed(flagName) {
		return
	}
	if value, valueError := flagSet.GetString(flagName); valueError == nil {
		*target = value
	}
}

func overrideBool(flagSet *pflag.FlagSet, flagName string, target *bool) {
	if !flagSet.Changed(flagName) {
		return
	}
	if value, valueError := flagSet.GetBool(flagName); valueError == nil {
		*target = value
	}
}

func (builder *CommandBuilder) resolveEnvironmentLookup() EnvironmentLookup {
	if builder.EnvironmentLookup == nil {
		return os.LookupEnv
	}
	return builder.EnvironmentLookup
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
