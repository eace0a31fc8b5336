// Package cli constructs the noteport command-line interface. It wires the Cobra
// root command, the Viper configuration loader with its embedded defaults and
// .env bootstrap, and the zap diagnostic logger, then registers the replay command.
package cli
