// Package utils holds the plumbing shared by noteport commands: the Viper backed
// ConfigurationLoader with dotenv bootstrap, the zap LoggerFactory and run log files,
// and small formatting helpers.
package utils
