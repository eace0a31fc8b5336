package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	logLevelWarningAliasConstant         = "warning"
	logFilePathRequiredMessageConstant   = "log file path must be provided"
	logFileOpenErrorTemplateConstant     = "unable to open log file %s: %w"
	logFilePermissionsConstant           = 0o644
	logFileTimestampKeyConstant          = "time"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// NormalizeLogLevel maps user input such as "WARNING" or "Debug" onto a LogLevel.
func NormalizeLogLevel(value string) LogLevel {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	if normalizedValue == logLevelWarningAliasConstant {
		return LogLevelWarn
	}
	return LogLevel(normalizedValue)
}

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct{}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[requestedLogFormat]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = encoding

	logger, buildError := configuration.Build()
	if buildError != nil {
		return nil, buildError
	}

	return logger, nil
}

// FileLogger is a JSON logger appending to a run log file.
type FileLogger struct {
	Logger *zap.Logger
	Path   string
	file   *os.File
}

// Close flushes buffered entries and closes the file.
func (fileLogger *FileLogger) Close() error {
	if fileLogger == nil || fileLogger.file == nil {
		return nil
	}
	syncError := fileLogger.file.Sync()
	closeError := fileLogger.file.Close()
	fileLogger.file = nil
	return errors.Join(syncError, closeError)
}

// CreateFileLogger produces a JSON logger that appends to the file at logFilePath.
func (factory *LoggerFactory) CreateFileLogger(requestedLogLevel LogLevel, logFilePath string) (*FileLogger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	trimmedPath := strings.TrimSpace(logFilePath)
	if len(trimmedPath) == 0 {
		return nil, errors.New(logFilePathRequiredMessageConstant)
	}

	logFile, openError := os.OpenFile(trimmedPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFilePermissionsConstant)
	if openError != nil {
		return nil, fmt.Errorf(logFileOpenErrorTemplateConstant, trimmedPath, openError)
	}

	encoderConfiguration := zap.NewProductionEncoderConfig()
	encoderConfiguration.TimeKey = logFileTimestampKeyConstant
	encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfiguration),
		zapcore.AddSync(logFile),
		zap.NewAtomicLevelAt(zapLogLevel),
	)

	return &FileLogger{Logger: zap.New(core), Path: trimmedPath, file: logFile}, nil
}
