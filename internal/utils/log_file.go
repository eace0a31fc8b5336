package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logFileNameTemplateConstant            = "%s-%s_%d.log"
	logFileDateLayoutConstant              = "2006-01-02"
	logFileStemSeparatorConstant           = "."
	logFileFallbackStemConstant            = "run"
	logDirectoryPermissionsConstant        = 0o755
	logDirectoryCreationErrorTemplate      = "unable to create log directory %s: %w"
	logFileInspectionErrorTemplateConstant = "unable to inspect log file %s: %w"
)

// LogFilePathResolver picks a fresh per-run log file name inside a log directory.
type LogFilePathResolver struct {
	now           func() time.Time
	statFile      func(path string) (fs.FileInfo, error)
	makeDirectory func(path string, permissions fs.FileMode) error
}

// NewLogFilePathResolver builds a resolver backed by the operating system.
func NewLogFilePathResolver() *LogFilePathResolver {
	return &LogFilePathResolver{now: time.Now, statFile: os.Stat, makeDirectory: os.MkdirAll}
}

// NewLogFilePathResolverWithClock builds a resolver with a substitutable clock.
func NewLogFilePathResolverWithClock(now func() time.Time) *LogFilePathResolver {
	resolver := NewLogFilePathResolver()
	if now != nil {
		resolver.now = now
	}
	return resolver
}

// Resolve returns "{date}-{input stem}_{n}.log" for the first n that does not exist yet.
// The log directory is created when missing.
func (resolver *LogFilePathResolver) Resolve(logDirectory string, inputFilePath string) (string, error) {
	trimmedDirectory := strings.TrimSpace(logDirectory)
	if len(trimmedDirectory) > 0 {
		if directoryError := resolver.makeDirectory(trimmedDirectory, logDirectoryPermissionsConstant); directoryError != nil {
			return "", fmt.Errorf(logDirectoryCreationErrorTemplate, trimmedDirectory, directoryError)
		}
	}

	datePrefix := resolver.now().Format(logFileDateLayoutConstant)
	stem := inputFileStem(inputFilePath)

	for iteration := 1; ; iteration++ {
		candidatePath := filepath.Join(trimmedDirectory, fmt.Sprintf(logFileNameTemplateConstant, datePrefix, stem, iteration))
		_, statError := resolver.statFile(candidatePath)
		if statError == nil {
			continue
		}
		if errors.Is(statError, fs.ErrNotExist) {
			return candidatePath, nil
		}
		return "", fmt.Errorf(logFileInspectionErrorTemplateConstant, candidatePath, statError)
	}
}

func inputFileStem(inputFilePath string) string {
	baseName := filepath.Base(strings.TrimSpace(inputFilePath))
	stem, _, _ := strings.Cut(baseName, logFileStemSeparatorConstant)
	if len(stem) == 0 || stem == string(filepath.Separator) {
		return logFileFallbackStemConstant
	}
	return stem
}
