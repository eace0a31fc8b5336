package importfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	missingInputFileMessageTemplateConstant = "The file %s does not exist or the path used is incorrect.\nPlease check that the file exists and has the correct path and try again."
	inputReadErrorTemplateConstant          = "unable to read input file %s: %w"
	inputDecodeErrorTemplateConstant        = "unable to decode input file %s: %w"
	missingExternalIdentifierTemplate       = "ticket at position %d has no display_id"
	inputPathRequiredMessageConstant        = "input file path must be provided"
)

// MissingInputFileError reports an input path that does not point to a readable file.
type MissingInputFileError struct {
	Path string
}

// Error renders the operator-facing message.
func (missingError MissingInputFileError) Error() string {
	return fmt.Sprintf(missingInputFileMessageTemplateConstant, missingError.Path)
}

// InvalidTicketError reports a ticket record that cannot be migrated.
type InvalidTicketError struct {
	Position int
}

// Error describes the invalid record.
func (ticketError InvalidTicketError) Error() string {
	return fmt.Sprintf(missingExternalIdentifierTemplate, ticketError.Position)
}

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// FileStatter reports file metadata.
type FileStatter func(path string) (fs.FileInfo, error)

// Loader parses exported ticket files.
type Loader struct {
	readFile FileReader
	statFile FileStatter
}

// NewLoader builds a Loader backed by the operating system.
func NewLoader() *Loader {
	return NewLoaderWithFileSystem(os.ReadFile, os.Stat)
}

// NewLoaderWithFileSystem builds a Loader with substitutable file access.
func NewLoaderWithFileSystem(readFile FileReader, statFile FileStatter) *Loader {
	if readFile == nil {
		readFile = os.ReadFile
	}
	if statFile == nil {
		statFile = os.Stat
	}
	return &Loader{readFile: readFile, statFile: statFile}
}

// Exists reports whether the input path names a regular file.
func (loader *Loader) Exists(path string) bool {
	fileInfo, statError := loader.statFile(path)
	if statError != nil {
		return false
	}
	return !fileInfo.IsDir()
}

// Load reads every ticket from the input file in file order.
func (loader *Loader) Load(path string) ([]Ticket, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return nil, errors.New(inputPathRequiredMessageConstant)
	}
	if !loader.Exists(trimmedPath) {
		return nil, MissingInputFileError{Path: trimmedPath}
	}

	contents, readError := loader.readFile(trimmedPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, MissingInputFileError{Path: trimmedPath}
		}
		return nil, fmt.Errorf(inputReadErrorTemplateConstant, trimmedPath, readError)
	}

	return Decode(trimmedPath, contents)
}

// Decode parses an exported ticket array.
func Decode(sourceName string, contents []byte) ([]Ticket, error) {
	var records []ticketRecord
	if decodeError := json.Unmarshal(contents, &records); decodeError != nil {
		return nil, fmt.Errorf(inputDecodeErrorTemplateConstant, sourceName, decodeError)
	}

	tickets := make([]Ticket, 0, len(records))
	for recordIndex, record := range records {
		if len(record.HelpdeskTicket.ExternalID) == 0 {
			return nil, InvalidTicketError{Position: recordIndex + 1}
		}
		tickets = append(tickets, record.HelpdeskTicket)
	}
	return tickets, nil
}
