package ui

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	confirmationRetryMessageConstant = "Please enter 'y' for yes or 'n' for no.\n"
	confirmationYesShortConstant     = "y"
	confirmationYesLongConstant      = "yes"
	confirmationNoShortConstant      = "n"
	confirmationNoLongConstant       = "no"
)

// IOConfirmationPrompter asks yes/no questions over a reader and writer.
type IOConfirmationPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOConfirmationPrompter builds a prompter.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{reader: bufio.NewReader(input), writer: output}
}

// Confirm repeats the prompt until the answer is y/yes or n/no; end of input counts as no.
func (prompter *IOConfirmationPrompter) Confirm(prompt string) (bool, error) {
	for {
		if writeError := prompter.write(prompt); writeError != nil {
			return false, writeError
		}

		response, readError := prompter.reader.ReadString('\n')
		if readError != nil && !errors.Is(readError, io.EOF) {
			return false, readError
		}

		switch strings.ToLower(strings.TrimSpace(response)) {
		case confirmationYesShortConstant, confirmationYesLongConstant:
			return true, nil
		case confirmationNoShortConstant, confirmationNoLongConstant:
			return false, nil
		}

		if errors.Is(readError, io.EOF) {
			return false, nil
		}
		if writeError := prompter.write(confirmationRetryMessageConstant); writeError != nil {
			return false, writeError
		}
	}
}

func (prompter *IOConfirmationPrompter) write(message string) error {
	if prompter.writer == nil {
		return nil
	}
	_, writeError := io.WriteString(prompter.writer, message)
	return writeError
}
