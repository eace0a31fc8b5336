// Package ui renders run events for people.
//
// ConsoleReporter prints the banner, progress bar and final report; LogEventWriter
// mirrors the same events into the structured run log. IOConfirmationPrompter asks
// the operator to confirm before any note is posted.
package ui
