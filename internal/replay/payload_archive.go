package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/noteport/internal/freshservice"
)

const (
	payloadArchiveFileNameTemplate     = "%s-%d-%d.json"
	payloadArchiveIndentConstant       = "  "
	payloadArchiveDirectoryPermissions = 0o755
	payloadArchiveFilePermissions      = 0o644
	payloadArchiveSeparatorReplacement = "_"
)

var payloadArchiveNameSanitizer = strings.NewReplacer("/", payloadArchiveSeparatorReplacement, "\\", payloadArchiveSeparatorReplacement)

type archivedPayload struct {
	ExternalID    string                   `json:"fdid"`
	DestinationID int64                    `json:"fsid"`
	NotePosition  int                      `json:"note_position"`
	StatusCode    int                      `json:"status_code,omitempty"`
	Reason        string                   `json:"reason"`
	Payload       freshservice.NotePayload `json:"payload"`
}

// DirectoryPayloadArchive writes each failed note payload as a JSON file.
type DirectoryPayloadArchive struct {
	directory string
}

// NewDirectoryPayloadArchive returns an archive rooted at directory.
func NewDirectoryPayloadArchive(directory string) *DirectoryPayloadArchive {
	return &DirectoryPayloadArchive{directory: directory}
}

// Archive stores the payload as "{fdid}-{fsid}-{position}.json" inside the archive directory.
// Path separators in the FDID are replaced so the file never lands elsewhere.
func (archive *DirectoryPayloadArchive) Archive(failure NoteReplayError, payload freshservice.NotePayload) error {
	fileStem := payloadArchiveNameSanitizer.Replace(failure.ExternalID.String())
	fileName := filepath.Base(fmt.Sprintf(payloadArchiveFileNameTemplate, fileStem, failure.DestinationID, failure.NotePosition))
	filePath := filepath.Join(archive.directory, fileName)

	if directoryError := os.MkdirAll(archive.directory, payloadArchiveDirectoryPermissions); directoryError != nil {
		return fmt.Errorf(payloadArchiveWriteErrorTemplateConstant, filePath, directoryError)
	}

	document := archivedPayload{
		ExternalID:    failure.ExternalID.String(),
		DestinationID: failure.DestinationID,
		NotePosition:  failure.NotePosition,
		StatusCode:    failure.StatusCode,
		Reason:        failure.Error(),
		Payload:       payload,
	}
	encodedDocument, encodeError := json.MarshalIndent(document, "", payloadArchiveIndentConstant)
	if encodeError != nil {
		return fmt.Errorf(payloadArchiveWriteErrorTemplateConstant, filePath, encodeError)
	}

	if writeError := os.WriteFile(filePath, encodedDocument, payloadArchiveFilePermissions); writeError != nil {
		return fmt.Errorf(payloadArchiveWriteErrorTemplateConstant, filePath, writeError)
	}
	return nil
}
