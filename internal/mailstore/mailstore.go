package mailstore

import "github.com/qaaph-zyld/outlook-threads/pkg/types"

// MailStore supplies raw message records and persists folder moves. It is
// a thin I/O collaborator: all interaction with it happens strictly
// before or after the analysis core. Implementations are not required to
// be safe for concurrent use; callers serialize access.
type MailStore interface {
	// FetchMessages returns the normalized messages of a folder.
	FetchMessages(folder string) ([]types.Message, error)

	// ArchiveMessages moves the identified messages out of folder into
	// the archive folder.
	ArchiveMessages(folder string, messageIDs []string) error

	Close() error
}
