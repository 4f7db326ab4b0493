package model

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Migration represents a batch move or copy of documents between realms.
type Migration struct {
	ID            string
	SourceRealmID string
	TargetRealmID string
	State         MigrationState

	TotalDocuments     int
	ProcessedDocuments int

	Options *MigrationOptions

	CreatedBy    string
	ErrorMessage string

	RequestAt  int64
	CompleteAt int64
	DeleteAt   int64

	LockAcquiredBy *string
	LockAcquiredAt int64
}

// MigrationState represents the state of a migration.
type MigrationState string

const (
	// MigrationStateRequested is a migration that was accepted but not yet
	// picked up by the supervisor.
	MigrationStateRequested MigrationState = "migration-requested"
	// MigrationStateInProgress is a migration whose documents are being
	// processed.
	MigrationStateInProgress MigrationState = "migration-in-progress"
	// MigrationStateSucceeded is a migration that processed its whole batch.
	MigrationStateSucceeded MigrationState = "migration-succeeded"
	// MigrationStateFailed is a migration stopped by an infrastructure error.
	MigrationStateFailed MigrationState = "migration-failed"
	// MigrationStateCancelled is a migration cancelled before completion.
	MigrationStateCancelled MigrationState = "migration-cancelled"
)

// AllMigrationStatesPendingWork is a list of all migration states that the
// supervisor will attempt to transition towards a terminal state on the next
// "tick".
var AllMigrationStatesPendingWork = []MigrationState{
	MigrationStateRequested,
	MigrationStateInProgress,
}

// AllMigrationStatesCancellable is a list of all migration states from which
// cancellation is accepted. Terminal migrations cannot be cancelled.
var AllMigrationStatesCancellable = []MigrationState{
	MigrationStateRequested,
	MigrationStateInProgress,
}

// IsTerminal determines whether the migration reached a final state.
func (m *Migration) IsTerminal() bool {
	switch m.State {
	case MigrationStateSucceeded, MigrationStateFailed, MigrationStateCancelled:
		return true
	}
	return false
}

// MigrationFilter describes the parameters used to constrain a set of
// migrations.
type MigrationFilter struct {
	Paging
	IDs       []string
	RealmID   string
	CreatedBy string
	States    []MigrationState
}

// NewMigrationFromReader will create a Migration from an io.Reader with JSON
// data.
func NewMigrationFromReader(reader io.Reader) (*Migration, error) {
	var migration Migration
	err := json.NewDecoder(reader).Decode(&migration)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode migration")
	}

	return &migration, nil
}

// NewMigrationsFromReader will create a []*Migration from an io.Reader with
// JSON data.
func NewMigrationsFromReader(reader io.Reader) ([]*Migration, error) {
	migrations := []*Migration{}
	err := json.NewDecoder(reader).Decode(&migrations)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode migrations")
	}

	return migrations, nil
}
