package model

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// MigrationItem records the per-document outcome within a migration.
type MigrationItem struct {
	ID               string
	MigrationID      string
	SourceDocumentID string
	TargetDocumentID string
	Position         int
	State            MigrationItemState
	MigratedStages   []Stage
	ErrorMessage     string
	RequestAt        int64
	CompleteAt       int64
}

// MigrationItemState represents the state of a single document's migration.
type MigrationItemState string

const (
	// MigrationItemStatePending is a document not yet processed.
	MigrationItemStatePending MigrationItemState = "migration-item-pending"
	// MigrationItemStateSucceeded is a document copied or moved successfully.
	MigrationItemStateSucceeded MigrationItemState = "migration-item-succeeded"
	// MigrationItemStateFailed is a document whose copy or move failed.
	MigrationItemStateFailed MigrationItemState = "migration-item-failed"
)

// MigrationItemFilter describes the parameters used to constrain a set of
// migration items.
type MigrationItemFilter struct {
	Paging
	MigrationID string
	States      []MigrationItemState
}

// NewMigrationItemsFromReader will create a []*MigrationItem from an
// io.Reader with JSON data.
func NewMigrationItemsFromReader(reader io.Reader) ([]*MigrationItem, error) {
	items := []*MigrationItem{}
	err := json.NewDecoder(reader).Decode(&items)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode migration items")
	}

	return items, nil
}
