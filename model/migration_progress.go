package model

import (
	"encoding/json"
	"io"
	"math"

	"github.com/pkg/errors"
)

// MigrationProgress aggregates a migration's per-document outcomes.
type MigrationProgress struct {
	State              MigrationState
	TotalDocuments     int
	ProcessedDocuments int
	CompletedDocuments int
	FailedDocuments    int
	PendingDocuments   int
	ProgressPercentage int
}

// CalculateMigrationProgress derives the progress view of a migration from
// its items. An empty batch counts as fully processed.
func CalculateMigrationProgress(migration *Migration, items []*MigrationItem) *MigrationProgress {
	progress := &MigrationProgress{
		State:              migration.State,
		TotalDocuments:     migration.TotalDocuments,
		ProcessedDocuments: migration.ProcessedDocuments,
	}

	for _, item := range items {
		switch item.State {
		case MigrationItemStateSucceeded:
			progress.CompletedDocuments++
		case MigrationItemStateFailed:
			progress.FailedDocuments++
		default:
			progress.PendingDocuments++
		}
	}

	if migration.TotalDocuments <= 0 {
		progress.ProgressPercentage = 100
		return progress
	}

	percentage := int(math.Round(float64(migration.ProcessedDocuments) / float64(migration.TotalDocuments) * 100))
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	progress.ProgressPercentage = percentage

	return progress
}

// NewMigrationProgressFromReader will create a MigrationProgress from an
// io.Reader with JSON data.
func NewMigrationProgressFromReader(reader io.Reader) (*MigrationProgress, error) {
	var progress MigrationProgress
	err := json.NewDecoder(reader).Decode(&progress)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode migration progress")
	}

	return &progress, nil
}
