package model

import "github.com/pkg/errors"

// MigrationMode determines whether documents are duplicated into the target
// realm or reassigned to it.
type MigrationMode string

const (
	// MigrationModeCopy duplicates documents, leaving the source intact.
	MigrationModeCopy MigrationMode = "copy"
	// MigrationModeMove reassigns documents to the target realm.
	MigrationModeMove MigrationMode = "move"
)

// MigrationOptions controls how each document in a migration is handled.
type MigrationOptions struct {
	Mode             MigrationMode
	CopyStageFiles   bool
	PreserveOriginal bool
	ReprocessStages  []Stage

	// ScheduledJobIDs records the stage jobs enqueued while processing the
	// migration, for audit and debugging.
	ScheduledJobIDs []string
}

// Validate checks migration options for correctness, normalizing the
// reprocess stage list to canonical names.
func (o *MigrationOptions) Validate() error {
	if o == nil {
		return errors.New("migration options not provided")
	}

	switch o.Mode {
	case MigrationModeCopy, MigrationModeMove:
	default:
		return errors.Errorf("unsupported migration mode %q", o.Mode)
	}

	for i, stage := range o.ReprocessStages {
		canonical, known := ParseStage(string(stage))
		if !known {
			continue // Unknown stages are skipped with a warning at scheduling time.
		}
		o.ReprocessStages[i] = canonical
	}

	return nil
}
