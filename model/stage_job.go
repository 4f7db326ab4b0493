package model

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// StageJob is a queued request for an external pipeline worker to rerun one
// stage for a document. Workers drain these rows ordered by ScheduledAt.
type StageJob struct {
	ID          string
	DocumentID  string
	Stage       Stage
	MigrationID string
	Position    int
	State       StageJobState
	ScheduledAt int64
	CreateAt    int64
}

// StageJobState represents the state of a queued stage job.
type StageJobState string

const (
	// StageJobStateScheduled is a job waiting for its scheduled time.
	StageJobStateScheduled StageJobState = "stage-job-scheduled"
	// StageJobStateInProgress is a job claimed by a pipeline worker.
	StageJobStateInProgress StageJobState = "stage-job-in-progress"
	// StageJobStateSucceeded is a finished job.
	StageJobStateSucceeded StageJobState = "stage-job-succeeded"
	// StageJobStateFailed is a job the worker gave up on.
	StageJobStateFailed StageJobState = "stage-job-failed"
)

// StageJobFilter describes the parameters used to constrain a set of stage
// jobs.
type StageJobFilter struct {
	Paging
	DocumentID  string
	MigrationID string
	States      []StageJobState
}

// NewStageJobsFromReader will create a []*StageJob from an io.Reader with
// JSON data.
func NewStageJobsFromReader(reader io.Reader) ([]*StageJob, error) {
	jobs := []*StageJob{}
	err := json.NewDecoder(reader).Decode(&jobs)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode stage jobs")
	}

	return jobs, nil
}
