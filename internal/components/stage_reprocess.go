package components

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/morag-io/morag-cloud/model"
)

// StageJobStaggerMillis spaces consecutive stage jobs apart so the pipeline
// workers are not hit by the whole batch at once.
const StageJobStaggerMillis = 5000

type stageReprocessStore interface {
	GetDocument(id string) (*model.Document, error)
	UpdateDocument(document *model.Document) error
	CreateStageJob(job *model.StageJob) error
}

// ScheduleStageReprocessing resets the document's pipeline position to the
// earliest requested stage, switches it to manual processing so no automatic
// continuation races the scheduled jobs, and enqueues one staggered job per
// requested stage in pipeline order. Unknown stage names are skipped with a
// warning. Returns the IDs of the enqueued jobs; on failure the jobs already
// enqueued are kept and their IDs returned alongside the error.
func ScheduleStageReprocessing(store stageReprocessStore, documentID, migrationID string, stageNames []model.Stage, logger log.FieldLogger) ([]string, error) {
	var stages []model.Stage
	for _, name := range stageNames {
		stage, known := model.ParseStage(string(name))
		if !known {
			logger.Warnf("Skipping unknown pipeline stage %q", name)
			continue
		}
		stages = append(stages, stage)
	}
	stages = model.SortStagesByPipelineOrder(stages)
	if len(stages) == 0 {
		return nil, nil
	}

	document, err := store.GetDocument(documentID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get document for stage reprocessing")
	}
	if document == nil {
		return nil, errors.Errorf("document %s not found", documentID)
	}

	document.CurrentStage = stages[0]
	document.ProcessingMode = model.ProcessingModeManual
	err = store.UpdateDocument(document)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reset document pipeline position")
	}

	now := model.GetMillis()
	var jobIDs []string
	for i, stage := range stages {
		job := &model.StageJob{
			DocumentID:  documentID,
			Stage:       stage,
			MigrationID: migrationID,
			Position:    i,
			ScheduledAt: now + int64(i*StageJobStaggerMillis),
		}
		err = store.CreateStageJob(job)
		if err != nil {
			return jobIDs, errors.Wrapf(err, "failed to schedule job for stage %s", stage)
		}
		jobIDs = append(jobIDs, job.ID)
	}

	return jobIDs, nil
}
