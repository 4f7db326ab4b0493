package store

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/morag-io/morag-cloud/model"
)

const stageJobTable = "StageJob"

var stageJobSelect sq.SelectBuilder

func init() {
	stageJobSelect = sq.
		Select(
			"ID", "DocumentID", "Stage", "MigrationID", "Position", "State",
			"ScheduledAt", "CreateAt",
		).
		From(stageJobTable)
}

// CreateStageJob enqueues the given stage job, assigning it a unique ID.
func (sqlStore *SQLStore) CreateStageJob(job *model.StageJob) error {
	job.ID = model.NewID()
	job.CreateAt = GetMillis()
	if job.State == "" {
		job.State = model.StageJobStateScheduled
	}

	_, err := sqlStore.execBuilder(sqlStore.db, sq.
		Insert(stageJobTable).
		SetMap(map[string]interface{}{
			"ID":          job.ID,
			"DocumentID":  job.DocumentID,
			"Stage":       job.Stage,
			"MigrationID": job.MigrationID,
			"Position":    job.Position,
			"State":       job.State,
			"ScheduledAt": job.ScheduledAt,
			"CreateAt":    job.CreateAt,
		}),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create stage job")
	}

	return nil
}

// GetStageJobs fetches the stage jobs matching the given filter, ordered by
// scheduled time.
func (sqlStore *SQLStore) GetStageJobs(filter *model.StageJobFilter) ([]*model.StageJob, error) {
	builder := stageJobSelect.
		OrderBy("ScheduledAt ASC", "Position ASC")

	if filter.PerPage != model.AllPerPage {
		builder = builder.
			Limit(uint64(filter.PerPage)).
			Offset(uint64(filter.Page * filter.PerPage))
	}
	if filter.DocumentID != "" {
		builder = builder.Where("DocumentID = ?", filter.DocumentID)
	}
	if filter.MigrationID != "" {
		builder = builder.Where("MigrationID = ?", filter.MigrationID)
	}
	if len(filter.States) > 0 {
		builder = builder.Where(sq.Eq{"State": filter.States})
	}

	var jobs []*model.StageJob
	err := sqlStore.selectBuilder(sqlStore.db, &jobs, builder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query for stage jobs")
	}

	return jobs, nil
}
