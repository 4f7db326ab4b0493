package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morag-io/morag-cloud/internal/testlib"
	"github.com/morag-io/morag-cloud/model"
)

func TestStageJob(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := MakeTestSQLStore(t, logger)
	defer CloseConnection(t, sqlStore)

	now := model.GetMillis()
	stages := []model.Stage{model.StageMarkdownConversion, model.StageChunking, model.StageIngestion}
	for i, stage := range stages {
		job := &model.StageJob{
			DocumentID:  "document1",
			Stage:       stage,
			MigrationID: "migration1",
			Position:    i,
			ScheduledAt: now + int64(i)*5000,
		}
		err := sqlStore.CreateStageJob(job)
		require.NoError(t, err)
		assert.NotEmpty(t, job.ID)
		assert.Equal(t, model.StageJobStateScheduled, job.State)
	}

	jobs, err := sqlStore.GetStageJobs(&model.StageJobFilter{
		Paging:     model.AllPagesNotDeleted(),
		DocumentID: "document1",
	})
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	for i, job := range jobs {
		assert.Equal(t, stages[i], job.Stage)
		assert.Equal(t, now+int64(i)*5000, job.ScheduledAt)
	}

	t.Run("filter by migration", func(t *testing.T) {
		jobs, err := sqlStore.GetStageJobs(&model.StageJobFilter{
			Paging:      model.AllPagesNotDeleted(),
			MigrationID: "migration2",
		})
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})

	t.Run("filter by state", func(t *testing.T) {
		jobs, err := sqlStore.GetStageJobs(&model.StageJobFilter{
			Paging: model.AllPagesNotDeleted(),
			States: []model.StageJobState{model.StageJobStateScheduled},
		})
		require.NoError(t, err)
		assert.Len(t, jobs, 3)
	})
}
