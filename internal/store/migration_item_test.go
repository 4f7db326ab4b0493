package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morag-io/morag-cloud/internal/testlib"
	"github.com/morag-io/morag-cloud/model"
)

func TestGetNextPendingMigrationItem(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := MakeTestSQLStore(t, logger)
	defer CloseConnection(t, sqlStore)

	migration := &model.Migration{
		SourceRealmID: "realm1",
		TargetRealmID: "realm2",
		Options:       &model.MigrationOptions{Mode: model.MigrationModeCopy},
		CreatedBy:     "user1",
	}
	err := sqlStore.CreateMigration(migration, []string{"document1", "document2"})
	require.NoError(t, err)

	item, err := sqlStore.GetNextPendingMigrationItem(migration.ID)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "document1", item.SourceDocumentID)

	item.State = model.MigrationItemStateSucceeded
	item.TargetDocumentID = "copy1"
	item.MigratedStages = []model.Stage{model.StageChunking}
	item.CompleteAt = model.GetMillis()
	err = sqlStore.UpdateMigrationItem(item)
	require.NoError(t, err)

	next, err := sqlStore.GetNextPendingMigrationItem(migration.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "document2", next.SourceDocumentID)

	next.State = model.MigrationItemStateFailed
	next.ErrorMessage = "document not found"
	next.CompleteAt = model.GetMillis()
	err = sqlStore.UpdateMigrationItem(next)
	require.NoError(t, err)

	drained, err := sqlStore.GetNextPendingMigrationItem(migration.ID)
	require.NoError(t, err)
	assert.Nil(t, drained)

	items, err := sqlStore.GetMigrationItems(&model.MigrationItemFilter{
		Paging:      model.AllPagesNotDeleted(),
		MigrationID: migration.ID,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, model.MigrationItemStateSucceeded, items[0].State)
	assert.Equal(t, "copy1", items[0].TargetDocumentID)
	assert.Equal(t, []model.Stage{model.StageChunking}, items[0].MigratedStages)
	assert.Equal(t, model.MigrationItemStateFailed, items[1].State)
	assert.Equal(t, "document not found", items[1].ErrorMessage)
}

func TestGetMigrationItemsFilter(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := MakeTestSQLStore(t, logger)
	defer CloseConnection(t, sqlStore)

	options := &model.MigrationOptions{Mode: model.MigrationModeCopy}

	migration1 := &model.Migration{SourceRealmID: "realm1", TargetRealmID: "realm2", Options: options, CreatedBy: "user1"}
	err := sqlStore.CreateMigration(migration1, []string{"document1", "document2"})
	require.NoError(t, err)

	migration2 := &model.Migration{SourceRealmID: "realm1", TargetRealmID: "realm3", Options: options, CreatedBy: "user1"}
	err = sqlStore.CreateMigration(migration2, []string{"document3"})
	require.NoError(t, err)

	items, err := sqlStore.GetMigrationItems(&model.MigrationItemFilter{
		Paging:      model.AllPagesNotDeleted(),
		MigrationID: migration2.ID,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "document3", items[0].SourceDocumentID)

	items, err = sqlStore.GetMigrationItems(&model.MigrationItemFilter{
		Paging: model.AllPagesNotDeleted(),
		States: []model.MigrationItemState{model.MigrationItemStatePending},
	})
	require.NoError(t, err)
	assert.Len(t, items, 3)
}
