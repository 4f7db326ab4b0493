package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morag-io/morag-cloud/internal/testlib"
	"github.com/morag-io/morag-cloud/model"
)

func TestMigration(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := MakeTestSQLStore(t, logger)
	defer CloseConnection(t, sqlStore)

	migration := &model.Migration{
		SourceRealmID: "realm1",
		TargetRealmID: "realm2",
		Options: &model.MigrationOptions{
			Mode:            model.MigrationModeCopy,
			CopyStageFiles:  true,
			ReprocessStages: []model.Stage{model.StageChunking, model.StageIngestion},
		},
		CreatedBy: "user1",
	}

	err := sqlStore.CreateMigration(migration, []string{"document1", "document2", "document3"})
	require.NoError(t, err)
	assert.NotEmpty(t, migration.ID)
	assert.Equal(t, model.MigrationStateRequested, migration.State)
	assert.Equal(t, 3, migration.TotalDocuments)
	assert.Equal(t, 0, migration.ProcessedDocuments)

	fetched, err := sqlStore.GetMigration(migration.ID)
	require.NoError(t, err)
	assert.Equal(t, migration, fetched)

	items, err := sqlStore.GetMigrationItems(&model.MigrationItemFilter{
		Paging:      model.AllPagesNotDeleted(),
		MigrationID: migration.ID,
	})
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, model.MigrationItemStatePending, item.State)
		assert.Empty(t, item.TargetDocumentID)
	}
	assert.Equal(t, "document1", items[0].SourceDocumentID)
	assert.Equal(t, "document2", items[1].SourceDocumentID)
	assert.Equal(t, "document3", items[2].SourceDocumentID)

	t.Run("unknown migration", func(t *testing.T) {
		fetched, err := sqlStore.GetMigration("unknown")
		require.NoError(t, err)
		assert.Nil(t, fetched)
	})
}

func TestGetMigrations(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := MakeTestSQLStore(t, logger)
	defer CloseConnection(t, sqlStore)

	options := &model.MigrationOptions{Mode: model.MigrationModeCopy}
	migrations := []*model.Migration{
		{SourceRealmID: "realm1", TargetRealmID: "realm2", Options: options, CreatedBy: "user1"},
		{SourceRealmID: "realm1", TargetRealmID: "realm3", Options: options, CreatedBy: "user1"},
		{SourceRealmID: "realm2", TargetRealmID: "realm3", Options: options, CreatedBy: "user2"},
	}
	for i := range migrations {
		err := sqlStore.CreateMigration(migrations[i], []string{"document1"})
		require.NoError(t, err)
		time.Sleep(1 * time.Millisecond) // Ensure RequestAt differs for ordering.
	}

	for _, testCase := range []struct {
		description string
		filter      *model.MigrationFilter
		fetchedIDs  []string
	}{
		{
			description: "fetch all",
			filter:      &model.MigrationFilter{Paging: model.AllPagesNotDeleted()},
			fetchedIDs:  []string{migrations[2].ID, migrations[1].ID, migrations[0].ID},
		},
		{
			description: "fetch for user1",
			filter:      &model.MigrationFilter{Paging: model.AllPagesNotDeleted(), CreatedBy: "user1"},
			fetchedIDs:  []string{migrations[1].ID, migrations[0].ID},
		},
		{
			description: "fetch for realm3",
			filter:      &model.MigrationFilter{Paging: model.AllPagesNotDeleted(), RealmID: "realm3"},
			fetchedIDs:  []string{migrations[2].ID, migrations[1].ID},
		},
		{
			description: "fetch requested state",
			filter:      &model.MigrationFilter{Paging: model.AllPagesNotDeleted(), States: []model.MigrationState{model.MigrationStateRequested}},
			fetchedIDs:  []string{migrations[2].ID, migrations[1].ID, migrations[0].ID},
		},
		{
			description: "fetch with paging",
			filter:      &model.MigrationFilter{Paging: model.Paging{Page: 0, PerPage: 2}},
			fetchedIDs:  []string{migrations[2].ID, migrations[1].ID},
		},
	} {
		t.Run(testCase.description, func(t *testing.T) {
			fetched, err := sqlStore.GetMigrations(testCase.filter)
			require.NoError(t, err)

			fetchedIDs := make([]string, 0, len(fetched))
			for _, migration := range fetched {
				fetchedIDs = append(fetchedIDs, migration.ID)
			}
			assert.Equal(t, testCase.fetchedIDs, fetchedIDs)
		})
	}
}

func TestUpdateMigration(t *testing.T) {
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

	t.Run("updates counters and options only", func(t *testing.T) {
		cancelled, err := sqlStore.CancelMigration(migration.ID)
		require.NoError(t, err)
		require.True(t, cancelled)

		// A writer holding a stale in-progress snapshot must not be able to
		// roll the state back.
		stale := *migration
		stale.State = model.MigrationStateInProgress
		stale.ProcessedDocuments = 1
		stale.CompleteAt = 0
		stale.Options.ScheduledJobIDs = []string{"job1"}
		err = sqlStore.UpdateMigration(&stale)
		require.NoError(t, err)

		fetched, err := sqlStore.GetMigration(migration.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MigrationStateCancelled, fetched.State)
		assert.NotZero(t, fetched.CompleteAt)
		assert.Equal(t, 1, fetched.ProcessedDocuments)
		assert.Equal(t, []string{"job1"}, fetched.Options.ScheduledJobIDs)
	})

	t.Run("state updates do not touch a cancelled migration", func(t *testing.T) {
		stale, err := sqlStore.GetMigration(migration.ID)
		require.NoError(t, err)
		stale.State = model.MigrationStateSucceeded
		err = sqlStore.UpdateMigrationState(stale)
		require.NoError(t, err)

		fetched, err := sqlStore.GetMigration(migration.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MigrationStateCancelled, fetched.State)
	})
}

func TestGetUnlockedMigrationsPendingWork(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := MakeTestSQLStore(t, logger)
	defer CloseConnection(t, sqlStore)

	options := &model.MigrationOptions{Mode: model.MigrationModeCopy}

	pending := &model.Migration{SourceRealmID: "realm1", TargetRealmID: "realm2", Options: options, CreatedBy: "user1"}
	err := sqlStore.CreateMigration(pending, []string{"document1"})
	require.NoError(t, err)

	finished := &model.Migration{SourceRealmID: "realm1", TargetRealmID: "realm2", Options: options, CreatedBy: "user1"}
	err = sqlStore.CreateMigration(finished, []string{"document1"})
	require.NoError(t, err)
	finished.State = model.MigrationStateSucceeded
	err = sqlStore.UpdateMigrationState(finished)
	require.NoError(t, err)

	work, err := sqlStore.GetUnlockedMigrationsPendingWork()
	require.NoError(t, err)
	require.Len(t, work, 1)
	assert.Equal(t, pending.ID, work[0].ID)

	locked, err := sqlStore.LockMigration(pending.ID, "locker")
	require.NoError(t, err)
	require.True(t, locked)

	work, err = sqlStore.GetUnlockedMigrationsPendingWork()
	require.NoError(t, err)
	assert.Empty(t, work)
}

func TestMigrationLocking(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := MakeTestSQLStore(t, logger)
	defer CloseConnection(t, sqlStore)

	migration := &model.Migration{
		SourceRealmID: "realm1",
		TargetRealmID: "realm2",
		Options:       &model.MigrationOptions{Mode: model.MigrationModeCopy},
		CreatedBy:     "user1",
	}
	err := sqlStore.CreateMigration(migration, []string{"document1"})
	require.NoError(t, err)

	locked, err := sqlStore.LockMigration(migration.ID, "locker1")
	require.NoError(t, err)
	assert.True(t, locked)

	t.Run("locking twice fails", func(t *testing.T) {
		locked, err := sqlStore.LockMigration(migration.ID, "locker2")
		require.NoError(t, err)
		assert.False(t, locked)
	})

	t.Run("unlocking by a different locker fails", func(t *testing.T) {
		unlocked, err := sqlStore.UnlockMigration(migration.ID, "locker2", false)
		require.NoError(t, err)
		assert.False(t, unlocked)
	})

	t.Run("force unlock by a different locker succeeds", func(t *testing.T) {
		unlocked, err := sqlStore.UnlockMigration(migration.ID, "locker2", true)
		require.NoError(t, err)
		assert.True(t, unlocked)
	})

	t.Run("release stale locks", func(t *testing.T) {
		locked, err := sqlStore.LockMigration(migration.ID, "dead-instance")
		require.NoError(t, err)
		require.True(t, locked)

		released, err := sqlStore.ReleaseStaleMigrationLocks()
		require.NoError(t, err)
		assert.EqualValues(t, 1, released)

		work, err := sqlStore.GetUnlockedMigrationsPendingWork()
		require.NoError(t, err)
		assert.Len(t, work, 1)
	})
}

func TestCancelMigration(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := MakeTestSQLStore(t, logger)
	defer CloseConnection(t, sqlStore)

	migration := &model.Migration{
		SourceRealmID: "realm1",
		TargetRealmID: "realm2",
		Options:       &model.MigrationOptions{Mode: model.MigrationModeCopy},
		CreatedBy:     "user1",
	}
	err := sqlStore.CreateMigration(migration, []string{"document1"})
	require.NoError(t, err)

	cancelled, err := sqlStore.CancelMigration(migration.ID)
	require.NoError(t, err)
	assert.True(t, cancelled)

	fetched, err := sqlStore.GetMigration(migration.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MigrationStateCancelled, fetched.State)

	t.Run("cancelling a cancelled migration is rejected", func(t *testing.T) {
		cancelled, err := sqlStore.CancelMigration(migration.ID)
		require.NoError(t, err)
		assert.False(t, cancelled)
	})

	t.Run("cancelling a succeeded migration is rejected", func(t *testing.T) {
		finished := &model.Migration{
			SourceRealmID: "realm1",
			TargetRealmID: "realm2",
			Options:       &model.MigrationOptions{Mode: model.MigrationModeCopy},
			CreatedBy:     "user1",
		}
		err := sqlStore.CreateMigration(finished, []string{"document1"})
		require.NoError(t, err)
		finished.State = model.MigrationStateSucceeded
		err = sqlStore.UpdateMigrationState(finished)
		require.NoError(t, err)

		cancelled, err := sqlStore.CancelMigration(finished.ID)
		require.NoError(t, err)
		assert.False(t, cancelled)

		fetched, err := sqlStore.GetMigration(finished.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MigrationStateSucceeded, fetched.State)
	})
}
