package components

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morag-io/morag-cloud/internal/filestore"
	"github.com/morag-io/morag-cloud/internal/store"
	"github.com/morag-io/morag-cloud/internal/testlib"
	"github.com/morag-io/morag-cloud/model"
)

func TestCopyDocument(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := store.MakeTestSQLStore(t, logger)
	defer store.CloseConnection(t, sqlStore)

	files := filestore.New(t.TempDir())

	sourceRealm := testlib.CreateRealm(t, sqlStore, "source", "user1")
	targetRealm := testlib.CreateRealm(t, sqlStore, "target", "user1")
	document := testlib.CreateDocument(t, sqlStore, sourceRealm.ID, "user1", "report.pdf")

	sourceDir := files.DocumentDir(document.ID)
	err := os.MkdirAll(filepath.Join(sourceDir, "chunks"), 0700)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(sourceDir, "chunks", "0001.json"), []byte(`{"text":"hello"}`), 0600)
	require.NoError(t, err)

	options := &model.MigrationOptions{Mode: model.MigrationModeCopy, CopyStageFiles: true}

	target, err := CopyDocument(sqlStore, files, document, targetRealm.ID, options, logger)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.NotEqual(t, document.ID, target.ID)
	assert.Equal(t, targetRealm.ID, target.RealmID)
	assert.Equal(t, document.Name, target.Name)
	assert.Equal(t, document.CurrentStage, target.CurrentStage)

	// The source row stays in the source realm.
	fetched, err := sqlStore.GetDocument(document.ID)
	require.NoError(t, err)
	assert.Equal(t, sourceRealm.ID, fetched.RealmID)

	// Stage files were duplicated byte for byte.
	copied, err := os.ReadFile(filepath.Join(files.DocumentDir(target.ID), "chunks", "0001.json"))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"text":"hello"}`), copied)

	t.Run("duplicate name in target realm", func(t *testing.T) {
		_, err := CopyDocument(sqlStore, files, document, targetRealm.ID, options, logger)
		require.Error(t, err)
		assert.Equal(t, 409, ErrToStatus(err))
	})

	t.Run("unknown target realm", func(t *testing.T) {
		_, err := CopyDocument(sqlStore, files, document, "unknown", options, logger)
		require.Error(t, err)
		assert.Equal(t, 400, ErrToStatus(err))
	})
}

func TestMoveDocument(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := store.MakeTestSQLStore(t, logger)
	defer store.CloseConnection(t, sqlStore)

	files := filestore.New(t.TempDir())

	sourceRealm := testlib.CreateRealm(t, sqlStore, "source", "user1")
	targetRealm := testlib.CreateRealm(t, sqlStore, "target", "user1")

	t.Run("move reassigns the row in place", func(t *testing.T) {
		document := testlib.CreateDocument(t, sqlStore, sourceRealm.ID, "user1", "moved.pdf")

		sourceDir := files.DocumentDir(document.ID)
		err := os.MkdirAll(sourceDir, 0700)
		require.NoError(t, err)
		err = os.WriteFile(filepath.Join(sourceDir, "raw.pdf"), []byte("pdf"), 0600)
		require.NoError(t, err)

		options := &model.MigrationOptions{Mode: model.MigrationModeMove}

		target, err := CopyDocument(sqlStore, files, document, targetRealm.ID, options, logger)
		require.NoError(t, err)
		assert.Equal(t, document.ID, target.ID)
		assert.Equal(t, targetRealm.ID, target.RealmID)

		documents, err := sqlStore.GetDocuments(&model.DocumentFilter{Paging: model.AllPagesNotDeleted(), Name: "moved.pdf"})
		require.NoError(t, err)
		assert.Len(t, documents, 1)

		// Source directory removed when the original is not preserved.
		_, err = os.Stat(sourceDir)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("preserve original keeps the source directory", func(t *testing.T) {
		document := testlib.CreateDocument(t, sqlStore, sourceRealm.ID, "user1", "kept.pdf")

		sourceDir := files.DocumentDir(document.ID)
		err := os.MkdirAll(sourceDir, 0700)
		require.NoError(t, err)
		err = os.WriteFile(filepath.Join(sourceDir, "raw.pdf"), []byte("pdf"), 0600)
		require.NoError(t, err)

		options := &model.MigrationOptions{Mode: model.MigrationModeMove, PreserveOriginal: true}

		_, err = CopyDocument(sqlStore, files, document, targetRealm.ID, options, logger)
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(sourceDir, "raw.pdf"))
		assert.NoError(t, err)
	})
}
