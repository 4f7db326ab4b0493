package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morag-io/morag-cloud/internal/testlib"
	"github.com/morag-io/morag-cloud/model"
)

func TestDocument(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := MakeTestSQLStore(t, logger)
	defer CloseConnection(t, sqlStore)

	document := &model.Document{
		RealmID: "realm1",
		OwnerID: "user1",
		Name:    "report.pdf",
		Type:    "pdf",
		State:   "ingested",
		Version: 1,
	}
	err := sqlStore.CreateDocument(document)
	require.NoError(t, err)
	assert.NotEmpty(t, document.ID)
	assert.Equal(t, model.StageMarkdownConversion, document.CurrentStage)
	assert.Equal(t, model.ProcessingModeAutomatic, document.ProcessingMode)

	fetched, err := sqlStore.GetDocument(document.ID)
	require.NoError(t, err)
	assert.Equal(t, document, fetched)

	t.Run("unknown document", func(t *testing.T) {
		fetched, err := sqlStore.GetDocument("unknown")
		require.NoError(t, err)
		assert.Nil(t, fetched)
	})

	t.Run("update document", func(t *testing.T) {
		document.CurrentStage = model.StageChunking
		document.ProcessingMode = model.ProcessingModeManual
		document.RealmID = "realm2"
		err := sqlStore.UpdateDocument(document)
		require.NoError(t, err)

		fetched, err := sqlStore.GetDocument(document.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StageChunking, fetched.CurrentStage)
		assert.Equal(t, model.ProcessingModeManual, fetched.ProcessingMode)
		assert.Equal(t, "realm2", fetched.RealmID)
		assert.True(t, fetched.UpdateAt >= fetched.CreateAt)
	})
}

func TestGetDocuments(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := MakeTestSQLStore(t, logger)
	defer CloseConnection(t, sqlStore)

	documents := []*model.Document{
		{RealmID: "realm1", OwnerID: "user1", Name: "a.pdf", Type: "pdf", State: "ingested", Version: 1},
		{RealmID: "realm1", OwnerID: "user2", Name: "b.pdf", Type: "pdf", State: "ingested", Version: 1},
		{RealmID: "realm2", OwnerID: "user1", Name: "a.pdf", Type: "pdf", State: "ingested", Version: 1},
	}
	for i := range documents {
		err := sqlStore.CreateDocument(documents[i])
		require.NoError(t, err)
		time.Sleep(1 * time.Millisecond)
	}

	for _, testCase := range []struct {
		description string
		filter      *model.DocumentFilter
		fetchedIDs  []string
	}{
		{
			description: "fetch by realm",
			filter:      &model.DocumentFilter{Paging: model.AllPagesNotDeleted(), RealmID: "realm1"},
			fetchedIDs:  []string{documents[0].ID, documents[1].ID},
		},
		{
			description: "fetch by owner",
			filter:      &model.DocumentFilter{Paging: model.AllPagesNotDeleted(), OwnerID: "user1"},
			fetchedIDs:  []string{documents[0].ID, documents[2].ID},
		},
		{
			description: "fetch by ids",
			filter:      &model.DocumentFilter{Paging: model.AllPagesNotDeleted(), IDs: []string{documents[1].ID}},
			fetchedIDs:  []string{documents[1].ID},
		},
		{
			description: "fetch by name",
			filter:      &model.DocumentFilter{Paging: model.AllPagesNotDeleted(), RealmID: "realm2", Name: "a.pdf"},
			fetchedIDs:  []string{documents[2].ID},
		},
	} {
		t.Run(testCase.description, func(t *testing.T) {
			fetched, err := sqlStore.GetDocuments(testCase.filter)
			require.NoError(t, err)

			fetchedIDs := make([]string, 0, len(fetched))
			for _, document := range fetched {
				fetchedIDs = append(fetchedIDs, document.ID)
			}
			assert.Equal(t, testCase.fetchedIDs, fetchedIDs)
		})
	}

	t.Run("get by name in realm", func(t *testing.T) {
		fetched, err := sqlStore.GetDocumentByName("realm1", "b.pdf")
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, documents[1].ID, fetched.ID)

		fetched, err = sqlStore.GetDocumentByName("realm2", "b.pdf")
		require.NoError(t, err)
		assert.Nil(t, fetched)
	})
}
