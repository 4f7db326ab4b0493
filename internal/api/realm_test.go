package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morag-io/morag-cloud/model"
)

func TestRealmAPI(t *testing.T) {
	_, _, ts := setupAPI(t)
	client := model.NewClient(ts.URL, "user1")

	realm, err := client.CreateRealm(&model.CreateRealmRequest{
		Name:      "research",
		MemberIDs: []string{"user2"},
	})
	require.NoError(t, err)
	require.NotNil(t, realm)
	assert.NotEmpty(t, realm.ID)
	assert.Equal(t, "user1", realm.OwnerID)
	assert.Equal(t, []string{"user2"}, realm.MemberIDs)

	t.Run("name is required", func(t *testing.T) {
		_, err := client.CreateRealm(&model.CreateRealmRequest{})
		require.Error(t, err)
	})

	t.Run("list", func(t *testing.T) {
		realms, err := client.GetRealms()
		require.NoError(t, err)
		require.Len(t, realms, 1)
		assert.Equal(t, realm.ID, realms[0].ID)
	})
}

func TestDocumentAPI(t *testing.T) {
	_, _, ts := setupAPI(t)
	client := model.NewClient(ts.URL, "user1")

	realm, err := client.CreateRealm(&model.CreateRealmRequest{Name: "research"})
	require.NoError(t, err)

	document, err := client.CreateDocument(&model.CreateDocumentRequest{
		RealmID: realm.ID,
		Name:    "report.pdf",
		Type:    "pdf",
	})
	require.NoError(t, err)
	require.NotNil(t, document)
	assert.Equal(t, "user1", document.OwnerID)
	assert.Equal(t, model.StageMarkdownConversion, document.CurrentStage)
	assert.Equal(t, model.ProcessingModeAutomatic, document.ProcessingMode)

	t.Run("realm must be accessible", func(t *testing.T) {
		stranger := model.NewClient(ts.URL, "user3")
		_, err := stranger.CreateDocument(&model.CreateDocumentRequest{
			RealmID: realm.ID,
			Name:    "sneaky.pdf",
			Type:    "pdf",
		})
		require.Error(t, err)
	})

	t.Run("list by realm", func(t *testing.T) {
		documents, err := client.GetDocuments(realm.ID)
		require.NoError(t, err)
		require.Len(t, documents, 1)
		assert.Equal(t, document.ID, documents[0].ID)
	})

	t.Run("get", func(t *testing.T) {
		fetched, err := client.GetDocument(document.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, document.ID, fetched.ID)
	})
}

func TestWebhookAPI(t *testing.T) {
	sqlStore, _, ts := setupAPI(t)
	client := model.NewClient(ts.URL, "user1")

	webhook, err := client.CreateWebhook(&model.CreateWebhookRequest{URL: "https://hooks.example.com/migrations"})
	require.NoError(t, err)
	require.NotNil(t, webhook)
	assert.Equal(t, "user1", webhook.OwnerID)

	t.Run("url is required", func(t *testing.T) {
		_, err := client.CreateWebhook(&model.CreateWebhookRequest{})
		require.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		err := client.DeleteWebhook(webhook.ID)
		require.NoError(t, err)

		webhooks, err := sqlStore.GetWebhooks(&model.WebhookFilter{Paging: model.AllPagesNotDeleted()})
		require.NoError(t, err)
		assert.Empty(t, webhooks)
	})
}
