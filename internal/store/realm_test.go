package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morag-io/morag-cloud/internal/testlib"
	"github.com/morag-io/morag-cloud/model"
)

func TestRealm(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := MakeTestSQLStore(t, logger)
	defer CloseConnection(t, sqlStore)

	realm := &model.Realm{
		Name:      "research",
		OwnerID:   "user1",
		MemberIDs: []string{"user2", "user3"},
	}
	err := sqlStore.CreateRealm(realm)
	require.NoError(t, err)
	assert.NotEmpty(t, realm.ID)

	fetched, err := sqlStore.GetRealm(realm.ID)
	require.NoError(t, err)
	assert.Equal(t, realm, fetched)
	assert.Equal(t, []string{"user2", "user3"}, fetched.MemberIDs)

	t.Run("unknown realm", func(t *testing.T) {
		fetched, err := sqlStore.GetRealm("unknown")
		require.NoError(t, err)
		assert.Nil(t, fetched)
	})
}

func TestGetRealms(t *testing.T) {
	logger := testlib.MakeLogger(t)
	sqlStore := MakeTestSQLStore(t, logger)
	defer CloseConnection(t, sqlStore)

	realms := []*model.Realm{
		{Name: "research", OwnerID: "user1"},
		{Name: "archive", OwnerID: "user1"},
		{Name: "shared", OwnerID: "user2"},
	}
	for i := range realms {
		err := sqlStore.CreateRealm(realms[i])
		require.NoError(t, err)
		time.Sleep(1 * time.Millisecond)
	}

	fetched, err := sqlStore.GetRealms(&model.RealmFilter{Paging: model.AllPagesNotDeleted()})
	require.NoError(t, err)
	require.Len(t, fetched, 3)
	assert.Equal(t, realms[0].ID, fetched[0].ID)

	fetched, err = sqlStore.GetRealms(&model.RealmFilter{Paging: model.AllPagesNotDeleted(), OwnerID: "user2"})
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	assert.Equal(t, realms[2].ID, fetched[0].ID)
}
