package testlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/morag-io/morag-cloud/model"
)

type realmStore interface {
	CreateRealm(realm *model.Realm) error
}

type documentStore interface {
	CreateDocument(document *model.Document) error
}

// CreateRealm persists a realm owned by the given user.
func CreateRealm(t *testing.T, store realmStore, name, ownerID string) *model.Realm {
	realm := &model.Realm{
		Name:    name,
		OwnerID: ownerID,
	}
	err := store.CreateRealm(realm)
	require.NoError(t, err)
	return realm
}

// CreateDocument persists a document in the given realm.
func CreateDocument(t *testing.T, store documentStore, realmID, ownerID, name string) *model.Document {
	document := &model.Document{
		RealmID: realmID,
		OwnerID: ownerID,
		Name:    name,
		Type:    "pdf",
		State:   "ingested",
		Version: 1,
	}
	err := store.CreateDocument(document)
	require.NoError(t, err)
	return document
}
