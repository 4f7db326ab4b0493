package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/morag-io/morag-cloud/model"
)

const documentTable = "Document"

var documentSelect sq.SelectBuilder

func init() {
	documentSelect = sq.
		Select(
			"ID", "RealmID", "OwnerID", "Name", "Type", "State", "Version",
			"CurrentStage", "ProcessingMode", "CreateAt", "UpdateAt", "DeleteAt",
		).
		From(documentTable)
}

// CreateDocument records the given document to the database, assigning it a
// unique ID.
func (sqlStore *SQLStore) CreateDocument(document *model.Document) error {
	document.ID = model.NewID()
	document.CreateAt = GetMillis()
	document.UpdateAt = document.CreateAt
	if document.CurrentStage == "" {
		document.CurrentStage = model.StageMarkdownConversion
	}
	if document.ProcessingMode == "" {
		document.ProcessingMode = model.ProcessingModeAutomatic
	}

	_, err := sqlStore.execBuilder(sqlStore.db, sq.
		Insert(documentTable).
		SetMap(map[string]interface{}{
			"ID":             document.ID,
			"RealmID":        document.RealmID,
			"OwnerID":        document.OwnerID,
			"Name":           document.Name,
			"Type":           document.Type,
			"State":          document.State,
			"Version":        document.Version,
			"CurrentStage":   document.CurrentStage,
			"ProcessingMode": document.ProcessingMode,
			"CreateAt":       document.CreateAt,
			"UpdateAt":       document.UpdateAt,
			"DeleteAt":       0,
		}),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create document")
	}

	return nil
}

// GetDocument fetches the given document.
func (sqlStore *SQLStore) GetDocument(id string) (*model.Document, error) {
	builder := documentSelect.
		Where("ID = ?", id)

	var document model.Document
	err := sqlStore.getBuilder(sqlStore.db, &document, builder)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to query for document")
	}

	return &document, nil
}

// GetDocuments fetches the documents matching the given filter.
func (sqlStore *SQLStore) GetDocuments(filter *model.DocumentFilter) ([]*model.Document, error) {
	builder := documentSelect.
		OrderBy("CreateAt ASC")
	builder = applyPagingFilter(builder, filter.Paging)

	if len(filter.IDs) > 0 {
		builder = builder.Where(sq.Eq{"ID": filter.IDs})
	}
	if filter.RealmID != "" {
		builder = builder.Where("RealmID = ?", filter.RealmID)
	}
	if filter.OwnerID != "" {
		builder = builder.Where("OwnerID = ?", filter.OwnerID)
	}
	if filter.Name != "" {
		builder = builder.Where("Name = ?", filter.Name)
	}

	var documents []*model.Document
	err := sqlStore.selectBuilder(sqlStore.db, &documents, builder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query for documents")
	}

	return documents, nil
}

// GetDocumentByName fetches the document with the given name in a realm, or
// nil when no such document exists.
func (sqlStore *SQLStore) GetDocumentByName(realmID, name string) (*model.Document, error) {
	builder := documentSelect.
		Where("RealmID = ?", realmID).
		Where("Name = ?", name).
		Where("DeleteAt = 0").
		Limit(1)

	var document model.Document
	err := sqlStore.getBuilder(sqlStore.db, &document, builder)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to query for document by name")
	}

	return &document, nil
}

// UpdateDocument updates the mutable fields of the given document.
func (sqlStore *SQLStore) UpdateDocument(document *model.Document) error {
	document.UpdateAt = GetMillis()

	_, err := sqlStore.execBuilder(sqlStore.db, sq.
		Update(documentTable).
		SetMap(map[string]interface{}{
			"RealmID":        document.RealmID,
			"Name":           document.Name,
			"Type":           document.Type,
			"State":          document.State,
			"Version":        document.Version,
			"CurrentStage":   document.CurrentStage,
			"ProcessingMode": document.ProcessingMode,
			"UpdateAt":       document.UpdateAt,
		}).
		Where("ID = ?", document.ID),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update document")
	}

	return nil
}
