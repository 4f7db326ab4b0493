package store

import (
	"database/sql"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/morag-io/morag-cloud/model"
)

const migrationItemTable = "MigrationItem"

var migrationItemSelect sq.SelectBuilder

func init() {
	migrationItemSelect = sq.
		Select(
			"ID", "MigrationID", "SourceDocumentID", "TargetDocumentID", "Position",
			"State", "MigratedStagesRaw", "ErrorMessage", "RequestAt", "CompleteAt",
		).
		From(migrationItemTable)
}

type rawMigrationItem struct {
	*model.MigrationItem
	MigratedStagesRaw []byte
}

type rawMigrationItems []*rawMigrationItem

func (r *rawMigrationItem) toMigrationItem() (*model.MigrationItem, error) {
	if len(r.MigratedStagesRaw) > 0 {
		err := json.Unmarshal(r.MigratedStagesRaw, &r.MigrationItem.MigratedStages)
		if err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal migrated stages")
		}
	}

	return r.MigrationItem, nil
}

func (rs rawMigrationItems) toMigrationItems() ([]*model.MigrationItem, error) {
	items := make([]*model.MigrationItem, 0, len(rs))
	for _, raw := range rs {
		item, err := raw.toMigrationItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (sqlStore *SQLStore) createMigrationItem(e execer, item *model.MigrationItem) error {
	item.ID = model.NewID()

	stagesRaw, err := json.Marshal(item.MigratedStages)
	if err != nil {
		return errors.Wrap(err, "failed to marshal migrated stages")
	}

	_, err = sqlStore.execBuilder(e, sq.
		Insert(migrationItemTable).
		SetMap(map[string]interface{}{
			"ID":                item.ID,
			"MigrationID":       item.MigrationID,
			"SourceDocumentID":  item.SourceDocumentID,
			"TargetDocumentID":  item.TargetDocumentID,
			"Position":          item.Position,
			"State":             item.State,
			"MigratedStagesRaw": stagesRaw,
			"ErrorMessage":      item.ErrorMessage,
			"RequestAt":         item.RequestAt,
			"CompleteAt":        item.CompleteAt,
		}),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create migration item")
	}

	return nil
}

// CreateMigrationItem records the given item to the database, assigning it a
// unique ID.
func (sqlStore *SQLStore) CreateMigrationItem(item *model.MigrationItem) error {
	return sqlStore.createMigrationItem(sqlStore.db, item)
}

// GetMigrationItems fetches the items matching the given filter, in request
// order.
func (sqlStore *SQLStore) GetMigrationItems(filter *model.MigrationItemFilter) ([]*model.MigrationItem, error) {
	builder := migrationItemSelect.
		OrderBy("RequestAt ASC", "Position ASC")

	if filter.PerPage != model.AllPerPage {
		builder = builder.
			Limit(uint64(filter.PerPage)).
			Offset(uint64(filter.Page * filter.PerPage))
	}
	if filter.MigrationID != "" {
		builder = builder.Where("MigrationID = ?", filter.MigrationID)
	}
	if len(filter.States) > 0 {
		builder = builder.Where(sq.Eq{"State": filter.States})
	}

	var raws rawMigrationItems
	err := sqlStore.selectBuilder(sqlStore.db, &raws, builder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query for migration items")
	}

	return raws.toMigrationItems()
}

// GetNextPendingMigrationItem fetches the oldest pending item of the given
// migration, or nil when the batch is drained.
func (sqlStore *SQLStore) GetNextPendingMigrationItem(migrationID string) (*model.MigrationItem, error) {
	builder := migrationItemSelect.
		Where("MigrationID = ?", migrationID).
		Where("State = ?", model.MigrationItemStatePending).
		OrderBy("RequestAt ASC", "Position ASC").
		Limit(1)

	var raw rawMigrationItem
	err := sqlStore.getBuilder(sqlStore.db, &raw, builder)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to query for pending migration item")
	}

	return raw.toMigrationItem()
}

// UpdateMigrationItem updates the mutable fields of the given item.
func (sqlStore *SQLStore) UpdateMigrationItem(item *model.MigrationItem) error {
	stagesRaw, err := json.Marshal(item.MigratedStages)
	if err != nil {
		return errors.Wrap(err, "failed to marshal migrated stages")
	}

	_, err = sqlStore.execBuilder(sqlStore.db, sq.
		Update(migrationItemTable).
		SetMap(map[string]interface{}{
			"TargetDocumentID":  item.TargetDocumentID,
			"State":             item.State,
			"MigratedStagesRaw": stagesRaw,
			"ErrorMessage":      item.ErrorMessage,
			"CompleteAt":        item.CompleteAt,
		}).
		Where("ID = ?", item.ID),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update migration item")
	}

	return nil
}
