package store

import (
	"database/sql"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/morag-io/morag-cloud/model"
)

const migrationTable = "Migration"

var migrationSelect sq.SelectBuilder

func init() {
	migrationSelect = sq.
		Select(
			"ID", "SourceRealmID", "TargetRealmID", "State", "TotalDocuments",
			"ProcessedDocuments", "OptionsRaw", "CreatedBy", "ErrorMessage",
			"RequestAt", "CompleteAt", "DeleteAt", "LockAcquiredBy", "LockAcquiredAt",
		).
		From(migrationTable)
}

type rawMigration struct {
	*model.Migration
	OptionsRaw []byte
}

type rawMigrations []*rawMigration

func (r *rawMigration) toMigration() (*model.Migration, error) {
	if len(r.OptionsRaw) > 0 {
		options := model.MigrationOptions{}
		err := json.Unmarshal(r.OptionsRaw, &options)
		if err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal migration options")
		}
		r.Migration.Options = &options
	}

	return r.Migration, nil
}

func (rs rawMigrations) toMigrations() ([]*model.Migration, error) {
	migrations := make([]*model.Migration, 0, len(rs))
	for _, raw := range rs {
		migration, err := raw.toMigration()
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, migration)
	}
	return migrations, nil
}

// CreateMigration records the given migration to the database, assigning it a
// unique ID, and creates one pending item per document.
func (sqlStore *SQLStore) CreateMigration(migration *model.Migration, documentIDs []string) error {
	migration.ID = model.NewID()
	migration.State = model.MigrationStateRequested
	migration.RequestAt = GetMillis()
	migration.TotalDocuments = len(documentIDs)
	migration.ProcessedDocuments = 0

	optionsRaw, err := json.Marshal(migration.Options)
	if err != nil {
		return errors.Wrap(err, "failed to marshal migration options")
	}

	tx, err := sqlStore.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = sqlStore.execBuilder(tx, sq.
		Insert(migrationTable).
		SetMap(map[string]interface{}{
			"ID":                 migration.ID,
			"SourceRealmID":      migration.SourceRealmID,
			"TargetRealmID":      migration.TargetRealmID,
			"State":              migration.State,
			"TotalDocuments":     migration.TotalDocuments,
			"ProcessedDocuments": migration.ProcessedDocuments,
			"OptionsRaw":         optionsRaw,
			"CreatedBy":          migration.CreatedBy,
			"ErrorMessage":       "",
			"RequestAt":          migration.RequestAt,
			"CompleteAt":         0,
			"DeleteAt":           0,
			"LockAcquiredBy":     nil,
			"LockAcquiredAt":     0,
		}),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create migration")
	}

	for i, documentID := range documentIDs {
		err = sqlStore.createMigrationItem(tx, &model.MigrationItem{
			MigrationID:      migration.ID,
			SourceDocumentID: documentID,
			Position:         i,
			State:            model.MigrationItemStatePending,
			RequestAt:        migration.RequestAt,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to create migration item for document %s", documentID)
		}
	}

	err = tx.Commit()
	if err != nil {
		return errors.Wrap(err, "failed to commit migration creation")
	}

	return nil
}

// GetMigration fetches the given migration.
func (sqlStore *SQLStore) GetMigration(id string) (*model.Migration, error) {
	builder := migrationSelect.
		Where("ID = ?", id)

	var raw rawMigration
	err := sqlStore.getBuilder(sqlStore.db, &raw, builder)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to query for migration")
	}

	return raw.toMigration()
}

// GetMigrations fetches the given page of migrations. The first page is 0.
func (sqlStore *SQLStore) GetMigrations(filter *model.MigrationFilter) ([]*model.Migration, error) {
	builder := migrationSelect.
		OrderBy("RequestAt DESC")
	builder = applyMigrationFilter(builder, filter)

	var raws rawMigrations
	err := sqlStore.selectBuilder(sqlStore.db, &raws, builder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query for migrations")
	}

	return raws.toMigrations()
}

func applyMigrationFilter(builder sq.SelectBuilder, filter *model.MigrationFilter) sq.SelectBuilder {
	builder = applyPagingFilter(builder, filter.Paging)

	if len(filter.IDs) > 0 {
		builder = builder.Where(sq.Eq{"ID": filter.IDs})
	}
	if filter.RealmID != "" {
		builder = builder.Where(sq.Or{
			sq.Expr("SourceRealmID = ?", filter.RealmID),
			sq.Expr("TargetRealmID = ?", filter.RealmID),
		})
	}
	if filter.CreatedBy != "" {
		builder = builder.Where("CreatedBy = ?", filter.CreatedBy)
	}
	if len(filter.States) > 0 {
		builder = builder.Where(sq.Eq{"State": filter.States})
	}

	return builder
}

// GetUnlockedMigrationsPendingWork returns unlocked migrations in a pending
// state, oldest first.
func (sqlStore *SQLStore) GetUnlockedMigrationsPendingWork() ([]*model.Migration, error) {
	builder := migrationSelect.
		Where(sq.Eq{
			"State": model.AllMigrationStatesPendingWork,
		}).
		Where("LockAcquiredAt = 0").
		OrderBy("RequestAt ASC")

	var raws rawMigrations
	err := sqlStore.selectBuilder(sqlStore.db, &raws, builder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query for migrations pending work")
	}

	return raws.toMigrations()
}

// UpdateMigrationState updates the given migration's state and error message
// only. The update is refused once the migration has been cancelled, so a
// supervisor holding a stale snapshot can never resurrect a cancelled
// migration.
func (sqlStore *SQLStore) UpdateMigrationState(migration *model.Migration) error {
	_, err := sqlStore.execBuilder(sqlStore.db, sq.
		Update(migrationTable).
		SetMap(map[string]interface{}{
			"State":        migration.State,
			"ErrorMessage": migration.ErrorMessage,
			"CompleteAt":   migration.CompleteAt,
		}).
		Where("ID = ?", migration.ID).
		Where(sq.NotEq{"State": model.MigrationStateCancelled}),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update migration state")
	}

	return nil
}

// UpdateMigration updates the given migration's progress counters and
// options. State transitions go through UpdateMigrationState or
// CancelMigration, both of which guard against concurrent writers.
func (sqlStore *SQLStore) UpdateMigration(migration *model.Migration) error {
	optionsRaw, err := json.Marshal(migration.Options)
	if err != nil {
		return errors.Wrap(err, "failed to marshal migration options")
	}

	return sqlStore.updateMigrationFields(migration.ID, map[string]interface{}{
		"TotalDocuments":     migration.TotalDocuments,
		"ProcessedDocuments": migration.ProcessedDocuments,
		"OptionsRaw":         optionsRaw,
	})
}

func (sqlStore *SQLStore) updateMigrationFields(id string, fields map[string]interface{}) error {
	_, err := sqlStore.execBuilder(sqlStore.db, sq.
		Update(migrationTable).
		SetMap(fields).
		Where("ID = ?", id),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update migration")
	}

	return nil
}

// CancelMigration transitions the given migration to the cancelled state,
// refusing terminal migrations. The conditional update makes cancellation
// safe against the supervisor's own state writes.
func (sqlStore *SQLStore) CancelMigration(id string) (bool, error) {
	result, err := sqlStore.execBuilder(sqlStore.db, sq.
		Update(migrationTable).
		Set("State", model.MigrationStateCancelled).
		Set("CompleteAt", GetMillis()).
		Where("ID = ?", id).
		Where(sq.Eq{"State": model.AllMigrationStatesCancellable}),
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to cancel migration")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to count cancelled rows")
	}

	return affected > 0, nil
}

// LockMigration marks the migration as locked for exclusive use by the
// caller.
func (sqlStore *SQLStore) LockMigration(migrationID, lockerID string) (bool, error) {
	result, err := sqlStore.execBuilder(sqlStore.db, sq.
		Update(migrationTable).
		Set("LockAcquiredBy", lockerID).
		Set("LockAcquiredAt", GetMillis()).
		Where("ID = ?", migrationID).
		Where("LockAcquiredAt = 0"),
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to lock migration")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to count locked rows")
	}

	return affected > 0, nil
}

// UnlockMigration releases a lock previously acquired against the caller.
func (sqlStore *SQLStore) UnlockMigration(migrationID, lockerID string, force bool) (bool, error) {
	builder := sq.
		Update(migrationTable).
		Set("LockAcquiredBy", nil).
		Set("LockAcquiredAt", 0).
		Where("ID = ?", migrationID)
	if !force {
		builder = builder.Where("LockAcquiredBy = ?", lockerID)
	}

	result, err := sqlStore.execBuilder(sqlStore.db, builder)
	if err != nil {
		return false, errors.Wrap(err, "failed to unlock migration")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to count unlocked rows")
	}

	return affected > 0, nil
}

// ReleaseStaleMigrationLocks force-releases every migration lock. Called on
// startup so migrations orphaned by a crashed instance resume instead of
// staying locked forever.
func (sqlStore *SQLStore) ReleaseStaleMigrationLocks() (int64, error) {
	result, err := sqlStore.execBuilder(sqlStore.db, sq.
		Update(migrationTable).
		Set("LockAcquiredBy", nil).
		Set("LockAcquiredAt", 0).
		Where("LockAcquiredAt <> 0"),
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to release stale migration locks")
	}

	return result.RowsAffected()
}
