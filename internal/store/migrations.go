package store

import (
	"database/sql"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

const systemTable = "System"

type migration struct {
	fromVersion int
	toVersion   int
	migrate     func(e execer) error
}

// migrations defines the set of schema migrations necessary to advance the
// database to the current version. Statements stick to the type subset that
// SQLite and PostgreSQL share.
var migrations = []migration{
	{0, 1, func(e execer) error {
		_, err := e.Exec(`
			CREATE TABLE System (
				SKey VARCHAR(64) PRIMARY KEY,
				SValue VARCHAR(1024) NOT NULL
			);
		`)
		if err != nil {
			return err
		}

		_, err = e.Exec(`
			CREATE TABLE Realm (
				ID VARCHAR(26) PRIMARY KEY,
				Name VARCHAR(256) NOT NULL,
				OwnerID VARCHAR(26) NOT NULL,
				MemberIDsRaw TEXT NOT NULL,
				CreateAt BIGINT NOT NULL,
				DeleteAt BIGINT NOT NULL
			);
		`)
		if err != nil {
			return err
		}

		_, err = e.Exec(`
			CREATE TABLE Document (
				ID VARCHAR(26) PRIMARY KEY,
				RealmID VARCHAR(26) NOT NULL,
				OwnerID VARCHAR(26) NOT NULL,
				Name VARCHAR(512) NOT NULL,
				Type VARCHAR(64) NOT NULL,
				State VARCHAR(64) NOT NULL,
				Version INTEGER NOT NULL,
				CurrentStage VARCHAR(64) NOT NULL,
				ProcessingMode VARCHAR(32) NOT NULL,
				CreateAt BIGINT NOT NULL,
				UpdateAt BIGINT NOT NULL,
				DeleteAt BIGINT NOT NULL
			);
		`)
		if err != nil {
			return err
		}

		_, err = e.Exec(`
			CREATE TABLE Migration (
				ID VARCHAR(26) PRIMARY KEY,
				SourceRealmID VARCHAR(26) NOT NULL,
				TargetRealmID VARCHAR(26) NOT NULL,
				State VARCHAR(64) NOT NULL,
				TotalDocuments INTEGER NOT NULL,
				ProcessedDocuments INTEGER NOT NULL,
				OptionsRaw TEXT NOT NULL,
				CreatedBy VARCHAR(26) NOT NULL,
				ErrorMessage TEXT NOT NULL,
				RequestAt BIGINT NOT NULL,
				CompleteAt BIGINT NOT NULL,
				DeleteAt BIGINT NOT NULL,
				LockAcquiredBy VARCHAR(26) NULL,
				LockAcquiredAt BIGINT NOT NULL
			);
		`)
		if err != nil {
			return err
		}

		_, err = e.Exec(`
			CREATE TABLE MigrationItem (
				ID VARCHAR(26) PRIMARY KEY,
				MigrationID VARCHAR(26) NOT NULL,
				SourceDocumentID VARCHAR(26) NOT NULL,
				TargetDocumentID VARCHAR(26) NOT NULL,
				Position INTEGER NOT NULL,
				State VARCHAR(64) NOT NULL,
				MigratedStagesRaw TEXT NOT NULL,
				ErrorMessage TEXT NOT NULL,
				RequestAt BIGINT NOT NULL,
				CompleteAt BIGINT NOT NULL
			);
		`)
		if err != nil {
			return err
		}

		_, err = e.Exec(`
			CREATE TABLE StageJob (
				ID VARCHAR(26) PRIMARY KEY,
				DocumentID VARCHAR(26) NOT NULL,
				Stage VARCHAR(64) NOT NULL,
				MigrationID VARCHAR(26) NOT NULL,
				Position INTEGER NOT NULL,
				State VARCHAR(64) NOT NULL,
				ScheduledAt BIGINT NOT NULL,
				CreateAt BIGINT NOT NULL
			);
		`)
		if err != nil {
			return err
		}

		_, err = e.Exec(`
			CREATE TABLE Webhooks (
				ID VARCHAR(26) PRIMARY KEY,
				OwnerID VARCHAR(26) NOT NULL,
				URL TEXT NOT NULL,
				CreateAt BIGINT NOT NULL,
				DeleteAt BIGINT NOT NULL
			);
		`)
		if err != nil {
			return err
		}

		_, err = e.Exec(`CREATE INDEX MigrationItem_MigrationID ON MigrationItem (MigrationID);`)
		if err != nil {
			return err
		}
		_, err = e.Exec(`CREATE INDEX Document_RealmID ON Document (RealmID);`)
		if err != nil {
			return err
		}
		_, err = e.Exec(`CREATE INDEX StageJob_DocumentID ON StageJob (DocumentID);`)
		if err != nil {
			return err
		}

		return nil
	}},
}

// Migrate advances the database schema to the latest version.
func (sqlStore *SQLStore) Migrate() error {
	currentVersion, err := sqlStore.getCurrentVersion()
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.fromVersion != currentVersion {
			continue
		}

		sqlStore.logger.Infof("Migrating schema from version %d to %d", migration.fromVersion, migration.toVersion)
		err = migration.migrate(sqlStore.db)
		if err != nil {
			return errors.Wrapf(err, "failed to migrate schema to version %d", migration.toVersion)
		}

		err = sqlStore.setCurrentVersion(migration.toVersion)
		if err != nil {
			return err
		}
		currentVersion = migration.toVersion
	}

	return nil
}

func (sqlStore *SQLStore) getCurrentVersion() (int, error) {
	var result struct {
		SValue string `db:"SValue"`
	}

	err := sqlStore.getBuilder(sqlStore.db, &result, sq.
		Select("SValue").
		From(systemTable).
		Where("SKey = ?", "Version"),
	)
	if err == sql.ErrNoRows {
		return 0, nil
	} else if err != nil {
		// The System table does not exist before the first migration runs.
		return 0, nil
	}

	version, err := strconv.Atoi(result.SValue)
	if err != nil {
		return 0, errors.Wrap(err, "failed to parse schema version")
	}

	return version, nil
}

func (sqlStore *SQLStore) setCurrentVersion(version int) error {
	_, err := sqlStore.execBuilder(sqlStore.db, sq.
		Delete(systemTable).
		Where("SKey = ?", "Version"),
	)
	if err != nil {
		return errors.Wrap(err, "failed to clear old schema version")
	}

	_, err = sqlStore.execBuilder(sqlStore.db, sq.
		Insert(systemTable).
		SetMap(map[string]interface{}{
			"SKey":   "Version",
			"SValue": strconv.Itoa(version),
		}),
	)
	if err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}

	return nil
}
