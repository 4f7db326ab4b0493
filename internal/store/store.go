package store

import (
	"database/sql"
	"net/url"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/morag-io/morag-cloud/model"
)

// SQLStore abstracts access to the database.
type SQLStore struct {
	db     *sqlx.DB
	logger log.FieldLogger
}

// New constructs a new instance of SQLStore.
func New(dsn string, logger log.FieldLogger) (*SQLStore, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse DSN as an url")
	}

	switch u.Scheme {
	case "sqlite", "sqlite3":
		db, err := sqlx.Connect("sqlite3", u.Host+u.Path)
		if err != nil {
			return nil, err
		}

		// Serialize access to avoid SQLITE_BUSY under concurrent writers.
		db.SetMaxOpenConns(1)
		db.MapperFunc(func(s string) string { return s })

		return &SQLStore{db, logger}, nil

	case "postgres", "postgresql":
		u.Scheme = "postgres"

		usePgTemp := false
		query := u.Query()
		if _, ok := query["pg_temp"]; ok {
			usePgTemp = true
			query.Del("pg_temp")
			u.RawQuery = query.Encode()
		}

		db, err := sqlx.Connect("postgres", u.String())
		if err != nil {
			return nil, err
		}
		db.MapperFunc(func(s string) string { return s })

		if usePgTemp {
			// Force the use of the current session's temporary-table schema,
			// simplifying testing.
			db.Exec("SET search_path TO pg_temp")
		}

		return &SQLStore{db, logger}, nil

	default:
		return nil, errors.Errorf("unsupported dsn scheme %s", u.Scheme)
	}
}

// queryer is an interface describing a resource that can query.
type queryer interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
}

// get queries for a single row, writing the result into dest.
func (sqlStore *SQLStore) getBuilder(q queryer, dest interface{}, b builder) error {
	sqlString, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "failed to build sql")
	}

	sqlString = sqlStore.db.Rebind(sqlString)

	return q.Get(dest, sqlString, args...)
}

// builder is an interface describing a resource that can construct SQL and
// arguments.
type builder interface {
	ToSql() (string, []interface{}, error)
}

// selectBuilder queries for one or more rows, building the sql, and writing
// the result into dest.
func (sqlStore *SQLStore) selectBuilder(q queryer, dest interface{}, b builder) error {
	sqlString, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "failed to build sql")
	}

	sqlString = sqlStore.db.Rebind(sqlString)

	return q.Select(dest, sqlString, args...)
}

// execer is an interface describing a resource that can execute write queries.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// exec executes the given query using positional arguments, automatically
// rebinding for the underlying database.
func (sqlStore *SQLStore) exec(e execer, sqlString string, args ...interface{}) (sql.Result, error) {
	sqlString = sqlStore.db.Rebind(sqlString)
	return e.Exec(sqlString, args...)
}

// execBuilder executes the write query described by the given builder.
func (sqlStore *SQLStore) execBuilder(e execer, b builder) (sql.Result, error) {
	sqlString, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build sql")
	}

	return sqlStore.exec(e, sqlString, args...)
}

// Close closes the underlying database connection.
func (sqlStore *SQLStore) Close() error {
	return sqlStore.db.Close()
}

// applyPagingFilter applies the given paging constraints to the builder.
func applyPagingFilter(builder sq.SelectBuilder, paging model.Paging, tablePrefix ...string) sq.SelectBuilder {
	prefix := ""
	if len(tablePrefix) > 0 {
		prefix = tablePrefix[0] + "."
	}

	if paging.PerPage != model.AllPerPage {
		builder = builder.
			Limit(uint64(paging.PerPage)).
			Offset(uint64(paging.Page * paging.PerPage))
	}

	if !paging.IncludeDeleted {
		builder = builder.Where(prefix + "DeleteAt = 0")
	}

	return builder
}

// GetMillis returns the current time in milliseconds since the epoch.
func GetMillis() int64 {
	return model.GetMillis()
}
