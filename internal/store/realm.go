package store

import (
	"database/sql"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/morag-io/morag-cloud/model"
)

const realmTable = "Realm"

var realmSelect sq.SelectBuilder

func init() {
	realmSelect = sq.
		Select("ID", "Name", "OwnerID", "MemberIDsRaw", "CreateAt", "DeleteAt").
		From(realmTable)
}

type rawRealm struct {
	*model.Realm
	MemberIDsRaw []byte
}

type rawRealms []*rawRealm

func (r *rawRealm) toRealm() (*model.Realm, error) {
	if len(r.MemberIDsRaw) > 0 {
		err := json.Unmarshal(r.MemberIDsRaw, &r.Realm.MemberIDs)
		if err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal realm members")
		}
	}

	return r.Realm, nil
}

func (rs rawRealms) toRealms() ([]*model.Realm, error) {
	realms := make([]*model.Realm, 0, len(rs))
	for _, raw := range rs {
		realm, err := raw.toRealm()
		if err != nil {
			return nil, err
		}
		realms = append(realms, realm)
	}
	return realms, nil
}

// CreateRealm records the given realm to the database, assigning it a unique
// ID.
func (sqlStore *SQLStore) CreateRealm(realm *model.Realm) error {
	realm.ID = model.NewID()
	realm.CreateAt = GetMillis()

	membersRaw, err := json.Marshal(realm.MemberIDs)
	if err != nil {
		return errors.Wrap(err, "failed to marshal realm members")
	}

	_, err = sqlStore.execBuilder(sqlStore.db, sq.
		Insert(realmTable).
		SetMap(map[string]interface{}{
			"ID":           realm.ID,
			"Name":         realm.Name,
			"OwnerID":      realm.OwnerID,
			"MemberIDsRaw": membersRaw,
			"CreateAt":     realm.CreateAt,
			"DeleteAt":     0,
		}),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create realm")
	}

	return nil
}

// GetRealm fetches the given realm.
func (sqlStore *SQLStore) GetRealm(id string) (*model.Realm, error) {
	builder := realmSelect.
		Where("ID = ?", id)

	var raw rawRealm
	err := sqlStore.getBuilder(sqlStore.db, &raw, builder)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to query for realm")
	}

	return raw.toRealm()
}

// GetRealms fetches the realms matching the given filter.
func (sqlStore *SQLStore) GetRealms(filter *model.RealmFilter) ([]*model.Realm, error) {
	builder := realmSelect.
		OrderBy("CreateAt ASC")
	builder = applyPagingFilter(builder, filter.Paging)

	if filter.OwnerID != "" {
		builder = builder.Where("OwnerID = ?", filter.OwnerID)
	}

	var raws rawRealms
	err := sqlStore.selectBuilder(sqlStore.db, &raws, builder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query for realms")
	}

	return raws.toRealms()
}
