package model

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Realm is a tenant-scoped container grouping documents.
type Realm struct {
	ID        string
	Name      string
	OwnerID   string
	MemberIDs []string
	CreateAt  int64
	DeleteAt  int64
}

// IsAccessibleBy determines whether the given user owns or is a member of the
// realm.
func (r *Realm) IsAccessibleBy(userID string) bool {
	if r.OwnerID == userID {
		return true
	}
	for _, member := range r.MemberIDs {
		if member == userID {
			return true
		}
	}
	return false
}

// RealmFilter describes the parameters used to constrain a set of realms.
type RealmFilter struct {
	Paging
	OwnerID string
}

// CreateRealmRequest describes the parameters to create a realm.
type CreateRealmRequest struct {
	Name      string
	MemberIDs []string
}

// Validate checks the request for required fields.
func (request *CreateRealmRequest) Validate() error {
	if request.Name == "" {
		return errors.New("realm name is required")
	}

	return nil
}

// NewCreateRealmRequestFromReader will create a CreateRealmRequest from an
// io.Reader with JSON data.
func NewCreateRealmRequestFromReader(reader io.Reader) (*CreateRealmRequest, error) {
	var request CreateRealmRequest
	err := json.NewDecoder(reader).Decode(&request)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode create realm request")
	}

	return &request, nil
}

// NewRealmFromReader will create a Realm from an io.Reader with JSON data.
func NewRealmFromReader(reader io.Reader) (*Realm, error) {
	var realm Realm
	err := json.NewDecoder(reader).Decode(&realm)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode realm")
	}

	return &realm, nil
}

// NewRealmsFromReader will create a []*Realm from an io.Reader with JSON
// data.
func NewRealmsFromReader(reader io.Reader) ([]*Realm, error) {
	realms := []*Realm{}
	err := json.NewDecoder(reader).Decode(&realms)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode realms")
	}

	return realms, nil
}
