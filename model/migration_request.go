package model

import (
	"encoding/json"
	"io"
	"net/url"

	"github.com/pkg/errors"
)

// CreateMigrationRequest describes the parameters to request a migration of
// documents between realms.
type CreateMigrationRequest struct {
	DocumentIDs   []string
	SourceRealmID string
	TargetRealmID string
	Options       *MigrationOptions
}

// Validate performs the request-level checks that need no store access.
func (request *CreateMigrationRequest) Validate() error {
	if len(request.DocumentIDs) == 0 {
		return errors.New("at least one document id is required")
	}
	if request.SourceRealmID == "" {
		return errors.New("source realm id is required")
	}
	if request.TargetRealmID == "" {
		return errors.New("target realm id is required")
	}
	if request.SourceRealmID == request.TargetRealmID {
		return errors.New("source and target realm must differ")
	}
	if err := request.Options.Validate(); err != nil {
		return errors.Wrap(err, "invalid migration options")
	}

	return nil
}

// NewCreateMigrationRequestFromReader will create a CreateMigrationRequest
// from an io.Reader with JSON data.
func NewCreateMigrationRequestFromReader(reader io.Reader) (*CreateMigrationRequest, error) {
	var request CreateMigrationRequest
	err := json.NewDecoder(reader).Decode(&request)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode create migration request")
	}

	return &request, nil
}

// GetMigrationsRequest describes the parameters to request a list of
// migrations.
type GetMigrationsRequest struct {
	Paging
	RealmID string
	State   string
}

// ApplyToURL modifies the given url to include query string parameters for
// the request.
func (request *GetMigrationsRequest) ApplyToURL(u *url.URL) {
	q := u.Query()
	q.Add("realm", request.RealmID)
	q.Add("state", request.State)
	request.Paging.AddToQuery(q)
	u.RawQuery = q.Encode()
}
