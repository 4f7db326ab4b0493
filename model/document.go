package model

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Document is a single ingested document owned by a realm.
type Document struct {
	ID      string
	RealmID string
	OwnerID string
	Name    string
	Type    string
	State   string
	Version int

	CurrentStage   Stage
	ProcessingMode ProcessingMode

	CreateAt int64
	UpdateAt int64
	DeleteAt int64
}

// ProcessingMode determines whether the pipeline advances a document
// automatically or waits for explicit stage jobs.
type ProcessingMode string

const (
	ProcessingModeAutomatic ProcessingMode = "automatic"
	ProcessingModeManual    ProcessingMode = "manual"
)

// DocumentFilter describes the parameters used to constrain a set of
// documents.
type DocumentFilter struct {
	Paging
	IDs     []string
	RealmID string
	OwnerID string
	Name    string
}

// CreateDocumentRequest describes the parameters to register a document.
type CreateDocumentRequest struct {
	RealmID string
	Name    string
	Type    string
}

// Validate checks the request for required fields.
func (request *CreateDocumentRequest) Validate() error {
	if request.RealmID == "" {
		return errors.New("realm id is required")
	}
	if request.Name == "" {
		return errors.New("document name is required")
	}

	return nil
}

// NewCreateDocumentRequestFromReader will create a CreateDocumentRequest from
// an io.Reader with JSON data.
func NewCreateDocumentRequestFromReader(reader io.Reader) (*CreateDocumentRequest, error) {
	var request CreateDocumentRequest
	err := json.NewDecoder(reader).Decode(&request)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode create document request")
	}

	return &request, nil
}

// NewDocumentFromReader will create a Document from an io.Reader with JSON
// data.
func NewDocumentFromReader(reader io.Reader) (*Document, error) {
	var document Document
	err := json.NewDecoder(reader).Decode(&document)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode document")
	}

	return &document, nil
}

// NewDocumentsFromReader will create a []*Document from an io.Reader with
// JSON data.
func NewDocumentsFromReader(reader io.Reader) ([]*Document, error) {
	documents := []*Document{}
	err := json.NewDecoder(reader).Decode(&documents)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode documents")
	}

	return documents, nil
}
