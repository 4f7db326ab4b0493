package components

import (
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/morag-io/morag-cloud/model"
)

type documentCopyStore interface {
	GetRealm(id string) (*model.Realm, error)
	GetDocumentByName(realmID, name string) (*model.Document, error)
	CreateDocument(document *model.Document) error
	UpdateDocument(document *model.Document) error
}

// DocumentFileStore abstracts the per-document artifact directories.
type DocumentFileStore interface {
	CopyDocumentFiles(sourceDocumentID, targetDocumentID string) error
	DeleteDocumentFiles(documentID string) error
}

// CopyDocument moves or copies a single document into the target realm per
// the migration options, returning the document now living in the target
// realm.
//
// In move mode with PreserveOriginal unset, deleting the source directory is
// best effort: a failure is logged and the migration proceeds. There is no
// transaction spanning the metadata write and the file copy; a crash between
// the two leaves the document half-migrated, which the caller's item record
// surfaces but nothing rolls back.
func CopyDocument(store documentCopyStore, files DocumentFileStore, document *model.Document, targetRealmID string, options *model.MigrationOptions, logger log.FieldLogger) (*model.Document, error) {
	targetRealm, err := store.GetRealm(targetRealmID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get target realm")
	}
	if targetRealm == nil || targetRealm.DeleteAt > 0 {
		return nil, NewErr(http.StatusBadRequest, errors.Errorf("target realm %s not found", targetRealmID))
	}

	if options.Mode == model.MigrationModeMove {
		return moveDocument(store, files, document, targetRealmID, options, logger)
	}

	existing, err := store.GetDocumentByName(targetRealmID, document.Name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check for name conflict in target realm")
	}
	if existing != nil {
		return nil, NewErr(http.StatusConflict, errors.Errorf("document named %q already exists in target realm", document.Name))
	}

	target := &model.Document{
		RealmID:        targetRealmID,
		OwnerID:        document.OwnerID,
		Name:           document.Name,
		Type:           document.Type,
		State:          document.State,
		Version:        document.Version,
		CurrentStage:   document.CurrentStage,
		ProcessingMode: document.ProcessingMode,
	}
	err = store.CreateDocument(target)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create target document")
	}

	if options.CopyStageFiles {
		err = files.CopyDocumentFiles(document.ID, target.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to copy stage files to document %s", target.ID)
		}
	}

	return target, nil
}

func moveDocument(store documentCopyStore, files DocumentFileStore, document *model.Document, targetRealmID string, options *model.MigrationOptions, logger log.FieldLogger) (*model.Document, error) {
	document.RealmID = targetRealmID
	err := store.UpdateDocument(document)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reassign document to target realm")
	}

	if !options.PreserveOriginal {
		err = files.DeleteDocumentFiles(document.ID)
		if err != nil {
			logger.WithError(err).Warnf("Failed to clean up files of moved document %s", document.ID)
		}
	}

	return document, nil
}
