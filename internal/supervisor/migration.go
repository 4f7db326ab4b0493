package supervisor

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/morag-io/morag-cloud/internal/components"
	"github.com/morag-io/morag-cloud/internal/webhook"
	"github.com/morag-io/morag-cloud/model"
)

// migrationStore abstracts the database operations required by the
// supervisor.
type migrationStore interface {
	GetUnlockedMigrationsPendingWork() ([]*model.Migration, error)
	GetMigration(id string) (*model.Migration, error)
	UpdateMigrationState(migration *model.Migration) error
	UpdateMigration(migration *model.Migration) error
	LockMigration(migrationID, lockerID string) (bool, error)
	UnlockMigration(migrationID, lockerID string, force bool) (bool, error)

	GetNextPendingMigrationItem(migrationID string) (*model.MigrationItem, error)
	UpdateMigrationItem(item *model.MigrationItem) error

	GetDocument(id string) (*model.Document, error)
	GetDocumentByName(realmID, name string) (*model.Document, error)
	CreateDocument(document *model.Document) error
	UpdateDocument(document *model.Document) error
	GetRealm(id string) (*model.Realm, error)
	CreateStageJob(job *model.StageJob) error

	GetWebhooks(filter *model.WebhookFilter) ([]*model.Webhook, error)
}

// MigrationSupervisor finds migrations pending work and effects the required
// changes.
//
// Documents are processed one per tick, strictly in request order, so
// cancellation is always observed between documents and a single document is
// never worked on twice.
type MigrationSupervisor struct {
	store      migrationStore
	files      components.DocumentFileStore
	instanceID string
	logger     log.FieldLogger
}

// NewMigrationSupervisor creates a new MigrationSupervisor.
func NewMigrationSupervisor(store migrationStore, files components.DocumentFileStore, instanceID string, logger log.FieldLogger) *MigrationSupervisor {
	return &MigrationSupervisor{
		store:      store,
		files:      files,
		instanceID: instanceID,
		logger:     logger,
	}
}

// Shutdown performs graceful shutdown tasks for the supervisor.
func (s *MigrationSupervisor) Shutdown() {
	s.logger.Debug("Shutting down migration supervisor")
}

// Do looks for work to be done on any pending migrations and attempts to
// schedule the required work.
func (s *MigrationSupervisor) Do() error {
	migrations, err := s.store.GetUnlockedMigrationsPendingWork()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to query for pending work")
		return nil
	}

	for _, migration := range migrations {
		s.Supervise(migration)
	}

	return nil
}

// Supervise schedules the required work on the given migration.
func (s *MigrationSupervisor) Supervise(migration *model.Migration) {
	logger := s.logger.WithFields(log.Fields{
		"migration": migration.ID,
	})

	if !s.lockMigration(migration.ID, logger) {
		return
	}
	defer s.unlockMigration(migration.ID, logger)

	// Before working on the migration, ensure it was not updated to a new
	// state by another server or a concurrent cancellation.
	originalState := migration.State
	migration, err := s.store.GetMigration(migration.ID)
	if err != nil {
		logger.WithError(err).Error("Failed to get refreshed migration")
		return
	}
	if migration.State != originalState {
		logger.WithField("oldMigrationState", originalState).
			WithField("newMigrationState", migration.State).
			Warn("Migration state changed underneath us; skipping...")
		return
	}

	logger.Debugf("Supervising migration in state %s", migration.State)

	newState := s.transitionMigration(migration, logger)
	errorMessage := migration.ErrorMessage

	migration, err = s.store.GetMigration(migration.ID)
	if err != nil {
		logger.WithError(err).Errorf("Failed to get migration and thus persist state %s", newState)
		return
	}

	if migration.State == newState {
		return
	}
	if migration.State == model.MigrationStateCancelled {
		// A cancellation raced our transition; it wins.
		logger.Info("Migration was cancelled while being supervised")
		return
	}

	oldState := migration.State
	migration.State = newState
	if errorMessage != "" {
		migration.ErrorMessage = errorMessage
	}
	if migration.IsTerminal() && migration.CompleteAt == 0 {
		migration.CompleteAt = model.GetMillis()
	}

	err = s.store.UpdateMigrationState(migration)
	if err != nil {
		logger.WithError(err).Errorf("Failed to set migration state to %s", newState)
		return
	}

	webhookPayload := &model.WebhookPayload{
		Type:      model.TypeMigration,
		ID:        migration.ID,
		NewState:  string(migration.State),
		OldState:  string(oldState),
		Timestamp: time.Now().UnixNano(),
		ExtraData: map[string]string{"SourceRealm": migration.SourceRealmID, "TargetRealm": migration.TargetRealmID},
	}
	err = webhook.SendToAllWebhooks(s.store, webhookPayload, logger.WithField("webhookEvent", webhookPayload.NewState))
	if err != nil {
		logger.WithError(err).Error("Unable to process and send webhooks")
	}

	logger.Debugf("Transitioned migration from %s to %s", oldState, migration.State)
}

// lockMigration claims the migration for this instance. A false return means
// another instance holds it, or the store refused the claim.
func (s *MigrationSupervisor) lockMigration(migrationID string, logger log.FieldLogger) bool {
	locked, err := s.store.LockMigration(migrationID, s.instanceID)
	if err != nil {
		logger.WithError(err).Error("Failed to lock migration")
		return false
	}

	return locked
}

func (s *MigrationSupervisor) unlockMigration(migrationID string, logger log.FieldLogger) {
	unlocked, err := s.store.UnlockMigration(migrationID, s.instanceID, false)
	if err != nil {
		logger.WithError(err).Error("Failed to unlock migration")
	} else if !unlocked {
		logger.Error("Migration lock was not held at unlock time")
	}
}

// transitionMigration works with the given migration to transition it towards
// a terminal state.
func (s *MigrationSupervisor) transitionMigration(migration *model.Migration, logger log.FieldLogger) model.MigrationState {
	switch migration.State {
	case model.MigrationStateRequested:
		return model.MigrationStateInProgress
	case model.MigrationStateInProgress:
		return s.processNextDocument(migration, logger)
	default:
		logger.Warnf("Found migration pending work in unexpected state %s", migration.State)
		return migration.State
	}
}

// processNextDocument migrates the oldest pending document of the migration.
// A document-level failure marks only that document's item as failed; the
// migration itself fails only on infrastructure errors.
func (s *MigrationSupervisor) processNextDocument(migration *model.Migration, logger log.FieldLogger) model.MigrationState {
	item, err := s.store.GetNextPendingMigrationItem(migration.ID)
	if err != nil {
		logger.WithError(err).Error("Failed to get next pending migration item")
		migration.ErrorMessage = err.Error()
		return model.MigrationStateFailed
	}
	if item == nil {
		logger.Infof("Migration processed %d of %d documents", migration.ProcessedDocuments, migration.TotalDocuments)
		return model.MigrationStateSucceeded
	}

	itemLogger := logger.WithField("document", item.SourceDocumentID)

	err = s.migrateDocument(migration, item, itemLogger)
	if err != nil {
		itemLogger.WithError(err).Error("Failed to migrate document")
		item.State = model.MigrationItemStateFailed
		item.ErrorMessage = err.Error()
	} else {
		item.State = model.MigrationItemStateSucceeded
	}
	item.CompleteAt = model.GetMillis()

	err = s.store.UpdateMigrationItem(item)
	if err != nil {
		itemLogger.WithError(err).Error("Failed to record migration item outcome")
		migration.ErrorMessage = err.Error()
		return model.MigrationStateFailed
	}

	if migration.ProcessedDocuments < migration.TotalDocuments {
		migration.ProcessedDocuments++
	}
	err = s.store.UpdateMigration(migration)
	if err != nil {
		itemLogger.WithError(err).Error("Failed to update migration counters")
		migration.ErrorMessage = err.Error()
		return model.MigrationStateFailed
	}

	return model.MigrationStateInProgress
}

// migrateDocument performs the copy step and, when configured, schedules
// stage reprocessing for the document now living in the target realm.
func (s *MigrationSupervisor) migrateDocument(migration *model.Migration, item *model.MigrationItem, logger log.FieldLogger) error {
	document, err := s.store.GetDocument(item.SourceDocumentID)
	if err != nil {
		return err
	}
	if document == nil {
		return errors.Errorf("document %s not found", item.SourceDocumentID)
	}

	target, err := components.CopyDocument(s.store, s.files, document, migration.TargetRealmID, migration.Options, logger)
	if err != nil {
		return err
	}
	item.TargetDocumentID = target.ID

	if len(migration.Options.ReprocessStages) == 0 {
		return nil
	}

	jobIDs, err := components.ScheduleStageReprocessing(s.store, target.ID, migration.ID, migration.Options.ReprocessStages, logger)
	migration.Options.ScheduledJobIDs = append(migration.Options.ScheduledJobIDs, jobIDs...)
	if err != nil {
		// Jobs already enqueued are kept; they are tagged with the migration
		// id and harmless on their own.
		return err
	}
	item.MigratedStages = model.SortStagesByPipelineOrder(migration.Options.ReprocessStages)

	return nil
}
