package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/morag-io/morag-cloud/internal/components"
	"github.com/morag-io/morag-cloud/model"
)

// initMigration registers migration endpoints on the given router.
func initMigration(apiRouter *mux.Router, context *Context) {
	addContext := func(handler contextHandlerFunc) *contextHandler {
		return newContextHandler(context, handler)
	}

	migrationsRouter := apiRouter.PathPrefix("/migrations").Subrouter()
	migrationsRouter.Handle("", addContext(handleCreateMigration)).Methods("POST")
	migrationsRouter.Handle("", addContext(handleGetMigrations)).Methods("GET")

	migrationRouter := apiRouter.PathPrefix("/migrations/{migration:[A-Za-z0-9]{26}}").Subrouter()
	migrationRouter.Handle("", addContext(handleGetMigration)).Methods("GET")
	migrationRouter.Handle("", addContext(handleCancelMigration)).Methods("DELETE")
	migrationRouter.Handle("/progress", addContext(handleGetMigrationProgress)).Methods("GET")
	migrationRouter.Handle("/items", addContext(handleGetMigrationItems)).Methods("GET")
}

// handleCreateMigration responds to POST /api/migrations, beginning a
// migration of documents between realms.
func handleCreateMigration(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "create-migration")

	createMigrationRequest, err := model.NewCreateMigrationRequestFromReader(r.Body)
	if err != nil {
		c.Logger.WithError(err).Error("failed to decode request")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	err = createMigrationRequest.Validate()
	if err != nil {
		c.Logger.WithError(err).Error("invalid migration request")
		w.WriteHeader(http.StatusBadRequest)
		outputJSON(c, w, map[string]string{"error": err.Error()})
		return
	}

	err = validateMigrationAgainstStore(c, createMigrationRequest)
	if err != nil {
		c.Logger.WithError(err).Error("cannot begin migration")
		status := components.ErrToStatus(err)
		w.WriteHeader(status)
		if status != http.StatusInternalServerError {
			outputJSON(c, w, map[string]string{"error": err.Error()})
		}
		return
	}

	migration := &model.Migration{
		SourceRealmID: createMigrationRequest.SourceRealmID,
		TargetRealmID: createMigrationRequest.TargetRealmID,
		Options:       createMigrationRequest.Options,
		CreatedBy:     c.Requester,
	}

	err = c.Store.CreateMigration(migration, createMigrationRequest.DocumentIDs)
	if err != nil {
		c.Logger.WithError(err).Error("failed to create migration")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	c.Logger = c.Logger.WithField("migration", migration.ID)

	// Poke the supervisor so processing starts without waiting for the next
	// scheduled pass; the response does not wait for any document work.
	_ = c.Supervisor.Do()

	w.WriteHeader(http.StatusCreated)
	outputJSON(c, w, migration)
}

// validateMigrationAgainstStore performs the request checks that need store
// access: realm existence and access, plus document ownership and residence.
// Rejections carry a 400 status; store failures stay untagged so they
// surface as 500s rather than blaming the request.
func validateMigrationAgainstStore(c *Context, request *model.CreateMigrationRequest) error {
	sourceRealm, err := c.Store.GetRealm(request.SourceRealmID)
	if err != nil {
		return errors.Wrap(err, "failed to get source realm")
	}
	if sourceRealm == nil || sourceRealm.DeleteAt > 0 {
		return components.NewErr(http.StatusBadRequest, errors.Errorf("source realm %s not found", request.SourceRealmID))
	}
	if !sourceRealm.IsAccessibleBy(c.Requester) {
		return components.NewErr(http.StatusBadRequest, errors.New("source realm is not accessible to the requester"))
	}

	targetRealm, err := c.Store.GetRealm(request.TargetRealmID)
	if err != nil {
		return errors.Wrap(err, "failed to get target realm")
	}
	if targetRealm == nil || targetRealm.DeleteAt > 0 {
		return components.NewErr(http.StatusBadRequest, errors.Errorf("target realm %s not found", request.TargetRealmID))
	}
	if !targetRealm.IsAccessibleBy(c.Requester) {
		return components.NewErr(http.StatusBadRequest, errors.New("target realm is not accessible to the requester"))
	}

	documents, err := c.Store.GetDocuments(&model.DocumentFilter{
		Paging: model.AllPagesNotDeleted(),
		IDs:    request.DocumentIDs,
	})
	if err != nil {
		return errors.Wrap(err, "failed to get documents")
	}

	byID := make(map[string]*model.Document, len(documents))
	for _, document := range documents {
		byID[document.ID] = document
	}

	for _, documentID := range request.DocumentIDs {
		document, found := byID[documentID]
		if !found {
			return components.NewErr(http.StatusBadRequest, errors.Errorf("document %s not found", documentID))
		}
		if document.OwnerID != c.Requester {
			return components.NewErr(http.StatusBadRequest, errors.Errorf("document %s does not belong to the requester", documentID))
		}
		if document.RealmID != request.SourceRealmID {
			return components.NewErr(http.StatusBadRequest, errors.Errorf("document %s does not reside in the source realm", documentID))
		}
	}

	return nil
}

// handleGetMigrations responds to GET /api/migrations, returning the
// requester's migrations.
func handleGetMigrations(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "list-migrations")

	paging, err := parsePaging(r.URL)
	if err != nil {
		c.Logger.WithError(err).Error("failed to parse paging parameters")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var states []model.MigrationState
	if state := r.URL.Query().Get("state"); state != "" {
		states = append(states, model.MigrationState(state))
	}

	migrations, err := c.Store.GetMigrations(&model.MigrationFilter{
		Paging:    paging,
		RealmID:   r.URL.Query().Get("realm"),
		CreatedBy: c.Requester,
		States:    states,
	})
	if err != nil {
		c.Logger.WithError(err).Error("failed to list migrations")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	outputJSON(c, w, migrations)
}

// getMigrationForRequester fetches the migration named in the URL, enforcing
// that the requester created it. A nil return means the response was already
// written.
func getMigrationForRequester(c *Context, w http.ResponseWriter, r *http.Request) *model.Migration {
	vars := mux.Vars(r)
	migrationID := vars["migration"]
	c.Logger = c.Logger.WithField("migration", migrationID)

	migration, err := c.Store.GetMigration(migrationID)
	if err != nil {
		c.Logger.WithError(err).Error("failed to query migration")
		w.WriteHeader(http.StatusInternalServerError)
		return nil
	}
	if migration == nil {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
	if migration.CreatedBy != c.Requester {
		w.WriteHeader(http.StatusForbidden)
		return nil
	}

	return migration
}

// handleGetMigration responds to GET /api/migrations/{migration}.
func handleGetMigration(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "get-migration")

	migration := getMigrationForRequester(c, w, r)
	if migration == nil {
		return
	}

	w.WriteHeader(http.StatusOK)
	outputJSON(c, w, migration)
}

// handleCancelMigration responds to DELETE /api/migrations/{migration},
// cancelling a not-yet-terminal migration.
func handleCancelMigration(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "cancel-migration")

	migration := getMigrationForRequester(c, w, r)
	if migration == nil {
		return
	}

	cancelled, err := c.Store.CancelMigration(migration.ID)
	if err != nil {
		c.Logger.WithError(err).Error("failed to cancel migration")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !cancelled {
		c.Logger.Warnf("Rejected cancellation of migration in state %s", migration.State)
		w.WriteHeader(http.StatusBadRequest)
		outputJSON(c, w, map[string]string{"error": "migration is already in a terminal state"})
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleGetMigrationProgress responds to GET
// /api/migrations/{migration}/progress with aggregated per-document counts.
func handleGetMigrationProgress(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "get-migration-progress")

	migration := getMigrationForRequester(c, w, r)
	if migration == nil {
		return
	}

	items, err := c.Store.GetMigrationItems(&model.MigrationItemFilter{
		Paging:      model.AllPagesNotDeleted(),
		MigrationID: migration.ID,
	})
	if err != nil {
		c.Logger.WithError(err).Error("failed to query migration items")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	outputJSON(c, w, model.CalculateMigrationProgress(migration, items))
}

// handleGetMigrationItems responds to GET /api/migrations/{migration}/items.
func handleGetMigrationItems(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "get-migration-items")

	migration := getMigrationForRequester(c, w, r)
	if migration == nil {
		return
	}

	items, err := c.Store.GetMigrationItems(&model.MigrationItemFilter{
		Paging:      model.AllPagesNotDeleted(),
		MigrationID: migration.ID,
	})
	if err != nil {
		c.Logger.WithError(err).Error("failed to query migration items")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	outputJSON(c, w, items)
}
