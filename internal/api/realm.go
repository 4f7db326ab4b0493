package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/morag-io/morag-cloud/model"
)

// initRealm registers realm endpoints on the given router.
func initRealm(apiRouter *mux.Router, context *Context) {
	addContext := func(handler contextHandlerFunc) *contextHandler {
		return newContextHandler(context, handler)
	}

	realmsRouter := apiRouter.PathPrefix("/realms").Subrouter()
	realmsRouter.Handle("", addContext(handleCreateRealm)).Methods("POST")
	realmsRouter.Handle("", addContext(handleGetRealms)).Methods("GET")

	realmRouter := apiRouter.PathPrefix("/realms/{realm:[A-Za-z0-9]{26}}").Subrouter()
	realmRouter.Handle("", addContext(handleGetRealm)).Methods("GET")
}

func handleCreateRealm(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "create-realm")

	createRealmRequest, err := model.NewCreateRealmRequestFromReader(r.Body)
	if err != nil {
		c.Logger.WithError(err).Error("failed to decode request")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	err = createRealmRequest.Validate()
	if err != nil {
		c.Logger.WithError(err).Error("invalid realm request")
		w.WriteHeader(http.StatusBadRequest)
		outputJSON(c, w, map[string]string{"error": err.Error()})
		return
	}

	realm := &model.Realm{
		Name:      createRealmRequest.Name,
		OwnerID:   c.Requester,
		MemberIDs: createRealmRequest.MemberIDs,
	}

	err = c.Store.CreateRealm(realm)
	if err != nil {
		c.Logger.WithError(err).Error("failed to create realm")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	outputJSON(c, w, realm)
}

func handleGetRealms(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "list-realms")

	paging, err := parsePaging(r.URL)
	if err != nil {
		c.Logger.WithError(err).Error("failed to parse paging parameters")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	realms, err := c.Store.GetRealms(&model.RealmFilter{
		Paging:  paging,
		OwnerID: c.Requester,
	})
	if err != nil {
		c.Logger.WithError(err).Error("failed to list realms")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	outputJSON(c, w, realms)
}

func handleGetRealm(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "get-realm")

	vars := mux.Vars(r)
	realmID := vars["realm"]
	c.Logger = c.Logger.WithField("realm", realmID)

	realm, err := c.Store.GetRealm(realmID)
	if err != nil {
		c.Logger.WithError(err).Error("failed to query realm")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if realm == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if !realm.IsAccessibleBy(c.Requester) {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	outputJSON(c, w, realm)
}
