package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/morag-io/morag-cloud/model"
)

// initDocument registers document endpoints on the given router.
func initDocument(apiRouter *mux.Router, context *Context) {
	addContext := func(handler contextHandlerFunc) *contextHandler {
		return newContextHandler(context, handler)
	}

	documentsRouter := apiRouter.PathPrefix("/documents").Subrouter()
	documentsRouter.Handle("", addContext(handleCreateDocument)).Methods("POST")
	documentsRouter.Handle("", addContext(handleGetDocuments)).Methods("GET")

	documentRouter := apiRouter.PathPrefix("/documents/{document:[A-Za-z0-9]{26}}").Subrouter()
	documentRouter.Handle("", addContext(handleGetDocument)).Methods("GET")
}

func handleCreateDocument(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "create-document")

	createDocumentRequest, err := model.NewCreateDocumentRequestFromReader(r.Body)
	if err != nil {
		c.Logger.WithError(err).Error("failed to decode request")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	err = createDocumentRequest.Validate()
	if err != nil {
		c.Logger.WithError(err).Error("invalid document request")
		w.WriteHeader(http.StatusBadRequest)
		outputJSON(c, w, map[string]string{"error": err.Error()})
		return
	}

	realm, err := c.Store.GetRealm(createDocumentRequest.RealmID)
	if err != nil {
		c.Logger.WithError(err).Error("failed to query realm")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if realm == nil || !realm.IsAccessibleBy(c.Requester) {
		w.WriteHeader(http.StatusBadRequest)
		outputJSON(c, w, map[string]string{"error": "realm not found or not accessible"})
		return
	}

	document := &model.Document{
		RealmID: createDocumentRequest.RealmID,
		OwnerID: c.Requester,
		Name:    createDocumentRequest.Name,
		Type:    createDocumentRequest.Type,
		State:   "ingested",
		Version: 1,
	}

	err = c.Store.CreateDocument(document)
	if err != nil {
		c.Logger.WithError(err).Error("failed to create document")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	outputJSON(c, w, document)
}

func handleGetDocuments(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "list-documents")

	paging, err := parsePaging(r.URL)
	if err != nil {
		c.Logger.WithError(err).Error("failed to parse paging parameters")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	documents, err := c.Store.GetDocuments(&model.DocumentFilter{
		Paging:  paging,
		RealmID: r.URL.Query().Get("realm"),
		OwnerID: c.Requester,
	})
	if err != nil {
		c.Logger.WithError(err).Error("failed to list documents")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	outputJSON(c, w, documents)
}

func handleGetDocument(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "get-document")

	vars := mux.Vars(r)
	documentID := vars["document"]
	c.Logger = c.Logger.WithField("document", documentID)

	document, err := c.Store.GetDocument(documentID)
	if err != nil {
		c.Logger.WithError(err).Error("failed to query document")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if document == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if document.OwnerID != c.Requester {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	outputJSON(c, w, document)
}
