package api

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/morag-io/morag-cloud/model"
)

// Supervisor describes the interface to poke the background supervisor for
// immediate work.
type Supervisor interface {
	Do() error
}

// Store describes the interface required by the API endpoints.
type Store interface {
	CreateMigration(migration *model.Migration, documentIDs []string) error
	GetMigration(id string) (*model.Migration, error)
	GetMigrations(filter *model.MigrationFilter) ([]*model.Migration, error)
	CancelMigration(id string) (bool, error)
	GetMigrationItems(filter *model.MigrationItemFilter) ([]*model.MigrationItem, error)

	CreateDocument(document *model.Document) error
	GetDocument(id string) (*model.Document, error)
	GetDocuments(filter *model.DocumentFilter) ([]*model.Document, error)

	CreateRealm(realm *model.Realm) error
	GetRealm(id string) (*model.Realm, error)
	GetRealms(filter *model.RealmFilter) ([]*model.Realm, error)

	CreateWebhook(webhook *model.Webhook) error
	GetWebhook(id string) (*model.Webhook, error)
	GetWebhooks(filter *model.WebhookFilter) ([]*model.Webhook, error)
	DeleteWebhook(id string) error
}

// Context provides the API with all necessary data and interfaces for
// responding to requests.
//
// It is cloned before each request, allowing per-request changes such as
// logger annotations.
type Context struct {
	Store      Store
	Supervisor Supervisor
	Requester  string
	RequestID  string
	Logger     log.FieldLogger
}

// Clone creates a shallow copy of context, allowing clones to apply per-
// request changes.
func (c *Context) Clone() *Context {
	return &Context{
		Store:      c.Store,
		Supervisor: c.Supervisor,
		Logger:     c.Logger,
	}
}

type contextHandlerFunc func(c *Context, w http.ResponseWriter, r *http.Request)

type contextHandler struct {
	context *Context
	handler contextHandlerFunc
}

func (h contextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	context := h.context.Clone()
	context.RequestID = model.NewID()
	context.Logger = context.Logger.WithFields(log.Fields{
		"path":    r.URL.Path,
		"request": context.RequestID,
	})

	context.Requester = r.Header.Get(model.RequesterHeader)
	if context.Requester == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	h.handler(context, w, r)
}

func newContextHandler(context *Context, handler contextHandlerFunc) *contextHandler {
	return &contextHandler{
		context: context,
		handler: handler,
	}
}
