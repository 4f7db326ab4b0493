// Package api exposes the morag-cloud server's REST endpoints. The caller's
// identity is trusted from the X-Requester-ID header set by the external auth
// layer in front of the server.
package api

import (
	"github.com/gorilla/mux"
)

// Register handles all requests to the server's API.
func Register(rootRouter *mux.Router, context *Context) {
	apiRouter := rootRouter.PathPrefix("/api").Subrouter()

	initMigration(apiRouter, context)
	initRealm(apiRouter, context)
	initDocument(apiRouter, context)
	initWebhook(apiRouter, context)
}
