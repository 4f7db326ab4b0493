package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/morag-io/morag-cloud/model"
)

// initWebhook registers webhook endpoints on the given router.
func initWebhook(apiRouter *mux.Router, context *Context) {
	addContext := func(handler contextHandlerFunc) *contextHandler {
		return newContextHandler(context, handler)
	}

	webhooksRouter := apiRouter.PathPrefix("/webhooks").Subrouter()
	webhooksRouter.Handle("", addContext(handleCreateWebhook)).Methods("POST")
	webhooksRouter.Handle("", addContext(handleGetWebhooks)).Methods("GET")

	webhookRouter := apiRouter.PathPrefix("/webhooks/{webhook:[A-Za-z0-9]{26}}").Subrouter()
	webhookRouter.Handle("", addContext(handleDeleteWebhook)).Methods("DELETE")
}

func handleCreateWebhook(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "create-webhook")

	createWebhookRequest, err := model.NewCreateWebhookRequestFromReader(r.Body)
	if err != nil {
		c.Logger.WithError(err).Error("failed to decode request")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	err = createWebhookRequest.Validate()
	if err != nil {
		c.Logger.WithError(err).Error("invalid webhook request")
		w.WriteHeader(http.StatusBadRequest)
		outputJSON(c, w, map[string]string{"error": err.Error()})
		return
	}

	webhook := &model.Webhook{
		OwnerID: c.Requester,
		URL:     createWebhookRequest.URL,
	}

	err = c.Store.CreateWebhook(webhook)
	if err != nil {
		c.Logger.WithError(err).Error("failed to create webhook")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	outputJSON(c, w, webhook)
}

func handleGetWebhooks(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "list-webhooks")

	paging, err := parsePaging(r.URL)
	if err != nil {
		c.Logger.WithError(err).Error("failed to parse paging parameters")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	webhooks, err := c.Store.GetWebhooks(&model.WebhookFilter{
		Paging:  paging,
		OwnerID: c.Requester,
	})
	if err != nil {
		c.Logger.WithError(err).Error("failed to list webhooks")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	outputJSON(c, w, webhooks)
}

func handleDeleteWebhook(c *Context, w http.ResponseWriter, r *http.Request) {
	c.Logger = c.Logger.WithField("action", "delete-webhook")

	vars := mux.Vars(r)
	webhookID := vars["webhook"]
	c.Logger = c.Logger.WithField("webhook", webhookID)

	webhook, err := c.Store.GetWebhook(webhookID)
	if err != nil {
		c.Logger.WithError(err).Error("failed to query webhook")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if webhook == nil || webhook.IsDeleted() {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if webhook.OwnerID != c.Requester {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	err = c.Store.DeleteWebhook(webhookID)
	if err != nil {
		c.Logger.WithError(err).Error("failed to delete webhook")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
