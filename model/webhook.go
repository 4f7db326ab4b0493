package model

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Webhook requests migration state-change notifications at a given URL.
type Webhook struct {
	ID       string
	OwnerID  string
	URL      string
	CreateAt int64
	DeleteAt int64
}

// IsDeleted determines whether the webhook was marked as deleted.
func (w *Webhook) IsDeleted() bool {
	return w.DeleteAt > 0
}

// WebhookFilter describes the parameters used to constrain a set of webhooks.
type WebhookFilter struct {
	Paging
	OwnerID string
}

// WebhookPayload is the JSON document sent to registered webhooks on every
// state transition.
type WebhookPayload struct {
	Type      string            `json:"type"`
	ID        string            `json:"id"`
	NewState  string            `json:"new_state"`
	OldState  string            `json:"old_state"`
	Timestamp int64             `json:"timestamp"`
	ExtraData map[string]string `json:"extra_data,omitempty"`
}

const (
	// TypeMigration identifies migration state-change payloads.
	TypeMigration = "migration"
)

// ToJSON serializes the payload for delivery.
func (p *WebhookPayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// CreateWebhookRequest describes the parameters to register a webhook.
type CreateWebhookRequest struct {
	URL string
}

// Validate checks the request for required fields.
func (request *CreateWebhookRequest) Validate() error {
	if request.URL == "" {
		return errors.New("webhook url is required")
	}

	return nil
}

// NewCreateWebhookRequestFromReader will create a CreateWebhookRequest from
// an io.Reader with JSON data.
func NewCreateWebhookRequestFromReader(reader io.Reader) (*CreateWebhookRequest, error) {
	var request CreateWebhookRequest
	err := json.NewDecoder(reader).Decode(&request)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode create webhook request")
	}

	return &request, nil
}

// NewWebhookFromReader will create a Webhook from an io.Reader with JSON
// data.
func NewWebhookFromReader(reader io.Reader) (*Webhook, error) {
	var webhook Webhook
	err := json.NewDecoder(reader).Decode(&webhook)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode webhook")
	}

	return &webhook, nil
}

// NewWebhooksFromReader will create a []*Webhook from an io.Reader with JSON
// data.
func NewWebhooksFromReader(reader io.Reader) ([]*Webhook, error) {
	webhooks := []*Webhook{}
	err := json.NewDecoder(reader).Decode(&webhooks)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode webhooks")
	}

	return webhooks, nil
}
