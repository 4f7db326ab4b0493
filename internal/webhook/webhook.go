package webhook

import (
	"bytes"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/morag-io/morag-cloud/model"
)

var client = &http.Client{
	Timeout: 5 * time.Second,
}

type webhookStore interface {
	GetWebhooks(filter *model.WebhookFilter) ([]*model.Webhook, error)
}

// SendToAllWebhooks sends the payload to every registered webhook. Delivery
// failures are logged per endpoint and do not affect each other.
func SendToAllWebhooks(store webhookStore, payload *model.WebhookPayload, logger log.FieldLogger) error {
	hooks, err := store.GetWebhooks(&model.WebhookFilter{Paging: model.AllPagesNotDeleted()})
	if err != nil {
		return errors.Wrap(err, "failed to find webhooks")
	}

	sendWebhooks(hooks, payload, logger)

	return nil
}

func sendWebhooks(hooks []*model.Webhook, payload *model.WebhookPayload, logger log.FieldLogger) {
	if len(hooks) == 0 {
		return
	}

	logger.Debugf("Sending %d webhook(s)", len(hooks))
	for _, hook := range hooks {
		go sendWebhook(hook, payload, logger)
	}
}

func sendWebhook(hook *model.Webhook, payload *model.WebhookPayload, logger log.FieldLogger) {
	payloadJSON, err := payload.ToJSON()
	if err != nil {
		logger.WithError(err).Error("Unable to marshal webhook payload")
		return
	}

	req, err := http.NewRequest(http.MethodPost, hook.URL, bytes.NewReader(payloadJSON))
	if err != nil {
		logger.WithError(err).Errorf("Unable to create webhook request to %s", hook.URL)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		logger.WithError(err).Errorf("Unable to send webhook to %s", hook.URL)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Errorf("Webhook to %s responded with status code %d", hook.URL, resp.StatusCode)
	}
}
