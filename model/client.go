package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Client is the programmatic interface to the morag-cloud server API.
type Client struct {
	address     string
	requesterID string
	httpClient  *http.Client
}

// NewClient creates a client to communicate with a given server address,
// acting as the given requester.
func NewClient(address, requesterID string) *Client {
	return &Client{
		address:     address,
		requesterID: requesterID,
		httpClient:  &http.Client{},
	}
}

// closeBody ensures the Body of an http.Response is properly closed.
func closeBody(r *http.Response) {
	if r.Body != nil {
		_, _ = ioutil.ReadAll(r.Body)
		_ = r.Body.Close()
	}
}

func (c *Client) buildURL(urlPath string, args ...interface{}) string {
	return fmt.Sprintf("%s%s", c.address, fmt.Sprintf(urlPath, args...))
}

func (c *Client) do(method, u string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(RequesterHeader, c.requesterID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) doGet(u string) (*http.Response, error) {
	return c.do(http.MethodGet, u, nil)
}

func (c *Client) doPost(u string, request interface{}) (*http.Response, error) {
	requestBytes, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	return c.do(http.MethodPost, u, bytes.NewReader(requestBytes))
}

func (c *Client) doDelete(u string) (*http.Response, error) {
	return c.do(http.MethodDelete, u, nil)
}

// RequesterHeader carries the identity resolved by the external auth layer.
const RequesterHeader = "X-Requester-ID"

// CreateMigration requests a new migration of documents between realms.
func (c *Client) CreateMigration(request *CreateMigrationRequest) (*Migration, error) {
	resp, err := c.doPost(c.buildURL("/api/migrations"), request)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusCreated:
		return NewMigrationFromReader(resp.Body)
	default:
		return nil, errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}

// GetMigration fetches the given migration.
func (c *Client) GetMigration(migrationID string) (*Migration, error) {
	resp, err := c.doGet(c.buildURL("/api/migrations/%s", migrationID))
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return NewMigrationFromReader(resp.Body)
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}

// GetMigrations fetches the list of migrations matching the request.
func (c *Client) GetMigrations(request *GetMigrationsRequest) ([]*Migration, error) {
	u, err := url.Parse(c.buildURL("/api/migrations"))
	if err != nil {
		return nil, err
	}
	request.ApplyToURL(u)

	resp, err := c.doGet(u.String())
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return NewMigrationsFromReader(resp.Body)
	default:
		return nil, errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}

// CancelMigration cancels the given migration if it has not reached a
// terminal state.
func (c *Client) CancelMigration(migrationID string) error {
	resp, err := c.doDelete(c.buildURL("/api/migrations/%s", migrationID))
	if err != nil {
		return err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	default:
		return errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}

// GetMigrationProgress fetches the aggregated progress of the given
// migration.
func (c *Client) GetMigrationProgress(migrationID string) (*MigrationProgress, error) {
	resp, err := c.doGet(c.buildURL("/api/migrations/%s/progress", migrationID))
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return NewMigrationProgressFromReader(resp.Body)
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}

// GetMigrationItems fetches the per-document outcomes of the given migration.
func (c *Client) GetMigrationItems(migrationID string) ([]*MigrationItem, error) {
	resp, err := c.doGet(c.buildURL("/api/migrations/%s/items", migrationID))
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return NewMigrationItemsFromReader(resp.Body)
	default:
		return nil, errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}

// CreateRealm creates a realm owned by the requester.
func (c *Client) CreateRealm(request *CreateRealmRequest) (*Realm, error) {
	resp, err := c.doPost(c.buildURL("/api/realms"), request)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusCreated:
		return NewRealmFromReader(resp.Body)
	default:
		return nil, errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}

// GetRealms fetches the realms accessible to the requester.
func (c *Client) GetRealms() ([]*Realm, error) {
	resp, err := c.doGet(c.buildURL("/api/realms"))
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return NewRealmsFromReader(resp.Body)
	default:
		return nil, errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}

// CreateDocument registers a document in a realm.
func (c *Client) CreateDocument(request *CreateDocumentRequest) (*Document, error) {
	resp, err := c.doPost(c.buildURL("/api/documents"), request)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusCreated:
		return NewDocumentFromReader(resp.Body)
	default:
		return nil, errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}

// GetDocument fetches the given document.
func (c *Client) GetDocument(documentID string) (*Document, error) {
	resp, err := c.doGet(c.buildURL("/api/documents/%s", documentID))
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return NewDocumentFromReader(resp.Body)
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}

// GetDocuments fetches the documents in the given realm.
func (c *Client) GetDocuments(realmID string) ([]*Document, error) {
	u, err := url.Parse(c.buildURL("/api/documents"))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Add("realm", realmID)
	u.RawQuery = q.Encode()

	resp, err := c.doGet(u.String())
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return NewDocumentsFromReader(resp.Body)
	default:
		return nil, errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}

// CreateWebhook registers a webhook owned by the requester.
func (c *Client) CreateWebhook(request *CreateWebhookRequest) (*Webhook, error) {
	resp, err := c.doPost(c.buildURL("/api/webhooks"), request)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusCreated:
		return NewWebhookFromReader(resp.Body)
	default:
		return nil, errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}

// DeleteWebhook removes the given webhook.
func (c *Client) DeleteWebhook(webhookID string) error {
	resp, err := c.doDelete(c.buildURL("/api/webhooks/%s", webhookID))
	if err != nil {
		return err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	default:
		return errors.Errorf("failed with status code %d", resp.StatusCode)
	}
}
