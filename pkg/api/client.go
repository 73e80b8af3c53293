// Package api implements the HTTP transport for the Guardian enrollment
// service. It moves bytes and classifies server errors; response shape
// validation belongs to the enrollment engine.
package api

import (
	"bytes"
	"context"
	"crypto"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-jose/go-jose/v4"

	"github.com/go-guardian/guardian/pkg/options"
)

type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	logger      *slog.Logger
	pushService string
}

func NewClient(baseURL string, opts ...options.Option) (*Client, error) {
	oo := options.NewOptions(opts...)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url: %w", err)
	}

	return &Client{
		baseURL:     u,
		httpClient:  oo.HTTPClient,
		logger:      oo.Logger,
		pushService: oo.PushService,
	}, nil
}

type pushCredentials struct {
	Service string `json:"service"`
	Token   string `json:"token"`
}

type enrollRequest struct {
	Identifier      string           `json:"identifier"`
	Name            string           `json:"name"`
	PushCredentials pushCredentials  `json:"push_credentials"`
	PublicKey       *jose.JSONWebKey `json:"public_key"`
}

// Enroll exchanges an enrollment ticket for a raw enrollment payload. The
// ticket authorizes the call; the public key travels as a JWK. The body is
// returned undecoded.
func (c *Client) Enroll(
	ctx context.Context,
	ticket string,
	identifier string,
	name string,
	notificationToken string,
	publicKey crypto.PublicKey,
) (json.RawMessage, error) {
	body := &enrollRequest{
		Identifier: identifier,
		Name:       name,
		PushCredentials: pushCredentials{
			Service: c.pushService,
			Token:   notificationToken,
		},
		PublicKey: &jose.JSONWebKey{Key: publicKey, Use: "sig"},
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("api: cannot marshal enroll request: %w", err)
	}
	c.logger.Debug("enroll request", "body", string(b))

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL.JoinPath("api", "enroll").String(),
		bytes.NewReader(b),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Ticket id=%q", ticket))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("enroll response", "status", resp.StatusCode, "body", string(payload))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newServerError(resp.StatusCode, payload)
	}

	return payload, nil
}

// Device scopes the API to an enrolled device account, authorized by its
// device token.
func (c *Client) Device(id, token string) *DeviceAPI {
	return &DeviceAPI{
		client: c,
		id:     id,
		token:  token,
	}
}

type DeviceAPI struct {
	client *Client
	id     string
	token  string
}

// Delete un-enrolls the device account. The enrollment record it belonged to
// must be discarded by the caller afterwards.
func (d *DeviceAPI) Delete(ctx context.Context) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodDelete,
		d.client.baseURL.JoinPath("api", "device-accounts", d.id).String(),
		nil,
	)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.token)

	resp, err := d.client.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	d.client.logger.Debug("device delete response", "status", resp.StatusCode)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newServerError(resp.StatusCode, body)
	}

	return nil
}
