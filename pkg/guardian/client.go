// Package guardian implements the client half of the Guardian second-factor
// device enrollment exchange: resolve a ticket, trade it together with the
// device identity and public key for an enrollment record, and hand the
// record to the caller.
package guardian

import (
	"context"
	"crypto"
	"encoding/json"

	"github.com/samber/mo"

	"github.com/go-guardian/guardian/pkg/enrolluri"
	"github.com/go-guardian/guardian/pkg/guardiantypes"
	"github.com/go-guardian/guardian/pkg/options"
)

// API is the network collaborator performing the enrollment exchange.
// *api.Client satisfies it. The returned payload is the raw response body;
// transport and server failures surface as errors and are passed through to
// the enrollment callback unchanged.
type API interface {
	Enroll(
		ctx context.Context,
		ticket string,
		identifier string,
		name string,
		notificationToken string,
		publicKey crypto.PublicKey,
	) (json.RawMessage, error)
}

// EnrollCallback receives the single terminal result of an Enroll call.
type EnrollCallback func(result mo.Result[*guardiantypes.Enrollment])

// Client drives enrollment exchanges against an API collaborator. A single
// Client serves any number of concurrent Enroll calls; they share no mutable
// state. The device identifier and name come from constructor options rather
// than package globals.
type Client struct {
	api              API
	ctx              context.Context
	deviceIdentifier string
	deviceName       string
}

func NewClient(api API, opts ...options.Option) *Client {
	oo := options.NewOptions(opts...)

	return &Client{
		api:              api,
		ctx:              oo.Context,
		deviceIdentifier: oo.DeviceIdentifier,
		deviceName:       oo.DeviceName,
	}
}

// Enroll resolves the request's ticket, performs the enrollment exchange and
// delivers the result through cb. The callback fires exactly once for every
// outcome, on its own goroutine, never on the caller's stack. A resolution
// failure (enrolluri.ErrInvalidEnrollmentURI) skips the network exchange
// entirely. There are no retries and no cancellation primitive; a caller
// wanting either owns the context passed via options.WithContext.
func (c *Client) Enroll(req guardiantypes.EnrollmentRequest, cb EnrollCallback) {
	go func() {
		cb(c.enroll(req))
	}()
}

func (c *Client) enroll(req guardiantypes.EnrollmentRequest) mo.Result[*guardiantypes.Enrollment] {
	ticket, err := enrolluri.Resolve(req.Ticket, req.URI)
	if err != nil {
		return mo.Err[*guardiantypes.Enrollment](err)
	}

	payload, err := c.api.Enroll(c.ctx, ticket, c.deviceIdentifier, c.deviceName, req.NotificationToken, req.PublicKey)
	if err != nil {
		return mo.Err[*guardiantypes.Enrollment](err)
	}

	return mo.TupleToResult(newEnrollment(payload, req))
}

// newEnrollment narrows the raw payload into an Enrollment. The response
// contract requires id, token, issuer, user and url; issuer, user and url
// are validated but not retained. Violating any of the five fails the whole
// exchange, so a drifting server can never produce a partially valid
// Enrollment. TOTP parameters are optional and parsed leniently.
func newEnrollment(payload json.RawMessage, req guardiantypes.EnrollmentRequest) (*guardiantypes.Enrollment, error) {
	if len(payload) == 0 {
		return nil, ErrInvalidResponse
	}

	var resp *guardiantypes.EnrollResponse
	if err := json.Unmarshal(payload, &resp); err != nil || resp == nil {
		return nil, ErrInvalidResponse
	}

	id, ok := resp.ID.Get()
	if !ok {
		return nil, ErrInvalidResponse
	}
	token, ok := resp.Token.Get()
	if !ok {
		return nil, ErrInvalidResponse
	}
	if resp.Issuer.IsAbsent() || resp.User.IsAbsent() || resp.URL.IsAbsent() {
		return nil, ErrInvalidResponse
	}

	return &guardiantypes.Enrollment{
		ID:                id,
		DeviceToken:       token,
		NotificationToken: req.NotificationToken,
		SigningKey:        req.SigningKey,
		TOTP:              resp.TOTP(),
	}, nil
}
