package guardiantypes

import (
	"crypto"

	"github.com/samber/mo"
)

// EnrollmentRequest carries everything needed to enroll this device as a
// second factor. Exactly one of Ticket or URI must resolve to a non-empty
// enrollment ticket; Ticket takes precedence and short-circuits URI parsing.
//
// PublicKey and SigningKey are opaque handles to an already generated key
// pair, typically backed by a platform keystore. The public key is forwarded
// to the enrollment service; the signer is attached to the resulting
// Enrollment and never inspected.
type EnrollmentRequest struct {
	Ticket            mo.Option[string]
	URI               mo.Option[string]
	NotificationToken string
	PublicKey         crypto.PublicKey
	SigningKey        crypto.Signer
}

// TOTPParameters are the optional software one-time-password fallback
// parameters bound to an enrollment. Every field is independently optional;
// consumers resolve defaults (SHA1, 6 digits, 30 seconds) themselves.
type TOTPParameters struct {
	Secret    mo.Option[string]
	Algorithm mo.Option[string]
	Digits    mo.Option[int]
	Period    mo.Option[int]
}

// Enrollment is the durable record of a completed device enrollment.
// It is only ever constructed from a fully validated server response and
// must be treated as read-only; un-enrolling discards the value entirely.
type Enrollment struct {
	// ID is the server-assigned device account identifier.
	ID string
	// DeviceToken authorizes future operations on this device account,
	// e.g. un-enrollment.
	DeviceToken string
	// NotificationToken is the push delivery token echoed from the request.
	NotificationToken string
	// SigningKey is the device-held private key handle used to answer
	// future authentication challenges.
	SigningKey crypto.Signer
	// TOTP is present when the service returned software one-time-password
	// parameters alongside the enrollment.
	TOTP mo.Option[TOTPParameters]
}
