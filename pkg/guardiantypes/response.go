package guardiantypes

import (
	"bytes"
	"encoding/json"

	"github.com/samber/mo"
)

// EnrollResponse is the decoded shape of a successful enrollment response.
// Required fields are modeled as options so that a missing or null field is
// observable rather than a zero value; the exchange engine decides which
// absences are fatal. Issuer, User and URL are part of the response contract
// and validated, but not retained on the resulting Enrollment.
type EnrollResponse struct {
	ID     mo.Option[string] `json:"id"`
	Token  mo.Option[string] `json:"token"`
	Issuer mo.Option[string] `json:"issuer"`
	User   mo.Option[string] `json:"user"`
	URL    mo.Option[string] `json:"url"`

	// TOTPRaw is kept undecoded so that a malformed totp object never
	// fails the whole response; see TOTP.
	TOTPRaw json.RawMessage `json:"totp"`
}

// TOTP narrows the raw totp object into TOTPParameters. Each field is
// extracted independently and a missing or mistyped field yields an absent
// option, not an error. A missing, null or non-object totp value yields no
// parameters at all.
func (r *EnrollResponse) TOTP() mo.Option[TOTPParameters] {
	if len(r.TOTPRaw) == 0 {
		return mo.None[TOTPParameters]()
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.TOTPRaw, &fields); err != nil || fields == nil {
		return mo.None[TOTPParameters]()
	}

	return mo.Some(TOTPParameters{
		Secret:    optionalField[string](fields, "secret"),
		Algorithm: optionalField[string](fields, "algorithm"),
		Digits:    optionalField[int](fields, "digits"),
		Period:    optionalField[int](fields, "period"),
	})
}

func optionalField[T any](fields map[string]json.RawMessage, key string) mo.Option[T] {
	raw, ok := fields[key]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return mo.None[T]()
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return mo.None[T]()
	}

	return mo.Some(v)
}
