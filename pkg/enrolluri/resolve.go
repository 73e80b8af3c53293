// Package enrolluri extracts enrollment tickets from raw strings or
// otpauth:// enrollment URIs. It is pure and performs no I/O.
package enrolluri

import (
	"errors"
	"net/url"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

const ticketParameter = "enrollment_tx_id"

var ErrInvalidEnrollmentURI = errors.New("enrolluri: invalid enrollment uri")

// Resolve produces the enrollment ticket for a request. A present, non-empty
// ticket wins outright and uri is never parsed, even if malformed. Otherwise
// the ticket is the enrollment_tx_id query parameter of uri, which must be
// an otpauth://totp URI (host compared case-insensitively). Anything else is
// ErrInvalidEnrollmentURI.
func Resolve(ticket, uri mo.Option[string]) (string, error) {
	if t := ticket.OrEmpty(); t != "" {
		return t, nil
	}

	raw, ok := uri.Get()
	if !ok {
		return "", ErrInvalidEnrollmentURI
	}

	params, err := Parameters(raw)
	if err != nil {
		return "", err
	}

	t, ok := params[ticketParameter]
	if !ok {
		return "", ErrInvalidEnrollmentURI
	}

	return t, nil
}

// Parameters parses an otpauth://totp enrollment URI and flattens its query
// parameters. On duplicate keys the last occurrence wins; parameters without
// a value are dropped.
func Parameters(uri string) (map[string]string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, ErrInvalidEnrollmentURI
	}

	if u.Scheme != "otpauth" || strings.ToLower(u.Host) != "totp" {
		return nil, ErrInvalidEnrollmentURI
	}

	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, ErrInvalidEnrollmentURI
	}

	params := lo.MapValues(values, func(vv []string, _ string) string {
		return vv[len(vv)-1]
	})

	return lo.OmitBy(params, func(_ string, v string) bool {
		return v == ""
	}), nil
}
