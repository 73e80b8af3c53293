package guardian

import (
	"errors"
)

// ErrInvalidResponse reports an enrollment response missing one of its
// required fields. It is a protocol violation and must not be retried:
// replaying the exchange against a misbehaving server risks creating a
// duplicate enrollment.
var ErrInvalidResponse = errors.New("guardian: invalid enrollment response")
