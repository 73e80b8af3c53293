// Package totp generates RFC 6238 time-based one-time codes from the
// software fallback parameters bound to an enrollment.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"strings"
	"time"

	"github.com/go-guardian/guardian/pkg/guardiantypes"
)

var (
	ErrMissingSecret    = errors.New("totp: missing secret")
	ErrInvalidSecret    = errors.New("totp: secret is not valid base32")
	ErrUnknownAlgorithm = errors.New("totp: unknown algorithm")
)

type Generator struct {
	secret  []byte
	newHash func() hash.Hash
	digits  int
	period  int
}

// New builds a Generator from enrollment TOTP parameters, resolving the
// usual defaults for absent fields: SHA1, 6 digits, 30 second period.
func New(params guardiantypes.TOTPParameters) (*Generator, error) {
	encoded, ok := params.Secret.Get()
	if !ok {
		return nil, ErrMissingSecret
	}

	secret, err := base32.StdEncoding.WithPadding(base32.NoPadding).
		DecodeString(strings.ToUpper(strings.TrimRight(encoded, "=")))
	if err != nil {
		return nil, ErrInvalidSecret
	}

	var newHash func() hash.Hash
	switch alg := strings.ToUpper(params.Algorithm.OrElse("SHA1")); alg {
	case "SHA1":
		newHash = sha1.New
	case "SHA256":
		newHash = sha256.New
	case "SHA512":
		newHash = sha512.New
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}

	return &Generator{
		secret:  secret,
		newHash: newHash,
		digits:  params.Digits.OrElse(6),
		period:  params.Period.OrElse(30),
	}, nil
}

// At returns the code for the time step containing t.
func (g *Generator) At(t time.Time) string {
	counter := uint64(t.Unix() / int64(g.period))

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(g.newHash, g.secret)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation per RFC 4226 section 5.3.
	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint32(1)
	for i := 0; i < g.digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", g.digits, code%mod)
}

// Now returns the code for the current time step.
func (g *Generator) Now() string {
	return g.At(time.Now())
}
