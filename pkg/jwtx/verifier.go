package jwtx

import (
	"errors"
	"time"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
// Signature and time checks only; membership liveness is the caller's job.
type Verifier interface {
	Verify(token string) (TenantClaims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// EdDSAAdapter a Verifier wrapper for EdDSA.
type EdDSAAdapter struct{ *EdDSAVerifier }

func (a EdDSAAdapter) Verify(token string) (TenantClaims, error) {
	c, err := a.EdDSAVerifier.Verify(token)
	if err != nil {
		return TenantClaims{}, err
	}
	return *c, nil
}

// NewCommonEdDSA returns a Verifier using the EdDSA implementation wrapped
// in the common interface, with the default clock-skew leeway.
func NewCommonEdDSA(keys *KeySet, issuer string) Verifier {
	return EdDSAAdapter{NewVerifierEdDSA(keys, issuer, DefaultLeeway)}
}

// mapParseError translates golang-jwt parse failures into our sentinels so
// callers can dispatch with errors.Is.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, errTokenExpired):
		return ErrExpired
	case errors.Is(err, errTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, errTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, errTokenMalformed):
		return ErrMalformed
	default:
		return ErrInvalidClaim
	}
}

// timeLeewayOrDefault guards against a zero-value verifier config.
func timeLeewayOrDefault(leeway time.Duration) time.Duration {
	if leeway <= 0 {
		return DefaultLeeway
	}
	return leeway
}
