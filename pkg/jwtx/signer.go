package jwtx

// Signer is our interface for anything that can sign tenant tokens.
type Signer interface {
	Alg() string
	KID() string
	Sign(TenantClaims) (string, error)
	PublicJWK() JWK
	Validate() error
}

// NewSignerEdDSA creates an EdDSA signer from PEM bytes.
// Ed25519 keys must be in PKCS8 format.
func NewSignerEdDSA(kid string, pemKey []byte) (Signer, error) {
	return newEdDSASigner(kid, pemKey)
}
