package http

import (
	"net/http"

	"github.com/cobrax/tenauth/pkg/httpx"
	"github.com/cobrax/tenauth/pkg/jwtx"
)

// JWKSHandler godoc
//
//	@Summary		JSON Web Key Set
//	@Description	Publishes the public Ed25519 verification keys. Resource servers that verify
//	@Description	tokens locally fetch keys here; note that local verification skips the live
//	@Description	membership check the validate endpoint performs.
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		httpx.WriteJSON(w, http.StatusOK, keys.PublicJWKS())
	}
}
