package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cobrax/tenauth/pkg/cryptox"
	"github.com/cobrax/tenauth/pkg/idx"
	"github.com/cobrax/tenauth/pkg/jwtx"
)

// InitSigningKeys builds the signer and key set the service issues tokens
// with.
//
// When SigningKeyFile is set, the Ed25519 private key is loaded from that
// PKCS8 PEM file and tokens survive restarts. Otherwise an ephemeral key is
// generated on startup and every outstanding token becomes invalid.
func InitSigningKeys(cfg Config, logger *slog.Logger) (jwtx.Signer, *jwtx.KeySet, error) {
	var pemKey []byte

	switch {
	case cfg.SigningKeyFile != "":
		data, err := os.ReadFile(cfg.SigningKeyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read signing key file: %w", err)
		}
		pemKey = data
		logger.Info("signing key loaded", "path", cfg.SigningKeyFile)

	default:
		data, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
		pemKey = data
		logger.Warn("ephemeral signing key generated, outstanding tokens are now invalid")
	}

	signer, err := jwtx.NewSignerEdDSA(idx.New().String(), pemKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize signer: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, fmt.Errorf("failed to register signing key: %w", err)
	}

	logger.Info("signing key ready", "kid", signer.KID(), "alg", signer.Alg())
	return signer, keys, nil
}
