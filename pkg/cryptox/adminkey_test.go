package cryptox_test

import (
	"testing"

	"github.com/cobrax/tenauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestAdminKeyRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.HashAdminKey("hunter2")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	require.NoError(t, cryptox.VerifyAdminKey("hunter2", hash))
	require.Error(t, cryptox.VerifyAdminKey("hunter3", hash))
}

func TestVerifyAdminKeyRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{
		"",
		"not-a-hash",
		"$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA",
	} {
		require.Error(t, cryptox.VerifyAdminKey("key", bad))
	}
}

func TestHashAdminKeySaltsEveryHash(t *testing.T) {
	t.Parallel()

	a, err := cryptox.HashAdminKey("same-key")
	require.NoError(t, err)
	b, err := cryptox.HashAdminKey("same-key")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}
