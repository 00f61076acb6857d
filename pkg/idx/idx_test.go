package idx_test

import (
	"testing"
	"time"

	"github.com/cobrax/tenauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewGeneratesValidULIDs(t *testing.T) {
	t.Parallel()

	seen := make(map[idx.ID]struct{})
	for range 100 {
		id := idx.New()
		require.False(t, id.IsZero())

		_, err := idx.Parse(id.String())
		require.NoError(t, err)

		_, dup := seen[id]
		require.False(t, dup, "generated duplicate ID %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewAtembedsTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := idx.NewAt(at)

	// ULID time resolution is milliseconds.
	require.WithinDuration(t, at, id.Time(), time.Millisecond)
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "   ", "not-a-ulid", "0000"} {
		_, err := idx.Parse(bad)
		require.ErrorIs(t, err, idx.ErrInvalid)
	}
}
