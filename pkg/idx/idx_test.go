package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()
	require.False(t, a.IsZero())
	require.Less(t, a.String(), b.String(), "ids must be monotonic within a process")

	require.WithinDuration(t, time.Now(), a.Time(), time.Minute)
}

func TestParse(t *testing.T) {
	t.Parallel()

	id := New()
	parsed, err := Parse(" " + id.String() + " ")
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	for _, bad := range []string{"", "not-a-ulid", "0000"} {
		_, err := Parse(bad)
		require.ErrorIs(t, err, ErrInvalid)
	}
}
