package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harbourgate/identity-go/pkg/credstore"
	"github.com/harbourgate/identity-go/pkg/identity"
)

func TestStoreInitialState(t *testing.T) {
	t.Parallel()

	s := NewStore()
	st := s.State()

	require.True(t, st.Loading)
	require.False(t, st.IsAuthenticated())
	require.False(t, st.IsAdmin())
	require.Empty(t, st.Err)
}

func TestStoreTransitions(t *testing.T) {
	t.Parallel()

	t.Run("set user clears loading and error", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		s.SetError("boom")
		s.SetUser(&identity.User{ID: "u1", Role: identity.RoleUser}, credstore.Credentials{
			AccessToken:  "at",
			RefreshToken: "rt",
		})

		st := s.State()
		require.True(t, st.IsAuthenticated())
		require.False(t, st.Loading)
		require.Empty(t, st.Err)
		require.Equal(t, "at", st.AccessToken)
		require.Equal(t, "rt", st.RefreshToken)
	})

	t.Run("set error clears loading", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		s.SetLoading(true)
		s.SetError("boom")

		st := s.State()
		require.False(t, st.Loading)
		require.Equal(t, "boom", st.Err)
	})

	t.Run("reset returns to logged out", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		s.SetUser(&identity.User{ID: "u1"}, credstore.Credentials{AccessToken: "at"})
		s.Reset()

		st := s.State()
		require.False(t, st.IsAuthenticated())
		require.False(t, st.Loading)
		require.Empty(t, st.AccessToken)
	})
}

func TestStoreComputedFlags(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role       identity.Role
		admin      bool
		superAdmin bool
	}{
		{identity.RoleUser, false, false},
		{identity.RolePremium, false, false},
		{identity.RoleModerator, false, false},
		{identity.RoleAdmin, true, false},
		{identity.RoleSuperAdmin, true, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.role), func(t *testing.T) {
			t.Parallel()

			s := NewStore()
			s.SetUser(&identity.User{ID: "u1", Role: tc.role}, credstore.Credentials{})

			st := s.State()
			require.Equal(t, tc.admin, st.IsAdmin())
			require.Equal(t, tc.superAdmin, st.IsSuperAdmin())
		})
	}
}

func TestStoreSubscribe(t *testing.T) {
	t.Parallel()

	s := NewStore()

	var seen []State
	unsub := s.Subscribe(func(st State) {
		seen = append(seen, st)
	})

	s.SetLoading(false)
	s.SetUser(&identity.User{ID: "u1"}, credstore.Credentials{})

	// Initial snapshot plus two transitions.
	require.Len(t, seen, 3)
	require.True(t, seen[0].Loading)
	require.False(t, seen[1].Loading)
	require.True(t, seen[2].IsAuthenticated())

	unsub()
	s.Reset()
	require.Len(t, seen, 3)
}
