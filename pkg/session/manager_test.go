package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harbourgate/identity-go/pkg/credstore"
	"github.com/harbourgate/identity-go/pkg/identity"
)

func newTestManager(t *testing.T, handler http.Handler) (*Manager, credstore.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := credstore.NewMemory()
	client, err := identity.New(identity.Config{
		APIURL:      srv.URL,
		Credentials: store,
	})
	require.NoError(t, err)

	return NewManager(client, nil), store
}

func writeSuccess(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    json.RawMessage(raw),
	})
	require.NoError(t, err)
}

func TestManagerInitializeNoToken(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	m.Initialize(context.Background())

	st := m.Store().State()
	require.False(t, st.Loading)
	require.False(t, st.IsAuthenticated())
	require.Zero(t, calls.Load(), "no stored token must mean no network traffic")
}

func TestManagerInitializeValidToken(t *testing.T) {
	t.Parallel()

	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/verify", r.URL.Path)
		require.Equal(t, "Bearer stored-token", r.Header.Get("Authorization"))
		writeSuccess(t, w, map[string]any{
			"user": map[string]any{"id": "u1", "email": "a@b.com", "role": "admin"},
		})
	}))
	require.NoError(t, store.Save("stored-token", "stored-refresh"))

	m.Initialize(context.Background())

	st := m.Store().State()
	require.True(t, st.IsAuthenticated())
	require.True(t, st.IsAdmin())
	require.Equal(t, "stored-token", st.AccessToken)
}

func TestManagerInitializeRejectedToken(t *testing.T) {
	t.Parallel()

	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]any{"code": "TOKEN_EXPIRED", "message": "expired"},
		})
	}))
	require.NoError(t, store.Save("stale-token", ""))

	m.Initialize(context.Background())

	st := m.Store().State()
	require.False(t, st.IsAuthenticated())
	require.Empty(t, st.Err, "a stale startup session is not an error")

	creds, err := store.Load()
	require.NoError(t, err)
	require.True(t, creds.Empty())
}

func TestManagerLogin(t *testing.T) {
	t.Parallel()

	t.Run("success publishes user and tokens", func(t *testing.T) {
		t.Parallel()

		m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/auth/login", r.URL.Path)
			writeSuccess(t, w, map[string]any{
				"user":         map[string]any{"id": "u1", "email": "a@b.com", "role": "super_admin"},
				"token":        "new-token",
				"refreshToken": "new-refresh",
			})
		}))

		err := m.Login(context.Background(), "a@b.com", "Secret1!")
		require.NoError(t, err)

		st := m.Store().State()
		require.True(t, st.IsAuthenticated())
		require.True(t, st.IsSuperAdmin())
		require.Equal(t, "new-token", st.AccessToken)

		creds, err := store.Load()
		require.NoError(t, err)
		require.Equal(t, "new-refresh", creds.RefreshToken)
	})

	t.Run("failure records the error", func(t *testing.T) {
		t.Parallel()

		m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   map[string]any{"code": "INVALID_CREDENTIALS", "message": "wrong password"},
			})
		}))

		err := m.Login(context.Background(), "a@b.com", "Secret1!")
		require.Error(t, err)
		require.Equal(t, identity.CodeInvalidCredentials, identity.CodeOf(err))

		st := m.Store().State()
		require.False(t, st.IsAuthenticated())
		require.False(t, st.Loading)
		require.Contains(t, st.Err, "wrong password")
	})

	t.Run("validation failure skips the network", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))

		err := m.Login(context.Background(), "not-an-email", "")
		require.Error(t, err)
		require.Equal(t, identity.CodeValidationError, identity.CodeOf(err))
		require.Zero(t, calls.Load())
	})
}

func TestManagerLogout(t *testing.T) {
	t.Parallel()

	t.Run("resets state and clears credentials", func(t *testing.T) {
		t.Parallel()

		m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeSuccess(t, w, map[string]any{})
		}))
		require.NoError(t, store.Save("at", "rt"))
		m.Store().SetUser(&identity.User{ID: "u1"}, credstore.Credentials{AccessToken: "at"})

		m.Logout(context.Background())

		st := m.Store().State()
		require.False(t, st.IsAuthenticated())
		require.Empty(t, st.AccessToken)

		creds, err := store.Load()
		require.NoError(t, err)
		require.True(t, creds.Empty())
	})

	t.Run("server failure still resets locally", func(t *testing.T) {
		t.Parallel()

		m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		require.NoError(t, store.Save("at", "rt"))
		m.Store().SetUser(&identity.User{ID: "u1"}, credstore.Credentials{AccessToken: "at"})

		m.Logout(context.Background())

		require.False(t, m.Store().State().IsAuthenticated())
		creds, err := store.Load()
		require.NoError(t, err)
		require.True(t, creds.Empty())
	})
}

func TestManagerUpdateProfile(t *testing.T) {
	t.Parallel()

	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/users/profile", r.URL.Path)
		// The server owns the canonical record; the client must not merge
		// locally.
		writeSuccess(t, w, map[string]any{
			"id": "u1", "email": "a@b.com", "displayName": "Canonical Name", "role": "user",
		})
	}))
	require.NoError(t, store.Save("at", "rt"))
	m.Store().SetUser(&identity.User{ID: "u1", DisplayName: "Old"}, credstore.Credentials{AccessToken: "at"})

	name := "New Name"
	err := m.UpdateProfile(context.Background(), identity.ProfileUpdate{DisplayName: &name})
	require.NoError(t, err)

	st := m.Store().State()
	require.Equal(t, "Canonical Name", st.User.DisplayName)
}

func TestManagerHandleTokenExpired(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, http.NotFoundHandler())
	m.Store().SetUser(&identity.User{ID: "u1"}, credstore.Credentials{AccessToken: "at"})

	m.HandleTokenExpired()

	st := m.Store().State()
	require.False(t, st.IsAuthenticated())
	require.False(t, st.Loading)
}
