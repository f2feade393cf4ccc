package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harbourgate/identity-go/pkg/credstore"
)

func newTestClient(t *testing.T, handler http.Handler, cfg Config) (*Client, credstore.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.APIURL = srv.URL
	if cfg.Credentials == nil {
		cfg.Credentials = credstore.NewMemory()
	}

	client, err := New(cfg)
	require.NoError(t, err)
	return client, cfg.Credentials
}

func writeEnvelope(w http.ResponseWriter, status int, env map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeData(w http.ResponseWriter, data any) {
	writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func writeAPIError(w http.ResponseWriter, status int, code, msg string) {
	writeEnvelope(w, status, map[string]any{
		"success": false,
		"error":   map[string]any{"code": code, "message": msg},
	})
}

func TestAuthRequestAttachesBearer(t *testing.T) {
	t.Parallel()

	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))
		writeData(w, map[string]any{"id": "u1", "email": "a@b.com"})
	}), Config{})
	require.NoError(t, store.Save("token-1", "refresh-1"))

	user, err := client.GetProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
}

func TestAuthRequestRefreshesOn401(t *testing.T) {
	t.Parallel()

	var refreshCalls, profileCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "refresh-1", body["refreshToken"])
		writeData(w, map[string]any{"token": "token-2", "refreshToken": "refresh-2"})
	})
	mux.HandleFunc("/api/users/profile", func(w http.ResponseWriter, r *http.Request) {
		profileCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer token-2" {
			writeAPIError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired")
			return
		}
		writeData(w, map[string]any{"id": "u1"})
	})

	client, store := newTestClient(t, mux, Config{})
	require.NoError(t, store.Save("token-1", "refresh-1"))

	user, err := client.GetProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.EqualValues(t, 1, refreshCalls.Load())
	require.EqualValues(t, 2, profileCalls.Load(), "original request retried exactly once")

	creds, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "token-2", creds.AccessToken)
	require.Equal(t, "refresh-2", creds.RefreshToken)
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	t.Parallel()

	const concurrency = 8

	var refreshCalls, rejected atomic.Int64
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		<-release
		writeData(w, map[string]any{"token": "token-2"})
	})
	mux.HandleFunc("/api/users/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-2" {
			rejected.Add(1)
			writeAPIError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired")
			return
		}
		writeData(w, map[string]any{"id": "u1"})
	})

	client, store := newTestClient(t, mux, Config{})
	require.NoError(t, store.Save("token-1", "refresh-1"))

	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.GetProfile(context.Background())
		}()
	}

	// Hold the refresh until every request has taken its 401 and had time
	// to join the in-flight refresh, then let it finish.
	require.Eventually(t, func() bool { return rejected.Load() == concurrency },
		DefaultTimeout, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, refreshCalls.Load(), "concurrent 401s must collapse to one refresh")
}

func TestRefreshFailureClearsSessionOnce(t *testing.T) {
	t.Parallel()

	var expiredCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "refresh token revoked")
	})
	mux.HandleFunc("/api/users/profile", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired")
	})

	client, store := newTestClient(t, mux, Config{
		OnTokenExpired: func() { expiredCalls.Add(1) },
	})
	require.NoError(t, store.Save("token-1", "refresh-1"))

	_, err := client.GetProfile(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, &Error{Code: CodeTokenExpired})
	require.Contains(t, err.Error(), "token expired", "original failure is surfaced, not the refresh error")

	require.EqualValues(t, 1, expiredCalls.Load())
	creds, loadErr := store.Load()
	require.NoError(t, loadErr)
	require.True(t, creds.Empty())
}

func TestAuthRequestNeverRetriesTwice(t *testing.T) {
	t.Parallel()

	var profileCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		// Refresh "succeeds" but the new token is still rejected.
		writeData(w, map[string]any{"token": "token-2"})
	})
	mux.HandleFunc("/api/users/profile", func(w http.ResponseWriter, r *http.Request) {
		profileCalls.Add(1)
		writeAPIError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "still expired")
	})

	client, store := newTestClient(t, mux, Config{})
	require.NoError(t, store.Save("token-1", "refresh-1"))

	_, err := client.GetProfile(context.Background())
	require.Error(t, err)
	require.EqualValues(t, 2, profileCalls.Load())
}

func TestRefreshWithoutTokenSkipsNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	var expiredCalls atomic.Int64

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}), Config{OnTokenExpired: func() { expiredCalls.Add(1) }})

	err := client.RefreshAccessToken(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, &Error{Code: CodeTokenExpired})
	require.Zero(t, calls.Load())
	require.EqualValues(t, 1, expiredCalls.Load())
}

func TestDecodeEnvelope(t *testing.T) {
	t.Parallel()

	t.Run("unknown server code collapses", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeAPIError(w, http.StatusConflict, "SOMETHING_NOVEL", "surprise")
		}), Config{})

		_, err := client.Login(context.Background(), "a@b.com", "pw")
		require.Error(t, err)
		require.Equal(t, CodeUnknown, CodeOf(err))
		require.Contains(t, err.Error(), "surprise")
	})

	t.Run("non-json failure maps to status text", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>nope</html>"))
		}), Config{})

		_, err := client.Login(context.Background(), "a@b.com", "pw")
		require.Error(t, err)
		require.Equal(t, CodeUnknown, CodeOf(err))
		require.Contains(t, err.Error(), "502")
	})

	t.Run("transport failure maps to network error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close() // refuse connections

		client, err := New(Config{APIURL: srv.URL})
		require.NoError(t, err)

		_, loginErr := client.Login(context.Background(), "a@b.com", "pw")
		require.Error(t, loginErr)
		require.Equal(t, CodeNetworkError, CodeOf(loginErr))
	})
}

func TestGetUsersPagination(t *testing.T) {
	t.Parallel()

	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "admin", r.URL.Query().Get("role"))
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "u1", "role": "admin"},
				{"id": "u2", "role": "admin"},
			},
			"pagination": map[string]any{"page": 2, "limit": 2, "total": 9, "totalPages": 5},
		})
	}), Config{})
	require.NoError(t, store.Save("token-1", ""))

	list, err := client.GetUsers(context.Background(), 2, 2, &UserFilters{Role: RoleAdmin})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	require.Equal(t, 9, list.Total)
	require.Equal(t, 5, list.TotalPages)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "APIURL"))

	client, err := New(Config{APIURL: "https://id.example.com/"})
	require.NoError(t, err)
	require.Equal(t, "https://id.example.com", client.Config().APIURL)
	require.NotNil(t, client.Credentials())
}
