package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/harbourgate/identity-go/pkg/credstore"
	"github.com/harbourgate/identity-go/pkg/identity"
	"github.com/harbourgate/identity-go/pkg/jwtx"
)

// refreshBuffer is how long before access token expiry a proactive
// refresh is attempted.
const refreshBuffer = 30 * time.Second

// Manager drives the session lifecycle against an identity.Client and
// publishes every state change through its Store. One Manager serves one
// logical session.
type Manager struct {
	client *identity.Client
	store  *Store
	log    *slog.Logger

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// NewManager wires a manager around client. The store starts in the
// loading state until Initialize resolves it. If logger is nil the
// default logger is used.
func NewManager(client *identity.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		client: client,
		store:  NewStore(),
		log:    logger,
	}
}

// Store returns the state store for subscription.
func (m *Manager) Store() *Store {
	return m.store
}

// Initialize restores the session from stored credentials. With no stored
// access token it resolves to logged out without any network call.
// Otherwise the token is verified against the service; a verification
// failure also resolves to logged out rather than an error, since stale
// credentials at startup are routine.
func (m *Manager) Initialize(ctx context.Context) {
	creds, err := m.client.Credentials().Load()
	if err != nil || creds.AccessToken == "" {
		m.store.SetUser(nil, credstore.Credentials{})
		return
	}

	user := m.client.VerifyToken(ctx)
	if user == nil {
		m.log.Debug("stored session invalid, starting logged out")
		m.store.SetUser(nil, credstore.Credentials{})
		return
	}

	m.setAuthenticated(user)
}

// Login signs in and publishes the result. The returned error is the
// same one recorded in the state.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.store.SetLoading(true)

	user, err := m.client.Login(ctx, email, password)
	if err != nil {
		m.store.SetError(err.Error())
		return err
	}

	m.setAuthenticated(user)
	return nil
}

// Register creates an account and signs in.
func (m *Manager) Register(ctx context.Context, data identity.RegisterData) error {
	m.store.SetLoading(true)

	user, err := m.client.Register(ctx, data)
	if err != nil {
		m.store.SetError(err.Error())
		return err
	}

	m.setAuthenticated(user)
	return nil
}

// LoginWithFirebase signs in with a federated Firebase ID token.
func (m *Manager) LoginWithFirebase(ctx context.Context, idToken string) error {
	m.store.SetLoading(true)

	user, err := m.client.LoginWithFirebase(ctx, idToken)
	if err != nil {
		m.store.SetError(err.Error())
		return err
	}

	m.setAuthenticated(user)
	return nil
}

// Logout ends the session. Local state is always reset, even when the
// server is unreachable.
func (m *Manager) Logout(ctx context.Context) {
	m.stopTimer()
	m.client.Logout(ctx)
	m.store.Reset()
}

// UpdateProfile applies a partial profile update and publishes the
// server's canonical user record.
func (m *Manager) UpdateProfile(ctx context.Context, update identity.ProfileUpdate) error {
	user, err := m.client.UpdateProfile(ctx, update)
	if err != nil {
		m.store.SetError(err.Error())
		return err
	}

	creds, _ := m.client.Credentials().Load()
	m.store.SetUser(user, creds)
	return nil
}

// HandleTokenExpired resets the session state. Wire it as the client's
// OnTokenExpired callback so a failed refresh mid-session lands the UI on
// the login screen.
func (m *Manager) HandleTokenExpired() {
	m.stopTimer()
	m.store.Reset()
}

// Close stops the refresh timer. The manager must not be used after
// Close.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.stopTimer()
}

// setAuthenticated publishes the signed-in state and arms the proactive
// refresh timer when enabled.
func (m *Manager) setAuthenticated(user *identity.User) {
	creds, err := m.client.Credentials().Load()
	if err != nil {
		m.log.Warn("failed to load credentials", "error", err)
	}
	m.store.SetUser(user, creds)

	if m.client.Config().AutoRefresh {
		m.scheduleRefresh(creds.AccessToken)
	}
}

// scheduleRefresh arms a one-shot timer to refresh the access token
// shortly before its exp claim. Tokens without a readable exp get no
// timer and rely on the 401 path instead.
func (m *Manager) scheduleRefresh(accessToken string) {
	if accessToken == "" {
		return
	}

	exp, err := jwtx.Expiry(accessToken)
	if err != nil {
		m.log.Debug("cannot schedule refresh", "error", err)
		return
	}

	delay := time.Until(exp) - refreshBuffer
	if delay < 0 {
		delay = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.log.Debug("scheduled token refresh", "in", delay)
	m.timer = time.AfterFunc(delay, m.refreshNow)
}

// refreshNow is the timer body. On success the timer is re-armed for the
// new token; on failure the client has already cleared credentials and
// fired the expiry callback, which resets the store.
func (m *Manager) refreshNow() {
	ctx, cancel := context.WithTimeout(context.Background(), identity.DefaultTimeout)
	defer cancel()

	if err := m.client.RefreshAccessToken(ctx); err != nil {
		m.log.Warn("scheduled token refresh failed", "error", err)
		return
	}

	creds, err := m.client.Credentials().Load()
	if err != nil {
		m.log.Warn("failed to reload credentials after refresh", "error", err)
		return
	}

	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}

	snapshot := m.store.State()
	m.store.SetUser(snapshot.User, creds)
	m.scheduleRefresh(creds.AccessToken)
}

func (m *Manager) stopTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
