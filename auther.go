package skillsprint

import (
	"context"
	"sync"
	"time"
)

// LoginPath is where a hard redirect lands once the session is gone
const LoginPath = "/login"

// DefaultLogoutTimeout bounds the best effort backend logout call
const DefaultLogoutTimeout = 5 * time.Second

var (
	_ AuthState      = (*Auther)(nil)
	_ TokenSource    = (*Auther)(nil)
	_ SessionExpirer = (*Auther)(nil)
)

// Auther owns the current session. It is the only writer of the Store; the
// transport and the guards read through it.
type Auther struct {
	mu            sync.RWMutex
	store         Store
	user          *Session
	loading       bool
	generation    uint64 // bumped by every session write, see Init
	invalidator   Invalidator
	navigator     Navigator
	logger        Logger
	logoutTimeout time.Duration
}

// NewAuther returns an Auther in the loading state. Call Init once at
// startup to rebuild the session from the store.
func NewAuther(store Store) *Auther {
	return &Auther{
		store:         store,
		loading:       true,
		invalidator:   noopInvalidator{},
		navigator:     noopNavigator{},
		logger:        defLogger{},
		logoutTimeout: DefaultLogoutTimeout,
	}
}

func (a *Auther) WithLogger(logger Logger) *Auther {
	a.logger = logger
	return a
}

// WithInvalidator sets the backend logout call used by Logout
func (a *Auther) WithInvalidator(invalidator Invalidator) *Auther {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	a.invalidator = invalidator
	return a
}

func (a *Auther) WithNavigator(navigator Navigator) *Auther {
	if navigator == nil {
		navigator = noopNavigator{}
	}
	a.navigator = navigator
	return a
}

func (a *Auther) WithLogoutTimeout(timeout time.Duration) *Auther {
	if timeout > 0 {
		a.logoutTimeout = timeout
	}
	return a
}

// Init rebuilds the session from the persisted token. Loading is cleared
// when it returns, whether a token was found or not. A Login or Expire that
// lands while the store is being read wins over the restored session.
func (a *Auther) Init(ctx context.Context) {
	a.mu.Lock()
	a.loading = true
	generation := a.generation
	a.mu.Unlock()

	user := a.restore(ctx)

	a.mu.Lock()
	if a.generation == generation {
		a.user = user
	} else {
		a.logger.Debug("Session restore superseded, keeping current session")
	}
	a.loading = false
	a.mu.Unlock()
}

func (a *Auther) restore(ctx context.Context) *Session {
	token, err := a.store.Get(ctx, KeyToken)
	if err != nil {
		a.logger.Error("Session restore, unable to read token: %s", err)
		return nil
	}
	if token == "" {
		return nil
	}

	// A failed read of the optional fields falls back to the claims
	role, err := a.store.Get(ctx, KeyRole)
	if err != nil {
		a.logger.Warn("Session restore, unable to read role: %s", err)
	}

	username, err := a.store.Get(ctx, KeyUsername)
	if err != nil {
		a.logger.Warn("Session restore, unable to read username: %s", err)
	}

	user := resolveSession(token, role, username)
	a.logger.Debug("Session restored: %s", user)
	return user
}

// Loading is true until Init has completed
func (a *Auther) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// User returns a copy of the current session, nil when logged out
func (a *Auther) User() *Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return nil
	}
	user := *a.user
	return &user
}

// IsAdmin is recomputed from the current session on every call
func (a *Auther) IsAdmin() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user.IsAdmin()
}

// Login replaces the session. Explicit role and username win over the
// token claims. The in-memory session is always replaced; the error only
// reports a failure to persist it.
func (a *Auther) Login(ctx context.Context, token, role, username string) (*Session, error) {
	user := resolveSession(token, role, username)

	a.mu.Lock()
	a.user = user
	a.loading = false
	a.generation++
	err := a.persist(ctx, user)
	a.mu.Unlock()

	out := *user
	if err != nil {
		a.logger.Error("Login, unable to persist session: %s", err)
		return &out, err
	}

	a.logger.Info("Logged in as %s (%s)", user.Username, user.Role)
	return &out, nil
}

func (a *Auther) persist(ctx context.Context, user *Session) error {
	if err := a.store.Set(ctx, KeyToken, user.Token); err != nil {
		return err
	}
	if err := a.store.Set(ctx, KeyRole, string(user.Role)); err != nil {
		return err
	}
	return a.store.Set(ctx, KeyUsername, user.Username)
}

// Logout tells the backend the session ended and then tears it down
// locally no matter what the backend said. Local teardown is authoritative.
func (a *Auther) Logout(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, a.logoutTimeout)
	if err := a.invalidator.Logout(callCtx); err != nil {
		a.logger.Warn("Logout API failed, continuing client-side cleanup: %s", err)
	}
	cancel()

	// teardown must not be skipped when the caller context is done
	err := a.clear(context.WithoutCancel(ctx))
	a.navigator.HardRedirect(LoginPath)
	return err
}

// Expire clears the session after the backend rejected the credential.
// The transport decides whether to redirect.
func (a *Auther) Expire(ctx context.Context) {
	if err := a.clear(context.WithoutCancel(ctx)); err != nil {
		a.logger.Error("Session expire, unable to clear store: %s", err)
	}
}

func (a *Auther) clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = nil
	a.generation++
	return a.store.Clear(ctx)
}

// Token is read from the store on every call so requests never carry a
// token that was replaced or removed
func (a *Auther) Token(ctx context.Context) string {
	token, err := a.store.Get(ctx, KeyToken)
	if err != nil {
		a.logger.Warn("Unable to read token: %s", err)
		return ""
	}
	return token
}

type noopInvalidator struct{}

func (noopInvalidator) Logout(context.Context) error { return nil }
