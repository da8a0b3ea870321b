// Package auth implements password authentication with login-attempt
// limiting and account lockout, plus bcrypt-based password hashing.
// Grounded on
// original_source/.../api/server/auth/authenticator.rs's
// PasswordAuthenticator/AuthenticatorFactory.
package auth

import (
	"fmt"
	"sync"

	"github.com/ali01/graphd/internal/core/errkit"
)

// Config mirrors the source's AuthConfig: whether authorization is enforced
// at all, the failed-login-attempt budget before lockout, and the
// bootstrap default credentials.
type Config struct {
	EnableAuthorize            bool
	FailedLoginAttempts        uint32
	SessionIdleTimeoutSecs     uint32
	DefaultUsername            string
	DefaultPassword            string
	ForceChangeDefaultPassword bool
}

// UserVerifier checks a plaintext username/password pair against the
// catalog, returning whether the credentials are valid.
type UserVerifier func(username, password string) (bool, error)

type loginAttempt struct {
	remaining uint32
}

// PasswordAuthenticator authenticates username/password pairs via a
// pluggable UserVerifier, tracking per-username failed attempts and
// locking a username out once its budget is exhausted. The lockout state
// is in-memory and per-process, matching the source's Arc<RwLock<HashMap>>
// — it resets on restart, which is acceptable since it is a throttle, not
// a durable security control.
type PasswordAuthenticator struct {
	verifier UserVerifier
	config   Config

	mu       sync.RWMutex
	attempts map[string]*loginAttempt
}

// New builds an authenticator backed by a caller-supplied verifier.
func New(verifier UserVerifier, config Config) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		verifier: verifier,
		config:   config,
		attempts: make(map[string]*loginAttempt),
	}
}

// NewDefault builds an authenticator that only accepts the configured
// bootstrap username/password pair — for first-run admin access before any
// catalog user exists.
func NewDefault(config Config) *PasswordAuthenticator {
	return New(func(username, password string) (bool, error) {
		return username == config.DefaultUsername && password == config.DefaultPassword, nil
	}, config)
}

func (a *PasswordAuthenticator) recordFailedAttempt(username string) {
	if a.config.FailedLoginAttempts == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	att, ok := a.attempts[username]
	if !ok {
		att = &loginAttempt{remaining: a.config.FailedLoginAttempts}
		a.attempts[username] = att
	}
	if att.remaining > 0 {
		att.remaining--
	}
}

func (a *PasswordAuthenticator) resetAttempts(username string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.attempts, username)
}

// Authenticate validates username/password. When authorization is disabled
// (config.EnableAuthorize == false) every credential pair succeeds.
func (a *PasswordAuthenticator) Authenticate(username, password string) error {
	if !a.config.EnableAuthorize {
		return nil
	}
	if username == "" || password == "" {
		return errkit.NewSessionError(errkit.SessionEmptyCredentials, "username and password must not be empty")
	}

	if a.config.FailedLoginAttempts > 0 {
		a.mu.RLock()
		att, found := a.attempts[username]
		locked := found && att.remaining == 0
		a.mu.RUnlock()
		if locked {
			return errkit.NewSessionError(errkit.SessionMaxAttemptsExceeded, fmt.Sprintf("maximum login attempts exceeded for user %q", username))
		}
	}

	ok, err := a.verifier(username, password)
	if err != nil {
		return err
	}
	if ok {
		a.resetAttempts(username)
		return nil
	}

	a.recordFailedAttempt(username)

	a.mu.RLock()
	att, found := a.attempts[username]
	var remaining uint32
	if found {
		remaining = att.remaining
	}
	a.mu.RUnlock()

	if found && remaining == 0 {
		return errkit.NewSessionError(errkit.SessionMaxAttemptsExceeded, fmt.Sprintf("maximum login attempts exceeded for user %q", username))
	}
	if found {
		return errkit.NewSessionError(errkit.SessionInvalidCredentials, fmt.Sprintf("invalid credentials, %d attempt(s) remaining", remaining))
	}
	return errkit.NewSessionError(errkit.SessionInvalidCredentials, "invalid credentials")
}

// Factory mirrors the source's AuthenticatorFactory: a thin namespace for
// the two construction paths so callers don't need to remember which
// constructor pairs with which use case.
type Factory struct{}

func (Factory) Create(config Config, verifier UserVerifier) *PasswordAuthenticator {
	return New(verifier, config)
}

func (Factory) CreateDefault(config Config) *PasswordAuthenticator {
	return NewDefault(config)
}
