package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"finbook/internal/localstore"
	"finbook/internal/models"
	"finbook/internal/storage"
)

// State is the flow controller's position in the login state machine.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateOTPPending    State = "otp_pending"
	StateAuthenticated State = "authenticated"
)

// Provider names a social-login provider.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderApple  Provider = "apple"
)

// Directory is the user-record surface the flow needs from the data store.
type Directory interface {
	FetchUserByEmail(ctx context.Context, email string) (models.User, error)
	FetchUserByID(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	SetCurrentUser(ctx context.Context, id string) error
}

// TokenStorage is the persistent slot holding the session token.
type TokenStorage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Flow orchestrates credential login, the one-time-passcode challenge,
// social login, and session persistence. Failures return a taxonomy error
// and leave the state machine where it was. The one exception is context
// cancellation: a canceled operation has no user left to read a message,
// so the context error passes through unconverted.
type Flow struct {
	mu         sync.Mutex
	users      Directory
	tokens     TokenStorage
	notifier   Notifier
	challenges *ChallengeStore
	secret     []byte
	tokenTTL   time.Duration
	now        func() time.Time

	state State
	user  *models.User
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithClock overrides the flow's clock, including the challenge store's.
func WithClock(now func() time.Time) FlowOption {
	return func(f *Flow) {
		f.now = now
		f.challenges.now = now
	}
}

// WithTokenTTL overrides the session token lifetime.
func WithTokenTTL(ttl time.Duration) FlowOption {
	return func(f *Flow) { f.tokenTTL = ttl }
}

// NewFlow creates a flow controller in the anonymous state.
func NewFlow(users Directory, tokens TokenStorage, notifier Notifier, secret []byte, opts ...FlowOption) *Flow {
	f := &Flow{
		users:      users,
		tokens:     tokens,
		notifier:   notifier,
		challenges: NewChallengeStore(),
		secret:     secret,
		tokenTTL:   SessionTokenTTL,
		now:        time.Now,
		state:      StateAnonymous,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current state machine position.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Session returns the current session snapshot.
func (f *Flow) Session() models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return models.Session{}
	}
	u := *f.user
	return models.Session{Authenticated: f.state == StateAuthenticated, User: &u}
}

// SendChallenge issues a fresh passcode challenge for email, replacing any
// prior one, and hands the code to the notifier. The code is never
// returned to the caller. A delivery failure discards the challenge.
func (f *Flow) SendChallenge(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	code, err := f.challenges.Issue(email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	if err := f.notifier.Deliver(ctx, email, code); err != nil {
		f.challenges.Consume(email)
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	f.mu.Lock()
	if f.state == StateAnonymous {
		f.state = StateOTPPending
	}
	f.mu.Unlock()
	return nil
}

// VerifyChallenge checks code against the live challenge for email. On a
// match the challenge is marked verified but kept for the login or
// registration that follows; verifying again with the same code keeps
// succeeding until expiry.
func (f *Flow) VerifyChallenge(_ context.Context, email, code string) error {
	return f.challenges.Verify(normalizeEmail(email), code)
}

// Login authenticates with email and password. It requires a verified
// passcode challenge for the same email; on success the challenge is
// consumed, the session activated, and a signed token persisted.
func (f *Flow) Login(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	user, err := f.users.FetchUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("looking up user: %w", err)
	}
	if !CheckPassword(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	if !f.challenges.Verified(email) {
		return models.User{}, ErrChallengeRequired
	}

	f.activate(ctx, user)
	f.challenges.Consume(email)
	return user, nil
}

// Register creates a new account and logs it in. The same passcode
// precondition as Login applies, keyed by the profile email. Email, first
// name, last name, and password are required; the email must not belong to
// an existing account; role defaults to user.
func (f *Flow) Register(ctx context.Context, profile models.User, password string) (models.User, error) {
	profile.Email = normalizeEmail(profile.Email)
	if profile.Email == "" || profile.FirstName == "" || profile.LastName == "" || password == "" {
		return models.User{}, ErrValidation
	}
	if !f.challenges.Verified(profile.Email) {
		return models.User{}, ErrChallengeRequired
	}

	// Email is the lookup key for login and challenges, so it must stay
	// unique across users.
	if _, err := f.users.FetchUserByEmail(ctx, profile.Email); err == nil {
		return models.User{}, fmt.Errorf("%w: an account with this email already exists", ErrValidation)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, fmt.Errorf("looking up user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: hashing password", ErrValidation)
	}
	profile.PasswordHash = hash
	if profile.Role == "" {
		profile.Role = models.RoleUser
	}
	user, err := f.users.CreateUser(ctx, profile)
	if err != nil {
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}

	f.activate(ctx, user)
	f.challenges.Consume(profile.Email)
	return user, nil
}

// LoginWithProvider authenticates through a social-login provider. Provider
// logins are exempt from the passcode challenge: the provider has already
// verified control of the email address, so a second proof is not required.
func (f *Flow) LoginWithProvider(ctx context.Context, provider Provider) (models.User, error) {
	var profile models.User
	switch provider {
	case ProviderGoogle:
		profile = models.User{Email: "user@gmail.com", FirstName: "Google", LastName: "User", Role: models.RoleUser}
	case ProviderApple:
		profile = models.User{Email: "user@icloud.com", FirstName: "Apple", LastName: "User", Role: models.RoleUser}
	default:
		return models.User{}, fmt.Errorf("%w: unknown provider %q", ErrProvider, provider)
	}

	user, err := f.users.FetchUserByEmail(ctx, profile.Email)
	if errors.Is(err, storage.ErrNotFound) {
		user, err = f.users.CreateUser(ctx, profile)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	f.activate(ctx, user)
	return user, nil
}

// Logout clears the session and deletes the persisted token. Challenge
// state is untouched.
func (f *Flow) Logout(_ context.Context) {
	if err := f.tokens.Delete(localstore.TokenKey); err != nil {
		log.Printf("deleting session token: %v", err)
	}
	f.mu.Lock()
	f.state = StateAnonymous
	f.user = nil
	f.mu.Unlock()
}

// ResumeSession restores a session from the persisted token, if any. It
// never fails: a missing, expired, or unresolvable token degrades to the
// anonymous state, clearing the stale token along the way.
func (f *Flow) ResumeSession(ctx context.Context) models.Session {
	token, err := f.tokens.Get(localstore.TokenKey)
	if err != nil || token == "" {
		return models.Session{}
	}

	userID, err := ParseSessionToken(token, f.secret)
	if err != nil {
		f.clearStaleToken()
		return models.Session{}
	}
	user, err := f.users.FetchUserByID(ctx, userID)
	if err != nil {
		f.clearStaleToken()
		return models.Session{}
	}

	f.activate(ctx, user)
	return f.Session()
}

// activate switches the state machine to authenticated for user and
// persists a fresh session token. Token persistence is best-effort: the
// in-memory session stands even if the storage write fails.
func (f *Flow) activate(ctx context.Context, user models.User) {
	token, err := NewSessionToken(user.ID, f.secret, f.tokenTTL, f.now())
	if err != nil {
		log.Printf("creating session token: %v", err)
	} else if err := f.tokens.Set(localstore.TokenKey, token); err != nil {
		log.Printf("persisting session token: %v", err)
	}
	if err := f.users.SetCurrentUser(ctx, user.ID); err != nil {
		log.Printf("marking current user: %v", err)
	}

	f.mu.Lock()
	f.state = StateAuthenticated
	f.user = &user
	f.mu.Unlock()
}

func (f *Flow) clearStaleToken() {
	if err := f.tokens.Delete(localstore.TokenKey); err != nil {
		log.Printf("clearing stale session token: %v", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
