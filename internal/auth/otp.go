package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// ChallengeTTL is how long an issued passcode stays verifiable.
const ChallengeTTL = 5 * time.Minute

type challenge struct {
	code     string
	expires  time.Time
	verified bool
}

// ChallengeStore tracks one-time passcode challenges, at most one per
// email. Reissuing replaces the prior challenge, invalidating its code.
type ChallengeStore struct {
	mu      sync.Mutex
	byEmail map[string]*challenge
	ttl     time.Duration
	now     func() time.Time
}

// NewChallengeStore creates an empty challenge store using the wall clock.
func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		byEmail: make(map[string]*challenge),
		ttl:     ChallengeTTL,
		now:     time.Now,
	}
}

// generateCode draws a uniform six-digit code, 100000 through 999999.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

// Issue creates a fresh challenge for email, replacing any prior one, and
// returns the code for delivery. The expiry window restarts on reissue.
func (cs *ChallengeStore) Issue(email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.byEmail[email] = &challenge{code: code, expires: cs.now().Add(cs.ttl)}
	return code, nil
}

// Verify checks code against the stored challenge for email. Expired
// challenges are deleted and must be reissued. A correct code marks the
// challenge verified but does not consume it, so repeating a correct
// verification keeps succeeding until expiry.
func (cs *ChallengeStore) Verify(email, code string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	ch, ok := cs.byEmail[email]
	if !ok {
		return ErrNotFound
	}
	if cs.now().After(ch.expires) {
		delete(cs.byEmail, email)
		return ErrExpired
	}
	if ch.code != code {
		return ErrMismatch
	}
	ch.verified = true
	return nil
}

// Verified reports whether email has a live, verified challenge.
func (cs *ChallengeStore) Verified(email string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	ch, ok := cs.byEmail[email]
	if !ok {
		return false
	}
	if cs.now().After(ch.expires) {
		delete(cs.byEmail, email)
		return false
	}
	return ch.verified
}

// Consume deletes the challenge for email. Called after the login or
// registration it gated has succeeded; each challenge is single-use across
// the full flow.
func (cs *ChallengeStore) Consume(email string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.byEmail, email)
}
