package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a manually advanced clock.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestChallengeStore(clock *testClock) *ChallengeStore {
	cs := NewChallengeStore()
	cs.now = clock.Now
	return cs
}

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}

func TestIssueThenVerify(t *testing.T) {
	cs := newTestChallengeStore(newTestClock())

	code, err := cs.Issue("a@x.com")
	require.NoError(t, err)

	assert.NoError(t, cs.Verify("a@x.com", code))
	assert.True(t, cs.Verified("a@x.com"))
}

func TestVerifyWrongCode(t *testing.T) {
	cs := newTestChallengeStore(newTestClock())

	code, err := cs.Issue("a@x.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, cs.Verify("a@x.com", wrong), ErrMismatch)
	assert.False(t, cs.Verified("a@x.com"))

	// the correct code still works after a mismatch
	assert.NoError(t, cs.Verify("a@x.com", code))
}

func TestVerifyUnknownEmail(t *testing.T) {
	cs := newTestChallengeStore(newTestClock())
	assert.ErrorIs(t, cs.Verify("a@x.com", "123456"), ErrNotFound)
}

func TestVerifyExpiredDeletesChallenge(t *testing.T) {
	clock := newTestClock()
	cs := newTestChallengeStore(clock)

	code, err := cs.Issue("a@x.com")
	require.NoError(t, err)

	clock.Advance(ChallengeTTL + time.Second)

	assert.ErrorIs(t, cs.Verify("a@x.com", code), ErrExpired)
	// the challenge is gone, so a retry is NotFound rather than Expired
	assert.ErrorIs(t, cs.Verify("a@x.com", code), ErrNotFound)
}

func TestVerifyAtBoundaryStillValid(t *testing.T) {
	clock := newTestClock()
	cs := newTestChallengeStore(clock)

	code, err := cs.Issue("a@x.com")
	require.NoError(t, err)

	// exactly at expiry is not yet past it
	clock.Advance(ChallengeTTL)
	assert.NoError(t, cs.Verify("a@x.com", code))
}

func TestReissueInvalidatesPriorCode(t *testing.T) {
	clock := newTestClock()
	cs := newTestChallengeStore(clock)

	first, err := cs.Issue("a@x.com")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	second, err := cs.Issue("a@x.com")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, cs.Verify("a@x.com", first), ErrMismatch)
	}
	assert.NoError(t, cs.Verify("a@x.com", second))

	// reissue restarted the expiry window
	clock.Advance(ChallengeTTL - time.Minute)
	assert.True(t, cs.Verified("a@x.com"))
}

func TestVerifyIsIdempotentWhileValid(t *testing.T) {
	cs := newTestChallengeStore(newTestClock())

	code, err := cs.Issue("a@x.com")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.NoError(t, cs.Verify("a@x.com", code))
	}
}

func TestConsumeRemovesChallenge(t *testing.T) {
	cs := newTestChallengeStore(newTestClock())

	code, err := cs.Issue("a@x.com")
	require.NoError(t, err)
	require.NoError(t, cs.Verify("a@x.com", code))

	cs.Consume("a@x.com")
	assert.False(t, cs.Verified("a@x.com"))
	assert.ErrorIs(t, cs.Verify("a@x.com", code), ErrNotFound)
}

func TestVerifiedExpiresToo(t *testing.T) {
	clock := newTestClock()
	cs := newTestChallengeStore(clock)

	code, err := cs.Issue("a@x.com")
	require.NoError(t, err)
	require.NoError(t, cs.Verify("a@x.com", code))

	clock.Advance(ChallengeTTL + time.Second)
	assert.False(t, cs.Verified("a@x.com"))
}
