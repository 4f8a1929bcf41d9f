package loyalty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockAfterMaxFailures(t *testing.T) {
	e := newTestEngine()
	g := e.Guard()

	for i := 0; i < 4; i++ {
		assert.False(t, g.RecordFailure(testCard), "failure %d should not lock yet", i+1)
		assert.False(t, g.IsLocked(testCard))
	}

	assert.True(t, g.RecordFailure(testCard))
	assert.True(t, g.IsLocked(testCard))

	// the counter does not leak to other cards
	assert.False(t, g.IsLocked("NFC999999999999"))
}

func TestLookupFailuresTriggerLock(t *testing.T) {
	e := newTestEngine()

	for i := 0; i < 5; i++ {
		_, err := e.Lookup(testCard)
		assert.ErrorIs(t, err, ErrCardNotRegistered)
	}

	_, err := e.Lookup(testCard)
	assert.ErrorIs(t, err, ErrCardLocked)
}

func TestLockedCardBlocksEvenWhenRegistered(t *testing.T) {
	e := newTestEngine()
	_, err := e.Register(testCard, "Maria", "maria@example.com", "")
	assert.NoError(t, err)

	for i := 0; i < 5; i++ {
		e.Guard().RecordFailure(testCard)
	}

	_, err = e.Lookup(testCard)
	assert.ErrorIs(t, err, ErrCardLocked)
}

func TestLockExpires(t *testing.T) {
	e := newTestEngine()
	g := e.Guard()

	for i := 0; i < 5; i++ {
		g.RecordFailure(testCard)
	}
	assert.True(t, g.IsLocked(testCard))

	g.Now = func() time.Time { return testTime.Add(31 * time.Minute) }
	assert.False(t, g.IsLocked(testCard))

	// the expired lock was purged, the counter starts over
	assert.False(t, g.RecordFailure(testCard))
	assert.False(t, g.IsLocked(testCard))
}

func TestLockoutDisabled(t *testing.T) {
	e := newTestEngine()
	err := e.Config().Save(Override{
		Security: &SecurityOverride{LockoutEnabled: ptr(false)},
	})
	assert.NoError(t, err)

	g := e.Guard()
	for i := 0; i < 10; i++ {
		assert.False(t, g.RecordFailure(testCard))
	}
	assert.False(t, g.IsLocked(testCard))
}
