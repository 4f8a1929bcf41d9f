package loyalty

import (
	"time"

	"github.com/restopos/loyalty-pos/store"
	"github.com/restopos/loyalty-pos/utils"
)

type failedAttempt struct {
	Count  int       `json:"count"`
	LastAt time.Time `json:"last_at"`
}

type cardLock struct {
	LockedAt time.Time `json:"locked_at"`
	Attempts int       `json:"attempts"`
}

// Guard tracks failed card reads per card id and locks a card once the
// configured maximum is reached. With lockout disabled in the config it
// never records and never reports a lock.
type Guard struct {
	kv   store.KV
	cfgm *ConfigManager
	Now  func() time.Time
}

func NewGuard(kv store.KV, cfgm *ConfigManager) *Guard {
	return &Guard{kv: kv, cfgm: cfgm, Now: time.Now}
}

// RecordFailure increments the card's failure counter. Reaching the maximum
// locks the card with a timestamp and clears the counter. Returns true when
// this failure caused the lock.
func (g *Guard) RecordFailure(cardID string) bool {
	cfg := g.cfgm.Load().Security
	if !cfg.LockoutEnabled {
		return false
	}

	attempts := map[string]failedAttempt{}
	if _, err := g.kv.Get(keyFailedAttempts, &attempts); err != nil {
		utils.ErrorLogger.Printf("reading failed attempts: %v", err)
		return false
	}

	a := attempts[cardID]
	a.Count++
	a.LastAt = g.Now()

	if a.Count >= cfg.MaxFailedAttempts {
		locks := map[string]cardLock{}
		if _, err := g.kv.Get(keyLockedCards, &locks); err != nil {
			utils.ErrorLogger.Printf("reading locked cards: %v", err)
			return false
		}
		locks[cardID] = cardLock{LockedAt: g.Now(), Attempts: a.Count}
		if err := g.kv.Set(keyLockedCards, locks); err != nil {
			utils.ErrorLogger.Printf("saving locked cards: %v", err)
			return false
		}
		delete(attempts, cardID)
		if err := g.kv.Set(keyFailedAttempts, attempts); err != nil {
			utils.ErrorLogger.Printf("saving failed attempts: %v", err)
		}
		utils.InfoLogger.Printf("card %s locked after %d failed reads", cardID, a.Count)
		return true
	}

	attempts[cardID] = a
	if err := g.kv.Set(keyFailedAttempts, attempts); err != nil {
		utils.ErrorLogger.Printf("saving failed attempts: %v", err)
	}
	return false
}

// IsLocked reports whether the card is under an active lockout. Expired
// locks are purged here rather than by a background sweep.
func (g *Guard) IsLocked(cardID string) bool {
	cfg := g.cfgm.Load().Security
	if !cfg.LockoutEnabled {
		return false
	}

	locks := map[string]cardLock{}
	found, err := g.kv.Get(keyLockedCards, &locks)
	if err != nil {
		utils.ErrorLogger.Printf("reading locked cards: %v", err)
		return false
	}
	if !found {
		return false
	}

	lock, ok := locks[cardID]
	if !ok {
		return false
	}

	expiry := lock.LockedAt.Add(time.Duration(cfg.LockoutMinutes) * time.Minute)
	if !g.Now().Before(expiry) {
		delete(locks, cardID)
		if err := g.kv.Set(keyLockedCards, locks); err != nil {
			utils.ErrorLogger.Printf("purging expired lock: %v", err)
		}
		return false
	}
	return true
}
