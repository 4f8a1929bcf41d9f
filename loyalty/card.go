package loyalty

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/restopos/loyalty-pos/models"
	"github.com/restopos/loyalty-pos/utils"
)

const (
	CardFormatVersion = "1.0"
	CardTypeLoyalty   = "LOYALTY_POINTS"
)

// CardStore emulates the memory of physical NFC tags: a capacity-limited
// payload per card id with an integrity checksum. Reads and writes sleep for
// the configured times to mimic hardware latency; tests replace Sleep with a
// no-op.
type CardStore struct {
	cfgm  *ConfigManager
	Now   func() time.Time
	Sleep func(time.Duration)

	mu     sync.Mutex
	memory map[string]models.CardEnvelope
}

func NewCardStore(cfgm *ConfigManager) *CardStore {
	return &CardStore{
		cfgm:   cfgm,
		Now:    time.Now,
		Sleep:  time.Sleep,
		memory: make(map[string]models.CardEnvelope),
	}
}

// CardChecksum hashes the payload with the checksum field blanked, so a
// write-then-read round trip reproduces the same digest.
func CardChecksum(data models.CardData) string {
	data.Checksum = ""
	raw, _ := json.Marshal(data)
	var hash int32
	for _, b := range raw {
		hash = (hash << 5) - hash + int32(b)
	}
	if hash < 0 {
		hash = -hash
	}
	return strconv.FormatInt(int64(hash), 16)
}

type WriteResult struct {
	CardID    string `json:"card_id"`
	BytesUsed int    `json:"bytes_used"`
	BytesFree int    `json:"bytes_free"`
}

// Write stamps the payload, computes a fresh checksum and overwrites any
// prior card contents.
func (s *CardStore) Write(cardID string, data models.CardData) (*WriteResult, error) {
	cfg := s.cfgm.Load()
	if !cfg.ValidateCardID(cardID) {
		return nil, ErrInvalidCardID
	}

	data.UpdatedAt = s.Now().UTC().Format(time.RFC3339)
	data.Checksum = CardChecksum(data)

	env := models.CardEnvelope{
		Version:  CardFormatVersion,
		CardType: CardTypeLoyalty,
		Data:     data,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	if len(raw) > cfg.Card.CapacityBytes {
		return nil, fmt.Errorf("%w: %d bytes over a %d byte card", ErrCardCapacity, len(raw), cfg.Card.CapacityBytes)
	}

	s.Sleep(time.Duration(cfg.Card.WriteTimeMs) * time.Millisecond)

	s.mu.Lock()
	s.memory[cardID] = env
	s.mu.Unlock()

	utils.InfoLogger.Printf("card %s written (%d bytes)", cardID, len(raw))

	return &WriteResult{
		CardID:    cardID,
		BytesUsed: len(raw),
		BytesFree: cfg.Card.CapacityBytes - len(raw),
	}, nil
}

type ReadResult struct {
	CardID   string           `json:"card_id"`
	Empty    bool             `json:"empty,omitempty"`
	Version  string           `json:"version,omitempty"`
	CardType string           `json:"card_type,omitempty"`
	Data     *models.CardData `json:"data,omitempty"`
}

// Read returns an explicit empty marker for a never-written card; corrupted
// or version-mismatched payloads are errors.
func (s *CardStore) Read(cardID string) (*ReadResult, error) {
	cfg := s.cfgm.Load()
	if !cfg.ValidateCardID(cardID) {
		return nil, ErrInvalidCardID
	}

	s.Sleep(time.Duration(cfg.Card.ReadTimeMs) * time.Millisecond)

	s.mu.Lock()
	env, ok := s.memory[cardID]
	s.mu.Unlock()

	if !ok {
		return &ReadResult{CardID: cardID, Empty: true}, nil
	}

	if CardChecksum(env.Data) != env.Data.Checksum {
		return nil, ErrCardCorrupted
	}
	if env.Version != CardFormatVersion {
		return nil, fmt.Errorf("%w: %s", ErrCardVersion, env.Version)
	}

	data := env.Data
	return &ReadResult{
		CardID:   cardID,
		Version:  env.Version,
		CardType: env.CardType,
		Data:     &data,
	}, nil
}

// Erase succeeds whether or not the card held data.
func (s *CardStore) Erase(cardID string) error {
	s.mu.Lock()
	delete(s.memory, cardID)
	s.mu.Unlock()
	return nil
}

// UpdatePoints rewrites only points and tier, a narrower path than a full
// write. The promotion multiplier is never recomputed here; it was captured
// at accrual time.
func (s *CardStore) UpdatePoints(cardID string, points int, tier string) (*WriteResult, error) {
	r, err := s.Read(cardID)
	if err != nil {
		return nil, err
	}
	if r.Empty {
		return nil, ErrCardEmpty
	}

	data := *r.Data
	data.Points = points
	data.Tier = tier
	return s.Write(cardID, data)
}

// Initialize programs a blank card with a customer snapshot.
func (s *CardStore) Initialize(cardID string, c models.Customer) (*WriteResult, error) {
	return s.Write(cardID, models.CardData{
		CustomerID: c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Points:     c.Points,
		Tier:       c.Tier,
	})
}

type TechInfo struct {
	CardID       string `json:"card_id"`
	Present      bool   `json:"present"`
	BytesTotal   int    `json:"bytes_total"`
	BytesUsed    int    `json:"bytes_used"`
	BytesFree    int    `json:"bytes_free"`
	UsagePercent int    `json:"usage_percent"`
	LastWriteAt  string `json:"last_write_at,omitempty"`
	Version      string `json:"version,omitempty"`
	Checksum     string `json:"checksum,omitempty"`
}

// TechInfo reports raw memory usage without validating the payload.
func (s *CardStore) TechInfo(cardID string) TechInfo {
	cfg := s.cfgm.Load()

	s.mu.Lock()
	env, ok := s.memory[cardID]
	s.mu.Unlock()

	info := TechInfo{
		CardID:     cardID,
		Present:    ok,
		BytesTotal: cfg.Card.CapacityBytes,
		BytesFree:  cfg.Card.CapacityBytes,
	}
	if !ok {
		return info
	}

	raw, _ := json.Marshal(env)
	info.BytesUsed = len(raw)
	info.BytesFree = cfg.Card.CapacityBytes - len(raw)
	info.UsagePercent = len(raw) * 100 / cfg.Card.CapacityBytes
	info.LastWriteAt = env.Data.UpdatedAt
	info.Version = env.Version
	info.Checksum = env.Data.Checksum
	return info
}

const (
	CardStateEmpty    = "empty"
	CardStateActive   = "active"
	CardStateLowUse   = "low_use"
	CardStateInactive = "inactive"
)

type StatusReport struct {
	CardID       string           `json:"card_id"`
	State        string           `json:"state"`
	Message      string           `json:"message"`
	DaysSinceUse int              `json:"days_since_use,omitempty"`
	Data         *models.CardData `json:"data,omitempty"`
}

// CheckStatus classifies a card by how long ago it was last written.
func (s *CardStore) CheckStatus(cardID string) (*StatusReport, error) {
	r, err := s.Read(cardID)
	if err != nil {
		return nil, err
	}
	if r.Empty {
		return &StatusReport{
			CardID:  cardID,
			State:   CardStateEmpty,
			Message: "card ready to program",
		}, nil
	}

	days := 0
	if last, err := time.Parse(time.RFC3339, r.Data.UpdatedAt); err == nil {
		days = int(s.Now().Sub(last).Hours() / 24)
	}

	report := &StatusReport{
		CardID:       cardID,
		State:        CardStateActive,
		Message:      "card working correctly",
		DaysSinceUse: days,
		Data:         r.Data,
	}
	switch {
	case days > 365:
		report.State = CardStateInactive
		report.Message = fmt.Sprintf("unused for %d days, consider reactivating", days)
	case days > 90:
		report.State = CardStateLowUse
		report.Message = fmt.Sprintf("little recent use (%d days)", days)
	}
	return report, nil
}
