package loyalty

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/restopos/loyalty-pos/models"
	"github.com/restopos/loyalty-pos/store"
	"github.com/restopos/loyalty-pos/utils"
)

// Engine runs point accrual and redemption over the customer collection.
// Every operation loads the collection, mutates a copy and writes it back as
// one replace; the ledger is append-only.
type Engine struct {
	kv    store.KV
	cfgm  *ConfigManager
	guard *Guard
	Now   func() time.Time
}

func NewEngine(kv store.KV, cfgm *ConfigManager, guard *Guard) *Engine {
	return &Engine{kv: kv, cfgm: cfgm, guard: guard, Now: time.Now}
}

func (e *Engine) Config() *ConfigManager { return e.cfgm }
func (e *Engine) Guard() *Guard          { return e.guard }

func (e *Engine) customers() ([]models.Customer, error) {
	var list []models.Customer
	if _, err := e.kv.Get(keyCustomers, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (e *Engine) saveCustomers(list []models.Customer) error {
	return e.kv.Set(keyCustomers, list)
}

func (e *Engine) ledger() ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if _, err := e.kv.Get(keyLedger, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (e *Engine) appendEntry(entry models.LedgerEntry) (models.LedgerEntry, error) {
	entries, err := e.ledger()
	if err != nil {
		return entry, err
	}
	var maxID uint
	for _, en := range entries {
		if en.ID > maxID {
			maxID = en.ID
		}
	}
	entry.ID = maxID + 1
	entry.CreatedAt = e.Now()
	entries = append(entries, entry)
	return entry, e.kv.Set(keyLedger, entries)
}

func findActiveCard(list []models.Customer, cardID string) int {
	for i, c := range list {
		if c.CardID == cardID && c.Active {
			return i
		}
	}
	return -1
}

type AccrualResult struct {
	Customer     models.Customer    `json:"customer"`
	PointsEarned int                `json:"points_earned"`
	Entry        models.LedgerEntry `json:"entry"`
}

// Accrue grants points for a purchase: floor(amount * rate), scaled by the
// customer's current tier multiplier, doubled inside the promotion window.
// The multiplier is captured now and never recomputed afterwards.
func (e *Engine) Accrue(cardID string, amount float64, description string) (*AccrualResult, error) {
	cfg := e.cfgm.Load()

	list, err := e.customers()
	if err != nil {
		return nil, err
	}
	idx := findActiveCard(list, cardID)
	if idx == -1 {
		return nil, ErrCustomerNotFound
	}

	base := math.Floor(amount * cfg.PointsPerCurrencyUnit)
	multiplier := cfg.TierMultiplier(list[idx].Tier)
	if cfg.IsPromotionActive(e.Now()) {
		multiplier *= 2
	}
	earned := int(math.Floor(base * multiplier))

	list[idx].Points += earned
	list[idx].LifetimePoints += earned
	list[idx].LastVisitAt = e.Now()
	list[idx].Tier = cfg.ResolveTier(list[idx].LifetimePoints).Name

	if err := e.saveCustomers(list); err != nil {
		return nil, err
	}

	if description == "" {
		description = "Purchase"
	}
	entry, err := e.appendEntry(models.LedgerEntry{
		CustomerID:     list[idx].ID,
		CardID:         cardID,
		Kind:           models.LedgerAccrual,
		Points:         earned,
		PurchaseAmount: amount,
		Description:    description,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Security.LogTransactions {
		utils.InfoLogger.Printf("accrual: card=%s customer=%d points=%d amount=%.2f", cardID, list[idx].ID, earned, amount)
	}

	return &AccrualResult{Customer: list[idx], PointsEarned: earned, Entry: entry}, nil
}

type RedemptionResult struct {
	Customer       models.Customer    `json:"customer"`
	PointsRedeemed int                `json:"points_redeemed"`
	Discount       float64            `json:"discount"`
	Entry          models.LedgerEntry `json:"entry"`
}

// Redeem exchanges points for a discount. Lifetime points and therefore the
// tier are untouched.
func (e *Engine) Redeem(cardID string, points int) (*RedemptionResult, error) {
	cfg := e.cfgm.Load()

	list, err := e.customers()
	if err != nil {
		return nil, err
	}
	idx := findActiveCard(list, cardID)
	if idx == -1 {
		return nil, ErrCustomerNotFound
	}

	if points < cfg.MinimumRedeemablePoints {
		return nil, fmt.Errorf("%w (minimum %d)", ErrBelowMinimum, cfg.MinimumRedeemablePoints)
	}
	if points > list[idx].Points {
		return nil, ErrInsufficientPoints
	}

	discount := float64(points) * cfg.CurrencyValuePerPoint

	list[idx].Points -= points
	list[idx].LastVisitAt = e.Now()

	if err := e.saveCustomers(list); err != nil {
		return nil, err
	}

	entry, err := e.appendEntry(models.LedgerEntry{
		CustomerID:  list[idx].ID,
		CardID:      cardID,
		Kind:        models.LedgerRedemption,
		Points:      -points,
		Description: fmt.Sprintf("Points redemption - discount $%s", utils.FormatAmount(discount)),
	})
	if err != nil {
		return nil, err
	}

	if cfg.Security.LogTransactions {
		utils.InfoLogger.Printf("redemption: card=%s customer=%d points=%d discount=%.2f", cardID, list[idx].ID, points, discount)
	}

	return &RedemptionResult{Customer: list[idx], PointsRedeemed: points, Discount: discount, Entry: entry}, nil
}

// Register creates a loyalty account, seeds it with the welcome bonus and
// writes the bonus as the first ledger entry.
func (e *Engine) Register(cardID, name, email, phone string) (*models.Customer, error) {
	cfg := e.cfgm.Load()

	if !cfg.ValidateCardID(cardID) {
		return nil, ErrInvalidCardID
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !cfg.ValidateEmail(email) {
		return nil, ErrInvalidEmail
	}
	phone = strings.TrimSpace(phone)
	if !cfg.ValidatePhone(phone) {
		return nil, ErrInvalidPhone
	}

	list, err := e.customers()
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		if c.CardID == cardID {
			return nil, ErrDuplicateCard
		}
		if strings.EqualFold(c.Email, email) {
			return nil, ErrDuplicateEmail
		}
	}

	var maxID uint
	for _, c := range list {
		if c.ID > maxID {
			maxID = c.ID
		}
	}

	now := e.Now()
	customer := models.Customer{
		ID:             maxID + 1,
		CardID:         cardID,
		Name:           strings.TrimSpace(name),
		Email:          email,
		Phone:          phone,
		Points:         cfg.WelcomeBonusPoints,
		LifetimePoints: cfg.WelcomeBonusPoints,
		Tier:           cfg.ResolveTier(cfg.WelcomeBonusPoints).Name,
		RegisteredAt:   now,
		LastVisitAt:    now,
		Active:         true,
	}

	list = append(list, customer)
	if err := e.saveCustomers(list); err != nil {
		return nil, err
	}

	if cfg.WelcomeBonusPoints > 0 {
		if _, err := e.appendEntry(models.LedgerEntry{
			CustomerID:  customer.ID,
			CardID:      cardID,
			Kind:        models.LedgerBonus,
			Points:      cfg.WelcomeBonusPoints,
			Description: "Welcome bonus",
		}); err != nil {
			return nil, err
		}
	}

	utils.InfoLogger.Printf("customer registered: id=%d card=%s", customer.ID, cardID)
	return &customer, nil
}

// Lookup resolves a card to its customer. A locked card fails before any
// search; a miss counts as a failed read attempt.
func (e *Engine) Lookup(cardID string) (*models.Customer, error) {
	if e.guard.IsLocked(cardID) {
		return nil, ErrCardLocked
	}

	list, err := e.customers()
	if err != nil {
		return nil, err
	}
	idx := findActiveCard(list, cardID)
	if idx == -1 {
		e.guard.RecordFailure(cardID)
		return nil, ErrCardNotRegistered
	}
	customer := list[idx]
	return &customer, nil
}

// UpdateCustomer edits contact details and the active flag. Accounts are
// deactivated, never deleted.
func (e *Engine) UpdateCustomer(id uint, name, email, phone string, active *bool) (*models.Customer, error) {
	list, err := e.customers()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, c := range list {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrCustomerNotFound
	}

	email = strings.ToLower(strings.TrimSpace(email))
	for _, c := range list {
		if c.ID != id && strings.EqualFold(c.Email, email) {
			return nil, ErrDuplicateEmail
		}
	}

	list[idx].Name = strings.TrimSpace(name)
	list[idx].Email = email
	list[idx].Phone = strings.TrimSpace(phone)
	if active != nil {
		list[idx].Active = *active
	}

	if err := e.saveCustomers(list); err != nil {
		return nil, err
	}
	customer := list[idx]
	return &customer, nil
}

func (e *Engine) ListCustomers() ([]models.Customer, error) {
	return e.customers()
}

// TransactionsByCustomer returns the newest entries first.
func (e *Engine) TransactionsByCustomer(customerID uint, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := e.ledger()
	if err != nil {
		return nil, err
	}
	filtered := make([]models.LedgerEntry, 0)
	for _, en := range entries {
		if en.CustomerID == customerID {
			filtered = append(filtered, en)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (e *Engine) AllTransactions(limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries, err := e.ledger()
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

type Stats struct {
	ActiveCustomers     int            `json:"active_customers"`
	PointsInCirculation int            `json:"points_in_circulation"`
	LifetimePointsTotal int            `json:"lifetime_points_total"`
	TransactionsToday   int            `json:"transactions_today"`
	CustomersByTier     map[string]int `json:"customers_by_tier"`
}

func (e *Engine) Stats() (*Stats, error) {
	list, err := e.customers()
	if err != nil {
		return nil, err
	}
	entries, err := e.ledger()
	if err != nil {
		return nil, err
	}

	stats := &Stats{CustomersByTier: make(map[string]int)}
	for _, c := range list {
		stats.PointsInCirculation += c.Points
		stats.LifetimePointsTotal += c.LifetimePoints
		if c.Active {
			stats.ActiveCustomers++
			stats.CustomersByTier[c.Tier]++
		}
	}

	today := e.Now()
	for _, en := range entries {
		y1, m1, d1 := en.CreatedAt.Date()
		y2, m2, d2 := today.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			stats.TransactionsToday++
		}
	}
	return stats, nil
}
