package loyalty

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/restopos/loyalty-pos/store"
	"github.com/restopos/loyalty-pos/utils"
)

// Collection keys in the KV store.
const (
	keyConfigOverride = "loyalty_config_override"
	keyCustomers      = "loyalty_customers"
	keyLedger         = "loyalty_ledger"
	keyFailedAttempts = "loyalty_failed_attempts"
	keyLockedCards    = "loyalty_locked_cards"
)

// Config holds every tunable business parameter of the loyalty program.
type Config struct {
	PointsPerCurrencyUnit   float64         `json:"points_per_currency_unit"`
	CurrencyValuePerPoint   float64         `json:"currency_value_per_point"`
	MinimumRedeemablePoints int             `json:"minimum_redeemable_points"`
	WelcomeBonusPoints      int             `json:"welcome_bonus_points"`
	Tiers                   map[string]Tier `json:"tiers"`
	Card                    CardConfig      `json:"card"`
	Promotions              Promotions      `json:"promotions"`
	Security                SecurityConfig  `json:"security"`
}

type Tier struct {
	MinLifetimePoints int     `json:"min_lifetime_points"`
	Multiplier        float64 `json:"multiplier"`
	Name              string  `json:"name"`
	Color             string  `json:"color"`
}

type CardConfig struct {
	Prefix           string `json:"prefix"`
	IDLength         int    `json:"id_length"`
	StrictValidation bool   `json:"strict_validation"`
	ReadTimeMs       int    `json:"read_time_ms"`
	WriteTimeMs      int    `json:"write_time_ms"`
	CapacityBytes    int    `json:"capacity_bytes"`
}

type Promotions struct {
	Enabled       bool               `json:"enabled"`
	DoublePoints  DoublePointsWindow `json:"double_points"`
	BirthdayBonus BirthdayBonus      `json:"birthday_bonus"`
}

// DoublePointsWindow doubles every accrual while the local clock is inside
// the window: weekday in Weekdays and hour within [StartHour, EndHour].
type DoublePointsWindow struct {
	Active    bool  `json:"active"`
	Weekdays  []int `json:"weekdays"`
	StartHour int   `json:"start_hour"`
	EndHour   int   `json:"end_hour"`
}

type BirthdayBonus struct {
	Active bool `json:"active"`
	Points int  `json:"points"`
}

type SecurityConfig struct {
	LockoutEnabled     bool   `json:"lockout_enabled"`
	MaxFailedAttempts  int    `json:"max_failed_attempts"`
	LockoutMinutes     int    `json:"lockout_minutes"`
	RequireEmailFormat bool   `json:"require_email_format"`
	RequirePhoneFormat bool   `json:"require_phone_format"`
	PhonePattern       string `json:"phone_pattern"`
	LogTransactions    bool   `json:"log_transactions"`
}

// DefaultConfig is the hard-coded baseline. A persisted override is merged
// over it on load, so a partial override never erases untouched fields.
func DefaultConfig() Config {
	return Config{
		PointsPerCurrencyUnit:   1,
		CurrencyValuePerPoint:   1,
		MinimumRedeemablePoints: 100,
		WelcomeBonusPoints:      50,
		Tiers: map[string]Tier{
			"bronze":  {MinLifetimePoints: 0, Multiplier: 1.0, Name: "Bronze", Color: "#cd7f32"},
			"silver":  {MinLifetimePoints: 500, Multiplier: 1.1, Name: "Silver", Color: "#c0c0c0"},
			"gold":    {MinLifetimePoints: 1000, Multiplier: 1.2, Name: "Gold", Color: "#ffd700"},
			"diamond": {MinLifetimePoints: 2000, Multiplier: 1.5, Name: "Diamond", Color: "#b9f2ff"},
		},
		Card: CardConfig{
			Prefix:           "NFC",
			IDLength:         15,
			StrictValidation: true,
			ReadTimeMs:       600,
			WriteTimeMs:      800,
			CapacityBytes:    4096,
		},
		Promotions: Promotions{
			Enabled: true,
			DoublePoints: DoublePointsWindow{
				Active:    false,
				Weekdays:  []int{6, 0}, // saturday, sunday
				StartHour: 18,
				EndHour:   22,
			},
			BirthdayBonus: BirthdayBonus{Active: true, Points: 200},
		},
		Security: SecurityConfig{
			LockoutEnabled:     true,
			MaxFailedAttempts:  5,
			LockoutMinutes:     30,
			RequireEmailFormat: true,
			RequirePhoneFormat: false,
			PhonePattern:       `^3[0-9]{9}$`,
			LogTransactions:    true,
		},
	}
}

// Override is a partial configuration. Nil fields keep the baseline value;
// tier entries replace the baseline tier of the same key wholesale.
type Override struct {
	PointsPerCurrencyUnit   *float64            `json:"points_per_currency_unit,omitempty"`
	CurrencyValuePerPoint   *float64            `json:"currency_value_per_point,omitempty"`
	MinimumRedeemablePoints *int                `json:"minimum_redeemable_points,omitempty"`
	WelcomeBonusPoints      *int                `json:"welcome_bonus_points,omitempty"`
	Tiers                   map[string]Tier     `json:"tiers,omitempty"`
	Card                    *CardOverride       `json:"card,omitempty"`
	Promotions              *PromotionsOverride `json:"promotions,omitempty"`
	Security                *SecurityOverride   `json:"security,omitempty"`
}

type CardOverride struct {
	Prefix           *string `json:"prefix,omitempty"`
	IDLength         *int    `json:"id_length,omitempty"`
	StrictValidation *bool   `json:"strict_validation,omitempty"`
	ReadTimeMs       *int    `json:"read_time_ms,omitempty"`
	WriteTimeMs      *int    `json:"write_time_ms,omitempty"`
	CapacityBytes    *int    `json:"capacity_bytes,omitempty"`
}

type PromotionsOverride struct {
	Enabled       *bool               `json:"enabled,omitempty"`
	DoublePoints  *DoublePointsWindow `json:"double_points,omitempty"`
	BirthdayBonus *BirthdayBonus      `json:"birthday_bonus,omitempty"`
}

type SecurityOverride struct {
	LockoutEnabled     *bool   `json:"lockout_enabled,omitempty"`
	MaxFailedAttempts  *int    `json:"max_failed_attempts,omitempty"`
	LockoutMinutes     *int    `json:"lockout_minutes,omitempty"`
	RequireEmailFormat *bool   `json:"require_email_format,omitempty"`
	RequirePhoneFormat *bool   `json:"require_phone_format,omitempty"`
	PhonePattern       *string `json:"phone_pattern,omitempty"`
	LogTransactions    *bool   `json:"log_transactions,omitempty"`
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (c *Config) apply(o Override) {
	assign(&c.PointsPerCurrencyUnit, o.PointsPerCurrencyUnit)
	assign(&c.CurrencyValuePerPoint, o.CurrencyValuePerPoint)
	assign(&c.MinimumRedeemablePoints, o.MinimumRedeemablePoints)
	assign(&c.WelcomeBonusPoints, o.WelcomeBonusPoints)
	for key, tier := range o.Tiers {
		c.Tiers[key] = tier
	}
	if o.Card != nil {
		assign(&c.Card.Prefix, o.Card.Prefix)
		assign(&c.Card.IDLength, o.Card.IDLength)
		assign(&c.Card.StrictValidation, o.Card.StrictValidation)
		assign(&c.Card.ReadTimeMs, o.Card.ReadTimeMs)
		assign(&c.Card.WriteTimeMs, o.Card.WriteTimeMs)
		assign(&c.Card.CapacityBytes, o.Card.CapacityBytes)
	}
	if o.Promotions != nil {
		assign(&c.Promotions.Enabled, o.Promotions.Enabled)
		assign(&c.Promotions.DoublePoints, o.Promotions.DoublePoints)
		assign(&c.Promotions.BirthdayBonus, o.Promotions.BirthdayBonus)
	}
	if o.Security != nil {
		assign(&c.Security.LockoutEnabled, o.Security.LockoutEnabled)
		assign(&c.Security.MaxFailedAttempts, o.Security.MaxFailedAttempts)
		assign(&c.Security.LockoutMinutes, o.Security.LockoutMinutes)
		assign(&c.Security.RequireEmailFormat, o.Security.RequireEmailFormat)
		assign(&c.Security.RequirePhoneFormat, o.Security.RequirePhoneFormat)
		assign(&c.Security.PhonePattern, o.Security.PhonePattern)
		assign(&c.Security.LogTransactions, o.Security.LogTransactions)
	}
}

// ConfigManager loads and persists the loyalty configuration.
type ConfigManager struct {
	kv store.KV
}

func NewConfigManager(kv store.KV) *ConfigManager {
	return &ConfigManager{kv: kv}
}

// Load returns the baseline merged with the persisted override. Storage
// errors fall back to the baseline so the engine always has a full config.
func (m *ConfigManager) Load() Config {
	cfg := DefaultConfig()
	var o Override
	found, err := m.kv.Get(keyConfigOverride, &o)
	if err != nil {
		utils.ErrorLogger.Printf("loading config override: %v", err)
		return cfg
	}
	if found {
		cfg.apply(o)
	}
	return cfg
}

// Save replaces the persisted override wholesale. Merging only happens on
// load.
func (m *ConfigManager) Save(o Override) error {
	return m.kv.Set(keyConfigOverride, o)
}

// ResolveTier returns the highest tier whose threshold the lifetime total
// meets. The lowest tier has threshold 0, so something always matches.
func (c Config) ResolveTier(lifetimePoints int) Tier {
	keys := make([]string, 0, len(c.Tiers))
	for k := range c.Tiers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.Tiers[keys[i]].MinLifetimePoints > c.Tiers[keys[j]].MinLifetimePoints
	})
	for _, k := range keys {
		if lifetimePoints >= c.Tiers[k].MinLifetimePoints {
			return c.Tiers[k]
		}
	}
	if len(keys) > 0 {
		return c.Tiers[keys[len(keys)-1]]
	}
	return Tier{Name: "Bronze", Multiplier: 1.0}
}

// TierMultiplier looks a multiplier up by tier display name, which is what
// customers store.
func (c Config) TierMultiplier(name string) float64 {
	for _, t := range c.Tiers {
		if t.Name == name {
			return t.Multiplier
		}
	}
	return 1.0
}

// IsPromotionActive reports whether an accrual at the given time earns
// double points.
func (c Config) IsPromotionActive(now time.Time) bool {
	if !c.Promotions.Enabled || !c.Promotions.DoublePoints.Active {
		return false
	}
	w := c.Promotions.DoublePoints
	day := int(now.Weekday())
	inWindow := false
	for _, d := range w.Weekdays {
		if d == day {
			inWindow = true
			break
		}
	}
	if !inWindow {
		return false
	}
	h := now.Hour()
	return h >= w.StartHour && h <= w.EndHour
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (c Config) ValidateCardID(id string) bool {
	if !c.Card.StrictValidation {
		return true
	}
	digits := c.Card.IDLength - len(c.Card.Prefix)
	if digits <= 0 {
		return false
	}
	pattern := fmt.Sprintf("^%s[0-9]{%d}$", regexp.QuoteMeta(c.Card.Prefix), digits)
	matched, err := regexp.MatchString(pattern, id)
	return err == nil && matched
}

func (c Config) ValidateEmail(email string) bool {
	if !c.Security.RequireEmailFormat {
		return true
	}
	return emailPattern.MatchString(email)
}

func (c Config) ValidatePhone(phone string) bool {
	if !c.Security.RequirePhoneFormat {
		return true
	}
	re, err := regexp.Compile(c.Security.PhonePattern)
	if err != nil {
		return false
	}
	return re.MatchString(strings.ReplaceAll(phone, " ", ""))
}

// GenerateCardID mints a random id matching the configured format, used
// when programming blank cards.
func (c Config) GenerateCardID() string {
	digits := c.Card.IDLength - len(c.Card.Prefix)
	var b strings.Builder
	b.WriteString(c.Card.Prefix)
	for i := 0; i < digits; i++ {
		b.WriteByte(byte('0' + rand.Intn(10)))
	}
	return b.String()
}

// Summary is the read-only view shown on the configuration screen.
type Summary struct {
	PointsPerCurrencyUnit   float64 `json:"points_per_currency_unit"`
	CurrencyValuePerPoint   float64 `json:"currency_value_per_point"`
	MinimumRedeemablePoints int     `json:"minimum_redeemable_points"`
	WelcomeBonusPoints      int     `json:"welcome_bonus_points"`
	PromotionsEnabled       bool    `json:"promotions_enabled"`
	LockoutEnabled          bool    `json:"lockout_enabled"`
	CardFormat              string  `json:"card_format"`
	ReadTimeMs              int     `json:"read_time_ms"`
}

func (c Config) Summary() Summary {
	return Summary{
		PointsPerCurrencyUnit:   c.PointsPerCurrencyUnit,
		CurrencyValuePerPoint:   c.CurrencyValuePerPoint,
		MinimumRedeemablePoints: c.MinimumRedeemablePoints,
		WelcomeBonusPoints:      c.WelcomeBonusPoints,
		PromotionsEnabled:       c.Promotions.Enabled,
		LockoutEnabled:          c.Security.LockoutEnabled,
		CardFormat:              c.Card.Prefix + strings.Repeat("#", c.Card.IDLength-len(c.Card.Prefix)),
		ReadTimeMs:              c.Card.ReadTimeMs,
	}
}
