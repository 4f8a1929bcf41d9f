package store

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one persisted collection blob.
type Record struct {
	Key       string `gorm:"primaryKey;type:varchar(64)"`
	Value     string `gorm:"type:longtext;not null"`
	UpdatedAt time.Time
}

// Gorm stores collections in a single key/value table, so the same code
// runs against MySQL (the shared restaurant database) or a local SQLite
// file when offline.
type Gorm struct {
	DB *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{DB: db}
}

func (g *Gorm) Get(key string, dest interface{}) (bool, error) {
	var rec Record
	if err := g.DB.First(&rec, "`key` = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(rec.Value), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (g *Gorm) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	rec := Record{Key: key, Value: string(raw), UpdatedAt: time.Now()}
	return g.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}

func (g *Gorm) Delete(key string) error {
	return g.DB.Delete(&Record{}, "`key` = ?", key).Error
}
