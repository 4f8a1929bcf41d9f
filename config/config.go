package config

import (
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/restopos/loyalty-pos/utils"
)

// InitDB connects to MySQL when DATABASE_DSN is set, otherwise falls back
// to a local sqlite file so the app runs without any infrastructure.
func InitDB() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn != "" {
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		utils.InfoLogger.Println("Connected to MySQL database")
		return db, nil
	}

	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "loyalty_pos.db"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Connected to sqlite database at %s", path)
	return db, nil
}
