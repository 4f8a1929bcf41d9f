package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/restopos/loyalty-pos/config"
	"github.com/restopos/loyalty-pos/loyalty"
	"github.com/restopos/loyalty-pos/models"
	"github.com/restopos/loyalty-pos/orders"
	"github.com/restopos/loyalty-pos/router"
	"github.com/restopos/loyalty-pos/store"
	"github.com/restopos/loyalty-pos/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &store.Record{}); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}

	kv := store.NewGorm(db)
	cfgm := loyalty.NewConfigManager(kv)
	guard := loyalty.NewGuard(kv, cfgm)
	engine := loyalty.NewEngine(kv, cfgm, guard)
	cards := loyalty.NewCardStore(cfgm)
	orderSvc := orders.NewService(kv)

	r := router.SetupRouter(db, cfgm, engine, cards, orderSvc)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	utils.InfoLogger.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatalf("Failed to start server: %v", err)
	}
}
