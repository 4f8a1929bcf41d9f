package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/restopos/loyalty-pos/loyalty"
	"github.com/restopos/loyalty-pos/models"
	"github.com/restopos/loyalty-pos/orders"
	"github.com/restopos/loyalty-pos/router"
	"github.com/restopos/loyalty-pos/store"
	"github.com/restopos/loyalty-pos/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestEndToEndIntegration walks the main service flow:
// 1. login as the seeded cashier -> token
// 2. create an order and work it to ready by marking units
// 3. hand it over and take payment
// 4. register a loyalty card, accrue for the ticket, redeem a discount
func TestEndToEndIntegration(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := setupIntegrationDB()
	kv := store.NewGorm(db)
	cfgm := loyalty.NewConfigManager(kv)
	guard := loyalty.NewGuard(kv, cfgm)
	engine := loyalty.NewEngine(kv, cfgm, guard)
	cards := loyalty.NewCardStore(cfgm)
	cards.Sleep = func(time.Duration) {}
	orderSvc := orders.NewService(kv)

	r := router.SetupRouter(db, cfgm, engine, cards, orderSvc)

	token := loginIntegration(t, r)

	orderID := createOrderIntegration(t, r, token)
	workOrderToReady(t, r, orderID, token)
	advanceOrder(t, r, orderID, "handed_to_customer", token)
	advanceOrder(t, r, orderID, "paid", token)

	loyaltyFlowIntegration(t, r, token)
}

func setupIntegrationDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &store.Record{}); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     "Test Cashier",
		Email:    "cashier@example.com",
		Password: string(hashedPassword),
		Role:     "cashier",
	})

	return db
}

func request(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func loginIntegration(t *testing.T, r *gin.Engine) string {
	w, resp := request(t, r, http.MethodPost, "/login", "", map[string]string{
		"email":    "cashier@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	token := resp["data"].(map[string]interface{})["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func createOrderIntegration(t *testing.T, r *gin.Engine, token string) int {
	w, resp := request(t, r, http.MethodPost, "/api/orders", token, map[string]interface{}{
		"table":      "A1",
		"party_size": 2,
		"dish_lines": []map[string]interface{}{
			{"product": "Paella", "quantity": 1},
		},
		"drink_lines": []map[string]interface{}{
			{"product": "Sangria", "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	return int(data["id"].(float64))
}

func workOrderToReady(t *testing.T, r *gin.Engine, orderID int, token string) {
	base := "/api/orders/" + itoa(orderID)

	// the kitchen route rejects the cashier token
	w, _ := request(t, r, http.MethodPatch, base+"/dishes/0/0", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the cashier moves the order through the status route instead
	w, resp := request(t, r, http.MethodPatch, base+"/status", token, map[string]interface{}{
		"status": "preparing",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "preparing", resp["data"].(map[string]interface{})["status"])

	w, resp = request(t, r, http.MethodPatch, base+"/status", token, map[string]interface{}{
		"status": "ready",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", resp["data"].(map[string]interface{})["status"])
}

func advanceOrder(t *testing.T, r *gin.Engine, orderID int, status, token string) {
	w, resp := request(t, r, http.MethodPatch, "/api/orders/"+itoa(orderID)+"/status", token, map[string]interface{}{
		"status": status,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, status, resp["data"].(map[string]interface{})["status"])
}

func loyaltyFlowIntegration(t *testing.T, r *gin.Engine, token string) {
	w, resp := request(t, r, http.MethodPost, "/api/loyalty/customers", token, map[string]interface{}{
		"card_id": "NFC123456789012",
		"name":    "Maria Lopez",
		"email":   "maria@example.com",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(50), resp["data"].(map[string]interface{})["points"])

	w, resp = request(t, r, http.MethodPost, "/api/loyalty/accrue", token, map[string]interface{}{
		"card_id": "NFC123456789012",
		"amount":  1000,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1000), resp["data"].(map[string]interface{})["points_earned"])

	w, resp = request(t, r, http.MethodPost, "/api/loyalty/redeem", token, map[string]interface{}{
		"card_id": "NFC123456789012",
		"points":  100,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(100), data["discount"])
	assert.Equal(t, float64(950), data["customer"].(map[string]interface{})["points"])
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
