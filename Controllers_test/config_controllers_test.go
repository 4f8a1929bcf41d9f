package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/restopos/loyalty-pos/controllers"
	"github.com/restopos/loyalty-pos/loyalty"
	"github.com/restopos/loyalty-pos/store"
	"github.com/restopos/loyalty-pos/utils"
)

func setupConfigRouter(role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	cfgm := loyalty.NewConfigManager(store.NewMemory())
	ctrl := controllers.NewConfigController(cfgm)

	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Set("role", role)
	})
	router.GET("/config", ctrl.GetConfig)
	router.GET("/config/summary", ctrl.GetConfigSummary)
	router.PUT("/config", ctrl.SaveConfig)
	return router
}

func TestGetConfigBaseline(t *testing.T) {
	router := setupConfigRouter("cashier")

	w, resp := doJSON(t, router, "GET", "/config", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(100), data["minimum_redeemable_points"])
	assert.Equal(t, float64(50), data["welcome_bonus_points"])
}

func TestSaveConfigMergesOverBaseline(t *testing.T) {
	router := setupConfigRouter("admin")

	w, _ := doJSON(t, router, "PUT", "/config", map[string]interface{}{
		"minimum_redeemable_points": 250,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := doJSON(t, router, "GET", "/config", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(250), data["minimum_redeemable_points"])
	// untouched fields stay at baseline
	assert.Equal(t, float64(50), data["welcome_bonus_points"])
}

func TestSaveConfigRequiresAdmin(t *testing.T) {
	router := setupConfigRouter("waiter")

	w, _ := doJSON(t, router, "PUT", "/config", map[string]interface{}{
		"minimum_redeemable_points": 250,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestConfigSummary(t *testing.T) {
	router := setupConfigRouter("cashier")

	w, resp := doJSON(t, router, "GET", "/config/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "NFC############", data["card_format"])
}
