package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/restopos/loyalty-pos/controllers"
	"github.com/restopos/loyalty-pos/orders"
	"github.com/restopos/loyalty-pos/store"
	"github.com/restopos/loyalty-pos/utils"
)

func setupOrderRouter(role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	svc := orders.NewService(store.NewMemory())
	ctrl := controllers.NewOrderController(svc)

	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Set("role", role)
	})
	router.GET("/orders", ctrl.GetAllOrders)
	router.POST("/orders", ctrl.CreateOrder)
	router.GET("/orders/:order_id", ctrl.GetOrderByID)
	router.PATCH("/orders/:order_id/status", ctrl.AdvanceStatus)
	router.PATCH("/orders/:order_id/dishes/:line/:unit", ctrl.MarkDishPrepared)
	router.PATCH("/orders/:order_id/drinks/:line/:unit", ctrl.MarkDrinkDelivered)
	router.DELETE("/orders", ctrl.ResetOrders)
	return router
}

func createTestOrder(t *testing.T, router *gin.Engine) {
	w, resp := doJSON(t, router, "POST", "/orders", map[string]interface{}{
		"table":      "5",
		"party_size": 2,
		"dish_lines": []map[string]interface{}{
			{"product": "Paella", "quantity": 2},
		},
		"drink_lines": []map[string]interface{}{
			{"product": "Sangria", "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Order created", resp["message"])
}

func TestCreateAndGetOrder(t *testing.T) {
	router := setupOrderRouter("waiter")
	createTestOrder(t, router)

	w, resp := doJSON(t, router, "GET", "/orders/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "5", data["table"])
}

func TestMarkingUnitsFlipsOrderToReady(t *testing.T) {
	router := setupOrderRouter("kitchen")
	createTestOrder(t, router)

	w, resp := doJSON(t, router, "PATCH", "/orders/1/dishes/0/0", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", resp["data"].(map[string]interface{})["status"])

	w, _ = doJSON(t, router, "PATCH", "/orders/1/dishes/0/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, router, "PATCH", "/orders/1/drinks/0/0", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", resp["data"].(map[string]interface{})["status"])
}

func TestMarkUnitBadIndex(t *testing.T) {
	router := setupOrderRouter("kitchen")
	createTestOrder(t, router)

	w, _ := doJSON(t, router, "PATCH", "/orders/1/dishes/7/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdvanceStatusUnknownOrderIsNoOp(t *testing.T) {
	router := setupOrderRouter("cashier")

	w, resp := doJSON(t, router, "PATCH", "/orders/42/status", map[string]interface{}{
		"status": "paid",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Order not found, nothing changed", resp["message"])
	assert.Nil(t, resp["data"])
}

func TestAdvanceStatusRejectsUnknownState(t *testing.T) {
	router := setupOrderRouter("cashier")
	createTestOrder(t, router)

	w, _ := doJSON(t, router, "PATCH", "/orders/1/status", map[string]interface{}{
		"status": "teleported",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetOrdersRequiresAdmin(t *testing.T) {
	router := setupOrderRouter("waiter")
	createTestOrder(t, router)

	w, _ := doJSON(t, router, "DELETE", "/orders", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := setupOrderRouter("admin")
	createTestOrder(t, admin)
	w, _ = doJSON(t, admin, "DELETE", "/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := doJSON(t, admin, "GET", "/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, resp["data"])
}
