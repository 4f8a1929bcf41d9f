package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/restopos/loyalty-pos/loyalty"
	"github.com/restopos/loyalty-pos/models"
	"github.com/restopos/loyalty-pos/orders"
	"github.com/restopos/loyalty-pos/utils"
)

type AdminController struct {
	Engine *loyalty.Engine
	Orders *orders.Service
}

func NewAdminController(engine *loyalty.Engine, svc *orders.Service) *AdminController {
	return &AdminController{Engine: engine, Orders: svc}
}

// GetDashboardStats -> loyalty program totals plus the order board broken
// down by lifecycle state
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	loyaltyStats, err := ac.Engine.Stats()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	orderList, err := ac.Orders.List()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ordersByStatus := map[string]int{}
	open := 0
	for _, o := range orderList {
		ordersByStatus[o.Status]++
		if o.Status != models.OrderPaid {
			open++
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"loyalty":          loyaltyStats,
		"orders_total":     len(orderList),
		"orders_open":      open,
		"orders_by_status": ordersByStatus,
	})
}
