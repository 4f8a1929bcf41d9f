package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/restopos/loyalty-pos/events"
	"github.com/restopos/loyalty-pos/models"
	"github.com/restopos/loyalty-pos/orders"
	"github.com/restopos/loyalty-pos/utils"
)

type OrderController struct {
	Orders *orders.Service
}

func NewOrderController(svc *orders.Service) *OrderController {
	return &OrderController{Orders: svc}
}

// GetAllOrders -> list every order with its lines
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	list, err := oc.Orders.List()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", list)
}

// CreateOrder -> waiter takes an order (status='pending')
func (oc *OrderController) CreateOrder(c *gin.Context) {
	type lineReq struct {
		Product  string `json:"product" binding:"required"`
		Quantity int    `json:"quantity" binding:"required,min=1"`
	}
	type reqBody struct {
		Table      string    `json:"table"`
		PartySize  int       `json:"party_size"`
		DishLines  []lineReq `json:"dish_lines"`
		DrinkLines []lineReq `json:"drink_lines"`
	}

	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var dishes []models.DishLine
	for _, l := range body.DishLines {
		dishes = append(dishes, models.DishLine{Product: l.Product, Quantity: l.Quantity})
	}
	var drinks []models.DrinkLine
	for _, l := range body.DrinkLines {
		drinks = append(drinks, models.DrinkLine{Product: l.Product, Quantity: l.Quantity})
	}

	order, err := oc.Orders.Create(body.Table, body.PartySize, dishes, drinks)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrderByID -> detail of one order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Get(uint(id))
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// AdvanceStatus -> staff set the next lifecycle state directly (kitchen
// starts/finishes, waiter hands over, cashier takes payment). An unknown
// order id is a no-op.
func (oc *OrderController) AdvanceStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.AdvanceState(uint(id), req.Status)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}
	if order == nil {
		utils.RespondJSON(c, http.StatusOK, "Order not found, nothing changed", nil)
		return
	}

	events.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// MarkDishPrepared -> kitchen marks one unit of a dish line done
func (oc *OrderController) MarkDishPrepared(c *gin.Context) {
	oc.markUnit(c, oc.Orders.MarkDishPrepared, "Dish unit prepared")
}

// MarkDrinkDelivered -> bar marks one unit of a drink line delivered
func (oc *OrderController) MarkDrinkDelivered(c *gin.Context) {
	oc.markUnit(c, oc.Orders.MarkDrinkDelivered, "Drink unit delivered")
}

func (oc *OrderController) markUnit(c *gin.Context, mark func(uint, int, int) (*models.Order, error), message string) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	lineIndex, err := strconv.Atoi(c.Param("line"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	unitIndex, err := strconv.Atoi(c.Param("unit"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := mark(uint(id), lineIndex, unitIndex)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	events.BroadcastOrderUpdate(*order)
	if order.Status == models.OrderReady {
		events.BroadcastStaffNotification("Order #" + strconv.Itoa(int(order.ID)) + " is ready to serve")
	}
	utils.RespondJSON(c, http.StatusOK, message, order)
}

// ResetOrders -> admin wipes the order board
func (oc *OrderController) ResetOrders(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	if err := oc.Orders.Reset(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders reset", nil)
}
