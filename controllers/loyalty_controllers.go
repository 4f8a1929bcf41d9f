package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/restopos/loyalty-pos/events"
	"github.com/restopos/loyalty-pos/loyalty"
	"github.com/restopos/loyalty-pos/utils"
)

type LoyaltyController struct {
	Engine *loyalty.Engine
}

func NewLoyaltyController(engine *loyalty.Engine) *LoyaltyController {
	return &LoyaltyController{Engine: engine}
}

// GetAllCustomers -> list loyalty accounts
func (lc *LoyaltyController) GetAllCustomers(c *gin.Context) {
	list, err := lc.Engine.ListCustomers()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", list)
}

// RegisterCustomer -> enrol a new card
func (lc *LoyaltyController) RegisterCustomer(c *gin.Context) {
	var req struct {
		CardID string `json:"card_id" binding:"required"`
		Name   string `json:"name" binding:"required"`
		Email  string `json:"email" binding:"required"`
		Phone  string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer, err := lc.Engine.Register(req.CardID, req.Name, req.Email, req.Phone)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	events.BroadcastLoyaltyUpdate(customer)
	utils.RespondJSON(c, http.StatusCreated, "Customer registered", customer)
}

// LookupCard -> resolve a scanned card to its account. Locked cards fail
// before any search; unknown cards count against the lockout threshold.
func (lc *LoyaltyController) LookupCard(c *gin.Context) {
	customer, err := lc.Engine.Lookup(c.Param("card_id"))
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer found", customer)
}

// Accrue -> cashier credits points for a purchase
func (lc *LoyaltyController) Accrue(c *gin.Context) {
	var req struct {
		CardID      string  `json:"card_id" binding:"required"`
		Amount      float64 `json:"amount" binding:"required,gt=0"`
		Description string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := lc.Engine.Accrue(req.CardID, req.Amount, req.Description)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	events.BroadcastLoyaltyUpdate(result)
	utils.RespondJSON(c, http.StatusOK, "Points accrued", result)
}

// Redeem -> cashier exchanges points for a discount
func (lc *LoyaltyController) Redeem(c *gin.Context) {
	var req struct {
		CardID string `json:"card_id" binding:"required"`
		Points int    `json:"points" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := lc.Engine.Redeem(req.CardID, req.Points)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	events.BroadcastLoyaltyUpdate(result)
	utils.RespondJSON(c, http.StatusOK, "Points redeemed", result)
}

// UpdateCustomer -> edit contact details or deactivate
func (lc *LoyaltyController) UpdateCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("customer_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Name   string `json:"name" binding:"required"`
		Email  string `json:"email" binding:"required"`
		Phone  string `json:"phone"`
		Active *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer, err := lc.Engine.UpdateCustomer(uint(id), req.Name, req.Email, req.Phone, req.Active)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	events.BroadcastLoyaltyUpdate(customer)
	utils.RespondJSON(c, http.StatusOK, "Customer updated", customer)
}

// GetCustomerTransactions -> point history for one account, newest first
func (lc *LoyaltyController) GetCustomerTransactions(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("customer_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := lc.Engine.TransactionsByCustomer(uint(id), limit)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer transactions", entries)
}

// GetAllTransactions -> recent ledger entries across all accounts
func (lc *LoyaltyController) GetAllTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := lc.Engine.AllTransactions(limit)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Transactions", entries)
}
