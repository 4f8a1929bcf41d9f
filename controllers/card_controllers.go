package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/restopos/loyalty-pos/events"
	"github.com/restopos/loyalty-pos/loyalty"
	"github.com/restopos/loyalty-pos/models"
	"github.com/restopos/loyalty-pos/utils"
)

type CardController struct {
	Cards  *loyalty.CardStore
	Engine *loyalty.Engine
}

func NewCardController(cards *loyalty.CardStore, engine *loyalty.Engine) *CardController {
	return &CardController{Cards: cards, Engine: engine}
}

// ReadCard -> read the simulated tag. An unwritten card is reported as
// empty, not as an error.
func (cc *CardController) ReadCard(c *gin.Context) {
	result, err := cc.Cards.Read(c.Param("card_id"))
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}
	if result.Empty {
		utils.RespondJSON(c, http.StatusOK, "Card is empty, ready to program", result)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Card read", result)
}

// WriteCard -> full overwrite of the tag contents
func (cc *CardController) WriteCard(c *gin.Context) {
	var data models.CardData
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := cc.Cards.Write(c.Param("card_id"), data)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	events.BroadcastCardUpdate(result)
	utils.RespondJSON(c, http.StatusOK, "Card written", result)
}

// InitializeCard -> program a blank tag from a registered account
func (cc *CardController) InitializeCard(c *gin.Context) {
	cardID := c.Param("card_id")

	customer, err := cc.Engine.Lookup(cardID)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	result, err := cc.Cards.Initialize(cardID, *customer)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	events.BroadcastCardUpdate(result)
	utils.RespondJSON(c, http.StatusOK, "Card initialized", result)
}

// UpdateCardPoints -> fast path after an accrual/redemption, rewrites only
// points and tier
func (cc *CardController) UpdateCardPoints(c *gin.Context) {
	var req struct {
		Points int    `json:"points"`
		Tier   string `json:"tier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := cc.Cards.UpdatePoints(c.Param("card_id"), req.Points, req.Tier)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	events.BroadcastCardUpdate(result)
	utils.RespondJSON(c, http.StatusOK, "Card points updated", result)
}

// EraseCard -> idempotent wipe
func (cc *CardController) EraseCard(c *gin.Context) {
	if err := cc.Cards.Erase(c.Param("card_id")); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Card erased", gin.H{"card_id": c.Param("card_id")})
}

// GetCardTechInfo -> memory usage for the diagnostics screen
func (cc *CardController) GetCardTechInfo(c *gin.Context) {
	info := cc.Cards.TechInfo(c.Param("card_id"))
	utils.RespondJSON(c, http.StatusOK, "Card technical info", info)
}

// GetCardStatus -> classify a card by recency of use
func (cc *CardController) GetCardStatus(c *gin.Context) {
	report, err := cc.Cards.CheckStatus(c.Param("card_id"))
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Card status", report)
}
