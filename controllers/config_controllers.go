package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/restopos/loyalty-pos/events"
	"github.com/restopos/loyalty-pos/loyalty"
	"github.com/restopos/loyalty-pos/utils"
)

type ConfigController struct {
	Config *loyalty.ConfigManager
}

func NewConfigController(cfgm *loyalty.ConfigManager) *ConfigController {
	return &ConfigController{Config: cfgm}
}

// GetConfig -> effective configuration (baseline merged with override)
func (cc *ConfigController) GetConfig(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Loyalty configuration", cc.Config.Load())
}

// GetConfigSummary -> the condensed view for the settings screen
func (cc *ConfigController) GetConfigSummary(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Configuration summary", cc.Config.Load().Summary())
}

// SaveConfig -> admin replaces the persisted override wholesale. Fields
// left out of the body keep their baseline values on the next load.
func (cc *ConfigController) SaveConfig(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var override loyalty.Override
	if err := c.ShouldBindJSON(&override); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := cc.Config.Save(override); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastConfigUpdate()
	utils.RespondJSON(c, http.StatusOK, "Configuration saved", cc.Config.Load())
}
