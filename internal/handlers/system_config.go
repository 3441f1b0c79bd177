package handlers

import (
	"github.com/BINU242/refref/internal/services"
	"github.com/BINU242/refref/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(db *gorm.DB) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService: services.NewSystemConfigService(db),
	}
}

// GetEmailSettings returns the SMTP settings with the password elided
// GET /api/system/email
func (h *SystemConfigHandler) GetEmailSettings(c *gin.Context) {
	response.Success(c, h.configService.GetEmailSettings())
}

// UpdateEmailSettings patches the SMTP settings
// PUT /api/system/email
func (h *SystemConfigHandler) UpdateEmailSettings(c *gin.Context) {
	var req services.UpdateEmailSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.UpdateEmailSettings(&req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.configService.GetEmailSettings())
}
