package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/arm-gateway/internal/http/response"
	"github.com/yungbote/arm-gateway/internal/services"
)

type SystemHandler struct {
	system services.SystemService
}

func NewSystemHandler(system services.SystemService) *SystemHandler {
	return &SystemHandler{system: system}
}

// GET /api/system/version
func (h *SystemHandler) Version(c *gin.Context) {
	response.RespondOK(c, h.system.Version())
}
