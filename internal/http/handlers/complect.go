package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/arm-gateway/internal/http/response"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
	"github.com/yungbote/arm-gateway/internal/services"
)

type ComplectHandler struct {
	log       *logger.Logger
	complects services.ComplectService
}

func NewComplectHandler(log *logger.Logger, complects services.ComplectService) *ComplectHandler {
	return &ComplectHandler{log: log.With("handler", "ComplectHandler"), complects: complects}
}

type changeComplectRequest struct {
	Action    string    `json:"action"`
	ProfileID uuid.UUID `json:"profile_id"`
}

// POST /api/complects
func (h *ComplectHandler) Create(c *gin.Context) {
	write(c, h.log, http.StatusCreated, h.complects.Create, h.complects.CreateBatch)
}

// PATCH /api/complects
func (h *ComplectHandler) Update(c *gin.Context) {
	write(c, h.log, http.StatusOK, h.complects.Update, h.complects.UpdateBatch)
}

// GET /api/complects/:id
func (h *ComplectHandler) Fetch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.complects.Fetch(requestDB(c), id)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/complects
func (h *ComplectHandler) List(c *gin.Context) {
	paging, err := pagingQuery(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	res, err := h.complects.List(requestDB(c), paging)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/complects/:id/profiles {"action": "add"|"remove", "profile_id": ...}
func (h *ComplectHandler) Change(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req changeComplectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	out, err := h.complects.Change(requestDB(c), id, req.Action, req.ProfileID)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /api/complects/:id, DELETE /api/complects {"ids": [...]}
func (h *ComplectHandler) Remove(c *gin.Context) {
	remove(c, h.log, h.complects.Remove)
}
