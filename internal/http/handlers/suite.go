package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/arm-gateway/internal/http/response"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
	"github.com/yungbote/arm-gateway/internal/services"
)

type SuiteHandler struct {
	log    *logger.Logger
	suites services.SuiteService
}

func NewSuiteHandler(log *logger.Logger, suites services.SuiteService) *SuiteHandler {
	return &SuiteHandler{log: log.With("handler", "SuiteHandler"), suites: suites}
}

// POST /api/suites
func (h *SuiteHandler) Create(c *gin.Context) {
	write(c, h.log, http.StatusCreated, h.suites.Create, h.suites.CreateBatch)
}

// PATCH /api/suites
func (h *SuiteHandler) Update(c *gin.Context) {
	write(c, h.log, http.StatusOK, h.suites.Update, h.suites.UpdateBatch)
}

// GET /api/suites/:id
func (h *SuiteHandler) Fetch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.suites.Fetch(requestDB(c), id)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, s)
}

// GET /api/suites?profile_id=&is_enabled=
func (h *SuiteHandler) List(c *gin.Context) {
	paging, err := pagingQuery(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	profileIDs, err := uuidsQuery(c, "profile_id")
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	enabled, err := boolQuery(c, "is_enabled")
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	res, err := h.suites.List(requestDB(c), services.SuiteListParams{
		Paging:     paging,
		ProfileIDs: profileIDs,
		IsEnabled:  enabled,
	})
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// DELETE /api/suites/:id, DELETE /api/suites {"ids": [...]}
func (h *SuiteHandler) Remove(c *gin.Context) {
	remove(c, h.log, h.suites.Remove)
}
