package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/arm-gateway/internal/http/response"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
	"github.com/yungbote/arm-gateway/internal/services"
)

type TemplateHandler struct {
	log       *logger.Logger
	templates services.TemplateService
}

func NewTemplateHandler(log *logger.Logger, templates services.TemplateService) *TemplateHandler {
	return &TemplateHandler{log: log.With("handler", "TemplateHandler"), templates: templates}
}

// POST /api/templates
// Body fields position, position_before ("first" or an id) and
// position_after ("last" or an id) place the template in its suite.
func (h *TemplateHandler) Create(c *gin.Context) {
	write(c, h.log, http.StatusCreated, h.templates.Create, h.templates.CreateBatch)
}

// PATCH /api/templates
func (h *TemplateHandler) Update(c *gin.Context) {
	write(c, h.log, http.StatusOK, h.templates.Update, h.templates.UpdateBatch)
}

// GET /api/templates/:id?_process=
func (h *TemplateHandler) Fetch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.templates.Fetch(requestDB(c), id, flagQuery(c, "_process"))
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, t)
}

// GET /api/templates?suite_id=&profile_id=&id=&is_enabled=&_process=
func (h *TemplateHandler) List(c *gin.Context) {
	paging, err := pagingQuery(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	params := services.TemplateListParams{Paging: paging, Process: flagQuery(c, "_process")}
	if params.SuiteID, err = uuidQuery(c, "suite_id"); err != nil {
		response.BadRequest(c, err)
		return
	}
	if params.ProfileIDs, err = uuidsQuery(c, "profile_id"); err != nil {
		response.BadRequest(c, err)
		return
	}
	if params.IDs, err = uuidsQuery(c, "id"); err != nil {
		response.BadRequest(c, err)
		return
	}
	if params.IsEnabled, err = boolQuery(c, "is_enabled"); err != nil {
		response.BadRequest(c, err)
		return
	}
	res, err := h.templates.List(requestDB(c), params)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// DELETE /api/templates/:id, DELETE /api/templates {"ids": [...]}
func (h *TemplateHandler) Remove(c *gin.Context) {
	remove(c, h.log, h.templates.Remove)
}
