package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/arm-gateway/internal/http/response"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
	"github.com/yungbote/arm-gateway/internal/services"
)

type DictionaryHandler struct {
	log          *logger.Logger
	dictionaries services.DictionaryService
}

func NewDictionaryHandler(log *logger.Logger, dictionaries services.DictionaryService) *DictionaryHandler {
	return &DictionaryHandler{log: log.With("handler", "DictionaryHandler"), dictionaries: dictionaries}
}

// POST /api/dictionaries
func (h *DictionaryHandler) Create(c *gin.Context) {
	write(c, h.log, http.StatusCreated, h.dictionaries.Create, h.dictionaries.CreateBatch)
}

// PATCH /api/dictionaries
func (h *DictionaryHandler) Update(c *gin.Context) {
	write(c, h.log, http.StatusOK, h.dictionaries.Update, h.dictionaries.UpdateBatch)
}

// GET /api/dictionaries/:id?_process=
func (h *DictionaryHandler) Fetch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.dictionaries.Fetch(requestDB(c), id, flagQuery(c, "_process"))
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, d)
}

// GET /api/dictionaries?id=&profile_id=&code=&kind=&common=&_with_content=&_process=
func (h *DictionaryHandler) List(c *gin.Context) {
	paging, err := pagingQuery(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	params := services.DictionaryListParams{
		Paging:      paging,
		Code:        stringQuery(c, "code"),
		Kind:        stringQuery(c, "kind"),
		WithContent: flagQuery(c, "_with_content"),
		Process:     flagQuery(c, "_process"),
	}
	if params.IDs, err = uuidsQuery(c, "id"); err != nil {
		response.BadRequest(c, err)
		return
	}
	if params.ProfileID, err = uuidQuery(c, "profile_id"); err != nil {
		response.BadRequest(c, err)
		return
	}
	if params.Common, err = boolQuery(c, "common"); err != nil {
		response.BadRequest(c, err)
		return
	}
	res, err := h.dictionaries.List(requestDB(c), params)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/dictionaries/:id/versions
func (h *DictionaryHandler) ListVersions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	paging, err := pagingQuery(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	res, err := h.dictionaries.ListVersions(requestDB(c), id, paging)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// DELETE /api/dictionaries/:id, DELETE /api/dictionaries {"ids": [...]}
func (h *DictionaryHandler) Remove(c *gin.Context) {
	remove(c, h.log, h.dictionaries.Remove)
}
