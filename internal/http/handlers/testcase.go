package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/arm-gateway/internal/http/response"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
	"github.com/yungbote/arm-gateway/internal/services"
)

type TestcaseHandler struct {
	log       *logger.Logger
	testcases services.TestcaseService
}

func NewTestcaseHandler(log *logger.Logger, testcases services.TestcaseService) *TestcaseHandler {
	return &TestcaseHandler{log: log.With("handler", "TestcaseHandler"), testcases: testcases}
}

// POST /api/testcases
func (h *TestcaseHandler) Create(c *gin.Context) {
	write(c, h.log, http.StatusCreated, h.testcases.Create, h.testcases.CreateBatch)
}

// PATCH /api/testcases
// "profile_id": null detaches the testcase; omitting the key keeps it.
func (h *TestcaseHandler) Update(c *gin.Context) {
	write(c, h.log, http.StatusOK, h.testcases.Update, h.testcases.UpdateBatch)
}

// GET /api/testcases/:id
func (h *TestcaseHandler) Fetch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tc, err := h.testcases.Fetch(requestDB(c), id)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, tc)
}

// GET /api/testcases?profile_id=&is_common=
func (h *TestcaseHandler) List(c *gin.Context) {
	paging, err := pagingQuery(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	params := services.TestcaseListParams{Paging: paging}
	if params.ProfileIDs, err = uuidsQuery(c, "profile_id"); err != nil {
		response.BadRequest(c, err)
		return
	}
	if params.IsCommon, err = boolQuery(c, "is_common"); err != nil {
		response.BadRequest(c, err)
		return
	}
	res, err := h.testcases.List(requestDB(c), params)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// DELETE /api/testcases/:id, DELETE /api/testcases {"ids": [...]}
func (h *TestcaseHandler) Remove(c *gin.Context) {
	remove(c, h.log, h.testcases.Remove)
}
