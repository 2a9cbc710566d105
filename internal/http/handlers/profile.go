package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/arm-gateway/internal/http/response"
	"github.com/yungbote/arm-gateway/internal/platform/ctxutil"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
	"github.com/yungbote/arm-gateway/internal/services"
)

type ProfileHandler struct {
	log      *logger.Logger
	profiles services.ProfileService
}

func NewProfileHandler(log *logger.Logger, profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{log: log.With("handler", "ProfileHandler"), profiles: profiles}
}

// POST /api/profiles
func (h *ProfileHandler) Create(c *gin.Context) {
	write(c, h.log, http.StatusCreated, h.profiles.Create, h.profiles.CreateBatch)
}

// PATCH /api/profiles
func (h *ProfileHandler) Update(c *gin.Context) {
	write(c, h.log, http.StatusOK, h.profiles.Update, h.profiles.UpdateBatch)
}

// GET /api/profiles/:id
func (h *ProfileHandler) Fetch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.profiles.Fetch(requestDB(c), id)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, p)
}

// GET /api/profiles?account_id=&full_list=
// account_id defaults to the caller's account.
func (h *ProfileHandler) List(c *gin.Context) {
	paging, err := pagingQuery(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	accountID, err := uuidQuery(c, "account_id")
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	if accountID == nil {
		accountID = ctxutil.GetPrincipal(c.Request.Context()).AccountID
	}
	res, err := h.profiles.List(requestDB(c), services.ProfileListParams{
		Paging:    paging,
		AccountID: accountID,
		FullList:  flagQuery(c, "full_list"),
	})
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// DELETE /api/profiles/:id, DELETE /api/profiles {"ids": [...]}
func (h *ProfileHandler) Remove(c *gin.Context) {
	remove(c, h.log, h.profiles.Remove)
}
