package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/arm-gateway/internal/http/response"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
	"github.com/yungbote/arm-gateway/internal/services"
)

type AccessHandler struct {
	log    *logger.Logger
	access services.AccessService
}

func NewAccessHandler(log *logger.Logger, access services.AccessService) *AccessHandler {
	return &AccessHandler{log: log.With("handler", "AccessHandler"), access: access}
}

type flagsRequest struct {
	Flags map[string]any `json:"flags"`
}

// POST /api/access/users/:user_id/profiles [{"profile_id", "permissions"}]
func (h *AccessHandler) CreateUserGrants(c *gin.Context) {
	h.writeUserGrants(c, http.StatusCreated, h.access.CreateUserGrants)
}

// PATCH /api/access/users/:user_id/profiles
func (h *AccessHandler) UpdateUserGrants(c *gin.Context) {
	h.writeUserGrants(c, http.StatusOK, h.access.UpdateUserGrants)
}

func (h *AccessHandler) writeUserGrants(c *gin.Context, status int, fn func(dbctx.Context, uuid.UUID, []services.ProfilePermissions) (*services.UserGrantsResult, error)) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	var items []services.ProfilePermissions
	if err := c.ShouldBindJSON(&items); err != nil {
		response.BadRequest(c, err)
		return
	}
	if len(items) == 0 {
		response.BadRequest(c, errors.New("no grants given"))
		return
	}
	out, err := fn(requestDB(c), userID, items)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(status, out)
}

// GET /api/access/users/:user_id/grants?profile_id=
func (h *AccessHandler) FetchUserGrants(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	profileIDs, err := uuidsQuery(c, "profile_id")
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	out, err := h.access.FetchUserGrants(requestDB(c), userID, profileIDs)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"items": out})
}

// GET /api/access/users/:user_id/profiles
func (h *AccessHandler) ListUserProfiles(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	paging, err := pagingQuery(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	res, err := h.access.ListUserProfiles(requestDB(c), userID, paging)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// DELETE /api/access/users/:user_id/profiles {"ids": [...]}
func (h *AccessHandler) RemoveUserGrants(c *gin.Context) {
	h.removeFor(c, "user_id", h.access.RemoveUserGrants)
}

// POST /api/access/accounts/:account_id/profiles {"ids": [...]}
func (h *AccessHandler) CreateAccountProfiles(c *gin.Context) {
	h.grantFor(c, h.access.CreateAccountProfiles)
}

// GET /api/access/accounts/:account_id/profiles/:profile_id
func (h *AccessHandler) FetchAccountProfile(c *gin.Context) {
	accountID, ok := pathID(c, "account_id")
	if !ok {
		return
	}
	profileID, ok := pathID(c, "profile_id")
	if !ok {
		return
	}
	g, err := h.access.FetchAccountProfile(requestDB(c), accountID, profileID)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, g)
}

// GET /api/access/accounts/:account_id/profiles
func (h *AccessHandler) ListAccountProfiles(c *gin.Context) {
	h.listFor(c, h.access.ListAccountProfiles)
}

// DELETE /api/access/accounts/:account_id/profiles {"ids": [...]}
func (h *AccessHandler) RemoveAccountProfiles(c *gin.Context) {
	h.removeFor(c, "account_id", h.access.RemoveAccountProfiles)
}

// POST /api/access/accounts/:account_id/complects {"ids": [...]}
func (h *AccessHandler) CreateAccountComplects(c *gin.Context) {
	h.grantFor(c, h.access.CreateAccountComplects)
}

// GET /api/access/accounts/:account_id/complects/:complect_id
func (h *AccessHandler) FetchAccountComplect(c *gin.Context) {
	accountID, ok := pathID(c, "account_id")
	if !ok {
		return
	}
	complectID, ok := pathID(c, "complect_id")
	if !ok {
		return
	}
	g, err := h.access.FetchAccountComplect(requestDB(c), accountID, complectID)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, g)
}

// GET /api/access/accounts/:account_id/complects
func (h *AccessHandler) ListAccountComplects(c *gin.Context) {
	h.listFor(c, h.access.ListAccountComplects)
}

// DELETE /api/access/accounts/:account_id/complects {"ids": [...]}
func (h *AccessHandler) RemoveAccountComplects(c *gin.Context) {
	h.removeFor(c, "account_id", h.access.RemoveAccountComplects)
}

// GET /api/access/users/:user_id/flags
func (h *AccessHandler) FetchFlags(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	f, err := h.access.FetchFlags(requestDB(c), userID)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, f)
}

// PUT /api/access/users/:user_id/flags {"flags": {...}}
func (h *AccessHandler) SetFlags(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	var req flagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	f, err := h.access.SetFlags(requestDB(c), userID, req.Flags)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, f)
}

func (h *AccessHandler) grantFor(c *gin.Context, fn func(dbctx.Context, uuid.UUID, []uuid.UUID) (*services.AccountGrantsResult, error)) {
	accountID, ok := pathID(c, "account_id")
	if !ok {
		return
	}
	ids, err := bodyIDs(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	out, err := fn(requestDB(c), accountID, ids)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *AccessHandler) listFor(c *gin.Context, fn func(dbctx.Context, uuid.UUID, services.Paging) (*services.ListResult, error)) {
	accountID, ok := pathID(c, "account_id")
	if !ok {
		return
	}
	paging, err := pagingQuery(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	res, err := fn(requestDB(c), accountID, paging)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *AccessHandler) removeFor(c *gin.Context, owner string, fn func(dbctx.Context, uuid.UUID, []uuid.UUID) (bool, error)) {
	ownerID, ok := pathID(c, owner)
	if !ok {
		return
	}
	ids, err := bodyIDs(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	removed, err := fn(requestDB(c), ownerID, ids)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"removed": removed})
}
