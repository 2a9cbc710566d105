package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/arm-gateway/internal/http/response"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
	"github.com/yungbote/arm-gateway/internal/services"
)

type idsRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func requestDB(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// decodeOneOrMany accepts either a JSON object or an array of objects.
func decodeOneOrMany[T any](c *gin.Context) (items []T, many bool, err error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, false, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, false, errors.New("request body is empty")
	}
	if body[0] == '[' {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, true, err
		}
		return items, true, nil
	}
	var one T
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, false, err
	}
	return []T{one}, false, nil
}

// write runs a single or batch write depending on the body shape. Batches
// answer {"items": [...]}, single writes the entity itself.
func write[In any, Out any](
	c *gin.Context,
	log *logger.Logger,
	status int,
	one func(dbctx.Context, In) (Out, error),
	many func(dbctx.Context, []In) ([]Out, error),
) {
	items, isBatch, err := decodeOneOrMany[In](c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	dbc := requestDB(c)
	if isBatch {
		out, err := many(dbc, items)
		if err != nil {
			response.Fail(c, log, err)
			return
		}
		c.JSON(status, gin.H{"items": out})
		return
	}
	out, err := one(dbc, items[0])
	if err != nil {
		response.Fail(c, log, err)
		return
	}
	c.JSON(status, out)
}

// removeIDs reads the ids to delete from the :id path segment or from a
// {"ids": [...]} body.
func removeIDs(c *gin.Context) ([]uuid.UUID, error) {
	if raw := c.Param("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("id: %w", err)
		}
		return []uuid.UUID{id}, nil
	}
	return bodyIDs(c)
}

func bodyIDs(c *gin.Context) ([]uuid.UUID, error) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	if len(req.IDs) == 0 {
		return nil, errors.New("ids must not be empty")
	}
	return req.IDs, nil
}

func remove(c *gin.Context, log *logger.Logger, fn func(dbctx.Context, []uuid.UUID) (bool, error)) {
	ids, err := removeIDs(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	ok, err := fn(requestDB(c), ids)
	if err != nil {
		response.Fail(c, log, err)
		return
	}
	response.RespondOK(c, gin.H{"removed": ok})
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, fmt.Errorf("%s: %w", name, err))
		return uuid.Nil, false
	}
	return id, true
}

// pagingQuery reads ?offset=&limit=&order=a,-b.
func pagingQuery(c *gin.Context) (services.Paging, error) {
	var p services.Paging
	var err error
	if p.Offset, err = intQuery(c, "offset"); err != nil {
		return p, err
	}
	if p.Limit, err = intQuery(c, "limit"); err != nil {
		return p, err
	}
	if p.Offset < 0 || p.Limit < 0 {
		return p, errors.New("offset and limit must not be negative")
	}
	p.Order = listQuery(c, "order")
	return p, nil
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

// listQuery accepts both ?k=a&k=b and ?k=a,b.
func listQuery(c *gin.Context, name string) []string {
	var out []string
	for _, v := range c.QueryArray(name) {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func uuidsQuery(c *gin.Context, name string) ([]uuid.UUID, error) {
	raw := listQuery(c, name)
	if raw == nil {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func uuidQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &id, nil
}

func boolQuery(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &b, nil
}

func flagQuery(c *gin.Context, name string) bool {
	b, err := boolQuery(c, name)
	return err == nil && b != nil && *b
}

func stringQuery(c *gin.Context, name string) *string {
	if v, ok := c.GetQuery(name); ok {
		v = strings.TrimSpace(v)
		return &v
	}
	return nil
}
