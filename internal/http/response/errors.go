package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/arm-gateway/internal/platform/apierr"
	"github.com/yungbote/arm-gateway/internal/platform/ctxutil"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

// Fail classifies err and writes the error envelope. Unclassified errors are
// logged and reported as UNHANDLED.
func Fail(c *gin.Context, log *logger.Logger, err error) {
	ae := apierr.From(err)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, apierr.CodeUnhandled, nil)
	}
	if ae.Status >= http.StatusInternalServerError && log != nil {
		fields := []any{"path", c.FullPath(), "error", err}
		if tr, ok := ctxutil.TraceFrom(c.Request.Context()); ok {
			fields = append(fields, tr.LogFields()...)
		}
		log.Error("request failed", fields...)
	}
	RespondError(c, ae.Status, ae.Code, ae)
}

// BadRequest reports a request that could not be decoded.
func BadRequest(c *gin.Context, err error) {
	RespondError(c, http.StatusBadRequest, apierr.CodeInvalidArgument, err)
}
