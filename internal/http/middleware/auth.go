package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/arm-gateway/internal/http/response"
	"github.com/yungbote/arm-gateway/internal/platform/apierr"
	"github.com/yungbote/arm-gateway/internal/platform/ctxutil"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

const (
	headerUserID    = "X-User-Id"
	headerAccountID = "X-Account-Id"
)

// PrincipalClaims are the claims the upstream session service signs.
type PrincipalClaims struct {
	UserID    string `json:"user_id,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

// NewAuthMiddleware verifies HS256 bearer tokens when secret is set. Without
// a secret the principal is read from the X-User-Id / X-Account-Id headers
// set by the trusted upstream.
func NewAuthMiddleware(log *logger.Logger, secret string) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, secret: []byte(strings.TrimSpace(secret))}
}

func (am *AuthMiddleware) AttachPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			p   *ctxutil.Principal
			err error
		)
		if len(am.secret) > 0 {
			p, err = am.fromToken(extractTokenFromAll(c))
		} else {
			p, err = principalFromHeaders(c)
		}
		if err != nil {
			am.log.Debug("principal rejected", "error", err)
			response.RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, err)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func (am *AuthMiddleware) fromToken(tokenString string) (*ctxutil.Principal, error) {
	if tokenString == "" {
		return nil, errors.New("missing or invalid token")
	}
	claims := &PrincipalClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return am.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	userID, err := optionalUUID("user_id", claims.UserID)
	if err != nil {
		return nil, err
	}
	accountID, err := optionalUUID("account_id", claims.AccountID)
	if err != nil {
		return nil, err
	}
	return &ctxutil.Principal{UserID: userID, AccountID: accountID}, nil
}

func principalFromHeaders(c *gin.Context) (*ctxutil.Principal, error) {
	userID, err := optionalUUID(headerUserID, c.GetHeader(headerUserID))
	if err != nil {
		return nil, err
	}
	accountID, err := optionalUUID(headerAccountID, c.GetHeader(headerAccountID))
	if err != nil {
		return nil, err
	}
	return &ctxutil.Principal{UserID: userID, AccountID: accountID}, nil
}

func optionalUUID(name, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &id, nil
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
