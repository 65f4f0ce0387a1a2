package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/gin-gonic/gin"
)

type ctxKey string

const principalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Middleware rejects requests without a valid "Authorization: Bearer"
// token and stores the principal in the request context.
func Middleware(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			abort(c, "missing token")
			return
		}

		p, err := ParseToken(strings.TrimSpace(token), secretKey)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, common.ErrorTokenExpired) {
				msg = "token expired"
			}
			abort(c, msg)
			return
		}

		ctx := logging.ContextWith(WithPrincipal(c.Request.Context(), p), "principal", p.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abort(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": msg})
}
