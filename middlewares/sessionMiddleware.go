package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/webnovauz/paint-management-backend/utils"
)

const (
	HeaderCorrelationId = "x-correlation-id"
	// HeaderUserName is the operator name stored as created_by; it is not an identity check.
	HeaderUserName = "x-user-name"
)

// SessionMiddleware attaches correlation id, operator name and client ip to the request context.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := strings.TrimSpace(c.GetHeader(HeaderCorrelationId))
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Header(HeaderCorrelationId, cid)

		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), cid)
		ctx = utils.SetClientIpInContext(ctx, c.ClientIP())
		if name := strings.TrimSpace(c.GetHeader(HeaderUserName)); name != "" {
			if len(name) > 100 {
				name = name[:100]
			}
			ctx = utils.SetUserNameInContext(ctx, name)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
