// services/tenancy-service/internal/transport/http/middleware.go
package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/identity"
)

const callerKey = "tenancy.caller"

// AuthMiddleware verifies the bearer token and stores the caller on the context.
func AuthMiddleware(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			abortWithError(c, domainErr.ErrUnauthenticated)
			return
		}

		caller, err := verifier.Verify(c.Request.Context(), tokenStr)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// callerFrom returns the identity stored by AuthMiddleware.
func callerFrom(c *gin.Context) identity.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return identity.Caller{}
	}
	caller, _ := v.(identity.Caller)
	return caller
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"uid", callerFrom(c).UID,
		)
	}
}
