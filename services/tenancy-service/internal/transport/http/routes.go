// services/tenancy-service/internal/transport/http/routes.go
package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/identity"
)

func SetupRoutes(h *TenancyHandler, verifier identity.Verifier, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(AuthMiddleware(verifier))
	{
		api.POST("/accounts/resolve", h.ResolveAccount)

		acc := api.Group("/accounts/:accountId")
		{
			acc.GET("", h.GetAccount)
			acc.GET("/members", h.ListMembers)
			acc.PATCH("/members/:memberUid", h.UpdateMemberRole)
			acc.DELETE("/members/:memberUid", h.RemoveMember)

			acc.GET("/invites", h.ListInvites)
			acc.POST("/invites", h.InviteMember)
			acc.POST("/invites/revoke", h.RevokeInvite)
			acc.POST("/invites/accept", h.AcceptInvite)
		}
	}

	return r
}
