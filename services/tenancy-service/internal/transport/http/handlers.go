// services/tenancy-service/internal/transport/http/handlers.go
package http

import (
	"errors"
	"io"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/app"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/app/commands"
)

type TenancyHandler struct {
	sm *app.ServiceManager
}

func NewTenancyHandler(sm *app.ServiceManager) *TenancyHandler {
	return &TenancyHandler{sm: sm}
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return badRequest("malformed request body")
	}
	return nil
}

func (h *TenancyHandler) ResolveAccount(c *gin.Context) {
	var req ResolveAccountRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}

	res, err := h.sm.ResolveAccount.Handle(c.Request.Context(), commands.ResolveAccountParams{
		Caller:             callerFrom(c),
		RequestedAccountID: req.AccountID,
		Name:               req.Name,
		Plan:               req.Plan,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, ResolveAccountResponse{AccountID: res.AccountID, Reason: string(res.Reason)})
}

func (h *TenancyHandler) GetAccount(c *gin.Context) {
	view, err := h.sm.Accounts.GetAccount(c.Request.Context(), callerFrom(c), c.Param("accountId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, toAccountResponse(view))
}

func (h *TenancyHandler) ListMembers(c *gin.Context) {
	members, err := h.sm.Accounts.ListMembers(c.Request.Context(), callerFrom(c), c.Param("accountId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"members": toMemberResponses(members)})
}

func (h *TenancyHandler) ListInvites(c *gin.Context) {
	invites, err := h.sm.Accounts.ListInvites(c.Request.Context(), callerFrom(c), c.Param("accountId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"invites": toInviteResponses(invites)})
}

func (h *TenancyHandler) InviteMember(c *gin.Context) {
	var req InviteRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	err := h.sm.InviteMember.Handle(c.Request.Context(), commands.InviteMemberParams{
		Caller:    callerFrom(c),
		AccountID: c.Param("accountId"),
		Email:     req.Email,
		Role:      req.Role,
	})
	h.respondOK(c, err)
}

func (h *TenancyHandler) RevokeInvite(c *gin.Context) {
	var req RevokeInviteRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	err := h.sm.RevokeInvite.Handle(c.Request.Context(), commands.RevokeInviteParams{
		Caller:    callerFrom(c),
		AccountID: c.Param("accountId"),
		Email:     req.Email,
	})
	h.respondOK(c, err)
}

func (h *TenancyHandler) AcceptInvite(c *gin.Context) {
	err := h.sm.AcceptInvitation.Handle(c.Request.Context(), commands.AcceptInvitationParams{
		Caller:    callerFrom(c),
		AccountID: c.Param("accountId"),
	})
	h.respondOK(c, err)
}

func (h *TenancyHandler) UpdateMemberRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	err := h.sm.UpdateMemberRole.Handle(c.Request.Context(), commands.UpdateMemberRoleParams{
		Caller:    callerFrom(c),
		AccountID: c.Param("accountId"),
		MemberUID: c.Param("memberUid"),
		Role:      req.Role,
	})
	h.respondOK(c, err)
}

func (h *TenancyHandler) RemoveMember(c *gin.Context) {
	err := h.sm.RemoveMember.Handle(c.Request.Context(), commands.RemoveMemberParams{
		Caller:    callerFrom(c),
		AccountID: c.Param("accountId"),
		MemberUID: c.Param("memberUid"),
	})
	h.respondOK(c, err)
}

func (h *TenancyHandler) respondOK(c *gin.Context, err error) {
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, OKResponse{OK: true})
}
