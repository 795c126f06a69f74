// services/tenancy-service/internal/transport/http/dto.go
package http

import (
	"time"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/app/queries"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
)

type ResolveAccountRequest struct {
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
	Plan      string `json:"plan"`
}

type ResolveAccountResponse struct {
	AccountID string `json:"accountId"`
	Reason    string `json:"reason"`
}

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type RevokeInviteRequest struct {
	Email string `json:"email"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type AccountResponse struct {
	AccountID   string    `json:"accountId"`
	Name        string    `json:"name"`
	Plan        string    `json:"plan"`
	OwnerUID    string    `json:"ownerUid"`
	MemberCount int       `json:"memberCount"`
	Role        string    `json:"role"` // caller's effective role
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type MemberResponse struct {
	UID      string    `json:"uid"`
	Role     string    `json:"role"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
}

type InviteResponse struct {
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Status     string     `json:"status"`
	InvitedBy  string     `json:"invitedBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	AcceptedBy string     `json:"acceptedBy,omitempty"`
}

func toAccountResponse(v *queries.AccountView) AccountResponse {
	return AccountResponse{
		AccountID:   v.Account.AccountID,
		Name:        v.Account.Name,
		Plan:        v.Account.Plan,
		OwnerUID:    v.Account.OwnerUID,
		MemberCount: v.Account.MemberCount,
		Role:        string(v.CallerRole),
		CreatedAt:   v.Account.CreatedAt,
		UpdatedAt:   v.Account.UpdatedAt,
	}
}

func toMemberResponses(members []membership.Member) []MemberResponse {
	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, MemberResponse{
			UID:      m.UID,
			Role:     string(m.Role),
			Email:    m.Email,
			JoinedAt: m.JoinedAt,
		})
	}
	return out
}

func toInviteResponses(invites []invite.Invite) []InviteResponse {
	out := make([]InviteResponse, 0, len(invites))
	for _, i := range invites {
		out = append(out, InviteResponse{
			Email:      i.Email,
			Role:       string(i.Role),
			Status:     string(i.Status),
			InvitedBy:  i.InvitedBy,
			CreatedAt:  i.CreatedAt,
			AcceptedAt: i.AcceptedAt,
			AcceptedBy: i.AcceptedBy,
		})
	}
	return out
}
