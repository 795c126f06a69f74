package commands

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/audit"
	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/identity"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
)

// teamOf signs in owner and joins the given uids as admins (prefix "a") or members.
func teamOf(t *testing.T, h *harness, owner string, uids ...string) string {
	t.Helper()
	accountID := h.signIn(t, owner).AccountID
	for _, uid := range uids {
		role := "member"
		if uid[0] == 'a' {
			role = "admin"
		}
		h.join(t, owner, accountID, uid, role)
	}
	return accountID
}

func TestInvite_Validation(t *testing.T) {
	h := newHarness(t)
	acc := teamOf(t, h, "o")

	tests := []struct {
		name   string
		params InviteMemberParams
		want   error
	}{
		{"no caller", InviteMemberParams{AccountID: acc, Email: "x@example.com"}, domainErr.ErrUnauthenticated},
		{"no account", InviteMemberParams{Caller: caller("o"), Email: "x@example.com"}, domainErr.ErrAccountIDRequired},
		{"no email", InviteMemberParams{Caller: caller("o"), AccountID: acc, Email: "  "}, domainErr.ErrEmailRequired},
		{"bad role", InviteMemberParams{Caller: caller("o"), AccountID: acc, Email: "x@example.com", Role: "root"}, domainErr.ErrInvalidRole},
		{"owner role", InviteMemberParams{Caller: caller("o"), AccountID: acc, Email: "x@example.com", Role: "owner"}, domainErr.ErrRoleNotAssignable},
		{"unknown account", InviteMemberParams{Caller: caller("o"), AccountID: "acc_nope", Email: "x@example.com"}, domainErr.ErrAccountNotFound},
		{"outsider", InviteMemberParams{Caller: caller("stranger"), AccountID: acc, Email: "x@example.com"}, domainErr.ErrNotAccountMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.invite.Handle(context.Background(), tt.params)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if invites, _ := h.store.ListInvites(context.Background(), acc); len(invites) != 0 {
		t.Fatalf("failed invites must not write, got %+v", invites)
	}
	if n := len(h.notifier.sent); n != 0 {
		t.Fatalf("failed invites must not notify, got %d", n)
	}
}

func TestInvite_MemberCannotInvite(t *testing.T) {
	h := newHarness(t)
	acc := teamOf(t, h, "o", "m1")
	err := h.invite.Handle(context.Background(), InviteMemberParams{Caller: caller("m1"), AccountID: acc, Email: "x@example.com"})
	if !errors.Is(err, domainErr.ErrNotAccountAdmin) {
		t.Fatalf("expected ErrNotAccountAdmin, got %v", err)
	}
}

func TestInvite_WritesPendingAndNotifies(t *testing.T) {
	h := newHarness(t)
	acc := teamOf(t, h, "o", "a1")

	err := h.invite.Handle(context.Background(), InviteMemberParams{
		Caller:    caller("a1"),
		AccountID: acc,
		Email:     " Bob@Example.com ",
		Role:      "ADMIN",
	})
	if err != nil {
		t.Fatalf("invite failed: %v", err)
	}

	invites, _ := h.store.ListInvites(context.Background(), acc)
	var bob *invite.Invite
	for i := range invites {
		if invites[i].Email == "bob@example.com" {
			bob = &invites[i]
		}
	}
	if bob == nil || !bob.IsPending() || bob.Role != membership.RoleAdmin || bob.InvitedBy != "a1" {
		t.Fatalf("unexpected invite %+v", bob)
	}

	last := h.notifier.sent[len(h.notifier.sent)-1]
	if last.Invite.Email != "bob@example.com" || last.AccountName != account.DefaultName {
		t.Fatalf("unexpected notification %+v", last)
	}
}

func TestInvite_NotifierFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	acc := teamOf(t, h, "o")
	h.notifier.err = errors.New("queue down")

	if err := h.invite.Handle(context.Background(), InviteMemberParams{Caller: caller("o"), AccountID: acc, Email: "x@example.com"}); err != nil {
		t.Fatalf("notifier failure must not fail the invite: %v", err)
	}
	if inv, _ := h.store.FindPendingInvite(context.Background(), "x@example.com"); inv == nil {
		t.Fatal("invite must be stored")
	}
}

func TestInvite_ReinviteRefreshesAcceptedInvite(t *testing.T) {
	h := newHarness(t)
	acc := teamOf(t, h, "o", "m1")
	// m1's invite is accepted; a fresh invite to the same address is pending again.
	if err := h.invite.Handle(context.Background(), InviteMemberParams{Caller: caller("o"), AccountID: acc, Email: "m1@example.com"}); err != nil {
		t.Fatalf("reinvite failed: %v", err)
	}
	inv, _ := h.store.FindPendingInvite(context.Background(), "m1@example.com")
	if inv == nil || inv.AcceptedBy != "" {
		t.Fatalf("expected a fresh pending invite, got %+v", inv)
	}
}

func TestAccept_Explicit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	acc := teamOf(t, h, "o")
	// The invitee already has a personal account.
	h.signIn(t, "n")
	if err := h.invite.Handle(ctx, InviteMemberParams{Caller: caller("o"), AccountID: acc, Email: "n@example.com", Role: "admin"}); err != nil {
		t.Fatalf("invite failed: %v", err)
	}

	if err := h.accept.Handle(ctx, AcceptInvitationParams{Caller: caller("n"), AccountID: acc}); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if m := h.member(t, acc, "n"); m == nil || m.Role != membership.RoleAdmin {
		t.Fatalf("unexpected member %+v", m)
	}
	h.assertConsistent(t, acc)

	err := h.accept.Handle(ctx, AcceptInvitationParams{Caller: caller("n"), AccountID: acc})
	if !errors.Is(err, domainErr.ErrInviteNotPending) {
		t.Fatalf("second accept: expected ErrInviteNotPending, got %v", err)
	}
	if got := h.account(t, acc).MemberCount; got != 2 {
		t.Fatalf("second accept must not bump the counter, got %d", got)
	}
}

func TestAccept_Errors(t *testing.T) {
	h := newHarness(t)
	acc := teamOf(t, h, "o")

	tests := []struct {
		name   string
		params AcceptInvitationParams
		want   error
	}{
		{"no caller", AcceptInvitationParams{AccountID: acc}, domainErr.ErrUnauthenticated},
		{"no account", AcceptInvitationParams{Caller: caller("n")}, domainErr.ErrAccountIDRequired},
		{"unverified email", AcceptInvitationParams{Caller: identity.Caller{UID: "n"}, AccountID: acc}, domainErr.ErrEmailRequired},
		{"no invite", AcceptInvitationParams{Caller: caller("n"), AccountID: acc}, domainErr.ErrInviteNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := h.accept.Handle(context.Background(), tt.params); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAccept_InviteForDeletedAccount(t *testing.T) {
	h := newHarness(t)
	seed(t, h.store, func(tx repository.TenantTx) {
		tx.PutInvite(invite.NewPending("acc_gone", "n@example.com", membership.RoleMember, "o", fixedNow))
	})
	err := h.accept.Handle(context.Background(), AcceptInvitationParams{Caller: caller("n"), AccountID: "acc_gone"})
	if !errors.Is(err, domainErr.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccept_ConcurrentDoubleAccept(t *testing.T) {
	h := newHarness(t)
	acc := teamOf(t, h, "o")
	if err := h.invite.Handle(context.Background(), InviteMemberParams{Caller: caller("o"), AccountID: acc, Email: "n@example.com"}); err != nil {
		t.Fatalf("invite failed: %v", err)
	}

	const racers = 4
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = h.accept.Handle(context.Background(), AcceptInvitationParams{Caller: caller("n"), AccountID: acc})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domainErr.ErrInviteNotPending), errors.Is(err, domainErr.ErrTransactionAborted):
		default:
			t.Errorf("unexpected error %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one winner, got %d (%v)", ok, errs)
	}
	if got := h.account(t, acc).MemberCount; got != 2 {
		t.Fatalf("expected one increment, got count %d", got)
	}
	h.assertConsistent(t, acc)
}

func TestAccept_ConcurrentRaceForLastSeat(t *testing.T) {
	h := newHarness(t)
	acc := teamOf(t, h, "o", "m1", "m2")
	for _, uid := range []string{"x", "y"} {
		if err := h.invite.Handle(context.Background(), InviteMemberParams{Caller: caller("o"), AccountID: acc, Email: uid + "@example.com"}); err != nil {
			t.Fatalf("invite %s failed: %v", uid, err)
		}
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, uid := range []string{"x", "y"} {
		wg.Add(1)
		go func(i int, uid string) {
			defer wg.Done()
			errs[i] = h.accept.Handle(context.Background(), AcceptInvitationParams{Caller: caller(uid), AccountID: acc})
		}(i, uid)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domainErr.ErrMemberLimitReached), errors.Is(err, domainErr.ErrTransactionAborted):
		default:
			t.Errorf("unexpected error %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one to take the last seat, got %d (%v)", ok, errs)
	}
	if got := h.account(t, acc).MemberCount; got != account.DefaultMaxMembers {
		t.Fatalf("expected a full team, got %d", got)
	}
	h.assertConsistent(t, acc)
}

func TestRevoke(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	acc := teamOf(t, h, "o", "m1")
	if err := h.invite.Handle(ctx, InviteMemberParams{Caller: caller("o"), AccountID: acc, Email: "x@example.com"}); err != nil {
		t.Fatalf("invite failed: %v", err)
	}

	err := h.revoke.Handle(ctx, RevokeInviteParams{Caller: caller("m1"), AccountID: acc, Email: "x@example.com"})
	if !errors.Is(err, domainErr.ErrNotAccountAdmin) {
		t.Fatalf("member revoke: expected ErrNotAccountAdmin, got %v", err)
	}

	before := len(h.audit.Events())
	if err := h.revoke.Handle(ctx, RevokeInviteParams{Caller: caller("o"), AccountID: acc, Email: "X@Example.com"}); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if inv, _ := h.store.FindPendingInvite(ctx, "x@example.com"); inv != nil {
		t.Fatalf("invite still pending: %+v", inv)
	}
	if got := h.actions()[before:]; len(got) != 1 || got[0] != audit.ActionInviteRevoked {
		t.Fatalf("expected one revoke event, got %v", got)
	}

	// Revoking again is a silent no-op.
	if err := h.revoke.Handle(ctx, RevokeInviteParams{Caller: caller("o"), AccountID: acc, Email: "x@example.com"}); err != nil {
		t.Fatalf("second revoke failed: %v", err)
	}
	if len(h.audit.Events()) != before+1 {
		t.Fatalf("no-op revoke must not audit, got %v", h.actions())
	}

	if err := h.revoke.Handle(ctx, RevokeInviteParams{Caller: caller("o"), AccountID: "acc_nope", Email: "x@example.com"}); !errors.Is(err, domainErr.ErrAccountNotFound) {
		t.Fatalf("unknown account: got %v", err)
	}
	if err := h.revoke.Handle(ctx, RevokeInviteParams{Caller: caller("o"), AccountID: acc}); !errors.Is(err, domainErr.ErrEmailRequired) {
		t.Fatalf("missing email: got %v", err)
	}
}

func TestUpdateMemberRole(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	acc := teamOf(t, h, "o", "a1", "m1")

	tests := []struct {
		name   string
		params UpdateMemberRoleParams
		want   error
	}{
		{"missing uid", UpdateMemberRoleParams{Caller: caller("o"), AccountID: acc, Role: "admin"}, domainErr.ErrMemberUIDRequired},
		{"promote to owner", UpdateMemberRoleParams{Caller: caller("o"), AccountID: acc, MemberUID: "m1", Role: "owner"}, domainErr.ErrRoleNotAssignable},
		{"unknown role", UpdateMemberRoleParams{Caller: caller("o"), AccountID: acc, MemberUID: "m1", Role: "boss"}, domainErr.ErrInvalidRole},
		{"member caller", UpdateMemberRoleParams{Caller: caller("m1"), AccountID: acc, MemberUID: "a1", Role: "member"}, domainErr.ErrNotAccountAdmin},
		{"owner re-roles self", UpdateMemberRoleParams{Caller: caller("o"), AccountID: acc, MemberUID: "o", Role: "admin"}, domainErr.ErrOwnerImmutable},
		{"unknown target", UpdateMemberRoleParams{Caller: caller("o"), AccountID: acc, MemberUID: "ghost", Role: "admin"}, domainErr.ErrMemberNotFound},
		{"outsider caller", UpdateMemberRoleParams{Caller: caller("stranger"), AccountID: acc, MemberUID: "m1", Role: "admin"}, domainErr.ErrMemberNotFound},
		{"unknown account", UpdateMemberRoleParams{Caller: caller("o"), AccountID: "acc_nope", MemberUID: "m1", Role: "admin"}, domainErr.ErrAccountNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := h.role.Handle(ctx, tt.params); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	before := len(h.audit.Events())
	if err := h.role.Handle(ctx, UpdateMemberRoleParams{Caller: caller("a1"), AccountID: acc, MemberUID: "m1", Role: "admin"}); err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if m := h.member(t, acc, "m1"); m.Role != membership.RoleAdmin {
		t.Fatalf("role not updated: %+v", m)
	}
	events := h.audit.Events()[before:]
	if len(events) != 1 || events[0].Metadata["old_role"] != membership.RoleMember || events[0].Metadata["new_role"] != membership.RoleAdmin {
		t.Fatalf("unexpected audit %+v", events)
	}

	// Same role again changes nothing.
	if err := h.role.Handle(ctx, UpdateMemberRoleParams{Caller: caller("o"), AccountID: acc, MemberUID: "m1", Role: "admin"}); err != nil {
		t.Fatalf("no-op update failed: %v", err)
	}
	if len(h.audit.Events()) != before+1 {
		t.Fatalf("no-op update must not audit")
	}
	h.assertConsistent(t, acc)
}

func TestRemoveMember(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	acc := teamOf(t, h, "o", "a1", "m1", "m2")

	tests := []struct {
		name   string
		params RemoveMemberParams
		want   error
	}{
		{"self", RemoveMemberParams{Caller: caller("a1"), AccountID: acc, MemberUID: "a1"}, domainErr.ErrCannotRemoveSelf},
		{"owner self", RemoveMemberParams{Caller: caller("o"), AccountID: acc, MemberUID: "o"}, domainErr.ErrCannotRemoveSelf},
		{"owner by admin", RemoveMemberParams{Caller: caller("a1"), AccountID: acc, MemberUID: "o"}, domainErr.ErrCannotRemoveOwner},
		{"member caller", RemoveMemberParams{Caller: caller("m1"), AccountID: acc, MemberUID: "m2"}, domainErr.ErrNotAccountAdmin},
		{"unknown target", RemoveMemberParams{Caller: caller("o"), AccountID: acc, MemberUID: "ghost"}, domainErr.ErrMemberNotFound},
		{"missing uid", RemoveMemberParams{Caller: caller("o"), AccountID: acc}, domainErr.ErrMemberUIDRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := h.remove.Handle(ctx, tt.params); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	h.assertConsistent(t, acc)

	if err := h.remove.Handle(ctx, RemoveMemberParams{Caller: caller("a1"), AccountID: acc, MemberUID: "m2"}); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if h.member(t, acc, "m2") != nil {
		t.Fatal("member doc still present")
	}
	if got := h.account(t, acc).MemberCount; got != 3 {
		t.Fatalf("expected 3 members, got %d", got)
	}
	h.assertConsistent(t, acc)

	// Removed members can no longer act on the account.
	err := h.invite.Handle(ctx, InviteMemberParams{Caller: caller("m2"), AccountID: acc, Email: "z@example.com"})
	if !errors.Is(err, domainErr.ErrNotAccountMember) {
		t.Fatalf("expected ErrNotAccountMember, got %v", err)
	}
}

func TestRemoveMember_ValidationBeforeStore(t *testing.T) {
	// A store that panics proves no I/O happens.
	cmd := NewRemoveMemberCmd(panicStore{}, nil, Options{})
	err := cmd.Handle(context.Background(), RemoveMemberParams{Caller: caller("u"), AccountID: "acc", MemberUID: "u"})
	if !errors.Is(err, domainErr.ErrCannotRemoveSelf) {
		t.Fatalf("expected ErrCannotRemoveSelf, got %v", err)
	}
	role := NewUpdateMemberRoleCmd(panicStore{}, nil, Options{})
	err = role.Handle(context.Background(), UpdateMemberRoleParams{Caller: caller("u"), AccountID: "acc", MemberUID: "x", Role: "owner"})
	if !errors.Is(err, domainErr.ErrRoleNotAssignable) {
		t.Fatalf("expected ErrRoleNotAssignable, got %v", err)
	}
}

type panicStore struct{ repository.TenantStore }

func (panicStore) RunInTx(context.Context, func(context.Context, repository.TenantTx) error) error {
	panic("store must not be touched")
}
