package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedAccount(t *testing.T, s *TenantStore, acc *account.Account) {
	t.Helper()
	err := s.RunInTx(context.Background(), func(ctx context.Context, tx repository.TenantTx) error {
		tx.PutAccount(acc)
		return nil
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestRunInTx_CommitsAtomically(t *testing.T) {
	s := NewTenantStore(0, nil)
	ctx := context.Background()

	err := s.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		acc, err := tx.GetAccount(ctx, "acc_u1")
		if err != nil || acc != nil {
			t.Fatalf("expected absent account, got %v %v", acc, err)
		}
		tx.PutAccount(account.NewPersonal("acc_u1", "u1", "", "", t0))
		tx.PutMember(&membership.Member{AccountID: "acc_u1", UID: "u1", Role: membership.RoleOwner, JoinedAt: t0})
		return nil
	})
	if err != nil {
		t.Fatalf("tx failed: %v", err)
	}

	acc, _ := s.GetAccount(ctx, "acc_u1")
	m, _ := s.GetMember(ctx, "acc_u1", "u1")
	if acc == nil || m == nil {
		t.Fatalf("expected both documents, got %v %v", acc, m)
	}
	if acc.MemberCount != 1 || m.Role != membership.RoleOwner {
		t.Fatalf("unexpected state %+v %+v", acc, m)
	}
}

func TestRunInTx_FnErrorDiscardsWrites(t *testing.T) {
	s := NewTenantStore(0, nil)
	boom := errors.New("boom")

	err := s.RunInTx(context.Background(), func(ctx context.Context, tx repository.TenantTx) error {
		if _, err := tx.GetAccount(ctx, "acc_x"); err != nil {
			return err
		}
		tx.PutAccount(&account.Account{AccountID: "acc_x"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if acc, _ := s.GetAccount(context.Background(), "acc_x"); acc != nil {
		t.Fatal("writes of a failed attempt must not land")
	}
}

func TestRunInTx_ReadAfterWriteRejected(t *testing.T) {
	s := NewTenantStore(0, nil)
	err := s.RunInTx(context.Background(), func(ctx context.Context, tx repository.TenantTx) error {
		tx.PutAccount(&account.Account{AccountID: "acc_x"})
		_, err := tx.GetAccount(ctx, "acc_x")
		return err
	})
	if !errors.Is(err, domainErr.ErrReadAfterWrite) {
		t.Fatalf("expected ErrReadAfterWrite, got %v", err)
	}
}

func TestRunInTx_RetriesOnConflict(t *testing.T) {
	s := NewTenantStore(0, nil)
	ctx := context.Background()
	seedAccount(t, s, &account.Account{AccountID: "acc_a", OwnerUID: "o", MemberCount: 1})

	attempts := 0
	err := s.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		attempts++
		acc, err := tx.GetAccount(ctx, "acc_a")
		if err != nil {
			return err
		}
		if attempts == 1 {
			// A concurrent writer moves the account under us.
			seedAccount(t, s, &account.Account{AccountID: "acc_a", OwnerUID: "o", MemberCount: 2})
		}
		acc.MemberCount++
		tx.PutAccount(acc)
		return nil
	})
	if err != nil {
		t.Fatalf("tx failed: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	acc, _ := s.GetAccount(ctx, "acc_a")
	if acc.MemberCount != 3 {
		t.Fatalf("increment must apply on top of the concurrent write, got %d", acc.MemberCount)
	}
}

func TestRunInTx_AbortsAfterMaxAttempts(t *testing.T) {
	s := NewTenantStore(3, nil)
	ctx := context.Background()
	seedAccount(t, s, &account.Account{AccountID: "acc_a"})

	attempts := 0
	err := s.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		attempts++
		acc, err := tx.GetAccount(ctx, "acc_a")
		if err != nil {
			return err
		}
		seedAccount(t, s, &account.Account{AccountID: "acc_a", Name: "moved"})
		tx.PutAccount(acc)
		return nil
	})
	if !errors.Is(err, domainErr.ErrTransactionAborted) {
		t.Fatalf("expected ErrTransactionAborted, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRunInTx_StaleFnErrorIsRetried(t *testing.T) {
	s := NewTenantStore(0, nil)
	ctx := context.Background()
	seedAccount(t, s, &account.Account{AccountID: "acc_a", MemberCount: 4})

	attempts := 0
	err := s.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		attempts++
		acc, err := tx.GetAccount(ctx, "acc_a")
		if err != nil {
			return err
		}
		if acc.IsFull(4) {
			// Someone frees a seat before we report the cap.
			seedAccount(t, s, &account.Account{AccountID: "acc_a", MemberCount: 3})
			return domainErr.ErrMemberLimitReached
		}
		return nil
	})
	if err != nil {
		t.Fatalf("decision on stale data should be retried, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRunInTx_AbsentReadConflictsWithCreate(t *testing.T) {
	s := NewTenantStore(0, nil)
	ctx := context.Background()

	attempts := 0
	err := s.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		attempts++
		acc, err := tx.GetAccount(ctx, "acc_new")
		if err != nil {
			return err
		}
		if acc != nil {
			return nil
		}
		if attempts == 1 {
			seedAccount(t, s, &account.Account{AccountID: "acc_new", OwnerUID: "other"})
		}
		tx.PutAccount(&account.Account{AccountID: "acc_new", OwnerUID: "me"})
		return nil
	})
	if err != nil {
		t.Fatalf("tx failed: %v", err)
	}
	acc, _ := s.GetAccount(ctx, "acc_new")
	if acc.OwnerUID != "other" {
		t.Fatalf("blind create must not clobber a concurrent create, owner=%q", acc.OwnerUID)
	}
}

func TestRunInTx_DeleteAndRecreateIsAConflict(t *testing.T) {
	s := NewTenantStore(0, nil)
	ctx := context.Background()
	put := func(m *membership.Member) {
		_ = s.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
			tx.PutMember(m)
			return nil
		})
	}
	put(&membership.Member{AccountID: "a", UID: "u", Role: membership.RoleMember})

	attempts := 0
	err := s.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		attempts++
		if _, err := tx.GetMember(ctx, "a", "u"); err != nil {
			return err
		}
		if attempts == 1 {
			_ = s.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
				tx.DeleteMember("a", "u")
				return nil
			})
			put(&membership.Member{AccountID: "a", UID: "u", Role: membership.RoleMember})
		}
		tx.PutMember(&membership.Member{AccountID: "a", UID: "u", Role: membership.RoleAdmin})
		return nil
	})
	if err != nil {
		t.Fatalf("tx failed: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("recreated document must not reuse its old version; attempts=%d", attempts)
	}
}

func TestRunInTx_CancelledContext(t *testing.T) {
	s := NewTenantStore(0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := s.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected context.Canceled without running fn, got %v (called=%v)", err, called)
	}
}

func TestFindPendingInvite(t *testing.T) {
	s := NewTenantStore(0, nil)
	ctx := context.Background()
	write := func(inv *invite.Invite) {
		_ = s.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
			tx.PutInvite(inv)
			return nil
		})
	}

	write(invite.NewPending("acc_b", "E@x.com", membership.RoleMember, "ob", t0.Add(time.Minute)))
	write(invite.NewPending("acc_a", "e@x.com", membership.RoleAdmin, "oa", t0))

	got, err := s.FindPendingInvite(ctx, " E@X.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got == nil || got.AccountID != "acc_a" {
		t.Fatalf("expected oldest invite (acc_a), got %+v", got)
	}

	accepted := *got
	_ = accepted.Accept("u", t0)
	write(&accepted)
	got, _ = s.FindPendingInvite(ctx, "e@x.com")
	if got == nil || got.AccountID != "acc_b" {
		t.Fatalf("accepted invite must leave the index, got %+v", got)
	}

	_ = s.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		tx.DeleteInvite("acc_b", "e@x.com")
		return nil
	})
	if got, _ := s.FindPendingInvite(ctx, "e@x.com"); got != nil {
		t.Fatalf("expected no pending invite, got %+v", got)
	}
}

func TestListMembersAndInvites_Ordered(t *testing.T) {
	s := NewTenantStore(0, nil)
	ctx := context.Background()
	_ = s.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		tx.PutMember(&membership.Member{AccountID: "a", UID: "z", JoinedAt: t0})
		tx.PutMember(&membership.Member{AccountID: "a", UID: "b", JoinedAt: t0.Add(time.Second)})
		tx.PutMember(&membership.Member{AccountID: "a", UID: "a", JoinedAt: t0})
		tx.PutMember(&membership.Member{AccountID: "other", UID: "x", JoinedAt: t0})
		tx.PutInvite(invite.NewPending("a", "y@x.com", membership.RoleMember, "z", t0))
		tx.PutInvite(invite.NewPending("a", "c@x.com", membership.RoleMember, "z", t0))
		return nil
	})

	members, _ := s.ListMembers(ctx, "a")
	var uids []string
	for _, m := range members {
		uids = append(uids, m.UID)
	}
	if len(uids) != 3 || uids[0] != "a" || uids[1] != "z" || uids[2] != "b" {
		t.Fatalf("unexpected member order %v", uids)
	}

	invites, _ := s.ListInvites(ctx, "a")
	if len(invites) != 2 || invites[0].Email != "c@x.com" {
		t.Fatalf("unexpected invite order %+v", invites)
	}
}
