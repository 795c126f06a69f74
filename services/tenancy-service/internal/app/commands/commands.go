// services/tenancy-service/internal/app/commands/commands.go
package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/audit"
	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/identity"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
	"golang.org/x/sync/errgroup"
)

// Options are shared by every command.
type Options struct {
	// MaxMembers caps Member documents per account. <= 0 uses account.DefaultMaxMembers.
	MaxMembers int
	// Now is the clock; nil uses time.Now in UTC.
	Now    func() time.Time
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxMembers <= 0 {
		o.MaxMembers = account.DefaultMaxMembers
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func requireCaller(c identity.Caller) error {
	if strings.TrimSpace(c.UID) == "" {
		return domainErr.ErrUnauthenticated
	}
	return nil
}

// teamView is what every team-management transaction reads first.
type teamView struct {
	account *account.Account
	caller  *membership.Member
	target  *membership.Member
}

// readTeam fans out the account, caller and (optionally) target reads inside tx.
func readTeam(ctx context.Context, tx repository.TenantTx, accountID, callerUID, targetUID string) (*teamView, error) {
	var view teamView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		acc, err := tx.GetAccount(gctx, accountID)
		view.account = acc
		return err
	})
	g.Go(func() error {
		m, err := tx.GetMember(gctx, accountID, callerUID)
		view.caller = m
		return err
	})
	if targetUID != "" {
		g.Go(func() error {
			m, err := tx.GetMember(gctx, accountID, targetUID)
			view.target = m
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &view, nil
}

// recordAudit appends after commit. The change already happened, so a failed
// append is logged and swallowed.
func recordAudit(ctx context.Context, store repository.AuditStore, logger *slog.Logger, event *audit.AuditEvent) {
	if store == nil {
		return
	}
	if err := store.Append(ctx, event); err != nil {
		logger.Error("failed to append audit event",
			"action", event.Action,
			"account_id", event.AccountID,
			"error", err,
		)
	}
}
