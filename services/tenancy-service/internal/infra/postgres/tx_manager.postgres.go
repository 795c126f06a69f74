// services/tenancy-service/internal/infra/postgres/tx_manager.postgres.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lib/pq"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
)

// table describes one document table: its key columns and the columns a put
// overwrites. Every table carries a version column fed by tenancy_doc_version.
type table struct {
	name    string
	keyCols []string
	cols    []string
}

var (
	accountsTable = table{
		name:    "accounts",
		keyCols: []string{"account_id"},
		cols:    []string{"name", "plan", "owner_uid", "member_count", "created_at", "updated_at"},
	}
	membersTable = table{
		name:    "account_members",
		keyCols: []string{"account_id", "uid"},
		cols:    []string{"role", "email", "joined_at"},
	}
	invitesTable = table{
		name:    "account_invites",
		keyCols: []string{"account_id", "email"},
		cols:    []string{"role", "status", "invited_by", "created_at", "accepted_at", "accepted_by"},
	}
)

func (t table) where(offset int) string {
	parts := make([]string, len(t.keyCols))
	for i, c := range t.keyCols {
		parts[i] = fmt.Sprintf("%s = $%d", c, offset+i+1)
	}
	return strings.Join(parts, " AND ")
}

func (t table) versionQuery(lock bool) string {
	q := fmt.Sprintf("SELECT version FROM %s WHERE %s", t.name, t.where(0))
	if lock {
		q += " FOR SHARE"
	}
	return q
}

func (t table) insertQuery(upsert bool) string {
	all := append(append([]string{}, t.keyCols...), t.cols...)
	params := make([]string, len(all))
	for i := range all {
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s, version) VALUES (%s, nextval('tenancy_doc_version'))",
		t.name, strings.Join(all, ", "), strings.Join(params, ", "))
	if upsert {
		sets := make([]string, len(t.cols))
		for i, c := range t.cols {
			sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
		}
		q += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s, version = EXCLUDED.version",
			strings.Join(t.keyCols, ", "), strings.Join(sets, ", "))
	}
	return q
}

// updateQuery expects key args, then column args, then the expected version.
func (t table) updateQuery() string {
	sets := make([]string, len(t.cols))
	for i, c := range t.cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, len(t.keyCols)+i+1)
	}
	return fmt.Sprintf("UPDATE %s SET %s, version = nextval('tenancy_doc_version') WHERE %s AND version = $%d",
		t.name, strings.Join(sets, ", "), t.where(0), len(t.keyCols)+len(t.cols)+1)
}

func (t table) deleteQuery(checkVersion bool) string {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s", t.name, t.where(0))
	if checkVersion {
		q += fmt.Sprintf(" AND version = $%d", len(t.keyCols)+1)
	}
	return q
}

// docRef identifies one row.
type docRef struct {
	table     *table
	accountID string
	key       string // uid or normalized email; empty for accounts
}

func (r docRef) keyArgs() []any {
	if r.key == "" {
		return []any{r.accountID}
	}
	return []any{r.accountID, r.key}
}

func accountRef(accountID string) docRef { return docRef{table: &accountsTable, accountID: accountID} }
func memberRef(accountID, uid string) docRef {
	return docRef{table: &membersTable, accountID: accountID, key: uid}
}
func inviteRef(accountID, email string) docRef {
	return docRef{table: &invitesTable, accountID: accountID, key: email}
}

type pendingWrite struct {
	ref    docRef
	args   []any // column values, nil for deletes
	delete bool
}

// pgTx is one attempt of an optimistic transaction. Reads hit the pool and
// record the row version (0 when absent); writes are buffered until Commit.
type pgTx struct {
	store *TenantStore

	mu     sync.Mutex
	reads  map[docRef]int64
	writes []pendingWrite
}

func newPgTx(s *TenantStore) *pgTx {
	return &pgTx{store: s, reads: make(map[docRef]int64)}
}

func (tx *pgTx) record(ref docRef, version int64) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if len(tx.writes) > 0 {
		return domainErr.ErrReadAfterWrite
	}
	if _, seen := tx.reads[ref]; !seen {
		tx.reads[ref] = version
	}
	return nil
}

func (tx *pgTx) readAllowed() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if len(tx.writes) > 0 {
		return domainErr.ErrReadAfterWrite
	}
	return nil
}

func (tx *pgTx) GetAccount(ctx context.Context, accountID string) (*account.Account, error) {
	if err := tx.readAllowed(); err != nil {
		return nil, err
	}
	acc, version, err := getAccount(ctx, tx.store.db, accountID)
	if err != nil {
		return nil, err
	}
	return acc, tx.record(accountRef(accountID), version)
}

func (tx *pgTx) GetMember(ctx context.Context, accountID, uid string) (*membership.Member, error) {
	if err := tx.readAllowed(); err != nil {
		return nil, err
	}
	m, version, err := getMember(ctx, tx.store.db, accountID, uid)
	if err != nil {
		return nil, err
	}
	return m, tx.record(memberRef(accountID, uid), version)
}

func (tx *pgTx) GetInvite(ctx context.Context, accountID, email string) (*invite.Invite, error) {
	if err := tx.readAllowed(); err != nil {
		return nil, err
	}
	email = invite.NormalizeEmail(email)
	inv, version, err := getInvite(ctx, tx.store.db, accountID, email)
	if err != nil {
		return nil, err
	}
	return inv, tx.record(inviteRef(accountID, email), version)
}

func (tx *pgTx) buffer(w pendingWrite) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.writes = append(tx.writes, w)
}

func (tx *pgTx) PutAccount(acc *account.Account) {
	tx.buffer(pendingWrite{
		ref:  accountRef(acc.AccountID),
		args: []any{acc.Name, acc.Plan, acc.OwnerUID, acc.MemberCount, acc.CreatedAt, acc.UpdatedAt},
	})
}

func (tx *pgTx) PutMember(m *membership.Member) {
	tx.buffer(pendingWrite{
		ref:  memberRef(m.AccountID, m.UID),
		args: []any{string(m.Role), m.Email, m.JoinedAt},
	})
}

func (tx *pgTx) DeleteMember(accountID, uid string) {
	tx.buffer(pendingWrite{ref: memberRef(accountID, uid), delete: true})
}

func (tx *pgTx) PutInvite(inv *invite.Invite) {
	tx.buffer(pendingWrite{
		ref: inviteRef(inv.AccountID, invite.NormalizeEmail(inv.Email)),
		args: []any{string(inv.Role), string(inv.Status), inv.InvitedBy, inv.CreatedAt,
			nullTime(inv.AcceptedAt), inv.AcceptedBy},
	})
}

func (tx *pgTx) DeleteInvite(accountID, email string) {
	tx.buffer(pendingWrite{ref: inviteRef(accountID, invite.NormalizeEmail(email)), delete: true})
}

// Stale re-reads every recorded version through the pool.
func (tx *pgTx) Stale(ctx context.Context) (bool, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	for ref, seen := range tx.reads {
		current, err := currentVersion(ctx, tx.store.db, ref, false)
		if err != nil {
			return false, err
		}
		if current != seen {
			return true, nil
		}
	}
	return false, nil
}

// Commit validates the read set and applies the writes in one SQL transaction.
// Rows that are only read are share-locked and compared; written rows are
// guarded by a version predicate on the statement itself.
func (tx *pgTx) Commit(ctx context.Context) (err error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if len(tx.writes) == 0 {
		return nil
	}

	sqlTx, err := tx.store.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return err
	}

	// Ensure rollback on panic
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		} else if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	writes := coalesce(tx.writes)
	written := make(map[docRef]bool, len(writes))
	for _, w := range writes {
		written[w.ref] = true
	}

	for ref, seen := range tx.reads {
		if written[ref] {
			continue
		}
		current, err := currentVersion(ctx, sqlTx, ref, true)
		if err != nil {
			return classify(err)
		}
		if current != seen {
			return domainErr.ErrTxConflict
		}
	}

	for _, w := range writes {
		seen, wasRead := tx.reads[w.ref]
		if err := applyWrite(ctx, sqlTx, w, seen, wasRead); err != nil {
			return classify(err)
		}
	}

	return classify(sqlTx.Commit())
}

// coalesce keeps the last write per row, in first-write order.
func coalesce(writes []pendingWrite) []pendingWrite {
	index := make(map[docRef]int, len(writes))
	var out []pendingWrite
	for _, w := range writes {
		if i, ok := index[w.ref]; ok {
			out[i] = w
			continue
		}
		index[w.ref] = len(out)
		out = append(out, w)
	}
	return out
}

func applyWrite(ctx context.Context, q queryer, w pendingWrite, seen int64, wasRead bool) error {
	t := w.ref.table
	keys := w.ref.keyArgs()

	if w.delete {
		var res sql.Result
		var err error
		if wasRead && seen > 0 {
			res, err = q.ExecContext(ctx, t.deleteQuery(true), append(keys, seen)...)
		} else {
			res, err = q.ExecContext(ctx, t.deleteQuery(false), keys...)
		}
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		switch {
		case wasRead && seen > 0 && n == 0:
			return domainErr.ErrTxConflict
		case wasRead && seen == 0 && n > 0:
			// Row appeared after we saw it absent.
			return domainErr.ErrTxConflict
		}
		return nil
	}

	args := append(keys, w.args...)
	switch {
	case wasRead && seen > 0:
		res, err := q.ExecContext(ctx, t.updateQuery(), append(args, seen)...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domainErr.ErrTxConflict
		}
		return nil
	case wasRead:
		_, err := q.ExecContext(ctx, t.insertQuery(false), args...)
		return err
	default:
		_, err := q.ExecContext(ctx, t.insertQuery(true), args...)
		return err
	}
}

func currentVersion(ctx context.Context, q queryer, ref docRef, lock bool) (int64, error) {
	var version int64
	err := q.QueryRowContext(ctx, ref.table.versionQuery(lock), ref.keyArgs()...).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("db: version check on %s failed: %w", ref.table.name, err)
	}
	return version, nil
}

// classify turns races reported by Postgres into ErrTxConflict.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505", // unique_violation: a row we saw absent was inserted
			"40001", // serialization_failure
			"40P01": // deadlock_detected
			return domainErr.ErrTxConflict
		}
	}
	return err
}
