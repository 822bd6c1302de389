package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDealRow(row rowScanner) (*Deal, error) {
	var d Deal
	err := row.Scan(
		&d.DealID, &d.EscrowerID, &d.EscrowerName, &d.BuyerHandle, &d.SellerHandle,
		&d.Amount, &d.MainAmount, &d.Fee, &d.Remaining, &d.Status, &d.ShiftedTo, &d.CountersApplied,
		&d.FormChatID, &d.FormMessageID, &d.CreatedAt, &d.ClosedAt, &d.ClosedBy,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// InsertDeal stores a new deal record.
func (r *SQLite) InsertDeal(ctx context.Context, deal Deal) error {
	const q = `
INSERT INTO deals (deal_id, escrower_id, escrower_name, buyer_handle, seller_handle,
                   amount, main_amount, fee, remaining, status,
                   form_chat_id, form_message_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := r.db.ExecContext(ctx, q,
		deal.DealID, deal.EscrowerID, deal.EscrowerName, deal.BuyerHandle, deal.SellerHandle,
		deal.Amount, deal.MainAmount, deal.Fee, deal.Remaining, deal.Status,
		deal.FormChatID, deal.FormMessageID, deal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deal: %w", mapSQLiteError(err))
	}
	return nil
}

// GetDeal retrieves a deal by its identifier.
func (r *SQLite) GetDeal(ctx context.Context, dealID string) (*Deal, error) {
	q := `SELECT ` + dealColumns + ` FROM deals WHERE deal_id = ? LIMIT 1;`
	d, err := scanDealRow(r.db.QueryRowContext(ctx, q, dealID))
	if err != nil {
		return nil, fmt.Errorf("get deal: %w", mapSQLiteError(err))
	}
	return d, nil
}

// fetchAfterUpdate reruns the select after a conditional UPDATE, since
// database/sql on SQLite has no RETURNING-driven scan path here.
func (r *SQLite) fetchAfterUpdate(ctx context.Context, res sql.Result, dealID, op string) (*Deal, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	d, err := r.GetDeal(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// CutDeal decrements the remaining hold in a single conditional update.
func (r *SQLite) CutDeal(ctx context.Context, dealID string, amount float64) (*Deal, error) {
	const q = `
UPDATE deals
SET remaining = remaining - ?
WHERE deal_id = ? AND status IN ('pending', 'active') AND remaining >= ?;
`
	res, err := r.db.ExecContext(ctx, q, amount, dealID, amount)
	if err != nil {
		return nil, fmt.Errorf("cut deal: %w", err)
	}
	return r.fetchAfterUpdate(ctx, res, dealID, "cut deal")
}

// ExtendDeal grows the principal and the remaining hold.
func (r *SQLite) ExtendDeal(ctx context.Context, dealID string, amount float64) (*Deal, error) {
	const q = `
UPDATE deals
SET main_amount = main_amount + ?,
    remaining = remaining + ?,
    amount = main_amount + fee + ?
WHERE deal_id = ? AND status IN ('pending', 'active');
`
	res, err := r.db.ExecContext(ctx, q, amount, amount, amount, dealID)
	if err != nil {
		return nil, fmt.Errorf("extend deal: %w", err)
	}
	return r.fetchAfterUpdate(ctx, res, dealID, "extend deal")
}

// CloseDeal transitions an open deal to closed, clamping remaining at zero.
func (r *SQLite) CloseDeal(ctx context.Context, dealID string, release float64, closedBy int64, closedAt time.Time) (*Deal, error) {
	const q = `
UPDATE deals
SET status = 'closed',
    closed_at = ?,
    closed_by = ?,
    remaining = MAX(0, remaining - ?)
WHERE deal_id = ? AND status IN ('pending', 'active');
`
	res, err := r.db.ExecContext(ctx, q, closedAt, closedBy, release, dealID)
	if err != nil {
		return nil, fmt.Errorf("close deal: %w", err)
	}
	return r.fetchAfterUpdate(ctx, res, dealID, "close deal")
}

// CancelDeal voids an active deal.
func (r *SQLite) CancelDeal(ctx context.Context, dealID string) (*Deal, error) {
	const q = `UPDATE deals SET status = 'cancelled' WHERE deal_id = ? AND status = 'active';`
	res, err := r.db.ExecContext(ctx, q, dealID)
	if err != nil {
		return nil, fmt.Errorf("cancel deal: %w", err)
	}
	return r.fetchAfterUpdate(ctx, res, dealID, "cancel deal")
}

// MarkShifted points an open deal at its successor and retires it.
func (r *SQLite) MarkShifted(ctx context.Context, oldDealID, newDealID string) error {
	const q = `
UPDATE deals
SET status = 'shifted', shifted_to = ?
WHERE deal_id = ? AND status IN ('pending', 'active');
`
	res, err := r.db.ExecContext(ctx, q, newDealID, oldDealID)
	if err != nil {
		return fmt.Errorf("mark shifted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark shifted: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark shifted %s: %w", oldDealID, ErrNotFound)
	}
	return nil
}

func (r *SQLite) queryDeals(ctx context.Context, q string, args ...any) ([]Deal, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []Deal
	for rows.Next() {
		d, err := scanDealRow(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *d)
	}
	return deals, rows.Err()
}

// ListOpenDealsByEscrower returns the pending/active deals held by one escrower.
func (r *SQLite) ListOpenDealsByEscrower(ctx context.Context, escrowerID int64) ([]Deal, error) {
	q := `
SELECT ` + dealColumns + `
FROM deals
WHERE escrower_id = ? AND status IN ('pending', 'active')
ORDER BY remaining DESC;`
	deals, err := r.queryDeals(ctx, q, escrowerID)
	if err != nil {
		return nil, fmt.Errorf("list open deals: %w", err)
	}
	return deals, nil
}

// ListClosedUncounted returns closed deals whose counters are still pending.
func (r *SQLite) ListClosedUncounted(ctx context.Context, limit int) ([]Deal, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `
SELECT ` + dealColumns + `
FROM deals
WHERE status = 'closed' AND counters_applied = 0
ORDER BY closed_at ASC
LIMIT ?;`
	deals, err := r.queryDeals(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list closed uncounted: %w", err)
	}
	return deals, nil
}

// ClaimCounters flips counters_applied in a single conditional write.
func (r *SQLite) ClaimCounters(ctx context.Context, dealID string) (bool, error) {
	const q = `
UPDATE deals
SET counters_applied = 1
WHERE deal_id = ? AND status = 'closed' AND counters_applied = 0;
`
	res, err := r.db.ExecContext(ctx, q, dealID)
	if err != nil {
		return false, fmt.Errorf("claim counters: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim counters: rows affected: %w", err)
	}
	return n == 1, nil
}

// IncrementCounters applies one closed deal to every aggregate view in one
// transaction.
func (r *SQLite) IncrementCounters(ctx context.Context, delta CounterDelta) error {
	const upsert = `
INSERT INTO counters (scope, day, group_id, escrower_id, deals, volume_main, fees)
VALUES (?, ?, ?, ?, 1, ?, ?)
ON CONFLICT (scope, day, group_id, escrower_id) DO UPDATE
SET deals = deals + 1,
    volume_main = volume_main + excluded.volume_main,
    fees = fees + excluded.fees;
`
	day := delta.Day.Format("2006-01-02")
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsert, ScopeGlobal, "1970-01-01", 0, 0, delta.VolumeMain, delta.Fees); err != nil {
			return fmt.Errorf("increment global: %w", err)
		}
		if _, err := tx.ExecContext(ctx, upsert, ScopeDaily, day, 0, 0, delta.VolumeMain, delta.Fees); err != nil {
			return fmt.Errorf("increment daily: %w", err)
		}
		if delta.GroupID != 0 {
			if _, err := tx.ExecContext(ctx, upsert, ScopeGroupDaily, day, delta.GroupID, 0, delta.VolumeMain, delta.Fees); err != nil {
				return fmt.Errorf("increment group daily: %w", err)
			}
		}
		if delta.EscrowerID != 0 {
			if _, err := tx.ExecContext(ctx, upsert, ScopeEscrowerDaily, day, 0, delta.EscrowerID, delta.VolumeMain, delta.Fees); err != nil {
				return fmt.Errorf("increment escrower daily: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE legacy_totals SET amount = amount + ?, deals = deals + 1 WHERE id = 1`, delta.VolumeMain); err != nil {
			return fmt.Errorf("increment legacy totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("increment counters: %w", err)
	}
	return nil
}

// GlobalCounters reads the lifetime totals.
func (r *SQLite) GlobalCounters(ctx context.Context) (*CounterTotals, error) {
	const q = `SELECT deals, volume_main, fees FROM counters WHERE scope = 'global' LIMIT 1;`
	var t CounterTotals
	err := r.db.QueryRowContext(ctx, q).Scan(&t.Deals, &t.VolumeMain, &t.Fees)
	if errors.Is(err, sql.ErrNoRows) {
		return &CounterTotals{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("global counters: %w", err)
	}
	return &t, nil
}

// DailyCountersByGroup returns the per-group counters for one day bucket.
func (r *SQLite) DailyCountersByGroup(ctx context.Context, day time.Time) ([]GroupDailyTotals, error) {
	const q = `
SELECT group_id, deals, volume_main, fees
FROM counters
WHERE scope = 'group_daily' AND day = ?
ORDER BY volume_main DESC;
`
	rows, err := r.db.QueryContext(ctx, q, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("daily counters by group: %w", err)
	}
	defer rows.Close()

	var res []GroupDailyTotals
	for rows.Next() {
		var g GroupDailyTotals
		if err := rows.Scan(&g.GroupID, &g.Deals, &g.VolumeMain, &g.Fees); err != nil {
			return nil, fmt.Errorf("scan group daily: %w", err)
		}
		res = append(res, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group daily: %w", err)
	}
	return res, nil
}

// EscrowerDailyCounters returns one escrower's counters for one day bucket.
func (r *SQLite) EscrowerDailyCounters(ctx context.Context, escrowerID int64, day time.Time) (*CounterTotals, error) {
	const q = `
SELECT deals, volume_main, fees
FROM counters
WHERE scope = 'escrower_daily' AND escrower_id = ? AND day = ?
LIMIT 1;
`
	var t CounterTotals
	err := r.db.QueryRowContext(ctx, q, escrowerID, day.Format("2006-01-02")).Scan(&t.Deals, &t.VolumeMain, &t.Fees)
	if errors.Is(err, sql.ErrNoRows) {
		return &CounterTotals{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("escrower daily counters: %w", err)
	}
	return &t, nil
}

// UpsertEscrower grants or refreshes an escrower record.
func (r *SQLite) UpsertEscrower(ctx context.Context, esc Escrower) error {
	now := time.Now().UTC()
	const q = `
INSERT INTO escrowers (user_id, display_name, deal_limit, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE
SET display_name = excluded.display_name,
    deal_limit = excluded.deal_limit,
    updated_at = excluded.updated_at;
`
	if _, err := r.db.ExecContext(ctx, q, esc.UserID, esc.DisplayName, esc.DealLimit, now, now); err != nil {
		return fmt.Errorf("upsert escrower: %w", err)
	}
	return nil
}

// DeleteEscrower revokes an escrower.
func (r *SQLite) DeleteEscrower(ctx context.Context, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM escrowers WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("delete escrower: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete escrower: rows affected: %w", err)
	}
	return n > 0, nil
}

// GetEscrower retrieves one escrower by Telegram user id.
func (r *SQLite) GetEscrower(ctx context.Context, userID int64) (*Escrower, error) {
	const q = `
SELECT user_id, display_name, deal_limit, created_at, updated_at
FROM escrowers
WHERE user_id = ?
LIMIT 1;
`
	var e Escrower
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&e.UserID, &e.DisplayName, &e.DealLimit, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get escrower: %w", mapSQLiteError(err))
	}
	return &e, nil
}

// ListEscrowers returns all escrowers ordered by display name.
func (r *SQLite) ListEscrowers(ctx context.Context) ([]Escrower, error) {
	const q = `
SELECT user_id, display_name, deal_limit, created_at, updated_at
FROM escrowers
ORDER BY display_name ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list escrowers: %w", err)
	}
	defer rows.Close()

	var res []Escrower
	for rows.Next() {
		var e Escrower
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.DealLimit, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan escrower: %w", err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate escrowers: %w", err)
	}
	return res, nil
}

// EnsureUserByHandle registers a handle without overwriting existing fields.
func (r *SQLite) EnsureUserByHandle(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	const q = `
INSERT INTO users (handle, created_at, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (handle) DO NOTHING;
`
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, q, handle, now, now); err != nil {
		return fmt.Errorf("ensure user by handle: %w", err)
	}
	return nil
}

// UpsertUser stores or refreshes a resolved identity.
func (r *SQLite) UpsertUser(ctx context.Context, userID int64, handle, displayName string) error {
	now := time.Now().UTC()
	const q = `
INSERT INTO users (user_id, handle, display_name, created_at, updated_at)
VALUES (?, NULLIF(?, ''), NULLIF(?, ''), ?, ?)
ON CONFLICT (user_id) DO UPDATE
SET handle = COALESCE(NULLIF(excluded.handle, ''), handle),
    display_name = COALESCE(NULLIF(excluded.display_name, ''), display_name),
    updated_at = excluded.updated_at;
`
	if _, err := r.db.ExecContext(ctx, q, userID, handle, displayName, now, now); err != nil {
		return fmt.Errorf("upsert user: %w", mapSQLiteError(err))
	}
	return nil
}

// GetUserByID retrieves a user by Telegram user id.
func (r *SQLite) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	const q = `
SELECT user_id, handle, display_name, legacy_volume, legacy_count, created_at, updated_at
FROM users
WHERE user_id = ?
LIMIT 1;
`
	var u User
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&u.UserID, &u.Handle, &u.DisplayName, &u.LegacyVolume, &u.LegacyCount, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", mapSQLiteError(err))
	}
	return &u, nil
}

// SetLegacyStats records imported pre-migration aggregates for a handle.
func (r *SQLite) SetLegacyStats(ctx context.Context, handle string, volume float64, count int64) error {
	now := time.Now().UTC()
	const q = `
INSERT INTO users (handle, legacy_volume, legacy_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (handle) DO UPDATE
SET legacy_volume = excluded.legacy_volume,
    legacy_count = excluded.legacy_count,
    updated_at = excluded.updated_at;
`
	if _, err := r.db.ExecContext(ctx, q, handle, volume, count, now, now); err != nil {
		return fmt.Errorf("set legacy stats: %w", mapSQLiteError(err))
	}
	return nil
}

// ListLegacyUsers returns users carrying imported pre-migration aggregates.
func (r *SQLite) ListLegacyUsers(ctx context.Context) ([]User, error) {
	const q = `
SELECT user_id, handle, display_name, legacy_volume, legacy_count, created_at, updated_at
FROM users
WHERE legacy_volume > 0 OR legacy_count > 0;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list legacy users: %w", err)
	}
	defer rows.Close()

	var res []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.UserID, &u.Handle, &u.DisplayName, &u.LegacyVolume, &u.LegacyCount, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan legacy user: %w", err)
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legacy users: %w", err)
	}
	return res, nil
}

// ClosedVolumesByParticipant sums closed-deal volume per participant handle.
func (r *SQLite) ClosedVolumesByParticipant(ctx context.Context) ([]ParticipantVolume, error) {
	const q = `
SELECT p.handle, u.user_id, COALESCE(u.display_name, ''), SUM(p.amount)
FROM (
    SELECT buyer_handle AS handle, amount FROM deals WHERE status = 'closed' AND buyer_handle <> ''
    UNION ALL
    SELECT seller_handle AS handle, amount FROM deals WHERE status = 'closed' AND seller_handle <> ''
) p
LEFT JOIN users u ON u.handle = p.handle
GROUP BY p.handle, u.user_id, u.display_name;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("closed volumes by participant: %w", err)
	}
	defer rows.Close()

	var res []ParticipantVolume
	for rows.Next() {
		var v ParticipantVolume
		if err := rows.Scan(&v.Handle, &v.UserID, &v.DisplayName, &v.Volume); err != nil {
			return nil, fmt.Errorf("scan participant volume: %w", err)
		}
		res = append(res, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participant volumes: %w", err)
	}
	return res, nil
}

// ClosedTotals aggregates closed deals live from the deals table.
func (r *SQLite) ClosedTotals(ctx context.Context) (*DealSummary, error) {
	const q = `
SELECT COUNT(*), COALESCE(SUM(fee), 0), COALESCE(SUM(main_amount), 0)
FROM deals
WHERE status = 'closed';
`
	var s DealSummary
	if err := r.db.QueryRowContext(ctx, q).Scan(&s.Deals, &s.Fees, &s.VolumeMain); err != nil {
		return nil, fmt.Errorf("closed totals: %w", err)
	}
	return &s, nil
}

// HoldingsByEscrower sums the remaining hold over open deals per escrower.
func (r *SQLite) HoldingsByEscrower(ctx context.Context) ([]EscrowerHolding, error) {
	const q = `
SELECT escrower_id, escrower_name, SUM(remaining)
FROM deals
WHERE status IN ('pending', 'active')
GROUP BY escrower_id, escrower_name
ORDER BY escrower_name ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("holdings by escrower: %w", err)
	}
	defer rows.Close()

	var res []EscrowerHolding
	for rows.Next() {
		var h EscrowerHolding
		if err := rows.Scan(&h.EscrowerID, &h.EscrowerName, &h.Hold); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		res = append(res, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holdings: %w", err)
	}
	return res, nil
}

// FeesByEscrower sums fees over closed deals per escrower, highest first.
func (r *SQLite) FeesByEscrower(ctx context.Context) ([]EscrowerFees, error) {
	const q = `
SELECT escrower_id, escrower_name, SUM(fee), COUNT(*)
FROM deals
WHERE status = 'closed'
GROUP BY escrower_id, escrower_name
ORDER BY SUM(fee) DESC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fees by escrower: %w", err)
	}
	defer rows.Close()

	var res []EscrowerFees
	for rows.Next() {
		var f EscrowerFees
		if err := rows.Scan(&f.EscrowerID, &f.EscrowerName, &f.TotalFees, &f.Deals); err != nil {
			return nil, fmt.Errorf("scan escrower fees: %w", err)
		}
		res = append(res, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate escrower fees: %w", err)
	}
	return res, nil
}

// UserClosedStats aggregates one participant's closed deals by handle.
func (r *SQLite) UserClosedStats(ctx context.Context, handle string) (*DealSummary, error) {
	const q = `
SELECT COUNT(*), COALESCE(SUM(fee), 0), COALESCE(SUM(amount), 0)
FROM deals
WHERE status = 'closed' AND (buyer_handle = ? OR seller_handle = ?);
`
	var s DealSummary
	if err := r.db.QueryRowContext(ctx, q, handle, handle).Scan(&s.Deals, &s.Fees, &s.VolumeMain); err != nil {
		return nil, fmt.Errorf("user closed stats: %w", err)
	}
	return &s, nil
}

// EscrowerClosedBetween aggregates an escrower's deals closed in [from, to).
func (r *SQLite) EscrowerClosedBetween(ctx context.Context, escrowerID int64, from, to time.Time) (*DealSummary, error) {
	const q = `
SELECT COUNT(*), COALESCE(SUM(fee), 0), COALESCE(SUM(main_amount), 0)
FROM deals
WHERE escrower_id = ? AND status = 'closed' AND closed_at >= ? AND closed_at < ?;
`
	var s DealSummary
	if err := r.db.QueryRowContext(ctx, q, escrowerID, from, to).Scan(&s.Deals, &s.Fees, &s.VolumeMain); err != nil {
		return nil, fmt.Errorf("escrower closed between: %w", err)
	}
	return &s, nil
}

// InsertClosureLog stores one closure audit record.
func (r *SQLite) InsertClosureLog(ctx context.Context, entry ClosureLog) error {
	const q = `
INSERT INTO closure_log (id, deal_id, escrower_id, escrower_name, buyer_masked, seller_masked,
                         amount, total_volume, total_deals, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := r.db.ExecContext(ctx, q,
		entry.ID, entry.DealID, entry.EscrowerID, entry.EscrowerName, entry.BuyerMasked, entry.SellerMasked,
		entry.Amount, entry.TotalVolume, entry.TotalDeals, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert closure log: %w", err)
	}
	return nil
}
