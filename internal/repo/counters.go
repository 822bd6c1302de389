package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ClaimCounters flips counters_applied in a single conditional write. It is
// the sole concurrency gate for the counters ledger: exactly one caller per
// deal observes true.
func (r *Postgres) ClaimCounters(ctx context.Context, dealID string) (bool, error) {
	const q = `
UPDATE deals
SET counters_applied = TRUE
WHERE deal_id = $1 AND status = 'closed' AND counters_applied = FALSE;
`
	ct, err := r.pool.Exec(ctx, q, dealID)
	if err != nil {
		return false, fmt.Errorf("claim counters: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// IncrementCounters applies one closed deal to every aggregate view inside a
// single transaction: global lifetime, daily, per-group daily, per-escrower
// daily, plus the legacy flat counter kept for backward-compatible reads.
func (r *Postgres) IncrementCounters(ctx context.Context, delta CounterDelta) error {
	const upsert = `
INSERT INTO counters (scope, day, group_id, escrower_id, deals, volume_main, fees)
VALUES ($1, $2, $3, $4, 1, $5, $6)
ON CONFLICT (scope, day, group_id, escrower_id) DO UPDATE
SET deals = counters.deals + 1,
    volume_main = counters.volume_main + EXCLUDED.volume_main,
    fees = counters.fees + EXCLUDED.fees;
`
	day := delta.Day.Format("2006-01-02")
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsert, ScopeGlobal, "1970-01-01", 0, 0, delta.VolumeMain, delta.Fees); err != nil {
			return fmt.Errorf("increment global: %w", err)
		}
		if _, err := tx.Exec(ctx, upsert, ScopeDaily, day, 0, 0, delta.VolumeMain, delta.Fees); err != nil {
			return fmt.Errorf("increment daily: %w", err)
		}
		if delta.GroupID != 0 {
			if _, err := tx.Exec(ctx, upsert, ScopeGroupDaily, day, delta.GroupID, 0, delta.VolumeMain, delta.Fees); err != nil {
				return fmt.Errorf("increment group daily: %w", err)
			}
		}
		if delta.EscrowerID != 0 {
			if _, err := tx.Exec(ctx, upsert, ScopeEscrowerDaily, day, 0, delta.EscrowerID, delta.VolumeMain, delta.Fees); err != nil {
				return fmt.Errorf("increment escrower daily: %w", err)
			}
		}
		if _, err := tx.Exec(ctx, `UPDATE legacy_totals SET amount = amount + $1, deals = deals + 1 WHERE id = 1`, delta.VolumeMain); err != nil {
			return fmt.Errorf("increment legacy totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("increment counters: %w", err)
	}
	return nil
}

// GlobalCounters reads the lifetime totals. An uninitialised counter reads as
// all zeros, not an error.
func (r *Postgres) GlobalCounters(ctx context.Context) (*CounterTotals, error) {
	const q = `SELECT deals, volume_main, fees FROM counters WHERE scope = 'global' LIMIT 1;`
	var t CounterTotals
	err := r.pool.QueryRow(ctx, q).Scan(&t.Deals, &t.VolumeMain, &t.Fees)
	if errors.Is(err, pgx.ErrNoRows) {
		return &CounterTotals{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("global counters: %w", err)
	}
	return &t, nil
}

// DailyCountersByGroup returns the per-group counters for one day bucket.
func (r *Postgres) DailyCountersByGroup(ctx context.Context, day time.Time) ([]GroupDailyTotals, error) {
	const q = `
SELECT group_id, deals, volume_main, fees
FROM counters
WHERE scope = 'group_daily' AND day = $1
ORDER BY volume_main DESC;
`
	rows, err := r.pool.Query(ctx, q, day.Format("2006-01-02"))
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
func (r *Postgres) EscrowerDailyCounters(ctx context.Context, escrowerID int64, day time.Time) (*CounterTotals, error) {
	const q = `
SELECT deals, volume_main, fees
FROM counters
WHERE scope = 'escrower_daily' AND escrower_id = $1 AND day = $2
LIMIT 1;
`
	var t CounterTotals
	err := r.pool.QueryRow(ctx, q, escrowerID, day.Format("2006-01-02")).Scan(&t.Deals, &t.VolumeMain, &t.Fees)
	if errors.Is(err, pgx.ErrNoRows) {
		return &CounterTotals{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("escrower daily counters: %w", err)
	}
	return &t, nil
}
