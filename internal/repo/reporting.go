package repo

import (
	"context"
	"fmt"
	"time"
)

// ClosedVolumesByParticipant sums the display amount of closed deals per
// participant handle, resolving handles to user identities where known.
func (r *Postgres) ClosedVolumesByParticipant(ctx context.Context) ([]ParticipantVolume, error) {
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
	rows, err := r.pool.Query(ctx, q)
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

// ClosedTotals aggregates closed deals live from the deals table. Used as the
// fallback when the global counter is uninitialised.
func (r *Postgres) ClosedTotals(ctx context.Context) (*DealSummary, error) {
	const q = `
SELECT COUNT(*), COALESCE(SUM(fee), 0), COALESCE(SUM(main_amount), 0)
FROM deals
WHERE status = 'closed';
`
	var s DealSummary
	if err := r.pool.QueryRow(ctx, q).Scan(&s.Deals, &s.Fees, &s.VolumeMain); err != nil {
		return nil, fmt.Errorf("closed totals: %w", err)
	}
	return &s, nil
}

// HoldingsByEscrower sums the remaining hold over open deals per escrower.
// This is the live exposure view, not a lifetime total.
func (r *Postgres) HoldingsByEscrower(ctx context.Context) ([]EscrowerHolding, error) {
	const q = `
SELECT escrower_id, escrower_name, SUM(remaining)
FROM deals
WHERE status IN ('pending', 'active')
GROUP BY escrower_id, escrower_name
ORDER BY escrower_name ASC;
`
	rows, err := r.pool.Query(ctx, q)
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
func (r *Postgres) FeesByEscrower(ctx context.Context) ([]EscrowerFees, error) {
	const q = `
SELECT escrower_id, escrower_name, SUM(fee), COUNT(*)
FROM deals
WHERE status = 'closed'
GROUP BY escrower_id, escrower_name
ORDER BY SUM(fee) DESC;
`
	rows, err := r.pool.Query(ctx, q)
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
func (r *Postgres) UserClosedStats(ctx context.Context, handle string) (*DealSummary, error) {
	const q = `
SELECT COUNT(*), COALESCE(SUM(fee), 0), COALESCE(SUM(amount), 0)
FROM deals
WHERE status = 'closed' AND (buyer_handle = $1 OR seller_handle = $1);
`
	var s DealSummary
	if err := r.pool.QueryRow(ctx, q, handle).Scan(&s.Deals, &s.Fees, &s.VolumeMain); err != nil {
		return nil, fmt.Errorf("user closed stats: %w", err)
	}
	return &s, nil
}

// EscrowerClosedBetween aggregates an escrower's deals closed in [from, to).
func (r *Postgres) EscrowerClosedBetween(ctx context.Context, escrowerID int64, from, to time.Time) (*DealSummary, error) {
	const q = `
SELECT COUNT(*), COALESCE(SUM(fee), 0), COALESCE(SUM(main_amount), 0)
FROM deals
WHERE escrower_id = $1 AND status = 'closed' AND closed_at >= $2 AND closed_at < $3;
`
	var s DealSummary
	if err := r.pool.QueryRow(ctx, q, escrowerID, from, to).Scan(&s.Deals, &s.Fees, &s.VolumeMain); err != nil {
		return nil, fmt.Errorf("escrower closed between: %w", err)
	}
	return &s, nil
}
