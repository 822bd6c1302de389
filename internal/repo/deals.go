package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const dealColumns = `deal_id, escrower_id, escrower_name, buyer_handle, seller_handle,
amount, main_amount, fee, remaining, status, shifted_to, counters_applied,
form_chat_id, form_message_id, created_at, closed_at, closed_by`

func scanDeal(row pgx.Row) (*Deal, error) {
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

// InsertDeal stores a new deal record. Returns ErrDuplicate when the deal id
// collides, so callers can retry with a fresh one.
func (r *Postgres) InsertDeal(ctx context.Context, deal Deal) error {
	const q = `
INSERT INTO deals (deal_id, escrower_id, escrower_name, buyer_handle, seller_handle,
                   amount, main_amount, fee, remaining, status,
                   form_chat_id, form_message_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`
	_, err := r.pool.Exec(ctx, q,
		deal.DealID, deal.EscrowerID, deal.EscrowerName, deal.BuyerHandle, deal.SellerHandle,
		deal.Amount, deal.MainAmount, deal.Fee, deal.Remaining, deal.Status,
		deal.FormChatID, deal.FormMessageID, deal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deal: %w", mapPgError(err))
	}
	return nil
}

// GetDeal retrieves a deal by its identifier.
func (r *Postgres) GetDeal(ctx context.Context, dealID string) (*Deal, error) {
	q := `SELECT ` + dealColumns + ` FROM deals WHERE deal_id = $1 LIMIT 1;`
	d, err := scanDeal(r.pool.QueryRow(ctx, q, dealID))
	if err != nil {
		return nil, fmt.Errorf("get deal: %w", mapPgError(err))
	}
	return d, nil
}

// CutDeal decrements the remaining hold in a single conditional update.
// The WHERE clause rejects the cut server-side when the deal is not open or
// the amount exceeds the remaining hold, so concurrent cuts cannot overdraw.
func (r *Postgres) CutDeal(ctx context.Context, dealID string, amount float64) (*Deal, error) {
	q := `
UPDATE deals
SET remaining = remaining - $2
WHERE deal_id = $1 AND status IN ('pending', 'active') AND remaining >= $2
RETURNING ` + dealColumns + `;`
	d, err := scanDeal(r.pool.QueryRow(ctx, q, dealID, amount))
	if err != nil {
		return nil, fmt.Errorf("cut deal: %w", mapPgError(err))
	}
	return d, nil
}

// ExtendDeal grows the principal and the remaining hold; the fee is unchanged
// and the display amount keeps tracking main_amount + fee.
func (r *Postgres) ExtendDeal(ctx context.Context, dealID string, amount float64) (*Deal, error) {
	q := `
UPDATE deals
SET main_amount = main_amount + $2,
    remaining = remaining + $2,
    amount = main_amount + fee + $2
WHERE deal_id = $1 AND status IN ('pending', 'active')
RETURNING ` + dealColumns + `;`
	d, err := scanDeal(r.pool.QueryRow(ctx, q, dealID, amount))
	if err != nil {
		return nil, fmt.Errorf("extend deal: %w", mapPgError(err))
	}
	return d, nil
}

// CloseDeal transitions an open deal to closed, decrementing the remaining
// hold by the release amount clamped at zero.
func (r *Postgres) CloseDeal(ctx context.Context, dealID string, release float64, closedBy int64, closedAt time.Time) (*Deal, error) {
	q := `
UPDATE deals
SET status = 'closed',
    closed_at = $3,
    closed_by = $4,
    remaining = GREATEST(0, remaining - $2)
WHERE deal_id = $1 AND status IN ('pending', 'active')
RETURNING ` + dealColumns + `;`
	d, err := scanDeal(r.pool.QueryRow(ctx, q, dealID, release, closedAt, closedBy))
	if err != nil {
		return nil, fmt.Errorf("close deal: %w", mapPgError(err))
	}
	return d, nil
}

// CancelDeal voids an active deal. No counter effect.
func (r *Postgres) CancelDeal(ctx context.Context, dealID string) (*Deal, error) {
	q := `
UPDATE deals
SET status = 'cancelled'
WHERE deal_id = $1 AND status = 'active'
RETURNING ` + dealColumns + `;`
	d, err := scanDeal(r.pool.QueryRow(ctx, q, dealID))
	if err != nil {
		return nil, fmt.Errorf("cancel deal: %w", mapPgError(err))
	}
	return d, nil
}

// MarkShifted points an open deal at its successor and retires it.
func (r *Postgres) MarkShifted(ctx context.Context, oldDealID, newDealID string) error {
	const q = `
UPDATE deals
SET status = 'shifted', shifted_to = $2
WHERE deal_id = $1 AND status IN ('pending', 'active');
`
	ct, err := r.pool.Exec(ctx, q, oldDealID, newDealID)
	if err != nil {
		return fmt.Errorf("mark shifted: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("mark shifted %s: %w", oldDealID, ErrNotFound)
	}
	return nil
}

// ListOpenDealsByEscrower returns the pending/active deals held by one escrower.
func (r *Postgres) ListOpenDealsByEscrower(ctx context.Context, escrowerID int64) ([]Deal, error) {
	q := `
SELECT ` + dealColumns + `
FROM deals
WHERE escrower_id = $1 AND status IN ('pending', 'active')
ORDER BY remaining DESC;`
	rows, err := r.pool.Query(ctx, q, escrowerID)
	if err != nil {
		return nil, fmt.Errorf("list open deals: %w", err)
	}
	defer rows.Close()

	var deals []Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan open deal: %w", err)
		}
		deals = append(deals, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate open deals: %w", err)
	}
	return deals, nil
}

// ListClosedUncounted returns closed deals whose counters have not been
// applied yet. Used by the backfill endpoint.
func (r *Postgres) ListClosedUncounted(ctx context.Context, limit int) ([]Deal, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `
SELECT ` + dealColumns + `
FROM deals
WHERE status = 'closed' AND counters_applied = FALSE
ORDER BY closed_at ASC
LIMIT $1;`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list closed uncounted: %w", err)
	}
	defer rows.Close()

	var deals []Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan closed uncounted: %w", err)
		}
		deals = append(deals, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closed uncounted: %w", err)
	}
	return deals, nil
}
