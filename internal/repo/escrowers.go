package repo

import (
	"context"
	"fmt"
)

// UpsertEscrower grants or refreshes an escrower record, refreshing the
// display name and deal limit every time.
func (r *Postgres) UpsertEscrower(ctx context.Context, esc Escrower) error {
	const q = `
INSERT INTO escrowers (user_id, display_name, deal_limit)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET display_name = EXCLUDED.display_name,
    deal_limit = EXCLUDED.deal_limit,
    updated_at = NOW();
`
	if _, err := r.pool.Exec(ctx, q, esc.UserID, esc.DisplayName, esc.DealLimit); err != nil {
		return fmt.Errorf("upsert escrower: %w", err)
	}
	return nil
}

// DeleteEscrower revokes an escrower. Returns false when no record existed.
func (r *Postgres) DeleteEscrower(ctx context.Context, userID int64) (bool, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM escrowers WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("delete escrower: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// GetEscrower retrieves one escrower by Telegram user id.
func (r *Postgres) GetEscrower(ctx context.Context, userID int64) (*Escrower, error) {
	const q = `
SELECT user_id, display_name, deal_limit, created_at, updated_at
FROM escrowers
WHERE user_id = $1
LIMIT 1;
`
	var e Escrower
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&e.UserID, &e.DisplayName, &e.DealLimit, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, fmt.Errorf("get escrower: %w", mapPgError(err))
	}
	return &e, nil
}

// ListEscrowers returns all escrowers ordered by display name.
func (r *Postgres) ListEscrowers(ctx context.Context) ([]Escrower, error) {
	const q = `
SELECT user_id, display_name, deal_limit, created_at, updated_at
FROM escrowers
ORDER BY display_name ASC;
`
	rows, err := r.pool.Query(ctx, q)
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
