package repo

import (
	"context"
	"fmt"
)

// EnsureUserByHandle registers a handle as a known user without overwriting
// anything on an existing record.
func (r *Postgres) EnsureUserByHandle(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	const q = `
INSERT INTO users (handle)
VALUES ($1)
ON CONFLICT (handle) DO NOTHING;
`
	if _, err := r.pool.Exec(ctx, q, handle); err != nil {
		return fmt.Errorf("ensure user by handle: %w", err)
	}
	return nil
}

// UpsertUser stores or refreshes a resolved identity. The numeric id is the
// natural key; handle and display name are refreshed when non-empty.
func (r *Postgres) UpsertUser(ctx context.Context, userID int64, handle, displayName string) error {
	const q = `
INSERT INTO users (user_id, handle, display_name)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
ON CONFLICT (user_id) DO UPDATE
SET handle = COALESCE(NULLIF(EXCLUDED.handle, ''), users.handle),
    display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
    updated_at = NOW();
`
	if _, err := r.pool.Exec(ctx, q, userID, handle, displayName); err != nil {
		return fmt.Errorf("upsert user: %w", mapPgError(err))
	}
	return nil
}

// GetUserByID retrieves a user by Telegram user id.
func (r *Postgres) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	const q = `
SELECT user_id, handle, display_name, legacy_volume, legacy_count, created_at, updated_at
FROM users
WHERE user_id = $1
LIMIT 1;
`
	var u User
	err := r.pool.QueryRow(ctx, q, userID).Scan(&u.UserID, &u.Handle, &u.DisplayName, &u.LegacyVolume, &u.LegacyCount, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", mapPgError(err))
	}
	return &u, nil
}

// SetLegacyStats records imported pre-migration aggregates for a handle,
// creating the user row if needed. Used by the legacy import tooling.
func (r *Postgres) SetLegacyStats(ctx context.Context, handle string, volume float64, count int64) error {
	const q = `
INSERT INTO users (handle, legacy_volume, legacy_count)
VALUES ($1, $2, $3)
ON CONFLICT (handle) DO UPDATE
SET legacy_volume = EXCLUDED.legacy_volume,
    legacy_count = EXCLUDED.legacy_count,
    updated_at = NOW();
`
	if _, err := r.pool.Exec(ctx, q, handle, volume, count); err != nil {
		return fmt.Errorf("set legacy stats: %w", mapPgError(err))
	}
	return nil
}

// ListLegacyUsers returns users carrying imported pre-migration aggregates.
func (r *Postgres) ListLegacyUsers(ctx context.Context) ([]User, error) {
	const q = `
SELECT user_id, handle, display_name, legacy_volume, legacy_count, created_at, updated_at
FROM users
WHERE legacy_volume > 0 OR legacy_count > 0;
`
	rows, err := r.pool.Query(ctx, q)
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

// InsertClosureLog stores one closure audit record.
func (r *Postgres) InsertClosureLog(ctx context.Context, entry ClosureLog) error {
	const q = `
INSERT INTO closure_log (id, deal_id, escrower_id, escrower_name, buyer_masked, seller_masked,
                         amount, total_volume, total_deals, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
	_, err := r.pool.Exec(ctx, q,
		entry.ID, entry.DealID, entry.EscrowerID, entry.EscrowerName, entry.BuyerMasked, entry.SellerMasked,
		entry.Amount, entry.TotalVolume, entry.TotalDeals, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert closure log: %w", err)
	}
	return nil
}
