package repo

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplyMigrations executes the root-level *.sql files against the provided
// pool. Glob returns them sorted, so numeric prefixes define the order;
// driver-specific variants live in subdirectories and are not matched.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, filesystem fs.FS) error {
	names, err := fs.Glob(filesystem, "*.sql")
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}

	for _, name := range names {
		sqlBytes, err := fs.ReadFile(filesystem, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, string(sqlBytes))
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
