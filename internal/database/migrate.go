// internal/database/migrate.go
//
// Minimal forward-only migrations.
//
// Every component hands over an ordered list of DDL statements.  Applied
// statements are recorded in `adept_migrations(owner, step)` so re-running
// `migrate` only executes the tail that is new.  Each owner runs in one
// transaction; a failing statement rolls the whole batch back.

package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const ledgerDDL = `CREATE TABLE IF NOT EXISTS adept_migrations (
	owner VARCHAR(64) NOT NULL,
	step  INTEGER     NOT NULL,
	PRIMARY KEY (owner, step)
)`

// Migrate applies stmts[n:] where n is the number already recorded for
// owner.  It returns how many statements ran.
func Migrate(ctx context.Context, db *sqlx.DB, owner string, stmts []string) (int, error) {
	if len(stmts) == 0 {
		return 0, nil
	}
	if _, err := db.ExecContext(ctx, ledgerDDL); err != nil {
		return 0, fmt.Errorf("migrate ledger: %w", err)
	}

	var done int
	q := db.Rebind(`SELECT COUNT(*) FROM adept_migrations WHERE owner = ?`)
	if err := db.GetContext(ctx, &done, q, owner); err != nil {
		return 0, fmt.Errorf("migrate %s: %w", owner, err)
	}
	if done >= len(stmts) {
		return 0, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	ins := db.Rebind(`INSERT INTO adept_migrations (owner, step) VALUES (?, ?)`)
	for i := done; i < len(stmts); i++ {
		if _, err := tx.ExecContext(ctx, stmts[i]); err != nil {
			return 0, fmt.Errorf("migrate %s step %d: %w", owner, i+1, err)
		}
		if _, err := tx.ExecContext(ctx, ins, owner, i+1); err != nil {
			return 0, fmt.Errorf("migrate %s record %d: %w", owner, i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	n := len(stmts) - done
	zap.L().Info("migrations applied", zap.String("owner", owner), zap.Int("count", n))
	return n, nil
}
