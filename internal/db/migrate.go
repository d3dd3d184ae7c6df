package db

import (
	"context"
	"database/sql"
)

const reportsMigration = `
CREATE TABLE IF NOT EXISTS reports (
    id uuid PRIMARY KEY,
    user_id text NOT NULL,
    work text NOT NULL,
    shift text NOT NULL,
    hours text NOT NULL,
    recorded_at timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS reports_user_recorded_idx
ON reports (user_id, recorded_at DESC);
`

// RunMigration creates the reports schema. Idempotent, so it runs on
// every startup.
func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, reportsMigration)
	return err
}
