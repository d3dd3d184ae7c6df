package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"worklog-bot/internal/db"
	"worklog-bot/internal/flow"
)

// PostgresRecorder stores records in the reports table created by the
// db migration.
type PostgresRecorder struct {
	db *db.DB
}

func NewPostgresRecorder(database *db.DB) *PostgresRecorder {
	return &PostgresRecorder{db: database}
}

func (p *PostgresRecorder) Save(ctx context.Context, rec flow.CompletedRecord) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO reports (id, user_id, work, shift, hours, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), rec.UserID, rec.Work, rec.Shift, rec.Hours, rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("report: failed to insert record: %w", err)
	}
	return nil
}

func (p *PostgresRecorder) Recent(ctx context.Context, userID string, n int) ([]flow.CompletedRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT user_id, work, shift, hours, recorded_at
		FROM reports
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2`,
		userID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("report: failed to query records: %w", err)
	}
	defer rows.Close()

	var out []flow.CompletedRecord
	for rows.Next() {
		var rec flow.CompletedRecord
		if err := rows.Scan(&rec.UserID, &rec.Work, &rec.Shift, &rec.Hours, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("report: failed to scan record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
