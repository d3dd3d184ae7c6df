package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"worklog-bot/internal/flow"
)

// reportRow is the gorm model behind the SQLite backend. Columns match
// the Postgres schema so downstream consumers see one shape.
type reportRow struct {
	ID         string `gorm:"primaryKey"`
	UserID     string `gorm:"index:idx_reports_user_recorded,priority:1"`
	Work       string
	Shift      string
	Hours      string
	RecordedAt time.Time `gorm:"index:idx_reports_user_recorded,priority:2"`
}

func (reportRow) TableName() string { return "reports" }

// SQLiteRecorder is the default local backend: a single database file,
// no external services.
type SQLiteRecorder struct {
	db *gorm.DB
}

// NewSQLiteRecorder opens the database file, creating it if needed,
// and migrates the reports table.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("report: failed to open sqlite db: %w", err)
	}

	gdb.Exec("PRAGMA journal_mode=WAL")
	gdb.Exec("PRAGMA busy_timeout=5000")
	gdb.Exec("PRAGMA synchronous=NORMAL")

	if err := gdb.AutoMigrate(&reportRow{}); err != nil {
		return nil, fmt.Errorf("report: failed to migrate reports table: %w", err)
	}
	return &SQLiteRecorder{db: gdb}, nil
}

func (s *SQLiteRecorder) Save(ctx context.Context, rec flow.CompletedRecord) error {
	row := reportRow{
		ID:         uuid.NewString(),
		UserID:     rec.UserID,
		Work:       rec.Work,
		Shift:      rec.Shift,
		Hours:      rec.Hours,
		RecordedAt: rec.RecordedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("report: failed to insert record: %w", err)
	}
	return nil
}

func (s *SQLiteRecorder) Recent(ctx context.Context, userID string, n int) ([]flow.CompletedRecord, error) {
	var rows []reportRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("report: failed to query records: %w", err)
	}

	out := make([]flow.CompletedRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, flow.CompletedRecord{
			UserID:     r.UserID,
			Work:       r.Work,
			Shift:      r.Shift,
			Hours:      r.Hours,
			RecordedAt: r.RecordedAt,
		})
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *SQLiteRecorder) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
