// Package report persists completed work records and serves the
// recent-entries read behind the status flow.
package report

import (
	"context"

	"worklog-bot/internal/flow"
)

// Recorder is the persistence collaborator. Save failures surface to
// the caller for logging; retry policy belongs to implementations, not
// to the conversation core.
type Recorder interface {
	Save(ctx context.Context, rec flow.CompletedRecord) error
	Recent(ctx context.Context, userID string, n int) ([]flow.CompletedRecord, error)
}
