// package history keeps a durable record of completed migration runs so
// operators can audit what was cloned, when, and with what outcome counts.
package history

import (
	"fmt"
	"time"

	"tgclone/internal/shared"
)

// Run is one completed migration: source, destination, and outcome counts.
type Run struct {
	ID               string
	SourceID         int64
	SourceTitle      string
	DestID           int64
	DestTitle        string
	Copied           int
	MediaTransferred int
	MediaFallback    int
	Skipped          int
	Errors           int
	StartedAt        time.Time
	FinishedAt       time.Time
}

// NewRun creates a Run with a generated ID.
func NewRun(sourceID int64, sourceTitle string, destID int64, destTitle string) *Run {
	return &Run{
		ID:          shared.GenerateID(),
		SourceID:    sourceID,
		SourceTitle: sourceTitle,
		DestID:      destID,
		DestTitle:   destTitle,
	}
}

// Validate checks the run's data before persistence.
func (r *Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: run id", shared.ErrInvalidInput)
	}
	if r.SourceID == 0 {
		return fmt.Errorf("%w: source id", shared.ErrInvalidInput)
	}
	if r.DestTitle == "" {
		return fmt.Errorf("%w: destination title", shared.ErrInvalidInput)
	}
	if r.FinishedAt.Before(r.StartedAt) {
		return fmt.Errorf("%w: finished before started", shared.ErrInvalidInput)
	}
	return nil
}
