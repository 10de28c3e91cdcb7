package storage

import (
	"time"

	"rail-controls/internal/domain"
)

// RunRecord summarises one completed evaluation run.
type RunRecord struct {
	ID          int64
	RunTS       time.Time
	TxCount     int
	HitCount    int
	BlockCount  int
	ReviewCount int
	CreatedAt   time.Time
}

// DecisionRow is a persisted decision together with its run context.
type DecisionRow struct {
	RunID     int64
	Decision  domain.Decision
	CreatedAt time.Time
}
