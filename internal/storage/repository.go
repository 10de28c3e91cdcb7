package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rail-controls/internal/domain"
	"rail-controls/internal/engine"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertRunSQL = `INSERT INTO control_runs (
        run_ts,
        tx_count,
        hit_count,
        block_count,
        review_count
    ) VALUES (
        $1,$2,$3,$4,$5
    )
    RETURNING id;`

	listRecentDecisionsSQL = `SELECT
        d.run_id,
        d.tx_id,
        d.rail,
        d.ts,
        d.user_id,
        d.amount,
        d.is_fraud_pattern,
        d.final_action,
        d.triggered_controls,
        d.triggered_actions,
        r.created_at
    FROM control_decisions d
    JOIN control_runs r ON r.id = d.run_id
    WHERE d.run_id = (SELECT MAX(id) FROM control_runs)
    ORDER BY CASE d.final_action WHEN 'BLOCK' THEN 2 WHEN 'REVIEW' THEN 1 ELSE 0 END DESC, d.tx_id
    LIMIT $1;`

	listRecentRunsSQL = `SELECT
        id,
        run_ts,
        tx_count,
        hit_count,
        block_count,
        review_count,
        created_at
    FROM control_runs
    ORDER BY id DESC
    LIMIT $1;`
)

// RunSink persists the full output of one evaluation run.
type RunSink interface {
	PersistRun(ctx context.Context, runTS time.Time, result engine.Result) (int64, error)
}

// RunLister reads back persisted runs and decisions.
type RunLister interface {
	ListRecentDecisions(ctx context.Context, limit int) ([]DecisionRow, error)
	ListRecentRuns(ctx context.Context, limit int) ([]RunRecord, error)
}

// Store aggregates access to persisted runs, decisions, hits, and metrics.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ RunSink   = (*Store)(nil)
	_ RunLister = (*Store)(nil)
)

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// PersistRun writes the run header plus all three output tables inside one
// transaction, so a failed run leaves no partial audit trail.
func (s *Store) PersistRun(ctx context.Context, runTS time.Time, result engine.Result) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	blockCount, reviewCount := 0, 0
	for _, d := range result.Decisions {
		switch d.FinalAction {
		case domain.ActionBlock:
			blockCount++
		case domain.ActionReview:
			reviewCount++
		}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin run transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	if err := tx.QueryRow(ctx, insertRunSQL,
		runTS,
		len(result.Decisions),
		len(result.Hits),
		blockCount,
		reviewCount,
	).Scan(&runID); err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	if err := copyDecisions(ctx, tx, runID, result.Decisions); err != nil {
		return 0, err
	}
	if err := copyHits(ctx, tx, runID, result.Hits); err != nil {
		return 0, err
	}
	if err := copyMetrics(ctx, tx, runID, result.Metrics); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

func copyDecisions(ctx context.Context, tx pgx.Tx, runID int64, decisions []domain.Decision) error {
	rows := make([][]any, 0, len(decisions))
	for _, d := range decisions {
		rows = append(rows, []any{
			runID, d.TxID, string(d.Rail), d.Timestamp, d.UserID, d.Amount,
			d.IsFraudPattern, string(d.FinalAction), d.TriggeredControls, d.TriggeredActions,
		})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"control_decisions"},
		[]string{"run_id", "tx_id", "rail", "ts", "user_id", "amount", "is_fraud_pattern", "final_action", "triggered_controls", "triggered_actions"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy decisions: %w", err)
	}
	return nil
}

func copyHits(ctx context.Context, tx pgx.Tx, runID int64, hits []domain.Hit) error {
	rows := make([][]any, 0, len(hits))
	for _, h := range hits {
		rows = append(rows, []any{
			runID, h.TxID, string(h.Rail), h.ControlID, h.Severity, string(h.Action), h.Description,
		})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"control_hits"},
		[]string{"run_id", "tx_id", "rail", "control_id", "severity", "action", "description"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy hits: %w", err)
	}
	return nil
}

func copyMetrics(ctx context.Context, tx pgx.Tx, runID int64, metrics []domain.Metric) error {
	rows := make([][]any, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []any{
			runID, m.ControlID, m.Hits, m.HitRate.String(), m.PrecisionProxy.String(),
		})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"control_metrics"},
		[]string{"run_id", "control_id", "hits", "hit_rate", "precision_proxy"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy metrics: %w", err)
	}
	return nil
}

// ListRecentDecisions lists decisions of the latest persisted run, most
// severe actions first.
func (s *Store) ListRecentDecisions(ctx context.Context, limit int) ([]DecisionRow, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentDecisionsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent decisions: %w", queryErr)
	}
	defer rows.Close()

	out := make([]DecisionRow, 0, limit)
	for rows.Next() {
		var row DecisionRow
		var rail, action string
		if err := rows.Scan(
			&row.RunID,
			&row.Decision.TxID,
			&rail,
			&row.Decision.Timestamp,
			&row.Decision.UserID,
			&row.Decision.Amount,
			&row.Decision.IsFraudPattern,
			&action,
			&row.Decision.TriggeredControls,
			&row.Decision.TriggeredActions,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		row.Decision.Rail = domain.Rail(rail)
		row.Decision.FinalAction = domain.Action(action)
		out = append(out, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// ListRecentRuns lists the most recent run headers.
func (s *Store) ListRecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentRunsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent runs: %w", queryErr)
	}
	defer rows.Close()

	runs := make([]RunRecord, 0, limit)
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.RunTS,
			&rec.TxCount,
			&rec.HitCount,
			&rec.BlockCount,
			&rec.ReviewCount,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return runs, nil
}
