// Package engine evaluates declarative controls against a transaction batch
// and derives per-transaction decisions plus per-control monitoring metrics.
// The whole pass is a pure batch transform: inputs are treated as immutable
// and each output table is freshly allocated by the component that builds it.
package engine

import (
	"github.com/rs/zerolog"

	"rail-controls/internal/controls"
	"rail-controls/internal/dataset"
	"rail-controls/internal/domain"
)

// Result holds the three output tables of one run.
type Result struct {
	Hits      []domain.Hit
	Decisions []domain.Decision
	Metrics   []domain.Metric
}

// Engine wires the evaluator, resolver, and monitor into one pass.
type Engine struct {
	evaluator *Evaluator
	logger    zerolog.Logger
}

// New constructs an Engine.
func New(logger zerolog.Logger) *Engine {
	return &Engine{
		evaluator: NewEvaluator(logger),
		logger:    logger.With().Str("component", "engine").Logger(),
	}
}

// Run evaluates the control set against the batch. Controls are applied in
// load order; duplicated control ids are evaluated independently, each
// contributing its own hits. The run either completes fully or not at all;
// there is no partial output.
func (e *Engine) Run(batch *dataset.Batch, ctrls []controls.Control) Result {
	hits := e.evaluator.Evaluate(batch, ctrls)
	decisions := Resolve(batch, hits)
	metrics := Monitor(batch, hits)

	e.logger.Info().
		Int("transactions", batch.Len()).
		Int("controls", len(ctrls)).
		Int("hits", len(hits)).
		Int("metrics", len(metrics)).
		Msg("controls evaluated")

	return Result{Hits: hits, Decisions: decisions, Metrics: metrics}
}
