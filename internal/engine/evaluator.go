package engine

import (
	"github.com/rs/zerolog"

	"rail-controls/internal/controls"
	"rail-controls/internal/dataset"
	"rail-controls/internal/domain"
)

// Evaluator runs every control against its rail's slice of the batch and
// accumulates the flat hit list.
type Evaluator struct {
	logger zerolog.Logger
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(logger zerolog.Logger) *Evaluator {
	return &Evaluator{logger: logger.With().Str("component", "evaluator").Logger()}
}

// Evaluate produces one hit per (record, control) match. Controls are
// restricted to records of their declared rail and are mutually independent;
// the batch and control set are never mutated. A control whose rail has no
// records in the batch is skipped entirely.
func (e *Evaluator) Evaluate(batch *dataset.Batch, ctrls []controls.Control) []domain.Hit {
	byRail := make(map[domain.Rail][]dataset.Record)
	for _, rec := range batch.Records {
		byRail[rec.Rail] = append(byRail[rec.Rail], rec)
	}

	var hits []domain.Hit
	for _, ctrl := range ctrls {
		railRecords := byRail[ctrl.Rail]
		if len(railRecords) == 0 {
			e.logger.Debug().Str("control_id", ctrl.ID).Str("rail", string(ctrl.Rail)).Msg("no records for rail, skipping control")
			continue
		}

		matched := 0
		for _, rec := range railRecords {
			if !ctrl.Matches(rec) {
				continue
			}
			matched++
			hits = append(hits, domain.Hit{
				TxID:        rec.TxID,
				Rail:        rec.Rail,
				ControlID:   ctrl.ID,
				Severity:    ctrl.Severity,
				Action:      ctrl.Action,
				Description: ctrl.Description,
			})
		}

		e.logger.Debug().
			Str("control_id", ctrl.ID).
			Str("rail", string(ctrl.Rail)).
			Int("rail_population", len(railRecords)).
			Int("hits", matched).
			Msg("control evaluated")
	}
	return hits
}
