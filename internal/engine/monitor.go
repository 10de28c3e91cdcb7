package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"rail-controls/internal/dataset"
	"rail-controls/internal/domain"
)

// metricPlaces is the rounding applied to hit_rate and precision_proxy.
const metricPlaces = 4

// Monitor computes one metric row per control with at least one hit. Hits
// are joined back to the batch label on (tx_id, rail). The hit rate divides
// by the full transaction population across all rails, not the control's own
// rail population, so rates stay comparable between rails. Controls with
// zero hits produce no row at all. Rows are ordered by descending hit count,
// ties broken by control id so repeated runs emit identical tables.
func Monitor(batch *dataset.Batch, hits []domain.Hit) []domain.Metric {
	if len(hits) == 0 {
		return nil
	}

	labels := make(map[labelKey]bool, batch.Len())
	for _, rec := range batch.Records {
		labels[labelKey{rec.TxID, rec.Rail}] = rec.IsFraudPattern
	}

	type counters struct {
		hits    int
		labeled int
		fraud   int
	}
	perControl := make(map[string]*counters)
	order := make([]string, 0)
	for _, h := range hits {
		c, ok := perControl[h.ControlID]
		if !ok {
			c = &counters{}
			perControl[h.ControlID] = c
			order = append(order, h.ControlID)
		}
		c.hits++
		if fraud, joined := labels[labelKey{h.TxID, h.Rail}]; joined {
			c.labeled++
			if fraud {
				c.fraud++
			}
		}
	}

	total := decimal.NewFromInt(int64(batch.Len()))
	metrics := make([]domain.Metric, 0, len(perControl))
	for _, id := range order {
		c := perControl[id]

		hitRate := decimal.Zero
		if batch.Len() > 0 {
			hitRate = decimal.NewFromInt(int64(c.hits)).Div(total).Round(metricPlaces)
		}

		// Precision proxy averages the synthetic label over the joined
		// hits. Synthetic correlation only, not observed precision.
		precision := decimal.Zero
		if c.labeled > 0 {
			precision = decimal.NewFromInt(int64(c.fraud)).
				Div(decimal.NewFromInt(int64(c.labeled))).
				Round(metricPlaces)
		}

		metrics = append(metrics, domain.Metric{
			ControlID:      id,
			Hits:           c.hits,
			HitRate:        hitRate,
			PrecisionProxy: precision,
		})
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].Hits != metrics[j].Hits {
			return metrics[i].Hits > metrics[j].Hits
		}
		return metrics[i].ControlID < metrics[j].ControlID
	})
	return metrics
}

type labelKey struct {
	txID string
	rail domain.Rail
}
