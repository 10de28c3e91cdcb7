package engine

import (
	"sort"
	"strings"

	"rail-controls/internal/dataset"
	"rail-controls/internal/domain"
)

// Resolve produces exactly one decision per transaction in the batch, in
// batch order. Hits are grouped by transaction id; the triggered control ids
// and actions are deduplicated and sorted lexicographically for display, and
// the final action is the highest-priority action among the triggered set.
// Transactions with no hits resolve to ALLOW with empty triggered fields.
func Resolve(batch *dataset.Batch, hits []domain.Hit) []domain.Decision {
	grouped := make(map[string][]domain.Hit)
	for _, h := range hits {
		grouped[h.TxID] = append(grouped[h.TxID], h)
	}

	decisions := make([]domain.Decision, 0, batch.Len())
	for _, rec := range batch.Records {
		d := domain.Decision{
			TxID:           rec.TxID,
			Rail:           rec.Rail,
			Timestamp:      rec.Timestamp,
			UserID:         rec.UserID,
			Amount:         rec.Amount,
			IsFraudPattern: rec.IsFraudPattern,
			FinalAction:    domain.ActionAllow,
		}

		if txHits := grouped[rec.TxID]; len(txHits) > 0 {
			ids := make([]string, 0, len(txHits))
			actions := make([]domain.Action, 0, len(txHits))
			for _, h := range txHits {
				ids = append(ids, h.ControlID)
				actions = append(actions, h.Action)
			}

			ids = dedupeSorted(ids)
			actionNames := make([]string, len(actions))
			for i, a := range actions {
				actionNames[i] = string(a)
			}
			actionNames = dedupeSorted(actionNames)

			d.TriggeredControls = strings.Join(ids, ", ")
			d.TriggeredActions = strings.Join(actionNames, ", ")
			d.FinalAction = domain.MaxAction(actions)
		}

		decisions = append(decisions, d)
	}
	return decisions
}

func dedupeSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
