package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"rail-controls/internal/domain"
)

// Output file names match what downstream consumers expect.
const (
	DecisionsFileName = "control_decisions.csv"
	HitsFileName      = "control_hits.csv"
	MetricsFileName   = "control_metrics.csv"
)

// WriteDecisions writes the decisions table, one row per transaction.
func WriteDecisions(path string, decisions []domain.Decision) error {
	return writeTable(path, decisionsHeader, func(w *csv.Writer) error {
		for _, d := range decisions {
			record := []string{
				d.TxID,
				string(d.Rail),
				d.Timestamp,
				d.UserID,
				strconv.FormatFloat(d.Amount, 'f', -1, 64),
				strconv.FormatBool(d.IsFraudPattern),
				string(d.FinalAction),
				d.TriggeredControls,
				d.TriggeredActions,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteHits writes the long-form hits table, one row per (tx, control) match.
func WriteHits(path string, hits []domain.Hit) error {
	return writeTable(path, hitsHeader, func(w *csv.Writer) error {
		for _, h := range hits {
			record := []string{
				h.TxID,
				string(h.Rail),
				h.ControlID,
				h.Severity,
				string(h.Action),
				h.Description,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteMetrics writes the per-control monitoring table.
func WriteMetrics(path string, metrics []domain.Metric) error {
	return writeTable(path, metricsHeader, func(w *csv.Writer) error {
		for _, m := range metrics {
			record := []string{
				m.ControlID,
				strconv.Itoa(m.Hits),
				m.HitRate.String(),
				m.PrecisionProxy.String(),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

var (
	decisionsHeader = []string{"tx_id", "rail", "timestamp", "user_id", "amount", "is_fraud_pattern", "final_action", "triggered_controls", "triggered_actions"}
	hitsHeader      = []string{"tx_id", "rail", "control_id", "severity", "action", "description"}
	metricsHeader   = []string{"control_id", "hits", "hit_rate", "precision_proxy"}
)

// writeTable creates the file and streams header plus rows. Empty tables
// still get their header so consumers always see the expected columns.
func writeTable(path string, header []string, rows func(*csv.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return writeRows(file, header, rows)
}

func writeRows(out io.Writer, header []string, rows func(*csv.Writer) error) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(header); err != nil {
		return err
	}
	if err := rows(writer); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
