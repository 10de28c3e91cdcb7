package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rail-controls/internal/domain"
)

func TestWriteDecisions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", DecisionsFileName)

	decisions := []domain.Decision{
		{
			TxID:              "tx1",
			Rail:              domain.RailACH,
			Timestamp:         "2026-08-01T10:00:00",
			UserID:            "user_1",
			Amount:            6000,
			IsFraudPattern:    false,
			FinalAction:       domain.ActionReview,
			TriggeredControls: "ACH_INSTANT_HIGH_VALUE_NEW_ACCT",
			TriggeredActions:  "REVIEW",
		},
	}

	require.NoError(t, WriteDecisions(path, decisions))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"tx_id,rail,timestamp,user_id,amount,is_fraud_pattern,final_action,triggered_controls,triggered_actions\n"+
			"tx1,ACH,2026-08-01T10:00:00,user_1,6000,false,REVIEW,ACH_INSTANT_HIGH_VALUE_NEW_ACCT,REVIEW\n",
		string(content))
}

func TestWriteEmptyTablesKeepHeaders(t *testing.T) {
	dir := t.TempDir()

	hitsPath := filepath.Join(dir, HitsFileName)
	require.NoError(t, WriteHits(hitsPath, nil))
	content, err := os.ReadFile(hitsPath)
	require.NoError(t, err)
	assert.Equal(t, "tx_id,rail,control_id,severity,action,description\n", string(content))

	metricsPath := filepath.Join(dir, MetricsFileName)
	require.NoError(t, WriteMetrics(metricsPath, nil))
	content, err = os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Equal(t, "control_id,hits,hit_rate,precision_proxy\n", string(content))
}

func TestWriteMetricsFormatsRoundedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), MetricsFileName)

	metrics := []domain.Metric{
		{
			ControlID:      "CARD_RISKY_MCC",
			Hits:           3,
			HitRate:        decimal.RequireFromString("0.0005"),
			PrecisionProxy: decimal.RequireFromString("0.6667"),
		},
	}

	require.NoError(t, WriteMetrics(path, metrics))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "CARD_RISKY_MCC,3,0.0005,0.6667\n")
}
