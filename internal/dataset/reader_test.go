package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rail-controls/internal/domain"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "combined_transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesBatch(t *testing.T) {
	path := writeCSV(t, `tx_id,rail,timestamp,user_id,amount,is_fraud_pattern,funding_speed,return_code
ach_tx_000001,ACH,2026-08-01T10:00:00,user_00001,6000,False,instant,
ach_tx_000002,ACH,2026-08-01T11:00:00,user_00002,120.5,True,standard,R01
`)

	batch, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, batch.Len())

	rec := batch.Records[0]
	assert.Equal(t, "ach_tx_000001", rec.TxID)
	assert.Equal(t, domain.RailACH, rec.Rail)
	assert.Equal(t, "user_00001", rec.UserID)
	assert.Equal(t, 6000.0, rec.Amount)
	assert.False(t, rec.IsFraudPattern)
	assert.True(t, batch.Records[1].IsFraudPattern)

	// Optional column with a value.
	speed, ok := rec.Field("funding_speed")
	assert.True(t, ok)
	assert.Equal(t, "instant", speed)

	// Optional column with an empty cell behaves as missing.
	_, ok = rec.Field("return_code")
	assert.False(t, ok)

	// Column absent from the schema behaves as missing.
	_, ok = rec.Field("wallet_age_days")
	assert.False(t, ok)
	assert.False(t, batch.HasColumn("wallet_age_days"))
}

func TestLoadMissingRequiredColumnIsFatal(t *testing.T) {
	path := writeCSV(t, `tx_id,rail,timestamp,user_id,amount
tx1,ACH,2026-08-01T10:00:00,user_1,10
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is_fraud_pattern")
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.csv")
	_, err := Load(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)
}

func TestLoadBadAmountIsFatal(t *testing.T) {
	path := writeCSV(t, `tx_id,rail,timestamp,user_id,amount,is_fraud_pattern
tx1,ACH,2026-08-01T10:00:00,user_1,lots,False
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestLoadEmptyBatch(t *testing.T) {
	path := writeCSV(t, `tx_id,rail,timestamp,user_id,amount,is_fraud_pattern
`)

	batch, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, batch.Len())
}

func TestNewBatchEnforcesRequiredColumns(t *testing.T) {
	_, err := NewBatch([]string{"tx_id", "rail"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp")
}
