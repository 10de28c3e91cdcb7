package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "railctl", cfg.App.Name)
	assert.Equal(t, "controls/controls.yaml", cfg.Inputs.ControlsPath)
	assert.Equal(t, "data/combined_transactions.csv", cfg.Inputs.TransactionsPath)
	assert.Equal(t, "data", cfg.Output.Dir)
	assert.False(t, cfg.Alerting.Enabled)
	assert.Equal(t, 25, cfg.Export.MaxControls)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
inputs:
  controls_path: /etc/railctl/controls.yaml
  transactions_path: /var/lib/railctl/tx.csv
output:
  dir: /var/lib/railctl/out
watch:
  interval: 5m
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/etc/railctl/controls.yaml", cfg.Inputs.ControlsPath)
	assert.Equal(t, "/var/lib/railctl/tx.csv", cfg.Inputs.TransactionsPath)
	assert.Equal(t, "/var/lib/railctl/out", cfg.Output.Dir)
	assert.Equal(t, "5m0s", cfg.Watch.Interval.String())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Watch.Interval = 0
	assert.Error(t, cfg.Validate())

	cfg, err = Load("")
	require.NoError(t, err)
	cfg.Alerting.Telegram.Enabled = true
	assert.Error(t, cfg.Validate(), "telegram enabled without bot_token must fail")
}
