package controls

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rail-controls/internal/domain"
)

func writeControlsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "controls.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeControlsFile(t, `
- control_id: ACH_MINIMAL
  rail: ACH
`)

	ctrls, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ctrls, 1)

	ctrl := ctrls[0]
	assert.Equal(t, "ACH_MINIMAL", ctrl.ID)
	assert.Equal(t, domain.RailACH, ctrl.Rail)
	assert.Equal(t, DefaultSeverity, ctrl.Severity)
	assert.Equal(t, DefaultAction, ctrl.Action)
	assert.Empty(t, ctrl.Description)
	assert.Empty(t, ctrl.Conditions)
}

func TestLoadPreservesConditionOrder(t *testing.T) {
	path := writeControlsFile(t, `
- control_id: ACH_ORDERED
  rail: ACH
  action: REVIEW
  conditions:
    funding_speed: instant
    amount_gt: 5000
    account_age_lt_days: 30
`)

	ctrls, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ctrls, 1)

	keys := make([]string, 0, len(ctrls[0].Conditions))
	for _, cond := range ctrls[0].Conditions {
		keys = append(keys, cond.Key)
	}
	assert.Equal(t, []string{"funding_speed", "amount_gt", "account_age_lt_days"}, keys)
}

func TestLoadRejectsUnknownRail(t *testing.T) {
	path := writeControlsFile(t, `
- control_id: BAD_RAIL
  rail: WIRE
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WIRE")
}

func TestLoadRejectsMissingControlID(t *testing.T) {
	path := writeControlsFile(t, `
- rail: ACH
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "control_id")
}

func TestLoadRejectsUncompilableCondition(t *testing.T) {
	path := writeControlsFile(t, `
- control_id: BAD_THRESHOLD
  rail: ACH
  conditions:
    amount_gt: lots
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount_gt")
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestValidateReportsDuplicateIDs(t *testing.T) {
	path := writeControlsFile(t, `
- control_id: DUP
  rail: ACH
- control_id: DUP
  rail: CARD
- control_id: OK
  rail: CRYPTO
`)

	issues, err := Validate(path)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "DUP", issues[0].ControlID)
	assert.Contains(t, issues[0].Message, "duplicate")
}

func TestValidateCollectsAllIssues(t *testing.T) {
	path := writeControlsFile(t, `
- control_id: BAD_ACTION
  rail: ACH
  action: ESCALATE
- control_id: ""
  rail: CARD
- control_id: BAD_VALUE
  rail: CRYPTO
  conditions:
    wallet_age_lt_days: soon
`)

	issues, err := Validate(path)
	require.NoError(t, err)
	assert.Len(t, issues, 3)
}

func TestValidateCleanFile(t *testing.T) {
	path := writeControlsFile(t, `
- control_id: CRYPTO_HIGH_RISK
  rail: CRYPTO
  severity: HIGH
  action: BLOCK
  conditions:
    to_is_high_risk: true
    wallet_age_lt_days: 7
`)

	issues, err := Validate(path)
	require.NoError(t, err)
	assert.Empty(t, issues)
}
