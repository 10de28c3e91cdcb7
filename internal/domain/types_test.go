package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionPriorityOrdering(t *testing.T) {
	assert.Greater(t, ActionBlock.Priority(), ActionReview.Priority())
	assert.Greater(t, ActionReview.Priority(), ActionAllow.Priority())

	// Unrecognized actions rank lowest and can never escalate a decision.
	assert.Equal(t, ActionAllow.Priority(), Action("ESCALATE").Priority())
}

func TestMaxAction(t *testing.T) {
	assert.Equal(t, ActionAllow, MaxAction(nil))
	assert.Equal(t, ActionReview, MaxAction([]Action{ActionAllow, ActionReview}))
	assert.Equal(t, ActionBlock, MaxAction([]Action{ActionReview, ActionBlock, ActionAllow}))
	assert.Equal(t, ActionAllow, MaxAction([]Action{Action("ESCALATE")}))
}

func TestParseRail(t *testing.T) {
	rail, err := ParseRail(" ach ")
	assert.NoError(t, err)
	assert.Equal(t, RailACH, rail)

	_, err = ParseRail("WIRE")
	assert.Error(t, err)
}

func TestParseAction(t *testing.T) {
	action, err := ParseAction("block")
	assert.NoError(t, err)
	assert.Equal(t, ActionBlock, action)

	_, err = ParseAction("escalate")
	assert.Error(t, err)
}
