package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Rail identifies the payment channel a transaction moved over.
type Rail string

const (
	RailACH    Rail = "ACH"
	RailCard   Rail = "CARD"
	RailCrypto Rail = "CRYPTO"
)

// ParseRail validates a rail string.
func ParseRail(s string) (Rail, error) {
	switch Rail(strings.ToUpper(strings.TrimSpace(s))) {
	case RailACH:
		return RailACH, nil
	case RailCard:
		return RailCard, nil
	case RailCrypto:
		return RailCrypto, nil
	}
	return "", fmt.Errorf("unknown rail %q", s)
}

// Action is the outcome a control contributes when it matches.
type Action string

const (
	ActionAllow  Action = "ALLOW"
	ActionReview Action = "REVIEW"
	ActionBlock  Action = "BLOCK"
)

// Priority orders actions for final-decision resolution. Unrecognized
// actions rank lowest so a typo in a control file can never escalate.
func (a Action) Priority() int {
	switch a {
	case ActionBlock:
		return 2
	case ActionReview:
		return 1
	default:
		return 0
	}
}

// ParseAction validates an action string.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionAllow:
		return ActionAllow, nil
	case ActionReview:
		return ActionReview, nil
	case ActionBlock:
		return ActionBlock, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// MaxAction returns the highest-priority action in the set, ALLOW when empty.
func MaxAction(actions []Action) Action {
	final := ActionAllow
	for _, a := range actions {
		if a.Priority() > final.Priority() {
			final = a
		}
	}
	return final
}

// Hit records a single (transaction, control) match.
type Hit struct {
	TxID        string
	Rail        Rail
	ControlID   string
	Severity    string
	Action      Action
	Description string
}

// Decision is the resolved outcome for one transaction.
type Decision struct {
	TxID              string
	Rail              Rail
	Timestamp         string
	UserID            string
	Amount            float64
	IsFraudPattern    bool
	FinalAction       Action
	TriggeredControls string
	TriggeredActions  string
}

// Metric summarises one control's monitoring counters for a run. Only
// controls with at least one hit produce a row.
type Metric struct {
	ControlID      string
	Hits           int
	HitRate        decimal.Decimal
	PrecisionProxy decimal.Decimal
}
