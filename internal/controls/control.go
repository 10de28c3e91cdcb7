package controls

import (
	"rail-controls/internal/domain"
)

// Control is one declarative risk rule: when every condition holds for a
// record of the control's rail, the control contributes its action.
type Control struct {
	ID          string
	Rail        domain.Rail
	Severity    string
	Action      domain.Action
	Description string
	Conditions  []Condition
}

// Defaults applied when the control file omits a field.
const (
	DefaultSeverity = "MEDIUM"
	DefaultAction   = domain.ActionReview
)

// Matches reports whether every condition of the control holds for the
// record. Controls with no conditions match every record of their rail.
func (c Control) Matches(rec FieldSource) bool {
	for _, cond := range c.Conditions {
		if !cond.Match(rec) {
			return false
		}
	}
	return true
}
