package controls

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rail-controls/internal/domain"
)

// rawControl mirrors one entry of the controls file before compilation.
// Conditions stay a yaml.Node so the authored key order survives decoding.
type rawControl struct {
	ControlID   string    `yaml:"control_id"`
	Rail        string    `yaml:"rail"`
	Severity    string    `yaml:"severity"`
	Action      string    `yaml:"action"`
	Description string    `yaml:"description"`
	Conditions  yaml.Node `yaml:"conditions"`
}

// Load reads the controls file (a YAML sequence of control records), applies
// defaults, and compiles every condition. Any structural problem is a fatal
// load error; nothing is evaluated against a half-loaded control set.
func Load(path string) ([]Control, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open controls file %s: %w", path, err)
	}

	var raw []rawControl
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse controls file %s: %w", path, err)
	}

	out := make([]Control, 0, len(raw))
	for i, item := range raw {
		ctrl, err := compileControl(item)
		if err != nil {
			return nil, fmt.Errorf("%s: control %d (%s): %w", path, i, item.ControlID, err)
		}
		out = append(out, ctrl)
	}
	return out, nil
}

func compileControl(raw rawControl) (Control, error) {
	if raw.ControlID == "" {
		return Control{}, fmt.Errorf("control_id is required")
	}

	rail, err := domain.ParseRail(raw.Rail)
	if err != nil {
		return Control{}, err
	}

	action := DefaultAction
	if raw.Action != "" {
		action, err = domain.ParseAction(raw.Action)
		if err != nil {
			return Control{}, err
		}
	}

	severity := raw.Severity
	if severity == "" {
		severity = DefaultSeverity
	}

	conditions, err := compileConditions(raw.Conditions)
	if err != nil {
		return Control{}, err
	}

	return Control{
		ID:          raw.ControlID,
		Rail:        rail,
		Severity:    severity,
		Action:      action,
		Description: raw.Description,
		Conditions:  conditions,
	}, nil
}

// compileConditions walks the mapping node pairwise, preserving authored
// order. A missing or empty conditions block compiles to nil, which matches
// every record of the rail.
func compileConditions(node yaml.Node) ([]Condition, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("conditions must be a mapping")
	}

	conditions := make([]Condition, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		var value any
		if err := valueNode.Decode(&value); err != nil {
			return nil, fmt.Errorf("condition %q: %w", keyNode.Value, err)
		}

		cond, err := Compile(keyNode.Value, value)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}
