package controls

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Issue is one problem found while validating a controls file.
type Issue struct {
	ControlID string
	Message   string
}

func (i Issue) String() string {
	if i.ControlID == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.ControlID, i.Message)
}

// Validate checks a controls file structurally without evaluating anything:
// every control must compile, and control ids must be unique. Unlike Load it
// collects all problems instead of stopping at the first, so operators can
// fix a file in one pass. An error is returned only when the file itself
// cannot be read or parsed.
func Validate(path string) ([]Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open controls file %s: %w", path, err)
	}

	var raw []rawControl
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse controls file %s: %w", path, err)
	}

	var issues []Issue
	seen := make(map[string]int)
	for i, item := range raw {
		if _, err := compileControl(item); err != nil {
			issues = append(issues, Issue{ControlID: item.ControlID, Message: err.Error()})
		}
		if item.ControlID != "" {
			seen[item.ControlID]++
			if seen[item.ControlID] == 2 {
				issues = append(issues, Issue{
					ControlID: item.ControlID,
					Message:   fmt.Sprintf("duplicate control_id (entry %d); every duplicate is evaluated independently", i),
				})
			}
		}
	}
	return issues, nil
}
