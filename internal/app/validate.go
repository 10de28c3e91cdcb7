package app

import (
	"fmt"
	"os"

	"rail-controls/internal/controls"
)

// Validate checks the configured controls file and prints every issue found.
// It returns an error when the file has problems, so CI can gate on it.
func (a *App) Validate() error {
	path := a.Config.Inputs.ControlsPath
	issues, err := controls.Validate(path)
	if err != nil {
		return err
	}

	if len(issues) == 0 {
		fmt.Fprintf(os.Stdout, "%s: ok\n", path)
		return nil
	}

	for _, issue := range issues {
		fmt.Fprintf(os.Stdout, "%s: %s\n", path, issue)
	}
	return fmt.Errorf("%d issue(s) found in %s", len(issues), path)
}
