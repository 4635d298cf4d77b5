//go:build darwin

package input

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// darwinTyper вводит текст через System Events.
type darwinTyper struct{}

func newTyper() (Typer, error) {
	return darwinTyper{}, nil
}

func (darwinTyper) Type(ctx context.Context, text string) error {
	script := `tell application "System Events" to keystroke ` + strconv.Quote(text)
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript: %w: %s", err, out)
	}
	return nil
}
