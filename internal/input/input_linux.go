//go:build linux

package input

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// linuxTyper вводит текст через wtype (Wayland) или xdotool (X11).
type linuxTyper struct {
	argv []string
}

func newTyper() (Typer, error) {
	return &linuxTyper{argv: typeCommand(os.Getenv("WAYLAND_DISPLAY") != "")}, nil
}

func typeCommand(wayland bool) []string {
	if wayland {
		return []string{"wtype", "--"}
	}
	return []string{"xdotool", "type", "--clearmodifiers", "--"}
}

func (t *linuxTyper) Type(ctx context.Context, text string) error {
	args := append(t.argv[1:len(t.argv):len(t.argv)], text)
	out, err := exec.CommandContext(ctx, t.argv[0], args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", t.argv[0], err, out)
	}
	return nil
}
