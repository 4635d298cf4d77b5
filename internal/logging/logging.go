// Package logging настраивает логгер приложения.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// DefaultLevel - уровень по умолчанию. CLI пишет результат в stdout,
// поэтому в stderr по умолчанию попадают только предупреждения и ошибки.
const DefaultLevel = "warn"

// Options настройки логгера.
type Options struct {
	// Level - trace, debug, info, warn, error, off.
	Level string

	// Output - куда писать (по умолчанию os.Stderr).
	Output io.Writer

	// Color включает цвет (только если Output - терминал).
	Color bool
}

// ParseLevel проверяет строку уровня.
func ParseLevel(s string) (hclog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultLevel
	}
	level := hclog.LevelFromString(s)
	if level == hclog.NoLevel {
		return hclog.NoLevel, fmt.Errorf("неизвестный уровень логирования %q", s)
	}
	return level, nil
}

// New создаёт корневой логгер.
func New(opts Options) (hclog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	color := hclog.ColorOff
	if opts.Color {
		color = hclog.AutoColor
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       "voiceassist",
		Level:      level,
		Output:     out,
		Color:      color,
		TimeFormat: "15:04:05",
	}), nil
}
