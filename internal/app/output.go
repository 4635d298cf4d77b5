package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"voiceassist/internal/apperr"
	"voiceassist/internal/i18n"
	"voiceassist/internal/lsp"
	"voiceassist/internal/ocr"
	"voiceassist/internal/voice"
)

// Format - формат вывода результатов.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat разбирает --format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: формат %q (text, json)", apperr.ErrUsage, s)
	}
}

// ColorEnabled решает, раскрашивать ли вывод: always, never или auto
// (терминал и не задан NO_COLOR).
func ColorEnabled(mode string, f *os.File) (bool, error) {
	switch strings.ToLower(mode) {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "", "auto":
		if os.Getenv("NO_COLOR") != "" || f == nil {
			return false, nil
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	default:
		return false, fmt.Errorf("%w: --color %q (auto, always, never)", apperr.ErrUsage, mode)
	}
}

// Printer печатает результаты в stdout: текстом или строками JSON.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	format Format

	severity map[string]*color.Color
	location *color.Color
}

// NewPrinter создаёт Printer.
func NewPrinter(w io.Writer, format Format, colored bool) *Printer {
	p := &Printer{
		w:      w,
		format: format,
		severity: map[string]*color.Color{
			"error":   color.New(color.FgRed, color.Bold),
			"warning": color.New(color.FgYellow),
			"info":    color.New(color.FgCyan),
			"hint":    color.New(color.Faint),
		},
		location: color.New(color.Bold),
	}
	for _, c := range append([]*color.Color{p.location}, values(p.severity)...) {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func values(m map[string]*color.Color) []*color.Color {
	out := make([]*color.Color, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

type diagnosticRecord struct {
	Kind     string `json:"kind"`
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Source   string `json:"source,omitempty"`
	Code     any    `json:"code,omitempty"`
}

// Diagnostic печатает диагностику как path:line:col: severity: message.
func (p *Printer) Diagnostic(d lsp.Diagnostic) error {
	severity := d.SeverityName()
	if p.format == FormatJSON {
		return p.json(diagnosticRecord{
			Kind:     "diagnostic",
			Path:     d.Path(),
			Line:     d.Line(),
			Column:   d.Column(),
			Severity: severity,
			Message:  d.Message,
			Source:   d.Source,
			Code:     d.Code,
		})
	}

	sev := severity
	if c, ok := p.severity[severity]; ok {
		sev = c.Sprint(severity)
	}
	msg := d.Message
	if d.Source != "" {
		msg = fmt.Sprintf("%s [%s]", msg, d.Source)
	}
	return p.line("%s: %s: %s\n", p.location.Sprintf("%s:%d:%d", d.Path(), d.Line(), d.Column()), sev, msg)
}

// OCR печатает уверенность и текст.
func (p *Printer) OCR(res ocr.Result) error {
	if p.format == FormatJSON {
		return p.json(struct {
			Kind string `json:"kind"`
			ocr.Result
		}{"ocr", res})
	}
	return p.line("%s: %.2f\n%s\n", i18n.T("ocr_confidence"), res.Confidence, res.Text)
}

// Voice печатает текст команды.
func (p *Printer) Voice(cmd voice.Command) error {
	if p.format == FormatJSON {
		return p.json(struct {
			Kind string `json:"kind"`
			voice.Command
		}{"voice", cmd})
	}
	return p.line("%s\n", cmd.Text)
}

func (p *Printer) json(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.line("%s\n", data)
}

func (p *Printer) line(format string, args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.w, format, args...)
	return err
}
