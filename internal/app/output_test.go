package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"voiceassist/internal/apperr"
	"voiceassist/internal/lsp"
	"voiceassist/internal/ocr"
	"voiceassist/internal/voice"
)

func sampleDiagnostic() lsp.Diagnostic {
	return lsp.Diagnostic{
		URI:      "file:///src/app/main.py",
		Severity: protocol.DiagnosticSeverityWarning,
		Message:  "unused import",
		Source:   "pyflakes",
		Range: protocol.Range{
			Start: protocol.Position{Line: 2, Character: 0},
			End:   protocol.Position{Line: 2, Character: 9},
		},
	}
}

func TestPrinter_DiagnosticText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText, false)

	require.NoError(t, p.Diagnostic(sampleDiagnostic()))
	assert.Equal(t, "/src/app/main.py:3:1: warning: unused import [pyflakes]\n", buf.String())
}

func TestPrinter_DiagnosticColor(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText, true)

	require.NoError(t, p.Diagnostic(sampleDiagnostic()))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "unused import")
}

func TestPrinter_DiagnosticJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatJSON, true)

	require.NoError(t, p.Diagnostic(sampleDiagnostic()))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "diagnostic", rec["kind"])
	assert.Equal(t, "/src/app/main.py", rec["path"])
	assert.Equal(t, float64(3), rec["line"])
	assert.Equal(t, float64(1), rec["column"])
	assert.Equal(t, "warning", rec["severity"])
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestPrinter_OCR(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText, false).OCR(ocr.Result{Text: "hello world", Confidence: 87.456}))
	assert.Equal(t, "OCR confidence: 87.46\nhello world\n", buf.String())

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatJSON, false).OCR(ocr.Result{Text: "hello world", Confidence: 50}))
	assert.JSONEq(t, `{"kind":"ocr","text":"hello world","confidence":50}`, buf.String())
}

func TestPrinter_Voice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText, false).Voice(voice.Command{Text: "turn on lights", Engine: "whisper"}))
	assert.Equal(t, "turn on lights\n", buf.String())

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatJSON, false).Voice(voice.Command{Text: "turn on lights", Engine: "vosk"}))
	assert.JSONEq(t, `{"kind":"voice","text":"turn on lights","engine":"vosk"}`, buf.String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	assert.ErrorIs(t, err, apperr.ErrUsage)
}

func TestColorEnabled(t *testing.T) {
	on, err := ColorEnabled("always", nil)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = ColorEnabled("never", nil)
	require.NoError(t, err)
	assert.False(t, on)

	on, err = ColorEnabled("auto", nil)
	require.NoError(t, err)
	assert.False(t, on)

	_, err = ColorEnabled("sometimes", nil)
	assert.ErrorIs(t, err, apperr.ErrUsage)
}
