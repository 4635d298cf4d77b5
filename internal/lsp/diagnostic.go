package lsp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"

	"fortio.org/safecast"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Diagnostic - одна проблема, о которой сообщил языковой сервер.
// Поля передаются без изменений.
type Diagnostic struct {
	URI      protocol.DocumentURI        `json:"uri"`
	Severity protocol.DiagnosticSeverity `json:"severity,omitempty"`
	Message  string                      `json:"message"`
	Range    protocol.Range              `json:"range"`
	Source   string                      `json:"source,omitempty"`
	Code     any                         `json:"code,omitempty"`
}

// Path возвращает путь к файлу (или сам URI, если это не file://).
func (d Diagnostic) Path() string {
	return pathFromURI(string(d.URI))
}

// Line возвращает номер строки начала, начиная с 1.
func (d Diagnostic) Line() int {
	return oneBased(d.Range.Start.Line)
}

// Column возвращает номер символа начала, начиная с 1.
func (d Diagnostic) Column() int {
	return oneBased(d.Range.Start.Character)
}

// SeverityName возвращает название уровня: error, warning, info, hint.
func (d Diagnostic) SeverityName() string {
	switch d.Severity {
	case protocol.DiagnosticSeverityError:
		return "error"
	case protocol.DiagnosticSeverityWarning:
		return "warning"
	case protocol.DiagnosticSeverityInformation:
		return "info"
	case protocol.DiagnosticSeverityHint:
		return "hint"
	default:
		return "diagnostic"
	}
}

func oneBased(v uint32) int {
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0
	}
	return n + 1
}

// decodeDiagnostics разбирает параметры textDocument/publishDiagnostics.
// Каждый элемент массива превращается ровно в одну запись.
func decodeDiagnostics(params json.RawMessage) ([]Diagnostic, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: publishDiagnostics без параметров", errMalformed)
	}

	var p protocol.PublishDiagnosticsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if p.URI == "" {
		return nil, fmt.Errorf("%w: publishDiagnostics без uri", errMalformed)
	}

	out := make([]Diagnostic, 0, len(p.Diagnostics))
	for _, item := range p.Diagnostics {
		out = append(out, Diagnostic{
			URI:      p.URI,
			Severity: item.Severity,
			Message:  item.Message,
			Range:    item.Range,
			Source:   item.Source,
			Code:     item.Code,
		})
	}
	return out, nil
}

// documentURI строит file:// URI для пути.
func documentURI(path string) protocol.DocumentURI {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return protocol.DocumentURI(uri.File(path))
}

func pathFromURI(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "file" {
		return raw
	}
	path := parsed.Path
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	return filepath.FromSlash(path)
}
