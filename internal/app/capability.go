package app

import (
	"fmt"
	"strings"

	"voiceassist/internal/apperr"
	"voiceassist/internal/i18n"
)

// Capability - режим работы, выбранный один раз при запуске.
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityLSP
	CapabilityOCR
	CapabilityVoice
)

func (c Capability) String() string {
	switch c {
	case CapabilityLSP:
		return "lsp"
	case CapabilityOCR:
		return "ocr"
	case CapabilityVoice:
		return "voice"
	default:
		return "none"
	}
}

// Selection - флаги выбора режима.
type Selection struct {
	LSPCommand string
	LSPFile    string
	OCR        bool
	Listen     bool
}

// Select возвращает единственный выбранный режим. --lsp-command и
// --lsp-file вместе выбирают один режим LSP.
func Select(s Selection) (Capability, error) {
	var selected []Capability
	if strings.TrimSpace(s.LSPCommand) != "" || strings.TrimSpace(s.LSPFile) != "" {
		selected = append(selected, CapabilityLSP)
	}
	if s.OCR {
		selected = append(selected, CapabilityOCR)
	}
	if s.Listen {
		selected = append(selected, CapabilityVoice)
	}

	switch len(selected) {
	case 0:
		return CapabilityNone, fmt.Errorf("%w: %s", apperr.ErrUsage, i18n.T("usage_no_capability"))
	case 1:
		return selected[0], nil
	default:
		return CapabilityNone, fmt.Errorf("%w: %s: %v", apperr.ErrUsage, i18n.T("usage_many_capabilities"), selected)
	}
}
