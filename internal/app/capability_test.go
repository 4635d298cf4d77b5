package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceassist/internal/apperr"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		sel     Selection
		want    Capability
		wantErr bool
	}{
		{"none", Selection{}, CapabilityNone, true},
		{"lsp command", Selection{LSPCommand: "pylsp"}, CapabilityLSP, false},
		{"lsp file", Selection{LSPFile: "main.py"}, CapabilityLSP, false},
		{"lsp command and file", Selection{LSPCommand: "pylsp", LSPFile: "main.py"}, CapabilityLSP, false},
		{"ocr", Selection{OCR: true}, CapabilityOCR, false},
		{"listen", Selection{Listen: true}, CapabilityVoice, false},
		{"ocr and listen", Selection{OCR: true, Listen: true}, CapabilityNone, true},
		{"lsp and ocr", Selection{LSPFile: "main.py", OCR: true}, CapabilityNone, true},
		{"blank lsp command", Selection{LSPCommand: "  "}, CapabilityNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.sel)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperr.ErrUsage)
				assert.Equal(t, apperr.ExitUsage, apperr.ExitCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "lsp", CapabilityLSP.String())
	assert.Equal(t, "ocr", CapabilityOCR.String())
	assert.Equal(t, "voice", CapabilityVoice.String())
	assert.Equal(t, "none", CapabilityNone.String())
}
