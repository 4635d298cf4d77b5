package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageForFile(t *testing.T) {
	tests := []struct {
		path     string
		language string
		command  string
		ok       bool
	}{
		{"main.py", "python", "pylsp", true},
		{"/src/app/Server.GO", "go", "gopls", true},
		{"index.tsx", "typescript", "typescript-language-server", true},
		{"lib.rs", "rust", "rust-analyzer", true},
		{"vec.hpp", "cpp", "clangd", true},
		{"Makefile", "", "", false},
		{"notes.txt", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			cfg, ok := LanguageForFile(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.language, cfg.Language)
			if tt.ok {
				assert.Equal(t, tt.command, cfg.Command[0])
			}
		})
	}
}

func TestLanguageByName(t *testing.T) {
	cfg, ok := LanguageByName(" Go ")
	assert.True(t, ok)
	assert.Equal(t, []string{"gopls", "serve"}, cfg.Command)

	_, ok = LanguageByName("cobol")
	assert.False(t, ok)
}

func TestDiagnosticPath(t *testing.T) {
	d := Diagnostic{URI: "file:///tmp/with%20space/main.py"}
	assert.Equal(t, "/tmp/with space/main.py", d.Path())

	d = Diagnostic{URI: "untitled:Untitled-1"}
	assert.Equal(t, "untitled:Untitled-1", d.Path())

	assert.Equal(t, "diagnostic", Diagnostic{}.SeverityName())
}
