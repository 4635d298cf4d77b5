package lsp

import (
	"path/filepath"
	"strings"
)

// LanguageConfig - пресет языкового сервера для языка.
type LanguageConfig struct {
	// Language - languageId для didOpen.
	Language string

	// Command - команда запуска сервера по stdio.
	Command []string

	// Extensions - расширения файлов языка.
	Extensions []string
}

// presets - серверы, используемые когда --lsp-command не указан.
var presets = []LanguageConfig{
	{Language: "python", Command: []string{"pylsp"}, Extensions: []string{".py", ".pyi"}},
	{Language: "go", Command: []string{"gopls", "serve"}, Extensions: []string{".go"}},
	{Language: "typescript", Command: []string{"typescript-language-server", "--stdio"}, Extensions: []string{".ts", ".tsx"}},
	{Language: "javascript", Command: []string{"typescript-language-server", "--stdio"}, Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}},
	{Language: "rust", Command: []string{"rust-analyzer"}, Extensions: []string{".rs"}},
	{Language: "c", Command: []string{"clangd"}, Extensions: []string{".c", ".h"}},
	{Language: "cpp", Command: []string{"clangd"}, Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx"}},
}

// DefaultLanguage - languageId, если язык не удалось определить.
const DefaultLanguage = "python"

// LanguageForFile возвращает пресет по расширению файла.
func LanguageForFile(path string) (LanguageConfig, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return LanguageConfig{}, false
	}
	for _, p := range presets {
		for _, e := range p.Extensions {
			if e == ext {
				return p, true
			}
		}
	}
	return LanguageConfig{}, false
}

// LanguageByName возвращает пресет по languageId.
func LanguageByName(language string) (LanguageConfig, bool) {
	language = strings.ToLower(strings.TrimSpace(language))
	for _, p := range presets {
		if p.Language == language {
			return p, true
		}
	}
	return LanguageConfig{}, false
}
