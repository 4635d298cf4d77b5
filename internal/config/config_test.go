package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"ctrl+shift+space", "ctrl+shift+space", false},
		{"Alt+F5", "alt+f5", false},
		{"super+k", "super+k", false},
		{"space", "space", false},
		{"ctrl+", "", true},
		{"hyper+a", "", true},
		{"ctrl+f13", "", true},
		{"ctrl+enter", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hk, err := ParseHotkey(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, hk.String())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvRemoteURL, "")

	c := Load("")

	assert.Equal(t, "auto", c.Language())
	assert.Equal(t, "ctrl+shift+space", c.Hotkey().String())
	assert.Equal(t, []string{"eng"}, c.OCRLanguages())
	assert.False(t, c.LLM().Enabled)
	assert.Equal(t, "whisper-1", c.Remote().Model)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "language": "ru",
  "notifications": true,
  "hotkey": {"modifiers": ["alt"], "key": "r"},
  "engine": "vosk",
  "ocr_languages": ["eng", "rus"],
  "llm": {"enabled": true, "model": "llama3"}
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	t.Setenv(EnvAPIKey, "sk-test")
	t.Setenv(EnvRemoteURL, "http://stt.local/v1")

	c := Load(path)

	assert.Equal(t, "ru", c.Language())
	assert.True(t, c.NotificationsEnabled())
	assert.Equal(t, "alt+r", c.Hotkey().String())
	assert.Equal(t, "vosk", c.Engine())
	assert.Equal(t, []string{"eng", "rus"}, c.OCRLanguages())
	assert.True(t, c.LLM().Enabled)
	assert.Equal(t, "llama3", c.LLM().Model)
	assert.Equal(t, "http://localhost:11434/v1", c.LLM().URL)
	assert.Equal(t, "sk-test", c.Remote().APIKey)
	assert.Equal(t, "http://stt.local/v1", c.Remote().URL)
}

func TestSetModel_PersistsWithoutSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(EnvAPIKey, "sk-secret")

	c := Load(path)
	require.NoError(t, c.SetModel("vosk", "vosk-ru-small"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "vosk-ru-small")
	assert.NotContains(t, string(data), "sk-secret")

	reloaded := Load(path)
	assert.Equal(t, "vosk-ru-small", reloaded.ModelID())
	assert.Equal(t, "vosk", reloaded.Engine())
}
