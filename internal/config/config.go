// Package config предоставляет конфигурацию приложения с сохранением в файл.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Modifier представляет модификатор клавиши.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super" // Win/Cmd
)

// Key представляет клавишу: "space", "return", "tab", "a".."z", "f1".."f12".
type Key string

const (
	KeySpace  Key = "space"
	KeyReturn Key = "return"
	KeyTab    Key = "tab"
)

// HotkeyConfig хранит настройки горячей клавиши push-to-talk.
type HotkeyConfig struct {
	Modifiers []Modifier `json:"modifiers"`
	Key       Key        `json:"key"`
}

// String возвращает строковое представление горячей клавиши.
func (h HotkeyConfig) String() string {
	parts := make([]string, 0, len(h.Modifiers)+1)
	for _, m := range h.Modifiers {
		parts = append(parts, string(m))
	}
	parts = append(parts, string(h.Key))
	return strings.Join(parts, "+")
}

// ParseHotkey разбирает строку вида "ctrl+shift+space".
func ParseHotkey(s string) (HotkeyConfig, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return HotkeyConfig{}, fmt.Errorf("пустая горячая клавиша: %q", s)
	}

	var hk HotkeyConfig
	for _, p := range parts[:len(parts)-1] {
		switch m := Modifier(strings.TrimSpace(p)); m {
		case ModCtrl, ModShift, ModAlt, ModSuper:
			hk.Modifiers = append(hk.Modifiers, m)
		default:
			return HotkeyConfig{}, fmt.Errorf("неизвестный модификатор %q", p)
		}
	}

	key := Key(strings.TrimSpace(parts[len(parts)-1]))
	if !IsValidKey(key) {
		return HotkeyConfig{}, fmt.Errorf("неизвестная клавиша %q", key)
	}
	hk.Key = key
	return hk, nil
}

// IsValidKey проверяет, поддерживается ли клавиша.
func IsValidKey(k Key) bool {
	switch k {
	case KeySpace, KeyReturn, KeyTab:
		return true
	}
	s := string(k)
	if len(s) == 1 && s[0] >= 'a' && s[0] <= 'z' {
		return true
	}
	if len(s) >= 2 && s[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(s[1:], "%d", &n); err == nil && n >= 1 && n <= 12 && fmt.Sprintf("f%d", n) == s {
			return true
		}
	}
	return false
}

// LLMConfig хранит настройки LLM для исправления распознанного текста.
// Используется OpenAI-совместимый endpoint (Ollama отдаёт его на /v1).
type LLMConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url,omitempty"`
	Model   string `json:"model,omitempty"`
}

// RemoteConfig хранит настройки удалённого сервиса распознавания речи.
type RemoteConfig struct {
	URL   string `json:"url,omitempty"`
	Model string `json:"model,omitempty"`
	// APIKey не сохраняется в файл, берётся из окружения.
	APIKey string `json:"-"`
}

// configData структура для сериализации.
type configData struct {
	Language      string       `json:"language"`
	UILanguage    string       `json:"ui_language,omitempty"`
	Notifications bool         `json:"notifications"`
	Hotkey        HotkeyConfig `json:"hotkey"`
	Engine        string       `json:"engine,omitempty"`
	ModelID       string       `json:"model_id,omitempty"`
	OCRLanguages  []string     `json:"ocr_languages,omitempty"`
	LLM           LLMConfig    `json:"llm,omitempty"`
	Remote        RemoteConfig `json:"remote,omitempty"`
}

// Переменные окружения.
const (
	EnvAPIKey    = "OPENAI_API_KEY"
	EnvRemoteURL = "VOICEASSIST_OPENAI_URL"
)

// Config хранит настройки приложения.
type Config struct {
	mu            sync.RWMutex
	language      string
	uiLanguage    string
	notifications bool
	hotkey        HotkeyConfig
	engine        string
	modelID       string
	ocrLanguages  []string
	llm           LLMConfig
	remote        RemoteConfig
	configPath    string
}

// New создаёт конфигурацию из config.json рядом с бинарником
// или с настройками по умолчанию.
func New() *Config {
	path := ""

	// Определяем путь к файлу конфигурации рядом с бинарником
	execPath, err := os.Executable()
	if err == nil {
		// Резолвим симлинки
		execPath, err = filepath.EvalSymlinks(execPath)
		if err == nil {
			path = filepath.Join(filepath.Dir(execPath), "config.json")
		}
	}

	return Load(path)
}

// Load создаёт конфигурацию из указанного файла. Пустой путь - только defaults.
func Load(path string) *Config {
	c := &Config{
		language:      "auto",
		notifications: false,
		hotkey: HotkeyConfig{
			Modifiers: []Modifier{ModCtrl, ModShift},
			Key:       KeySpace,
		},
		ocrLanguages: []string{"eng"},
		llm: LLMConfig{
			URL:   "http://localhost:11434/v1",
			Model: "qwen2.5:0.5b",
		},
		remote: RemoteConfig{
			Model: "whisper-1",
		},
		configPath: path,
	}

	c.load()

	if v := os.Getenv(EnvAPIKey); v != "" {
		c.remote.APIKey = v
	}
	if v := os.Getenv(EnvRemoteURL); v != "" {
		c.remote.URL = v
	}

	return c
}

// load загружает конфигурацию из файла.
func (c *Config) load() {
	if c.configPath == "" {
		return
	}

	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return // Файл не существует, используем defaults
	}

	var cfg configData
	if err := json.Unmarshal(data, &cfg); err != nil {
		return
	}

	if cfg.Language != "" {
		c.language = cfg.Language
	}
	c.uiLanguage = cfg.UILanguage
	c.notifications = cfg.Notifications
	if cfg.Hotkey.Key != "" {
		c.hotkey = cfg.Hotkey
	}
	c.engine = cfg.Engine
	c.modelID = cfg.ModelID
	if len(cfg.OCRLanguages) > 0 {
		c.ocrLanguages = cfg.OCRLanguages
	}
	c.llm.Enabled = cfg.LLM.Enabled
	if cfg.LLM.URL != "" {
		c.llm.URL = cfg.LLM.URL
	}
	if cfg.LLM.Model != "" {
		c.llm.Model = cfg.LLM.Model
	}
	if cfg.Remote.URL != "" {
		c.remote.URL = cfg.Remote.URL
	}
	if cfg.Remote.Model != "" {
		c.remote.Model = cfg.Remote.Model
	}
}

// save сохраняет конфигурацию в файл. Вызывается под c.mu.
func (c *Config) save() error {
	if c.configPath == "" {
		return nil
	}

	cfg := configData{
		Language:      c.language,
		UILanguage:    c.uiLanguage,
		Notifications: c.notifications,
		Hotkey:        c.hotkey,
		Engine:        c.engine,
		ModelID:       c.modelID,
		OCRLanguages:  c.ocrLanguages,
		LLM:           c.llm,
		Remote:        RemoteConfig{URL: c.remote.URL, Model: c.remote.Model},
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0644)
}

// Path возвращает путь к файлу конфигурации.
func (c *Config) Path() string {
	return c.configPath
}

// Language возвращает язык распознавания речи.
func (c *Config) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.language
}

// UILanguage возвращает язык сообщений ("" - определить по окружению).
func (c *Config) UILanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uiLanguage
}

// NotificationsEnabled возвращает true если уведомления включены.
func (c *Config) NotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notifications
}

// Hotkey возвращает горячую клавишу push-to-talk.
func (c *Config) Hotkey() HotkeyConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hotkey
}

// Engine возвращает имя движка распознавания ("" - по модели).
func (c *Config) Engine() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine
}

// ModelID возвращает ID локальной модели распознавания.
func (c *Config) ModelID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.modelID
}

// SetModel устанавливает движок и модель распознавания и сохраняет конфигурацию.
func (c *Config) SetModel(engine, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine = engine
	c.modelID = id
	return c.save()
}

// OCRLanguages возвращает языки Tesseract.
func (c *Config) OCRLanguages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.ocrLanguages...)
}

// LLM возвращает настройки коррекции текста.
func (c *Config) LLM() LLMConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llm
}

// Remote возвращает настройки удалённого распознавания.
func (c *Config) Remote() RemoteConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.remote
}
