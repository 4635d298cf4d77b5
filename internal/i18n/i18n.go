// Package i18n provides internationalization support.
package i18n

import (
	"strings"
	"sync"
)

// Language represents a UI language.
type Language string

const (
	RU Language = "ru"
	EN Language = "en"
)

var (
	mu      sync.RWMutex
	current = EN // Default language
)

// Translations for all supported languages.
var translations = map[Language]map[string]string{
	RU: {
		// Usage
		"usage_no_capability":     "укажите ровно один режим: --lsp-command/--lsp-file, --ocr или --listen",
		"usage_many_capabilities": "режимы взаимоисключающие, выбрано несколько",
		"usage_lsp_file":          "для режима LSP нужен --lsp-file",

		// Output
		"ocr_confidence":   "Уверенность OCR",
		"voice_engine":     "Движок",
		"hotkey_wait":      "Нажмите %s, чтобы начать запись",
		"recording":        "Запись... (до %s)",
		"recording_hotkey": "Запись... нажмите %s ещё раз, чтобы остановить",

		// Notifications
		"notify_ocr_done":   "Текст с экрана",
		"notify_voice_done": "Команда",
		"notify_error":      "Ошибка",

		// Dialogs
		"dialog_pick_file": "Выберите файл для анализа",
		"dialog_result":    "Результат",

		// Models
		"models_downloaded": "скачана",
		"models_missing":    "не скачана",
		"models_current":    "текущая",
		"models_saved":      "Модель %s выбрана",
		"models_progress":   "Загрузка %s: %d%%",
		"models_done":       "Модель %s скачана",
		"models_deleted":    "Модель %s удалена",

		// Errors
		"error_prefix": "ошибка",
	},

	EN: {
		// Usage
		"usage_no_capability":     "select exactly one mode: --lsp-command/--lsp-file, --ocr or --listen",
		"usage_many_capabilities": "modes are mutually exclusive, more than one selected",
		"usage_lsp_file":          "LSP mode requires --lsp-file",

		// Output
		"ocr_confidence":   "OCR confidence",
		"voice_engine":     "Engine",
		"hotkey_wait":      "Press %s to start recording",
		"recording":        "Recording... (up to %s)",
		"recording_hotkey": "Recording... press %s again to stop",

		// Notifications
		"notify_ocr_done":   "Screen text",
		"notify_voice_done": "Command",
		"notify_error":      "Error",

		// Dialogs
		"dialog_pick_file": "Select a file to analyze",
		"dialog_result":    "Result",

		// Models
		"models_downloaded": "downloaded",
		"models_missing":    "not downloaded",
		"models_current":    "current",
		"models_saved":      "Model %s selected",
		"models_progress":   "Downloading %s: %d%%",
		"models_done":       "Model %s downloaded",
		"models_deleted":    "Model %s deleted",

		// Errors
		"error_prefix": "error",
	},
}

// T returns the translation for the given key.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if strings, ok := translations[current]; ok {
		if s, ok := strings[key]; ok {
			return s
		}
	}
	// Fallback to key itself
	return key
}

// SetLanguage sets the current UI language.
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	current = lang
}

// Detect picks a language from a configured value or a locale string
// such as $LANG ("ru_RU.UTF-8"). Unknown values fall back to English.
func Detect(configured, locale string) Language {
	for _, v := range []string{configured, locale} {
		v = strings.ToLower(strings.TrimSpace(v))
		switch {
		case v == "":
			continue
		case strings.HasPrefix(v, string(RU)):
			return RU
		case strings.HasPrefix(v, string(EN)):
			return EN
		}
	}
	return EN
}
