// Package speech предоставляет абстракцию для движков распознавания речи.
package speech

import (
	"context"
	"fmt"
	"strings"
)

// Engine тип движка распознавания.
type Engine string

const (
	// EngineWhisper - whisper.cpp, локально.
	EngineWhisper Engine = "whisper"
	// EngineVosk - Vosk, локально.
	EngineVosk Engine = "vosk"
	// EngineOpenAI - OpenAI-совместимый сервис транскрипции.
	EngineOpenAI Engine = "openai"
)

// ParseEngine разбирает имя движка. Пустая строка - whisper.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return EngineWhisper, nil
	case EngineWhisper, EngineVosk, EngineOpenAI:
		return e, nil
	default:
		return "", fmt.Errorf("неизвестный движок: %s (whisper, vosk, openai)", s)
	}
}

// Recognizer - интерфейс для движков распознавания речи.
type Recognizer interface {
	// Transcribe распознаёт речь из аудио сэмплов.
	// samples - float32, 16kHz, mono.
	// lang - язык распознавания ("ru", "en", "auto" для автоопределения).
	Transcribe(ctx context.Context, samples []float32, lang string) (string, error)

	// Close освобождает ресурсы движка.
	Close()

	// Name возвращает название движка (для логирования).
	Name() string
}
