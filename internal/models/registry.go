// Package models управляет локальными моделями распознавания речи.
package models

import "strings"

// Engine - движок, которому принадлежит модель.
type Engine string

const (
	EngineWhisper Engine = "whisper"
	EngineVosk    Engine = "vosk"
)

// ModelInfo описание модели.
type ModelInfo struct {
	ID       string // "whisper-tiny-q5"
	Engine   Engine
	Name     string // "Tiny Q5"
	Filename string // файл или директория после распаковки
	URL      string
	Size     int64 // ожидаемый размер, если сервер не прислал Content-Length
	IsZip    bool
	Language string // "" - многоязычная
}

const huggingFace = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// Registry все известные модели.
var Registry = []ModelInfo{
	// Whisper, квантизированные - рекомендуются для CPU
	{ID: "whisper-tiny-q5", Engine: EngineWhisper, Name: "Tiny Q5", Filename: "ggml-tiny-q5_1.bin", URL: huggingFace + "ggml-tiny-q5_1.bin", Size: 32 << 20},
	{ID: "whisper-base-q5", Engine: EngineWhisper, Name: "Base Q5", Filename: "ggml-base-q5_1.bin", URL: huggingFace + "ggml-base-q5_1.bin", Size: 60 << 20},
	{ID: "whisper-small-q5", Engine: EngineWhisper, Name: "Small Q5", Filename: "ggml-small-q5_1.bin", URL: huggingFace + "ggml-small-q5_1.bin", Size: 190 << 20},
	{ID: "whisper-turbo", Engine: EngineWhisper, Name: "Large v3 Turbo", Filename: "ggml-large-v3-turbo-q5_0.bin", URL: huggingFace + "ggml-large-v3-turbo-q5_0.bin", Size: 574 << 20},
	{ID: "whisper-tiny-en", Engine: EngineWhisper, Name: "Tiny (English)", Filename: "ggml-tiny.en.bin", URL: huggingFace + "ggml-tiny.en.bin", Size: 75 << 20, Language: "en"},

	// Vosk
	{ID: "vosk-en-small", Engine: EngineVosk, Name: "English Small", Filename: "vosk-model-small-en-us-0.15", URL: "https://alphacephei.com/vosk/models/vosk-model-small-en-us-0.15.zip", Size: 40 << 20, IsZip: true, Language: "en"},
	{ID: "vosk-ru-small", Engine: EngineVosk, Name: "Russian Small", Filename: "vosk-model-small-ru-0.22", URL: "https://alphacephei.com/vosk/models/vosk-model-small-ru-0.22.zip", Size: 45 << 20, IsZip: true, Language: "ru"},
	{ID: "vosk-ru", Engine: EngineVosk, Name: "Russian Large", Filename: "vosk-model-ru-0.42", URL: "https://alphacephei.com/vosk/models/vosk-model-ru-0.42.zip", Size: 1800 << 20, IsZip: true, Language: "ru"},
}

// DefaultModelID модель по умолчанию.
func DefaultModelID() string {
	return "whisper-tiny-q5"
}

// GetModel возвращает модель по ID.
func GetModel(id string) (ModelInfo, bool) {
	id = strings.TrimSpace(id)
	for _, m := range Registry {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// GetModelsByEngine возвращает модели движка.
func GetModelsByEngine(engine Engine) []ModelInfo {
	var result []ModelInfo
	for _, m := range Registry {
		if m.Engine == engine {
			result = append(result, m)
		}
	}
	return result
}

// EngineName отображаемое имя движка.
func EngineName(e Engine) string {
	switch e {
	case EngineWhisper:
		return "Whisper"
	case EngineVosk:
		return "Vosk"
	default:
		return string(e)
	}
}
