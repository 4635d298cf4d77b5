package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"voiceassist/internal/audio"
)

// VoskRecognizer реализует Recognizer через Vosk.
type VoskRecognizer struct {
	mu         sync.Mutex
	model      *vosk.VoskModel
	recognizer *vosk.VoskRecognizer
}

// voskResult - JSON результата Vosk.
type voskResult struct {
	Text string `json:"text"`
}

// NewVosk загружает модель Vosk из директории.
func NewVosk(modelPath string) (*VoskRecognizer, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("модель Vosk не найдена: %s", modelPath)
	}

	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки модели Vosk: %w", err)
	}

	rec, err := vosk.NewRecognizer(model, float64(audio.SampleRate))
	if err != nil {
		model.Free()
		return nil, err
	}

	return &VoskRecognizer{model: model, recognizer: rec}, nil
}

// Name возвращает название движка.
func (v *VoskRecognizer) Name() string {
	return string(EngineVosk)
}

// Transcribe распознаёт речь. Vosk принимает PCM16, язык задаётся моделью.
func (v *VoskRecognizer) Transcribe(ctx context.Context, samples []float32, _ string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recognizer == nil {
		return "", errors.New("vosk: распознаватель закрыт")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	v.recognizer.AcceptWaveform(audio.PCM16(samples))
	resultJSON := v.recognizer.FinalResult()
	v.recognizer.Reset()

	return parseVoskResult(resultJSON)
}

func parseVoskResult(raw string) (string, error) {
	var result voskResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return "", fmt.Errorf("vosk: %w", err)
	}
	return strings.TrimSpace(result.Text), nil
}

// Close освобождает ресурсы.
func (v *VoskRecognizer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recognizer != nil {
		v.recognizer.Free()
		v.recognizer = nil
	}
	if v.model != nil {
		v.model.Free()
		v.model = nil
	}
}
