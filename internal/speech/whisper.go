package speech

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperRecognizer реализует Recognizer через whisper.cpp.
type WhisperRecognizer struct {
	mu    sync.Mutex
	model whisper.Model
}

// NewWhisperFromFile загружает модель ggml из файла.
func NewWhisperFromFile(modelPath string) (*WhisperRecognizer, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, err
	}
	return &WhisperRecognizer{model: model}, nil
}

// Name возвращает название движка.
func (w *WhisperRecognizer) Name() string {
	return string(EngineWhisper)
}

// Transcribe распознаёт речь. Отмена ctx прерывает обработку между сегментами.
func (w *WhisperRecognizer) Transcribe(ctx context.Context, samples []float32, lang string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model == nil {
		return "", errors.New("whisper: модель закрыта")
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", err
	}

	// только транскрипция, без перевода
	wctx.SetTranslate(false)
	if lang != "" {
		if err := wctx.SetLanguage(lang); err != nil {
			return "", err
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", err
	}

	var result strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		segment, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		result.WriteString(segment.Text)
	}

	return strings.TrimSpace(result.String()), nil
}

// Close освобождает модель.
func (w *WhisperRecognizer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model != nil {
		w.model.Close()
		w.model = nil
	}
}
