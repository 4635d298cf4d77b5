// Package voice записывает голосовую команду и распознаёт её.
package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"voiceassist/internal/apperr"
	"voiceassist/internal/audio"
	"voiceassist/internal/speech"
)

// DefaultWindow - максимальная длительность записи по умолчанию.
const DefaultWindow = 5 * time.Second

// Source - источник звука: запись между Start и Stop.
type Source interface {
	Start() error
	Stop() []float32
}

// Trigger - источник нажатий push-to-talk.
type Trigger interface {
	Presses() <-chan struct{}
}

// Corrector исправляет распознанный текст.
type Corrector interface {
	CorrectText(ctx context.Context, text string) (string, error)
}

// Stage - этап записи, о котором сообщается через Options.OnStage.
type Stage int

const (
	StageWaiting   Stage = iota // ожидание нажатия горячей клавиши
	StageRecording              // идёт запись
)

// Options параметры одной команды.
type Options struct {
	// Window - максимальная длительность записи; 0 - DefaultWindow.
	Window time.Duration

	// Language - язык распознавания ("auto" - автоопределение).
	Language string

	// Trigger - если задан, запись начинается первым нажатием и
	// заканчивается вторым (или по истечении Window).
	Trigger Trigger

	// OnStage вызывается при смене этапа.
	OnStage func(Stage)
}

// Command - распознанная команда.
type Command struct {
	Text   string `json:"text"`
	Raw    string `json:"raw,omitempty"` // текст до исправления, если он изменился
	Engine string `json:"engine"`
}

// Listener связывает запись звука с распознавателем.
type Listener struct {
	source     Source
	recognizer speech.Recognizer
	corrector  Corrector
	logger     hclog.Logger
}

// NewListener создаёт слушателя. corrector может быть nil.
func NewListener(source Source, recognizer speech.Recognizer, corrector Corrector, logger hclog.Logger) *Listener {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Listener{
		source:     source,
		recognizer: recognizer,
		corrector:  corrector,
		logger:     logger,
	}
}

// Listen записывает одну команду и возвращает её текст.
//
// Ошибки записи оборачиваются в apperr.ErrCapture; ошибки движка и пустая
// расшифровка - в apperr.ErrRecognition.
func (l *Listener) Listen(ctx context.Context, opts Options) (Command, error) {
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}
	stage := func(s Stage) {
		if opts.OnStage != nil {
			opts.OnStage(s)
		}
	}

	var presses <-chan struct{}
	if opts.Trigger != nil {
		presses = opts.Trigger.Presses()
		stage(StageWaiting)
		select {
		case <-presses:
		case <-ctx.Done():
			return Command{}, ctx.Err()
		}
	}

	samples, err := l.record(ctx, window, presses, stage)
	if err != nil {
		return Command{}, err
	}

	text, err := l.recognizer.Transcribe(ctx, audio.PadSilence(samples), opts.Language)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Command{}, ctxErr
		}
		return Command{}, fmt.Errorf("%w: %s: %v", apperr.ErrRecognition, l.recognizer.Name(), err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Command{}, fmt.Errorf("%w: речь не распознана", apperr.ErrRecognition)
	}

	cmd := Command{Text: text, Engine: l.recognizer.Name()}
	if l.corrector != nil {
		corrected, err := l.corrector.CorrectText(ctx, text)
		switch {
		case err != nil:
			l.logger.Warn("исправление не выполнено, оставлен исходный текст", "error", err)
		case corrected != text:
			cmd.Raw = text
			cmd.Text = corrected
		}
	}

	l.logger.Debug("команда распознана", "engine", cmd.Engine, "text", cmd.Text)
	return cmd, nil
}

// record пишет звук до истечения window, повторного нажатия или отмены ctx.
func (l *Listener) record(ctx context.Context, window time.Duration, presses <-chan struct{}, stage func(Stage)) ([]float32, error) {
	if err := l.source.Start(); err != nil {
		if errors.Is(err, apperr.ErrCapture) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrCapture, err)
	}
	stage(StageRecording)
	start := time.Now()

	timer := time.NewTimer(window)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-presses:
	case <-ctx.Done():
	}

	samples := l.source.Stop()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.logger.Debug("запись завершена", "elapsed", time.Since(start).Round(time.Millisecond), "samples", len(samples))
	return samples, nil
}
