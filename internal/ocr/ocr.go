// Package ocr снимает экран и распознаёт на снимке текст.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"

	"voiceassist/internal/apperr"
)

// DefaultLanguage - язык Tesseract по умолчанию.
const DefaultLanguage = "eng"

// Result - распознанный текст и средняя уверенность по словам (0-100).
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Capturer снимает область экрана. Пустая область означает весь рабочий стол.
type Capturer interface {
	Capture(ctx context.Context, region image.Rectangle) (image.Image, error)
}

// Engine распознаёт текст на изображении.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, languages []string) (Result, error)
}

// Options параметры одного распознавания.
type Options struct {
	// Region - область экрана; пустая - весь рабочий стол.
	Region image.Rectangle

	// Languages - языки Tesseract, например {"eng", "rus"}.
	Languages []string
}

// Adapter связывает снимок экрана с движком распознавания.
type Adapter struct {
	capturer Capturer
	engine   Engine
	logger   hclog.Logger
}

// NewAdapter создаёт адаптер.
func NewAdapter(capturer Capturer, engine Engine, logger hclog.Logger) *Adapter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Adapter{
		capturer: capturer,
		engine:   engine,
		logger:   logger,
	}
}

// Run снимает экран и возвращает распознанный текст без изменений.
//
// Ошибки снимка оборачиваются в apperr.ErrCapture, ошибки движка -
// в apperr.ErrRecognition.
func (a *Adapter) Run(ctx context.Context, opts Options) (Result, error) {
	languages := opts.Languages
	if len(languages) == 0 {
		languages = []string{DefaultLanguage}
	}

	img, err := a.capturer.Capture(ctx, opts.Region)
	if err != nil {
		if errors.Is(err, apperr.ErrCapture) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %v", apperr.ErrCapture, err)
	}
	a.logger.Debug("снимок экрана", "bounds", img.Bounds().String())

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res, err := a.engine.Recognize(ctx, img, languages)
	if err != nil {
		if errors.Is(err, apperr.ErrRecognition) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %v", apperr.ErrRecognition, err)
	}

	a.logger.Debug("текст распознан", "chars", len(res.Text), "confidence", res.Confidence)
	return res, nil
}
