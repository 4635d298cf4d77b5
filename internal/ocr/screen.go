package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"voiceassist/internal/apperr"
)

// ScreenCapturer снимает экран через kbinani/screenshot.
type ScreenCapturer struct{}

// Capture снимает область или объединение всех активных дисплеев.
func (ScreenCapturer) Capture(ctx context.Context, region image.Rectangle) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	desktop := desktopBounds()
	if desktop.Empty() {
		return nil, fmt.Errorf("%w: нет активных дисплеев", apperr.ErrCapture)
	}

	rect := desktop
	if !region.Empty() {
		rect = region.Intersect(desktop)
		if rect.Empty() {
			return nil, fmt.Errorf("%w: область %v вне экрана %v", apperr.ErrCapture, region, desktop)
		}
	}

	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrCapture, err)
	}
	return img, nil
}

// desktopBounds - объединение границ всех активных дисплеев.
func desktopBounds() image.Rectangle {
	var all image.Rectangle
	for i := 0; i < screenshot.NumActiveDisplays(); i++ {
		all = all.Union(screenshot.GetDisplayBounds(i))
	}
	return all
}
