package app

import (
	"context"

	"voiceassist/internal/ocr"
)

type ocrRunner interface {
	Run(ctx context.Context, opts ocr.Options) (ocr.Result, error)
}

func (a *App) defaultOCR() ocrRunner {
	return ocr.NewAdapter(ocr.ScreenCapturer{}, ocr.Tesseract{}, a.logger.Named("ocr"))
}

func (a *App) runOCR(ctx context.Context, opts OCROptions, deliver DeliveryOptions) error {
	languages := opts.Languages
	if len(languages) == 0 {
		languages = a.cfg.OCRLanguages()
	}

	res, err := a.newOCR().Run(ctx, ocr.Options{Region: opts.Region, Languages: languages})
	if err != nil {
		return err
	}
	if err := a.printer.OCR(res); err != nil {
		return err
	}

	a.notifier.OCRDone(res.Text)
	a.deliver(ctx, res.Text, deliver)
	return nil
}
