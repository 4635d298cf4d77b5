package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"voiceassist/internal/apperr"
	"voiceassist/internal/dialog"
	"voiceassist/internal/i18n"
	"voiceassist/internal/lsp"
)

// resolveLSP дополняет параметры пресетом языка: команда, languageId и корень.
func resolveLSP(opts LSPOptions) (LSPOptions, error) {
	if opts.File == "" {
		return opts, fmt.Errorf("%w: %s", apperr.ErrUsage, i18n.T("usage_lsp_file"))
	}

	preset, ok := lsp.LanguageForFile(opts.File)
	if opts.Language != "" {
		preset, ok = lsp.LanguageByName(opts.Language)
	}

	if opts.Language == "" {
		opts.Language = lsp.DefaultLanguage
		if ok {
			opts.Language = preset.Language
		}
	}
	if len(opts.Command) == 0 {
		if !ok {
			return opts, fmt.Errorf("%w: нет языкового сервера для %s, укажите --lsp-command", apperr.ErrUsage, opts.File)
		}
		opts.Command = preset.Command
	}
	if opts.Root == "" {
		opts.Root = filepath.Dir(opts.File)
	}
	return opts, nil
}

func (a *App) runLSP(ctx context.Context, opts LSPOptions, deliver DeliveryOptions) (err error) {
	if opts.File == "" && deliver.Dialog {
		path, derr := dialog.SelectFile(i18n.T("dialog_pick_file"), nil)
		if derr != nil {
			if errors.Is(derr, dialog.ErrCanceled) {
				return fmt.Errorf("%w: %s", apperr.ErrUsage, i18n.T("usage_lsp_file"))
			}
			return derr
		}
		opts.File = path
	}

	opts, err = resolveLSP(opts)
	if err != nil {
		return err
	}

	logger := a.logger.Named("lsp")
	session, err := lsp.Start(ctx, lsp.Config{
		Command:       opts.Command,
		RootDir:       opts.Root,
		ClientName:    "voiceassist",
		ClientVersion: Version,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(context.Background()); cerr != nil {
			logger.Warn("языковой сервер завершился с ошибкой", "error", cerr)
		}
	}()

	if err := session.Open(opts.File, opts.Language); err != nil {
		return err
	}
	if opts.Watch {
		if err := session.Watch(); err != nil {
			return err
		}
	}

	for d, err := range session.Diagnostics(ctx) {
		if err != nil {
			return err
		}
		if err := a.printer.Diagnostic(d); err != nil {
			return err
		}
	}
	return nil
}
