package app

import (
	"context"
	"fmt"
	"time"

	"voiceassist/internal/apperr"
	"voiceassist/internal/audio"
	"voiceassist/internal/config"
	"voiceassist/internal/hotkey"
	"voiceassist/internal/i18n"
	"voiceassist/internal/llm"
	"voiceassist/internal/models"
	"voiceassist/internal/speech"
	"voiceassist/internal/voice"
)

type voiceRunner interface {
	Listen(ctx context.Context, opts voice.Options) (voice.Command, error)
}

// defaultVoice собирает микрофон, распознаватель и корректор.
// Возвращённая функция освобождает ресурсы.
func (a *App) defaultVoice(ctx context.Context, opts VoiceOptions) (voiceRunner, func(), error) {
	var (
		manager *models.Manager
		err     error
	)
	if opts.ModelsDir != "" {
		manager, err = models.NewManagerAt(opts.ModelsDir, a.logger.Named("models"))
	} else {
		manager, err = models.NewManager(a.logger.Named("models"))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrRecognition, err)
	}

	remote := a.cfg.Remote()
	factory := speech.NewFactory(manager, speech.RemoteConfig{
		URL:    remote.URL,
		Model:  remote.Model,
		APIKey: remote.APIKey,
	}, a.logger.Named("speech"))

	rec, err := factory.Create(opts.Engine, opts.ModelID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrRecognition, err)
	}

	recorder, err := audio.New(a.logger.Named("audio"))
	if err != nil {
		rec.Close()
		return nil, nil, err
	}

	listener := voice.NewListener(recorder, rec, a.corrector(ctx, opts.Correct), a.logger.Named("voice"))
	return listener, func() {
		recorder.Close()
		rec.Close()
	}, nil
}

// llmCheckTimeout - сколько ждать список моделей LLM-сервера.
const llmCheckTimeout = 2 * time.Second

// corrector возвращает клиент исправления текста или nil, если исправление
// выключено или сервер не знает модель.
func (a *App) corrector(ctx context.Context, requested bool) voice.Corrector {
	cfg := a.cfg.LLM()
	if !requested && !cfg.Enabled {
		return nil
	}

	client := llm.New(llm.Config{URL: cfg.URL, Model: cfg.Model}, a.logger.Named("llm"))
	checkCtx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()
	if !client.IsAvailable(checkCtx) {
		a.logger.Warn("модель LLM недоступна, текст не исправляется", "model", client.Model(), "url", cfg.URL)
		return nil
	}
	return client
}

func (a *App) runVoice(ctx context.Context, opts VoiceOptions, deliver DeliveryOptions) error {
	if opts.Engine == "" {
		engine, err := speech.ParseEngine(a.cfg.Engine())
		if err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrUsage, err)
		}
		opts.Engine = engine
	}
	if opts.ModelID == "" && opts.Engine != speech.EngineOpenAI {
		if id := a.cfg.ModelID(); id != "" {
			if info, ok := models.GetModel(id); ok && speech.Engine(info.Engine) == opts.Engine {
				opts.ModelID = id
			}
		}
	}
	if opts.Language == "" {
		opts.Language = a.cfg.Language()
	}

	listener, release, err := a.newVoice(ctx, opts)
	if err != nil {
		return err
	}
	defer release()

	listenOpts := voice.Options{
		Window:   opts.Window,
		Language: opts.Language,
	}

	hk := a.hotkeyFor(opts)
	if opts.Hotkey {
		h := hotkey.New(a.logger.Named("hotkey"))
		if err := h.Register(hk); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrCapture, err)
		}
		defer h.Unregister()
		listenOpts.Trigger = h
	}

	window := listenOpts.Window
	if window <= 0 {
		window = voice.DefaultWindow
	}
	listenOpts.OnStage = func(s voice.Stage) {
		switch {
		case s == voice.StageWaiting:
			a.statusf(i18n.T("hotkey_wait"), hk.String())
		case opts.Hotkey:
			a.statusf(i18n.T("recording_hotkey"), hk.String())
		default:
			a.statusf(i18n.T("recording"), window)
		}
	}

	cmd, err := listener.Listen(ctx, listenOpts)
	if err != nil {
		return err
	}
	if err := a.printer.Voice(cmd); err != nil {
		return err
	}

	a.notifier.VoiceDone(cmd.Text)
	a.deliver(ctx, cmd.Text, deliver)
	return nil
}

// hotkeyFor возвращает клавишу из параметров запуска или из настроек.
func (a *App) hotkeyFor(opts VoiceOptions) config.HotkeyConfig {
	if opts.Keys.Key != "" {
		return opts.Keys
	}
	return a.cfg.Hotkey()
}
