package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"voiceassist/internal/app"
	"voiceassist/internal/apperr"
	"voiceassist/internal/config"
	"voiceassist/internal/i18n"
	"voiceassist/internal/logging"
	"voiceassist/internal/ocr"
	"voiceassist/internal/speech"
	"voiceassist/internal/voice"
)

// cli - общее состояние команд после разбора флагов.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	modelsDir  string
	logLevel   string
	colorMode  string

	cfg    *config.Config
	logger hclog.Logger
}

// rootFlags - флаги основной команды.
type rootFlags struct {
	lspCommand  string
	lspFile     string
	lspRoot     string
	lspLanguage string
	lspWatch    bool

	ocr     bool
	ocrLang []string
	region  string

	listen   bool
	duration time.Duration
	engine   string
	model    string
	lang     string
	hotkey   bool
	keys     string
	correct  bool

	notify bool
	dialog bool
	typ    bool
	copy   bool
	format string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "voiceassist (--lsp-command <cmd> | --lsp-file <path> | --ocr | --listen) [flags]",
		Short: "Диагностики языкового сервера, текст с экрана и голосовые команды",
		Long: `voiceassist выполняет ровно один режим за запуск:

  --lsp-command/--lsp-file  поток диагностик языкового сервера для файла
  --ocr                     распознать текст на экране
  --listen                  записать и распознать голосовую команду`,
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runRoot(cmd, f)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", apperr.ErrUsage, err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "файл настроек (по умолчанию config.json рядом с бинарником)")
	pf.StringVar(&c.modelsDir, "models-dir", "", "директория моделей (по умолчанию models/ рядом с бинарником)")
	pf.StringVar(&c.logLevel, "log-level", logging.DefaultLevel, "уровень логов: trace, debug, info, warn, error, off")
	pf.StringVar(&c.colorMode, "color", "auto", "цвет вывода: auto, always, never")

	fl := cmd.Flags()
	fl.StringVar(&f.lspCommand, "lsp-command", "", "команда языкового сервера, например \"gopls serve\"")
	fl.StringVar(&f.lspFile, "lsp-file", "", "файл для анализа")
	fl.StringVar(&f.lspRoot, "lsp-root", "", "корень рабочей области (по умолчанию директория файла)")
	fl.StringVar(&f.lspLanguage, "lsp-language", "", "languageId документа (по умолчанию по расширению)")
	fl.BoolVar(&f.lspWatch, "lsp-watch", false, "отправлять изменения файла при сохранении")

	fl.BoolVar(&f.ocr, "ocr", false, "распознать текст на экране")
	fl.StringSliceVar(&f.ocrLang, "ocr-lang", nil, "языки Tesseract, например eng,rus")
	fl.StringVar(&f.region, "region", "", "область экрана x,y,w,h")

	fl.BoolVar(&f.listen, "listen", false, "записать голосовую команду")
	fl.DurationVar(&f.duration, "duration", voice.DefaultWindow, "максимальная длительность записи")
	fl.StringVar(&f.engine, "engine", "", "движок: whisper, vosk, openai")
	fl.StringVar(&f.model, "model", "", "ID модели (voiceassist models list)")
	fl.StringVar(&f.lang, "lang", "", "язык речи: ru, en, auto")
	fl.BoolVar(&f.hotkey, "hotkey", false, "начинать и заканчивать запись горячей клавишей")
	fl.StringVar(&f.keys, "hotkey-keys", "", "горячая клавиша, например ctrl+shift+space (включает --hotkey)")
	fl.BoolVar(&f.correct, "correct", false, "исправить текст через LLM")

	fl.BoolVar(&f.notify, "notify", false, "показать системное уведомление")
	fl.BoolVar(&f.dialog, "dialog", false, "выбрать файл и показать результат в окне")
	fl.BoolVar(&f.typ, "type", false, "ввести результат в активное поле")
	fl.BoolVar(&f.copy, "copy", false, "скопировать результат в буфер обмена")
	fl.StringVar(&f.format, "format", string(app.FormatText), "формат вывода: text, json")

	cmd.AddCommand(c.newModelsCmd(), c.newVersionCmd())
	return cmd
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: лишние аргументы %q", apperr.ErrUsage, args)
	}
	return nil
}

// setup загружает настройки, язык сообщений и логгер.
func (c *cli) setup() error {
	if c.configPath != "" {
		c.cfg = config.Load(c.configPath)
	} else {
		c.cfg = config.New()
	}
	i18n.SetLanguage(i18n.Detect(c.cfg.UILanguage(), os.Getenv("LANG")))

	colored, err := app.ColorEnabled(c.colorMode, terminal(c.stderr))
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: c.logLevel, Output: c.stderr, Color: colored})
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUsage, err)
	}
	c.logger = logger
	c.logger.Debug("настройки", "path", c.cfg.Path())
	return nil
}

func (c *cli) runRoot(cmd *cobra.Command, f rootFlags) error {
	capability, err := app.Select(app.Selection{
		LSPCommand: f.lspCommand,
		LSPFile:    f.lspFile,
		OCR:        f.ocr,
		Listen:     f.listen,
	})
	if err != nil {
		return err
	}

	format, err := app.ParseFormat(f.format)
	if err != nil {
		return err
	}
	colored, err := app.ColorEnabled(c.colorMode, terminal(c.stdout))
	if err != nil {
		return err
	}

	opts := app.Options{
		Capability: capability,
		Deliver: app.DeliveryOptions{
			Notify: f.notify,
			Dialog: f.dialog,
			Type:   f.typ,
			Copy:   f.copy,
		},
	}

	switch capability {
	case app.CapabilityLSP:
		opts.LSP = app.LSPOptions{
			Command:  strings.Fields(f.lspCommand),
			File:     f.lspFile,
			Root:     f.lspRoot,
			Language: f.lspLanguage,
			Watch:    f.lspWatch,
		}
	case app.CapabilityOCR:
		region, err := ocr.ParseRegion(f.region)
		if err != nil {
			return err
		}
		opts.OCR = app.OCROptions{Region: region, Languages: f.ocrLang}
	case app.CapabilityVoice:
		var engine speech.Engine
		if f.engine != "" {
			if engine, err = speech.ParseEngine(f.engine); err != nil {
				return fmt.Errorf("%w: %v", apperr.ErrUsage, err)
			}
		}
		if f.duration <= 0 {
			return fmt.Errorf("%w: --duration должна быть больше нуля", apperr.ErrUsage)
		}
		var keys config.HotkeyConfig
		if f.keys != "" {
			if keys, err = config.ParseHotkey(f.keys); err != nil {
				return fmt.Errorf("%w: --hotkey-keys: %v", apperr.ErrUsage, err)
			}
		}
		opts.Voice = app.VoiceOptions{
			Engine:    engine,
			ModelID:   f.model,
			Language:  f.lang,
			Window:    f.duration,
			Hotkey:    f.hotkey || f.keys != "",
			Keys:      keys,
			Correct:   f.correct,
			ModelsDir: c.modelsDir,
		}
	}

	printer := app.NewPrinter(c.stdout, format, colored)
	return app.New(c.cfg, c.logger, printer, c.stderr).Run(cmd.Context(), opts)
}

// terminal возвращает *os.File для проверки терминала или nil.
func terminal(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}
