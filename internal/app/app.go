// Package app выбирает режим и связывает адаптеры с выводом.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"voiceassist/internal/config"
	"voiceassist/internal/dialog"
	"voiceassist/internal/i18n"
	"voiceassist/internal/input"
	"voiceassist/internal/notify"
	"voiceassist/internal/speech"
)

// Version подставляется при сборке через -ldflags.
var Version = "dev"

// State - этап жизни запуска.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateDone
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	default:
		return "not started"
	}
}

// LSPOptions параметры режима LSP.
type LSPOptions struct {
	Command  []string // пусто - пресет по языку файла
	File     string
	Root     string // пусто - директория файла
	Language string // пусто - по расширению файла
	Watch    bool
}

// OCROptions параметры режима OCR.
type OCROptions struct {
	Region    image.Rectangle
	Languages []string
}

// VoiceOptions параметры голосового режима.
type VoiceOptions struct {
	Engine   speech.Engine
	ModelID  string
	Language string
	Window   time.Duration
	Hotkey   bool
	Correct  bool

	// Keys - горячая клавиша; пустой Key - из настроек.
	Keys config.HotkeyConfig

	// ModelsDir - директория моделей; пусто - models/ рядом с бинарником.
	ModelsDir string
}

// DeliveryOptions - куда ещё отправить результат OCR или голоса.
type DeliveryOptions struct {
	Notify bool
	Dialog bool
	Type   bool
	Copy   bool
}

// Options полный набор параметров одного запуска.
type Options struct {
	Capability Capability
	LSP        LSPOptions
	OCR        OCROptions
	Voice      VoiceOptions
	Deliver    DeliveryOptions
}

// App выполняет один выбранный режим.
type App struct {
	cfg     *config.Config
	logger  hclog.Logger
	printer *Printer
	status  io.Writer // подсказки пользователю, не результат

	mu    sync.Mutex
	state State

	// подменяются в тестах
	newOCR    func() ocrRunner
	newVoice  func(ctx context.Context, opts VoiceOptions) (voiceRunner, func(), error)
	typer     func() (input.Typer, error)
	copy      func(string) error
	showError func(title, message string)
	notifier  *notify.Notifier
}

// New создаёт приложение. printer печатает результаты, status получает
// подсказки вроде "нажмите горячую клавишу".
func New(cfg *config.Config, logger hclog.Logger, printer *Printer, status io.Writer) *App {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	a := &App{
		cfg:       cfg,
		logger:    logger,
		printer:   printer,
		status:    status,
		typer:     input.New,
		copy:      input.Copy,
		showError: dialog.ShowError,
	}
	a.newOCR = a.defaultOCR
	a.newVoice = a.defaultVoice
	return a
}

// State возвращает текущий этап.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *App) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
	a.logger.Trace("состояние", "state", s.String())
}

// Run выполняет выбранный режим.
func (a *App) Run(ctx context.Context, opts Options) error {
	if a.State() != StateNotStarted {
		return fmt.Errorf("приложение уже запущено")
	}
	a.setState(StateRunning)
	defer a.setState(StateDone)

	a.notifier = notify.New(opts.Deliver.Notify || a.cfg.NotificationsEnabled(), a.logger.Named("notify"))
	a.logger.Debug("запуск", "capability", opts.Capability.String())

	var err error
	switch opts.Capability {
	case CapabilityLSP:
		err = a.runLSP(ctx, opts.LSP, opts.Deliver)
	case CapabilityOCR:
		err = a.runOCR(ctx, opts.OCR, opts.Deliver)
	case CapabilityVoice:
		err = a.runVoice(ctx, opts.Voice, opts.Deliver)
	default:
		_, err = Select(Selection{})
	}

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		// прерывание пользователем - обычное завершение
		a.logger.Debug("прервано", "capability", opts.Capability.String())
		return nil
	}

	if opts.Capability != CapabilityLSP {
		a.notifier.Error(err.Error())
	}
	if opts.Deliver.Dialog {
		a.showError(i18n.T("notify_error"), err.Error())
	}
	return err
}

// deliver отправляет результат в уведомление, окно, буфер обмена и поле ввода.
// Ошибки доставки только логируются: результат уже напечатан.
func (a *App) deliver(ctx context.Context, text string, opts DeliveryOptions) {
	if opts.Copy {
		if err := a.copy(text); err != nil {
			a.logger.Warn("не удалось скопировать", "error", err)
		}
	}
	if opts.Type {
		if err := a.typeText(ctx, text); err != nil {
			a.logger.Warn("не удалось ввести текст", "error", err)
		}
	}
	if opts.Dialog {
		if err := dialog.ShowResult(i18n.T("dialog_result"), text); err != nil {
			a.logger.Warn("окно результата не показано", "error", err)
		}
	}
}

func (a *App) typeText(ctx context.Context, text string) error {
	t, err := a.typer()
	if err != nil {
		return err
	}
	return t.Type(ctx, text)
}

func (a *App) statusf(format string, args ...any) {
	if a.status != nil {
		fmt.Fprintf(a.status, format+"\n", args...)
	}
}
