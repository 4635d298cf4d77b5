// Package hotkey регистрирует глобальную горячую клавишу push-to-talk.
package hotkey

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.design/x/hotkey"
	"golang.design/x/hotkey/mainthread"

	"voiceassist/internal/config"
)

// debounceInterval отсекает повторы keydown при удержании клавиши.
const debounceInterval = 300 * time.Millisecond

// unregisterTimeout - сколько ждать отмены регистрации.
const unregisterTimeout = 500 * time.Millisecond

// Handler - зарегистрированная горячая клавиша. Нажатия приходят в Presses.
type Handler struct {
	logger hclog.Logger

	mu      sync.Mutex
	hk      *hotkey.Hotkey
	stopCh  chan struct{}
	presses chan struct{}
}

// New создаёт обработчик.
func New(logger hclog.Logger) *Handler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Handler{
		logger:  logger,
		presses: make(chan struct{}, 1),
	}
}

// Presses возвращает канал нажатий (keydown после подавления повторов).
// Если предыдущее нажатие не прочитано, новое теряется.
func (h *Handler) Presses() <-chan struct{} {
	return h.presses
}

// Register регистрирует горячую клавишу, заменяя предыдущую.
func (h *Handler) Register(cfg config.HotkeyConfig) error {
	mods, key, err := convert(cfg)
	if err != nil {
		return err
	}

	if err := h.Unregister(); err != nil {
		h.logger.Warn("не удалось снять предыдущую горячую клавишу", "error", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("горячая клавиша %s: %w", cfg, err)
	}

	h.hk = hk
	h.stopCh = make(chan struct{})
	h.logger.Debug("горячая клавиша зарегистрирована", "hotkey", cfg.String())

	go h.listen(hk, h.stopCh)
	return nil
}

func (h *Handler) listen(hk *hotkey.Hotkey, stopCh chan struct{}) {
	var d debouncer
	for {
		select {
		case <-stopCh:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			if !d.accept(time.Now()) {
				continue
			}
			select {
			case h.presses <- struct{}{}:
			default:
			}
		case _, ok := <-hk.Keyup():
			if !ok {
				return
			}
		}
	}
}

// Unregister снимает горячую клавишу.
func (h *Handler) Unregister() error {
	h.mu.Lock()
	if h.stopCh != nil {
		close(h.stopCh)
		h.stopCh = nil
	}
	hk := h.hk
	h.hk = nil
	h.mu.Unlock()

	if hk == nil {
		return nil
	}

	// на некоторых платформах Unregister зависает без цикла событий
	done := make(chan error, 1)
	go func() { done <- hk.Unregister() }()
	select {
	case err := <-done:
		return err
	case <-time.After(unregisterTimeout):
		return fmt.Errorf("таймаут отмены горячей клавиши")
	}
}

// RunOnMainThread запускает fn, оставляя главный поток для цикла событий
// (требование macOS).
func RunOnMainThread(fn func()) {
	mainthread.Init(fn)
}

// debouncer пропускает события не чаще debounceInterval.
type debouncer struct {
	last time.Time
}

func (d *debouncer) accept(now time.Time) bool {
	if !d.last.IsZero() && now.Sub(d.last) < debounceInterval {
		return false
	}
	d.last = now
	return true
}

func convert(cfg config.HotkeyConfig) ([]hotkey.Modifier, hotkey.Key, error) {
	mods := make([]hotkey.Modifier, 0, len(cfg.Modifiers))
	for _, m := range cfg.Modifiers {
		mod, ok := modifierMap[m]
		if !ok {
			return nil, 0, fmt.Errorf("неизвестный модификатор %q", m)
		}
		mods = append(mods, mod)
	}

	key, ok := keyMap[cfg.Key]
	if !ok {
		return nil, 0, fmt.Errorf("неизвестная клавиша %q", cfg.Key)
	}
	return mods, key, nil
}

// modifierMap определён в modifiers_<os>.go.

var keyMap = map[config.Key]hotkey.Key{
	config.KeySpace:  hotkey.KeySpace,
	config.KeyReturn: hotkey.KeyReturn,
	config.KeyTab:    hotkey.KeyTab,
	"a":              hotkey.KeyA,
	"b":              hotkey.KeyB,
	"c":              hotkey.KeyC,
	"d":              hotkey.KeyD,
	"e":              hotkey.KeyE,
	"f":              hotkey.KeyF,
	"g":              hotkey.KeyG,
	"h":              hotkey.KeyH,
	"i":              hotkey.KeyI,
	"j":              hotkey.KeyJ,
	"k":              hotkey.KeyK,
	"l":              hotkey.KeyL,
	"m":              hotkey.KeyM,
	"n":              hotkey.KeyN,
	"o":              hotkey.KeyO,
	"p":              hotkey.KeyP,
	"q":              hotkey.KeyQ,
	"r":              hotkey.KeyR,
	"s":              hotkey.KeyS,
	"t":              hotkey.KeyT,
	"u":              hotkey.KeyU,
	"v":              hotkey.KeyV,
	"w":              hotkey.KeyW,
	"x":              hotkey.KeyX,
	"y":              hotkey.KeyY,
	"z":              hotkey.KeyZ,
	"f1":             hotkey.KeyF1,
	"f2":             hotkey.KeyF2,
	"f3":             hotkey.KeyF3,
	"f4":             hotkey.KeyF4,
	"f5":             hotkey.KeyF5,
	"f6":             hotkey.KeyF6,
	"f7":             hotkey.KeyF7,
	"f8":             hotkey.KeyF8,
	"f9":             hotkey.KeyF9,
	"f10":            hotkey.KeyF10,
	"f11":            hotkey.KeyF11,
	"f12":            hotkey.KeyF12,
}
