package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceassist/internal/apperr"
	"voiceassist/internal/config"
	"voiceassist/internal/input"
	"voiceassist/internal/lsp"
	"voiceassist/internal/ocr"
	"voiceassist/internal/speech"
	"voiceassist/internal/voice"
)

type fakeOCR struct {
	res  ocr.Result
	err  error
	opts ocr.Options
}

func (f *fakeOCR) Run(_ context.Context, opts ocr.Options) (ocr.Result, error) {
	f.opts = opts
	return f.res, f.err
}

type fakeVoice struct {
	cmd  voice.Command
	err  error
	opts voice.Options
}

func (f *fakeVoice) Listen(_ context.Context, opts voice.Options) (voice.Command, error) {
	f.opts = opts
	return f.cmd, f.err
}

type fakeTyper struct{ typed []string }

func (f *fakeTyper) Type(_ context.Context, text string) error {
	f.typed = append(f.typed, text)
	return nil
}

type shownError struct{ title, message string }

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a := New(config.Load(""), nil, NewPrinter(&out, FormatText, false), &bytes.Buffer{})
	a.showError = func(title, message string) {
		t.Errorf("unexpected error window %q: %q", title, message)
	}
	return a, &out
}

func TestRun_OCR(t *testing.T) {
	a, out := newTestApp(t)
	engine := &fakeOCR{res: ocr.Result{Text: "hello world", Confidence: 90}}
	a.newOCR = func() ocrRunner { return engine }

	var copied string
	a.copy = func(s string) error { copied = s; return nil }

	err := a.Run(context.Background(), Options{
		Capability: CapabilityOCR,
		Deliver:    DeliveryOptions{Copy: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "OCR confidence: 90.00\nhello world\n", out.String())
	assert.Equal(t, "hello world", copied)
	assert.Equal(t, []string{"eng"}, engine.opts.Languages)
	assert.Equal(t, StateDone, a.State())
}

func TestRun_OCRCaptureError(t *testing.T) {
	a, out := newTestApp(t)
	a.newOCR = func() ocrRunner { return &fakeOCR{err: apperr.ErrCapture} }

	err := a.Run(context.Background(), Options{Capability: CapabilityOCR})
	assert.ErrorIs(t, err, apperr.ErrCapture)
	assert.Equal(t, apperr.ExitCapture, apperr.ExitCode(err))
	assert.Empty(t, out.String())
}

func TestRun_ErrorWindowWithDialog(t *testing.T) {
	a, _ := newTestApp(t)
	a.newOCR = func() ocrRunner { return &fakeOCR{err: fmt.Errorf("%w: нет экрана", apperr.ErrCapture)} }

	var shown []shownError
	a.showError = func(title, message string) {
		shown = append(shown, shownError{title, message})
	}

	err := a.Run(context.Background(), Options{
		Capability: CapabilityOCR,
		Deliver:    DeliveryOptions{Dialog: true},
	})
	require.ErrorIs(t, err, apperr.ErrCapture)

	require.Len(t, shown, 1)
	assert.NotEmpty(t, shown[0].title)
	assert.Equal(t, err.Error(), shown[0].message)
}

func TestRun_CanceledEndsQuietly(t *testing.T) {
	canceled := fmt.Errorf("запись: %w", context.Canceled)

	tests := []struct {
		name  string
		setup func(a *App)
		opts  Options
	}{
		{
			name:  "ocr",
			setup: func(a *App) { a.newOCR = func() ocrRunner { return &fakeOCR{err: canceled} } },
			opts:  Options{Capability: CapabilityOCR, Deliver: DeliveryOptions{Dialog: true}},
		},
		{
			name: "voice",
			setup: func(a *App) {
				a.newVoice = func(context.Context, VoiceOptions) (voiceRunner, func(), error) {
					return &fakeVoice{err: canceled}, func() {}, nil
				}
			},
			opts: Options{Capability: CapabilityVoice, Deliver: DeliveryOptions{Dialog: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out := newTestApp(t)
			tt.setup(a)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := a.Run(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, apperr.ExitOK, apperr.ExitCode(err))
			assert.Empty(t, out.String())
			assert.Equal(t, StateDone, a.State())
		})
	}
}

func TestRun_CanceledErrorWithoutCanceledContext(t *testing.T) {
	a, _ := newTestApp(t)
	a.newOCR = func() ocrRunner { return &fakeOCR{err: context.Canceled} }

	err := a.Run(context.Background(), Options{Capability: CapabilityOCR})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHotkeyFor(t *testing.T) {
	a, _ := newTestApp(t)

	assert.Equal(t, a.cfg.Hotkey(), a.hotkeyFor(VoiceOptions{}))

	keys, err := config.ParseHotkey("alt+f9")
	require.NoError(t, err)
	assert.Equal(t, "alt+f9", a.hotkeyFor(VoiceOptions{Keys: keys}).String())
}

func TestRun_Voice(t *testing.T) {
	a, out := newTestApp(t)
	listener := &fakeVoice{cmd: voice.Command{Text: "turn on lights", Engine: "fake"}}

	var gotOpts VoiceOptions
	released := false
	a.newVoice = func(_ context.Context, opts VoiceOptions) (voiceRunner, func(), error) {
		gotOpts = opts
		return listener, func() { released = true }, nil
	}
	typer := &fakeTyper{}
	a.typer = func() (input.Typer, error) { return typer, nil }

	err := a.Run(context.Background(), Options{
		Capability: CapabilityVoice,
		Voice:      VoiceOptions{Engine: speech.EngineVosk},
		Deliver:    DeliveryOptions{Type: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "turn on lights\n", out.String())
	assert.Equal(t, []string{"turn on lights"}, typer.typed)
	assert.True(t, released)
	assert.Equal(t, speech.EngineVosk, gotOpts.Engine)
	assert.Equal(t, "auto", gotOpts.Language)
	assert.Nil(t, listener.opts.Trigger)
}

func TestRun_VoiceDefaultsFromConfig(t *testing.T) {
	a, _ := newTestApp(t)

	var gotOpts VoiceOptions
	a.newVoice = func(_ context.Context, opts VoiceOptions) (voiceRunner, func(), error) {
		gotOpts = opts
		return nil, nil, errors.New("no models")
	}

	err := a.Run(context.Background(), Options{Capability: CapabilityVoice})
	require.Error(t, err)
	assert.Equal(t, speech.EngineWhisper, gotOpts.Engine)
}

func TestRun_VoiceRecognitionError(t *testing.T) {
	a, _ := newTestApp(t)
	a.newVoice = func(context.Context, VoiceOptions) (voiceRunner, func(), error) {
		return &fakeVoice{err: apperr.ErrRecognition}, func() {}, nil
	}

	err := a.Run(context.Background(), Options{Capability: CapabilityVoice})
	assert.Equal(t, apperr.ExitRecognition, apperr.ExitCode(err))
}

func TestRun_NoCapability(t *testing.T) {
	a, _ := newTestApp(t)
	err := a.Run(context.Background(), Options{})
	assert.ErrorIs(t, err, apperr.ErrUsage)
}

func TestRun_Twice(t *testing.T) {
	a, _ := newTestApp(t)
	a.newOCR = func() ocrRunner { return &fakeOCR{} }

	require.NoError(t, a.Run(context.Background(), Options{Capability: CapabilityOCR}))
	assert.Error(t, a.Run(context.Background(), Options{Capability: CapabilityOCR}))
}

func TestRun_LSPMissingServer(t *testing.T) {
	a, _ := newTestApp(t)
	file := filepath.Join(t.TempDir(), "main.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))

	err := a.Run(context.Background(), Options{
		Capability: CapabilityLSP,
		LSP:        LSPOptions{Command: []string{"voiceassist-no-such-server"}, File: file},
	})
	assert.ErrorIs(t, err, apperr.ErrProcessStart)
	assert.Equal(t, apperr.ExitProcessStart, apperr.ExitCode(err))
}

func TestResolveLSP(t *testing.T) {
	t.Run("preset by extension", func(t *testing.T) {
		opts, err := resolveLSP(LSPOptions{File: "/src/main.go"})
		require.NoError(t, err)
		assert.Equal(t, []string{"gopls", "serve"}, opts.Command)
		assert.Equal(t, "go", opts.Language)
		assert.Equal(t, "/src", opts.Root)
	})

	t.Run("explicit command keeps default language", func(t *testing.T) {
		opts, err := resolveLSP(LSPOptions{Command: []string{"my-ls", "--stdio"}, File: "notes.txt", Root: "/work"})
		require.NoError(t, err)
		assert.Equal(t, []string{"my-ls", "--stdio"}, opts.Command)
		assert.Equal(t, lsp.DefaultLanguage, opts.Language)
		assert.Equal(t, "/work", opts.Root)
	})

	t.Run("language flag picks preset", func(t *testing.T) {
		opts, err := resolveLSP(LSPOptions{File: "script", Language: "rust"})
		require.NoError(t, err)
		assert.Equal(t, []string{"rust-analyzer"}, opts.Command)
		assert.Equal(t, "rust", opts.Language)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := resolveLSP(LSPOptions{Command: []string{"pylsp"}})
		assert.ErrorIs(t, err, apperr.ErrUsage)
	})

	t.Run("unknown extension without command", func(t *testing.T) {
		_, err := resolveLSP(LSPOptions{File: "notes.txt"})
		assert.ErrorIs(t, err, apperr.ErrUsage)
	})
}

func llmServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"llama3","object":"model"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func appWithLLM(t *testing.T, enabled bool, url, model string) *App {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	data := fmt.Sprintf(`{"llm":{"enabled":%t,"url":%q,"model":%q}}`, enabled, url, model)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return New(config.Load(path), nil, NewPrinter(&bytes.Buffer{}, FormatText, false), nil)
}

func TestCorrector(t *testing.T) {
	srv := llmServer(t)

	t.Run("model available", func(t *testing.T) {
		a := appWithLLM(t, false, srv.URL+"/v1", "llama3")
		assert.NotNil(t, a.corrector(context.Background(), true))
	})

	t.Run("enabled in config", func(t *testing.T) {
		a := appWithLLM(t, true, srv.URL+"/v1", "llama3")
		assert.NotNil(t, a.corrector(context.Background(), false))
	})

	t.Run("not requested", func(t *testing.T) {
		a := appWithLLM(t, false, srv.URL+"/v1", "llama3")
		assert.Nil(t, a.corrector(context.Background(), false))
	})

	t.Run("model missing on server", func(t *testing.T) {
		a := appWithLLM(t, false, srv.URL+"/v1", "mistral")
		assert.Nil(t, a.corrector(context.Background(), true))
	})

	t.Run("server unreachable", func(t *testing.T) {
		a := appWithLLM(t, false, "http://127.0.0.1:1/v1", "llama3")
		assert.Nil(t, a.corrector(context.Background(), true))
	})
}
