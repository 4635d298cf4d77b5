// Package audio записывает звук с микрофона через PortAudio.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/hashicorp/go-hclog"

	"voiceassist/internal/apperr"
)

const (
	// SampleRate - частота дискретизации, которую ждут распознаватели.
	SampleRate = 16000
	// Channels - mono.
	Channels = 1
	// FramesPerBuffer - размер буфера PortAudio.
	FramesPerBuffer = 1024
	// MinSamples - минимальная длина записи (200ms при 16kHz).
	// Whisper не принимает меньше 100ms.
	MinSamples = SampleRate / 5
)

// pollInterval - пауза цикла чтения, когда данных нет.
const pollInterval = 10 * time.Millisecond

// Recorder записывает аудио с микрофона по умолчанию.
type Recorder struct {
	logger hclog.Logger

	mu      sync.Mutex
	stream  *portaudio.Stream
	buffer  []float32
	samples []float32
	running bool
	done    chan struct{}
}

// New инициализирует PortAudio. Ошибка означает, что звуковая
// подсистема недоступна.
func New(logger hclog.Logger) (*Recorder, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: portaudio: %v", apperr.ErrCapture, err)
	}

	return &Recorder{
		logger: logger,
		buffer: make([]float32, FramesPerBuffer),
	}, nil
}

// Start открывает поток микрофона и начинает запись.
// Нет устройства или устройство занято - apperr.ErrCapture.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	stream, err := portaudio.OpenDefaultStream(Channels, 0, SampleRate, FramesPerBuffer, r.buffer)
	if err != nil {
		return fmt.Errorf("%w: микрофон: %v", apperr.ErrCapture, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("%w: микрофон: %v", apperr.ErrCapture, err)
	}

	r.stream = stream
	r.samples = make([]float32, 0, SampleRate*30)
	r.done = make(chan struct{})
	r.running = true

	r.logger.Debug("запись начата", "sample_rate", SampleRate)
	go r.recordLoop(stream, r.done)
	return nil
}

func (r *Recorder) recordLoop(stream *portaudio.Stream, done chan struct{}) {
	defer close(done)

	for r.isRunning() {
		available, err := stream.AvailableToRead()
		if err != nil || available == 0 {
			time.Sleep(pollInterval)
			continue
		}
		if err := stream.Read(); err != nil {
			r.logger.Trace("ошибка чтения потока", "error", err)
			time.Sleep(pollInterval)
			continue
		}

		r.mu.Lock()
		if r.running {
			r.samples = append(r.samples, r.buffer...)
		}
		r.mu.Unlock()
	}
}

func (r *Recorder) isRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Stop останавливает запись и возвращает сэмплы, дополненные тишиной
// до MinSamples.
func (r *Recorder) Stop() []float32 {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	stream := r.stream
	r.stream = nil
	samples := r.samples
	r.samples = nil
	done := r.done
	r.mu.Unlock()

	// цикл проверяет running каждые pollInterval
	select {
	case <-done:
	case <-time.After(10 * pollInterval):
		r.logger.Warn("цикл записи не остановился вовремя")
	}

	if stream != nil {
		_ = stream.Stop()
		_ = stream.Close()
	}

	r.logger.Debug("запись остановлена", "samples", len(samples), "duration", Duration(len(samples)))
	return PadSilence(samples)
}

// Close останавливает запись и освобождает PortAudio.
func (r *Recorder) Close() {
	r.Stop()
	_ = portaudio.Terminate()
}
