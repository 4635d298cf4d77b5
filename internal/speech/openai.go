package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultRemoteModel - модель транскрипции по умолчанию.
const DefaultRemoteModel = openai.Whisper1

// RemoteConfig настройки OpenAI-совместимого сервиса транскрипции.
type RemoteConfig struct {
	// URL - базовый адрес API; пустой - api.openai.com.
	URL    string
	Model  string
	APIKey string
}

// OpenAIRecognizer отправляет запись в сервис транскрипции.
type OpenAIRecognizer struct {
	client *openai.Client
	model  string
}

// NewOpenAI создаёт распознаватель для сервиса транскрипции.
func NewOpenAI(cfg RemoteConfig) (*OpenAIRecognizer, error) {
	if cfg.APIKey == "" && cfg.URL == "" {
		return nil, errors.New("не задан ключ API: установите OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultRemoteModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.URL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.URL, "/")
	}

	return &OpenAIRecognizer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Name возвращает название движка.
func (o *OpenAIRecognizer) Name() string {
	return string(EngineOpenAI)
}

// Transcribe отправляет запись в формате WAV. "auto" не передаётся:
// сервис сам определяет язык.
func (o *OpenAIRecognizer) Transcribe(ctx context.Context, samples []float32, lang string) (string, error) {
	req := openai.AudioRequest{
		Model:    o.model,
		FilePath: "speech.wav",
		Reader:   bytes.NewReader(encodeWAV(samples)),
		Format:   openai.AudioResponseFormatJSON,
	}
	if lang != "" && lang != "auto" {
		req.Language = lang
	}

	resp, err := o.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("транскрипция: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Close ничего не делает: соединения принадлежат http.Client.
func (o *OpenAIRecognizer) Close() {}
