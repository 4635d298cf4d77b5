// Package llm исправляет распознанный текст через OpenAI-совместимый чат
// (по умолчанию локальная Ollama).
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultURL     = "http://localhost:11434/v1"
	DefaultModel   = "qwen2.5:0.5b"
	DefaultTimeout = 10 * time.Second

	// ollamaKey - Ollama не проверяет ключ, но заголовок должен быть.
	ollamaKey = "ollama"
)

const systemPrompt = "Ты исправляешь ошибки распознавания речи. " +
	"Верни ТОЛЬКО исправленный текст, без пояснений и кавычек. " +
	"Если ошибок нет, верни текст без изменений."

// Config конфигурация клиента.
type Config struct {
	URL     string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// Client - клиент чата для исправления текста.
type Client struct {
	client *openai.Client
	model  string
	logger hclog.Logger
}

// New создаёт клиент. Пустые поля заменяются значениями по умолчанию.
func New(cfg Config, logger hclog.Logger) *Client {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.APIKey == "" {
		cfg.APIKey = ollamaKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.URL, "/")
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// CorrectText исправляет текст. При ошибке возвращается исходный текст
// вместе с ошибкой.
func (c *Client) CorrectText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	c.logger.Debug("запрос на исправление", "model", c.model, "chars", len(text))
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		return text, fmt.Errorf("llm: %w", err)
	}
	if len(resp.Choices) == 0 {
		return text, errors.New("llm: пустой ответ")
	}

	corrected := strings.TrimSpace(resp.Choices[0].Message.Content)
	if corrected == "" {
		return text, errors.New("llm: пустой ответ")
	}

	c.logger.Debug("текст исправлен", "elapsed", time.Since(start).Round(time.Millisecond), "before", text, "after", corrected)
	return corrected, nil
}

// ListModels возвращает модели сервера.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	names := make([]string, len(list.Models))
	for i, m := range list.Models {
		names[i] = m.ID
	}
	return names, nil
}

// IsAvailable проверяет, что сервер отвечает и знает модель.
func (c *Client) IsAvailable(ctx context.Context) bool {
	names, err := c.ListModels(ctx)
	if err != nil {
		return false
	}
	for _, n := range names {
		if n == c.model {
			return true
		}
	}
	return false
}

// Model возвращает модель.
func (c *Client) Model() string {
	return c.model
}
