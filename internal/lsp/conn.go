package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"

	"voiceassist/internal/apperr"
)

// Conn - JSON-RPC соединение с языковым сервером поверх пары потоков.
//
// Чтение выполняется только в вызывающей горутине (Call, Diagnostics),
// запись защищена мьютексом и допустима из нескольких горутин.
type Conn struct {
	in      *bufio.Reader
	out     io.Writer
	logger  hclog.Logger
	writeMu sync.Mutex
	nextID  atomic.Int64

	// pending - диагностики, пришедшие до начала стриминга
	// (например, во время ожидания ответа на initialize).
	pending []Diagnostic
	ended   error
}

// NewConn создаёт соединение: r - stdout сервера, w - stdin сервера.
func NewConn(r io.Reader, w io.Writer, logger hclog.Logger) *Conn {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Conn{
		in:     bufio.NewReader(r),
		out:    w,
		logger: logger,
	}
}

// Call отправляет запрос и читает поток до ответа с тем же id.
// Уведомления, пришедшие раньше ответа, обрабатываются как обычно.
func (c *Conn) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	if err := c.write(Request{JSONRPC: JSONRPCVersion, ID: id, Method: method, Params: params}); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	for {
		msg, err := c.read()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, c.end(err)
		}

		if msg.isResponse() {
			if !msg.idEquals(id) {
				c.logger.Debug("ответ на неизвестный запрос", "id", string(msg.ID))
				continue
			}
			if msg.Error != nil {
				return nil, fmt.Errorf("%s: %w", method, msg.Error)
			}
			return msg.Result, nil
		}

		c.pending = append(c.pending, c.handle(msg)...)
	}
}

// Notify отправляет уведомление.
func (c *Conn) Notify(method string, params any) error {
	return c.write(Notification{JSONRPC: JSONRPCVersion, Method: method, Params: params})
}

// Diagnostics возвращает ленивую бесконечную последовательность диагностик.
//
// Последовательность заканчивается одной ошибкой: apperr.ErrProcessExited при
// конце потока или ошибкой ctx, если чтение прервано отменой. Повторный обход
// после конца сразу возвращает ту же ошибку.
func (c *Conn) Diagnostics(ctx context.Context) iter.Seq2[Diagnostic, error] {
	return func(yield func(Diagnostic, error) bool) {
		if c.ended != nil {
			yield(Diagnostic{}, c.ended)
			return
		}

		for len(c.pending) > 0 {
			d := c.pending[0]
			c.pending = c.pending[1:]
			if !yield(d, nil) {
				return
			}
		}

		for {
			msg, err := c.read()
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					yield(Diagnostic{}, ctxErr)
					return
				}
				yield(Diagnostic{}, c.end(err))
				return
			}
			diags := c.handle(msg)
			for i, d := range diags {
				if !yield(d, nil) {
					// остаток пачки достанется следующему обходу
					c.pending = append(c.pending, diags[i+1:]...)
					return
				}
			}
		}
	}
}

func (c *Conn) end(cause error) error {
	if c.ended == nil {
		if errors.Is(cause, io.EOF) {
			c.ended = apperr.ErrProcessExited
		} else {
			c.ended = fmt.Errorf("%w: %v", apperr.ErrProcessExited, cause)
		}
	}
	return c.ended
}

// read возвращает следующее разобранное сообщение. Некорректные кадры
// пропускаются с предупреждением.
func (c *Conn) read() (*message, error) {
	if c.ended != nil {
		return nil, c.ended
	}
	for {
		payload, err := readFrame(c.in)
		if err != nil {
			if errors.Is(err, errMalformed) {
				c.logger.Warn("пропущено сообщение сервера", "error", err)
				continue
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				c.logger.Warn("поток сервера оборвался посреди сообщения")
			}
			return nil, err
		}

		var msg message
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.logger.Warn("пропущено сообщение сервера", "error", fmt.Errorf("%w: %v", errMalformed, err))
			continue
		}
		if msg.Method == "" && !msg.hasID() {
			c.logger.Warn("пропущено сообщение без method и id")
			continue
		}
		return &msg, nil
	}
}

// handle обрабатывает запрос или уведомление сервера и возвращает
// диагностики, если это publishDiagnostics.
func (c *Conn) handle(msg *message) []Diagnostic {
	if msg.isRequest() {
		c.reply(msg)
		return nil
	}
	if msg.isResponse() {
		c.logger.Debug("ответ без ожидающего запроса", "id", string(msg.ID))
		return nil
	}

	switch msg.Method {
	case methodPublishDiagnostics:
		diags, err := decodeDiagnostics(msg.Params)
		if err != nil {
			c.logger.Warn("пропущены диагностики", "error", err)
			return nil
		}
		c.logger.Debug("получены диагностики", "count", len(diags))
		return diags
	case methodLogMessage, methodShowMessage:
		var p struct {
			Type    int    `json:"type"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(msg.Params, &p); err == nil {
			c.logger.Debug("сообщение сервера", "type", p.Type, "message", p.Message)
		}
	default:
		c.logger.Trace("уведомление сервера", "method", msg.Method)
	}
	return nil
}

// reply отвечает на запрос сервера пустым результатом, чтобы сервер
// не ждал клиента.
func (c *Conn) reply(msg *message) {
	var result any
	if msg.Method == methodWorkspaceConfiguration {
		var p struct {
			Items []json.RawMessage `json:"items"`
		}
		_ = json.Unmarshal(msg.Params, &p)
		result = make([]any, len(p.Items))
	}

	c.logger.Debug("запрос сервера", "method", msg.Method, "id", string(msg.ID))
	if err := c.write(Response{JSONRPC: JSONRPCVersion, ID: msg.ID, Result: result}); err != nil {
		c.logger.Warn("не удалось ответить серверу", "method", msg.Method, "error", err)
	}
}

func (c *Conn) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.out == nil {
		return errors.New("соединение только для чтения")
	}
	return writeFrame(c.out, data)
}
