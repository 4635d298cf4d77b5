package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// JSONRPCVersion - версия JSON-RPC в LSP.
const JSONRPCVersion = "2.0"

// Методы LSP, которые использует клиент.
const (
	methodInitialize             = "initialize"
	methodInitialized            = "initialized"
	methodShutdown               = "shutdown"
	methodExit                   = "exit"
	methodDidOpen                = "textDocument/didOpen"
	methodDidChange              = "textDocument/didChange"
	methodPublishDiagnostics     = "textDocument/publishDiagnostics"
	methodWorkspaceConfiguration = "workspace/configuration"
	methodLogMessage             = "window/logMessage"
	methodShowMessage            = "window/showMessage"
)

// maxFrameSize - сообщения больше этого размера пропускаются.
const maxFrameSize = 64 << 20

const contentLengthHeader = "content-length:"

// errMalformed помечает кадр, который нельзя разобрать. Поток при этом
// остаётся пригодным для чтения следующих сообщений.
var errMalformed = errors.New("некорректное сообщение")

// Request - запрос клиента к серверу.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Notification - уведомление: без id и без ответа.
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response - ответ клиента на запрос сервера.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

// ResponseError - ошибка JSON-RPC в ответе сервера.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("LSP error %d: %s", e.Code, e.Message)
}

// message - любое входящее сообщение: запрос, уведомление или ответ.
type message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

func (m *message) hasID() bool {
	return len(m.ID) > 0 && string(m.ID) != "null"
}

func (m *message) isRequest() bool {
	return m.Method != "" && m.hasID()
}

func (m *message) isResponse() bool {
	return m.Method == "" && m.hasID()
}

// idEquals сравнивает id ответа с числовым id запроса ("7" и 7 равны).
func (m *message) idEquals(id int64) bool {
	raw := strings.Trim(string(m.ID), `"`)
	return raw == strconv.FormatInt(id, 10)
}

// readFrame читает одно сообщение базового протокола LSP:
// заголовки, пустая строка, тело длиной Content-Length.
//
// Ошибки, обёрнутые в errMalformed, означают пропущенный кадр;
// io.EOF и io.ErrUnexpectedEOF - конец потока.
func readFrame(r *bufio.Reader) ([]byte, error) {
	contentLength := -1
	invalidLength := ""
	sawHeader := false

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF && (line != "" || sawHeader) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if !sawHeader {
				continue
			}
			break
		}
		sawHeader = true

		// Заголовок ищется внутри строки: после пропущенного кадра без
		// перевода строки тело склеивается со следующим заголовком.
		idx := strings.Index(strings.ToLower(line), contentLengthHeader)
		if idx < 0 {
			continue // Content-Type и прочие заголовки
		}
		value := strings.TrimSpace(line[idx+len(contentLengthHeader):])
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			invalidLength = value
			continue
		}
		contentLength = n
		invalidLength = ""
	}

	switch {
	case invalidLength != "":
		return nil, fmt.Errorf("%w: Content-Length %q", errMalformed, invalidLength)
	case contentLength < 0:
		return nil, fmt.Errorf("%w: нет заголовка Content-Length", errMalformed)
	case contentLength == 0:
		return nil, fmt.Errorf("%w: пустое тело", errMalformed)
	case contentLength > maxFrameSize:
		if _, err := io.CopyN(io.Discard, r, int64(contentLength)); err != nil {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: слишком большое сообщение (%d байт)", errMalformed, contentLength)
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, io.ErrUnexpectedEOF
	}
	return body, nil
}

// writeFrame пишет сообщение с заголовком Content-Length одним вызовом Write.
func writeFrame(w io.Writer, payload []byte) error {
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(payload))
	buf := make([]byte, 0, len(header)+len(payload))
	buf = append(buf, header...)
	buf = append(buf, payload...)
	_, err := w.Write(buf)
	return err
}
