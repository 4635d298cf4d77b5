package lsp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"go.lsp.dev/protocol"
	"golang.org/x/sync/errgroup"

	"voiceassist/internal/apperr"
)

// DefaultShutdownTimeout - сколько ждать сервер при завершении, прежде чем убить.
const DefaultShutdownTimeout = 3 * time.Second

// exitGrace - сколько ждать код выхода процесса после конца потока.
const exitGrace = 2 * time.Second

// Config настройки запуска языкового сервера.
type Config struct {
	// Command - команда и аргументы, например {"pylsp"} или {"gopls", "serve"}.
	Command []string

	// RootDir - корень рабочей области и рабочая директория процесса.
	RootDir string

	// Env - дополнительные переменные окружения процесса.
	Env []string

	// ClientName и ClientVersion передаются серверу в initialize.
	ClientName    string
	ClientVersion string

	// ShutdownTimeout - 0 означает DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
}

// document - открытый в сессии файл.
type document struct {
	path       string
	uri        protocol.DocumentURI
	languageID string
	version    int32
	text       string
}

// Session владеет процессом языкового сервера и его потоками.
//
// Сессия создаётся Start и всегда должна быть закрыта Close. Diagnostics и
// Close нельзя вызывать одновременно: чтобы прервать чтение, отмените ctx.
type Session struct {
	cfg    Config
	logger hclog.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	conn   *Conn

	// stderr сервера: exec копирует его в stderrW, группа читает stderrR
	stderrR *io.PipeReader
	stderrW *io.PipeWriter

	docMu sync.Mutex
	doc   *document

	bgCtx    context.Context
	bgCancel context.CancelFunc
	group    *errgroup.Group

	waitOnce sync.Once
	waitDone chan struct{}
	waitErr  error

	abortOnce sync.Once
	aborted   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Start запускает языковой сервер и выполняет initialize/initialized.
//
// Ошибки:
//
//	apperr.ErrProcessStart - бинарник не найден, не запускается или отклонил initialize
//	apperr.ErrProcessExited - процесс завершился во время рукопожатия
func Start(ctx context.Context, cfg Config, logger hclog.Logger) (*Session, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if len(cfg.Command) == 0 || cfg.Command[0] == "" {
		return nil, fmt.Errorf("%w: пустая команда", apperr.ErrProcessStart)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.RootDir == "" {
		cfg.RootDir = "."
	}
	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrProcessStart, err)
	}
	cfg.RootDir = root

	path, err := exec.LookPath(cfg.Command[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrProcessStart, cfg.Command[0], err)
	}

	s := &Session{
		cfg:      cfg,
		logger:   logger,
		waitDone: make(chan struct{}),
		aborted:  make(chan struct{}),
	}

	s.cmd = exec.Command(path, cfg.Command[1:]...)
	s.cmd.Dir = root
	if len(cfg.Env) > 0 {
		s.cmd.Env = append(os.Environ(), cfg.Env...)
	}
	s.stderrR, s.stderrW = io.Pipe()
	s.cmd.Stderr = s.stderrW
	s.cmd.WaitDelay = cfg.ShutdownTimeout

	if s.stdin, err = s.cmd.StdinPipe(); err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", apperr.ErrProcessStart, err)
	}
	if s.stdout, err = s.cmd.StdoutPipe(); err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", apperr.ErrProcessStart, err)
	}

	logger.Info("запуск языкового сервера", "command", path, "args", cfg.Command[1:], "root", root)
	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrProcessStart, path, err)
	}

	s.conn = NewConn(s.stdout, s.stdin, logger)
	s.bgCtx, s.bgCancel = context.WithCancel(context.Background())
	s.group, s.bgCtx = errgroup.WithContext(s.bgCtx)
	s.group.Go(func() error {
		forwardStderr(s.stderrR, logger.Named("stderr"))
		return nil
	})

	if err := s.initialize(ctx); err != nil {
		s.abort()
		_ = s.Close(context.Background())
		return nil, err
	}

	logger.Debug("языковой сервер готов", "pid", s.cmd.Process.Pid)
	return s, nil
}

func (s *Session) initialize(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.abort)
	defer stop()

	pid, err := safecast.Conv[int32](os.Getpid())
	if err != nil {
		pid = 0
	}

	params := protocol.InitializeParams{
		ProcessID: pid,
		RootURI:   documentURI(s.cfg.RootDir),
		ClientInfo: &protocol.ClientInfo{
			Name:    s.cfg.ClientName,
			Version: s.cfg.ClientVersion,
		},
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				PublishDiagnostics: &protocol.PublishDiagnosticsClientCapabilities{
					RelatedInformation: true,
				},
			},
		},
	}

	if _, err := s.conn.Call(ctx, methodInitialize, params); err != nil {
		var rpcErr *ResponseError
		switch {
		case errors.Is(err, apperr.ErrProcessExited):
			return s.exitError(err)
		case errors.As(err, &rpcErr):
			return fmt.Errorf("%w: %v", apperr.ErrProcessStart, err)
		default:
			return err
		}
	}

	if err := s.conn.Notify(methodInitialized, struct{}{}); err != nil {
		return fmt.Errorf("%w: initialized: %v", apperr.ErrProcessExited, err)
	}
	return nil
}

// Open читает файл и отправляет textDocument/didOpen.
func (s *Session) Open(path, languageID string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("чтение %s: %w", path, err)
	}

	doc := &document{
		path:       path,
		uri:        documentURI(path),
		languageID: languageID,
		version:    1,
		text:       string(data),
	}

	s.docMu.Lock()
	s.doc = doc
	s.docMu.Unlock()

	s.logger.Debug("открытие документа", "uri", doc.uri, "language", languageID)
	return s.conn.Notify(methodDidOpen, protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        doc.uri,
			LanguageID: protocol.LanguageIdentifier(languageID),
			Version:    doc.version,
			Text:       doc.text,
		},
	})
}

// versionedDocument - VersionedTextDocumentIdentifier.
type versionedDocument struct {
	URI     protocol.DocumentURI `json:"uri"`
	Version int32                `json:"version"`
}

// fullTextChange - изменение, заменяющее весь текст документа.
type fullTextChange struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   versionedDocument `json:"textDocument"`
	ContentChanges []fullTextChange  `json:"contentChanges"`
}

// Change отправляет новый текст открытого документа (textDocument/didChange).
// Одинаковый текст повторно не отправляется.
func (s *Session) Change(text string) error {
	s.docMu.Lock()
	doc := s.doc
	if doc == nil {
		s.docMu.Unlock()
		return errors.New("документ не открыт")
	}
	if doc.text == text {
		s.docMu.Unlock()
		return nil
	}
	doc.version++
	doc.text = text
	params := didChangeParams{
		TextDocument:   versionedDocument{URI: doc.uri, Version: doc.version},
		ContentChanges: []fullTextChange{{Text: text}},
	}
	s.docMu.Unlock()

	s.logger.Debug("изменение документа", "uri", params.TextDocument.URI, "version", params.TextDocument.Version)
	return s.conn.Notify(methodDidChange, params)
}

// Diagnostics возвращает поток диагностик сервера. Отмена ctx закрывает
// процесс, что разблокирует чтение; поток при этом заканчивается ошибкой ctx.
func (s *Session) Diagnostics(ctx context.Context) iter.Seq2[Diagnostic, error] {
	return func(yield func(Diagnostic, error) bool) {
		stop := context.AfterFunc(ctx, s.abort)
		defer stop()

		for d, err := range s.conn.Diagnostics(ctx) {
			if err != nil && errors.Is(err, apperr.ErrProcessExited) {
				err = s.exitError(err)
			}
			if !yield(d, err) {
				return
			}
		}
	}
}

// Close завершает сервер: shutdown + exit, закрытие stdin, ожидание процесса.
// Повторные вызовы возвращают результат первого.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closeErr = s.close(ctx)
	})
	return s.closeErr
}

func (s *Session) close(ctx context.Context) error {
	var result *multierror.Error

	if s.bgCancel != nil {
		s.bgCancel()
	}

	if !s.isAborted() && !s.isExited() && s.conn != nil && s.conn.ended == nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		stop := context.AfterFunc(shutdownCtx, s.abort)
		if _, err := s.conn.Call(shutdownCtx, methodShutdown, nil); err != nil {
			s.logger.Debug("shutdown не выполнен", "error", err)
		} else if err := s.conn.Notify(methodExit, nil); err != nil {
			s.logger.Debug("exit не отправлен", "error", err)
		}
		stop()
		cancel()
	}

	if s.stdin != nil {
		_ = s.stdin.Close()
	}

	if s.cmd != nil && s.cmd.Process != nil {
		kill := time.AfterFunc(s.cfg.ShutdownTimeout, s.abort)
		err := s.wait()
		kill.Stop()
		if err != nil && !s.isAborted() {
			result = multierror.Append(result, fmt.Errorf("языковой сервер: %w", err))
		}
	}

	if s.group != nil {
		if err := s.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			result = multierror.Append(result, err)
		}
	}

	s.logger.Debug("языковой сервер остановлен")
	return result.ErrorOrNil()
}

// abort убивает процесс и закрывает его stdout: блокирующее чтение
// получает конец потока.
func (s *Session) abort() {
	s.abortOnce.Do(func() {
		close(s.aborted)
		if s.cmd != nil && s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		if s.stdout != nil {
			_ = s.stdout.Close()
		}
	})
}

func (s *Session) isAborted() bool {
	select {
	case <-s.aborted:
		return true
	default:
		return false
	}
}

func (s *Session) isExited() bool {
	select {
	case <-s.waitDone:
		return true
	default:
		return false
	}
}

// wait вызывает cmd.Wait ровно один раз. После Wait весь stderr уже
// скопирован в трубу, её закрытие завершает forwardStderr.
func (s *Session) wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
		_ = s.stderrW.Close()
		close(s.waitDone)
	})
	<-s.waitDone
	return s.waitErr
}

// exitError дополняет ErrProcessExited кодом выхода процесса, если он
// успел завершиться.
func (s *Session) exitError(err error) error {
	go s.wait()

	select {
	case <-s.waitDone:
	case <-time.After(exitGrace):
		return err
	}

	var exitErr *exec.ExitError
	switch {
	case s.waitErr == nil:
		return fmt.Errorf("%w (код выхода 0)", err)
	case errors.As(s.waitErr, &exitErr):
		return fmt.Errorf("%w (%v)", err, exitErr)
	default:
		return fmt.Errorf("%w (%v)", err, s.waitErr)
	}
}

// maxStderrLine - самая длинная строка stderr, которую логируем целиком.
const maxStderrLine = 1 << 20

// forwardStderr пишет каждую строку r отдельной debug-записью до конца потока.
func forwardStderr(r io.Reader, logger hclog.Logger) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxStderrLine)
	for sc.Scan() {
		logger.Debug(sc.Text())
	}
	if err := sc.Err(); err != nil {
		logger.Debug("чтение stderr прервано", "error", err)
		// сервер не должен блокироваться на записи в stderr
		_, _ = io.Copy(io.Discard, r)
	}
}
