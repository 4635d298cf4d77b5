package lsp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch следит за открытым документом и отправляет didChange при каждом
// сохранении. Наблюдение идёт до Close.
//
// Наблюдается директория, а не файл: редакторы часто сохраняют через
// переименование временного файла.
func (s *Session) Watch() error {
	s.docMu.Lock()
	doc := s.doc
	s.docMu.Unlock()
	if doc == nil {
		return errors.New("документ не открыт")
	}

	target, err := filepath.Abs(doc.path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		w.Close()
		return fmt.Errorf("fsnotify: %w", err)
	}

	logger := s.logger.Named("watch")
	logger.Debug("наблюдение за файлом", "path", target)

	s.group.Go(func() error {
		defer w.Close()
		for {
			select {
			case <-s.bgCtx.Done():
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				data, err := os.ReadFile(target)
				if err != nil {
					logger.Warn("не удалось прочитать файл", "path", target, "error", err)
					continue
				}
				if err := s.Change(string(data)); err != nil {
					return fmt.Errorf("didChange: %w", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				logger.Warn("ошибка наблюдения", "error", err)
			}
		}
	})
	return nil
}
