// Package dialog показывает нативные диалоги: выбор файла и окно результата.
package dialog

import (
	"errors"
	"fmt"

	"github.com/ncruces/zenity"
)

// ErrCanceled - пользователь закрыл диалог.
var ErrCanceled = zenity.ErrCanceled

// SelectFile открывает диалог выбора файла. patterns - шаблоны вида "*.py";
// пустой список разрешает любые файлы.
func SelectFile(title string, patterns []string) (string, error) {
	opts := []zenity.Option{zenity.Title(title)}
	if len(patterns) > 0 {
		opts = append(opts, zenity.FileFilters{
			{Name: "Source", Patterns: patterns, CaseFold: true},
		})
	}

	path, err := zenity.SelectFile(opts...)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrCanceled
		}
		return "", fmt.Errorf("диалог выбора файла: %w", err)
	}
	return path, nil
}

// ShowResult показывает текст результата.
func ShowResult(title, text string) error {
	err := zenity.Info(text, zenity.Title(title), zenity.NoIcon)
	if err != nil && !errors.Is(err, zenity.ErrCanceled) {
		return fmt.Errorf("окно результата: %w", err)
	}
	return nil
}

// ShowError показывает сообщение об ошибке.
func ShowError(title, message string) {
	_ = zenity.Error(message, zenity.Title(title))
}
