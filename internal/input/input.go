// Package input вводит результат в активное поле или кладёт в буфер обмена.
package input

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnsupported - ввод текста на платформе не поддерживается.
var ErrUnsupported = errors.New("ввод текста не поддерживается на этой платформе")

// Typer вводит текст в активное поле ввода.
type Typer interface {
	Type(ctx context.Context, text string) error
}

// New создаёт Typer для текущей платформы.
func New() (Typer, error) {
	return newTyper()
}

// Copy кладёт текст в системный буфер обмена.
func Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("буфер обмена недоступен: нужен xclip, xsel или wl-clipboard")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("буфер обмена: %w", err)
	}
	return nil
}
