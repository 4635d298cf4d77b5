// Package apperr содержит виды ошибок, которые видит пользователь CLI,
// и соответствующие им коды выхода.
package apperr

import "errors"

var (
	// ErrUsage - неверная комбинация флагов.
	ErrUsage = errors.New("неверные аргументы командной строки")

	// ErrProcessStart - бинарник языкового сервера не найден или не запускается.
	ErrProcessStart = errors.New("не удалось запустить языковой сервер")

	// ErrProcessExited - поток языкового сервера неожиданно закончился.
	ErrProcessExited = errors.New("языковой сервер завершился")

	// ErrCapture - нет экрана, микрофона или устройство занято.
	ErrCapture = errors.New("ошибка захвата")

	// ErrRecognition - движок распознавания недоступен или не дал результата.
	ErrRecognition = errors.New("ошибка распознавания")
)

// Коды выхода процесса.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitProcessStart = 3
	ExitProcessExit  = 4
	ExitCapture      = 5
	ExitRecognition  = 6
)

// ExitCode возвращает код выхода для ошибки.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, ErrProcessStart):
		return ExitProcessStart
	case errors.Is(err, ErrProcessExited):
		return ExitProcessExit
	case errors.Is(err, ErrCapture):
		return ExitCapture
	case errors.Is(err, ErrRecognition):
		return ExitRecognition
	default:
		return ExitFailure
	}
}
