// voiceassist - консольный помощник с тремя режимами: поток диагностик
// языкового сервера, распознавание текста с экрана и голосовая команда.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"voiceassist/internal/apperr"
	"voiceassist/internal/hotkey"
	"voiceassist/internal/i18n"
)

func main() {
	code := apperr.ExitOK
	// главный поток остаётся за циклом событий горячих клавиш (macOS)
	hotkey.RunOnMainThread(func() {
		code = run(os.Args[1:], os.Stdout, os.Stderr)
	})
	os.Exit(code)
}

// run выполняет команду и возвращает код выхода.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return apperr.ExitOK
	}

	fmt.Fprintf(stderr, "%s: %v\n", i18n.T("error_prefix"), err)
	if errors.Is(err, apperr.ErrUsage) {
		fmt.Fprintln(stderr)
		fmt.Fprint(stderr, cmd.UsageString())
	}
	return apperr.ExitCode(err)
}
