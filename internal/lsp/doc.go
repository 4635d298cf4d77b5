// Package lsp - минимальный клиент Language Server Protocol для потока диагностик.
//
// Клиент запускает языковой сервер как дочерний процесс, общается с ним по
// stdin/stdout (базовый протокол LSP: заголовок Content-Length + JSON-RPC 2.0),
// открывает один документ и отдаёт уведомления textDocument/publishDiagnostics
// как последовательность Diagnostic.
//
//	s, err := lsp.Start(ctx, lsp.Config{Command: []string{"pylsp"}, RootDir: "."}, logger)
//	if err != nil {
//	    return err
//	}
//	defer s.Close(context.Background())
//
//	if err := s.Open("main.py", "python"); err != nil {
//	    return err
//	}
//	for d, err := range s.Diagnostics(ctx) {
//	    if err != nil {
//	        return err // apperr.ErrProcessExited или ошибка ctx
//	    }
//	    fmt.Println(d.Path(), d.Line(), d.Message)
//	}
package lsp
