// Package notify показывает системные уведомления о результате.
package notify

import (
	"github.com/gen2brain/beeep"
	"github.com/hashicorp/go-hclog"

	"voiceassist/internal/i18n"
)

const appName = "voiceassist"

// maxMessage - длина текста уведомления в символах.
const maxMessage = 100

// Notifier отправляет системные уведомления.
type Notifier struct {
	enabled bool
	logger  hclog.Logger
	send    func(title, message, icon string) error
}

// New создаёт Notifier. Выключенный Notifier ничего не показывает.
func New(enabled bool, logger hclog.Logger) *Notifier {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Notifier{
		enabled: enabled,
		logger:  logger,
		send:    beeep.Notify,
	}
}

// OCRDone сообщает распознанный с экрана текст.
func (n *Notifier) OCRDone(text string) {
	n.notify(i18n.T("notify_ocr_done"), text)
}

// VoiceDone сообщает распознанную команду.
func (n *Notifier) VoiceDone(text string) {
	n.notify(i18n.T("notify_voice_done"), text)
}

// Error сообщает об ошибке.
func (n *Notifier) Error(msg string) {
	n.notify(i18n.T("notify_error"), msg)
}

func (n *Notifier) notify(title, message string) {
	if !n.enabled {
		return
	}
	// ошибки уведомлений не прерывают работу
	if err := n.send(appName+": "+title, truncate(message, maxMessage), ""); err != nil {
		n.logger.Debug("уведомление не показано", "error", err)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
