package usecase

import (
	"context"
	"sync"
	"time"

	"careers-backend/internal/domain"
	"careers-backend/pkg/email"
	"careers-backend/pkg/logger"
	"careers-backend/pkg/security"
)

const notifyTimeout = 30 * time.Second

// Notifier sends best-effort emails on background goroutines. Failures are
// logged and never reach the caller.
type Notifier struct {
	mailer  domain.Mailer
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotifier(mailer domain.Mailer) *Notifier {
	return &Notifier{mailer: mailer, timeout: notifyTimeout}
}

// Send renders msg and delivers it asynchronously. An empty recipient or a
// render failure is logged and dropped.
func (n *Notifier) Send(to string, kind string, render func() (email.Message, error)) {
	if n == nil || n.mailer == nil || to == "" {
		return
	}
	msg, err := render()
	if err != nil {
		logger.Log.Error("Failed to render notification", "kind", kind, "error", err)
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		messageID, err := n.mailer.Send(ctx, to, msg.Subject, msg.HTML)
		if err != nil {
			logger.Log.Warn("Notification email failed", "kind", kind, "to", security.MaskEmail(to), "error", err)
			return
		}
		logger.Log.Debug("Notification email sent", "kind", kind, "message_id", messageID)
	}()
}

// Wait blocks until every in-flight notification has finished.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}
