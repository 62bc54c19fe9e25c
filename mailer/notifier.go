package mailer

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"

	auth "github.com/nexotv/nexo-auth"
)

// TemplateNotifier renders a notification and sends it inline
type TemplateNotifier struct {
	templates *Templates
	sender    Sender
}

func NewTemplateNotifier(templates *Templates, sender Sender) *TemplateNotifier {
	return &TemplateNotifier{
		templates: templates,
		sender:    sender,
	}
}

func (t *TemplateNotifier) Notify(ctx context.Context, n auth.Notification) error {
	msg, err := t.templates.Render(n)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render email")
	}

	if err := t.sender.Send(ctx, msg); err != nil {
		return goerrors.Wrap(err, auth.ErrEmailDelivery.Category, auth.ErrEmailDelivery.Message).
			WithTextCode(auth.ErrEmailDelivery.TextCode).
			WithMetadata(map[string]any{
				"kind": string(n.Kind),
				"to":   n.To(),
			})
	}

	return nil
}

// AsyncNotifier hands notifications to a goroutine and returns at once.
// Delivery runs on a context detached from the caller with its own timeout.
type AsyncNotifier struct {
	next    auth.Notifier
	timeout time.Duration
	logger  auth.Logger
	wg      sync.WaitGroup
	// OnError is called with every failed delivery, on the detached
	// context the delivery ran with.
	OnError func(ctx context.Context, n auth.Notification, err error)
}

func NewAsyncNotifier(next auth.Notifier, timeout time.Duration, logger auth.Logger) *AsyncNotifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AsyncNotifier{
		next:    next,
		timeout: timeout,
		logger:  loggerOrNop(logger),
	}
}

func (a *AsyncNotifier) Notify(ctx context.Context, n auth.Notification) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()

		if err := a.next.Notify(ctx, n); err != nil {
			a.logger.Error("email notification failed",
				"kind", n.Kind,
				"to", n.To(),
				"error", err,
			)
			if a.OnError != nil {
				a.OnError(ctx, n, err)
			}
			return
		}

		a.logger.Debug("email notification sent", "kind", n.Kind, "to", n.To())
	}()
	return nil
}

// Wait blocks until every dispatched notification finished
func (a *AsyncNotifier) Wait() {
	a.wg.Wait()
}

func loggerOrNop(logger auth.Logger) auth.Logger {
	if logger == nil {
		return auth.NewZapLogger(zap.NewNop())
	}
	return logger
}
