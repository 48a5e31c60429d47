package profile

import (
	"context"
	"errors"
	"time"

	"github.com/printhaus/portal/internal/auth/events"
	"github.com/printhaus/portal/internal/profile/domain"
	"go.uber.org/zap"
)

const eventHandleTimeout = 5 * time.Second

// listener keeps profiles in step with auth activity: a sign-in warms
// the profile into existence, an account edit propagates contact data.
type listener struct {
	log *zap.Logger
	svc domain.Service
	sub *events.Subscription
}

func newListener(log *zap.Logger, svc domain.Service, hub *events.Hub) *listener {
	return &listener{
		log: log.Named("profile.listener"),
		svc: svc,
		sub: hub.Subscribe(),
	}
}

func (l *listener) run() {
	for {
		select {
		case <-l.sub.Done():
			return
		case event := <-l.sub.Events():
			l.handle(event)
		}
	}
}

func (l *listener) stop() {
	l.sub.Close()
}

func (l *listener) handle(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), eventHandleTimeout)
	defer cancel()

	switch event.Type {
	case events.SignedIn, events.UserUpdated:
		if _, err := l.svc.Resolve(ctx, event.UserID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			l.log.Warn("profile sync failed",
				zap.String("user_id", event.UserID.String()),
				zap.String("event", string(event.Type)),
				zap.Error(err),
			)
		}
	case events.SignedOut:
		// Nothing to do; sessions are handled by auth.
	}
}
