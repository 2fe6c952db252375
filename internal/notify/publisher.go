package notify

import (
	"time"

	"campus-pay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Publisher fans payment events out to a payee's live sessions.
// Delivery is best-effort: a full or dead sink never blocks the
// transfer path beyond the configured timeout and never fails the
// publish for the remaining sinks.
type Publisher struct {
	registry *Registry
	timeout  time.Duration
	log      zerolog.Logger
}

// NewPublisher creates a Publisher over the given registry. timeout
// bounds the delivery attempt per session.
func NewPublisher(registry *Registry, timeout time.Duration, log zerolog.Logger) *Publisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Publisher{
		registry: registry,
		timeout:  timeout,
		log:      log,
	}
}

// Publish delivers event to every session live for payeeID at call
// time. Sinks are written sequentially, so events for one payee are
// observed in publish order. A session that cannot accept the event
// within the timeout is treated as dead and unregistered.
func (p *Publisher) Publish(payeeID uuid.UUID, event domain.PaymentEvent) {
	sessions := p.registry.LookupLive(payeeID)
	if len(sessions) == 0 {
		return
	}

	for _, s := range sessions {
		p.deliver(s, event)
	}
}

func (p *Publisher) deliver(s *Session, event domain.PaymentEvent) {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case s.events <- event:
	case <-s.done:
		// Unregistered between lookup and send, nothing to do.
	case <-timer.C:
		p.registry.Unregister(s)
		p.log.Warn().
			Str("payee_id", s.payeeID.String()).
			Str("transaction_id", event.TransactionID.String()).
			Msg("live session not draining, dropped")
	}
}
