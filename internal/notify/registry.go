package notify

import (
	"sync"

	"campus-pay/internal/core/domain"

	"github.com/google/uuid"
)

// Session is one open live-update channel for a payee identity. The
// registry owns the session; consumers read from Events and stop when
// Done is closed.
type Session struct {
	payeeID uuid.UUID
	events  chan domain.PaymentEvent
	done    chan struct{}
	closing sync.Once
}

// PayeeID returns the identity the session was registered for.
func (s *Session) PayeeID() uuid.UUID {
	return s.payeeID
}

// Events returns the session's event stream. The events channel is
// never closed; readers must also select on Done.
func (s *Session) Events() <-chan domain.PaymentEvent {
	return s.events
}

// Done is closed when the session has been unregistered.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Registry tracks which payee identities currently have open live
// sessions. All methods are safe for concurrent use; mutation and
// snapshot reads are guarded by a single RWMutex.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*Session]struct{}
	buffer   int
}

// NewRegistry creates a Registry. buffer is the per-session event
// queue depth; a session that falls this far behind is dropped by the
// publisher.
func NewRegistry(buffer int) *Registry {
	if buffer <= 0 {
		buffer = 16
	}
	return &Registry{
		sessions: make(map[uuid.UUID]map[*Session]struct{}),
		buffer:   buffer,
	}
}

// Register opens a new live session for payeeID. An account may hold
// any number of concurrent sessions (multiple tabs, devices).
func (r *Registry) Register(payeeID uuid.UUID) *Session {
	s := &Session{
		payeeID: payeeID,
		events:  make(chan domain.PaymentEvent, r.buffer),
		done:    make(chan struct{}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sessions[payeeID]
	if !ok {
		set = make(map[*Session]struct{})
		r.sessions[payeeID] = set
	}
	set[s] = struct{}{}
	return s
}

// Unregister removes a session and signals its closure. It is
// idempotent: repeated calls and calls on an already-removed session
// are safe.
func (r *Registry) Unregister(s *Session) {
	if s == nil {
		return
	}

	r.mu.Lock()
	if set, ok := r.sessions[s.payeeID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(r.sessions, s.payeeID)
		}
	}
	r.mu.Unlock()

	s.closing.Do(func() { close(s.done) })
}

// LookupLive returns a snapshot of the sessions currently registered
// for payeeID. Sessions registered after the lookup began are not
// included.
func (r *Registry) LookupLive(payeeID uuid.UUID) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.sessions[payeeID]
	if !ok {
		return nil
	}
	out := make([]*Session, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

// Live reports the number of open sessions for payeeID.
func (r *Registry) Live(payeeID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[payeeID])
}
