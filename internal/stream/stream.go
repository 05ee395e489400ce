package stream

import (
	"context"
	"sync"
	"time"

	"univisa.org/internal/compliance"
)

// CPTEvent describes one lifecycle change of a CPT request, pushed to the
// DSO dashboard over SSE.
type CPTEvent struct {
	RequestID   string            `json:"request_id"`
	StudentID   string            `json:"student_id"`
	StudentName string            `json:"student_name,omitempty"`
	CompanyName string            `json:"company_name"`
	Status      compliance.Status `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Stream fan-outs CPT events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan CPTEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan CPTEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan CPTEvent {
	ch := make(chan CPTEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt CPTEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
