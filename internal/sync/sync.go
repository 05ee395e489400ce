// Package sync reconciles locally visible CPT records and alerts with the
// remote authority, tolerating a remote that is slow, unreachable, or
// rejecting requests.
package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	stdsync "sync"
	"time"

	"univisa.org/internal/compliance"
	"univisa.org/internal/compliance/remote"
	"univisa.org/internal/ids"
)

// RecordState tags each locally held record with its persistence status.
type RecordState string

const (
	// StatePending means the optimistic record has been displayed but the
	// remote create has not confirmed yet.
	StatePending RecordState = "pending"
	// StateConfirmed means the remote authority holds this record.
	StateConfirmed RecordState = "confirmed"
	// StateFailed means the remote create was attempted and failed; the
	// record is visible locally but not durably stored.
	StateFailed RecordState = "failed"
)

// ErrUnpersisted is returned when a status transition is attempted on a
// record the remote has never confirmed. The remote has no matching row,
// so no call is made.
var ErrUnpersisted = errors.New("sync: request not yet persisted remotely")

// Record is a CPT request plus its local synchronization state.
type Record struct {
	compliance.CPTRequest
	State RecordState `json:"state"`
}

// Remote is the subset of the API client the synchronizer needs.
type Remote interface {
	Alerts(ctx context.Context, studentID string) ([]compliance.Alert, error)
	ListCPTRequests(ctx context.Context, studentID string) ([]compliance.CPTRequest, error)
	CreateCPTRequest(ctx context.Context, studentID string, draft compliance.CPTDraft) (compliance.CPTRequest, error)
	MarkOfferSigned(ctx context.Context, studentID, requestID string) (compliance.CPTRequest, error)
	AuthorityRequests(ctx context.Context) ([]compliance.AuthorityCPTRequest, error)
}

// Synchronizer owns the keyed local record state for one consumer. Records
// are held in a map keyed by id with an explicit order slice, so replacing
// an optimistic record never depends on list positions.
type Synchronizer struct {
	remote Remote
	bound  time.Duration

	mu      stdsync.Mutex
	records map[string]*Record
	order   []string // newest first
	now     func() time.Time
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithFetchBound overrides the bounded wait applied to list fetches.
func WithFetchBound(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.bound = d
		}
	}
}

// New creates a Synchronizer over the given remote. The default fetch
// bound is 6 seconds.
func New(r Remote, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		remote:  r,
		bound:   6 * time.Second,
		records: make(map[string]*Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAlerts returns the student's alerts, failing over to the static
// fallback list on any transport or decode error. It never returns an
// error; read availability wins over consistency here.
func (s *Synchronizer) FetchAlerts(ctx context.Context, studentID string) []compliance.Alert {
	alerts, err := s.remote.Alerts(ctx, studentID)
	if err != nil || alerts == nil {
		return FallbackAlerts()
	}
	return alerts
}

// FetchRequests returns the student's CPT requests within the configured
// bound. If the remote does not answer in time the call gives up and
// returns whatever is known locally (or an empty list), discarding the
// late result when it eventually arrives. It never returns an error.
func (s *Synchronizer) FetchRequests(ctx context.Context, studentID string) []Record {
	type result struct {
		list []compliance.CPTRequest
		err  error
	}
	ch := make(chan result, 1) // buffered so a late responder never blocks

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		list, err := s.remote.ListCPTRequests(fetchCtx, studentID)
		ch <- result{list: list, err: err}
	}()

	timer := time.NewTimer(s.bound)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return s.visible()
		}
		s.reconcile(res.list)
		return s.visible()
	case <-timer.C:
		// Bound exceeded. The in-flight request is abandoned and its
		// result discarded; local state has already moved on.
		return s.visible()
	case <-ctx.Done():
		return s.visible()
	}
}

// Create synthesizes an optimistic record with a temporary id, makes it
// visible immediately, then attempts the remote create. On success the
// temporary record is replaced in place by the authoritative one. On
// failure the record stays visible, tagged failed, and the error is
// returned for display.
func (s *Synchronizer) Create(ctx context.Context, studentID string, draft compliance.CPTDraft) (Record, error) {
	if err := draft.Validate(); err != nil {
		return Record{}, err
	}

	now := s.now()
	optimistic := Record{
		CPTRequest: compliance.CPTRequest{
			ID:                ids.NewTemp(),
			StudentID:         studentID,
			CompanyName:       draft.CompanyName,
			Role:              draft.Role,
			ExpectedStartDate: draft.ExpectedStartDate,
			ExpectedEndDate:   draft.ExpectedEndDate,
			Notes:             draft.Notes,
			Status:            compliance.StatusIntent,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		State: StatePending,
	}

	s.mu.Lock()
	s.records[optimistic.ID] = &optimistic
	s.order = append([]string{optimistic.ID}, s.order...)
	s.mu.Unlock()

	confirmed, err := s.remote.CreateCPTRequest(ctx, studentID, draft)
	if err != nil {
		s.mu.Lock()
		if rec, ok := s.records[optimistic.ID]; ok {
			rec.State = StateFailed
			optimistic = *rec
		}
		s.mu.Unlock()
		return optimistic, err
	}

	replaced := Record{CPTRequest: confirmed, State: StateConfirmed}
	s.mu.Lock()
	delete(s.records, optimistic.ID)
	s.records[replaced.ID] = &replaced
	for i, id := range s.order {
		if id == optimistic.ID {
			s.order[i] = replaced.ID
			break
		}
	}
	s.mu.Unlock()
	return replaced, nil
}

// MarkOfferSigned transitions a request to offer_signed. Temporary ids are
// refused locally without contacting the remote, since the authority has
// no matching record yet.
func (s *Synchronizer) MarkOfferSigned(ctx context.Context, studentID, requestID string) (Record, error) {
	if ids.IsTemp(requestID) {
		return Record{}, ErrUnpersisted
	}

	updated, err := s.remote.MarkOfferSigned(ctx, studentID, requestID)
	if err != nil {
		return Record{}, translateRejection(err)
	}

	rec := Record{CPTRequest: updated, State: StateConfirmed}
	s.mu.Lock()
	s.records[rec.ID] = &rec
	s.mu.Unlock()
	return rec, nil
}

// ListForAuthority is a read-only pass-through for the administrative
// consumer; its errors surface unchanged.
func (s *Synchronizer) ListForAuthority(ctx context.Context) ([]compliance.AuthorityCPTRequest, error) {
	return s.remote.AuthorityRequests(ctx)
}

// Records returns the currently visible records, newest first.
func (s *Synchronizer) Records() []Record {
	return s.visible()
}

func (s *Synchronizer) visible() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		if rec, ok := s.records[id]; ok {
			out = append(out, *rec)
		}
	}
	return out
}

// reconcile replaces confirmed local state with the server truth while
// keeping unpersisted optimistic records visible at the top.
func (s *Synchronizer) reconcile(list []compliance.CPTRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keep := make(map[string]*Record)
	var order []string
	for _, id := range s.order {
		rec, ok := s.records[id]
		if !ok || rec.State == StateConfirmed {
			continue
		}
		keep[id] = rec
		order = append(order, id)
	}
	for _, req := range list {
		rec := Record{CPTRequest: req, State: StateConfirmed}
		keep[rec.ID] = &rec
		order = append(order, rec.ID)
	}
	s.records = keep
	s.order = order
}

// translateRejection maps a 409 from the remote onto the local transition
// error so callers can branch on it with errors.Is.
func translateRejection(err error) error {
	var rejected *remote.RejectedError
	if errors.As(err, &rejected) && rejected.StatusCode == http.StatusConflict {
		return fmt.Errorf("%w: %s", compliance.ErrInvalidTransition, rejected.Message)
	}
	return err
}
