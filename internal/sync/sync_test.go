package sync

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"univisa.org/internal/compliance"
	"univisa.org/internal/compliance/remote"
	"univisa.org/internal/ids"
)

type fakeRemote struct {
	alerts    func(ctx context.Context, studentID string) ([]compliance.Alert, error)
	list      func(ctx context.Context, studentID string) ([]compliance.CPTRequest, error)
	create    func(ctx context.Context, studentID string, draft compliance.CPTDraft) (compliance.CPTRequest, error)
	sign      func(ctx context.Context, studentID, requestID string) (compliance.CPTRequest, error)
	authority func(ctx context.Context) ([]compliance.AuthorityCPTRequest, error)
}

func (f *fakeRemote) Alerts(ctx context.Context, studentID string) ([]compliance.Alert, error) {
	return f.alerts(ctx, studentID)
}

func (f *fakeRemote) ListCPTRequests(ctx context.Context, studentID string) ([]compliance.CPTRequest, error) {
	return f.list(ctx, studentID)
}

func (f *fakeRemote) CreateCPTRequest(ctx context.Context, studentID string, draft compliance.CPTDraft) (compliance.CPTRequest, error) {
	return f.create(ctx, studentID, draft)
}

func (f *fakeRemote) MarkOfferSigned(ctx context.Context, studentID, requestID string) (compliance.CPTRequest, error) {
	return f.sign(ctx, studentID, requestID)
}

func (f *fakeRemote) AuthorityRequests(ctx context.Context) ([]compliance.AuthorityCPTRequest, error) {
	return f.authority(ctx)
}

func testDraft() compliance.CPTDraft {
	return compliance.CPTDraft{
		CompanyName:       "Acme",
		Role:              "Intern",
		ExpectedStartDate: compliance.NewDate(2026, 6, 1),
		ExpectedEndDate:   compliance.NewDate(2026, 8, 30),
	}
}

func TestCreateConfirmedReplacesInPlace(t *testing.T) {
	rem := &fakeRemote{
		create: func(ctx context.Context, studentID string, draft compliance.CPTDraft) (compliance.CPTRequest, error) {
			return compliance.CPTRequest{
				ID:                "req-001",
				StudentID:         studentID,
				CompanyName:       draft.CompanyName,
				Role:              draft.Role,
				ExpectedStartDate: draft.ExpectedStartDate,
				ExpectedEndDate:   draft.ExpectedEndDate,
				Status:            compliance.StatusIntent,
			}, nil
		},
	}
	s := New(rem)

	rec, err := s.Create(context.Background(), "demo", testDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != "req-001" {
		t.Fatalf("confirmed id = %q", rec.ID)
	}
	if rec.State != StateConfirmed {
		t.Fatalf("state = %q, want confirmed", rec.State)
	}
	if rec.Status != compliance.StatusIntent {
		t.Fatalf("status = %q, want intent", rec.Status)
	}

	visible := s.Records()
	if len(visible) != 1 {
		t.Fatalf("visible records = %d, want 1", len(visible))
	}
	if ids.IsTemp(visible[0].ID) {
		t.Fatalf("temporary id survived confirmation: %q", visible[0].ID)
	}
}

func TestCreateRemoteDownKeepsOptimisticRecord(t *testing.T) {
	rem := &fakeRemote{
		create: func(ctx context.Context, studentID string, draft compliance.CPTDraft) (compliance.CPTRequest, error) {
			return compliance.CPTRequest{}, &remote.UnreachableError{
				Endpoint: "/v1/cpt/student/demo/requests",
				Err:      errors.New("connection refused"),
			}
		},
	}
	s := New(rem)

	rec, err := s.Create(context.Background(), "demo", testDraft())
	if err == nil {
		t.Fatal("expected error when remote is down")
	}
	var unreachable *remote.UnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected UnreachableError, got %v", err)
	}

	// The optimistic record stays visible, flagged unpersisted.
	if !ids.IsTemp(rec.ID) {
		t.Fatalf("expected temporary id, got %q", rec.ID)
	}
	if rec.Status != compliance.StatusIntent {
		t.Fatalf("status = %q, want intent", rec.Status)
	}
	if rec.State != StateFailed {
		t.Fatalf("state = %q, want failed", rec.State)
	}
	if rec.CompanyName != "Acme" || rec.Role != "Intern" {
		t.Fatalf("draft fields lost: %+v", rec)
	}

	visible := s.Records()
	if len(visible) != 1 || visible[0].ID != rec.ID {
		t.Fatalf("unexpected visible state: %+v", visible)
	}
}

func TestCreatePrependsNewestFirst(t *testing.T) {
	n := 0
	rem := &fakeRemote{
		create: func(ctx context.Context, studentID string, draft compliance.CPTDraft) (compliance.CPTRequest, error) {
			n++
			return compliance.CPTRequest{
				ID:          "req-00" + string(rune('0'+n)),
				StudentID:   studentID,
				CompanyName: draft.CompanyName,
				Status:      compliance.StatusIntent,
			}, nil
		},
	}
	s := New(rem)

	first := testDraft()
	if _, err := s.Create(context.Background(), "demo", first); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := testDraft()
	second.CompanyName = "Globex"
	if _, err := s.Create(context.Background(), "demo", second); err != nil {
		t.Fatalf("create: %v", err)
	}

	visible := s.Records()
	if len(visible) != 2 {
		t.Fatalf("visible records = %d", len(visible))
	}
	if visible[0].CompanyName != "Globex" || visible[1].CompanyName != "Acme" {
		t.Fatalf("unexpected order: %q, %q", visible[0].CompanyName, visible[1].CompanyName)
	}
}

func TestMarkOfferSignedRefusesTemporaryID(t *testing.T) {
	rem := &fakeRemote{
		sign: func(ctx context.Context, studentID, requestID string) (compliance.CPTRequest, error) {
			t.Fatal("remote must not be contacted for unpersisted records")
			return compliance.CPTRequest{}, nil
		},
	}
	s := New(rem)

	_, err := s.MarkOfferSigned(context.Background(), "demo", ids.NewTemp())
	if !errors.Is(err, ErrUnpersisted) {
		t.Fatalf("expected ErrUnpersisted, got %v", err)
	}
}

func TestMarkOfferSignedIdempotence(t *testing.T) {
	calls := 0
	rem := &fakeRemote{
		sign: func(ctx context.Context, studentID, requestID string) (compliance.CPTRequest, error) {
			calls++
			if calls == 1 {
				return compliance.CPTRequest{
					ID:        requestID,
					StudentID: studentID,
					Status:    compliance.StatusOfferSigned,
				}, nil
			}
			return compliance.CPTRequest{}, &remote.RejectedError{
				StatusCode: http.StatusConflict,
				Message:    "invalid status transition",
			}
		},
	}
	s := New(rem)

	rec, err := s.MarkOfferSigned(context.Background(), "demo", "req-001")
	if err != nil {
		t.Fatalf("first sign: %v", err)
	}
	if rec.Status != compliance.StatusOfferSigned {
		t.Fatalf("status = %q", rec.Status)
	}

	_, err = s.MarkOfferSigned(context.Background(), "demo", "req-001")
	if !errors.Is(err, compliance.ErrInvalidTransition) {
		t.Fatalf("second sign: expected invalid transition, got %v", err)
	}
}

func TestFetchRequestsBoundedWait(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	rem := &fakeRemote{
		list: func(ctx context.Context, studentID string) ([]compliance.CPTRequest, error) {
			select {
			case <-block:
			case <-ctx.Done():
			}
			return nil, ctx.Err()
		},
	}
	s := New(rem, WithFetchBound(50*time.Millisecond))

	start := time.Now()
	got := s.FetchRequests(context.Background(), "demo")
	elapsed := time.Since(start)

	if len(got) != 0 {
		t.Fatalf("expected empty list, got %d records", len(got))
	}
	if elapsed > time.Second {
		t.Fatalf("fetch did not respect bound, took %v", elapsed)
	}
}

func TestFetchRequestsReconciles(t *testing.T) {
	rem := &fakeRemote{
		create: func(ctx context.Context, studentID string, draft compliance.CPTDraft) (compliance.CPTRequest, error) {
			return compliance.CPTRequest{}, &remote.UnreachableError{Endpoint: "/create", Err: errors.New("down")}
		},
		list: func(ctx context.Context, studentID string) ([]compliance.CPTRequest, error) {
			return []compliance.CPTRequest{
				{ID: "req-100", StudentID: studentID, CompanyName: "Initech", Status: compliance.StatusOfferSigned},
			}, nil
		},
	}
	s := New(rem)

	// A failed optimistic create leaves an unpersisted record behind.
	if _, err := s.Create(context.Background(), "demo", testDraft()); err == nil {
		t.Fatal("expected create failure")
	}

	got := s.FetchRequests(context.Background(), "demo")
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if !ids.IsTemp(got[0].ID) || got[0].State != StateFailed {
		t.Fatalf("unpersisted record not kept on top: %+v", got[0])
	}
	if got[1].ID != "req-100" || got[1].State != StateConfirmed {
		t.Fatalf("server record not reconciled: %+v", got[1])
	}
}

func TestFetchAlertsFallsBackOnError(t *testing.T) {
	rem := &fakeRemote{
		alerts: func(ctx context.Context, studentID string) ([]compliance.Alert, error) {
			return nil, &remote.UnreachableError{Endpoint: "/alerts", Err: errors.New("refused")}
		},
	}
	s := New(rem)

	got := s.FetchAlerts(context.Background(), "demo")
	if diff := cmp.Diff(FallbackAlerts(), got); diff != "" {
		t.Fatalf("fallback alert mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(got[0].Title, "OPT Application Window") {
		t.Fatalf("unexpected first fallback alert: %q", got[0].Title)
	}
}

func TestFetchAlertsPassesThroughRemoteList(t *testing.T) {
	want := []compliance.Alert{
		{Type: compliance.AlertWarning, Title: "Part-Time Enrollment", Severity: "medium", Urgency: 2},
	}
	rem := &fakeRemote{
		alerts: func(ctx context.Context, studentID string) ([]compliance.Alert, error) {
			return want, nil
		},
	}
	s := New(rem)

	got := s.FetchAlerts(context.Background(), "demo")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("alert mismatch (-want +got):\n%s", diff)
	}
}
