package compliance

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seededStore(t *testing.T) *InMemory {
	t.Helper()
	s := NewInMemory()
	s.SeedDemo()
	return s
}

func intentDraft() CPTDraft {
	return CPTDraft{
		CompanyName:       "Acme",
		Role:              "Intern",
		ExpectedStartDate: NewDate(2026, time.June, 1),
		ExpectedEndDate:   NewDate(2026, time.August, 30),
	}
}

func TestCreateCPTRequestStartsAsIntent(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	req, err := s.CreateCPTRequest(ctx, "demo", intentDraft())
	if err != nil {
		t.Fatal(err)
	}
	if req.Status != StatusIntent {
		t.Fatalf("new request status = %s, want intent", req.Status)
	}
	if req.ID == "" || req.StudentID != "demo" {
		t.Fatalf("bad identifiers: %+v", req)
	}
	if req.SignedOfferUploadedAt != nil {
		t.Fatal("signed offer timestamp set on creation")
	}
}

func TestCreateCPTRequestValidation(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	draft := intentDraft()
	draft.CompanyName = "  "
	if _, err := s.CreateCPTRequest(ctx, "demo", draft); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	draft = intentDraft()
	draft.ExpectedEndDate = draft.ExpectedStartDate
	if _, err := s.CreateCPTRequest(ctx, "demo", draft); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted dates, got %v", err)
	}

	if _, err := s.CreateCPTRequest(ctx, "nobody", intentDraft()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown student, got %v", err)
	}
}

func TestListCPTRequestsNewestFirst(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	first, _ := s.CreateCPTRequest(ctx, "demo", intentDraft())
	second, _ := s.CreateCPTRequest(ctx, "demo", intentDraft())

	list, err := s.ListCPTRequests(ctx, "demo")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("list not newest-first: %s, %s", list[0].ID, list[1].ID)
	}
}

func TestOfferSignedTransition(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	req, _ := s.CreateCPTRequest(ctx, "demo", intentDraft())

	updated, err := s.UpdateCPTStatus(ctx, "demo", req.ID, StatusOfferSigned)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != StatusOfferSigned {
		t.Fatalf("status = %s, want offer_signed", updated.Status)
	}
	if updated.SignedOfferUploadedAt == nil {
		t.Fatal("signed offer timestamp not recorded")
	}

	// Idempotence boundary: the same transition a second time is illegal.
	if _, err := s.UpdateCPTStatus(ctx, "demo", req.ID, StatusOfferSigned); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on repeat, got %v", err)
	}
}

func TestAuthorityTransitions(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	req, _ := s.CreateCPTRequest(ctx, "demo", intentDraft())

	// approved is not reachable from intent.
	if _, err := s.UpdateCPTStatus(ctx, "demo", req.ID, StatusApproved); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if _, err := s.UpdateCPTStatus(ctx, "demo", req.ID, StatusOfferSigned); err != nil {
		t.Fatal(err)
	}
	final, err := s.UpdateCPTStatus(ctx, "demo", req.ID, StatusApproved)
	if err != nil {
		t.Fatal(err)
	}
	if final.Status != StatusApproved {
		t.Fatalf("status = %s, want approved", final.Status)
	}
	// Terminal states accept nothing further.
	if _, err := s.UpdateCPTStatus(ctx, "demo", req.ID, StatusRejected); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from terminal state, got %v", err)
	}
}

func TestUpdateEnforcesOwnership(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	other, err := s.CreateProfile(ctx, ProfileDraft{
		FullName:         "Lei Chen",
		University:       "UC Berkeley",
		CountryOfOrigin:  "China",
		VisaType:         VisaF1,
		ProgramStartDate: NewDate(2025, time.January, 10),
		ProgramEndDate:   NewDate(2027, time.January, 10),
		EnrollmentStatus: EnrollmentFullTime,
	})
	if err != nil {
		t.Fatal(err)
	}

	req, _ := s.CreateCPTRequest(ctx, "demo", intentDraft())
	if _, err := s.UpdateCPTStatus(ctx, other.StudentID, req.ID, StatusOfferSigned); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthorityListingJoinsStudentName(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	if _, err := s.CreateCPTRequest(ctx, "demo", intentDraft()); err != nil {
		t.Fatal(err)
	}
	all, err := s.ListAllCPTRequests(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 request, got %d", len(all))
	}
	if all[0].StudentName != "Riya Sharma" {
		t.Fatalf("student name = %q, want Riya Sharma", all[0].StudentName)
	}
}

func TestStatusMachine(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusIntent, StatusOfferSigned, true},
		{StatusIntent, StatusApproved, false},
		{StatusIntent, StatusRejected, false},
		{StatusIntent, StatusIntent, false},
		{StatusOfferSigned, StatusApproved, true},
		{StatusOfferSigned, StatusRejected, true},
		{StatusOfferSigned, StatusIntent, false},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusOfferSigned, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.ok {
			t.Fatalf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2026-06-01")
	if err != nil {
		t.Fatal(err)
	}
	raw, err := d.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"2026-06-01"` {
		t.Fatalf("marshaled date = %s", raw)
	}
	var back Date
	if err := back.UnmarshalJSON(raw); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
	if _, err := ParseDate("06/01/2026"); err == nil {
		t.Fatal("expected parse failure for non-ISO date")
	}
}
