package compliance

import (
	"context"
	"sync"
	"time"

	"univisa.org/internal/ids"
)

// Service defines the compliance record operations.
type Service interface {
	CreateProfile(ctx context.Context, draft ProfileDraft) (StudentProfile, error)
	GetProfile(ctx context.Context, studentID string) (StudentProfile, error)
	ListProfiles(ctx context.Context) ([]StudentProfile, error)
	CreateCPTRequest(ctx context.Context, studentID string, draft CPTDraft) (CPTRequest, error)
	ListCPTRequests(ctx context.Context, studentID string) ([]CPTRequest, error)
	UpdateCPTStatus(ctx context.Context, studentID, requestID string, next Status) (CPTRequest, error)
	ListAllCPTRequests(ctx context.Context) ([]AuthorityCPTRequest, error)
}

// InMemory implements Service with in-process concurrency safety.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[string]*StudentProfile
	requests map[string]*CPTRequest
	order    []string // request ids in creation order
	now      func() time.Time
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		profiles: make(map[string]*StudentProfile),
		requests: make(map[string]*CPTRequest),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SeedDemo loads the demo student so the service is usable without onboarding.
// The fixed "demo" id is the sentinel clients fall back to when no profile
// has been created on the device.
func (s *InMemory) SeedDemo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles["demo"]; ok {
		return
	}
	s.profiles["demo"] = &StudentProfile{
		StudentID:        "demo",
		FullName:         "Riya Sharma",
		University:       "Georgia Institute of Technology",
		CountryOfOrigin:  "India",
		VisaType:         VisaF1,
		ProgramStartDate: NewDate(2024, time.August, 15),
		ProgramEndDate:   NewDate(2026, time.May, 15),
		EnrollmentStatus: EnrollmentFullTime,
		WeeklyWorkHours:  18,
		CreatedAt:        s.now(),
	}
}

func (s *InMemory) CreateProfile(ctx context.Context, draft ProfileDraft) (StudentProfile, error) {
	if err := draft.Validate(); err != nil {
		return StudentProfile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &StudentProfile{
		StudentID:        ids.New(),
		FullName:         draft.FullName,
		University:       draft.University,
		CountryOfOrigin:  draft.CountryOfOrigin,
		VisaType:         draft.VisaType,
		ProgramStartDate: draft.ProgramStartDate,
		ProgramEndDate:   draft.ProgramEndDate,
		EnrollmentStatus: draft.EnrollmentStatus,
		WeeklyWorkHours:  draft.WeeklyWorkHours,
		OnOPT:            draft.OnOPT,
		OnCPT:            draft.OnCPT,
		OPTStartDate:     draft.OPTStartDate,
		OPTEndDate:       draft.OPTEndDate,
		CPTStartDate:     draft.CPTStartDate,
		CPTEndDate:       draft.CPTEndDate,
		TravelingSoon:    draft.TravelingSoon,
		ChangingEmployer: draft.ChangingEmployer,
		ChangingCourses:  draft.ChangingCourses,
		CreatedAt:        s.now(),
	}
	s.profiles[p.StudentID] = p
	return *p, nil
}

func (s *InMemory) GetProfile(ctx context.Context, studentID string) (StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[studentID]
	if !ok {
		return StudentProfile{}, ErrNotFound
	}
	return *p, nil
}

func (s *InMemory) ListProfiles(ctx context.Context) ([]StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StudentProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (s *InMemory) CreateCPTRequest(ctx context.Context, studentID string, draft CPTDraft) (CPTRequest, error) {
	if err := draft.Validate(); err != nil {
		return CPTRequest{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[studentID]; !ok {
		return CPTRequest{}, ErrNotFound
	}

	now := s.now()
	req := &CPTRequest{
		ID:                ids.New(),
		StudentID:         studentID,
		CompanyName:       draft.CompanyName,
		Role:              draft.Role,
		ExpectedStartDate: draft.ExpectedStartDate,
		ExpectedEndDate:   draft.ExpectedEndDate,
		Notes:             draft.Notes,
		Status:            StatusIntent,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.requests[req.ID] = req
	s.order = append(s.order, req.ID)
	return *req, nil
}

func (s *InMemory) ListCPTRequests(ctx context.Context, studentID string) ([]CPTRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.profiles[studentID]; !ok {
		return nil, ErrNotFound
	}
	var out []CPTRequest
	// Newest first.
	for i := len(s.order) - 1; i >= 0; i-- {
		req := s.requests[s.order[i]]
		if req.StudentID == studentID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (s *InMemory) UpdateCPTStatus(ctx context.Context, studentID, requestID string, next Status) (CPTRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok {
		return CPTRequest{}, ErrNotFound
	}
	if req.StudentID != studentID {
		return CPTRequest{}, ErrForbidden
	}
	if !req.Status.CanTransition(next) {
		return CPTRequest{}, ErrInvalidTransition
	}

	now := s.now()
	req.Status = next
	req.UpdatedAt = now
	if next == StatusOfferSigned {
		ts := now
		req.SignedOfferUploadedAt = &ts
	}
	return *req, nil
}

func (s *InMemory) ListAllCPTRequests(ctx context.Context) ([]AuthorityCPTRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]AuthorityCPTRequest, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		req := s.requests[s.order[i]]
		name := req.StudentID
		if p, ok := s.profiles[req.StudentID]; ok {
			name = p.FullName
		}
		out = append(out, AuthorityCPTRequest{CPTRequest: *req, StudentName: name})
	}
	return out, nil
}
