package compliance

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date serialized as YYYY-MM-DD on the wire.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysUntil returns whole days from the given instant to the date.
func (d Date) DaysUntil(from time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Time.Sub(fromDay).Hours() / 24)
}

// VisaType is the student's visa category.
type VisaType string

const (
	VisaF1 VisaType = "F-1"
	VisaJ1 VisaType = "J-1"
)

// EnrollmentStatus is the declared course load.
type EnrollmentStatus string

const (
	EnrollmentFullTime EnrollmentStatus = "full_time"
	EnrollmentPartTime EnrollmentStatus = "part_time"
)

// StudentProfile is the compliance-relevant snapshot of one student.
type StudentProfile struct {
	StudentID        string           `json:"student_id"`
	FullName         string           `json:"full_name"`
	University       string           `json:"university"`
	CountryOfOrigin  string           `json:"country_of_origin"`
	VisaType         VisaType         `json:"visa_type"`
	ProgramStartDate Date             `json:"program_start_date"`
	ProgramEndDate   Date             `json:"program_end_date"`
	EnrollmentStatus EnrollmentStatus `json:"enrollment_status"`
	WeeklyWorkHours  float64          `json:"weekly_work_hours"`
	OnOPT            bool             `json:"on_opt"`
	OnCPT            bool             `json:"on_cpt"`
	OPTStartDate     *Date            `json:"opt_start_date,omitempty"`
	OPTEndDate       *Date            `json:"opt_end_date,omitempty"`
	CPTStartDate     *Date            `json:"cpt_start_date,omitempty"`
	CPTEndDate       *Date            `json:"cpt_end_date,omitempty"`
	TravelingSoon    bool             `json:"traveling_soon"`
	ChangingEmployer bool             `json:"changing_employer"`
	ChangingCourses  bool             `json:"changing_courses"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ProfileDraft is the creatable subset of a profile.
type ProfileDraft struct {
	FullName         string           `json:"full_name"`
	University       string           `json:"university"`
	CountryOfOrigin  string           `json:"country_of_origin"`
	VisaType         VisaType         `json:"visa_type"`
	ProgramStartDate Date             `json:"program_start_date"`
	ProgramEndDate   Date             `json:"program_end_date"`
	EnrollmentStatus EnrollmentStatus `json:"enrollment_status"`
	WeeklyWorkHours  float64          `json:"weekly_work_hours"`
	OnOPT            bool             `json:"on_opt"`
	OnCPT            bool             `json:"on_cpt"`
	OPTStartDate     *Date            `json:"opt_start_date,omitempty"`
	OPTEndDate       *Date            `json:"opt_end_date,omitempty"`
	CPTStartDate     *Date            `json:"cpt_start_date,omitempty"`
	CPTEndDate       *Date            `json:"cpt_end_date,omitempty"`
	TravelingSoon    bool             `json:"traveling_soon"`
	ChangingEmployer bool             `json:"changing_employer"`
	ChangingCourses  bool             `json:"changing_courses"`
}

// Validate checks the creatable fields.
func (d ProfileDraft) Validate() error {
	if strings.TrimSpace(d.FullName) == "" {
		return fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	}
	if d.VisaType != VisaF1 && d.VisaType != VisaJ1 {
		return fmt.Errorf("%w: visa_type must be F-1 or J-1", ErrInvalidInput)
	}
	if d.ProgramEndDate.IsZero() || d.ProgramStartDate.IsZero() {
		return fmt.Errorf("%w: program dates are required", ErrInvalidInput)
	}
	if !d.ProgramEndDate.After(d.ProgramStartDate.Time) {
		return fmt.Errorf("%w: program_end_date must be after program_start_date", ErrInvalidInput)
	}
	if d.WeeklyWorkHours < 0 {
		return fmt.Errorf("%w: weekly_work_hours must be >= 0", ErrInvalidInput)
	}
	return nil
}

// Status is the CPT request lifecycle state.
type Status string

const (
	StatusIntent      Status = "intent"
	StatusOfferSigned Status = "offer_signed"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// ParseStatus validates a wire status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusIntent, StatusOfferSigned, StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step: intent -> offer_signed -> {approved | rejected}. Approval and
// rejection are authority-only transitions; the owning student may only
// request offer_signed.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusIntent:
		return next == StatusOfferSigned
	case StatusOfferSigned:
		return next == StatusApproved || next == StatusRejected
	default:
		return false
	}
}

// AuthorityOnly reports whether the transition target may only be set by the
// administrative role, never by the owning student.
func AuthorityOnly(next Status) bool {
	return next == StatusApproved || next == StatusRejected
}

// CPTRequest is a student's declared intent to begin work-authorization
// paperwork, possibly before a signed offer exists.
type CPTRequest struct {
	ID                    string     `json:"id"`
	StudentID             string     `json:"student_id"`
	CompanyName           string     `json:"company_name"`
	Role                  string     `json:"role"`
	ExpectedStartDate     Date       `json:"expected_start_date"`
	ExpectedEndDate       Date       `json:"expected_end_date"`
	Notes                 string     `json:"notes,omitempty"`
	Status                Status     `json:"status"`
	SignedOfferUploadedAt *time.Time `json:"signed_offer_uploaded_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// AuthorityCPTRequest joins the student display name onto a request for the
// read-only DSO listing.
type AuthorityCPTRequest struct {
	CPTRequest
	StudentName string `json:"student_name"`
}

// CPTDraft is the creatable subset of a request.
type CPTDraft struct {
	CompanyName       string `json:"company_name"`
	Role              string `json:"role"`
	ExpectedStartDate Date   `json:"expected_start_date"`
	ExpectedEndDate   Date   `json:"expected_end_date"`
	Notes             string `json:"notes,omitempty"`
}

// Validate checks the creatable fields.
func (d CPTDraft) Validate() error {
	if strings.TrimSpace(d.CompanyName) == "" {
		return fmt.Errorf("%w: company_name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(d.Role) == "" {
		return fmt.Errorf("%w: role is required", ErrInvalidInput)
	}
	if d.ExpectedStartDate.IsZero() || d.ExpectedEndDate.IsZero() {
		return fmt.Errorf("%w: expected dates are required", ErrInvalidInput)
	}
	if !d.ExpectedEndDate.After(d.ExpectedStartDate.Time) {
		return fmt.Errorf("%w: expected_end_date must be after expected_start_date", ErrInvalidInput)
	}
	return nil
}

// AlertType classifies an alert for display.
type AlertType string

const (
	AlertDeadline AlertType = "deadline"
	AlertWarning  AlertType = "warning"
	AlertInfo     AlertType = "info"
)

// Alert is a deadline or risk notification. Alerts are derived server-side
// and never mutated by consumers; a fresh fetch replaces the previous set.
type Alert struct {
	Type              AlertType `json:"type"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Severity          string    `json:"severity"`
	Urgency           int       `json:"urgency"`
	DaysUntilCritical *int      `json:"days_until_critical,omitempty"`
}

var (
	ErrNotFound          = errors.New("compliance: not found")
	ErrForbidden         = errors.New("compliance: not your request")
	ErrInvalidInput      = errors.New("compliance: invalid input")
	ErrInvalidTransition = errors.New("compliance: invalid status transition")
)
