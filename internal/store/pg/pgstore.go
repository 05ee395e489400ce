package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"univisa.org/internal/compliance"
	"univisa.org/internal/ids"
)

// Store implements compliance.Service over Postgres.
type Store struct {
	db *sql.DB
}

var _ compliance.Service = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

const profileColumns = `id, full_name, university, country_of_origin, visa_type,
	program_start_date, program_end_date, enrollment_status, weekly_work_hours,
	on_opt, on_cpt, opt_start_date, opt_end_date, cpt_start_date, cpt_end_date,
	traveling_soon, changing_employer, changing_courses, created_at`

func (s *Store) CreateProfile(ctx context.Context, draft compliance.ProfileDraft) (compliance.StudentProfile, error) {
	if err := draft.Validate(); err != nil {
		return compliance.StudentProfile{}, err
	}

	p := compliance.StudentProfile{
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
		CreatedAt:        time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		insert into students(`+profileColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`, p.StudentID, p.FullName, p.University, p.CountryOfOrigin, string(p.VisaType),
		p.ProgramStartDate.Time, p.ProgramEndDate.Time, string(p.EnrollmentStatus), p.WeeklyWorkHours,
		p.OnOPT, p.OnCPT, nullDate(p.OPTStartDate), nullDate(p.OPTEndDate),
		nullDate(p.CPTStartDate), nullDate(p.CPTEndDate),
		p.TravelingSoon, p.ChangingEmployer, p.ChangingCourses, p.CreatedAt)
	if err != nil {
		return compliance.StudentProfile{}, err
	}
	return p, nil
}

func (s *Store) GetProfile(ctx context.Context, studentID string) (compliance.StudentProfile, error) {
	row := s.db.QueryRowContext(ctx, `select `+profileColumns+` from students where id=$1`, studentID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return compliance.StudentProfile{}, compliance.ErrNotFound
	}
	return p, err
}

func (s *Store) ListProfiles(ctx context.Context) ([]compliance.StudentProfile, error) {
	rows, err := s.db.QueryContext(ctx, `select `+profileColumns+` from students order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []compliance.StudentProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const requestColumns = `id, student_id, company_name, role, expected_start_date,
	expected_end_date, notes, status, signed_offer_uploaded_at, created_at, updated_at`

func (s *Store) CreateCPTRequest(ctx context.Context, studentID string, draft compliance.CPTDraft) (compliance.CPTRequest, error) {
	if err := draft.Validate(); err != nil {
		return compliance.CPTRequest{}, err
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `select 1 from students where id=$1`, studentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return compliance.CPTRequest{}, compliance.ErrNotFound
	}
	if err != nil {
		return compliance.CPTRequest{}, err
	}

	now := time.Now().UTC()
	req := compliance.CPTRequest{
		ID:                ids.New(),
		StudentID:         studentID,
		CompanyName:       draft.CompanyName,
		Role:              draft.Role,
		ExpectedStartDate: draft.ExpectedStartDate,
		ExpectedEndDate:   draft.ExpectedEndDate,
		Notes:             draft.Notes,
		Status:            compliance.StatusIntent,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	_, err = s.db.ExecContext(ctx, `
		insert into cpt_requests(`+requestColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, req.ID, req.StudentID, req.CompanyName, req.Role,
		req.ExpectedStartDate.Time, req.ExpectedEndDate.Time, req.Notes,
		string(req.Status), nil, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return compliance.CPTRequest{}, err
	}
	return req, nil
}

func (s *Store) ListCPTRequests(ctx context.Context, studentID string) ([]compliance.CPTRequest, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `select 1 from students where id=$1`, studentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, compliance.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		select `+requestColumns+` from cpt_requests
		where student_id=$1
		order by created_at desc, sequence desc
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []compliance.CPTRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCPTStatus(ctx context.Context, studentID, requestID string, next compliance.Status) (compliance.CPTRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return compliance.CPTRequest{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		select `+requestColumns+` from cpt_requests where id=$1 for update
	`, requestID)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return compliance.CPTRequest{}, compliance.ErrNotFound
	}
	if err != nil {
		return compliance.CPTRequest{}, err
	}
	if req.StudentID != studentID {
		return compliance.CPTRequest{}, compliance.ErrForbidden
	}
	if !req.Status.CanTransition(next) {
		return compliance.CPTRequest{}, compliance.ErrInvalidTransition
	}

	now := time.Now().UTC()
	req.Status = next
	req.UpdatedAt = now
	if next == compliance.StatusOfferSigned {
		ts := now
		req.SignedOfferUploadedAt = &ts
	}
	if _, err := tx.ExecContext(ctx, `
		update cpt_requests
		set status=$2, signed_offer_uploaded_at=$3, updated_at=$4
		where id=$1
	`, req.ID, string(req.Status), req.SignedOfferUploadedAt, req.UpdatedAt); err != nil {
		return compliance.CPTRequest{}, err
	}
	if err := tx.Commit(); err != nil {
		return compliance.CPTRequest{}, err
	}
	return req, nil
}

func (s *Store) ListAllCPTRequests(ctx context.Context) ([]compliance.AuthorityCPTRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		select r.id, r.student_id, r.company_name, r.role, r.expected_start_date,
			r.expected_end_date, r.notes, r.status, r.signed_offer_uploaded_at,
			r.created_at, r.updated_at, coalesce(s.full_name, r.student_id)
		from cpt_requests r
		left join students s on s.id = r.student_id
		order by r.created_at desc, r.sequence desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []compliance.AuthorityCPTRequest
	for rows.Next() {
		var (
			req    compliance.CPTRequest
			start  time.Time
			end    time.Time
			signed sql.NullTime
			name   string
		)
		if err := rows.Scan(&req.ID, &req.StudentID, &req.CompanyName, &req.Role,
			&start, &end, &req.Notes, &req.Status, &signed,
			&req.CreatedAt, &req.UpdatedAt, &name); err != nil {
			return nil, err
		}
		req.ExpectedStartDate = compliance.Date{Time: start}
		req.ExpectedEndDate = compliance.Date{Time: end}
		if signed.Valid {
			ts := signed.Time
			req.SignedOfferUploadedAt = &ts
		}
		out = append(out, compliance.AuthorityCPTRequest{CPTRequest: req, StudentName: name})
	}
	return out, rows.Err()
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (compliance.StudentProfile, error) {
	var (
		p          compliance.StudentProfile
		start, end time.Time
		optStart   sql.NullTime
		optEnd     sql.NullTime
		cptStart   sql.NullTime
		cptEnd     sql.NullTime
	)
	err := row.Scan(&p.StudentID, &p.FullName, &p.University, &p.CountryOfOrigin, &p.VisaType,
		&start, &end, &p.EnrollmentStatus, &p.WeeklyWorkHours,
		&p.OnOPT, &p.OnCPT, &optStart, &optEnd, &cptStart, &cptEnd,
		&p.TravelingSoon, &p.ChangingEmployer, &p.ChangingCourses, &p.CreatedAt)
	if err != nil {
		return compliance.StudentProfile{}, err
	}
	p.ProgramStartDate = compliance.Date{Time: start}
	p.ProgramEndDate = compliance.Date{Time: end}
	p.OPTStartDate = datePtr(optStart)
	p.OPTEndDate = datePtr(optEnd)
	p.CPTStartDate = datePtr(cptStart)
	p.CPTEndDate = datePtr(cptEnd)
	return p, nil
}

func scanRequest(row rowScanner) (compliance.CPTRequest, error) {
	var (
		req    compliance.CPTRequest
		start  time.Time
		end    time.Time
		signed sql.NullTime
	)
	err := row.Scan(&req.ID, &req.StudentID, &req.CompanyName, &req.Role,
		&start, &end, &req.Notes, &req.Status, &signed, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return compliance.CPTRequest{}, err
	}
	req.ExpectedStartDate = compliance.Date{Time: start}
	req.ExpectedEndDate = compliance.Date{Time: end}
	if signed.Valid {
		ts := signed.Time
		req.SignedOfferUploadedAt = &ts
	}
	return req, nil
}

func nullDate(d *compliance.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func datePtr(t sql.NullTime) *compliance.Date {
	if !t.Valid {
		return nil
	}
	return &compliance.Date{Time: t.Time}
}
