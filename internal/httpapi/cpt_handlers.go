package httpapi

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"univisa.org/internal/audit"
	"univisa.org/internal/compliance"
	"univisa.org/internal/risk"
	"univisa.org/internal/stream"
)

type cptStatusPatch struct {
	Status string `json:"status"`
}

type cohortRow struct {
	StudentID       string              `json:"student_id"`
	FullName        string              `json:"full_name"`
	CountryOfOrigin string              `json:"country_of_origin"`
	VisaType        compliance.VisaType `json:"visa_type"`
	ProgramEndDate  compliance.Date     `json:"program_end_date"`
	RiskScore       int                 `json:"risk_score"`
	RiskLevel       string              `json:"risk_level"`
	TopRiskFlag     string              `json:"top_risk_flag"`
	Flags           []risk.Flag         `json:"flags"`
}

// handleStudentCPT dispatches /v1/cpt/student/{id}/requests[/{reqID}].
func (a *API) handleStudentCPT(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/cpt/student/")
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")

	switch {
	case len(parts) == 2 && parts[1] == "requests":
		studentID := parts[0]
		switch r.Method {
		case http.MethodPost:
			a.createCPTRequest(w, r, studentID)
		case http.MethodGet:
			a.listCPTRequests(w, r, studentID)
		default:
			methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
		}
	case len(parts) == 3 && parts[1] == "requests":
		if r.Method != http.MethodPatch {
			methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		a.updateCPTStatus(w, r, parts[0], parts[2])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) createCPTRequest(w http.ResponseWriter, r *http.Request, studentID string) {
	var draft compliance.CPTDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req, err := a.svc.CreateCPTRequest(r.Context(), studentID, draft)
	if err != nil {
		handleComplianceError(w, r, err)
		return
	}

	ctx := audit.WithActor(r.Context(), studentID)
	_ = audit.LogEvent(ctx, "cpt.request.create", map[string]any{
		"request_id": req.ID,
		"company":    req.CompanyName,
		"role":       req.Role,
	})
	a.publishCPTEvent(r, req)

	w.Header().Set("Location", "/v1/cpt/student/"+studentID+"/requests/"+req.ID)
	writeJSON(w, http.StatusCreated, req)
}

func (a *API) listCPTRequests(w http.ResponseWriter, r *http.Request, studentID string) {
	list, err := a.svc.ListCPTRequests(r.Context(), studentID)
	if err != nil {
		handleComplianceError(w, r, err)
		return
	}
	if list == nil {
		list = []compliance.CPTRequest{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) updateCPTStatus(w http.ResponseWriter, r *http.Request, studentID, requestID string) {
	var patch cptStatusPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	next, err := compliance.ParseStatus(patch.Status)
	if err != nil {
		handleComplianceError(w, r, err)
		return
	}

	req, err := a.svc.UpdateCPTStatus(r.Context(), studentID, requestID, next)
	if err != nil {
		handleComplianceError(w, r, err)
		return
	}

	ctx := audit.WithActor(r.Context(), studentID)
	event := "cpt.request.offer_signed"
	if compliance.AuthorityOnly(next) {
		event = "cpt.request.decide"
	}
	_ = audit.LogEvent(ctx, event, map[string]any{
		"request_id": req.ID,
		"status":     string(req.Status),
	})
	a.publishCPTEvent(r, req)

	writeJSON(w, http.StatusOK, req)
}

func (a *API) handleAuthorityRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	list, err := a.svc.ListAllCPTRequests(r.Context())
	if err != nil {
		handleComplianceError(w, r, err)
		return
	}
	if list == nil {
		list = []compliance.AuthorityCPTRequest{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleCohort(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	profiles, err := a.svc.ListProfiles(r.Context())
	if err != nil {
		handleComplianceError(w, r, err)
		return
	}

	now := time.Now().UTC()
	rows := make([]cohortRow, 0, len(profiles))
	for _, p := range profiles {
		out := risk.Evaluate(p, now)
		rows = append(rows, cohortRow{
			StudentID:       p.StudentID,
			FullName:        p.FullName,
			CountryOfOrigin: p.CountryOfOrigin,
			VisaType:        p.VisaType,
			ProgramEndDate:  p.ProgramEndDate,
			RiskScore:       out.RiskScore,
			RiskLevel:       out.RiskLevel,
			TopRiskFlag:     risk.TopFlag(out.Flags),
			Flags:           out.Flags,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RiskScore > rows[j].RiskScore
	})
	writeJSON(w, http.StatusOK, rows)
}

func (a *API) publishCPTEvent(r *http.Request, req compliance.CPTRequest) {
	if a.stream == nil {
		return
	}
	name := req.StudentID
	if p, err := a.svc.GetProfile(r.Context(), req.StudentID); err == nil {
		name = p.FullName
	}
	a.stream.Publish(stream.CPTEvent{
		RequestID:   req.ID,
		StudentID:   req.StudentID,
		StudentName: name,
		CompanyName: req.CompanyName,
		Status:      req.Status,
		Timestamp:   time.Now().UTC(),
	})
}
