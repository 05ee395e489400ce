package httpapi

import (
	"net/http"
	"strings"
	"time"

	"univisa.org/internal/audit"
	"univisa.org/internal/compliance"
	"univisa.org/internal/risk"
)

func (a *API) handleStudentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createProfile(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost)
	}
}

func (a *API) handleStudentResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/students/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")
	switch {
	case len(parts) == 1:
		a.getProfile(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "risk":
		a.getRisk(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "alerts":
		a.getAlerts(w, r, parts[0])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) createProfile(w http.ResponseWriter, r *http.Request) {
	var draft compliance.ProfileDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := a.svc.CreateProfile(r.Context(), draft)
	if err != nil {
		handleComplianceError(w, r, err)
		return
	}

	_ = audit.LogEvent(audit.WithActor(r.Context(), profile.StudentID), "student.profile.create", map[string]any{
		"university": profile.University,
		"visa_type":  string(profile.VisaType),
	})

	w.Header().Set("Location", "/v1/students/"+profile.StudentID)
	writeJSON(w, http.StatusCreated, map[string]string{"student_id": profile.StudentID})
}

func (a *API) getProfile(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := a.svc.GetProfile(r.Context(), id)
	if err != nil {
		handleComplianceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (a *API) getRisk(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := a.svc.GetProfile(r.Context(), id)
	if err != nil {
		handleComplianceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, risk.Evaluate(profile, time.Now().UTC()))
}

func (a *API) getAlerts(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := a.svc.GetProfile(r.Context(), id)
	if err != nil {
		handleComplianceError(w, r, err)
		return
	}
	out := risk.Evaluate(profile, time.Now().UTC())
	writeJSON(w, http.StatusOK, out.Alerts)
}
