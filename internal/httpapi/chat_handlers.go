package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"univisa.org/internal/compliance"
	"univisa.org/internal/obs"
)

type chatRequest struct {
	StudentID string `json:"student_id"`
	Question  string `json:"question"`
}

type chatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type chatStatusResponse struct {
	OK               bool `json:"ok"`
	GeminiConfigured bool `json:"gemini_configured"`
}

func (a *API) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, r, http.StatusBadRequest, "question is required")
		return
	}

	// Answers are personalized per student in principle; resolve the
	// profile so unknown ids fall back to the seeded demo student the
	// same way the rest of the API does.
	sid := strings.TrimSpace(req.StudentID)
	if _, err := a.resolveProfile(r, sid); err != nil {
		handleComplianceError(w, r, err)
		return
	}

	ans, matched := a.resolver.Lookup(req.Question)
	outcome := "fallback"
	if matched {
		outcome = "resolved"
	}
	obs.CountAdvisorLookup(outcome)

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:  ans.Text,
		Sources: ans.Sources,
	})
}

func (a *API) handleChatStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, chatStatusResponse{
		OK:               true,
		GeminiConfigured: a.GeminiConfigured,
	})
}

// resolveProfile loads the named profile, falling back to the demo student
// when the id is empty or unknown.
func (a *API) resolveProfile(r *http.Request, studentID string) (compliance.StudentProfile, error) {
	if studentID != "" {
		p, err := a.svc.GetProfile(r.Context(), studentID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, compliance.ErrNotFound) {
			return compliance.StudentProfile{}, err
		}
	}
	return a.svc.GetProfile(r.Context(), "demo")
}
