package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"univisa.org/internal/advisor"
	"univisa.org/internal/compliance"
	"univisa.org/internal/obs"
	"univisa.org/internal/stream"
)

// ReadyProbe checks readiness (e.g. DB ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the compliance service and advisory resolver.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	svc        compliance.Service
	resolver   *advisor.Resolver
	stream     *stream.Stream

	// Tunables with defaults set in New; override before Handler.
	RateBurst        int
	RatePerSec       int
	MaxBodyBytes     int64
	GeminiConfigured bool
}

func New(rp ReadyProbe, version string, svc compliance.Service, resolver *advisor.Resolver, st *stream.Stream) *API {
	a := &API{
		mux:          http.NewServeMux(),
		readyProbe:   rp,
		version:      version,
		svc:          svc,
		resolver:     resolver,
		stream:       st,
		RateBurst:    100,
		RatePerSec:   50,
		MaxBodyBytes: 1 << 20,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// advisory chat
	a.mux.HandleFunc("/v1/chat", a.handleChat)
	a.mux.HandleFunc("/v1/chat/status", a.handleChatStatus)

	// student profiles and risk
	a.mux.HandleFunc("/v1/students", a.handleStudentsCollection)
	a.mux.HandleFunc("/v1/students/", a.handleStudentResource)

	// CPT workflow
	a.mux.HandleFunc("/v1/cpt/student/", a.handleStudentCPT)
	a.mux.HandleFunc("/v1/cpt/dso/requests", a.handleAuthorityRequests)
	a.mux.HandleFunc("/v1/cpt/dso/cohort", a.handleCohort)
	a.mux.HandleFunc("/v1/cpt/dso/stream", a.Stream)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := http.Handler(a.mux)
	h = obs.Instrument(h)
	h = LoggingJSON(h)
	h = RateLimit(h, a.RateBurst, a.RatePerSec)
	h = MaxBodyBytes(h, a.MaxBodyBytes)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = RequestID(h)
	return h
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "univisa-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "univisa-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func handleComplianceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, compliance.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, compliance.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, compliance.ErrForbidden):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, compliance.ErrInvalidTransition):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
