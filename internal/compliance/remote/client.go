package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"univisa.org/internal/compliance"
	"univisa.org/internal/risk"
)

// Client talks to the UniVisa API over HTTP/JSON.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the API at base (e.g. "http://localhost:8080").
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UnreachableError marks transport-level failures, where the server never
// produced a response. Callers use it to decide whether local fallbacks
// apply.
type UnreachableError struct {
	Endpoint string
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("remote: %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// RejectedError carries a non-2xx response decoded from the server.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("remote: server rejected request (%d): %s", e.StatusCode, e.Message)
}

// ChatAnswer is the advisory response payload.
type ChatAnswer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// ChatStatus reports advisory service availability.
type ChatStatus struct {
	OK               bool `json:"ok"`
	GeminiConfigured bool `json:"gemini_configured"`
}

// Chat asks the advisory resolver a question on behalf of a student.
func (c *Client) Chat(ctx context.Context, studentID, question string) (ChatAnswer, error) {
	var out ChatAnswer
	err := c.doJSON(ctx, http.MethodPost, "/v1/chat", map[string]string{
		"student_id": studentID,
		"question":   question,
	}, &out)
	return out, err
}

// Status fetches advisory service status.
func (c *Client) Status(ctx context.Context) (ChatStatus, error) {
	var out ChatStatus
	err := c.doJSON(ctx, http.MethodGet, "/v1/chat/status", nil, &out)
	return out, err
}

// Alerts fetches the computed compliance alerts for a student.
func (c *Client) Alerts(ctx context.Context, studentID string) ([]compliance.Alert, error) {
	var out []compliance.Alert
	err := c.doJSON(ctx, http.MethodGet, "/v1/students/"+studentID+"/alerts", nil, &out)
	return out, err
}

// Risk fetches the full risk evaluation for a student.
func (c *Client) Risk(ctx context.Context, studentID string) (risk.Output, error) {
	var out risk.Output
	err := c.doJSON(ctx, http.MethodGet, "/v1/students/"+studentID+"/risk", nil, &out)
	return out, err
}

// CreateCPTRequest files a new CPT request for a student.
func (c *Client) CreateCPTRequest(ctx context.Context, studentID string, draft compliance.CPTDraft) (compliance.CPTRequest, error) {
	var out compliance.CPTRequest
	err := c.doJSON(ctx, http.MethodPost, "/v1/cpt/student/"+studentID+"/requests", draft, &out)
	return out, err
}

// ListCPTRequests fetches a student's CPT requests, newest first.
func (c *Client) ListCPTRequests(ctx context.Context, studentID string) ([]compliance.CPTRequest, error) {
	var out []compliance.CPTRequest
	err := c.doJSON(ctx, http.MethodGet, "/v1/cpt/student/"+studentID+"/requests", nil, &out)
	return out, err
}

// UpdateCPTStatus moves a CPT request to the given status.
func (c *Client) UpdateCPTStatus(ctx context.Context, studentID, requestID string, next compliance.Status) (compliance.CPTRequest, error) {
	var out compliance.CPTRequest
	err := c.doJSON(ctx, http.MethodPatch,
		"/v1/cpt/student/"+studentID+"/requests/"+requestID,
		map[string]string{"status": string(next)}, &out)
	return out, err
}

// MarkOfferSigned records a signed offer upload for a CPT request.
func (c *Client) MarkOfferSigned(ctx context.Context, studentID, requestID string) (compliance.CPTRequest, error) {
	return c.UpdateCPTStatus(ctx, studentID, requestID, compliance.StatusOfferSigned)
}

// AuthorityRequests fetches all CPT requests with student names joined.
func (c *Client) AuthorityRequests(ctx context.Context) ([]compliance.AuthorityCPTRequest, error) {
	var out []compliance.AuthorityCPTRequest
	err := c.doJSON(ctx, http.MethodGet, "/v1/cpt/dso/requests", nil, &out)
	return out, err
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &UnreachableError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RejectedError{
			StatusCode: resp.StatusCode,
			Message:    decodeErrorMessage(resp.Body),
		}
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("remote: decode response: %w", err)
	}
	return nil
}

// decodeErrorMessage accepts both this API's {"error": "..."} shape and the
// {"detail": ...} shape used by other backends the mobile clients talk to.
func decodeErrorMessage(r io.Reader) string {
	var payload struct {
		Error  string          `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return "unknown error"
	}
	if payload.Error != "" {
		return payload.Error
	}
	if len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(payload.Detail, &items) == nil && len(items) > 0 && items[0].Msg != "" {
			return items[0].Msg
		}
	}
	return "unknown error"
}
