package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"univisa.org/internal/advisor"
	"univisa.org/internal/compliance"
	"univisa.org/internal/httpapi"
	"univisa.org/internal/stream"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()

	svc := compliance.NewInMemory()
	svc.SeedDemo()

	api := httpapi.New(httpapi.ReadyProbe{}, "test", svc, advisor.Default(), stream.New())
	api.RateBurst = 1000
	api.RatePerSec = 1000

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return New(srv.URL, WithHTTPClient(srv.Client()))
}

func TestClientCPTFlow(t *testing.T) {
	client := newTestServer(t)
	ctx := context.Background()

	created, err := client.CreateCPTRequest(ctx, "demo", compliance.CPTDraft{
		CompanyName:       "Acme Corp",
		Role:              "Software Intern",
		ExpectedStartDate: compliance.NewDate(2026, 6, 1),
		ExpectedEndDate:   compliance.NewDate(2026, 8, 30),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != compliance.StatusIntent {
		t.Fatalf("created status = %q", created.Status)
	}

	list, err := client.ListCPTRequests(ctx, "demo")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected listing: %+v", list)
	}

	signed, err := client.MarkOfferSigned(ctx, "demo", created.ID)
	if err != nil {
		t.Fatalf("mark signed: %v", err)
	}
	if signed.Status != compliance.StatusOfferSigned {
		t.Fatalf("status after signing = %q", signed.Status)
	}
	if signed.SignedOfferUploadedAt == nil {
		t.Fatalf("expected upload timestamp")
	}

	// Second signing attempt surfaces the server's conflict.
	_, err = client.MarkOfferSigned(ctx, "demo", created.ID)
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	if rejected.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rejected.StatusCode)
	}

	dso, err := client.AuthorityRequests(ctx)
	if err != nil {
		t.Fatalf("authority requests: %v", err)
	}
	if len(dso) != 1 || dso[0].StudentName != "Riya Sharma" {
		t.Fatalf("unexpected authority listing: %+v", dso)
	}
}

func TestClientChatAndAlerts(t *testing.T) {
	client := newTestServer(t)
	ctx := context.Background()

	ans, err := client.Chat(ctx, "demo", "Can I work 20 hours on campus?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if ans.Answer == "" || len(ans.Sources) == 0 {
		t.Fatalf("empty chat answer: %+v", ans)
	}

	status, err := client.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.OK {
		t.Fatalf("expected ok status")
	}

	if _, err := client.Alerts(ctx, "demo"); err != nil {
		t.Fatalf("alerts: %v", err)
	}

	out, err := client.Risk(ctx, "demo")
	if err != nil {
		t.Fatalf("risk: %v", err)
	}
	if out.RiskLevel == "" {
		t.Fatalf("missing risk level in %+v", out)
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	client := New(srv.URL)
	_, err := client.ListCPTRequests(context.Background(), "demo")

	var unreachable *UnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected UnreachableError, got %v", err)
	}
	if unreachable.Endpoint == "" {
		t.Fatalf("expected endpoint in error")
	}
}

func TestClientDecodesErrorShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"not your request"}`, "not your request"},
		{"detail string", `{"detail":"Not found"}`, "Not found"},
		{"detail list", `{"detail":[{"msg":"field required"}]}`, "field required"},
		{"garbage", `<html>boom</html>`, "unknown error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := New(srv.URL)
			_, err := client.ListCPTRequests(context.Background(), "demo")

			var rejected *RejectedError
			if !errors.As(err, &rejected) {
				t.Fatalf("expected RejectedError, got %v", err)
			}
			if rejected.Message != tc.want {
				t.Fatalf("message = %q, want %q", rejected.Message, tc.want)
			}
		})
	}
}
