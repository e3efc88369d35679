// AngelaMos | 2026
// client_test.go

package investigate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/carterperez-dev/roadassist-api/internal/config"
)

func testClient(endpoint string) *Client {
	return NewClient(config.InvestigateConfig{
		Endpoint: endpoint,
		APIKey:   "test-key",
		Model:    "gpt-4o-mini",
		Timeout:  2 * time.Second,
	})
}

func TestDiagnose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("missing bearer credential, got %q", got)
			}

			var req chatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if req.Model != "gpt-4o-mini" {
				t.Errorf("model not forwarded, got %q", req.Model)
			}
			if len(req.Messages) != 2 ||
				!strings.Contains(req.Messages[1].Content, "dial timeout") {
				t.Errorf("report not forwarded: %+v", req.Messages)
			}

			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]string{
						"role":    "assistant",
						"content": "redis is down, restart it",
					}},
				},
			})
		}))
	defer srv.Close()

	got, err := testClient(srv.URL).Diagnose(
		context.Background(),
		"Error: dial timeout",
	)
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if got != "redis is down, restart it" {
		t.Fatalf("unexpected diagnosis %q", got)
	}
}

func TestDiagnose_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limited"}}`))
		}))
	defer srv.Close()

	_, err := testClient(srv.URL).Diagnose(context.Background(), "boom")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected upstream status error, got %v", err)
	}
}

func TestDiagnose_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
	defer srv.Close()

	_, err := testClient(srv.URL).Diagnose(context.Background(), "boom")
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("expected no-choices error, got %v", err)
	}
}
