package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
	"github.com/kirillkom/market-brief-agent/internal/observability/metrics"
)

type fakeBriefService struct {
	brief *domain.Brief
	err   error
	query string
}

func (f *fakeBriefService) ProcessQuery(_ context.Context, query string) (*domain.Brief, error) {
	f.query = query
	return f.brief, f.err
}

func newTestRouter(svc *fakeBriefService) http.Handler {
	return NewRouter(svc, metrics.NewHTTPServerMetrics(serviceName)).Handler()
}

func TestGenerateBriefSuccess(t *testing.T) {
	svc := &fakeBriefService{brief: &domain.Brief{
		RunID:     "run-1",
		Query:     "apple outlook",
		Tickers:   []string{"AAPL"},
		Narrative: "all good",
	}}
	handler := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/brief", strings.NewReader(`{"query":"apple outlook"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.query != "apple outlook" {
		t.Fatalf("service got query %q", svc.query)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["run_id"] != "run-1" || payload["narrative_response"] != "all good" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestGenerateBriefRejectsNonPost(t *testing.T) {
	handler := newTestRouter(&fakeBriefService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/brief", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGenerateBriefRejectsBadJSON(t *testing.T) {
	handler := newTestRouter(&fakeBriefService{})

	req := httptest.NewRequest(http.MethodPost, "/v1/brief", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGenerateBriefRejectsEmptyQuery(t *testing.T) {
	handler := newTestRouter(&fakeBriefService{})

	req := httptest.NewRequest(http.MethodPost, "/v1/brief", strings.NewReader(`{"query":"  "}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGenerateBriefMapsErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid_input", domain.WrapError(domain.ErrInvalidInput, "process query", errors.New("empty")), http.StatusBadRequest},
		{"temporary", domain.WrapError(domain.ErrTemporary, "embed", errors.New("down")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestRouter(&fakeBriefService{err: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/v1/brief", strings.NewReader(`{"query":"q"}`))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(&fakeBriefService{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestMetricsEndpointServed(t *testing.T) {
	handler := newTestRouter(&fakeBriefService{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
