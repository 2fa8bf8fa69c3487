package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/faeln1/alerta-roja/internal/platform/metrics"
	waLog "go.mau.fi/whatsmeow/util/log"
)

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/alert", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if called {
		t.Fatal("preflight must not reach the handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestMetricsRecordsRoute(t *testing.T) {
	c := metrics.New()
	h := Metrics(c, func(*http.Request) string { return "/api/comunidad/{name}" })(
		Logging(waLog.Noop)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})),
	)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/comunidad/norte", nil))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `alerta_http_requests_total{method="GET",route="/api/comunidad/{name}",status_code="404"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("metrics missing %s", want)
	}
}

func TestMetricsNilCollector(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	if h := Metrics(nil, nil)(next); h == nil {
		t.Fatal("expected passthrough handler")
	}
}
