package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotel_pms/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()
	if again := observability.InitRegistry(); again != reg {
		t.Fatalf("expected InitRegistry to return the same registry")
	}

	observability.ObserveHTTP("/webhook/{pms}", "POST", 200, 12*time.Millisecond)
	observability.ObserveWebhook("apaleo", "ok")
	observability.ObserveReservation("apaleo", "skipped")
	observability.ObserveGuest("relocated")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"pms_http_requests_total",
		`pms_webhooks_total{pms="apaleo",result="ok"}`,
		`pms_reservations_total{pms="apaleo",result="skipped"}`,
		`pms_guest_resolutions_total{outcome="relocated"}`,
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestNewLogger_LevelFallback(t *testing.T) {
	l := observability.NewLogger("prod", "nonsense")
	if got := l.GetLevel().String(); got != "info" {
		t.Fatalf("expected info level, got %s", got)
	}
	l = observability.NewLogger("dev", "debug")
	if got := l.GetLevel().String(); got != "debug" {
		t.Fatalf("expected debug level, got %s", got)
	}
}
