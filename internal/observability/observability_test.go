package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticket-tracker/internal/config"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"}, config.AppConfig{Name: "ticket-tracker"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("debug should be disabled for an unknown level")
	}
	if !logger.Core().Enabled(zap.InfoLevel) {
		t.Fatal("info should be enabled")
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 4*time.Millisecond)
	m.RecordRequest("/tickets", "POST", 400, time.Millisecond)
	m.RecordError("/tickets", "POST", apperrors.CodeValidationFailed)

	snap := m.Snapshot()
	if len(snap.Requests) != 2 {
		t.Fatalf("requests = %+v", snap.Requests)
	}
	get := snap.Requests[0]
	if get.Method != "GET" || get.Outcome != "200" || get.Count != 2 || get.AvgMillis != 3 {
		t.Fatalf("GET stat = %+v", get)
	}
	if len(snap.Errors) != 1 || snap.Errors[0].Outcome != apperrors.CodeValidationFailed {
		t.Fatalf("errors = %+v", snap.Errors)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", apperrors.CodeInternal)
	if snap := m.Snapshot(); len(snap.Requests) != 0 || len(snap.Errors) != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/tickets/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "missing" {
			return apperrors.NewNotFound(apperrors.InvalidTicketID)
		}
		return c.SendString("ok")
	})

	for _, path := range []string{"/tickets/abc", "/tickets/missing"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		resp.Body.Close()
	}

	entries := logs.FilterMessage("request").All()
	if len(entries) != 2 {
		t.Fatalf("logged %d requests, want 2", len(entries))
	}
	if got := entries[1].ContextMap()["status"]; got != int64(400) {
		t.Fatalf("status field = %v, want 400", got)
	}

	snap := metrics.Snapshot()
	if len(snap.Requests) != 2 {
		t.Fatalf("requests = %+v", snap.Requests)
	}
	for _, stat := range snap.Requests {
		if stat.Route != "/tickets/:id" {
			t.Errorf("route = %q, want the route pattern", stat.Route)
		}
	}
}
