package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func scrape(t *testing.T) string {
	t.Helper()
	app := fiber.New()
	app.Get("/metrics", Handler())

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func TestHandler(t *testing.T) {
	body := scrape(t)

	if !strings.Contains(body, "go_goroutines") {
		t.Error("Should contain go_goroutines metric")
	}
	if !strings.Contains(body, "process_resident_memory_bytes") {
		t.Error("Should contain process_resident_memory_bytes metric")
	}
}

func TestMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware(Config{
		ServiceName: "test-service",
		SkipPaths:   []string{"/health"},
	}))
	app.Get("/api/test", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("healthy")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/test", nil))
	resp.Body.Close()
	resp, _ = app.Test(httptest.NewRequest("GET", "/health", nil))
	resp.Body.Close()

	body := scrape(t)
	if !strings.Contains(body, `http_requests_total{method="GET",path="/api/test",service="test-service",status="200"}`) {
		t.Error("Should record /api/test")
	}
	if strings.Contains(body, `path="/health"`) {
		t.Error("Should skip /health")
	}
}

func TestDashboardMetrics(t *testing.T) {
	RecordSnapshotLoad(nil, 10*time.Millisecond)
	RecordSnapshotLoad(errors.New("down"), time.Millisecond)
	RecordWrite("add_holding", "success")
	RecordWrite("update_balance", "busy")
	RecordBackendCall("add_holding", 5*time.Millisecond)
	SetSnapshotVersion(7)
	SetLayoutColumns(2)

	body := scrape(t)

	want := []string{
		`dashboard_snapshot_loads_total{status="success"}`,
		`dashboard_snapshot_loads_total{status="error"}`,
		`dashboard_writes_total{operation="add_holding",status="success"}`,
		`dashboard_writes_total{operation="update_balance",status="busy"}`,
		`dashboard_backend_request_duration_seconds_bucket{operation="load"`,
		"dashboard_snapshot_version 7",
		"dashboard_layout_columns 2",
	}
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("Should contain %s", w)
		}
	}
}

func TestRecordKafkaMessageProduced(t *testing.T) {
	RecordKafkaMessageProduced("equishare.dashboard.writes", nil)

	body := scrape(t)
	if !strings.Contains(body, `kafka_messages_produced_total{status="success",topic="equishare.dashboard.writes"}`) {
		t.Error("Should contain kafka_messages_produced_total metric")
	}
}
