package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Rohianon/equishare-dashboard/pkg/logger"
	"github.com/Rohianon/equishare-dashboard/pkg/telemetry"
)

func init() {
	logger.Init("test", "error", false)
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetRequestID(c))
	})

	t.Run("generates new request ID", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		if err != nil {
			t.Fatalf("app.Test error: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if len(body) == 0 {
			t.Error("RequestID should be generated")
		}
		if resp.Header.Get("X-Request-ID") != string(body) {
			t.Error("X-Request-ID header should match the generated ID")
		}
	})

	t.Run("uses existing request ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", "test-request-id")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test error: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if string(body) != "test-request-id" {
			t.Errorf("RequestID = %v, want test-request-id", string(body))
		}
	})
}

func TestGetRequestID_Missing(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("[" + GetRequestID(c) + "]")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/", nil))
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "[]" {
		t.Errorf("GetRequestID = %s, want empty", body)
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for k, want := range headers {
		if got := resp.Header.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
}

func TestTracing(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		otel.SetTracerProvider(prev)
		tp.Shutdown(context.Background())
	}()

	var traceID string
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/ok", func(c *fiber.Ctx) error {
		traceID = telemetry.TraceID(c.UserContext())
		return c.SendString("ok")
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/ok", nil))
	resp.Body.Close()
	resp, _ = app.Test(httptest.NewRequest("GET", "/fail", nil))
	resp.Body.Close()

	if len(traceID) != 32 {
		t.Errorf("handler should see a trace ID, got %q", traceID)
	}

	ended := rec.Ended()
	if len(ended) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(ended))
	}
	if ended[0].Name() != "GET /ok" {
		t.Errorf("span name = %q", ended[0].Name())
	}
	if len(ended[1].Events()) == 0 {
		t.Error("failed request should record an error event")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "test", "info", false)
	defer logger.Init("test", "error", false)

	app := fiber.New()
	app.Use(RequestID())
	app.Use(Logger())
	app.Get("/api/v1/portfolio", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/api/v1/portfolio", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	out := buf.String()
	for _, want := range []string{`"path":"/api/v1/portfolio"`, `"status":200`, `"request_id":"req-42"`, `"method":"GET"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log should contain %s: %s", want, out)
		}
	}
}
