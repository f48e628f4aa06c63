package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/Rohianon/equishare-dashboard/pkg/errors"
)

func decode(t *testing.T, app *fiber.App, method, path string) (int, Response) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("invalid envelope %s: %v", body, err)
	}
	return resp.StatusCode, result
}

func TestSuccess(t *testing.T) {
	app := fiber.New()
	app.Get("/test", func(c *fiber.Ctx) error {
		return Success(c, map[string]string{"key": "value"})
	})

	status, result := decode(t, app, "GET", "/test")
	if status != 200 {
		t.Errorf("status = %d, want 200", status)
	}
	if result.Error != nil {
		t.Error("error should be nil for success response")
	}
	if result.Meta.RequestID == "" {
		t.Error("request_id should be set")
	}
	if result.Meta.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
	if result.Meta.Version != "v1" {
		t.Errorf("version = %q, want v1", result.Meta.Version)
	}
}

func TestCreated(t *testing.T) {
	app := fiber.New()
	app.Post("/test", func(c *fiber.Ctx) error {
		return Created(c, map[string]string{"symbol": "A"})
	})

	if status, _ := decode(t, app, "POST", "/test"); status != 201 {
		t.Errorf("status = %d, want 201", status)
	}
}

func TestRequestIDFromLocals(t *testing.T) {
	app := fiber.New()
	app.Get("/test", func(c *fiber.Ctx) error {
		c.Locals("request_id", "req-123")
		return Success(c, nil)
	})

	_, result := decode(t, app, "GET", "/test")
	if result.Meta.RequestID != "req-123" {
		t.Errorf("request_id = %q, want req-123", result.Meta.RequestID)
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperrors.ErrValidation.WithDetails(map[string]any{"missing": []string{"symbol"}}), 400, "VALIDATION_ERROR"},
		{"busy", apperrors.ErrBusy, 409, "WRITE_IN_FLIGHT"},
		{"writes disabled", apperrors.ErrWritesDisabled, 403, "WRITES_DISABLED"},
		{"load failed wrapped", fmt.Errorf("page: %w", apperrors.ErrLoad.WithError(errors.New("refused"))), 502, "LOAD_FAILED"},
		{"write failed", apperrors.ErrWrite, 502, "WRITE_FAILED"},
		{"fiber not found", fiber.ErrNotFound, 404, "NOT_FOUND"},
		{"fiber upgrade required", fiber.ErrUpgradeRequired, 426, "UPGRADE_REQUIRED"},
		{"plain error", errors.New("boom"), 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/test", func(c *fiber.Ctx) error { return tt.err })

			status, result := decode(t, app, "GET", "/test")
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if result.Error == nil || result.Error.Code != tt.wantCode {
				t.Fatalf("error = %+v, want code %s", result.Error, tt.wantCode)
			}
		})
	}
}

func TestErrorHandler_DetailsPassThrough(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/test", func(c *fiber.Ctx) error {
		return apperrors.ErrValidation.WithDetails(map[string]any{"missing": []string{"name", "symbol"}})
	})

	_, result := decode(t, app, "GET", "/test")
	details, ok := result.Error.Details.(map[string]any)
	if !ok {
		t.Fatalf("details = %#v", result.Error.Details)
	}
	if missing := details["missing"].([]any); len(missing) != 2 {
		t.Errorf("missing = %v", missing)
	}
}
