package handler

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/Rohianon/equishare-dashboard/pkg/dashboard"
	apperrors "github.com/Rohianon/equishare-dashboard/pkg/errors"
	"github.com/Rohianon/equishare-dashboard/pkg/format"
	"github.com/Rohianon/equishare-dashboard/pkg/layout"
	"github.com/Rohianon/equishare-dashboard/pkg/logger"
	"github.com/Rohianon/equishare-dashboard/pkg/metrics"
	"github.com/Rohianon/equishare-dashboard/pkg/portfolio"
	"github.com/Rohianon/equishare-dashboard/pkg/response"
	"github.com/Rohianon/equishare-dashboard/services/dashboard-service/internal/types"
)

//go:embed templates/dashboard.html
var templates embed.FS

var page = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"money":   format.Money,
	"percent": format.Percent,
	"shares":  format.Shares,
	"columns": format.Columns,
	"sign": func(v float64) string {
		if v < 0 {
			return "negative"
		}
		return "positive"
	},
	"missing": func(missing []string, field string) bool {
		return slices.Contains(missing, field)
	},
}).ParseFS(templates, "templates/dashboard.html"))

// Modal names
const (
	modalHolding = "holding"
	modalBalance = "balance"
)

// Handler serves the dashboard page and its JSON API
type Handler struct {
	session     *dashboard.Session
	breakpoint  int
	settleDelay int64
}

// NewHandler creates a new dashboard handler
func NewHandler(session *dashboard.Session, cfg layout.Config) *Handler {
	if cfg.Breakpoint <= 0 {
		cfg.Breakpoint = layout.DefaultBreakpoint
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = layout.DefaultSettleDelay
	}
	return &Handler{
		session:     session,
		breakpoint:  cfg.Breakpoint,
		settleDelay: cfg.SettleDelay.Milliseconds(),
	}
}

// Register mounts the page and API routes
func (h *Handler) Register(app fiber.Router) {
	app.Get("/", h.Page)
	app.Post("/holdings", h.SubmitHolding)
	app.Post("/balance", h.SubmitBalance)

	api := app.Group("/api/v1")
	api.Get("/portfolio", h.GetPortfolio)  // GET /api/v1/portfolio?refresh=true
	api.Post("/holdings", h.AddHolding)    // POST /api/v1/holdings
	api.Patch("/account", h.UpdateBalance) // PATCH /api/v1/account
	api.Post("/layout", h.Layout)          // POST /api/v1/layout
}

type pageData struct {
	View      *portfolio.ViewModel
	LoadError string
	Writable  bool

	// Open names the modal to show, with its draft and error
	Open         string
	HoldingDraft dashboard.HoldingDraft
	BalanceDraft dashboard.BalanceDraft
	FormError    string
	Missing      []string

	AddBusy       bool
	BalanceBusy   bool
	Breakpoint    int
	SettleDelayMs int64
}

func (h *Handler) newPage() pageData {
	return pageData{
		View:          h.session.View(),
		Writable:      h.session.Writable(),
		AddBusy:       h.session.Busy(dashboard.OpAddHolding),
		BalanceBusy:   h.session.Busy(dashboard.OpUpdateBalance),
		Breakpoint:    h.breakpoint,
		SettleDelayMs: h.settleDelay,
	}
}

func (h *Handler) render(c *fiber.Ctx, status int, data pageData) error {
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		logger.Error().Err(err).Msg("Failed to render dashboard")
		return apperrors.ErrInternal.WithError(err)
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

// Page loads the snapshot and renders the dashboard. With cached=true the
// current snapshot is rendered without a load, which is how an open page
// picks up a snapshot announced over the websocket.
// GET /
func (h *Handler) Page(c *fiber.Ctx) error {
	data := h.newPage()
	if data.View != nil && c.QueryBool("cached") {
		return h.render(c, fiber.StatusOK, data)
	}

	view, err := h.session.Load(c.UserContext())
	if err != nil {
		data.View = nil
		data.LoadError = messageOf(err)
		return h.render(c, fiber.StatusOK, data)
	}
	data.View = view
	return h.render(c, fiber.StatusOK, data)
}

// SubmitHolding handles the add-holding form
// POST /holdings
func (h *Handler) SubmitHolding(c *fiber.Ctx) error {
	var draft dashboard.HoldingDraft
	if err := c.BodyParser(&draft); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form")
	}

	if _, err := h.session.AddHolding(c.UserContext(), draft); err != nil {
		data := h.failedPage(err, modalHolding)
		if data.Open != "" {
			data.HoldingDraft = draft
		}
		return h.render(c, statusOf(err), data)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// SubmitBalance handles the update-balance form
// POST /balance
func (h *Handler) SubmitBalance(c *fiber.Ctx) error {
	var draft dashboard.BalanceDraft
	if err := c.BodyParser(&draft); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form")
	}

	if _, err := h.session.UpdateBalance(c.UserContext(), draft); err != nil {
		data := h.failedPage(err, modalBalance)
		if data.Open != "" {
			data.BalanceDraft = draft
		}
		return h.render(c, statusOf(err), data)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// failedPage keeps the modal open with its error, except when the write went
// through and only the reload failed: the draft is then consumed and the page
// shows the load error instead of data.
func (h *Handler) failedPage(err error, modal string) pageData {
	data := h.newPage()

	if errors.Is(err, apperrors.ErrLoad) {
		data.View = nil
		data.LoadError = messageOf(err)
		return data
	}

	data.Open = modal
	data.FormError = messageOf(err)
	if appErr, ok := apperrors.As(err); ok {
		if details, ok := appErr.Details.(map[string]any); ok {
			data.Missing, _ = details["missing"].([]string)
		}
	}
	return data
}

// GetPortfolio returns the current view model
// GET /api/v1/portfolio?refresh=true
func (h *Handler) GetPortfolio(c *fiber.Ctx) error {
	view := h.session.View()
	if view == nil || c.QueryBool("refresh") {
		var err error
		if view, err = h.session.Load(c.UserContext()); err != nil {
			return err
		}
	}

	return response.Success(c, types.PortfolioResponse{
		Portfolio: view,
		Writable:  h.session.Writable(),
	})
}

// AddHolding creates a holding and returns the reloaded view model
// POST /api/v1/holdings
func (h *Handler) AddHolding(c *fiber.Ctx) error {
	var req types.AddHoldingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.ErrValidation.WithMessage("Invalid request body")
	}

	view, err := h.session.AddHolding(c.UserContext(), req.Draft())
	if err != nil {
		return err
	}
	return response.Created(c, types.PortfolioResponse{Portfolio: view, Writable: true})
}

// UpdateBalance sets the account balance and returns the reloaded view model
// PATCH /api/v1/account
func (h *Handler) UpdateBalance(c *fiber.Ctx) error {
	var req types.UpdateBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.ErrValidation.WithMessage("Invalid request body")
	}

	view, err := h.session.UpdateBalance(c.UserContext(), req.Draft())
	if err != nil {
		return err
	}
	return response.Success(c, types.PortfolioResponse{Portfolio: view, Writable: true})
}

// Layout answers the column decision for a measured one column render
// POST /api/v1/layout
func (h *Handler) Layout(c *fiber.Ctx) error {
	var req types.LayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.ErrValidation.WithMessage("Invalid request body")
	}
	if req.Viewport.Width < 0 || req.Viewport.Height < 0 || req.ContentHeight < 0 {
		return apperrors.ErrValidation.WithMessage("Viewport and content height must not be negative")
	}

	cols := layout.Decide(req.Viewport, req.ContentHeight, h.breakpoint)
	metrics.SetLayoutColumns(int(cols))

	return response.Success(c, types.LayoutResponse{
		Columns:    cols,
		Breakpoint: h.breakpoint,
	})
}

func messageOf(err error) string {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Message
	}
	return apperrors.ErrInternal.Message
}

func statusOf(err error) int {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
