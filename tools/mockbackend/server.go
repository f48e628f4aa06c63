package main

import (
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
)

// =============================================================================
// Portfolio Backend Mock Server
// =============================================================================
// This server simulates the portfolio backend the dashboard reads from:
// - GET   /portfolio   the whole snapshot
// - POST  /equities    add a holding
// - PATCH /account     set the account balance
// Admin endpoints reset the state and inject failures.
// =============================================================================

// Holding keeps numeric fields exactly as they were posted
type Holding struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Shares       any    `json:"shares"`
	AverageCost  any    `json:"average_cost"`
	CurrentPrice any    `json:"current_price,omitempty"`
}

// Failures switches error injection on and off
type Failures struct {
	Reads  bool `json:"reads"`
	Writes bool `json:"writes"`
}

type Server struct {
	mu           sync.RWMutex
	holdings     []Holding
	balance      *float64
	balanceField string
	failures     Failures
}

// NewServer creates a seeded server that reports the balance under
// balanceField. A dotted field such as "account.total" is nested.
func NewServer(balanceField string) *Server {
	if balanceField == "" {
		balanceField = "total"
	}
	s := &Server{balanceField: balanceField}
	s.seed()
	return s
}

func (s *Server) seed() {
	balance := 25000.0
	s.balance = &balance
	s.holdings = []Holding{
		{Name: "Apple Inc.", Symbol: "AAPL", Shares: 10.0, AverageCost: 150.0, CurrentPrice: 189.5},
		{Name: "Microsoft Corporation", Symbol: "MSFT", Shares: "4", AverageCost: "310.20", CurrentPrice: "415.10"},
		{Name: "NVIDIA Corporation", Symbol: "NVDA", Shares: 2.5, AverageCost: 420.0},
		{Name: "Safaricom PLC", Symbol: "SCOM", Shares: 1000.0, AverageCost: 0.18, CurrentPrice: 0.16},
	}
	s.failures = Failures{}
}

// Routes mounts the mock endpoints
func (s *Server) Routes(app *fiber.App) {
	app.Get("/portfolio", s.getPortfolio)
	app.Post("/equities", s.createHolding)
	app.Patch("/account", s.updateAccount)

	// Admin endpoints
	app.Post("/admin/reset", s.reset)
	app.Post("/admin/failures", s.setFailures)
	app.Get("/admin/state", s.getState)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "portfolio-backend-mock"})
	})
}

// =============================================================================
// Portfolio
// =============================================================================

func (s *Server) snapshot() fiber.Map {
	doc := fiber.Map{"Equities": append([]Holding{}, s.holdings...)}
	if s.balance == nil {
		return doc
	}

	// Nest dotted fields, e.g. account.total -> {"account": {"total": n}}
	parts := strings.Split(s.balanceField, ".")
	node := doc
	for _, p := range parts[:len(parts)-1] {
		child := fiber.Map{}
		node[p] = child
		node = child
	}
	node[parts[len(parts)-1]] = *s.balance
	return doc
}

func (s *Server) getPortfolio(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failures.Reads {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "Portfolio unavailable"})
	}
	return c.JSON(s.snapshot())
}

func (s *Server) createHolding(c *fiber.Ctx) error {
	var req Holding
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if strings.TrimSpace(req.Symbol) == "" || req.Shares == nil || req.AverageCost == nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Missing required fields"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures.Writes {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Write failed"})
	}
	s.holdings = append(s.holdings, req)
	return c.Status(fiber.StatusCreated).JSON(req)
}

type updateAccountRequest struct {
	Balance *float64 `json:"balance"`
}

func (s *Server) updateAccount(c *fiber.Ctx) error {
	var req updateAccountRequest
	if err := c.BodyParser(&req); err != nil || req.Balance == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "balance must be a number"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures.Writes {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Write failed"})
	}
	s.balance = req.Balance
	return c.JSON(fiber.Map{"balance": *s.balance})
}

// =============================================================================
// Admin
// =============================================================================

func (s *Server) reset(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed()
	return c.JSON(fiber.Map{"status": "reset"})
}

func (s *Server) setFailures(c *fiber.Ctx) error {
	var req Failures
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = req
	return c.JSON(s.failures)
}

func (s *Server) getState(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(fiber.Map{
		"holdings":      len(s.holdings),
		"balance":       s.balance,
		"balance_field": s.balanceField,
		"failures":      s.failures,
	})
}
