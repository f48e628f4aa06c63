// Package backend talks to the remote portfolio backend: one snapshot
// resource, one holdings collection and one account resource.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Rohianon/equishare-dashboard/pkg/portfolio"
	"github.com/Rohianon/equishare-dashboard/pkg/telemetry"
)

const (
	DefaultSnapshotPath = "/portfolio"
	DefaultHoldingsPath = "/equities"
	DefaultAccountPath  = "/account"
)

// Config holds backend connection settings
type Config struct {
	BaseURL      string
	SnapshotPath string
	HoldingsPath string
	AccountPath  string
	// Timeout of zero means requests are bounded only by the caller's context
	Timeout time.Duration
}

// Client is the backend API client
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// NewClient creates a traced backend client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.SnapshotPath == "" {
		cfg.SnapshotPath = DefaultSnapshotPath
	}
	if cfg.HoldingsPath == "" {
		cfg.HoldingsPath = DefaultHoldingsPath
	}
	if cfg.AccountPath == "" {
		cfg.AccountPath = DefaultAccountPath
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	return &Client{
		cfg:        cfg,
		httpClient: telemetry.WrapHTTPClient(httpClient),
	}
}

// BaseURL returns the configured backend URL
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// CreateHoldingRequest is the body of a create holding call
type CreateHoldingRequest struct {
	Name         string   `json:"name"`
	Symbol       string   `json:"symbol"`
	Shares       float64  `json:"shares"`
	AverageCost  float64  `json:"average_cost"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
}

// UpdateBalanceRequest is the body of an update balance call
type UpdateBalanceRequest struct {
	Balance float64 `json:"balance"`
}

// FetchSnapshot loads the current portfolio document
func (c *Client) FetchSnapshot(ctx context.Context) (*portfolio.Snapshot, error) {
	body, err := c.do(ctx, http.MethodGet, c.cfg.SnapshotPath, nil)
	if err != nil {
		return nil, err
	}

	snap, err := portfolio.DecodeSnapshot(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	snap.FetchedAt = time.Now().UTC()
	return snap, nil
}

// CreateHolding adds a holding to the holdings collection
func (c *Client) CreateHolding(ctx context.Context, req CreateHoldingRequest) error {
	_, err := c.do(ctx, http.MethodPost, c.cfg.HoldingsPath, req)
	return err
}

// UpdateBalance replaces the account balance
func (c *Client) UpdateBalance(ctx context.Context, req UpdateBalanceRequest) error {
	_, err := c.do(ctx, http.MethodPatch, c.cfg.AccountPath, req)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	return respBody, nil
}
