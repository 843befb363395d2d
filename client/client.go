// Package client talks to a running trade API over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/viktsys/tradestore/models"
)

const DefaultTimeout = 30 * time.Second

// ErrNotFound matches an *APIError with status 404.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer decoded from the error envelope.
type APIError struct {
	Status        int      `json:"-"`
	ErrorSummary  string   `json:"error"`
	Message       string   `json:"message"`
	MissingFields []string `json:"missing_fields"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("http %d: %s", e.Status, e.ErrorSummary)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.MissingFields) > 0 {
		msg += " (" + strings.Join(e.MissingFields, ", ") + ")"
	}
	return msg
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type Health struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type tradeEnvelope struct {
	Message   string       `json:"message"`
	TradeID   string       `json:"trade_id"`
	TradeData models.Trade `json:"trade_data"`
}

type listEnvelope struct {
	Message string         `json:"message"`
	Count   int            `json:"count"`
	Trades  []models.Trade `json:"trades"`
}

type Client struct {
	client *resty.Client
}

type Option func(*resty.Client)

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

// New builds a client for the API at baseURL. Requests are never retried.
func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "tradestore-client")
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{client: rc}
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	return r
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	resp, err := c.newRequest(ctx).SetResult(&out).Get("/health")
	if err := check(resp, err); err != nil {
		return Health{}, err
	}
	return out, nil
}

func (c *Client) CreateTrade(ctx context.Context, p models.TradePayload) (models.Trade, error) {
	var out tradeEnvelope
	resp, err := c.newRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(p).
		SetResult(&out).
		Post("/api/trades")
	if err := check(resp, err); err != nil {
		return models.Trade{}, err
	}
	return out.TradeData, nil
}

func (c *Client) GetTrade(ctx context.Context, id string) (models.Trade, error) {
	var out tradeEnvelope
	resp, err := c.newRequest(ctx).SetResult(&out).Get(tradePath(id))
	if err := check(resp, err); err != nil {
		return models.Trade{}, err
	}
	return out.TradeData, nil
}

func (c *Client) ListTrades(ctx context.Context) ([]models.Trade, error) {
	var out listEnvelope
	resp, err := c.newRequest(ctx).SetResult(&out).Get("/api/trades")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	if out.Trades == nil {
		out.Trades = []models.Trade{}
	}
	return out.Trades, nil
}

func (c *Client) UpdateTrade(ctx context.Context, id string, p models.TradePayload) (models.Trade, error) {
	var out tradeEnvelope
	resp, err := c.newRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(p).
		SetResult(&out).
		Put(tradePath(id))
	if err := check(resp, err); err != nil {
		return models.Trade{}, err
	}
	return out.TradeData, nil
}

func (c *Client) DeleteTrade(ctx context.Context, id string) error {
	resp, err := c.newRequest(ctx).Delete(tradePath(id))
	return check(resp, err)
}

func tradePath(id string) string {
	return "/api/trades/" + url.PathEscape(id)
}

// check turns transport failures and non-2xx answers into errors.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	if resp.IsSuccess() {
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode()}
	if jsonErr := json.Unmarshal(resp.Body(), apiErr); jsonErr != nil || apiErr.ErrorSummary == "" {
		apiErr.ErrorSummary = http.StatusText(resp.StatusCode())
	}
	return apiErr
}
