package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
)

const (
	menusPath         = "/menus/"
	categoriesPath    = "/categories/"
	optionGroupsPath  = "/option-groups/"
	optionsPath       = "/options/"
	menuOptionsPath   = "/menu-option-groups/"
	ordersPath        = "/orders/"
	paymentsPath      = "/payments/"
	tablesPath        = "/tables/"
	errorBodyReadCap  = 1024
	defaultHTTPExpiry = 30 * time.Second
)

var errBaseURLRequired = errors.New("upstream base url is required")

// Client wraps the restaurant backend's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds a client for the given backend base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultHTTPExpiry},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// BaseURL exposes the configured backend address, used by the relay.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// Ping verifies the backend answers at all; used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	var out []CategoryRecord
	return c.getJSON(ctx, categoriesPath, nil, &out)
}

// ListMenus fetches every menu record.
func (c *Client) ListMenus(ctx context.Context) ([]MenuRecord, error) {
	var out []MenuRecord
	if err := c.getJSON(ctx, menusPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCategories fetches every category record.
func (c *Client) ListCategories(ctx context.Context) ([]CategoryRecord, error) {
	var out []CategoryRecord
	if err := c.getJSON(ctx, categoriesPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOptionGroups fetches every option group, choices included when the
// backend attaches them.
func (c *Client) ListOptionGroups(ctx context.Context) ([]OptionGroupRecord, error) {
	var out []OptionGroupRecord
	if err := c.getJSON(ctx, optionGroupsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOptionGroup fetches a single option group by id.
func (c *Client) GetOptionGroup(ctx context.Context, id int64) (*OptionGroupRecord, error) {
	var out OptionGroupRecord
	if err := c.getJSON(ctx, fmt.Sprintf("%s%d", optionGroupsPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOptions fetches every option choice. The backend does not filter by
// group server-side, so callers filter locally.
func (c *Client) ListOptions(ctx context.Context) ([]OptionRecord, error) {
	var out []OptionRecord
	if err := c.getJSON(ctx, optionsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MappingsByMenu fetches the menu→option-group mappings for one menu.
func (c *Client) MappingsByMenu(ctx context.Context, menuID int64) ([]MappingRecord, error) {
	var out []MappingRecord
	if err := c.getJSON(ctx, fmt.Sprintf("%smenu/%d", menuOptionsPath, menuID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTables fetches the dining tables for the selection screen.
func (c *Client) ListTables(ctx context.Context) ([]TableRecord, error) {
	var out []TableRecord
	if err := c.getJSON(ctx, tablesPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrder submits a composed order to the backend.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderRecord, error) {
	var out OrderRecord
	if err := c.postJSON(ctx, ordersPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders fetches orders, optionally bounded to a date range (inclusive,
// YYYY-MM-DD as the backend expects).
func (c *Client) ListOrders(ctx context.Context, startDate, endDate string) ([]OrderRecord, error) {
	var query url.Values
	if startDate != "" || endDate != "" {
		query = url.Values{}
		if startDate != "" {
			query.Set("start_date", startDate)
		}
		if endDate != "" {
			query.Set("end_date", endDate)
		}
	}
	var out []OrderRecord
	if err := c.getJSON(ctx, ordersPath, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPayments fetches payment records.
func (c *Client) ListPayments(ctx context.Context) ([]PaymentRecord, error) {
	var out []PaymentRecord
	if err := c.getJSON(ctx, paymentsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, dest)
}

func (c *Client) postJSON(ctx context.Context, path string, body, dest any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, dest)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "upstream client not configured")
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal upstream request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build upstream request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute upstream request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadCap))
		// A 404 means the record is gone, not that the backend is down;
		// callers decide whether a missing record is fatal.
		code := pkgerrors.CodeDependency
		if resp.StatusCode == http.StatusNotFound {
			code = pkgerrors.CodeNotFound
		}
		return pkgerrors.Wrap(
			code,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			fmt.Sprintf("upstream %s %s failed", method, path),
		)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode upstream response")
	}
	return nil
}
