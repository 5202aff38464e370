// Package leap provides the HTTP client for the LEAP (JobProgress) CRM API v3.
package leap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/config"
	"leadcapture_backend/platform/logger"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "https://api.jobprogress.com/api/v3"
	defaultTimeout = 30 * time.Second
	systemName     = "leap"
	maxErrorBody   = 64 << 10
)

// Client is the HTTP client for the LEAP CRM.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        *logger.Logger
}

// NewClient creates a LEAP client. A missing API token is a configuration error.
func NewClient(cfg config.LeapConfig, log *logger.Logger) (*Client, error) {
	token := strings.TrimSpace(cfg.GetLeapAPIToken())
	if token == "" {
		return nil, apperr.Configuration("LEAP_API_TOKEN is required when CRM sync is enabled")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.GetLeapBaseURL()), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.GetLeapTimeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		token:   token,
		log:     log,
	}, nil
}

// CreateProspect creates a customer and a job in one call. The form uses the
// bracketed key convention (job[trades][], address[city], ...).
func (c *Client) CreateProspect(ctx context.Context, form url.Values) (any, error) {
	body := strings.NewReader(form.Encode())
	return c.do(ctx, http.MethodPost, "/prospects", body, "application/x-www-form-urlencoded")
}

// CreateCustomer creates a standalone customer.
func (c *Client) CreateCustomer(ctx context.Context, payload any) (any, error) {
	return c.doJSON(ctx, http.MethodPost, "/customers", payload)
}

// UpdateCustomer updates a customer by id.
func (c *Client) UpdateCustomer(ctx context.Context, id string, payload any) (any, error) {
	return c.doJSON(ctx, http.MethodPut, "/customers/"+url.PathEscape(id), payload)
}

// CreateJob creates a job for an existing customer.
func (c *Client) CreateJob(ctx context.Context, payload any) (any, error) {
	return c.doJSON(ctx, http.MethodPost, "/jobs", payload)
}

// UpdateJob updates a job by id.
func (c *Client) UpdateJob(ctx context.Context, id string, payload any) (any, error) {
	return c.doJSON(ctx, http.MethodPut, "/jobs/"+url.PathEscape(id), payload)
}

// GetCustomer fetches a customer by id.
func (c *Client) GetCustomer(ctx context.Context, id string) (any, error) {
	return c.do(ctx, http.MethodGet, "/customers/"+url.PathEscape(id), nil, "")
}

// TestConnection lists a single customer to check the token and base URL.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/customers?per_page=1", nil, "")
	return err
}

// Trades lists company trades with their work types.
func (c *Client) Trades(ctx context.Context) ([]Trade, error) {
	var out envelope[[]Trade]
	if err := c.getInto(ctx, "/company/trades?includes[]=work_types", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Divisions lists company divisions.
func (c *Client) Divisions(ctx context.Context) ([]Division, error) {
	var out envelope[[]Division]
	if err := c.getInto(ctx, "/divisions", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// SalesReps lists active company users sorted by first name.
func (c *Client) SalesReps(ctx context.Context) ([]SalesRep, error) {
	var out envelope[[]SalesRep]
	if err := c.getInto(ctx, "/company/users?active=1&includes[]=profile&sort_by=first_name&sort_order=asc", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any) (any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	return c.do(ctx, method, path, bytes.NewReader(raw), "application/json")
}

func (c *Client) getInto(ctx context.Context, path string, dst any) error {
	raw, err := c.send(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.Transient("LEAP CRM returned an unreadable response", err)
	}
	return nil
}

// do sends the request and returns the decoded body with the "data" envelope
// removed when the API wrapped the payload in one.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (any, error) {
	raw, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	tree, err := decodeTree(raw)
	if err != nil {
		return nil, apperr.Transient("LEAP CRM returned an unreadable response", err)
	}
	return Unwrap(tree), nil
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithContext(ctx).ExternalCall(systemName, method, path, 0, time.Since(start))
		return nil, apperr.Transient("LEAP CRM request failed", err).WithOp(method + " " + path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	c.log.WithContext(ctx).ExternalCall(systemName, method, path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, apperr.Transient("LEAP CRM response was interrupted", err).WithOp(method + " " + path)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	return nil, classify(resp.StatusCode, raw).WithOp(method + " " + path)
}

// classify maps a non-2xx response onto the error taxonomy the reconciler acts on.
func classify(status int, body []byte) *apperr.Error {
	var tree any
	if len(bytes.TrimSpace(body)) > 0 {
		tree, _ = decodeTree(body)
	}
	msg := "LEAP CRM Error: " + remoteMessage(status, tree)

	switch {
	case status == http.StatusNotFound:
		return apperr.NotFound(msg)
	case status == http.StatusBadRequest || status == http.StatusPreconditionFailed || status == http.StatusUnprocessableEntity:
		return apperr.RemoteValidation(msg, ValidationFields(tree))
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.Configuration(msg)
	default:
		return apperr.Transient(msg, fmt.Errorf("status %d", status))
	}
}

func remoteMessage(status int, tree any) string {
	if obj, ok := tree.(map[string]any); ok {
		if s, ok := obj["message"].(string); ok && s != "" {
			return s
		}
		if inner, ok := obj["error"].(map[string]any); ok {
			if s, ok := inner["message"].(string); ok && s != "" {
				return s
			}
		}
		if s, ok := obj["error"].(string); ok && s != "" {
			return s
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

// ValidationFields reads the field errors from error.validation or validation.
// Values may be a single message or a list of messages.
func ValidationFields(tree any) map[string][]string {
	obj, ok := tree.(map[string]any)
	if !ok {
		return nil
	}
	var raw map[string]any
	if inner, ok := obj["error"].(map[string]any); ok {
		raw, _ = inner["validation"].(map[string]any)
	}
	if raw == nil {
		raw, _ = obj["validation"].(map[string]any)
	}
	if len(raw) == 0 {
		return nil
	}

	fields := make(map[string][]string, len(raw))
	for field, v := range raw {
		switch msgs := v.(type) {
		case string:
			fields[field] = []string{msgs}
		case []any:
			for _, m := range msgs {
				fields[field] = append(fields[field], fmt.Sprint(m))
			}
		default:
			fields[field] = []string{fmt.Sprint(msgs)}
		}
	}
	return fields
}

// Unwrap returns tree["data"] when the response carries a data envelope.
func Unwrap(tree any) any {
	if obj, ok := tree.(map[string]any); ok {
		if data, ok := obj["data"]; ok && data != nil {
			return data
		}
	}
	return tree
}

func decodeTree(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return tree, nil
}
