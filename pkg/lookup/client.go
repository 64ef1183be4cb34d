package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-matterform/pkg/model"
)

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient injects the http.Client used for requests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout caps each request when the injected client has no timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client implements Service against the JSON endpoints served by the lookups
// component.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
}

var _ Service = (*Client)(nil)

// NewClient builds a client rooted at baseURL (for example
// "http://localhost:8080/api/lookups").
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("lookup client: base url is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("lookup client: parse base url: %w", err)
	}
	c := &Client{base: trimmed, http: http.DefaultClient}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.timeout > 0 && c.http.Timeout == 0 {
		clone := *c.http
		clone.Timeout = c.timeout
		c.http = &clone
	}
	return c, nil
}

// Regions fetches GET {base}/regions.
func (c *Client) Regions(ctx context.Context) ([]model.Region, error) {
	var out []model.Region
	if err := c.get(ctx, "/regions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NameOptions fetches GET {base}/regions/{region}/names.
func (c *Client) NameOptions(ctx context.Context, region string) ([]model.NameOption, error) {
	if strings.TrimSpace(region) == "" {
		return nil, ErrEmptyKey
	}
	var out []model.NameOption
	if err := c.get(ctx, "/regions/"+url.PathEscape(region)+"/names", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Details fetches GET {base}/names/{name}/details.
func (c *Client) Details(ctx context.Context, name string) (model.Details, error) {
	if strings.TrimSpace(name) == "" {
		return model.Details{}, ErrEmptyKey
	}
	var out model.Details
	if err := c.get(ctx, "/names/"+url.PathEscape(name)+"/details", &out); err != nil {
		return model.Details{}, err
	}
	return out, nil
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("lookup client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("lookup client: GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("lookup client: GET %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("lookup client: GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload envelope
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("lookup client: decode %s: %w", path, err)
	}
	if len(payload.Data) == 0 {
		return fmt.Errorf("lookup client: %s: missing data", path)
	}
	if err := json.Unmarshal(payload.Data, dest); err != nil {
		return fmt.Errorf("lookup client: decode %s data: %w", path, err)
	}
	return nil
}
