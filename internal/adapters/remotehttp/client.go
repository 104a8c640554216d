package remotehttp

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

	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

var (
	ErrBaseURLRequired = errors.New("remotehttp: base url required")
	ErrUnitNotFound    = errors.New("remotehttp: unit not found")
)

const defaultTimeout = 30 * time.Second

// Client talks to the versioned content store over its JSON API. It
// satisfies interfaces.RemoteStore; the engine never sees transport
// details.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithToken sets the bearer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient constructs a client for the store rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, ErrBaseURLRequired
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("remotehttp: parse base url: %w", err)
	}

	c := &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ interfaces.RemoteStore = (*Client)(nil)

// saveUnitRequest is the commit payload: the unit plus an optional message
// recorded by the store (a commit message on git-backed stores).
type saveUnitRequest struct {
	Unit    *interfaces.ContentUnit `json:"unit"`
	Message string                  `json:"message,omitempty"`
}

type draftStatusResponse struct {
	HasDraft bool `json:"hasDraft"`
}

func (c *Client) LoadUnit(ctx context.Context, unitID string) (*interfaces.ContentUnit, error) {
	var unit interfaces.ContentUnit
	status, err := c.do(ctx, http.MethodGet, c.endpoint("units", unitID), nil, &unit)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUnitNotFound, unitID)
	}
	return &unit, nil
}

func (c *Client) SaveUnit(ctx context.Context, unitID string, unit *interfaces.ContentUnit, message string) error {
	payload := saveUnitRequest{Unit: unit, Message: message}
	status, err := c.do(ctx, http.MethodPut, c.endpoint("units", unitID), payload, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrUnitNotFound, unitID)
	}
	return nil
}

func (c *Client) HasUnpublishedDraft(ctx context.Context) (bool, error) {
	var body draftStatusResponse
	if _, err := c.do(ctx, http.MethodGet, c.endpoint("drafts", "status"), nil, &body); err != nil {
		return false, err
	}
	return body.HasDraft, nil
}

func (c *Client) LoadRemoteDraft(ctx context.Context, unitID string) (*interfaces.ContentUnit, error) {
	var unit interfaces.ContentUnit
	status, err := c.do(ctx, http.MethodGet, c.endpoint("drafts", unitID), nil, &unit)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	return &unit, nil
}

// do issues one JSON round-trip. 404 is reported through the status return
// so call sites can map it onto their own semantics; other non-2xx statuses
// become errors carrying the response body.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("remotehttp: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, fmt.Errorf("remotehttp: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("remotehttp: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return resp.StatusCode, fmt.Errorf("remotehttp: %s %s: status %d: %s", method, endpoint, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("remotehttp: decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) endpoint(parts ...string) string {
	joined := *c.baseURL
	segments := append([]string{strings.TrimSuffix(joined.Path, "/")}, parts...)
	joined.Path = strings.Join(segments, "/")
	return joined.String()
}
