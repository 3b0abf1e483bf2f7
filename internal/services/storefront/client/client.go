// Package client calls the coffee store JSON API on behalf of the storefront,
// the prerender step and the seed command.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	platformotel "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/otel"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/timeouts"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
	apperrors "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/errors"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/httpx"
)

const (
	pathGetStoreByID       = "/api/getStoreById"
	pathCreateStore        = "/api/createStore"
	pathFavouriteStoreByID = "/api/favouriteStoreById"
	pathStores             = "/api/stores"

	maxResponseBytes = 4 << 20
)

// Error reports a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
}

// Error renders the status and message.
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("coffeestore api status %d", e.StatusCode)
	}
	return fmt.Sprintf("coffeestore api status %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes the typed kind so callers can map statuses uniformly.
func (e *Error) Unwrap() error {
	return apperrors.E(apperrors.KindForStatus(e.StatusCode), e.Message)
}

// IsNotFound reports whether err is a 404 API response.
func IsNotFound(err error) bool {
	return apperrors.KindOf(err) == apperrors.KindNotFound
}

// Page is one listing page.
type Page struct {
	Stores        []domain.StoreRecord `json:"stores"`
	NextPageToken string               `json:"nextPageToken"`
}

// Client is an HTTP client for the coffee store API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tracer     trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets a per-request timeout on the underlying HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			copied := *c.httpClient
			copied.Timeout = timeout
			c.httpClient = &copied
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must use http or https", baseURL)
	}
	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeouts.APIRequest},
		tracer:     platformotel.Tracer("storefront/client"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// GetStoreByID performs the keyed fetch. An unknown id yields an empty slice.
func (c *Client) GetStoreByID(ctx context.Context, id string) ([]domain.StoreRecord, error) {
	query := url.Values{}
	query.Set("id", id)
	var records []domain.StoreRecord
	if err := c.do(ctx, http.MethodGet, pathGetStoreByID, query, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CreateStore creates the record if absent. created is false when the API
// returned an existing record.
func (c *Client) CreateStore(ctx context.Context, record domain.StoreRecord) (domain.StoreRecord, bool, error) {
	var stored domain.StoreRecord
	status, err := c.doStatus(ctx, http.MethodPost, pathCreateStore, nil, record, &stored)
	if err != nil {
		return domain.StoreRecord{}, false, err
	}
	return stored, status == http.StatusCreated, nil
}

// FavouriteStore increments the vote counter and returns the updated records.
func (c *Client) FavouriteStore(ctx context.Context, id string) ([]domain.StoreRecord, error) {
	var records []domain.StoreRecord
	body := map[string]string{"id": id}
	if err := c.do(ctx, http.MethodPut, pathFavouriteStoreByID, nil, body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListStores fetches one listing page.
func (c *Client) ListStores(ctx context.Context, pageSize int, pageToken string) (Page, error) {
	query := url.Values{}
	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}
	var page Page
	if err := c.do(ctx, http.MethodGet, pathStores, query, nil, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, target any) error {
	_, err := c.doStatus(ctx, method, path, query, body, target)
	return err
}

func (c *Client) doStatus(ctx context.Context, method, path string, query url.Values, body any, target any) (int, error) {
	if c == nil || c.httpClient == nil {
		return 0, errors.New("coffeestore api client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	endpoint := *c.baseURL
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + path
	endpoint.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.String("http.request.id", resp.Header.Get(httpx.RequestIDHeader)),
	)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode, Message: decodeErrorMessage(raw)}
		span.SetStatus(codes.Error, apiErr.Error())
		return resp.StatusCode, apiErr
	}
	if target == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		span.RecordError(err)
		return resp.StatusCode, fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return resp.StatusCode, nil
}

func decodeErrorMessage(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return strings.TrimSpace(payload.Error)
	}
	return strings.TrimSpace(string(raw))
}
