// Package api is the HTTP client for the remote recipe search service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/recipebook/internal/common"
	"github.com/Veraticus/recipebook/internal/model"
	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the public recipe service.
	DefaultBaseURL = "https://food2fork.ca/"
	// DefaultTimeout bounds each request when Config.Timeout is unset.
	DefaultTimeout = 15 * time.Second

	searchPath = "api/recipe/search/"
	getPath    = "api/recipe/get/"

	maxErrorBody = 512
)

// Config configures a Client.
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	Timeout    time.Duration
}

// Client implements service.RecipeAPI over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	token      string
	timeout    time.Duration
}

// NewClient creates a new API client.
func NewClient(cfg Config) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}

	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: base URL %q: %v", common.ErrInvalidConfig, raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: base URL %q must be http or https", common.ErrInvalidConfig, raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		token:      cfg.Token,
		timeout:    timeout,
	}, nil
}

// Search fetches one page of results. An empty query is omitted from the request.
func (c *Client) Search(ctx context.Context, page int, query string) (*model.SearchResponse, error) {
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if query != "" {
		params.Set("query", query)
	}

	body, err := c.get(ctx, "search", searchPath, params)
	if err != nil {
		return nil, err
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, common.NewServiceError("search", 0, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err))
	}

	results := make([]model.Recipe, 0, len(payload.Results))
	for i, dto := range payload.Results {
		recipe, err := dto.toModel()
		if err != nil {
			return nil, common.NewServiceError("search", 0, fmt.Errorf("result %d: %w", i, err))
		}
		results = append(results, recipe)
	}

	return &model.SearchResponse{
		Count:    payload.Count,
		Next:     payload.Next,
		Previous: payload.Previous,
		Results:  results,
	}, nil
}

// Get fetches a single recipe by id. Both a bare recipe object and a
// {"recipe": {...}} envelope are accepted.
func (c *Client) Get(ctx context.Context, id string) (*model.Recipe, error) {
	params := url.Values{}
	params.Set("id", id)

	body, err := c.get(ctx, "get", getPath, params)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Recipe *recipeDTO `json:"recipe"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, common.NewServiceError("get", 0, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err))
	}

	dto := envelope.Recipe
	if dto == nil {
		dto = &recipeDTO{}
		if err := json.Unmarshal(body, dto); err != nil {
			return nil, common.NewServiceError("get", 0, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err))
		}
	}

	recipe, err := dto.toModel()
	if err != nil {
		return nil, common.NewServiceError("get", 0, err)
	}
	return &recipe, nil
}

// get performs one authenticated GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	u.RawQuery = params.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	slog.Debug("Requesting recipes",
		"op", op,
		"request_id", requestID,
		"url_params", u.RawQuery)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.requestError(ctx, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.requestError(ctx, op, fmt.Errorf("failed to read response: %w", err))
	}

	slog.Debug("Recipe service responded",
		"op", op,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, common.NewServiceError(op, resp.StatusCode, fmt.Errorf("%w: %s", common.ErrUnexpectedStatus, snippet))
	}

	return body, nil
}

// requestError separates a caller giving up from the network failing. Only the
// latter, including our own request timeout, is a TransportError.
func (c *Client) requestError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return common.NewTransportError(op, err)
}
