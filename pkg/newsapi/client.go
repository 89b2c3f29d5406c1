// Package newsapi provides a client for the NewsAPI.org "everything" endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://newsapi.org"

// Client searches recent news articles.
type Client interface {
	Everything(ctx context.Context, req EverythingRequest) (*EverythingResponse, error)
}

// EverythingRequest holds the query parameters for GET /v2/everything.
type EverythingRequest struct {
	Query    string
	PageSize int
	SortBy   string // relevancy, popularity or publishedAt
	Language string
}

// EverythingResponse is the response from GET /v2/everything.
type EverythingResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// Article is a single news article.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Source identifies the publisher of an article.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// errorResponse is the body NewsAPI returns with non-200 statuses.
type errorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a NewsAPI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Everything(ctx context.Context, req EverythingRequest) (*EverythingResponse, error) {
	if req.Query == "" {
		return nil, eris.New("newsapi: empty query")
	}

	params := url.Values{}
	params.Set("q", req.Query)
	if req.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(req.PageSize))
	}
	if req.SortBy != "" {
		params.Set("sortBy", req.SortBy)
	}
	if req.Language != "" {
		params.Set("language", req.Language)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: create request")
	}
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: send request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Code != "" {
			return nil, eris.Errorf("newsapi: status %d: %s: %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return nil, eris.Errorf("newsapi: unexpected status %d", resp.StatusCode)
	}

	var result EverythingResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "newsapi: unmarshal response")
	}
	if result.Status != "ok" {
		return nil, eris.Errorf("newsapi: response status %q", result.Status)
	}

	return &result, nil
}
