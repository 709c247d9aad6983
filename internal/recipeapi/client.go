// Package recipeapi forwards recipe searches and lookups to the Spoonacular
// catalog.  Responses are returned as raw JSON: the catalog owns the recipe
// schema and nothing here reshapes it.
package recipeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var (
	ErrMissingAPIKey       = errors.New("recipe api key is not configured")
	ErrUpstreamUnavailable = errors.New("recipe api unavailable")
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*pageSize far from int overflow.
	MaxPage = 10000

	maxBodyBytes = 8 << 20
)

// HTTPClient is the transport capability the proxy needs. *http.Client
// satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// SpoonacularClient issues single-attempt requests against the catalog.
// There is no retry and no caching.
type SpoonacularClient struct {
	baseURL string
	apiKey  string
	http    HTTPClient
}

// New returns a client for baseURL.  An empty apiKey is rejected with
// ErrMissingAPIKey; a nil httpClient means http.DefaultClient.
func New(baseURL, apiKey string, httpClient HTTPClient) (*SpoonacularClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SpoonacularClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}, nil
}

// NormalizePage clamps 1-based pagination: page < 1 becomes 1, pageSize < 1
// becomes DefaultPageSize, and page and pageSize are capped at MaxPage and
// MaxPageSize.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Search runs a catalog search for term, returning page of pageSize results.
func (c *SpoonacularClient) Search(ctx context.Context, term string, page, pageSize int) (json.RawMessage, error) {
	page, pageSize = NormalizePage(page, pageSize)
	q := url.Values{}
	q.Set("query", term)
	q.Set("number", strconv.Itoa(pageSize))
	q.Set("offset", strconv.Itoa((page-1)*pageSize))
	return c.get(ctx, "/recipes/complexSearch", q)
}

// Summary fetches the short summary of one recipe.
func (c *SpoonacularClient) Summary(ctx context.Context, recipeID int64) (json.RawMessage, error) {
	return c.get(ctx, "/recipes/"+strconv.FormatInt(recipeID, 10)+"/summary", url.Values{})
}

// Bulk fetches full information for several recipes in one call.  No ids
// means an empty JSON array without contacting the catalog.
func (c *SpoonacularClient) Bulk(ctx context.Context, recipeIDs []int64) (json.RawMessage, error) {
	if len(recipeIDs) == 0 {
		return json.RawMessage("[]"), nil
	}
	ids := make([]string, len(recipeIDs))
	for i, id := range recipeIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	return c.get(ctx, "/recipes/informationBulk", q)
}

func (c *SpoonacularClient) get(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	q.Set("apiKey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// the url carries the api key, keep it out of the error
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUpstreamUnavailable, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUpstreamUnavailable, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrUpstreamUnavailable, path, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: GET %s: malformed json", ErrUpstreamUnavailable, path)
	}
	return json.RawMessage(body), nil
}
