package reference

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-faster/errors"
	"golang.org/x/time/rate"

	"github.com/preciolens/backend/internal/domain"
)

// DefaultBaseURL is the reference-pricing site.
const DefaultBaseURL = "https://pricely.ar"

const userAgent = "Mozilla/5.0 (compatible; PrecioLens/1.0)"

// Config holds the reference client settings
type Config struct {
	BaseURL string
	// Timeout bounds a single request; zero leaves it to the caller's context.
	Timeout time.Duration
	// RequestsPerMinute limits outgoing requests; zero disables limiting.
	RequestsPerMinute int
}

// Client fetches and scrapes product pages from the reference-pricing site
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new reference site client
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), cfg.RequestsPerMinute)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug enables or disables verbose logging of fetched pages
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// ProductURL builds the product page URL, escaping the EAN as a single path segment
func (c *Client) ProductURL(ean string) string {
	return c.baseURL + "/product/" + url.PathEscape(ean)
}

// Fetch downloads the product page for ean and extracts its fields.
// Only transport and HTTP status failures are errors; missing fields yield placeholders.
func (c *Client) Fetch(ctx context.Context, ean string) (*domain.ScrapeResult, error) {
	pageURL := c.ProductURL(ean)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrapf(domain.ErrFetch, "rate limiter: %v", err)
	}

	resp, err := c.doRequest(ctx, pageURL)
	if err != nil {
		log.Printf("[Reference] Request error for %s: %v", pageURL, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Printf("[Reference] %s answered %d", pageURL, resp.StatusCode)
		return nil, errors.Wrapf(domain.ErrFetch, "GET %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrFetch, "read %s: %v", pageURL, err)
	}

	result := extract(doc, resp.Request.URL)
	if c.debug {
		log.Printf("[Reference] %s -> name=%q price=%q image=%q", pageURL, result.ProductName, result.RawPriceText, result.ImageURL)
	}
	return result, nil
}

// doRequest executes an HTTP GET request with proper headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrFetch, "create request: %v", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrFetch, "GET %s: %v", reqURL, err)
	}

	return resp, nil
}
