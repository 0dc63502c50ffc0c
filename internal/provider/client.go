// Package provider talks to the api.nskgortrans.ru real-time transit API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/catouberos/transit-forecast/internal/models"
)

const (
	DefaultBaseURL = "https://api.nskgortrans.ru"
	DefaultTimeout = 10 * time.Second

	stopsPath    = "/stop/list/all"
	routesPath   = "/route/list/all"
	forecastPath = "/forecast/platform/id/%s"
	trassaPath   = "/trassa/list/ids/[[%s,%d]]"
)

// Provider is the set of upstream calls the rest of the service depends on.
type Provider interface {
	FetchStops(ctx context.Context) ([]models.Stop, error)
	FetchRoutes(ctx context.Context) ([]models.Route, error)
	FetchForecast(ctx context.Context, platformID models.ID) ([]models.ForecastEntry, error)
	FetchRoutePath(ctx context.Context, routeID models.ID, direction int) (*models.RoutePath, error)
}

type Options struct {
	BaseURL string
	APIKey  string
	Version string
	Format  string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	apiKey  string
	version string
	format  string
	client  *http.Client
}

var _ Provider = (*Client)(nil)

func New(opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		version: opts.Version,
		format:  opts.Format,
		client:  &http.Client{Timeout: opts.Timeout},
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.version == "" {
		c.version = DefaultAPIVersion
	}
	if c.format == "" {
		c.format = DefaultFormat
	}
	if c.client.Timeout <= 0 {
		c.client.Timeout = DefaultTimeout
	}

	return c
}

func (c *Client) FetchStops(ctx context.Context) ([]models.Stop, error) {
	stops := []models.Stop{}
	if err := c.fetchList(ctx, stopsPath, &stops); err != nil {
		return nil, fmt.Errorf("fetch stops: %w", err)
	}
	return stops, nil
}

func (c *Client) FetchRoutes(ctx context.Context) ([]models.Route, error) {
	routes := []models.Route{}
	if err := c.fetchList(ctx, routesPath, &routes); err != nil {
		return nil, fmt.Errorf("fetch routes: %w", err)
	}
	return routes, nil
}

// FetchForecast returns the predictions for one platform. A missing or null
// data field means nothing is predicted and yields an empty slice.
func (c *Client) FetchForecast(ctx context.Context, platformID models.ID) ([]models.ForecastEntry, error) {
	entries := []models.ForecastEntry{}
	path := fmt.Sprintf(forecastPath, url.PathEscape(platformID.String()))
	if err := c.fetchList(ctx, path, &entries); err != nil {
		return nil, fmt.Errorf("fetch forecast for platform %s: %w", platformID, err)
	}
	return entries, nil
}

// FetchRoutePath returns nil without an error when the API knows no path for
// the route and direction.
func (c *Client) FetchRoutePath(ctx context.Context, routeID models.ID, direction int) (*models.RoutePath, error) {
	paths := []models.RoutePath{}
	path := fmt.Sprintf(trassaPath, url.PathEscape(routeID.String()), direction)
	if err := c.fetchList(ctx, path, &paths); err != nil {
		return nil, fmt.Errorf("fetch route path %s/%d: %w", routeID, direction, err)
	}

	if len(paths) == 0 {
		return nil, nil
	}
	return &paths[0], nil
}

func (c *Client) fetchList(ctx context.Context, path string, out any) error {
	body, err := c.fetch(ctx, path)
	if err != nil {
		return err
	}

	var envelope models.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '[' {
		return fmt.Errorf("%w: data is not a list", ErrUnexpectedShape)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	if err := c.injectCredentials(req); err != nil {
		return nil, err
	}

	slog.Debug("Fetching upstream", "path", path, "request_id", req.Header.Get("X-Request-ID"))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		slog.Error("An error occurred while reading response", "path", path, "error", err)
		return nil, err
	}

	return buf.Bytes(), nil
}
