// Package signalk is a client for the resources and course API of a
// SignalK navigation server: routes, waypoints, destination, active route
// and the delta stream.
package signalk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hycracing/courseselect/internal/resilience"
)

const (
	apiV2Prefix  = "/signalk/v2/api"
	apiV1Prefix  = "/signalk/v1/api"
	streamPath   = "/signalk/v1/stream"
	coursePath   = apiV2Prefix + "/vessels/self/navigation/course"
	positionPath = apiV1Prefix + "/vessels/self/navigation/position"

	maxErrorBody = 512
)

// Config holds the connection settings.
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:3000.
	BaseURL string
	// Token is sent as a bearer token when set.
	Token   string
	Timeout time.Duration
	Retry   resilience.RetryPolicy
}

// Client talks to one SignalK server. It is safe for concurrent use.
type Client struct {
	base     *url.URL
	token    string
	http     *http.Client
	retry    resilience.RetryPolicy
	logger   *slog.Logger
	wpCache  *expirable.LRU[string, string]
	cacheTTL time.Duration
	ws       *websocket.Dialer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithWaypointCacheTTL sets how long resolved waypoint names are cached.
func WithWaypointCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// NewClient validates the configuration and returns a client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		base:     base,
		token:    cfg.Token,
		http:     &http.Client{Timeout: timeout},
		retry:    cfg.Retry,
		logger:   slog.Default(),
		cacheTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.wpCache = expirable.NewLRU[string, string](256, nil, c.cacheTTL)
	c.ws = &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: timeout,
	}
	return c, nil
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ListRoutes fetches every route.
func (c *Client) ListRoutes(ctx context.Context) (*RouteIndex, error) {
	data, err := c.do(ctx, "list routes", http.MethodGet, apiV2Prefix+"/resources/routes", nil)
	if err != nil {
		return nil, err
	}
	routes, err := decodeCollection[RouteRecord](data)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return NewRouteIndex(routes), nil
}

// PutRoute writes a route under id, creating or replacing it.
func (c *Client) PutRoute(ctx context.Context, id string, r RouteRecord) error {
	body, err := r.Body()
	if err != nil {
		return fmt.Errorf("encode route %s: %w", id, err)
	}
	_, err = c.do(ctx, "put route "+id, http.MethodPut, apiV2Prefix+"/resources/routes/"+url.PathEscape(id), body,
		http.StatusOK, http.StatusCreated)
	return err
}

// DeleteRoute removes a route.
func (c *Client) DeleteRoute(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete route "+id, http.MethodDelete, apiV2Prefix+"/resources/routes/"+url.PathEscape(id), nil)
	return err
}

// ListWaypoints fetches every waypoint and refreshes the name cache.
func (c *Client) ListWaypoints(ctx context.Context) (*WaypointIndex, error) {
	data, err := c.do(ctx, "list waypoints", http.MethodGet, apiV2Prefix+"/resources/waypoints", nil)
	if err != nil {
		return nil, err
	}
	waypoints, err := decodeCollection[WaypointRecord](data)
	if err != nil {
		return nil, fmt.Errorf("list waypoints: %w", err)
	}
	idx := NewWaypointIndex(waypoints)
	for name, id := range idx.Names() {
		c.wpCache.Add(nameKey(name), id)
	}
	return idx, nil
}

// PutWaypoint writes a waypoint under id.
func (c *Client) PutWaypoint(ctx context.Context, id string, w WaypointRecord) error {
	body, err := w.Body()
	if err != nil {
		return fmt.Errorf("encode waypoint %s: %w", id, err)
	}
	_, err = c.do(ctx, "put waypoint "+id, http.MethodPut, apiV2Prefix+"/resources/waypoints/"+url.PathEscape(id), body,
		http.StatusOK, http.StatusCreated, http.StatusNoContent)
	return err
}

// ResolveWaypoint returns the id of the waypoint with the given name,
// fetching the waypoint list when the name is not cached.
func (c *Client) ResolveWaypoint(ctx context.Context, name string) (string, error) {
	if id, ok := c.wpCache.Get(nameKey(name)); ok {
		return id, nil
	}
	idx, err := c.ListWaypoints(ctx)
	if err != nil {
		return "", err
	}
	w, ok := idx.ByName(name)
	if !ok {
		return "", fmt.Errorf("%w: waypoint %q", ErrNotFound, name)
	}
	return w.ID, nil
}

// SetActiveRoute makes the route the vessel's active route.
func (c *Client) SetActiveRoute(ctx context.Context, id string) error {
	body, _ := json.Marshal(map[string]string{"href": RouteHref(id)})
	_, err := c.do(ctx, "set active route", http.MethodPut, coursePath+"/activeRoute", body)
	return err
}

// SetDestination steers to a single waypoint.
func (c *Client) SetDestination(ctx context.Context, waypointID string) error {
	body, _ := json.Marshal(map[string]string{"href": WaypointHref(waypointID)})
	_, err := c.do(ctx, "set destination", http.MethodPut, coursePath+"/destination", body)
	return err
}

// ClearCourse clears the destination and active route.
func (c *Client) ClearCourse(ctx context.Context) error {
	_, err := c.do(ctx, "clear course", http.MethodDelete, coursePath, nil, http.StatusOK, http.StatusNoContent)
	return err
}

// ActiveRoute returns the href of the active route, or "" when none is set.
func (c *Client) ActiveRoute(ctx context.Context) (string, error) {
	return c.courseHref(ctx, "get active route", coursePath+"/activeRoute")
}

// Destination returns the href of the current destination, or "".
func (c *Client) Destination(ctx context.Context) (string, error) {
	return c.courseHref(ctx, "get destination", coursePath+"/destination")
}

func (c *Client) courseHref(ctx context.Context, op, path string) (string, error) {
	data, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	href, err := decodeHref(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return href, nil
}

// decodeHref reads {"href": ...}, {"value": {"href": ...}} or null.
func decodeHref(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return "", nil
	}
	var v struct {
		Href  string `json:"href"`
		Value *struct {
			Href string `json:"href"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return "", err
	}
	if v.Value != nil && v.Value.Href != "" {
		return v.Value.Href, nil
	}
	return v.Href, nil
}

// Position returns the vessel position.
func (c *Client) Position(ctx context.Context) (Position, error) {
	data, err := c.do(ctx, "get position", http.MethodGet, positionPath, nil)
	if err != nil {
		return Position{}, err
	}
	var v struct {
		Value *looseLatLon `json:"value"`
		looseLatLon
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return Position{}, fmt.Errorf("get position: %w", err)
	}
	if v.Value != nil {
		if p, ok := v.Value.position(); ok {
			return p, nil
		}
	}
	if p, ok := v.looseLatLon.position(); ok {
		return p, nil
	}
	return Position{}, fmt.Errorf("get position: %w: no fix", ErrNotFound)
}

// do sends one request under the retry policy. Without explicit accepted
// codes any 2xx is a success.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, accepted ...int) ([]byte, error) {
	return resilience.RetryValue(ctx, c.retry, func() ([]byte, error) {
		var reader io.Reader = http.NoBody
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrServiceUnreachable, op, err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: read body: %v", ErrServiceUnreachable, op, err)
		}
		if !statusAccepted(resp.StatusCode, accepted) {
			c.logger.Debug("unexpected status", "op", op, "status", resp.StatusCode)
			return nil, &StatusError{Op: op, Code: resp.StatusCode, Body: truncate(string(bytes.TrimSpace(data)), maxErrorBody)}
		}
		return data, nil
	})
}

func statusAccepted(code int, accepted []int) bool {
	if len(accepted) == 0 {
		return code >= 200 && code < 300
	}
	return slices.Contains(accepted, code)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
