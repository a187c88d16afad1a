package client

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cofoundr/artifacts"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the origin of the co-founder service
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout bounds every round trip
	DefaultTimeout = 60 * time.Second
)

// ArtifactSaver persists binary responses and returns a dereferenceable handle
type ArtifactSaver interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Observer receives one callback per completed request
type Observer interface {
	ObserveRequest(endpoint string, statusCode int, elapsed time.Duration, err error)
}

// Client is a thin HTTP client for the co-founder service API
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	artifacts  ArtifactSaver
	observer   Observer
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the per-request bound
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying transport client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithArtifacts sets where binary images and reports are stored
func WithArtifacts(s ArtifactSaver) Option {
	return func(c *Client) {
		if s != nil {
			c.artifacts = s
		}
	}
}

// WithObserver registers a per-request observer
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the service at baseURL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.artifacts == nil {
		c.artifacts = artifacts.NewLocalStore(filepath.Join(os.TempDir(), "cofoundr"))
	}
	return c
}

// BaseURL returns the service origin
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-request bound
func (c *Client) Timeout() time.Duration { return c.timeout }
