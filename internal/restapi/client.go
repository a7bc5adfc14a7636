// Package restapi implements the repository content operations on top of the
// Nexus 2 REST API (`/service/local/...`).
package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/internal/nexusapi"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

const (
	mimeJSON = "application/json"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "nexus-client-go"
)

var _ nexusapi.NexusAPI = (*Client)(nil)

// Config holds the settings of a REST client.
type Config struct {
	BaseURL    string
	User       string
	Password   string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to one Nexus server. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	user       string
	password   string
	userAgent  string
	maxRetries int
	http       *http.Client
	logger     *slog.Logger
}

// New creates a REST client. Without a custom HTTP client, redirects are not
// followed and cfg.Timeout bounds the wait for each response's headers.
// Reading a response body is limited only by the request context.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.NewValidationError("client initialization", "base URL cannot be empty")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.NewError("client initialization", fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err))
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.NewError("client initialization",
			fmt.Errorf("%w: unsupported URL scheme %q", errors.ErrInvalidConfig, base.Scheme))
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = cfg.Timeout
		httpClient = &http.Client{
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:    base,
		user:       cfg.User,
		password:   cfg.Password,
		userAgent:  userAgent,
		maxRetries: cfg.MaxRetries,
		http:       httpClient,
		logger:     logger,
	}, nil
}

// ListContent implements nexusapi.NexusAPI.
func (c *Client) ListContent(ctx context.Context, repo, dirPath string) ([]nexustypes.DirEntry, error) {
	const op = "list"
	endpoint := c.endpoint(readOnlyPrefix(repo), dirPath)

	var entries []nexustypes.DirEntry
	err := c.retry(ctx, op, func() error {
		resp, err := c.do(ctx, http.MethodGet, endpoint, nil, func(req *http.Request) {
			req.Header.Set("Accept", mimeJSON)
		})
		if err != nil {
			return errors.NewRemoteError(op, repo, dirPath, err)
		}
		defer drainAndClose(resp.Body)

		if err := checkStatus(resp, op, repo, dirPath); err != nil {
			return classify(err)
		}

		var envelope struct {
			Data *[]nexustypes.DirEntry `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return permanent(errors.NewDecodeError(op, repo, dirPath, err))
		}
		if envelope.Data == nil {
			return permanent(errors.NewDecodeError(op, repo, dirPath, fmt.Errorf("missing \"data\" member")))
		}
		entries = *envelope.Data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetContent implements nexusapi.NexusAPI. Only establishing the response is
// retried; the returned body is streamed once.
func (c *Client) GetContent(ctx context.Context, repo, path string) (io.ReadCloser, error) {
	const op = "download"
	endpoint := c.endpoint(readOnlyPrefix(repo), path)

	var body io.ReadCloser
	err := c.retry(ctx, op, func() error {
		resp, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
		if err != nil {
			return errors.NewRemoteError(op, repo, path, err)
		}
		if err := checkStatus(resp, op, repo, path); err != nil {
			drainAndClose(resp.Body)
			return classify(err)
		}
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// PutContent implements nexusapi.NexusAPI. Uploads are not retried since the
// body can only be consumed once.
func (c *Client) PutContent(
	ctx context.Context,
	repo, path string,
	body io.Reader,
	size int64,
	contentType string,
) error {
	const op = "upload"
	endpoint := c.endpoint(readWritePrefix(repo), path)

	resp, err := c.do(ctx, http.MethodPut, endpoint, body, func(req *http.Request) {
		req.ContentLength = size
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
	})
	if err != nil {
		return errors.NewRemoteError(op, repo, path, err)
	}
	defer drainAndClose(resp.Body)
	return checkStatus(resp, op, repo, path)
}

// DeleteContent implements nexusapi.NexusAPI.
func (c *Client) DeleteContent(ctx context.Context, repo, path string) error {
	const op = "delete"
	endpoint := c.endpoint(readWritePrefix(repo), path)

	resp, err := c.do(ctx, http.MethodDelete, endpoint, nil, nil)
	if err != nil {
		return errors.NewRemoteError(op, repo, path, err)
	}
	defer drainAndClose(resp.Body)
	return checkStatus(resp, op, repo, path)
}

// endpoint joins the base URL, a repository prefix and a repository path.
func (c *Client) endpoint(prefix, path string) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + prefix + path
	u.RawPath = ""
	return u.String()
}

func (c *Client) do(
	ctx context.Context,
	method, endpoint string,
	body io.Reader,
	prepare func(*http.Request),
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}
	if prepare != nil {
		prepare(req)
	}

	c.logger.Debug("requesting", "method", method, "url", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("response received",
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"content_length", resp.ContentLength,
	)
	return resp, nil
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64*1024))
	_ = body.Close()
}
