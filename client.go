package nexus

import (
	"log/slog"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/internal/localfs"
	"github.com/input-output-hk/nexus-client/internal/nexusapi"
	"github.com/input-output-hk/nexus-client/internal/operations/download"
	"github.com/input-output-hk/nexus-client/internal/operations/list"
	"github.com/input-output-hk/nexus-client/internal/operations/upload"
	"github.com/input-output-hk/nexus-client/internal/restapi"
	"github.com/input-output-hk/nexus-client/internal/sync/pull"
	"github.com/input-output-hk/nexus-client/internal/sync/push"
	"github.com/input-output-hk/nexus-client/internal/sync/scanner"
	"github.com/input-output-hk/nexus-client/internal/traverse"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

// Defaults applied by New and NewWithAPI.
const (
	DefaultMaxRetries      = 3
	DefaultConcurrency     = traverse.DefaultConcurrency
	DefaultChannelCapacity = traverse.DefaultChannelCapacity
)

// Client accesses one Nexus server. It is safe for concurrent use.
type Client struct {
	api    nexusapi.NexusAPI
	config nexustypes.ClientConfig
	logger *slog.Logger

	fs          *localfs.FS
	fetcher     *list.Fetcher
	coordinator *traverse.Coordinator
	downloader  *download.Downloader
	uploader    *upload.Uploader
	puller      *pull.Puller
	pusher      *push.Pusher
}

// New creates a client for the server configured with WithBaseURL.
func New(opts ...nexustypes.Option) (*Client, error) {
	cfg := applyOptions(opts)

	api, err := restapi.New(restapi.Config{
		BaseURL:    cfg.BaseURL,
		User:       cfg.User,
		Password:   cfg.Password,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		HTTPClient: cfg.CustomHTTPClient,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	return newClient(api, cfg), nil
}

// NewWithAPI creates a client on top of a custom API implementation.
// This is primarily used for testing.
func NewWithAPI(api nexusapi.NexusAPI, opts ...nexustypes.Option) (*Client, error) {
	if api == nil {
		return nil, errors.NewValidationError("client initialization", "api cannot be nil")
	}
	return newClient(api, applyOptions(opts)), nil
}

func applyOptions(opts []nexustypes.Option) nexustypes.ClientConfig {
	cfg := nexustypes.ClientConfig{
		MaxRetries:      DefaultMaxRetries,
		Concurrency:     DefaultConcurrency,
		ChannelCapacity: DefaultChannelCapacity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}

func newClient(api nexusapi.NexusAPI, cfg nexustypes.ClientConfig) *Client {
	fs := localfs.NewOS()
	if cfg.Filesystem != nil {
		fs = localfs.New(cfg.Filesystem)
	}

	fetcher := list.New(api)
	coordinator := traverse.New(fetcher, traverse.Config{
		Concurrency:     cfg.Concurrency,
		ChannelCapacity: cfg.ChannelCapacity,
		Logger:          cfg.Logger,
	})
	downloader := download.New(api, fs)
	uploader := upload.New(api, fs)

	return &Client{
		api:         api,
		config:      cfg,
		logger:      cfg.Logger,
		fs:          fs,
		fetcher:     fetcher,
		coordinator: coordinator,
		downloader:  downloader,
		uploader:    uploader,
		puller:      pull.New(coordinator, downloader, fs, cfg.Logger),
		pusher:      push.New(scanner.NewScanner(fs), uploader, cfg.Logger),
	}
}

