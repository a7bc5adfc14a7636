package nexus

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/nexus-client/nexustypes"
)

// WithBaseURL sets the server URL, including any context path such as
// "/nexus". Required by New.
func WithBaseURL(baseURL string) nexustypes.Option {
	return func(c *nexustypes.ClientConfig) {
		c.BaseURL = baseURL
	}
}

// WithCredentials enables HTTP basic authentication.
func WithCredentials(user, password string) nexustypes.Option {
	return func(c *nexustypes.ClientConfig) {
		c.User = user
		c.Password = password
	}
}

// WithHTTPClient uses a custom HTTP client. The client's own timeout and
// redirect policy apply; WithTimeout is ignored.
func WithHTTPClient(client *http.Client) nexustypes.Option {
	return func(c *nexustypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithTimeout bounds every HTTP request. Default is no timeout (0).
func WithTimeout(timeout time.Duration) nexustypes.Option {
	return func(c *nexustypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithConcurrency sets how many directory listings run at once during a
// recursive walk, and the default number of parallel downloads of a tree
// download. Default is 8.
func WithConcurrency(concurrency int) nexustypes.Option {
	return func(c *nexustypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithChannelCapacity sets the buffer size of the walk result channel.
// Default is 64.
func WithChannelCapacity(capacity int) nexustypes.Option {
	return func(c *nexustypes.ClientConfig) {
		if capacity > 0 {
			c.ChannelCapacity = capacity
		}
	}
}

// WithMaxRetries sets how often listings and downloads are retried after a
// transient failure. Default is 3; 0 disables retries.
func WithMaxRetries(maxRetries int) nexustypes.Option {
	return func(c *nexustypes.ClientConfig) {
		if maxRetries >= 0 {
			c.MaxRetries = maxRetries
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) nexustypes.Option {
	return func(c *nexustypes.ClientConfig) {
		c.UserAgent = userAgent
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) nexustypes.Option {
	return func(c *nexustypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithFilesystem sets the local filesystem used by transfers.
// Default is the OS filesystem, addressed by absolute paths.
func WithFilesystem(filesystem billy.Filesystem) nexustypes.Option {
	return func(c *nexustypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithRecursive lists the whole tree below the start directory.
func WithRecursive(recursive bool) nexustypes.ListOption {
	return func(c *nexustypes.ListOptionConfig) {
		c.Recursive = recursive
	}
}

// WithInclude restricts a tree transfer to paths matching one of patterns.
// Patterns apply to slash-separated paths relative to the tree root.
func WithInclude(patterns ...string) nexustypes.TreeOption {
	return func(c *nexustypes.TreeOptionConfig) {
		c.IncludePatterns = append(c.IncludePatterns, patterns...)
	}
}

// WithExclude skips paths matching any of patterns. Excludes win over includes.
func WithExclude(patterns ...string) nexustypes.TreeOption {
	return func(c *nexustypes.TreeOptionConfig) {
		c.ExcludePatterns = append(c.ExcludePatterns, patterns...)
	}
}

// WithTransferConcurrency sets how many files of a tree transfer move at once.
// Downloads default to the client concurrency, uploads to 1.
func WithTransferConcurrency(concurrency int) nexustypes.TreeOption {
	return func(c *nexustypes.TreeOptionConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithDryRun logs the planned transfers without performing them.
func WithDryRun(dryRun bool) nexustypes.TreeOption {
	return func(c *nexustypes.TreeOptionConfig) {
		c.DryRun = dryRun
	}
}

// WithProgress reports the progress of a single-file transfer to tracker.
func WithProgress(tracker nexustypes.ProgressTracker) nexustypes.FileOption {
	return func(c *nexustypes.FileOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithContentType sets the Content-Type of an upload instead of detecting it.
func WithContentType(contentType string) nexustypes.FileOption {
	return func(c *nexustypes.FileOptionConfig) {
		c.ContentType = contentType
	}
}
