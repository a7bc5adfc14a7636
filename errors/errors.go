package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error into the broad failure categories of the client.
type Kind int

const (
	// KindUnknown is the zero value; the error carries no classification.
	KindUnknown Kind = iota

	// KindRemote marks failures of the remote repository: transport errors,
	// non-success HTTP status, undecodable response bodies.
	KindRemote

	// KindLocalIO marks failures of the local filesystem: directory creation,
	// file reads and writes.
	KindLocalIO

	// KindInvalidInput marks rejected arguments such as malformed remote paths.
	KindInvalidInput
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindLocalIO:
		return "local-io"
	case KindInvalidInput:
		return "invalid-input"
	default:
		return "unknown"
	}
}

// Error represents a Nexus operation error with context about the operation that failed.
type Error struct {
	// Op is the operation that failed (e.g., "list", "download", "upload")
	Op string

	// Repo is the repository id (if applicable)
	Repo string

	// Path is the remote or local path the operation worked on (if applicable)
	Path string

	// Kind classifies the failure
	Kind Kind

	// StatusCode is the HTTP status returned by the server, 0 when no response was received
	StatusCode int

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Repo != "" && e.Path != "" {
		return fmt.Sprintf("nexus.%s %s:%s: %v", e.Op, e.Repo, e.Path, e.Err)
	}
	if e.Repo != "" {
		return fmt.Sprintf("nexus.%s repository %s: %v", e.Op, e.Repo, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("nexus.%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("nexus.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches one of the package sentinels.
// Kind sentinels match by Kind; status sentinels match by StatusCode.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrRemote:
		return e.Kind == KindRemote
	case ErrLocalIO:
		return e.Kind == KindLocalIO
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrAccessDenied:
		return e.StatusCode == http.StatusForbidden
	}
	return false
}

// WithRepo adds repository context to an existing error.
func (e *Error) WithRepo(repo string) *Error {
	e.Repo = repo
	return e
}

// WithPath adds path context to an existing error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new unclassified Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewRemoteError creates an Error for a failed interaction with the repository server.
func NewRemoteError(op, repo, path string, err error) *Error {
	return &Error{
		Op:   op,
		Repo: repo,
		Path: path,
		Kind: KindRemote,
		Err:  err,
	}
}

// NewStatusError creates a remote Error for a non-success HTTP response.
// The message is expected to carry the status line and response body.
func NewStatusError(op, repo, path string, statusCode int, message string) *Error {
	return &Error{
		Op:         op,
		Repo:       repo,
		Path:       path,
		Kind:       KindRemote,
		StatusCode: statusCode,
		Err:        errors.New(message),
	}
}

// NewDecodeError creates a remote Error for a response body that could not be decoded.
func NewDecodeError(op, repo, path string, err error) *Error {
	return &Error{
		Op:   op,
		Repo: repo,
		Path: path,
		Kind: KindRemote,
		Err:  fmt.Errorf("%w: %w", ErrDecode, err),
	}
}

// NewLocalIOError creates an Error for a failed local filesystem operation.
func NewLocalIOError(op, path string, err error) *Error {
	return &Error{
		Op:   op,
		Path: path,
		Kind: KindLocalIO,
		Err:  err,
	}
}

// NewValidationError creates an Error for rejected input.
func NewValidationError(op, message string) *Error {
	return &Error{
		Op:   op,
		Kind: KindInvalidInput,
		Err:  errors.New(message),
	}
}

// Sentinel errors for common failure categories.
// These can be used with errors.Is() for error checking.
var (
	// ErrRemote matches every failure of the repository server
	ErrRemote = errors.New("nexus: remote error")

	// ErrLocalIO matches every failure of the local filesystem
	ErrLocalIO = errors.New("nexus: local i/o error")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("nexus: invalid input")

	// ErrInvalidConfig indicates that the client configuration is invalid
	ErrInvalidConfig = errors.New("nexus: invalid configuration")

	// ErrNotFound indicates that the requested path does not exist
	ErrNotFound = errors.New("nexus: not found")

	// ErrUnauthorized indicates missing or rejected credentials
	ErrUnauthorized = errors.New("nexus: unauthorized")

	// ErrAccessDenied indicates that access to the path is denied
	ErrAccessDenied = errors.New("nexus: access denied")

	// ErrDecode indicates that a response body did not have the expected shape
	ErrDecode = errors.New("nexus: cannot decode response")

	// ErrPartialTransfer indicates that a bulk transfer finished with failures
	ErrPartialTransfer = errors.New("nexus: partial transfer")
)

// IsRemote checks if an error was caused by the repository server.
func IsRemote(err error) bool {
	return errors.Is(err, ErrRemote)
}

// IsLocalIO checks if an error was caused by the local filesystem.
func IsLocalIO(err error) bool {
	return errors.Is(err, ErrLocalIO)
}

// IsNotFound checks if an error indicates that a remote path was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if an error indicates missing or rejected credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsAccessDenied checks if an error indicates denied access.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInvalidConfig checks if an error is due to invalid configuration.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsPartialTransfer checks if an error reports a bulk transfer with failures.
func IsPartialTransfer(err error) bool {
	return errors.Is(err, ErrPartialTransfer)
}
