// Package errors provides error types and handling for Nexus repository operations.
package errors

import "errors"

// ErrorCode represents a specific error condition reported by the client.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// CodeNotFound indicates a requested remote path does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeUnauthorized indicates the request lacks valid authentication credentials.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeForbidden indicates the authenticated user lacks permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeRemote indicates the repository server rejected or failed the request.
	CodeRemote ErrorCode = "REMOTE_ERROR"

	// CodeDecode indicates a response body could not be decoded.
	CodeDecode ErrorCode = "DECODE_ERROR"

	// CodeLocalIO indicates a local filesystem operation failed.
	CodeLocalIO ErrorCode = "LOCAL_IO_ERROR"

	// CodePartial indicates a bulk transfer completed with failures.
	CodePartial ErrorCode = "PARTIAL_TRANSFER"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// CodeOf classifies err into an ErrorCode. More specific conditions win
// over the broad remote/local categories.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPartialTransfer):
		return CodePartial
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	case errors.Is(err, ErrInvalidConfig):
		return CodeInvalidConfig
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrDecode):
		return CodeDecode
	case errors.Is(err, ErrRemote):
		return CodeRemote
	case errors.Is(err, ErrLocalIO):
		return CodeLocalIO
	default:
		return CodeUnknown
	}
}
