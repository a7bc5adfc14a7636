package nexusuri

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/input-output-hk/nexus-client/errors"
)

const pathSpecSeparator = "::"

// PathSpec pairs a local and a remote path, written as `<local>::<remote>`.
// Either side may be omitted; the remote side defaults to "/".
type PathSpec struct {
	local  string
	remote string
}

// ParsePathSpec parses a path spec. The local part must be absolute, the remote
// part must start with a slash, and a double slash anywhere is rejected since
// it usually comes from a broken string interpolation.
func ParsePathSpec(s string) (PathSpec, error) {
	if strings.TrimSpace(s) == "" {
		return PathSpec{}, errors.NewValidationError("parse pathspec", "empty path spec is not allowed")
	}
	if strings.Contains(s, "//") {
		return PathSpec{}, errors.NewValidationError("parse pathspec",
			fmt.Sprintf("double slash is prohibited in path spec: %q", s))
	}

	local, remote := strings.TrimSpace(s), ""
	if idx := strings.Index(s, pathSpecSeparator); idx >= 0 {
		local = strings.TrimSpace(s[:idx])
		remote = s[idx+len(pathSpecSeparator):]
	}

	if local != "" && !filepath.IsAbs(local) {
		return PathSpec{}, errors.NewValidationError("parse pathspec",
			fmt.Sprintf("local part must be absolute: %q", local))
	}
	if remote != "" && !strings.HasPrefix(remote, "/") {
		return PathSpec{}, errors.NewValidationError("parse pathspec",
			fmt.Sprintf("remote part must be absolute (start with slash): %q", remote))
	}
	return PathSpec{local: local, remote: remote}, nil
}

// Local returns the local part, or an error when it is missing.
func (p PathSpec) Local() (string, error) {
	if p.local == "" {
		return "", errors.NewValidationError("pathspec", "local part is required")
	}
	return p.local, nil
}

// HasLocal reports whether the local part was given.
func (p PathSpec) HasLocal() bool {
	return p.local != ""
}

// Remote returns the remote part, or an error when it is missing.
func (p PathSpec) Remote() (string, error) {
	if p.remote == "" {
		return "", errors.NewValidationError("pathspec", "remote part is required")
	}
	return p.remote, nil
}

// RemoteOr returns the remote part or def when it is missing.
func (p PathSpec) RemoteOr(def string) string {
	if p.remote == "" {
		return def
	}
	return p.remote
}

// RemoteOrDefault returns the remote part, defaulting to the repository root.
func (p PathSpec) RemoteOrDefault() string {
	return p.RemoteOr("/")
}
