// Package nexusuri parses the command-line notations for remote repository
// locations: remote URIs (`::/<repo>/<path>`) and path specs (`<local>::<remote>`).
package nexusuri

import (
	"fmt"
	"strings"

	"github.com/input-output-hk/nexus-client/errors"
)

const remoteURIPrefix = "::/"

// RemoteURI identifies a path inside a repository. Dir is derived from the
// trailing slash of the textual form; Path itself never keeps that slash
// except for the repository root.
type RemoteURI struct {
	Repo string
	Path string
	Dir  bool
}

// Parse parses a remote URI of the form `::/<repo>/<path>`.
func Parse(s string) (RemoteURI, error) {
	if !strings.HasPrefix(s, remoteURIPrefix) {
		return RemoteURI{}, errors.NewValidationError("parse uri",
			fmt.Sprintf("remote URI must start with %q: %q", remoteURIPrefix, s))
	}
	rest := s[len(remoteURIPrefix):]
	idx := strings.Index(rest, "/")
	if idx < 0 {
		return RemoteURI{}, errors.NewValidationError("parse uri",
			fmt.Sprintf("missing separator '/' after repository id: %q", s))
	}
	repo := strings.TrimSpace(rest[:idx])
	if repo == "" {
		return RemoteURI{}, errors.NewValidationError("parse uri", "repository id must be specified")
	}
	p := rest[idx:]
	if strings.Contains(p, "//") {
		return RemoteURI{}, errors.NewValidationError("parse uri",
			fmt.Sprintf("double slash is prohibited in remote path: %q", p))
	}

	dir := strings.HasSuffix(p, "/")
	if dir && p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	return RemoteURI{Repo: repo, Path: p, Dir: dir}, nil
}

// DirPath returns the path in its directory-denoting wire form.
func (u RemoteURI) DirPath() string {
	if u.Path == "/" {
		return "/"
	}
	return u.Path + "/"
}

// String renders the URI back into its textual form.
func (u RemoteURI) String() string {
	if u.Dir {
		return remoteURIPrefix + u.Repo + u.DirPath()
	}
	return remoteURIPrefix + u.Repo + u.Path
}
