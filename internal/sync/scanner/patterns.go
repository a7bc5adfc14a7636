package scanner

import (
	stderrors "errors"
	"fmt"
	"path"
	"strings"
)

// PatternMatcher filters relative paths against include and exclude globs.
//
// Supported forms:
//   - "dir/" matches everything below dir
//   - "prefix**suffix" matches any path with that prefix and suffix
//   - any other pattern is a path.Match glob; a pattern without a slash is
//     also tried against the base name, so "*.jar" matches "a/b/x.jar"
type PatternMatcher struct {
	include []string
	exclude []string
}

// NewPatternMatcher creates a matcher. Both lists may be empty.
func NewPatternMatcher(include, exclude []string) *PatternMatcher {
	return &PatternMatcher{include: include, exclude: exclude}
}

// Match reports whether relPath passes the filters. Excludes win over
// includes; with no include patterns every path not excluded passes.
func (pm *PatternMatcher) Match(relPath string) bool {
	relPath = strings.TrimPrefix(relPath, "/")

	for _, pattern := range pm.exclude {
		if matchesPattern(relPath, pattern) {
			return false
		}
	}

	if len(pm.include) == 0 {
		return true
	}
	for _, pattern := range pm.include {
		if matchesPattern(relPath, pattern) {
			return true
		}
	}
	return false
}

// Empty reports whether the matcher lets every path through.
func (pm *PatternMatcher) Empty() bool {
	return len(pm.include) == 0 && len(pm.exclude) == 0
}

func matchesPattern(p, pattern string) bool {
	if dir, ok := strings.CutSuffix(pattern, "/"); ok {
		dir = strings.TrimPrefix(dir, "/")
		return p == dir || strings.HasPrefix(p, dir+"/")
	}

	if strings.Contains(pattern, "**") {
		return matchesRecursive(p, pattern)
	}

	if ok, err := path.Match(pattern, p); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		ok, err := path.Match(pattern, path.Base(p))
		return err == nil && ok
	}
	return false
}

func matchesRecursive(p, pattern string) bool {
	prefix, suffix, _ := strings.Cut(pattern, "**")
	if strings.Contains(suffix, "**") {
		return false
	}
	if !strings.HasPrefix(p, prefix) {
		return false
	}
	rest := p[len(prefix):]
	if suffix == "" {
		return true
	}
	if !strings.ContainsAny(suffix, "*?[") {
		return strings.HasSuffix(rest, suffix)
	}
	// "**/*.jar": try the glob suffix against every tail of the remainder.
	suffix = strings.TrimPrefix(suffix, "/")
	for {
		if ok, err := path.Match(suffix, rest); err == nil && ok {
			return true
		}
		i := strings.IndexByte(rest, '/')
		if i < 0 {
			return false
		}
		rest = rest[i+1:]
	}
}

// ValidatePatterns checks every pattern for glob syntax errors.
func ValidatePatterns(patterns []string) error {
	var errs []error
	for i, pattern := range patterns {
		if strings.Count(pattern, "**") > 1 {
			errs = append(errs, &PatternError{
				Pattern: pattern,
				Index:   i,
				Err:     stderrors.New("only one ** is supported"),
			})
			continue
		}
		glob := strings.ReplaceAll(strings.TrimSuffix(pattern, "/"), "**", "*")
		if _, err := path.Match(glob, "probe"); err != nil {
			errs = append(errs, &PatternError{Pattern: pattern, Index: i, Err: err})
		}
	}
	return stderrors.Join(errs...)
}

// PatternError describes one malformed pattern.
type PatternError struct {
	Pattern string
	Index   int
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern at index %d %q: %v", e.Index, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
