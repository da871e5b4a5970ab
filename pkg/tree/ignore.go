package tree

import (
	"path/filepath"
	"strings"
)

// DefaultIgnores covers VCS metadata and common build or editor artifacts.
// Callers extend this set; they rarely replace it.
var DefaultIgnores = []string{
	".git/",
	".svn/",
	".hg/",
	"node_modules/",
	"__pycache__/",
	"target/",
	"dist/",
	"*.tmp",
	"*.swp",
	".DS_Store",
	"Thumbs.db",
}

// Matcher decides whether a relative path is excluded from a tree scan.
// Patterns support:
//   - Simple glob patterns: *.tmp, *.log
//   - Directory patterns: .git/, node_modules/
//   - Path patterns: build/*, **/test/*
type Matcher struct {
	patterns []string
}

// NewMatcher creates a matcher over the given ordered patterns
func NewMatcher(patterns ...string) *Matcher {
	return &Matcher{patterns: patterns}
}

// NewDefaultMatcher creates a matcher over DefaultIgnores plus extras
func NewDefaultMatcher(extra ...string) *Matcher {
	patterns := make([]string, 0, len(DefaultIgnores)+len(extra))
	patterns = append(patterns, DefaultIgnores...)
	patterns = append(patterns, extra...)
	return &Matcher{patterns: patterns}
}

// Match reports whether the relative path matches any ignore pattern
func (m *Matcher) Match(relativePath string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	// Normalize path separators for cross-platform support
	normalizedPath := filepath.ToSlash(relativePath)
	baseName := filepath.Base(relativePath)

	for _, pattern := range m.patterns {
		if pattern == "" {
			continue
		}

		normalizedPattern := filepath.ToSlash(pattern)

		// Directory pattern (ends with /): matches the directory itself and
		// everything below it, at any depth.
		if strings.HasSuffix(normalizedPattern, "/") {
			dirPattern := strings.TrimSuffix(normalizedPattern, "/")
			if strings.HasPrefix(normalizedPath, dirPattern+"/") ||
				normalizedPath == dirPattern ||
				strings.Contains(normalizedPath, "/"+dirPattern+"/") {
				return true
			}
			continue
		}

		// ** patterns match at any path depth
		if strings.Contains(normalizedPattern, "**") {
			parts := strings.Split(normalizedPattern, "**/")
			if len(parts) == 2 && parts[0] == "" {
				suffix := parts[1]
				if matchGlob(baseName, suffix) {
					return true
				}
				if strings.HasSuffix(normalizedPath, "/"+suffix) || normalizedPath == suffix {
					return true
				}
				if matchGlobComponents(normalizedPath, suffix) {
					return true
				}
			}
			continue
		}

		if strings.Contains(normalizedPattern, "/") {
			// Pattern applies to the full path
			if matched, _ := filepath.Match(normalizedPattern, normalizedPath); matched {
				return true
			}
			if strings.HasSuffix(normalizedPath, normalizedPattern) {
				return true
			}
		} else {
			// Pattern applies to the basename only
			if matched, _ := filepath.Match(normalizedPattern, baseName); matched {
				return true
			}
		}
	}

	return false
}

// matchGlob performs glob matching on a single path component
func matchGlob(name, pattern string) bool {
	matched, _ := filepath.Match(pattern, name)
	return matched
}

// matchGlobComponents checks if any component of the path matches the pattern
func matchGlobComponents(path, pattern string) bool {
	for _, part := range strings.Split(path, "/") {
		if matchGlob(part, pattern) {
			return true
		}
	}
	return false
}
