package audit

import (
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// PathFilter decides which repository paths take part in an audit,
// using include and ignore glob patterns. Paths are matched in slash
// form, relative to the tree root.
type PathFilter struct {
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// NewPathFilter compiles the given glob patterns.
func NewPathFilter(includePatterns, ignorePatterns []string) (*PathFilter, error) {
	pf := &PathFilter{}

	for _, pattern := range includePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		pf.includePatterns = append(pf.includePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		pf.ignorePatterns = append(pf.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return pf, nil
}

// Matches reports whether relPath is included and not ignored.
func (pf *PathFilter) Matches(relPath string) bool {
	// The tool's own state directory never takes part in an audit.
	if strings.HasPrefix(relPath, ".refaudit/") || relPath == ".refaudit" {
		return false
	}

	if pf.shouldIgnore(relPath) {
		return false
	}
	return matchesAnyPattern(relPath, pf.includePatterns)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (pf *PathFilter) shouldIgnore(relPath string) bool {
	if matchesAnyPattern(relPath, pf.ignorePatterns) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "node_modules" should match pattern "node_modules/**"
	pathWithSuffix := relPath + "/**"
	return matchesAnyPattern(pathWithSuffix, pf.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Special handling: if path is in root (no slash), also try matching
	// against patterns with **/ prefix removed. This makes "**/*.py" match
	// both "setup.py" and "src/app.py" as users would expect.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}
