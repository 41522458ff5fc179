package walker

import (
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are directory names never descended into.
var DefaultExcludes = []string{
	".git",
	".vibestudio",
	"node_modules",
	"bower_components",
	".next",
	".cache",
	".idea",
	".vscode",
}

// SkipDir reports whether a directory with this name is never walked.
func SkipDir(name string) bool {
	return shouldExcludeDir(name)
}

func shouldExcludeDir(name string) bool {
	for _, excl := range DefaultExcludes {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

// matchesAny reports whether rel or its base name matches any pattern.
func matchesAny(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.PathMatch(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.PathMatch(pattern, path.Base(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

type gitignoreRule struct {
	pattern string
	dirOnly bool
}

// gitignore is the subset of .gitignore the walker honours: blank lines and
// comments are skipped, a trailing slash restricts a rule to directories,
// and a rule without a slash matches at any depth.
type gitignore []gitignoreRule

func loadGitignore(p string) gitignore {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil
	}

	var rules gitignore
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		rule := gitignoreRule{dirOnly: strings.HasSuffix(line, "/")}
		line = strings.Trim(line, "/")
		if !strings.Contains(line, "/") {
			line = "**/" + line
		}
		rule.pattern = line
		rules = append(rules, rule)
	}
	return rules
}

func (g gitignore) matchDir(rel string) bool {
	return g.match(rel, true)
}

func (g gitignore) matchFile(rel string) bool {
	return g.match(rel, false)
}

func (g gitignore) match(rel string, isDir bool) bool {
	for _, r := range g {
		if r.dirOnly && !isDir {
			continue
		}
		if ok, err := doublestar.Match(r.pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
