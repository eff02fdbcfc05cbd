// Package testpath maps source files to their conventional test files.
package testpath

import (
	"os"
	"path/filepath"
	"strings"
)

// sourceExtensions are the recognized source file extensions, in no
// particular order.
var sourceExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".vue"}

// testSuffixes is the ordered list of test file conventions. Only the first
// matching suffix is consulted per source file; projects that colocate both
// .test.* and .spec.* variants will miss the second.
var testSuffixes = []string{".test.ts", ".test.tsx", ".spec.ts", ".spec.tsx", ".test.js", ".test.jsx"}

// ignoredDirs are dependency/build/VCS directories whose contents are never
// treated as code files.
var ignoredDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	"out":          true,
	".next":        true,
	".git":         true,
	"vendor":       true,
}

// Resolver maps source paths to test paths and checks existence on disk.
// Stat is injectable for tests; it defaults to os.Stat.
type Resolver struct {
	Stat func(string) (os.FileInfo, error)
}

// NewResolver creates a Resolver backed by the real filesystem
func NewResolver() *Resolver {
	return &Resolver{Stat: os.Stat}
}

// ResolveTestPath derives the conventional test path for a source path.
// It is pure (no I/O): the source extension is stripped and the first
// suffix from the ordered convention list whose extension matches is
// appended. Returns "" for paths that are not source files.
func (r *Resolver) ResolveTestPath(sourcePath string) string {
	ext := sourceExt(sourcePath)
	if ext == "" {
		return ""
	}

	base := strings.TrimSuffix(sourcePath, ext)

	// .vue components conventionally get TypeScript tests
	matchExt := ext
	if matchExt == ".vue" {
		matchExt = ".ts"
	}

	for _, suffix := range testSuffixes {
		if strings.HasSuffix(suffix, matchExt) {
			return base + suffix
		}
	}
	return base + testSuffixes[0]
}

// Exists reports whether path exists on disk
func (r *Resolver) Exists(path string) bool {
	stat := r.Stat
	if stat == nil {
		stat = os.Stat
	}
	info, err := stat(path)
	return err == nil && !info.IsDir()
}

// IsSourceFile reports whether path is a candidate source file: it has a
// recognized extension, is not itself a test or config file, and is not
// under a dependency/build directory.
func IsSourceFile(path string) bool {
	if sourceExt(path) == "" {
		return false
	}
	if IsTestFile(path) || IsConfigFile(path) || InIgnoredDir(path) {
		return false
	}
	return true
}

// IsTestFile reports whether path follows a test file convention
func IsTestFile(path string) bool {
	base := filepath.Base(path)
	if strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") {
		return true
	}
	for _, part := range splitPath(path) {
		if part == "__tests__" || part == "__mocks__" {
			return true
		}
	}
	return false
}

// IsConfigFile reports whether path is a tool/build configuration file
func IsConfigFile(path string) bool {
	base := filepath.Base(path)
	if strings.Contains(base, ".config.") {
		return true
	}
	switch base {
	case "package.json", "tsconfig.json", "babel.config.js", ".eslintrc.js", ".prettierrc.js":
		return true
	}
	return strings.HasPrefix(base, ".eslintrc") || strings.HasPrefix(base, ".prettierrc")
}

// IsIgnoredDirName reports whether a bare directory name is a
// dependency/build/VCS directory
func IsIgnoredDirName(name string) bool {
	return ignoredDirs[name]
}

// InIgnoredDir reports whether path lies under a dependency/build directory
func InIgnoredDir(path string) bool {
	for _, part := range splitPath(path) {
		if ignoredDirs[part] {
			return true
		}
	}
	return false
}

func sourceExt(path string) string {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(path, ext) {
			return ext
		}
	}
	return ""
}

func splitPath(path string) []string {
	return strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' })
}
