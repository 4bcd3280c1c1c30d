// Package pathutil provides path manipulation utilities.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// expandTilde expands ~ to home directory.
// Returns the path unchanged if it doesn't start with ~/.
func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand home dir: %w", err)
	}

	return filepath.Join(home, path[2:]), nil
}

// ResolvePath resolves a path with environment, tilde and relative path resolution.
// - environment variables are expanded first (see ExpandEnv)
// - ~/... paths are expanded to home directory
// - Absolute paths are returned as-is
// - Relative paths are resolved from baseDir
// - Empty paths are not allowed and return an error
func ResolvePath(path, baseDir string) (string, error) {
	path = ExpandEnv(path)
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if strings.HasPrefix(path, "~/") {
		return expandTilde(path)
	}

	if filepath.IsAbs(path) {
		return path, nil
	}

	return filepath.Join(baseDir, path), nil
}

// ExpandEnv expands environment variables using the host platform's syntax:
// %VAR% on Windows, $VAR and ${VAR} elsewhere.
func ExpandEnv(path string) string {
	return expandEnv(path, runtime.GOOS, os.LookupEnv)
}

func expandEnv(path, goos string, lookup func(string) (string, bool)) string {
	if goos == "windows" {
		return expandPercent(path, lookup)
	}
	// Unset variables expand to nothing, like a shell.
	return os.Expand(path, func(name string) string {
		v, _ := lookup(name)
		return v
	})
}

// expandPercent replaces %NAME% with the value of NAME.
// Unknown names are left untouched.
func expandPercent(path string, lookup func(string) (string, bool)) string {
	var b strings.Builder
	rest := path
	for {
		start := strings.IndexByte(rest, '%')
		if start < 0 {
			break
		}
		end := strings.IndexByte(rest[start+1:], '%')
		if end < 0 {
			break
		}
		end += start + 1

		name := rest[start+1 : end]
		if v, ok := lookup(name); ok && name != "" {
			b.WriteString(rest[:start])
			b.WriteString(v)
			rest = rest[end+1:]
			continue
		}
		// Keep the opening % and retry from the closing one.
		b.WriteString(rest[:end])
		rest = rest[end:]
	}
	b.WriteString(rest)
	return b.String()
}
