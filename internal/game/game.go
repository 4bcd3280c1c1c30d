// Package game locates Umamusume installs and normalizes game identifiers.
package game

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// StoryIDLength is the width of a normalized story ID.
const StoryIDLength = 9

// NormalizeStoryID left-pads a story ID with zeros to StoryIDLength digits.
// IDs that are already long enough are returned unchanged.
func NormalizeStoryID(id string) string {
	if len(id) >= StoryIDLength {
		return id
	}
	return strings.Repeat("0", StoryIDLength-len(id)) + id
}

// env abstracts the process environment for tests.
type env struct {
	goos   string
	lookup func(string) (string, bool)
	exists func(string) bool
}

func hostEnv() env {
	return env{
		goos:   runtime.GOOS,
		lookup: os.LookupEnv,
		exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// InstallPaths returns the game install directories that exist on this machine.
func InstallPaths() []string {
	return installPaths(hostEnv())
}

func installPaths(e env) []string {
	var candidates []string
	if e.goos == "windows" {
		profile, _ := e.lookup("USERPROFILE")
		candidates = []string{
			filepath.Join(profile, "AppData", "Local", "DMM Games", "umamusume"),
			filepath.Join(profile, "Desktop", "umamusume"),
			`C:\Program Files\DMM Games\umamusume`,
		}
	} else {
		home, _ := e.lookup("HOME")
		candidates = []string{
			filepath.Join(home, ".local", "share", "dmmgames", "umamusume"),
			filepath.Join(home, "umamusume"),
		}
	}

	var found []string
	for _, path := range candidates {
		if e.exists(path) {
			found = append(found, path)
		}
	}
	return found
}

// DefaultDataDir returns the directory where the game keeps its downloaded data.
func DefaultDataDir() (string, error) {
	return defaultDataDir(hostEnv())
}

func defaultDataDir(e env) (string, error) {
	if e.goos == "windows" {
		profile, ok := e.lookup("USERPROFILE")
		if !ok || profile == "" {
			return "", fmt.Errorf("USERPROFILE is not set")
		}
		return filepath.Join(profile, "AppData", "LocalLow", "Cygames", "umamusume"), nil
	}
	home, ok := e.lookup("HOME")
	if !ok || home == "" {
		return "", fmt.Errorf("HOME is not set")
	}
	return filepath.Join(home, ".local", "share", "umamusume"), nil
}
