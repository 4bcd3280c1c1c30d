package main

import (
	"path/filepath"
	"testing"
)

func TestResolveGamePath(t *testing.T) {
	gameDir := filepath.Join(t.TempDir(), "umamusume")

	tests := []struct {
		name        string
		path        string
		gameDataDir string
		want        string
	}{
		{"relative to game data", "master/master.mdb", gameDir, filepath.Join(gameDir, "master", "master.mdb")},
		{"absolute", "/data/meta", gameDir, "/data/meta"},
		{"no game data dir", "master.mdb", "", "master.mdb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveGamePath(tt.path, tt.gameDataDir)
			if err != nil {
				t.Fatalf("resolveGamePath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveGamePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveGamePath_Empty(t *testing.T) {
	if _, err := resolveGamePath("", "/games"); err == nil {
		t.Error("expected error for empty path")
	}
}
