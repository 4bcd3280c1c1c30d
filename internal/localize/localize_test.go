package localize

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewStore(t *testing.T) {
	store := NewStore("")

	if store.Dir() != "" {
		t.Errorf("Dir() = %q, want empty", store.Dir())
	}
	if _, err := store.Path("a.json"); !errors.Is(err, ErrNoDataDir) {
		t.Errorf("Path() error = %v, want ErrNoDataDir", err)
	}
}

func TestStore_Path(t *testing.T) {
	store := NewStore("/data/localized")

	tests := []struct {
		name     string
		segments []string
		want     string
		wantErr  bool
	}{
		{"single file", []string{"localize_dict.json"}, "/data/localized/localize_dict.json", false},
		{"nested", []string{"story", "000000123.json"}, "/data/localized/story/000000123.json", false},
		{"escapes directory", []string{"..", "secret.json"}, "", true},
		{"absolute segment", []string{"/etc/passwd"}, "", true},
		{"no segments", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Path(tt.segments...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Path() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != filepath.FromSlash(tt.want) && !tt.wantErr {
				t.Errorf("Path() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStore_SaveAndLoadJSON(t *testing.T) {
	// Arrange
	store := NewStore(t.TempDir())
	story := StoryData{
		Title: "Test Story",
		BlockList: []StoryBlock{{
			Name:       "Block1",
			Text:       "Hello",
			NextBlock:  1,
			CueID:      100,
			Choices:    []StoryChoice{{Text: "Go", NextBlock: 2}},
			ColorTexts: []ColorText{{Text: "Hello"}},
		}},
	}

	// Act
	if err := store.SaveJSON(story, "story", "000000001.json"); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}
	loaded, err := LoadJSON[StoryData](store, "story", "000000001.json")

	// Assert
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if loaded.Title != "Test Story" {
		t.Errorf("Title = %q, want %q", loaded.Title, "Test Story")
	}
	if len(loaded.BlockList) != 1 || loaded.BlockList[0].CueID != 100 {
		t.Errorf("BlockList = %+v", loaded.BlockList)
	}
	if len(loaded.BlockList[0].Choices) != 1 || loaded.BlockList[0].Choices[0].NextBlock != 2 {
		t.Errorf("Choices = %+v", loaded.BlockList[0].Choices)
	}
	if !store.Exists("story", "000000001.json") {
		t.Error("Exists() = false after save")
	}
}

func TestStore_SaveJSON_FieldNames(t *testing.T) {
	store := NewStore(t.TempDir())
	block := StoryBlock{Name: "n", NextBlock: 3, DifferenceFlag: 1}

	if err := store.SaveJSON(block, "block.json"); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	path, _ := store.Path("block.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"next_block": 3`, `"difference_flag": 1`, `"cue_id"`, `"color_texts"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("saved JSON missing %s:\n%s", key, data)
		}
	}
}

func TestLoadJSON_Errors(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadJSON[StoryData](store, "missing.json"); err == nil {
		t.Error("LoadJSON() expected error for missing file")
	}
	if _, err := LoadJSON[StoryData](store, "bad.json"); err == nil {
		t.Error("LoadJSON() expected error for invalid JSON")
	}
	if _, err := LoadJSON[StoryData](NewStore(""), "x.json"); !errors.Is(err, ErrNoDataDir) {
		t.Errorf("LoadJSON() error = %v, want ErrNoDataDir", err)
	}
}

func TestStore_SetDir(t *testing.T) {
	store := NewStore("")
	store.SetDir("/tmp/localized")

	if store.Dir() != "/tmp/localized" {
		t.Errorf("Dir() = %q, want /tmp/localized", store.Dir())
	}
}
