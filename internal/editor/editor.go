// Package editor opens localized data files in the user's editor.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// EnvVar names the variable that selects the editor command.
// $EDITOR is consulted when it is unset.
const EnvVar = "ZOKUZOKU_EDITOR"

var fallbackEditors = []string{"code --wait", "nvim", "vim", "vi", "nano"}

// Find returns the editor command to use.
// It checks $ZOKUZOKU_EDITOR and $EDITOR, then falls back to the first of
// code, nvim, vim, vi and nano found on PATH.
func Find() (string, error) {
	for _, name := range []string{EnvVar, "EDITOR"} {
		if ed := os.Getenv(name); ed != "" {
			return ed, nil
		}
	}
	for _, ed := range fallbackEditors {
		fields := strings.Fields(ed)
		if path, err := exec.LookPath(fields[0]); err == nil {
			return strings.Join(append([]string{path}, fields[1:]...), " "), nil
		}
	}
	return "", fmt.Errorf("no editor found: set $%s or $EDITOR", EnvVar)
}

// Launcher opens files with a fixed editor command.
type Launcher struct {
	Command string
}

// NewLauncher returns a launcher for the editor chosen by Find.
func NewLauncher() (*Launcher, error) {
	cmd, err := Find()
	if err != nil {
		return nil, err
	}
	return &Launcher{Command: cmd}, nil
}

// OpenFile creates path with initial content if it does not exist, then
// opens it in the editor.
func (l *Launcher) OpenFile(ctx context.Context, path string, initial []byte) error {
	if err := EnsureFile(path, initial); err != nil {
		return err
	}
	return Open(ctx, l.Command, path)
}

// EnsureFile creates path and its parents with content if path does not exist.
func EnsureFile(path string, content []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Open opens the given file in the specified editor.
// The editor string is split by whitespace to support values like "code --wait".
// The editor runs in the foreground with stdin/stdout/stderr connected.
func Open(ctx context.Context, editor, filePath string) error {
	args := strings.Fields(editor)
	if len(args) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	args = append(args, filePath)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run editor %s: %w", editor, err)
	}
	return nil
}
