package prompts

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed defaults/*.txt
var defaults embed.FS

// Known prompt names.
const (
	Transcribe = "transcribe"
	Format     = "format"
	Summarize  = "summarize"
)

// Store resolves prompt text by name. An empty override directory serves the
// embedded defaults only.
type Store struct {
	overrideDir string
}

// NewStore constructs a Store with an optional override directory.
func NewStore(overrideDir string) *Store {
	return &Store{overrideDir: strings.TrimSpace(overrideDir)}
}

// Load returns the prompt text for the given name, preferring an override
// file <dir>/<name>.txt when one exists.
func (s *Store) Load(name string) (string, error) {
	if s.overrideDir != "" {
		path := filepath.Join(s.overrideDir, name+".txt")
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data)), nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("read prompt override %s: %w", path, err)
		}
	}
	data, err := defaults.ReadFile("defaults/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return strings.TrimSpace(string(data)), nil
}
