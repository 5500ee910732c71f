package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Texts holds the three artifacts of one run. Stages that were skipped leave
// their field empty; the file is still written so the artifact set is always
// complete.
type Texts struct {
	Raw       string
	Formatted string
	Summary   string
}

// Files lists the artifact paths produced by Save.
type Files struct {
	Raw       string
	Formatted string
	Summary   string
}

// Save writes <baseName>_raw.txt, <baseName>_formatted.txt, and
// <baseName>_summary.txt beneath dir, creating the directory when needed.
func Save(dir, baseName string, texts Texts) (Files, error) {
	var files Files
	baseName = strings.TrimSpace(baseName)
	if baseName == "" {
		baseName = "audio_file"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return files, fmt.Errorf("create output directory: %w", err)
	}

	files = Files{
		Raw:       filepath.Join(dir, baseName+"_raw.txt"),
		Formatted: filepath.Join(dir, baseName+"_formatted.txt"),
		Summary:   filepath.Join(dir, baseName+"_summary.txt"),
	}
	for path, content := range map[string]string{
		files.Raw:       texts.Raw,
		files.Formatted: texts.Formatted,
		files.Summary:   texts.Summary,
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return Files{}, fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
	}
	return files, nil
}
