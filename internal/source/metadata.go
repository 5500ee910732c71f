package source

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Metadata describes the acquired audio for filename generation and
// reporting. Local files carry only a title derived from the file stem.
type Metadata struct {
	Title           string
	Uploader        string
	DurationSeconds float64
	URL             string
}

// unsafeReplacer strips characters that are not portable in filenames.
var unsafeReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	"\"", "_",
	"/", "_",
	"\\", "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

const (
	maxTitleWithUploader = 50
	maxTitleAlone        = 60
)

// SafeFilename returns a filesystem-safe base name for output artifacts,
// combining uploader and title when both are known.
func (m Metadata) SafeFilename() string {
	title := sanitizeComponent(m.Title)
	if title == "" {
		return "audio_file"
	}
	if uploader := sanitizeComponent(m.Uploader); uploader != "" {
		return uploader + "_" + truncateRunes(title, maxTitleWithUploader)
	}
	return truncateRunes(title, maxTitleAlone)
}

// truncateRunes shortens value to at most max runes, never splitting a
// multibyte character.
func truncateRunes(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

func sanitizeComponent(value string) string {
	value = strings.TrimSpace(unsafeReplacer.Replace(value))
	return strings.ReplaceAll(value, " ", "_")
}

// DisplayTitle returns a human-readable title for logs and history entries.
// Local file stems are cleaned of separator noise and title-cased.
func (m Metadata) DisplayTitle() string {
	if m.URL != "" {
		if title := strings.TrimSpace(m.Title); title != "" {
			return title
		}
		return "Unknown Title"
	}
	return titleFromStem(m.Title)
}

func titleFromStem(stem string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range stem {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Audio File"
	}
	return cases.Title(language.Und).String(title)
}

// metadataFromPath builds Metadata for a local file.
func metadataFromPath(path string) Metadata {
	base := filepath.Base(path)
	return Metadata{Title: strings.TrimSuffix(base, filepath.Ext(base))}
}
