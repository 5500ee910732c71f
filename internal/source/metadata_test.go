package source

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSafeFilenameCombinesUploaderAndTitle(t *testing.T) {
	meta := Metadata{Title: "My Talk: Part 1", Uploader: "Some Channel"}
	got := meta.SafeFilename()
	if got != "Some_Channel_My_Talk__Part_1" {
		t.Fatalf("unexpected filename: %q", got)
	}
}

func TestSafeFilenameTruncatesLongTitles(t *testing.T) {
	meta := Metadata{Title: strings.Repeat("a", 100), Uploader: "Channel"}
	got := meta.SafeFilename()
	if len(got) != len("Channel_")+maxTitleWithUploader {
		t.Fatalf("unexpected length %d: %q", len(got), got)
	}

	meta = Metadata{Title: strings.Repeat("b", 100)}
	if got := meta.SafeFilename(); len(got) != maxTitleAlone {
		t.Fatalf("unexpected length %d: %q", len(got), got)
	}
}

func TestSafeFilenameTruncatesMultibyteTitlesOnRuneBoundaries(t *testing.T) {
	meta := Metadata{Title: strings.Repeat("音", 100), Uploader: "チャンネル"}
	got := meta.SafeFilename()
	if !utf8.ValidString(got) {
		t.Fatalf("filename is not valid UTF-8: %q", got)
	}
	if want := "チャンネル_" + strings.Repeat("音", maxTitleWithUploader); got != want {
		t.Fatalf("unexpected filename: %q", got)
	}

	meta = Metadata{Title: strings.Repeat("声", 100)}
	got = meta.SafeFilename()
	if !utf8.ValidString(got) {
		t.Fatalf("filename is not valid UTF-8: %q", got)
	}
	if count := utf8.RuneCountInString(got); count != maxTitleAlone {
		t.Fatalf("unexpected rune count %d: %q", count, got)
	}
}

func TestSafeFilenameFallsBackWhenTitleMissing(t *testing.T) {
	if got := (Metadata{}).SafeFilename(); got != "audio_file" {
		t.Fatalf("expected fallback name, got %q", got)
	}
}

func TestDisplayTitleCleansLocalStems(t *testing.T) {
	meta := metadataFromPath("/audio/team_meeting-2024.notes.mp3")
	if got := meta.DisplayTitle(); got != "Team Meeting 2024 Notes" {
		t.Fatalf("unexpected display title: %q", got)
	}
}

func TestDisplayTitlePrefersRemoteTitleVerbatim(t *testing.T) {
	meta := Metadata{Title: "a talk about go", URL: "https://youtu.be/abc"}
	if got := meta.DisplayTitle(); got != "a talk about go" {
		t.Fatalf("unexpected display title: %q", got)
	}
}
