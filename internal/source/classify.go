package source

import (
	"net/url"
	"strings"
)

// Kind distinguishes how an input string is acquired.
type Kind int

const (
	// KindLocalFile is a path on the local filesystem.
	KindLocalFile Kind = iota
	// KindRemoteURL is a video-host URL downloaded before processing.
	KindRemoteURL
)

func (k Kind) String() string {
	switch k {
	case KindLocalFile:
		return "file"
	case KindRemoteURL:
		return "youtube"
	default:
		return "unknown"
	}
}

var youtubeHosts = map[string]struct{}{
	"youtube.com":     {},
	"www.youtube.com": {},
	"m.youtube.com":   {},
	"youtu.be":        {},
	"www.youtu.be":    {},
}

// Classify reports whether the input is a YouTube URL or a local file path.
// Anything that does not parse as a URL on a known video host is treated as
// a path; validation happens during acquisition.
func Classify(input string) Kind {
	parsed, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return KindLocalFile
	}
	if _, ok := youtubeHosts[strings.ToLower(parsed.Host)]; ok {
		return KindRemoteURL
	}
	return KindLocalFile
}
