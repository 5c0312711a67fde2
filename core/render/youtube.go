// ABOUTME: URL patterns for YouTube videos and bare links
// ABOUTME: Extracts video ids and trims trailing punctuation from URLs

package render

import (
	"fmt"
	"regexp"
	"strings"
)

// youtubeURL matches the known YouTube URL shapes; group 1 is the video id.
var youtubeURL = regexp.MustCompile(`(?i)https?://(?:www\.|m\.)?(?:youtube\.com/(?:watch\?(?:[^\s<>"']*&)?v=|embed/|shorts/)|youtu\.be/)([a-z0-9_-]+)[^\s<>"']*`)

// bareURL matches http(s) tokens in running text
var bareURL = regexp.MustCompile(`(?i)https?://[^\s<>"'\x60]+`)

// strongURL matches a bare URL wrapped in bold markers
var strongURL = regexp.MustCompile(`(?i)\*\*(https?://[^\s<>"'\x60*]+)\*\*`)

// trailingPunct is trimmed from URL ends, including bold markers
const trailingPunct = ".,;:!?)]}'*"

// ExtractVideoID returns the id of a YouTube URL
func ExtractVideoID(u string) (string, bool) {
	m := youtubeURL.FindStringSubmatch(u)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsYouTubeURL reports whether u is one of the known YouTube URL shapes
func IsYouTubeURL(u string) bool {
	return youtubeURL.MatchString(u)
}

func thumbnailURL(template, id string) string {
	return fmt.Sprintf(template, id)
}

// trimURL drops sentence punctuation that the URL patterns swallowed
func trimURL(s string) string {
	return strings.TrimRight(s, trailingPunct)
}

// trimWrappedURL also drops trailing underscores when the URL opens an
// _italic_ span; ids and paths may legitimately end in "_" otherwise.
func trimWrappedURL(text string, start int, raw string) string {
	raw = trimURL(raw)
	if start > 0 && text[start-1] == '_' {
		raw = strings.TrimRight(raw, "_"+trailingPunct)
	}
	return raw
}
