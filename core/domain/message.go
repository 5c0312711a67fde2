// ABOUTME: Message domain model for the dual-channel assistant protocol
// ABOUTME: A spoken utterance travels next to a rich text report with citations and videos

package domain

// MessageKind tags which wire shape a chat message was decoded from
type MessageKind string

const (
	// KindStructuredEnvelope is a JSON object carrying voice_output and text_output
	KindStructuredEnvelope MessageKind = "structured_envelope"

	// KindLegacyDelimited is the VOICE:<voice>|||TEXT:<text> string form
	KindLegacyDelimited MessageKind = "legacy_delimited"

	// KindPlainText is anything else, passed through verbatim
	KindPlainText MessageKind = "plain_text"
)

// WebSource is a cited web page
type WebSource struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// YouTubeVideo is a video reference attached to a report
type YouTubeVideo struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
	VideoID   string `json:"video_id,omitempty"`
}

// TextPayload is the rich half of a structured message and the body of a
// diagnostic report. Content is lightweight markup, never pre-rendered HTML.
type TextPayload struct {
	// Content holds the report text
	Content string `json:"content"`

	// WebSources lists cited pages in display order
	WebSources []WebSource `json:"web_sources"`

	// YouTubeVideos lists videos in display order; when non-empty it is the
	// only source of video cards
	YouTubeVideos []YouTubeVideo `json:"youtube_videos"`

	// HasExternalSources is set by the backend when web search contributed
	HasExternalSources bool `json:"has_external_sources"`
}

// Normalize replaces nil lists with empty ones so callers can range freely
// and JSON output is stable.
func (p *TextPayload) Normalize() {
	if p.WebSources == nil {
		p.WebSources = []WebSource{}
	}
	if p.YouTubeVideos == nil {
		p.YouTubeVideos = []YouTubeVideo{}
	}
}

// HasStructuredVideos reports whether video cards come from the structured list
func (p TextPayload) HasStructuredVideos() bool {
	return len(p.YouTubeVideos) > 0
}

// StructuredMessage is the decoded form of one chat/transcript message
type StructuredMessage struct {
	// Kind records which shape matched
	Kind MessageKind `json:"kind"`

	// Voice is the utterance spoken by the agent
	Voice string `json:"voice"`

	// Text is the rich report
	Text TextPayload `json:"text"`

	// IsStructured is false only for KindPlainText, in which case
	// Voice == Text.Content == the raw input
	IsStructured bool `json:"is_structured"`
}

// PlainTextMessage builds the passthrough form of raw
func PlainTextMessage(raw string) StructuredMessage {
	text := TextPayload{Content: raw}
	text.Normalize()
	return StructuredMessage{
		Kind:         KindPlainText,
		Voice:        raw,
		Text:         text,
		IsStructured: false,
	}
}
