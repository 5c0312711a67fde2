// ABOUTME: Decoder for chat messages emitted by the voice agent backend
// ABOUTME: Tries the JSON envelope, then the legacy VOICE/TEXT form, then plain text

package message

import (
	"bytes"
	"encoding/json"
	"strings"

	"diagnostic-report-api/core/domain"
)

const (
	// LegacyVoicePrefix opens the legacy delimited form
	LegacyVoicePrefix = "VOICE:"

	// LegacyTextMarker separates the voice and text parts of the legacy form
	LegacyTextMarker = "|||TEXT:"
)

// envelope is the JSON wire shape. TextOutput stays raw so the object check
// can run before the payload is decoded.
type envelope struct {
	VoiceOutput *string         `json:"voice_output"`
	TextOutput  json.RawMessage `json:"text_output"`
}

// Decoder decodes raw chat messages. The zero value is ready to use and is
// safe for concurrent use.
type Decoder struct{}

// NewDecoder creates a new message decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode classifies raw and extracts the voice/text split. It never fails:
// unrecognised input degrades to plain text.
func (d *Decoder) Decode(raw string) domain.StructuredMessage {
	if msg, ok := decodeEnvelope(raw); ok {
		return msg
	}
	if msg, ok := decodeLegacy(raw); ok {
		return msg
	}
	return domain.PlainTextMessage(raw)
}

// Decode is a convenience wrapper around a zero Decoder
func Decode(raw string) domain.StructuredMessage {
	return (&Decoder{}).Decode(raw)
}

func decodeEnvelope(raw string) (domain.StructuredMessage, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return domain.StructuredMessage{}, false
	}

	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return domain.StructuredMessage{}, false
	}
	if env.VoiceOutput == nil || *env.VoiceOutput == "" {
		return domain.StructuredMessage{}, false
	}

	body := bytes.TrimSpace(env.TextOutput)
	if len(body) == 0 || body[0] != '{' {
		return domain.StructuredMessage{}, false
	}

	var text domain.TextPayload
	if err := json.Unmarshal(body, &text); err != nil {
		return domain.StructuredMessage{}, false
	}
	text.Normalize()

	return domain.StructuredMessage{
		Kind:         domain.KindStructuredEnvelope,
		Voice:        *env.VoiceOutput,
		Text:         text,
		IsStructured: true,
	}, true
}

// decodeLegacy splits on the last marker so a voice part that happens to
// contain the marker still round-trips when the text part does not.
func decodeLegacy(raw string) (domain.StructuredMessage, bool) {
	if !strings.HasPrefix(raw, LegacyVoicePrefix) {
		return domain.StructuredMessage{}, false
	}
	rest := raw[len(LegacyVoicePrefix):]
	idx := strings.LastIndex(rest, LegacyTextMarker)
	if idx < 0 {
		return domain.StructuredMessage{}, false
	}

	text := domain.TextPayload{Content: rest[idx+len(LegacyTextMarker):]}
	text.Normalize()

	return domain.StructuredMessage{
		Kind:         domain.KindLegacyDelimited,
		Voice:        rest[:idx],
		Text:         text,
		IsStructured: true,
	}, true
}

// EncodeLegacy builds the legacy delimited form
func EncodeLegacy(voice, text string) string {
	return LegacyVoicePrefix + voice + LegacyTextMarker + text
}
