// ABOUTME: Message handler exposing the chat decoder and the content renderer
// ABOUTME: Decoding never fails; unrecognised input degrades to plain text

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"diagnostic-report-api/core/domain"
	"diagnostic-report-api/core/interfaces"
	"diagnostic-report-api/core/render"
)

// MessageHandler handles decode and render requests
type MessageHandler struct {
	decoder  interfaces.MessageDecoder
	renderer *render.Renderer
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(decoder interfaces.MessageDecoder, renderer *render.Renderer) *MessageHandler {
	return &MessageHandler{
		decoder:  decoder,
		renderer: renderer,
	}
}

// RegisterRoutes registers all message-related routes
func (h *MessageHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "decodeMessage",
		Method:      http.MethodPost,
		Path:        "/messages/decode",
		Summary:     "Decode a chat message",
		Description: "Splits a raw backend message into its spoken and rich text parts and renders the text",
		Tags:        []string{"Messages"},
	}, h.Decode)

	huma.Register(api, huma.Operation{
		OperationID: "renderMessage",
		Method:      http.MethodPost,
		Path:        "/messages/render",
		Summary:     "Render a text payload",
		Description: "Renders report content, web sources and video cards to HTML",
		Tags:        []string{"Messages"},
	}, h.Render)
}

// DecodeMessageRequest is the body of a decode request
type DecodeMessageRequest struct {
	Raw string `json:"raw" doc:"Raw message as received on the chat channel"`
}

// DecodeMessageInput defines the input for the Decode operation
type DecodeMessageInput struct {
	Body DecodeMessageRequest
}

// DecodedMessage is a decoded message plus its rendered text
type DecodedMessage struct {
	domain.StructuredMessage
	Rendered render.RichContent `json:"rendered"`
}

// DecodeMessageOutput defines the output for the Decode operation
type DecodeMessageOutput struct {
	Body DecodedMessage
}

// Decode decodes a raw message
func (h *MessageHandler) Decode(ctx context.Context, input *DecodeMessageInput) (*DecodeMessageOutput, error) {
	msg := h.decoder.Decode(input.Body.Raw)
	return &DecodeMessageOutput{
		Body: DecodedMessage{
			StructuredMessage: msg,
			Rendered:          h.renderer.RenderMessage(msg),
		},
	}, nil
}

// RenderMessageRequest is a text payload whose lists may be omitted
type RenderMessageRequest struct {
	Content            string                `json:"content" doc:"Report text in lightweight markup"`
	WebSources         []domain.WebSource    `json:"web_sources,omitempty"`
	YouTubeVideos      []domain.YouTubeVideo `json:"youtube_videos,omitempty"`
	HasExternalSources bool                  `json:"has_external_sources,omitempty"`
}

// RenderMessageInput defines the input for the Render operation
type RenderMessageInput struct {
	Body RenderMessageRequest
}

// RenderMessageOutput defines the output for the Render operation
type RenderMessageOutput struct {
	Body render.RichContent
}

// Render renders a text payload
func (h *MessageHandler) Render(ctx context.Context, input *RenderMessageInput) (*RenderMessageOutput, error) {
	payload := domain.TextPayload{
		Content:            input.Body.Content,
		WebSources:         input.Body.WebSources,
		YouTubeVideos:      input.Body.YouTubeVideos,
		HasExternalSources: input.Body.HasExternalSources,
	}
	payload.Normalize()
	return &RenderMessageOutput{Body: h.renderer.Render(payload)}, nil
}
