// ABOUTME: Diagnostics handler exposing the side-channel report and a publish hook
// ABOUTME: Backends without a socket can push channel packets over HTTP

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"diagnostic-report-api/core/domain"
	"diagnostic-report-api/core/interfaces"
	"diagnostic-report-api/core/render"
)

// DiagnosticsHandler serves diagnostic state and accepts channel packets
type DiagnosticsHandler struct {
	reader    interfaces.DiagnosticReader
	publisher interfaces.Publisher
	renderer  *render.Renderer
}

// NewDiagnosticsHandler creates a diagnostics handler; publisher may be nil
func NewDiagnosticsHandler(reader interfaces.DiagnosticReader, publisher interfaces.Publisher, renderer *render.Renderer) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		reader:    reader,
		publisher: publisher,
		renderer:  renderer,
	}
}

// RegisterRoutes registers all diagnostics-related routes
func (h *DiagnosticsHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getDiagnosticReport",
		Method:      http.MethodGet,
		Path:        "/diagnostics/report",
		Summary:     "Latest diagnostic report",
		Description: "Returns the last successfully decoded diagnostic report and the last decode error",
		Tags:        []string{"Diagnostics"},
	}, h.GetReport)

	if h.publisher != nil {
		huma.Register(api, huma.Operation{
			OperationID:   "publishChannelPacket",
			Method:        http.MethodPost,
			Path:          "/channels/{topic}",
			Summary:       "Publish a data-channel packet",
			Description:   "Delivers the raw request body to subscribers of the topic",
			Tags:          []string{"Diagnostics"},
			DefaultStatus: http.StatusAccepted,
		}, h.Publish)
	}
}

// DiagnosticReport is the diagnostic state plus the rendered report
type DiagnosticReport struct {
	domain.DiagnosticState
	Rendered *render.RichContent `json:"rendered,omitempty"`
}

// GetDiagnosticReportOutput defines the output for the GetReport operation
type GetDiagnosticReportOutput struct {
	Body DiagnosticReport
}

// GetReport returns the current diagnostic state
func (h *DiagnosticsHandler) GetReport(ctx context.Context, input *struct{}) (*GetDiagnosticReportOutput, error) {
	state := h.reader.State()
	out := DiagnosticReport{DiagnosticState: state}
	if state.LastReport != nil {
		rendered := h.renderer.Render(*state.LastReport)
		out.Rendered = &rendered
	}
	return &GetDiagnosticReportOutput{Body: out}, nil
}

// PublishInput defines the input for the Publish operation
type PublishInput struct {
	Topic   string `path:"topic" minLength:"1" maxLength:"128" doc:"Channel topic, e.g. diagnostic_report"`
	RawBody []byte
}

// PublishResult acknowledges a published packet
type PublishResult struct {
	Topic string `json:"topic"`
	Bytes int    `json:"bytes"`
}

// PublishOutput defines the output for the Publish operation
type PublishOutput struct {
	Body PublishResult
}

// Publish hands the body to the channel; decoding happens in the subscriber
func (h *DiagnosticsHandler) Publish(ctx context.Context, input *PublishInput) (*PublishOutput, error) {
	if err := h.publisher.Publish(ctx, input.Topic, input.RawBody); err != nil {
		return nil, toHumaError(err)
	}
	return &PublishOutput{Body: PublishResult{Topic: input.Topic, Bytes: len(input.RawBody)}}, nil
}
