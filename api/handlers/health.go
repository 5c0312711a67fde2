// ABOUTME: Health handler exposing a liveness probe
// ABOUTME: Always reports ok while the process serves requests

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// HealthHandler reports liveness
type HealthHandler struct{}

// HealthStatus is the liveness body
type HealthStatus struct {
	Status string `json:"status" example:"ok"`
}

// HealthOutput defines the output for the Health operation
type HealthOutput struct {
	Body HealthStatus
}

// RegisterRoutes registers the health route
func (h HealthHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "healthz",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Liveness probe",
		Tags:        []string{"Health"},
	}, h.Health)
}

// Health always reports ok while the process serves requests
func (h HealthHandler) Health(ctx context.Context, input *struct{}) (*HealthOutput, error) {
	return &HealthOutput{Body: HealthStatus{Status: "ok"}}, nil
}
