// ABOUTME: Error handling utilities for API handlers
// ABOUTME: Converts domain errors to HTTP responses without leaking filesystem details

package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"diagnostic-report-api/core/errors"
)

// toHumaError converts domain errors to appropriate Huma HTTP errors
func toHumaError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable("Request cancelled")
	case errors.IsInvalidReference(err):
		return huma.Error400BadRequest(err.Error())
	case errors.IsNotFound(err):
		return huma.Error404NotFound(err.Error())
	case errors.IsChannelDecode(err):
		return huma.Error400BadRequest(err.Error())
	case errors.IsUnexpectedIO(err):
		return huma.Error500InternalServerError("Failed to read asset")
	}

	return huma.Error500InternalServerError("Internal server error")
}

// writeError renders err as a problem document on a plain chi route
func writeError(w http.ResponseWriter, err error) {
	herr := toHumaError(err)
	status := http.StatusInternalServerError
	var se huma.StatusError
	if stderrors.As(herr, &se) {
		status = se.GetStatus()
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(herr)
}
