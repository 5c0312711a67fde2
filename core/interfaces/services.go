// ABOUTME: Service interfaces for the core business logic
// ABOUTME: Defines contracts for services used throughout the application

package interfaces

import (
	"context"

	"diagnostic-report-api/core/domain"
)

// MessageDecoder recovers the voice/text split from a raw chat message
type MessageDecoder interface {
	Decode(raw string) domain.StructuredMessage
}

// AssetResolver locates diagnostic images on disk
type AssetResolver interface {
	// ResolveName resolves a bare filename against the name roots
	ResolveName(ctx context.Context, name string, dc domain.DeploymentContext) (*domain.ResolvedAsset, error)

	// ResolvePath resolves a path hint or bare name against the path roots
	ResolvePath(ctx context.Context, hint string, dc domain.DeploymentContext) (*domain.ResolvedAsset, error)
}

// DiagnosticReader exposes the latest diagnostic state to a display layer
type DiagnosticReader interface {
	State() domain.DiagnosticState
}
