// Package core contains the business logic for the Diagnostic Report API.
// It is framework-agnostic and can be used without the HTTP layer.
//
// The core package is organized into several sub-packages:
//
// - domain: Pure domain models (StructuredMessage, TextPayload, DeploymentContext, DiagnosticState)
// - message: Decoder for the three chat message shapes
// - render: Ordered stage pipeline turning report text into safe markup
// - assets: Image reference validation and ordered candidate-root resolution
// - diagnostics: Consumer holding the latest diagnostic report from a data channel
// - errors: Typed errors mapped to HTTP statuses by the api layer
// - interfaces: Contracts for external dependencies (cache, logger, data channel)
//
// # Usage Example
//
//	import (
//	    "diagnostic-report-api/core/message"
//	    "diagnostic-report-api/core/render"
//	)
//
//	msg := message.Decode(raw)
//	out := render.Render(msg.Text, render.DefaultOptions())
//	fmt.Println(out.HTML())
package core
