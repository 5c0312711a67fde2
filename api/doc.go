// Package api provides the HTTP API layer for the Diagnostic Report API.
// It uses the Huma framework on a chi router for OpenAPI documentation and
// request validation.
//
// # Architecture
//
// - server.go: Huma API configuration, middleware and route registration
// - handlers/: HTTP request handlers
// - middleware/: Request logging and per-client rate limiting
//
// The OpenAPI document is served at /openapi.json and the docs UI at /docs.
//
// # Usage Example
//
//	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{Logger: logger})
//	api.RegisterRoutes(humaAPI, router, api.Handlers{
//	    Assets:   handlers.NewAssetHandler(resolver, dc, logger),
//	    Messages: handlers.NewMessageHandler(message.NewDecoder(), renderer),
//	})
//	http.ListenAndServe(":8000", router)
//
// # Error Handling
//
// Errors use the RFC 7807 problem format:
//
//	{
//	    "status": 404,
//	    "title": "Not Found",
//	    "detail": "asset not found: engine.png"
//	}
//
// Domain errors are mapped to HTTP status codes in handlers/errors.go.
package api
