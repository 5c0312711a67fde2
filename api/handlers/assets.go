// ABOUTME: Asset handler streaming diagnostic images located by the resolver
// ABOUTME: Serves the name-only endpoint through huma and the path-hinted endpoint through chi

package handlers

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"diagnostic-report-api/core/domain"
	coreerrors "diagnostic-report-api/core/errors"
	"diagnostic-report-api/core/interfaces"
)

// Response headers per entry point
var (
	nameAssetHeaders = map[string]string{
		"Cache-Control":               "public, max-age=31536000, immutable",
		"Access-Control-Allow-Origin": "*",
	}
	pathAssetHeaders = map[string]string{
		"Cache-Control":                "public, max-age=31536000",
		"Cross-Origin-Resource-Policy": "cross-origin",
	}
)

// AssetHandler serves files found by an AssetResolver
type AssetHandler struct {
	resolver interfaces.AssetResolver
	dc       domain.DeploymentContext
	logger   interfaces.Logger
}

// NewAssetHandler creates an asset handler bound to a deployment context
func NewAssetHandler(resolver interfaces.AssetResolver, dc domain.DeploymentContext, logger interfaces.Logger) *AssetHandler {
	return &AssetHandler{
		resolver: resolver,
		dc:       dc,
		logger:   logger,
	}
}

// LegacyAssetPrefix is the older asset API prefix still found in stored reports
const LegacyAssetPrefix = "/api/images"

// RegisterRoutes registers the name-only endpoint on the huma API
func (h *AssetHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getAssetByName",
		Method:      http.MethodGet,
		Path:        "/assets",
		Summary:     "Fetch a diagnostic image by filename",
		Description: "Probes the configured name roots in priority order and streams the first match",
		Tags:        []string{"Assets"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Image bytes",
				Content:     map[string]*huma.MediaType{"image/*": {}},
			},
		},
	}, h.GetByName)

	huma.Register(api, huma.Operation{
		OperationID: "getAssetByNameLegacy",
		Method:      http.MethodGet,
		Path:        LegacyAssetPrefix,
		Summary:     "Fetch a diagnostic image by filename (legacy path)",
		Description: "Alias of GET /assets for references rendered against the older API prefix",
		Tags:        []string{"Assets"},
		Deprecated:  true,
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Image bytes",
				Content:     map[string]*huma.MediaType{"image/*": {}},
			},
		},
	}, h.GetByName)
}

// RegisterPathRoute registers the path-hinted endpoint and its legacy alias
// on the router
func (h *AssetHandler) RegisterPathRoute(router chi.Router) {
	router.Get("/assets/*", h.ServePath)
	router.Get(LegacyAssetPrefix+"/*", h.ServePath)
}

// GetAssetByNameInput defines the input for the GetByName operation
type GetAssetByNameInput struct {
	Name string `query:"name" doc:"Bare image filename, no path separators"`
}

// GetByName resolves a bare filename against the name roots
func (h *AssetHandler) GetByName(ctx context.Context, input *GetAssetByNameInput) (*huma.StreamResponse, error) {
	asset, err := h.resolver.ResolveName(ctx, input.Name, h.dc)
	if err != nil {
		return nil, toHumaError(err)
	}

	f, info, err := openAsset(asset)
	if err != nil {
		h.logOpenFailure(asset, err)
		return nil, toHumaError(err)
	}

	return &huma.StreamResponse{
		Body: func(hctx huma.Context) {
			defer f.Close()
			hctx.SetHeader("Content-Type", asset.ContentType)
			hctx.SetHeader("Content-Length", strconv.FormatInt(info.Size(), 10))
			for k, v := range nameAssetHeaders {
				hctx.SetHeader(k, v)
			}
			hctx.SetStatus(http.StatusOK)
			if _, err := io.Copy(hctx.BodyWriter(), f); err != nil {
				h.logCopyFailure(asset, err)
			}
		},
	}, nil
}

// ServePath resolves fullPath, or the decoded wildcard segments, against the
// path roots
func (h *AssetHandler) ServePath(w http.ResponseWriter, r *http.Request) {
	hint := r.URL.Query().Get("fullPath")
	if hint == "" {
		hint = chi.URLParam(r, "*")
		if r.URL.RawPath != "" {
			decoded, err := url.PathUnescape(hint)
			if err != nil {
				writeError(w, &coreerrors.InvalidReferenceError{Reference: hint, Reason: "malformed escape"})
				return
			}
			hint = decoded
		}
	}

	asset, err := h.resolver.ResolvePath(r.Context(), hint, h.dc)
	if err != nil {
		writeError(w, err)
		return
	}

	f, info, err := openAsset(asset)
	if err != nil {
		h.logOpenFailure(asset, err)
		writeError(w, err)
		return
	}
	defer f.Close()

	for k, v := range pathAssetHeaders {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", asset.ContentType)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// openAsset opens a resolved file. A file removed since resolution is NotFound.
func openAsset(asset *domain.ResolvedAsset) (*os.File, fs.FileInfo, error) {
	f, err := os.Open(asset.AbsolutePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &coreerrors.NotFoundError{Resource: "asset", ID: filepath.Base(asset.AbsolutePath)}
		}
		return nil, nil, &coreerrors.UnexpectedIOError{Op: "open", Path: asset.AbsolutePath, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, &coreerrors.UnexpectedIOError{Op: "stat", Path: asset.AbsolutePath, Err: err}
	}
	return f, info, nil
}

func (h *AssetHandler) logOpenFailure(asset *domain.ResolvedAsset, err error) {
	if h.logger == nil {
		return
	}
	h.logger.Error("Failed to open resolved asset", map[string]interface{}{
		"path":  asset.AbsolutePath,
		"error": err.Error(),
	})
}

func (h *AssetHandler) logCopyFailure(asset *domain.ResolvedAsset, err error) {
	if h.logger == nil {
		return
	}
	h.logger.Warn("Asset stream interrupted", map[string]interface{}{
		"path":  asset.AbsolutePath,
		"error": err.Error(),
	})
}
