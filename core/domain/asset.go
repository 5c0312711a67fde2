// ABOUTME: Asset domain model for diagnostic images referenced by rendered content
// ABOUTME: Describes candidate roots, resolution context and resolved files

package domain

import (
	"path/filepath"
	"strings"
)

// ResolvedAsset is a located file ready to be streamed
type ResolvedAsset struct {
	// AbsolutePath is the cleaned absolute filesystem path
	AbsolutePath string `json:"absolute_path"`

	// ContentType is derived from the file extension
	ContentType string `json:"content_type"`

	// Root is the candidate root the file was found under, empty for direct paths
	Root string `json:"root,omitempty"`
}

// DeploymentContext is the request-scoped description of where assets may live.
// It is passed explicitly into every resolution call.
type DeploymentContext struct {
	// WorkDir anchors relative roots and relative path hints
	WorkDir string

	// NameRoots are probed in order for the name-only entry point
	NameRoots []string

	// PathRoots are probed in order for the path-hinted entry point
	PathRoots []string
}

// AbsNameRoots returns NameRoots anchored at WorkDir, empty entries dropped
func (c DeploymentContext) AbsNameRoots() []string {
	return c.absRoots(c.NameRoots)
}

// AbsPathRoots returns PathRoots anchored at WorkDir, empty entries dropped
func (c DeploymentContext) AbsPathRoots() []string {
	return c.absRoots(c.PathRoots)
}

func (c DeploymentContext) absRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if !filepath.IsAbs(r) {
			r = filepath.Join(c.WorkDir, r)
		}
		out = append(out, filepath.Clean(r))
	}
	return out
}

// Fingerprint identifies the root configuration for cache keys
func (c DeploymentContext) Fingerprint() string {
	return strings.Join(c.AbsNameRoots(), "|") + "#" + strings.Join(c.AbsPathRoots(), "|")
}
