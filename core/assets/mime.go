// ABOUTME: Extension to content type table for served images
// ABOUTME: Unknown extensions fall back to a generic image type

package assets

import (
	"path/filepath"
	"strings"
)

// DefaultContentType is used for extensions missing from the table
const DefaultContentType = "image/png"

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
}

// ContentTypeFor derives the content type from the file extension
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return DefaultContentType
}
