// ABOUTME: Rendering options passed explicitly into every render call
// ABOUTME: Endpoints and templates used when rewriting image and video references

package render

// Options controls where rewritten references point. It is a plain value:
// callers pass it per request, nothing is cached globally.
type Options struct {
	// AssetEndpoint is the name-only asset endpoint, e.g. "/assets"
	AssetEndpoint string

	// LegacyAssetEndpoint is an older API prefix that is also already resolved
	LegacyAssetEndpoint string

	// StaticImagePrefix serves images copied into the public folder
	StaticImagePrefix string

	// ThumbnailTemplate formats a YouTube thumbnail URL from a video id
	ThumbnailTemplate string

	// UnescapeSequences undoes double-encoded \n, •, \" and \\ in content
	UnescapeSequences bool
}

// DefaultOptions returns the options used by the HTTP service
func DefaultOptions() Options {
	return Options{
		AssetEndpoint:       "/assets",
		LegacyAssetEndpoint: "/api/images",
		StaticImagePrefix:   "/diagnostic-images",
		ThumbnailTemplate:   "https://img.youtube.com/vi/%s/mqdefault.jpg",
		UnescapeSequences:   true,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.AssetEndpoint == "" {
		o.AssetEndpoint = d.AssetEndpoint
	}
	if o.LegacyAssetEndpoint == "" {
		o.LegacyAssetEndpoint = d.LegacyAssetEndpoint
	}
	if o.StaticImagePrefix == "" {
		o.StaticImagePrefix = d.StaticImagePrefix
	}
	if o.ThumbnailTemplate == "" {
		o.ThumbnailTemplate = d.ThumbnailTemplate
	}
	return o
}
