// ABOUTME: Content renderer turning report text into safe rich markup
// ABOUTME: Runs an explicit ordered stage pipeline plus structured source and video sections

// Package render converts TextPayload content into HTML-safe markup.
//
// The content pipeline is a fixed list of named stages (see Pipeline) that
// operate on a line/segment token model rather than on raw strings. Output
// depends only on the content, whether the payload carries structured
// videos, and the Options value passed in, so rendering is deterministic.
package render

import (
	"strings"

	"diagnostic-report-api/core/domain"
)

// RichContent is the rendered form of a TextPayload
type RichContent struct {
	// Body is the rendered content pipeline output
	Body string `json:"html"`

	// Sources is the web sources section, empty when there are none
	Sources string `json:"sources_html"`

	// Videos is the video card grid, empty when there are no structured videos
	Videos string `json:"videos_html"`
}

// HTML concatenates the body and the structured sections
func (r RichContent) HTML() string {
	return r.Body + r.Sources + r.Videos
}

// Renderer renders payloads with a fixed set of options. It holds no mutable
// state and is safe for concurrent use.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer; zero option fields take their defaults
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts.withDefaults()}
}

// Options returns the options the renderer was built with
func (r *Renderer) Options() Options {
	return r.opts
}

// Render renders the payload content and its structured sections
func (r *Renderer) Render(p domain.TextPayload) RichContent {
	return Render(p, r.opts)
}

// RenderMessage renders the text half of a decoded chat message. Plain text
// messages go through the same pipeline with no structured videos.
func (r *Renderer) RenderMessage(msg domain.StructuredMessage) RichContent {
	return Render(msg.Text, r.opts)
}

// Render renders p with opts
func Render(p domain.TextPayload, opts Options) RichContent {
	opts = opts.withDefaults()
	return RichContent{
		Body:    RenderContent(p.Content, p.HasStructuredVideos(), opts),
		Sources: RenderSources(p.WebSources),
		Videos:  RenderVideos(p.YouTubeVideos, opts),
	}
}

// RenderContent runs the content pipeline over content
func RenderContent(content string, hasStructuredVideos bool, opts Options) string {
	d := &document{
		source:              content,
		hasStructuredVideos: hasStructuredVideos,
		opts:                opts.withDefaults(),
	}
	for _, stage := range Pipeline {
		stage.Apply(d)
	}
	return d.emit()
}

// StageNames lists the pipeline order
func StageNames() []string {
	names := make([]string, len(Pipeline))
	for i, s := range Pipeline {
		names[i] = s.Name
	}
	return names
}

// RenderSources renders the web sources list
func RenderSources(sources []domain.WebSource) string {
	if len(sources) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<section class="web-sources"><h3>Web Sources</h3><ul>`)
	for _, src := range sources {
		title := src.Title
		if title == "" {
			title = src.URL
		}
		sb.WriteString(`<li>`)
		if safeHref(src.URL) {
			writeAnchorOpen(&sb, src.URL, "source-link")
			sb.WriteString(esc(title))
			sb.WriteString(`</a>`)
		} else {
			sb.WriteString(esc(title))
		}
		sb.WriteString(`<p class="source-url">`)
		sb.WriteString(esc(src.URL))
		sb.WriteString(`</p></li>`)
	}
	sb.WriteString(`</ul></section>`)
	return sb.String()
}

// RenderVideos renders the structured video card grid
func RenderVideos(videos []domain.YouTubeVideo, opts Options) string {
	if len(videos) == 0 {
		return ""
	}
	opts = opts.withDefaults()

	var sb strings.Builder
	sb.WriteString(`<section class="video-grid"><h3>Diagnostic Videos</h3><div class="video-cards">`)
	for _, v := range videos {
		id := videoID(v)
		sb.WriteString(`<div class="video-card"`)
		if id != "" {
			sb.WriteString(` data-video-id="`)
			sb.WriteString(esc(id))
			sb.WriteString(`"`)
		}
		sb.WriteString(`>`)
		if safeHref(v.URL) {
			writeAnchorOpen(&sb, v.URL, "")
		}
		sb.WriteString(`<img src="`)
		sb.WriteString(esc(VideoThumbnail(v, opts)))
		sb.WriteString(`" alt="`)
		sb.WriteString(esc(v.Title))
		sb.WriteString(`"`)
		if id != "" {
			sb.WriteString(` data-fallback-src="`)
			sb.WriteString(esc("https://img.youtube.com/vi/" + id + "/hqdefault.jpg"))
			sb.WriteString(`"`)
		}
		sb.WriteString(` loading="lazy"><p class="video-title">`)
		sb.WriteString(esc(v.Title))
		sb.WriteString(`</p>`)
		if safeHref(v.URL) {
			sb.WriteString(`</a>`)
		}
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div></section>`)
	return sb.String()
}

const placeholderThumbnail = "default/default.jpg"

// VideoThumbnail picks the card image: the supplied thumbnail unless it is
// empty or the generic placeholder, else one built from the video id, else
// the generic default.
func VideoThumbnail(v domain.YouTubeVideo, opts Options) string {
	if v.Thumbnail != "" && !strings.Contains(v.Thumbnail, placeholderThumbnail) {
		return v.Thumbnail
	}
	opts = opts.withDefaults()
	if id := videoID(v); id != "" {
		return thumbnailURL(opts.ThumbnailTemplate, id)
	}
	return thumbnailURL(opts.ThumbnailTemplate, "default")
}

func videoID(v domain.YouTubeVideo) string {
	if v.VideoID != "" {
		return v.VideoID
	}
	id, _ := ExtractVideoID(v.URL)
	return id
}
