// ABOUTME: Markup emission for rendered blocks and inline segments
// ABOUTME: All text and attribute values are escaped on output

package render

import (
	"strings"

	"golang.org/x/net/html"
)

func esc(s string) string {
	return html.EscapeString(s)
}

func writeAnchorOpen(sb *strings.Builder, href, class string) {
	sb.WriteString(`<a href="`)
	sb.WriteString(esc(href))
	sb.WriteString(`" target="_blank" rel="noopener noreferrer"`)
	if class != "" {
		sb.WriteString(` class="`)
		sb.WriteString(class)
		sb.WriteString(`"`)
	}
	sb.WriteString(`>`)
}

// emit writes the blocks of d. Consecutive text lines share a paragraph and
// are joined with <br>; a blank line closes the paragraph.
func (d *document) emit() string {
	var sb strings.Builder
	sb.WriteString(`<div class="diagnostic-content">`)

	open := blockBlank
	closeOpen := func() {
		switch open {
		case blockText:
			sb.WriteString(`</div>`)
		case blockBullet:
			sb.WriteString(`</ul>`)
		case blockNumbered:
			sb.WriteString(`</ol>`)
		}
		open = blockBlank
	}

	for _, b := range d.blocks {
		switch b.kind {
		case blockBlank:
			closeOpen()
		case blockHeading:
			closeOpen()
			sb.WriteString(`<h3 class="report-heading">`)
			sb.WriteString(esc(b.label))
			sb.WriteString(`</h3>`)
		case blockCallout:
			closeOpen()
			sb.WriteString(`<div class="report-callout"><strong>`)
			sb.WriteString(esc(b.label))
			sb.WriteString(`:</strong> <span>`)
			writeInline(&sb, b.inline, d.opts)
			sb.WriteString(`</span></div>`)
		case blockBullet:
			if open != blockBullet {
				closeOpen()
				sb.WriteString(`<ul class="report-list">`)
				open = blockBullet
			}
			sb.WriteString(`<li>`)
			writeInline(&sb, b.inline, d.opts)
			sb.WriteString(`</li>`)
		case blockNumbered:
			if open != blockNumbered {
				closeOpen()
				sb.WriteString(`<ol class="report-steps">`)
				open = blockNumbered
			}
			sb.WriteString(`<li value="`)
			sb.WriteString(esc(b.number))
			sb.WriteString(`">`)
			writeInline(&sb, b.inline, d.opts)
			sb.WriteString(`</li>`)
		case blockText:
			if open == blockText {
				sb.WriteString(`<br>`)
			} else {
				closeOpen()
				sb.WriteString(`<div class="report-paragraph">`)
				open = blockText
			}
			writeInline(&sb, b.inline, d.opts)
		}
	}
	closeOpen()

	sb.WriteString(`</div>`)
	return sb.String()
}

func writeInline(sb *strings.Builder, segs []segment, opts Options) {
	for _, seg := range segs {
		switch seg.kind {
		case segText, segVerbatim:
			sb.WriteString(esc(seg.text))
		case segStrong:
			sb.WriteString(`<strong>`)
			sb.WriteString(esc(seg.text))
			sb.WriteString(`</strong>`)
		case segAnchor:
			if seg.strong {
				sb.WriteString(`<strong>`)
			}
			writeAnchorOpen(sb, seg.href, "report-link")
			sb.WriteString(esc(seg.text))
			sb.WriteString(`</a>`)
			if seg.strong {
				sb.WriteString(`</strong>`)
			}
		case segVideoCard:
			writeVideoCard(sb, seg, opts)
		case segImage:
			writeImage(sb, seg)
		case segImageRef, segLinkRef:
			// unreachable once the pipeline has run; keep the source visible
			sb.WriteString(esc(seg.text))
		}
	}
}

func writeVideoCard(sb *strings.Builder, seg segment, opts Options) {
	sb.WriteString(`<div class="video-card" data-video-id="`)
	sb.WriteString(esc(seg.videoID))
	sb.WriteString(`">`)
	writeAnchorOpen(sb, seg.href, "")
	sb.WriteString(`<img src="`)
	sb.WriteString(esc(thumbnailURL(opts.ThumbnailTemplate, seg.videoID)))
	sb.WriteString(`" alt="YouTube Thumbnail" loading="lazy">`)
	sb.WriteString(`<span class="video-caption"><span class="video-icon" aria-hidden="true">🎥</span> Watch Diagnostic Video</span>`)
	sb.WriteString(`<span class="video-url">`)
	if seg.text != "" {
		sb.WriteString(esc(seg.text))
	} else {
		sb.WriteString(esc(seg.href))
	}
	sb.WriteString(`</span></a></div>`)
}

func writeImage(sb *strings.Builder, seg segment) {
	sb.WriteString(`<figure class="report-image"><img src="`)
	sb.WriteString(esc(seg.href))
	sb.WriteString(`" alt="`)
	sb.WriteString(esc(seg.text))
	sb.WriteString(`" loading="lazy">`)

	switch seg.variant {
	case imageAPI:
		sb.WriteString(`<div class="image-fallback" hidden><p>Image could not be loaded via API, trying static fallback...</p><img src="`)
		sb.WriteString(esc(seg.fallbackSrc))
		sb.WriteString(`" alt="`)
		sb.WriteString(esc(seg.text + " (static)"))
		sb.WriteString(`" loading="lazy"></div>`)
	case imageStatic:
		sb.WriteString(`<div class="image-fallback" hidden><p>Image could not be loaded</p></div>`)
	case imageRewritten:
		sb.WriteString(`<div class="image-fallback" hidden><p>Image reference: `)
		sb.WriteString(esc(seg.fileName))
		sb.WriteString(`</p></div>`)
	}

	sb.WriteString(`</figure>`)
}
