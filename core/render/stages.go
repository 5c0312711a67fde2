// ABOUTME: Named render stages applied in a fixed order
// ABOUTME: Covers headings, callouts, lists, videos, images, links and emphasis

package render

import (
	"net/url"
	"regexp"
	"strings"
)

// Stage is one named step of the content pipeline
type Stage struct {
	Name  string
	Apply func(d *document)
}

// Pipeline is the fixed stage order. Later stages only see segments earlier
// stages left unclaimed, so precedence is a property of the data, not of
// pattern ordering.
var Pipeline = []Stage{
	{Name: "unescape", Apply: unescapeStage},
	{Name: "lines", Apply: linesStage},
	{Name: "callouts", Apply: calloutStage},
	{Name: "headings", Apply: headingStage},
	{Name: "bullets", Apply: bulletStage},
	{Name: "numbered", Apply: numberedStage},
	{Name: "markdown-syntax", Apply: markdownSyntaxStage},
	{Name: "videos", Apply: videoStage},
	{Name: "images", Apply: imageStage},
	{Name: "links", Apply: linkStage},
	{Name: "emphasis", Apply: emphasisStage},
}

var (
	calloutLine  = regexp.MustCompile(`^\*\*(Category):\*\*\s*(\S.*)$`)
	headingLine  = regexp.MustCompile(`^\*\*([^*]+):\*\*(.*)$`)
	bulletLine   = regexp.MustCompile(`^\s*•\s+(.+)$`)
	numberedLine = regexp.MustCompile(`^\s*(\d+)\.\s+(.+)$`)
	markdownRef  = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)\)|\[([^\]]+)\]\(([^)\s]+)\)`)
	strongSpan   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

var escapedSequences = strings.NewReplacer(
	`\n`, "\n",
	`\u2022`, "•",
	`\"`, `"`,
	`\\`, `\`,
)

func unescapeStage(d *document) {
	if !d.opts.UnescapeSequences {
		return
	}
	d.source = escapedSequences.Replace(d.source)
}

func linesStage(d *document) {
	src := strings.ReplaceAll(d.source, "\r\n", "\n")
	for _, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) == "" {
			d.blocks = append(d.blocks, &block{kind: blockBlank})
			continue
		}
		d.blocks = append(d.blocks, &block{kind: blockText, inline: textSegments(line)})
	}
}

// lineText returns the raw text of an unclassified line block
func lineText(b *block) (string, bool) {
	if b.kind != blockText || len(b.inline) != 1 || b.inline[0].kind != segText {
		return "", false
	}
	return b.inline[0].text, true
}

// calloutStage runs before headingStage so "**Category:** x" never becomes a
// generic heading.
func calloutStage(d *document) {
	for _, b := range d.blocks {
		line, ok := lineText(b)
		if !ok {
			continue
		}
		if m := calloutLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			b.kind = blockCallout
			b.label = m[1]
			b.inline = textSegments(strings.TrimSpace(m[2]))
		}
	}
}

// headingStage turns "**label:**" lines into headings; text following the
// marker on the same line becomes its own line after the heading.
func headingStage(d *document) {
	out := make([]*block, 0, len(d.blocks))
	for _, b := range d.blocks {
		line, ok := lineText(b)
		if !ok {
			out = append(out, b)
			continue
		}
		m := headingLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			out = append(out, b)
			continue
		}
		out = append(out, &block{kind: blockHeading, label: strings.TrimSpace(m[1])})
		if rest := strings.TrimSpace(m[2]); rest != "" {
			out = append(out, &block{kind: blockText, inline: textSegments(rest)})
		}
	}
	d.blocks = out
}

func bulletStage(d *document) {
	for _, b := range d.blocks {
		line, ok := lineText(b)
		if !ok {
			continue
		}
		if m := bulletLine.FindStringSubmatch(line); m != nil {
			b.kind = blockBullet
			b.inline = textSegments(m[1])
		}
	}
}

func numberedStage(d *document) {
	for _, b := range d.blocks {
		line, ok := lineText(b)
		if !ok {
			continue
		}
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			b.kind = blockNumbered
			b.number = m[1]
			b.inline = textSegments(m[2])
		}
	}
}

// markdownSyntaxStage claims ![alt](src) and [text](url) before any URL
// scanning so their targets are never split by the video or link stages.
func markdownSyntaxStage(d *document) {
	d.splitText(markdownRef, func(text string, loc []int) (segment, int) {
		whole := loc[1] - loc[0]
		if loc[2] >= 0 {
			return segment{kind: segImageRef, text: submatch(text, loc, 1), href: submatch(text, loc, 2)}, whole
		}
		return segment{kind: segLinkRef, text: submatch(text, loc, 3), href: submatch(text, loc, 4)}, whole
	})
}

// videoStage turns YouTube URLs into inline cards only when the payload has
// no structured video list. Otherwise the URLs are frozen as verbatim text so
// the link stage cannot wrap them either. A bold-wrapped YouTube URL is
// claimed whole so its markers do not leak around the card.
func videoStage(d *document) {
	d.splitText(strongURL, func(text string, loc []int) (segment, int) {
		inner := submatch(text, loc, 1)
		raw := trimURL(inner)
		id, ok := ExtractVideoID(raw)
		if !ok {
			return segment{}, 0
		}
		if d.hasStructuredVideos {
			return segment{kind: segStrong, text: inner}, loc[1] - loc[0]
		}
		return segment{kind: segVideoCard, href: raw, videoID: id}, loc[1] - loc[0]
	})

	if !d.hasStructuredVideos {
		for _, b := range d.inlineBlocks() {
			for i := range b.inline {
				seg := &b.inline[i]
				if seg.kind != segLinkRef {
					continue
				}
				if id, ok := ExtractVideoID(seg.href); ok {
					*seg = segment{kind: segVideoCard, text: seg.text, href: seg.href, videoID: id}
				}
			}
		}
	}

	d.splitText(youtubeURL, func(text string, loc []int) (segment, int) {
		raw := trimURL(text[loc[0]:loc[1]])
		if d.hasStructuredVideos {
			return segment{kind: segVerbatim, text: raw}, len(raw)
		}
		return segment{kind: segVideoCard, href: raw, videoID: submatch(text, loc, 1)}, len(raw)
	})
}

func imageStage(d *document) {
	for _, b := range d.inlineBlocks() {
		for i := range b.inline {
			seg := &b.inline[i]
			if seg.kind != segImageRef {
				continue
			}
			*seg = dispatchImage(seg.text, seg.href, d.opts)
		}
	}
}

// dispatchImage picks one of four shapes based on the image source
func dispatchImage(alt, src string, opts Options) segment {
	if alt == "" {
		alt = "Diagnostic Image"
	}
	switch {
	case strings.HasPrefix(src, "data:"):
		return segment{kind: segImage, variant: imageInline, text: alt, href: src}
	case hasPathPrefix(src, opts.LegacyAssetEndpoint) || hasPathPrefix(src, opts.AssetEndpoint):
		name := queryName(src)
		if name == "" {
			name = lastPathSegment(src)
		}
		return segment{
			kind:        segImage,
			variant:     imageAPI,
			text:        alt,
			href:        src,
			fileName:    name,
			fallbackSrc: opts.StaticImagePrefix + "/" + url.PathEscape(name),
		}
	case hasPathPrefix(src, opts.StaticImagePrefix):
		return segment{kind: segImage, variant: imageStatic, text: alt, href: src}
	default:
		name := lastPathSegment(src)
		if name == "" {
			name = src
		}
		return segment{
			kind:     segImage,
			variant:  imageRewritten,
			text:     alt,
			href:     opts.AssetEndpoint + "?name=" + url.QueryEscape(name),
			fileName: name,
		}
	}
}

func hasPathPrefix(src, prefix string) bool {
	if prefix == "" || !strings.HasPrefix(src, prefix) {
		return false
	}
	rest := src[len(prefix):]
	return rest == "" || strings.ContainsAny(rest[:1], "/?#")
}

func queryName(src string) string {
	i := strings.Index(src, "?")
	if i < 0 {
		return ""
	}
	q, err := url.ParseQuery(src[i+1:])
	if err != nil {
		return ""
	}
	return q.Get("name")
}

// linkStage converts markdown links and linkifies bare URLs in unclaimed text
func linkStage(d *document) {
	for _, b := range d.inlineBlocks() {
		for i := range b.inline {
			seg := &b.inline[i]
			if seg.kind != segLinkRef {
				continue
			}
			if !safeHref(seg.href) {
				*seg = segment{kind: segVerbatim, text: seg.text}
				continue
			}
			*seg = segment{kind: segAnchor, text: seg.text, href: seg.href}
		}
	}

	d.splitText(strongURL, func(text string, loc []int) (segment, int) {
		inner := submatch(text, loc, 1)
		return segment{kind: segAnchor, text: inner, href: trimURL(inner), strong: true}, loc[1] - loc[0]
	})

	d.splitText(bareURL, func(text string, loc []int) (segment, int) {
		raw := trimWrappedURL(text, loc[0], text[loc[0]:loc[1]])
		if d.hasStructuredVideos && IsYouTubeURL(raw) {
			return segment{kind: segVerbatim, text: raw}, len(raw)
		}
		return segment{kind: segAnchor, text: raw, href: raw}, len(raw)
	})
}

func emphasisStage(d *document) {
	d.splitText(strongSpan, func(text string, loc []int) (segment, int) {
		return segment{kind: segStrong, text: submatch(text, loc, 1)}, loc[1] - loc[0]
	})
}

// safeHref allows http(s), mailto, fragment and relative targets
func safeHref(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "mailto:"), strings.HasPrefix(lower, "/"),
		strings.HasPrefix(lower, "#"):
		return true
	}
	colon := strings.Index(lower, ":")
	if colon < 0 {
		return true
	}
	// a colon after the first path/query separator is not a scheme
	return strings.IndexAny(lower, "/?#") >= 0 && strings.IndexAny(lower, "/?#") < colon
}
