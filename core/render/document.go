// ABOUTME: Token model for the render pipeline: blocks of inline segments
// ABOUTME: Stages claim segments so later stages never rescan claimed text

package render

import (
	"regexp"
	"strings"
)

type blockKind int

const (
	blockText blockKind = iota
	blockBlank
	blockHeading
	blockCallout
	blockBullet
	blockNumbered
)

type segmentKind int

const (
	// segText is unclaimed text that later stages may still scan
	segText segmentKind = iota
	// segVerbatim is text no stage may transform
	segVerbatim
	// segImageRef is markdown image syntax awaiting dispatch
	segImageRef
	// segLinkRef is markdown link syntax awaiting conversion
	segLinkRef
	segVideoCard
	segImage
	segAnchor
	segStrong
)

type imageVariant int

const (
	imageInline imageVariant = iota
	imageAPI
	imageStatic
	imageRewritten
)

type segment struct {
	kind segmentKind
	text string
	href string

	// strong wraps an anchor in emphasis
	strong bool

	// images
	variant     imageVariant
	fallbackSrc string
	fileName    string

	// video cards
	videoID string
}

type block struct {
	kind   blockKind
	label  string
	number string
	inline []segment
}

// document is the token form the stages operate on
type document struct {
	source              string
	hasStructuredVideos bool
	opts                Options
	blocks              []*block
}

// inlineBlocks yields blocks that carry inline text
func (d *document) inlineBlocks() []*block {
	out := make([]*block, 0, len(d.blocks))
	for _, b := range d.blocks {
		if len(b.inline) > 0 {
			out = append(out, b)
		}
	}
	return out
}

// splitText replaces every segText matched by re with the segments built by
// claim; unmatched text stays segText. claim receives the submatch indexes
// relative to the segment text and returns the replacement and how much of
// the match it actually consumed (to give trailing punctuation back).
func (d *document) splitText(re *regexp.Regexp, claim func(text string, loc []int) (segment, int)) {
	for _, b := range d.inlineBlocks() {
		out := make([]segment, 0, len(b.inline))
		for _, seg := range b.inline {
			if seg.kind != segText {
				out = append(out, seg)
				continue
			}
			out = append(out, splitSegment(seg.text, re, claim)...)
		}
		b.inline = out
	}
}

func splitSegment(text string, re *regexp.Regexp, claim func(string, []int) (segment, int)) []segment {
	var out []segment
	pos := 0
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] < pos {
			continue
		}
		seg, consumed := claim(text, loc)
		if consumed <= 0 {
			continue
		}
		if loc[0] > pos {
			out = append(out, segment{kind: segText, text: text[pos:loc[0]]})
		}
		out = append(out, seg)
		pos = loc[0] + consumed
	}
	if pos < len(text) {
		out = append(out, segment{kind: segText, text: text[pos:]})
	}
	return out
}

func textSegments(s string) []segment {
	if s == "" {
		return nil
	}
	return []segment{{kind: segText, text: s}}
}

func submatch(text string, loc []int, group int) string {
	if 2*group+1 >= len(loc) || loc[2*group] < 0 {
		return ""
	}
	return text[loc[2*group]:loc[2*group+1]]
}

func lastPathSegment(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	src = strings.TrimRight(src, `/\`)
	if i := strings.LastIndexAny(src, `/\`); i >= 0 {
		return src[i+1:]
	}
	return src
}
