package render

import (
	"strings"
	"testing"

	"diagnostic-report-api/core/domain"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func body(content string, hasVideos bool) string {
	return RenderContent(content, hasVideos, DefaultOptions())
}

func TestRenderContent_BlockRules(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "section header",
			content: "**Potential Root Causes:**",
			want:    `<div class="diagnostic-content"><h3 class="report-heading">Potential Root Causes</h3></div>`,
		},
		{
			name:    "category callout wins over header",
			content: "**Category:** Engine Performance",
			want:    `<div class="diagnostic-content"><div class="report-callout"><strong>Category:</strong> <span>Engine Performance</span></div></div>`,
		},
		{
			name:    "header with trailing text",
			content: "**Summary:** Replace the sensor",
			want:    `<div class="diagnostic-content"><h3 class="report-heading">Summary</h3><div class="report-paragraph">Replace the sensor</div></div>`,
		},
		{
			name:    "bullets",
			content: "• Check fuses\n• Inspect harness",
			want:    `<div class="diagnostic-content"><ul class="report-list"><li>Check fuses</li><li>Inspect harness</li></ul></div>`,
		},
		{
			name:    "numbered",
			content: "1. Disconnect battery\n2. Remove cover",
			want:    `<div class="diagnostic-content"><ol class="report-steps"><li value="1">Disconnect battery</li><li value="2">Remove cover</li></ol></div>`,
		},
		{
			name:    "line breaks and paragraphs",
			content: "first\nsecond\n\nthird",
			want:    `<div class="diagnostic-content"><div class="report-paragraph">first<br>second</div><div class="report-paragraph">third</div></div>`,
		},
		{
			name:    "empty content",
			content: "",
			want:    `<div class="diagnostic-content"></div>`,
		},
		{
			name:    "inline bold",
			content: "This is **important** text",
			want:    `<div class="diagnostic-content"><div class="report-paragraph">This is <strong>important</strong> text</div></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, body(tt.content, false))
		})
	}
}

func TestRenderContent_EscapesMarkup(t *testing.T) {
	out := body(`<script>alert("x")</script> & more`, false)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&amp; more")

	doc := parse(t, out)
	assert.Equal(t, 0, doc.Find("script").Length())
}

func TestRenderContent_MixedReport(t *testing.T) {
	content := strings.Join([]string{
		"**Category:** Electrical",
		"**Potential Root Causes:**",
		"• Corroded ground strap",
		"• Failed alternator, see https://example.com/alt",
		"",
		"**Repair Steps:**",
		"1. Clean the ground",
		"2. Test output voltage",
	}, "\n")

	doc := parse(t, body(content, false))

	assert.Equal(t, 1, doc.Find(".report-callout").Length())
	headings := doc.Find("h3.report-heading")
	require.Equal(t, 2, headings.Length())
	assert.Equal(t, "Potential Root Causes", headings.Eq(0).Text())
	assert.Equal(t, "Repair Steps", headings.Eq(1).Text())
	assert.Equal(t, 2, doc.Find("ul.report-list li").Length())
	assert.Equal(t, 2, doc.Find("ol.report-steps li").Length())

	link := doc.Find("ul.report-list li a.report-link")
	require.Equal(t, 1, link.Length())
	href, _ := link.Attr("href")
	assert.Equal(t, "https://example.com/alt", href)
}

func TestRenderContent_VideoCardsWithoutStructuredVideos(t *testing.T) {
	content := "Watch https://www.youtube.com/watch?v=abc_123 and https://youtu.be/XyZ-9."

	doc := parse(t, body(content, false))

	cards := doc.Find(".video-card")
	require.Equal(t, 2, cards.Length())

	id, _ := cards.Eq(0).Attr("data-video-id")
	assert.Equal(t, "abc_123", id)
	thumb, _ := cards.Eq(0).Find("img").Attr("src")
	assert.Equal(t, "https://img.youtube.com/vi/abc_123/mqdefault.jpg", thumb)
	assert.Contains(t, cards.Eq(0).Text(), "Watch Diagnostic Video")

	href, _ := cards.Eq(1).Find("a").Attr("href")
	assert.Equal(t, "https://youtu.be/XyZ-9", href, "trailing punctuation is not part of the URL")
	assert.Equal(t, 0, doc.Find("a.report-link").Length(), "video URLs are not also linkified")
}

func TestRenderContent_NoVideoCardsWithStructuredVideos(t *testing.T) {
	content := "Video: https://www.youtube.com/watch?v=abc123 and docs https://example.com/tsb"

	out := body(content, true)
	doc := parse(t, out)

	assert.Equal(t, 0, doc.Find(".video-card").Length())
	links := doc.Find("a.report-link")
	require.Equal(t, 1, links.Length(), "only the non-YouTube URL is linkified")
	href, _ := links.Attr("href")
	assert.Equal(t, "https://example.com/tsb", href)
	assert.Contains(t, doc.Text(), "https://www.youtube.com/watch?v=abc123")
}

func TestRenderContent_MarkdownLinkToYouTube(t *testing.T) {
	content := "[Sensor test](https://youtu.be/abc123)"

	withoutStructured := parse(t, body(content, false))
	assert.Equal(t, 1, withoutStructured.Find(".video-card").Length())
	assert.Contains(t, withoutStructured.Find(".video-url").Text(), "Sensor test")

	withStructured := parse(t, body(content, true))
	assert.Equal(t, 0, withStructured.Find(".video-card").Length())
	assert.Equal(t, 1, withStructured.Find("a.report-link").Length())
}

func TestRenderContent_ImageDispatch(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantSrc      string
		wantFallback string
		wantNote     string
	}{
		{
			name:    "data uri inline",
			content: "![Image](data:image/png;base64,iVBORw0KGgo=)",
			wantSrc: "data:image/png;base64,iVBORw0KGgo=",
		},
		{
			name:         "legacy api reference with static fallback",
			content:      "![Image](/api/images?name=page_1.png)",
			wantSrc:      "/api/images?name=page_1.png",
			wantFallback: "/diagnostic-images/page_1.png",
			wantNote:     "trying static fallback",
		},
		{
			name:         "asset endpoint reference with static fallback",
			content:      "![Image](/assets?name=page_2.png)",
			wantSrc:      "/assets?name=page_2.png",
			wantFallback: "/diagnostic-images/page_2.png",
			wantNote:     "trying static fallback",
		},
		{
			name:     "static path",
			content:  "![Image](/diagnostic-images/page_3.png)",
			wantSrc:  "/diagnostic-images/page_3.png",
			wantNote: "Image could not be loaded",
		},
		{
			name:     "relative path rewritten to asset endpoint",
			content:  "![Image](output/markdowns/artifacts/page 4.png)",
			wantSrc:  "",
			wantNote: "",
		},
		{
			name:     "bare relative path rewritten",
			content:  "![Wiring](output/artifacts/page_5_img_2.png)",
			wantSrc:  "/assets?name=page_5_img_2.png",
			wantNote: "Image reference: page_5_img_2.png",
		},
		{
			name:     "windows path rewritten",
			content:  `![Image](C:/out\artifacts\page_6.png)`,
			wantSrc:  "/assets?name=page_6.png",
			wantNote: "Image reference: page_6.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, body(tt.content, false))
			fig := doc.Find("figure.report-image")

			if tt.wantSrc == "" {
				// sources with spaces are not markdown images
				assert.Equal(t, 0, fig.Length())
				return
			}

			require.Equal(t, 1, fig.Length())
			src, _ := fig.Find("img").First().Attr("src")
			assert.Equal(t, tt.wantSrc, src)

			if tt.wantFallback != "" {
				fb, _ := fig.Find(".image-fallback img").Attr("src")
				assert.Equal(t, tt.wantFallback, fb)
			}
			if tt.wantNote != "" {
				assert.Contains(t, fig.Find(".image-fallback").Text(), tt.wantNote)
			} else {
				assert.Equal(t, 0, fig.Find(".image-fallback").Length())
			}
		})
	}
}

func TestRenderContent_ImageAltDefaultsAndIsNotLinkified(t *testing.T) {
	doc := parse(t, body("![](https://cdn.example.com/img/diagram.png)", false))

	img := doc.Find("figure.report-image img").First()
	alt, _ := img.Attr("alt")
	src, _ := img.Attr("src")
	assert.Equal(t, "Diagnostic Image", alt)
	assert.Equal(t, "/assets?name=diagram.png", src)
	assert.Equal(t, 0, doc.Find("a").Length())
}

func TestRenderContent_MarkdownLinks(t *testing.T) {
	doc := parse(t, body("See [TSB 21-044](https://example.com/tsb?id=1&x=2) for details", false))

	a := doc.Find("a.report-link")
	require.Equal(t, 1, a.Length())
	href, _ := a.Attr("href")
	assert.Equal(t, "https://example.com/tsb?id=1&x=2", href)
	assert.Equal(t, "TSB 21-044", a.Text())
	target, _ := a.Attr("target")
	rel, _ := a.Attr("rel")
	assert.Equal(t, "_blank", target)
	assert.Equal(t, "noopener noreferrer", rel)
}

func TestRenderContent_UnsafeLinksAreNotAnchors(t *testing.T) {
	doc := parse(t, body("[click](javascript:alert(1)) [data](data:text/html,hi)", false))

	assert.Equal(t, 0, doc.Find("a").Length())
	assert.Contains(t, doc.Text(), "click")
}

func TestRenderContent_BareURLTrailingPunctuation(t *testing.T) {
	doc := parse(t, body("Details (https://example.com/a/b).", false))

	href, _ := doc.Find("a.report-link").Attr("href")
	assert.Equal(t, "https://example.com/a/b", href)
	assert.True(t, strings.HasSuffix(doc.Find(".report-paragraph").Text(), ")."))
}

func TestRenderContent_EmphasisedURLs(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantHref   string
		wantStrong bool
		wantText   string
	}{
		{"bold", "See **https://example.com/guide** now", "https://example.com/guide", true, "See https://example.com/guide now"},
		{"bold with period", "Read **https://example.com/guide.** first", "https://example.com/guide", true, "Read https://example.com/guide. first"},
		{"trailing markers", "Open https://example.com/guide** now", "https://example.com/guide", false, "Open https://example.com/guide** now"},
		{"italic", "See _https://example.com/guide_ now", "https://example.com/guide", false, "See _https://example.com/guide_ now"},
		{"underscore in path", "See https://example.com/snake_case_ now", "https://example.com/snake_case_", false, "See https://example.com/snake_case_ now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, body(tt.content, false))

			a := doc.Find("a.report-link")
			require.Equal(t, 1, a.Length())
			href, _ := a.Attr("href")
			assert.Equal(t, tt.wantHref, href)
			assert.Equal(t, tt.wantStrong, doc.Find("strong a.report-link").Length() == 1)
			assert.Equal(t, tt.wantText, doc.Find(".report-paragraph").Text())
		})
	}
}

func TestRenderContent_BoldYouTubeURL(t *testing.T) {
	doc := parse(t, body("Watch **https://youtu.be/dQw4w9WgXcQ** first", true))

	assert.Equal(t, 0, doc.Find("a").Length())
	assert.Equal(t, 0, doc.Find(".video-card").Length())
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", doc.Find("strong").Text())

	doc = parse(t, body("Watch **https://youtu.be/dQw4w9WgXcQ** first", false))

	card := doc.Find(".video-card")
	require.Equal(t, 1, card.Length())
	assert.Equal(t, "dQw4w9WgXcQ", card.AttrOr("data-video-id", ""))
	assert.NotContains(t, doc.Find(".report-paragraph").Text(), "**")
}

func TestRenderContent_UnescapesDoubleEncodedSequences(t *testing.T) {
	out := body(`first\nsecond\n\u2022 item \"quoted\"`, false)
	doc := parse(t, out)

	assert.Contains(t, out, "first<br>second")
	li := doc.Find("ul.report-list li")
	require.Equal(t, 1, li.Length())
	assert.Equal(t, `item "quoted"`, li.Text())
}

func TestRenderContent_UnescapeCanBeDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.UnescapeSequences = false

	out := RenderContent(`a\nb`, false, opts)

	assert.Contains(t, out, `a\nb`)
	assert.NotContains(t, out, "<br>")
}

func TestRender_IsDeterministic(t *testing.T) {
	p := domain.TextPayload{
		Content: "**Category:** Brakes\n• Pads worn https://youtu.be/abc\n![Image](pads.png)",
		WebSources: []domain.WebSource{
			{URL: "https://example.com/a", Title: "A"},
		},
	}

	first := Render(p, DefaultOptions())
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Render(p, DefaultOptions()))
	}
	assert.Equal(t, first, NewRenderer(Options{}).Render(p), "zero options fall back to defaults")
}

func TestRender_StructuredSections(t *testing.T) {
	p := domain.TextPayload{
		Content: "body",
		WebSources: []domain.WebSource{
			{URL: "https://example.com/tsb", Title: "Service bulletin"},
			{URL: "https://example.com/forum"},
		},
		YouTubeVideos: []domain.YouTubeVideo{
			{URL: "https://www.youtube.com/watch?v=abc123", Title: "Test the sensor", VideoID: "abc123"},
			{URL: "https://youtu.be/def456", Title: "No id given", Thumbnail: "https://img.youtube.com/vi/default/default.jpg"},
			{URL: "https://example.com/video", Title: "Custom", Thumbnail: "https://cdn.example.com/t.jpg"},
		},
	}

	rc := Render(p, DefaultOptions())

	sources := parse(t, rc.Sources)
	links := sources.Find("section.web-sources a.source-link")
	require.Equal(t, 2, links.Length())
	assert.Equal(t, "Service bulletin", links.Eq(0).Text())
	assert.Equal(t, "https://example.com/forum", links.Eq(1).Text(), "missing title falls back to URL")

	videos := parse(t, rc.Videos)
	imgs := videos.Find("section.video-grid .video-card img")
	require.Equal(t, 3, imgs.Length())
	src0, _ := imgs.Eq(0).Attr("src")
	src1, _ := imgs.Eq(1).Attr("src")
	src2, _ := imgs.Eq(2).Attr("src")
	assert.Equal(t, "https://img.youtube.com/vi/abc123/mqdefault.jpg", src0)
	assert.Equal(t, "https://img.youtube.com/vi/def456/mqdefault.jpg", src1)
	assert.Equal(t, "https://cdn.example.com/t.jpg", src2)

	assert.Equal(t, rc.Body+rc.Sources+rc.Videos, rc.HTML())
}

func TestRender_EmptySectionsOmitted(t *testing.T) {
	rc := Render(domain.TextPayload{Content: "x"}, DefaultOptions())

	assert.Empty(t, rc.Sources)
	assert.Empty(t, rc.Videos)
}

func TestVideoThumbnail(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, "https://t/1.jpg", VideoThumbnail(domain.YouTubeVideo{Thumbnail: "https://t/1.jpg"}, opts))
	assert.Equal(t, "https://img.youtube.com/vi/zz/mqdefault.jpg", VideoThumbnail(domain.YouTubeVideo{VideoID: "zz"}, opts))
	assert.Equal(t, "https://img.youtube.com/vi/default/mqdefault.jpg", VideoThumbnail(domain.YouTubeVideo{URL: "https://example.com"}, opts))
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=abc123", "abc123", true},
		{"https://youtube.com/watch?feature=share&v=Q_w-1", "Q_w-1", true},
		{"http://youtu.be/xyz", "xyz", true},
		{"https://www.youtube.com/embed/emb1", "emb1", true},
		{"https://youtube.com/shorts/sh0rt", "sh0rt", true},
		{"https://m.youtube.com/watch?v=mob", "mob", true},
		{"https://example.com/watch?v=abc", "", false},
		{"https://www.youtube.com/channel/abc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := ExtractVideoID(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStageNames_Order(t *testing.T) {
	names := StageNames()

	index := func(name string) int {
		for i, n := range names {
			if n == name {
				return i
			}
		}
		t.Fatalf("stage %s missing", name)
		return -1
	}

	assert.Less(t, index("callouts"), index("headings"))
	assert.Less(t, index("headings"), index("bullets"))
	assert.Less(t, index("bullets"), index("numbered"))
	assert.Less(t, index("videos"), index("images"))
	assert.Less(t, index("images"), index("links"))
}
