package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/vigiamx/mediawatch/internal/domain"
	"github.com/vigiamx/mediawatch/internal/ports"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// Extractor fetches a page and pulls its social-preview metadata. Absent tags
// resolve to empty fields; only transport-level failures are errors.
type Extractor struct {
	http      *resty.Client
	userAgent string
}

var _ ports.MetaExtractor = (*Extractor)(nil)

// NewExtractor builds the extractor with a bounded timeout and an identifying
// client signature.
func NewExtractor(timeout time.Duration, userAgent string) *Extractor {
	return &Extractor{
		http:      resty.New().SetTimeout(timeout),
		userAgent: userAgent,
	}
}

// Extract fetches pageURL (following standard redirects) and parses its
// metadata.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (domain.RawLinkMeta, error) {
	resp, err := e.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", e.userAgent).
		Get(pageURL)
	if err != nil {
		return domain.RawLinkMeta{}, &domain.FetchError{URL: pageURL, Err: err}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return domain.RawLinkMeta{}, &domain.FetchError{URL: pageURL, Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return domain.RawLinkMeta{}, &domain.FetchError{URL: pageURL, Err: err}
	}

	meta.URL = pageURL
	if meta.ImageURL != "" {
		meta.ImageURL = resolveURL(meta.ImageURL, pageURL)
	}
	return meta, nil
}

// parseMeta extracts the preview fields by priority: Open Graph tags, then
// the title element (title only), then Twitter card tags, then the generic
// meta description.
func parseMeta(body []byte) (domain.RawLinkMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.RawLinkMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	meta := domain.RawLinkMeta{}
	meta.Title = firstNonEmpty(
		extract(`meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
		extract(`meta[name="twitter:title"]`),
	)
	meta.Description = firstNonEmpty(
		extract(`meta[property="og:description"]`),
		extract(`meta[name="twitter:description"]`),
		extract(`meta[name="description"]`),
	)
	meta.ImageURL = firstNonEmpty(
		extract(`meta[property="og:image"]`),
		extract(`meta[name="twitter:image"]`),
	)
	meta.SiteName = extract(`meta[property="og:site_name"]`)

	return meta, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// resolveURL resolves a possibly relative URL against the page URL.
func resolveURL(raw, base string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(parsed).String()
}
