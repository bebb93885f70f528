package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ytget/direct-downloader/internal/download"
	"github.com/ytget/direct-downloader/internal/model"
)

// Page inspection limits
const (
	DefaultPageInspectTimeout = 20 * time.Second
	MaxPageBytes              = 2 * 1024 * 1024
	MaxLabelLength            = 80
)

// Request headers sent when fetching a page
const (
	PageUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	PageAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// ErrNotHTML is returned when the URL serves something other than a page,
// which usually means it is already a direct file link.
var ErrNotHTML = errors.New("URL does not serve an HTML page")

// mediaSelectors maps CSS selectors to the kind recorded for their matches
var mediaSelectors = []struct {
	selector string
	attr     string
	kind     model.MediaLinkKind
}{
	{"audio[src]", "src", model.MediaLinkAudio},
	{"video[src]", "src", model.MediaLinkVideo},
	{"audio source[src], video source[src]", "src", model.MediaLinkSource},
	{"a[href]", "href", model.MediaLinkAnchor},
}

// PageParserService finds media links on HTML pages
type PageParserService struct {
	client  *http.Client
	timeout time.Duration
}

// NewPageParserService creates a new page parser service. A nil client
// selects http.DefaultClient.
func NewPageParserService(client *http.Client) *PageParserService {
	if client == nil {
		client = http.DefaultClient
	}
	return &PageParserService{
		client:  client,
		timeout: DefaultPageInspectTimeout,
	}
}

// SetTimeout sets the timeout for page inspection; non-positive values are
// ignored
func (p *PageParserService) SetTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	p.timeout = timeout
}

// InspectPage fetches pageURL and collects candidate media links
func (p *PageParserService) InspectPage(ctx context.Context, pageURL string) (*model.PageInspection, error) {
	// Create context with timeout
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	base, err := download.ValidateSourceURL(pageURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", PageUserAgent)
	req.Header.Set("Accept", PageAccept)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return nil, fmt.Errorf("%w: %s", ErrNotHTML, contentType)
	}

	return ParsePage(base, io.LimitReader(resp.Body, MaxPageBytes))
}

// ParsePage extracts media links from an HTML document served at base.
// Relative links are resolved against base, or against <base href> when the
// document declares one.
func ParsePage(base *url.URL, r io.Reader) (*model.PageInspection, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	page := model.NewPageInspection(base.String())
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())

	for _, m := range mediaSelectors {
		doc.Find(m.selector).Each(func(_ int, s *goquery.Selection) {
			raw, _ := s.Attr(m.attr)
			link, ok := resolveLink(base, raw)
			if !ok {
				return
			}

			// plain anchors only count when they point at a media file
			if m.kind == model.MediaLinkAnchor && download.ClassifyURL(link) != download.URLClassDirectFile {
				return
			}

			page.AddLink(&model.MediaLink{
				URL:   link,
				Kind:  m.kind,
				Label: linkLabel(s),
			})
		})
	}

	return page, nil
}

// resolveLink resolves raw against base and keeps only http(s) results
func resolveLink(base *url.URL, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	resolved.Fragment = ""
	return resolved.String(), true
}

func linkLabel(s *goquery.Selection) string {
	label := strings.Join(strings.Fields(s.Text()), " ")
	if label == "" {
		label, _ = s.Attr("title")
		label = strings.TrimSpace(label)
	}

	if runes := []rune(label); len(runes) > MaxLabelLength {
		label = string(runes[:MaxLabelLength]) + "..."
	}
	return label
}
