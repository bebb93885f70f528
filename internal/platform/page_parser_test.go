package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ytget/direct-downloader/internal/model"
)

const testPage = `<!doctype html>
<html>
<head><title>  Concert Archive </title></head>
<body>
  <audio src="/media/opening.mp3"></audio>
  <video src="clips/encore.webm" title="Encore"></video>
  <video>
    <source src="https://cdn.test/live.mp4" type="video/mp4">
    <source src="https://cdn.test/live.mp4" type="video/mp4">
  </video>
  <a href="downloads/setlist.ogg">  Set   list </a>
  <a href="/about">About</a>
  <a href="#top">Top</a>
  <a href="mailto:band@test">Mail</a>
  <a href="javascript:void(0)">Nothing</a>
</body>
</html>`

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) failed: %v", raw, err)
	}
	return u
}

func TestNewPageParserService(t *testing.T) {
	service := NewPageParserService(nil)

	if service == nil {
		t.Fatal("service should not be nil")
	}
	if service.timeout != DefaultPageInspectTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultPageInspectTimeout, service.timeout)
	}
	if service.client != http.DefaultClient {
		t.Error("nil client should select http.DefaultClient")
	}

	service.SetTimeout(5 * time.Second)
	if service.timeout != 5*time.Second {
		t.Errorf("expected timeout %v, got %v", 5*time.Second, service.timeout)
	}

	service.SetTimeout(0)
	if service.timeout != 5*time.Second {
		t.Errorf("zero timeout should be ignored, got %v", service.timeout)
	}
}

func TestParsePage(t *testing.T) {
	base := mustParseURL(t, "https://site.test/shows/2024/")

	page, err := ParsePage(base, strings.NewReader(testPage))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}

	if page.Title != "Concert Archive" {
		t.Errorf("Title got %q, expected %q", page.Title, "Concert Archive")
	}

	expected := []struct {
		url   string
		kind  model.MediaLinkKind
		label string
	}{
		{"https://site.test/media/opening.mp3", model.MediaLinkAudio, ""},
		{"https://site.test/shows/2024/clips/encore.webm", model.MediaLinkVideo, "Encore"},
		{"https://cdn.test/live.mp4", model.MediaLinkSource, ""},
		{"https://site.test/shows/2024/downloads/setlist.ogg", model.MediaLinkAnchor, "Set list"},
	}

	if len(page.Links) != len(expected) {
		t.Fatalf("links got %d, expected %d: %+v", len(page.Links), len(expected), page.Links)
	}
	for i, want := range expected {
		got := page.Links[i]
		if got.URL != want.url || got.Kind != want.kind || got.Label != want.label {
			t.Errorf("link %d got %+v, expected %+v", i, *got, want)
		}
	}
}

func TestParsePageBaseHref(t *testing.T) {
	html := `<html><head><base href="https://mirror.test/files/"></head>
<body><a href="track.flac">Track</a></body></html>`

	page, err := ParsePage(mustParseURL(t, "https://site.test/page"), strings.NewReader(html))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}

	if len(page.Links) != 1 || page.Links[0].URL != "https://mirror.test/files/track.flac" {
		t.Errorf("links got %+v, expected the base-relative track", page.Links)
	}
}

func TestParsePageNoMedia(t *testing.T) {
	page, err := ParsePage(mustParseURL(t, "https://site.test/"), strings.NewReader("<p>nothing here</p>"))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}
	if page.HasLinks() {
		t.Errorf("expected no links, got %+v", page.Links)
	}
}

func TestLinkLabelTruncates(t *testing.T) {
	html := `<a href="/a.mp3">` + strings.Repeat("x", MaxLabelLength+20) + `</a>`
	page, err := ParsePage(mustParseURL(t, "https://site.test/"), strings.NewReader(html))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}
	if len(page.Links) != 1 {
		t.Fatalf("links got %d, expected 1", len(page.Links))
	}
	if label := page.Links[0].Label; len(label) != MaxLabelLength+3 || !strings.HasSuffix(label, "...") {
		t.Errorf("label got %q (%d chars)", label, len(label))
	}
}

func TestInspectPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			if ua := r.Header.Get("User-Agent"); ua != PageUserAgent {
				t.Errorf("User-Agent got %q, expected %q", ua, PageUserAgent)
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(testPage))
		case "/file.mp3":
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("ID3"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	service := NewPageParserService(server.Client())

	t.Run("html page", func(t *testing.T) {
		page, err := service.InspectPage(context.Background(), server.URL+"/page")
		if err != nil {
			t.Fatalf("InspectPage failed: %v", err)
		}
		if len(page.Links) != 4 {
			t.Errorf("links got %d, expected 4", len(page.Links))
		}
		if !strings.HasPrefix(page.Links[0].URL, server.URL+"/media/") {
			t.Errorf("relative link not resolved against the server: %q", page.Links[0].URL)
		}
	})

	t.Run("direct file", func(t *testing.T) {
		_, err := service.InspectPage(context.Background(), server.URL+"/file.mp3")
		if !errors.Is(err, ErrNotHTML) {
			t.Errorf("expected ErrNotHTML, got %v", err)
		}
	})

	t.Run("missing page", func(t *testing.T) {
		_, err := service.InspectPage(context.Background(), server.URL+"/gone")
		if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
			t.Errorf("expected HTTP 404 error, got %v", err)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		if _, err := service.InspectPage(context.Background(), "not a url"); err == nil {
			t.Error("expected error for invalid URL")
		}
	})
}
