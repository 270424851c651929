package ogp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		url  string
		want Provider
	}{
		{"https://www.instagram.com/p/abc/", ProviderInstagram},
		{"https://vm.tiktok.com/ZSxyz/", ProviderTikTok},
		{"https://www.youtube.com/watch?v=abc", ProviderYouTube},
		{"https://youtu.be/abc", ProviderYouTube},
		{"https://twitter.com/user/status/1", ProviderX},
		{"https://x.com/user/status/1", ProviderX},
		{"https://example.com/blog", ProviderWebsite},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectProvider(tt.url), tt.url)
	}
}

func TestNormalizeURL(t *testing.T) {
	got, ok := normalizeURL("  https://example.com/path ")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/path", got)

	_, ok = normalizeURL("ftp://example.com/file")
	assert.False(t, ok)

	_, ok = normalizeURL("not a url at all ::")
	assert.False(t, ok)

	_, ok = normalizeURL("/relative/only")
	assert.False(t, ok)
}

func TestDefaultGuard(t *testing.T) {
	blocked := []string{
		"http://example.com/",
		"https://localhost/admin",
		"https://127.0.0.1/",
		"https://10.0.0.5/",
		"https://192.168.1.1/",
		"https://172.20.0.1/",
		"https://169.254.169.254/latest/meta-data",
		"https://0.0.0.0/",
	}
	for _, raw := range blocked {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Error(t, defaultGuard(u), raw)
	}

	u, err := url.Parse("https://example.com/page")
	require.NoError(t, err)
	assert.NoError(t, defaultGuard(u))
}

func TestFallbackCard(t *testing.T) {
	card := fallbackCard("https://example.com/some/page")
	assert.Equal(t, "example.com", card.Title)
	assert.Equal(t, "example.com", card.SiteName)
	assert.Equal(t, "https://example.com/favicon.ico", card.Favicon)
}

func testFetcher(srv *httptest.Server) *Fetcher {
	return &Fetcher{
		client:         srv.Client(),
		cache:          expirable.NewLRU[string, Card](8, nil, time.Minute),
		guard:          func(*url.URL) error { return nil },
		tiktokEndpoint: srv.URL + "/oembed",
	}
}

const ogPage = `<!doctype html><html><head>
<title>素のタイトル</title>
<meta property="og:title" content="清水寺 | 観光案内">
<meta property="og:description" content="音羽山清水寺の公式情報">
<meta property="og:image" content="https://example.com/kiyomizu.jpg">
<meta property="og:site_name" content="京都観光">
<link rel="icon" href="/static/favicon.png">
</head><body>hello</body></html>`

func TestScrapeReadsOpenGraphTags(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "text/html")
		fmt.Fprint(w, ogPage)
	}))
	defer srv.Close()

	f := testFetcher(srv)
	cards := f.Resolve(context.Background(), []string{srv.URL + "/spot"})
	require.Len(t, cards, 1)

	card := cards[0]
	assert.Equal(t, "清水寺 | 観光案内", card.Title)
	assert.Equal(t, "音羽山清水寺の公式情報", card.Description)
	assert.Equal(t, "https://example.com/kiyomizu.jpg", card.Image)
	assert.Equal(t, "京都観光", card.SiteName)
	assert.Equal(t, srv.URL+"/static/favicon.png", card.Favicon)
	assert.Equal(t, ProviderWebsite, card.Provider)
}

func TestScrapeFallsBackToTitleTag(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>ただのページ</title><meta name="description" content="説明文"></head></html>`)
	}))
	defer srv.Close()

	cards := testFetcher(srv).Resolve(context.Background(), []string{srv.URL})
	require.Len(t, cards, 1)
	assert.Equal(t, "ただのページ", cards[0].Title)
	assert.Equal(t, "説明文", cards[0].Description)
}

func TestScrapeEmptyPageYieldsFallback(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head></head><body></body></html>`)
	}))
	defer srv.Close()

	cards := testFetcher(srv).Resolve(context.Background(), []string{srv.URL + "/empty"})
	require.Len(t, cards, 1)

	host, err := url.Parse(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, host.Hostname(), cards[0].Title)
}

func TestScrapeErrorStatusYieldsFallback(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	cards := testFetcher(srv).Resolve(context.Background(), []string{srv.URL + "/forbidden"})
	require.Len(t, cards, 1)
	assert.Empty(t, cards[0].Description)
	assert.NotEmpty(t, cards[0].Title)
}

func TestResolveCachesByURL(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, ogPage)
	}))
	defer srv.Close()

	f := testFetcher(srv)
	target := srv.URL + "/cached"
	f.Resolve(context.Background(), []string{target})
	f.Resolve(context.Background(), []string{target})
	assert.Equal(t, int64(1), hits.Load())
}

func TestResolveDropsInvalidAndKeepsOrder(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><title>%s</title><meta name="description" content="d"></head></html>`, r.URL.Path)
	}))
	defer srv.Close()

	f := testFetcher(srv)
	cards := f.Resolve(context.Background(), []string{
		srv.URL + "/first",
		"ftp://nope",
		srv.URL + "/second",
	})
	require.Len(t, cards, 2)
	assert.Equal(t, "/first", cards[0].Title)
	assert.Equal(t, "/second", cards[1].Title)
}

func TestTikTokOembedPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.Contains(r.URL.RawQuery, "url="))
		fmt.Fprint(w, `{"title":"ダンス動画","author_name":"dancer","thumbnail_url":"https://cdn.example/t.jpg","provider_name":"TikTok"}`)
	})
	srv := httptest.NewTLSServer(mux)
	defer srv.Close()

	f := testFetcher(srv)
	card, ok := f.tiktokOembed(context.Background(), "https://www.tiktok.com/@dancer/video/1")
	require.True(t, ok)
	assert.Equal(t, "ダンス動画", card.Title)
	assert.Equal(t, "@dancer", card.Description)
	assert.Equal(t, "https://cdn.example/t.jpg", card.Image)
	assert.Equal(t, ProviderTikTok, card.Provider)
}

func TestInstagramOembedNeedsToken(t *testing.T) {
	f := &Fetcher{client: http.DefaultClient}
	_, ok := f.instagramOembed(context.Background(), "https://www.instagram.com/p/abc/")
	assert.False(t, ok)
}
