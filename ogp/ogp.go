// Package ogp resolves destination links into preview cards: provider-aware
// oEmbed lookups for short-form video sites, an OpenGraph/meta scrape for
// everything else, and a hostname fallback when a page yields nothing.
package ogp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Provider classifies a link by its host.
type Provider string

const (
	ProviderInstagram Provider = "instagram"
	ProviderTikTok    Provider = "tiktok"
	ProviderYouTube   Provider = "youtube"
	ProviderX         Provider = "x"
	ProviderWebsite   Provider = "website"
)

// DetectProvider classifies a URL by substring match on its lowered form.
func DetectProvider(rawURL string) Provider {
	u := strings.ToLower(rawURL)
	switch {
	case strings.Contains(u, "instagram.com"):
		return ProviderInstagram
	case strings.Contains(u, "tiktok.com"):
		return ProviderTikTok
	case strings.Contains(u, "youtube.com"), strings.Contains(u, "youtu.be"):
		return ProviderYouTube
	case strings.Contains(u, "twitter.com"), strings.Contains(u, "x.com"):
		return ProviderX
	default:
		return ProviderWebsite
	}
}

// Card is one resolved link preview.
type Card struct {
	URL         string   `json:"url"`
	Provider    Provider `json:"provider,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	SiteName    string   `json:"siteName,omitempty"`
	Favicon     string   `json:"favicon,omitempty"`
}

const (
	cacheSize = 256
	cacheTTL  = 15 * time.Minute

	scrapeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"
)

// Fetcher resolves URLs into cards with a TTL'd LRU in front of the network.
type Fetcher struct {
	client         *http.Client
	cache          *expirable.LRU[string, Card]
	guard          func(*url.URL) error
	tiktokEndpoint string
	metaToken      string
}

// NewFetcher builds a fetcher with the default HTTPS-only guard. The Meta
// oEmbed token is taken from META_APP_ID/META_APP_SECRET when both are set.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:         &http.Client{Timeout: 10 * time.Second},
		cache:          expirable.NewLRU[string, Card](cacheSize, nil, cacheTTL),
		guard:          defaultGuard,
		tiktokEndpoint: "https://www.tiktok.com/oembed",
		metaToken:      metaTokenFromEnv(),
	}
}

func metaTokenFromEnv() string {
	id := os.Getenv("META_APP_ID")
	secret := os.Getenv("META_APP_SECRET")
	if id == "" || secret == "" {
		return ""
	}
	return id + "|" + secret
}

// defaultGuard rejects non-HTTPS targets and private or link-local hosts.
func defaultGuard(u *url.URL) error {
	if u.Scheme != "https" {
		return fmt.Errorf("only https urls are allowed")
	}
	host := u.Hostname()
	if host == "localhost" || host == "0.0.0.0" {
		return fmt.Errorf("private network access not allowed")
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("private network access not allowed")
		}
	}
	return nil
}

// normalizeURL trims and validates a raw URL, keeping only http(s) targets.
func normalizeURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// Resolve fetches a card per URL, concurrently, preserving input order.
// Unparseable entries are dropped; every surviving entry yields a card,
// falling back to a hostname stub on any failure.
func (f *Fetcher) Resolve(ctx context.Context, urls []string) []Card {
	var cleaned []string
	for _, raw := range urls {
		if u, ok := normalizeURL(raw); ok {
			cleaned = append(cleaned, u)
		}
	}

	cards := make([]Card, len(cleaned))
	var wg sync.WaitGroup
	for i, u := range cleaned {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			cards[i] = f.card(ctx, u)
		}(i, u)
	}
	wg.Wait()
	return cards
}

func (f *Fetcher) card(ctx context.Context, target string) Card {
	if hit, ok := f.cache.Get(target); ok {
		return hit
	}

	provider := DetectProvider(target)

	var card Card
	resolved := false
	switch provider {
	case ProviderTikTok:
		if c, ok := f.tiktokOembed(ctx, target); ok {
			card, resolved = c, true
		}
	case ProviderInstagram:
		if c, ok := f.instagramOembed(ctx, target); ok {
			card, resolved = c, true
		}
	}
	if !resolved {
		card = f.scrape(ctx, target)
		card.Provider = provider
	}

	f.cache.Add(target, card)
	return card
}

// fallbackCard is the minimum viable preview when nothing could be scraped.
func fallbackCard(target string) Card {
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return Card{URL: target}
	}
	origin := u.Scheme + "://" + u.Host
	return Card{
		URL:      target,
		Title:    u.Hostname(),
		SiteName: u.Hostname(),
		Favicon:  origin + "/favicon.ico",
	}
}

func (f *Fetcher) scrape(ctx context.Context, target string) Card {
	u, err := url.Parse(target)
	if err != nil {
		return fallbackCard(target)
	}
	if err := f.guard(u); err != nil {
		return fallbackCard(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fallbackCard(target)
	}
	req.Header.Set("User-Agent", scrapeUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "ja,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return fallbackCard(target)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fallbackCard(target)
	}

	page, err := parsePage(resp.Body)
	if err != nil {
		return fallbackCard(target)
	}

	card := Card{
		URL:         target,
		Title:       page.first("og:title", "twitter:title"),
		Description: page.first("og:description", "description", "twitter:description"),
		Image:       page.first("og:image", "twitter:image"),
		SiteName:    page.first("og:site_name", "twitter:site"),
	}
	if card.Title == "" {
		card.Title = page.title
	}
	if card.SiteName == "" {
		card.SiteName = u.Hostname()
	}

	card.Favicon = u.Scheme + "://" + u.Host + "/favicon.ico"
	if page.icon != "" {
		if ref, err := url.Parse(page.icon); err == nil {
			card.Favicon = u.ResolveReference(ref).String()
		}
	}

	if card.Title == "" && card.Description == "" && card.Image == "" {
		return fallbackCard(target)
	}
	return card
}
