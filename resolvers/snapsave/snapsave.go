// Package snapsave is the generic social-media downloader, scraping the
// snapsave.app service. It handles Instagram, TikTok and Facebook links and
// serves as the fallback resolver for anything more specific.
package snapsave

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/slotherinee/instgbot/common/cache"
	"github.com/slotherinee/instgbot/common/utils/strutil"
	"github.com/slotherinee/instgbot/pkg/media"
)

const endpoint = "https://snapsave.app/action.php?lang=en"

type Resolver struct {
	client *http.Client
}

func New(client *http.Client) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{client: client}
}

func (r *Resolver) Name() string {
	return "snapsave"
}

// CanHandle accepts any http(s) link: snapsave is the last resolver in the
// priority list.
func (r *Resolver) CanHandle(text string) bool {
	return strutil.FirstURL(text) != ""
}

func (r *Resolver) Resolve(ctx context.Context, text string) (*media.Set, error) {
	postURL := normalizeURL(strutil.FirstURL(text))
	if postURL == "" {
		return nil, fmt.Errorf("no url in request")
	}
	if cached, ok := cache.Get[*media.Set]("snapsave:" + postURL); ok {
		return cached, nil
	}

	form := url.Values{"url": {postURL}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "https://snapsave.app")
	req.Header.Set("Referer", "https://snapsave.app/")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapsave: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch snapsave, status code: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapsave response: %w", err)
	}

	html, err := decodeResponse(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapsave response: %w", err)
	}
	set := extractMedia(html)
	if set.Empty() {
		return nil, fmt.Errorf("no media found for %s", postURL)
	}
	cache.Set("snapsave:"+postURL, set)
	return set, nil
}

// normalizeURL strips trailing underscore artifacts some chat clients append
// when a link ends a styled message.
func normalizeURL(u string) string {
	return strings.TrimRight(u, "_*")
}

var (
	downloadHrefRe = regexp.MustCompile(`<a[^>]+href="(https?://[^"]+)"[^>]*>`)
	photoSrcRe     = regexp.MustCompile(`<img[^>]+src="(https?://[^"]+)"`)
	videoExtRe     = regexp.MustCompile(`\.(mp4|mov|webm)(\?|$)`)
	photoExtRe     = regexp.MustCompile(`\.(jpe?g|png|webp|heic)(\?|$)`)
)

// extractMedia pulls download links out of the decoded result markup. Kind
// is judged by the URL extension; extensionless anchors default to video,
// the dominant snapsave payload.
func extractMedia(html string) *media.Set {
	set := &media.Set{}
	seen := make(map[string]bool)
	add := func(u string, kind media.Kind) {
		u = strings.ReplaceAll(u, "&amp;", "&")
		if seen[u] || strings.Contains(u, "snapsave.app") {
			return
		}
		seen[u] = true
		set.Items = append(set.Items, media.Item{Kind: kind, URL: u})
	}
	for _, m := range downloadHrefRe.FindAllStringSubmatch(html, -1) {
		u := m[1]
		switch {
		case photoExtRe.MatchString(u):
			add(u, media.KindPhoto)
		case videoExtRe.MatchString(u):
			add(u, media.KindVideo)
		default:
			add(u, media.KindVideo)
		}
	}
	for _, m := range photoSrcRe.FindAllStringSubmatch(html, -1) {
		if photoExtRe.MatchString(m[1]) {
			add(m[1], media.KindPhoto)
		}
	}
	return set
}
