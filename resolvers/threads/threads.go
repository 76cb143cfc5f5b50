// Package threads resolves Threads posts through the third-party
// threadsphotodownloader API.
package threads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/slotherinee/instgbot/common/cache"
	"github.com/slotherinee/instgbot/common/utils/strutil"
	"github.com/slotherinee/instgbot/pkg/media"
)

const apiHost = "api.threadsphotodownloader.com"

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
	return "threads"
}

func (r *Resolver) CanHandle(text string) bool {
	return strings.Contains(text, "threads.net") || strings.Contains(text, "threads.com")
}

type apiResponse struct {
	ImageURLs []string          `json:"image_urls"`
	VideoURLs []json.RawMessage `json:"video_urls"`
}

// videoURL tolerates both historical shapes of the video_urls field: plain
// strings and {"download_url": ...} objects.
func videoURL(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		DownloadURL string `json:"download_url"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.DownloadURL
	}
	return ""
}

func (r *Resolver) Resolve(ctx context.Context, text string) (*media.Set, error) {
	postURL := strutil.FirstURL(text)
	if postURL == "" {
		return nil, fmt.Errorf("no threads url in request")
	}
	if cached, ok := cache.Get[*media.Set]("threads:" + postURL); ok {
		return cached, nil
	}

	apiURL := fmt.Sprintf("https://%s/v2/media?url=%s", apiHost, url.QueryEscape(postURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch threads API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch threads API, status code: %d", resp.StatusCode)
	}
	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode threads API response: %w", err)
	}

	set := &media.Set{}
	for _, raw := range apiResp.VideoURLs {
		if u := videoURL(raw); u != "" {
			set.Items = append(set.Items, media.Item{Kind: media.KindVideo, URL: u})
		}
	}
	for _, u := range apiResp.ImageURLs {
		if u != "" {
			set.Items = append(set.Items, media.Item{Kind: media.KindPhoto, URL: u})
		}
	}
	if set.Empty() {
		return nil, fmt.Errorf("no media found in threads post")
	}
	cache.Set("threads:"+postURL, set)
	return set, nil
}
