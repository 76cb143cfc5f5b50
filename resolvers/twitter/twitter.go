// Package twitter resolves tweet media through the fxtwitter API.
package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/slotherinee/instgbot/common/cache"
	"github.com/slotherinee/instgbot/pkg/media"
)

const fxTwitterAPI = "api.fxtwitter.com"

var tweetURLRegexp = regexp.MustCompile(`(?:twitter|x)\.com/([^/]+)/status/(\d+)`)

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
	return "twitter"
}

func (r *Resolver) CanHandle(text string) bool {
	return tweetURLRegexp.MatchString(text)
}

type fxResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Tweet   struct {
		Media struct {
			All []struct {
				Type string `json:"type"`
				URL  string `json:"url"`
			} `json:"all"`
		} `json:"media"`
	} `json:"tweet"`
}

func (r *Resolver) Resolve(ctx context.Context, text string) (*media.Set, error) {
	matches := tweetURLRegexp.FindStringSubmatch(text)
	if len(matches) < 3 {
		return nil, errors.New("invalid tweet url")
	}
	id := matches[2]
	if cached, ok := cache.Get[*media.Set]("twitter:" + id); ok {
		return cached, nil
	}

	apiURL := fmt.Sprintf("https://%s/_/status/%s", fxTwitterAPI, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to Twitter API: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Twitter API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch Twitter API, status code: %d", resp.StatusCode)
	}
	var fxResp fxResponse
	if err := json.NewDecoder(resp.Body).Decode(&fxResp); err != nil {
		return nil, fmt.Errorf("failed to decode Twitter API response: %w", err)
	}
	if fxResp.Code != 200 {
		return nil, fmt.Errorf("request twitter API error: %s", fxResp.Message)
	}
	if len(fxResp.Tweet.Media.All) == 0 {
		return nil, errors.New("no media found in the tweet")
	}

	set := &media.Set{}
	for _, m := range fxResp.Tweet.Media.All {
		if m.URL == "" {
			continue
		}
		kind := media.KindPhoto
		if m.Type == "video" || m.Type == "gif" {
			kind = media.KindVideo
		}
		set.Items = append(set.Items, media.Item{Kind: kind, URL: m.URL})
	}
	if set.Empty() {
		return nil, errors.New("no usable media in the tweet")
	}
	cache.Set("twitter:"+id, set)
	return set, nil
}
