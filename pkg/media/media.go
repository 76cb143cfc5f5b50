// Package media defines the resolved-media model shared by resolvers and
// the delivery core.
package media

import "strings"

type Kind string

const (
	KindVideo Kind = "video"
	KindPhoto Kind = "photo"
)

func (k Kind) String() string {
	return string(k)
}

// Item is a single remote media resource produced by a resolver. It has no
// persistent identity: ownership passes to the delivery layer for one
// attempt and the item is discarded afterwards.
type Item struct {
	Kind Kind
	URL  string
	// Data is set instead of URL when the resolver already holds the bytes
	// (Telegram stories are downloaded over the user session directly).
	Data []byte
}

// Resolvable reports whether the item can produce bytes at all.
func (i Item) Resolvable() bool {
	return i.URL != "" || len(i.Data) > 0
}

// Set is the full resolver output for one request, ordered as resolved.
type Set struct {
	Items []Item
}

func (s *Set) Videos() []Item {
	return s.byKind(KindVideo)
}

func (s *Set) Photos() []Item {
	return s.byKind(KindPhoto)
}

func (s *Set) byKind(k Kind) []Item {
	items := make([]Item, 0, len(s.Items))
	for _, item := range s.Items {
		if item.Kind == k {
			items = append(items, item)
		}
	}
	return items
}

func (s *Set) Empty() bool {
	return s == nil || len(s.Items) == 0
}

// DominantKind is the kind recorded in the ledger for a mixed set: photo
// when any photos were resolved, video otherwise.
func (s *Set) DominantKind() Kind {
	if len(s.Photos()) > 0 {
		return KindPhoto
	}
	return KindVideo
}

// Platform identifies the source site of a request, for ledger bookkeeping.
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
	PlatformThreads   Platform = "threads"
	PlatformTelegram  Platform = "telegram"
	PlatformUnknown   Platform = "unknown"
)

func (p Platform) String() string {
	return string(p)
}

func DetectPlatform(url string) Platform {
	switch {
	case strings.Contains(url, "tiktok.com"):
		return PlatformTikTok
	case strings.Contains(url, "instagram.com"):
		return PlatformInstagram
	case strings.Contains(url, "facebook.com"), strings.Contains(url, "fb.com"):
		return PlatformFacebook
	case strings.Contains(url, "twitter.com"), strings.Contains(url, "x.com"):
		return PlatformTwitter
	case strings.Contains(url, "threads.com"), strings.Contains(url, "threads.net"):
		return PlatformThreads
	case strings.Contains(url, "youtube.com"), strings.Contains(url, "youtu.be"):
		return PlatformYouTube
	default:
		return PlatformUnknown
	}
}
