package core

import (
	"regexp"
	"strings"

	"github.com/slotherinee/instgbot/pkg/media"
)

type RequestKind int

const (
	RequestUnknown RequestKind = iota
	RequestLink
	RequestYouTubeShorts
	RequestThreads
	RequestStory
	RequestAdminCommand
)

type Classification struct {
	Kind     RequestKind
	Platform media.Platform
	// Username is the story target without the leading @, set only for
	// RequestStory.
	Username string
}

var storyRe = regexp.MustCompile(`^@(\w{5,32})\b`)

// Classify maps a raw request text to its request class. The rules form a
// priority list: the first match wins. A "/"-prefixed text from an admin is
// a command even when it contains a link; from anyone else it may still
// classify as a link.
func Classify(text string, admin bool) Classification {
	trimmed := strings.TrimSpace(text)
	switch {
	case strings.Contains(trimmed, "youtube.com/shorts/"), strings.Contains(trimmed, "youtu.be/shorts/"):
		return Classification{Kind: RequestYouTubeShorts, Platform: media.PlatformYouTube}
	case strings.Contains(trimmed, "threads.com"), strings.Contains(trimmed, "threads.net"):
		return Classification{Kind: RequestThreads, Platform: media.PlatformThreads}
	case storyRe.MatchString(trimmed):
		return Classification{
			Kind:     RequestStory,
			Platform: media.PlatformTelegram,
			Username: storyRe.FindStringSubmatch(trimmed)[1],
		}
	case admin && strings.HasPrefix(trimmed, "/"):
		return Classification{Kind: RequestAdminCommand}
	case isLink(trimmed):
		return Classification{Kind: RequestLink, Platform: media.DetectPlatform(trimmed)}
	default:
		return Classification{Kind: RequestUnknown, Platform: media.PlatformUnknown}
	}
}

func isLink(trimmed string) bool {
	if trimmed == "" || len(trimmed) < 10 {
		return false
	}
	return strings.Contains(trimmed, "http://") || strings.Contains(trimmed, "https://")
}
