package tglimit

import (
	"time"

	"github.com/gotd/td/telegram/uploader"
)

const (
	MaxUploadPartSize = uploader.MaximumPartSize

	// MaxFileSize is the ceiling for any single downloaded resource.
	MaxFileSize = 50 * 1024 * 1024
	// MaxAlbumSize is the ceiling for the summed payload of one grouped send.
	MaxAlbumSize = 40 * 1024 * 1024

	// Per-album item limits. Video payloads dominate bandwidth, so video
	// albums are kept much smaller than photo albums.
	VideoGroupSize = 3
	PhotoGroupSize = 10

	// MaxMessageLength is the transport limit for one text message.
	MaxMessageLength = 4096

	// Spacing between successive sends, to stay under transport throttling.
	GroupSendDelay = 500 * time.Millisecond
	ItemSendDelay  = 200 * time.Millisecond
)
