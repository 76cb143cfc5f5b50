// Package ytshorts resolves YouTube Shorts by downloading them with yt-dlp
// into a temporary directory and returning the resulting bytes.
package ytshorts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	ytdlp "github.com/lrstanley/go-ytdlp"
	"github.com/slotherinee/instgbot/common/utils/strutil"
	"github.com/slotherinee/instgbot/pkg/consts/tglimit"
	"github.com/slotherinee/instgbot/pkg/media"
)

type Resolver struct{}

func New() *Resolver {
	return &Resolver{}
}

func (r *Resolver) Name() string {
	return "ytshorts"
}

func (r *Resolver) CanHandle(text string) bool {
	return strings.Contains(text, "youtube.com/shorts/") || strings.Contains(text, "youtu.be/shorts/")
}

func (r *Resolver) Resolve(ctx context.Context, text string) (*media.Set, error) {
	logger := log.FromContext(ctx)
	shortURL := strutil.FirstURL(text)
	if shortURL == "" {
		return nil, errors.New("no shorts url in request")
	}

	tempDir, err := os.MkdirTemp("", "ytshorts-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	cmd := ytdlp.New().
		Output(filepath.Join(tempDir, "%(id)s.%(ext)s")).
		FormatSort("res,ext:mp4:m4a").
		RecodeVideo("mp4").
		RestrictFilenames().
		MaxFileSize(fmt.Sprintf("%d", int64(tglimit.MaxFileSize)))

	result, err := cmd.Run(ctx, shortURL)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("yt-dlp execution failed: %w", err)
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("yt-dlp exited with code %d: %s", result.ExitCode, result.Stderr)
	}

	files, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp directory: %w", err)
	}
	set := &media.Set{}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(tempDir, file.Name()))
		if err != nil {
			logger.Warn("Failed to read downloaded file", "file", file.Name(), "err", err)
			continue
		}
		logger.Debug("Downloaded shorts file", "file", file.Name(), "size", len(data))
		set.Items = append(set.Items, media.Item{Kind: media.KindVideo, Data: data})
	}
	if set.Empty() {
		return nil, errors.New("no mp4 produced for shorts url")
	}
	return set, nil
}
