package user

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/slotherinee/instgbot/core"
	"github.com/slotherinee/instgbot/pkg/consts/tglimit"
	"github.com/slotherinee/instgbot/pkg/media"
)

// StoryFetcher downloads active Telegram stories over the user session.
// Bot accounts cannot read stories, which is the whole reason the userbot
// exists.
type StoryFetcher struct{}

var _ core.StoryFetcher = (*StoryFetcher)(nil)

func NewStoryFetcher() *StoryFetcher {
	return &StoryFetcher{}
}

func (f *StoryFetcher) FetchStories(ctx context.Context, username string) (*media.Set, error) {
	ectx := GetCtx()
	if ectx == nil {
		return nil, errors.New("user client is not logged in")
	}
	logger := log.FromContext(ctx)
	api := ectx.Raw

	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve username %s: %w", username, err)
	}
	var peerUser *tg.User
	for _, u := range resolved.Users {
		if tu, ok := u.(*tg.User); ok {
			peerUser = tu
			break
		}
	}
	if peerUser == nil {
		return nil, fmt.Errorf("username %s is not a user account", username)
	}

	peerStories, err := api.StoriesGetPeerStories(ctx, &tg.InputPeerUser{
		UserID:     peerUser.ID,
		AccessHash: peerUser.AccessHash,
	})
	if err != nil {
		return nil, fmt.Errorf("get stories of %s: %w", username, err)
	}

	set := &media.Set{}
	for _, sc := range peerStories.Stories.Stories {
		story, ok := sc.(*tg.StoryItem)
		if !ok {
			continue
		}
		item, err := downloadStoryMedia(ctx, api, story.Media)
		if err != nil {
			logger.Warnf("skip story %d of %s: %s", story.ID, username, err)
			continue
		}
		set.Items = append(set.Items, item)
	}
	return set, nil
}

func downloadStoryMedia(ctx context.Context, api *tg.Client, mc tg.MessageMediaClass) (media.Item, error) {
	switch m := mc.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := m.Photo.(*tg.Photo)
		if !ok {
			return media.Item{}, errors.New("photo is inaccessible")
		}
		var largest *tg.PhotoSize
		for _, size := range photo.Sizes {
			if ps, ok := size.(*tg.PhotoSize); ok {
				if largest == nil || ps.W*ps.H > largest.W*largest.H {
					largest = ps
				}
			}
		}
		if largest == nil {
			return media.Item{}, errors.New("no downloadable photo size")
		}
		data, err := fetchLocation(ctx, api, &tg.InputPhotoFileLocation{
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
			ThumbSize:     largest.Type,
		})
		if err != nil {
			return media.Item{}, err
		}
		return media.Item{Kind: media.KindPhoto, Data: data}, nil
	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			return media.Item{}, errors.New("document is inaccessible")
		}
		if doc.Size > tglimit.MaxFileSize {
			return media.Item{}, fmt.Errorf("video is %d bytes, over the delivery ceiling", doc.Size)
		}
		data, err := fetchLocation(ctx, api, doc.AsInputDocumentFileLocation())
		if err != nil {
			return media.Item{}, err
		}
		return media.Item{Kind: media.KindVideo, Data: data}, nil
	default:
		return media.Item{}, fmt.Errorf("unsupported story media %T", mc)
	}
}

func fetchLocation(ctx context.Context, api *tg.Client, loc tg.InputFileLocationClass) ([]byte, error) {
	var buf bytes.Buffer
	_, err := downloader.NewDownloader().
		WithPartSize(tglimit.MaxUploadPartSize).
		Download(api, loc).
		Stream(ctx, &buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
