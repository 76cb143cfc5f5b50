// Package resolvers assembles the media resolvers in matching priority
// order: specialized resolvers first, the generic snapsave client last.
package resolvers

import (
	"net/http"

	"github.com/slotherinee/instgbot/core"
	"github.com/slotherinee/instgbot/resolvers/snapsave"
	"github.com/slotherinee/instgbot/resolvers/threads"
	"github.com/slotherinee/instgbot/resolvers/twitter"
	"github.com/slotherinee/instgbot/resolvers/ytshorts"
)

func All(client *http.Client) []core.Resolver {
	return []core.Resolver{
		ytshorts.New(),
		threads.New(client),
		twitter.New(client),
		snapsave.New(client),
	}
}
