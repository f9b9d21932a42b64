package scoreservice

import (
	"context"
	"strings"
)

// GameCatalog answers whether a game id belongs to a published game.
type GameCatalog interface {
	IsKnownGame(ctx context.Context, gameID string) (bool, error)
}

// StaticCatalog is a fixed list of game ids. An empty catalog accepts every game.
type StaticCatalog struct {
	games map[string]struct{}
}

// NewStaticCatalog builds a catalog from a list of game ids.
func NewStaticCatalog(games []string) *StaticCatalog {
	c := &StaticCatalog{games: make(map[string]struct{}, len(games))}
	for _, g := range games {
		if g = strings.TrimSpace(g); g != "" {
			c.games[g] = struct{}{}
		}
	}
	return c
}

func (c *StaticCatalog) IsKnownGame(_ context.Context, gameID string) (bool, error) {
	if len(c.games) == 0 {
		return true, nil
	}
	_, ok := c.games[gameID]
	return ok, nil
}
