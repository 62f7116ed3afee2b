package tui

import (
	"errors"

	"github.com/vovakirdan/ghost-match/internal/registry"
	"github.com/vovakirdan/ghost-match/internal/storage"
)

// NewGame creates a registered variant with its persisted high score. With
// resume set, a saved game for the variant is handed to the game and resumed
// on its first Reset.
func NewGame(id string, opts registry.Options, store storage.Store, resume bool) (registry.Game, error) {
	if store != nil {
		high, err := store.HighScore(id)
		if err != nil {
			return nil, err
		}
		opts.HighScore = high

		if resume {
			saved, err := store.LoadGame(id)
			switch {
			case err == nil:
				opts.Saved = &saved
			case errors.Is(err, storage.ErrNoSavedGame):
			default:
				if opts.Logger != nil {
					opts.Logger.Warn("ignoring unreadable saved game", "game", id, "err", err)
				}
			}
		}
	}
	return registry.Create(id, opts)
}

// HasSavedGame reports whether a resumable game exists for id.
func HasSavedGame(store storage.Store, id string) bool {
	if store == nil {
		return false
	}
	_, err := store.LoadGame(id)
	return err == nil
}
