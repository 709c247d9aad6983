// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// FavoritesQueueName is the durable queue favorite activity is published to.
const FavoritesQueueName = "favorites.activity"

// Favorite activity actions.
const (
	ActionAdded       = "added"
	ActionRemoved     = "removed"
	ActionNoteUpdated = "note_updated"
)

// FavoriteEvent is published after a favorite is added, removed or has its
// note changed.  It carries enough for downstream consumers to log or
// aggregate activity without querying the primary database.
type FavoriteEvent struct {
	EventID    string `json:"event_id"`
	Action     string `json:"action"`
	UserID     uint64 `json:"user_id"`
	FavoriteID uint64 `json:"favorite_id"`
	RecipeID   int64  `json:"recipe_id"`
	Note       string `json:"note,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// NewFavoriteEvent stamps a fresh event id and the current UTC time.
func NewFavoriteEvent(action string, userID, favoriteID uint64, recipeID int64, note string) FavoriteEvent {
	return FavoriteEvent{
		EventID:    uuid.NewString(),
		Action:     action,
		UserID:     userID,
		FavoriteID: favoriteID,
		RecipeID:   recipeID,
		Note:       note,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
