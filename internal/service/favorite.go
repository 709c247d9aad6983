package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-favorites/internal/model"
	"github.com/iliyamo/recipe-favorites/internal/queue"
	"github.com/iliyamo/recipe-favorites/internal/repository"
)

var (
	ErrMissingNote     = errors.New("note is required")
	ErrInvalidRecipeID = errors.New("recipeId must be a positive integer")
)

const reportTitle = "Favorites Report"

// FavoriteStore is the persistence the favorites workflow relies on.
type FavoriteStore interface {
	Create(ctx context.Context, userID uint64, recipeID int64) (*model.FavoriteRecipe, error)
	GetByID(ctx context.Context, id uint64) (*model.FavoriteRecipe, error)
	GetByUserAndRecipe(ctx context.Context, userID uint64, recipeID int64) (*model.FavoriteRecipe, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.FavoriteRecipe, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
	UpdateNoteByIDAndOwner(ctx context.Context, id, ownerID uint64, note string) (*model.FavoriteRecipe, error)
	Report(ctx context.Context) ([]model.FavoriteCount, error)
}

// FavoriteService applies the favorites rules on top of a FavoriteStore and
// publishes an activity event after every committed mutation.  Repository
// sentinels (ErrFavoriteExists, ErrFavoriteNotFound, ErrForbidden) pass
// through unchanged.
type FavoriteService struct {
	store FavoriteStore
	pub   queue.Publisher
	log   zerolog.Logger
	now   func() time.Time
}

func NewFavoriteService(store FavoriteStore, pub queue.Publisher, log zerolog.Logger) *FavoriteService {
	if pub == nil {
		pub = queue.NopPublisher{}
	}
	return &FavoriteService{store: store, pub: pub, log: log, now: time.Now}
}

// Add favorites recipeID for userID.
func (s *FavoriteService) Add(ctx context.Context, userID uint64, recipeID int64) (*model.FavoriteRecipe, error) {
	if recipeID <= 0 {
		return nil, ErrInvalidRecipeID
	}
	f, err := s.store.Create(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.ActionAdded, f)
	return f, nil
}

// Remove deletes a favorite owned by userID.
func (s *FavoriteService) Remove(ctx context.Context, userID, favoriteID uint64) error {
	f, err := s.store.GetByID(ctx, favoriteID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByIDAndOwner(ctx, favoriteID, userID); err != nil {
		return err
	}
	s.publish(ctx, queue.ActionRemoved, f)
	return nil
}

// RemoveByRecipe deletes the favorite userID holds for recipeID.
func (s *FavoriteService) RemoveByRecipe(ctx context.Context, userID uint64, recipeID int64) error {
	if recipeID <= 0 {
		return ErrInvalidRecipeID
	}
	f, err := s.store.GetByUserAndRecipe(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByIDAndOwner(ctx, f.ID, userID); err != nil {
		return err
	}
	s.publish(ctx, queue.ActionRemoved, f)
	return nil
}

// UpdateNote replaces the note on a favorite owned by requesterID.  A note
// that is empty after trimming is rejected.
func (s *FavoriteService) UpdateNote(ctx context.Context, favoriteID uint64, note string, requesterID uint64) (*model.FavoriteRecipe, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, ErrMissingNote
	}
	f, err := s.store.UpdateNoteByIDAndOwner(ctx, favoriteID, requesterID, note)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.ActionNoteUpdated, f)
	return f, nil
}

// List returns userID's favorites in insertion order.
func (s *FavoriteService) List(ctx context.Context, userID uint64) ([]model.FavoriteRecipe, error) {
	return s.store.ListByUser(ctx, userID)
}

// GetDetails returns a favorite owned by requesterID.  Another user's
// favorite is reported as not found so its existence is not disclosed.
func (s *FavoriteService) GetDetails(ctx context.Context, requesterID, favoriteID uint64) (*model.FavoriteRecipe, error) {
	f, err := s.store.GetByID(ctx, favoriteID)
	if err != nil {
		return nil, err
	}
	if f.UserID != requesterID {
		return nil, repository.ErrFavoriteNotFound
	}
	return f, nil
}

// Report aggregates favorites across every user, most favorited first.
func (s *FavoriteService) Report(ctx context.Context) (model.FavoritesReport, error) {
	rows, err := s.store.Report(ctx)
	if err != nil {
		return model.FavoritesReport{}, fmt.Errorf("favorites report: %w", err)
	}
	return model.FavoritesReport{
		Title:         reportTitle,
		DateGenerated: s.now().UTC(),
		Data:          rows,
	}, nil
}

// publish is best-effort: a broker failure is logged and never fails the
// request that triggered it.
func (s *FavoriteService) publish(ctx context.Context, action string, f *model.FavoriteRecipe) {
	note := ""
	if f.Note != nil {
		note = *f.Note
	}
	ev := queue.NewFavoriteEvent(action, f.UserID, f.ID, f.RecipeID, note)
	if err := s.pub.PublishFavorite(ctx, ev); err != nil {
		s.log.Warn().Err(err).
			Str("action", action).
			Uint64("favorite_id", f.ID).
			Msg("favorite event not published")
	}
}
