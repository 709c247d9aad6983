package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/recipe-favorites/internal/model"
)

var (
	// ErrFavoriteExists is returned when the user already favorited the recipe.
	ErrFavoriteExists = errors.New("recipe already favorited")
	// ErrFavoriteNotFound is returned when no favorite has the requested id.
	ErrFavoriteNotFound = errors.New("favorite not found")
)

const favoriteColumns = "id, user_id, recipe_id, note, created_at, updated_at"

// FavoriteRepo persists favorite_recipes rows.  Uniqueness of (user_id,
// recipe_id) is enforced by the table, and ownership checks on mutation
// run inside a transaction holding the row lock.
type FavoriteRepo struct {
	db *sql.DB
}

// NewFavoriteRepo returns a new FavoriteRepo bound to the given database.
func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFavorite(s rowScanner) (*model.FavoriteRecipe, error) {
	var (
		f    model.FavoriteRecipe
		note sql.NullString
	)
	if err := s.Scan(&f.ID, &f.UserID, &f.RecipeID, &note, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if note.Valid {
		n := note.String
		f.Note = &n
	}
	return &f, nil
}

// Create favorites recipeID for userID and returns the stored row.
func (r *FavoriteRepo) Create(ctx context.Context, userID uint64, recipeID int64) (*model.FavoriteRecipe, error) {
	const q = "INSERT INTO favorite_recipes (user_id, recipe_id) VALUES (?, ?)"
	res, err := r.db.ExecContext(ctx, q, userID, recipeID)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrFavoriteExists
		}
		return nil, fmt.Errorf("insert favorite: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert favorite: %w", err)
	}
	// read back to pick up the column defaults
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a favorite regardless of owner.
func (r *FavoriteRepo) GetByID(ctx context.Context, id uint64) (*model.FavoriteRecipe, error) {
	const q = "SELECT " + favoriteColumns + " FROM favorite_recipes WHERE id = ?"
	f, err := scanFavorite(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFavoriteNotFound
		}
		return nil, fmt.Errorf("select favorite: %w", err)
	}
	return f, nil
}

// GetByUserAndRecipe fetches the favorite a user holds for a recipe.
func (r *FavoriteRepo) GetByUserAndRecipe(ctx context.Context, userID uint64, recipeID int64) (*model.FavoriteRecipe, error) {
	const q = "SELECT " + favoriteColumns + " FROM favorite_recipes WHERE user_id = ? AND recipe_id = ?"
	f, err := scanFavorite(r.db.QueryRowContext(ctx, q, userID, recipeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFavoriteNotFound
		}
		return nil, fmt.Errorf("select favorite: %w", err)
	}
	return f, nil
}

// ListByUser returns a user's favorites in insertion order.  A user with
// no favorites gets an empty, non-nil slice.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID uint64) ([]model.FavoriteRecipe, error) {
	const q = "SELECT " + favoriteColumns + " FROM favorite_recipes WHERE user_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	out := make([]model.FavoriteRecipe, 0)
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		out = append(out, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return out, nil
}

// lockOwnedTx locks the favorite row and checks it belongs to ownerID.
func lockOwnedTx(ctx context.Context, tx *sql.Tx, id, ownerID uint64) error {
	var owner uint64
	err := tx.QueryRowContext(ctx, "SELECT user_id FROM favorite_recipes WHERE id = ? FOR UPDATE", id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFavoriteNotFound
		}
		return fmt.Errorf("lock favorite: %w", err)
	}
	if owner != ownerID {
		return ErrForbidden
	}
	return nil
}

// DeleteByIDAndOwner removes a favorite if it belongs to ownerID.  It
// returns ErrFavoriteNotFound for an unknown id and ErrForbidden, without
// deleting anything, when the row belongs to another user.
func (r *FavoriteRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := lockOwnedTx(ctx, tx, id, ownerID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM favorite_recipes WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// UpdateNoteByIDAndOwner replaces the note of a favorite owned by ownerID
// and returns the updated row.  Errors mirror DeleteByIDAndOwner.
func (r *FavoriteRepo) UpdateNoteByIDAndOwner(ctx context.Context, id, ownerID uint64, note string) (*model.FavoriteRecipe, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := lockOwnedTx(ctx, tx, id, ownerID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE favorite_recipes SET note = ? WHERE id = ?", note, id); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	f, err := scanFavorite(tx.QueryRowContext(ctx, "SELECT "+favoriteColumns+" FROM favorite_recipes WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("reload favorite: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return f, nil
}

// Report counts favorites per recipe across all users, most favorited
// first.  Ties are ordered by recipe id so equal input gives equal output.
func (r *FavoriteRepo) Report(ctx context.Context) ([]model.FavoriteCount, error) {
	const q = `SELECT recipe_id, COUNT(*) AS times_favorited
		FROM favorite_recipes
		GROUP BY recipe_id
		ORDER BY times_favorited DESC, recipe_id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("favorites report: %w", err)
	}
	defer rows.Close()

	out := make([]model.FavoriteCount, 0)
	for rows.Next() {
		var c model.FavoriteCount
		if err := rows.Scan(&c.RecipeID, &c.TimesFavorited); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("favorites report: %w", err)
	}
	return out, nil
}
