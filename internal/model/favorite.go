package model

import "time"

// FavoriteRecipe records that a user favorited a recipe from the external
// catalog.  Only the catalog id is stored locally, never recipe content.
// A user can favorite a given recipe at most once.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the favorite.
//  RecipeID  – id of the recipe in the external catalog.
//  Note      – optional free-text note written by the owner (nullable).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type FavoriteRecipe struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	RecipeID  int64     `json:"recipeId"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FavoriteCount is one row of the favorites report.
type FavoriteCount struct {
	RecipeID       int64 `json:"recipeId"`
	TimesFavorited int64 `json:"timesFavorited"`
}

// FavoritesReport aggregates favorites across all users, most popular
// recipe first.
type FavoritesReport struct {
	Title         string          `json:"title"`
	DateGenerated time.Time       `json:"dateGenerated"`
	Data          []FavoriteCount `json:"data"`
}
