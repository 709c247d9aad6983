package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/recipe-favorites/internal/model"
	"github.com/iliyamo/recipe-favorites/internal/queue"
	"github.com/iliyamo/recipe-favorites/internal/repository"
)

type memUsers struct {
	mu     sync.Mutex
	byMail map[string]model.User
	nextID uint64
	getErr error
}

func newMemUsers() *memUsers { return &memUsers{byMail: map[string]model.User{}} }

func (m *memUsers) Create(_ context.Context, email, hash string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byMail[email]; ok {
		return model.User{}, repository.ErrEmailExists
	}
	m.nextID++
	u := model.User{ID: m.nextID, Email: email, PasswordHash: hash}
	m.byMail[email] = u
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return model.User{}, m.getErr
	}
	u, ok := m.byMail[email]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

type memFavorites struct {
	mu     sync.Mutex
	rows   map[uint64]model.FavoriteRecipe
	nextID uint64
}

func newMemFavorites() *memFavorites { return &memFavorites{rows: map[uint64]model.FavoriteRecipe{}} }

func (m *memFavorites) Create(_ context.Context, userID uint64, recipeID int64) (*model.FavoriteRecipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.rows {
		if f.UserID == userID && f.RecipeID == recipeID {
			return nil, repository.ErrFavoriteExists
		}
	}
	m.nextID++
	f := model.FavoriteRecipe{ID: m.nextID, UserID: userID, RecipeID: recipeID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.rows[f.ID] = f
	return &f, nil
}

func (m *memFavorites) GetByID(_ context.Context, id uint64) (*model.FavoriteRecipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrFavoriteNotFound
	}
	return &f, nil
}

func (m *memFavorites) GetByUserAndRecipe(_ context.Context, userID uint64, recipeID int64) (*model.FavoriteRecipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.rows {
		if f.UserID == userID && f.RecipeID == recipeID {
			return &f, nil
		}
	}
	return nil, repository.ErrFavoriteNotFound
}

func (m *memFavorites) ListByUser(_ context.Context, userID uint64) ([]model.FavoriteRecipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.FavoriteRecipe, 0)
	for _, f := range m.rows {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memFavorites) owned(id, ownerID uint64) (model.FavoriteRecipe, error) {
	f, ok := m.rows[id]
	if !ok {
		return f, repository.ErrFavoriteNotFound
	}
	if f.UserID != ownerID {
		return f, repository.ErrForbidden
	}
	return f, nil
}

func (m *memFavorites) DeleteByIDAndOwner(_ context.Context, id, ownerID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.owned(id, ownerID); err != nil {
		return err
	}
	delete(m.rows, id)
	return nil
}

func (m *memFavorites) UpdateNoteByIDAndOwner(_ context.Context, id, ownerID uint64, note string) (*model.FavoriteRecipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.owned(id, ownerID)
	if err != nil {
		return nil, err
	}
	f.Note = &note
	m.rows[id] = f
	return &f, nil
}

func (m *memFavorites) Report(context.Context) ([]model.FavoriteCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[int64]int64{}
	for _, f := range m.rows {
		counts[f.RecipeID]++
	}
	out := make([]model.FavoriteCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, model.FavoriteCount{RecipeID: id, TimesFavorited: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimesFavorited != out[j].TimesFavorited {
			return out[i].TimesFavorited > out[j].TimesFavorited
		}
		return out[i].RecipeID < out[j].RecipeID
	})
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.FavoriteEvent
	err    error
}

func (p *recordingPublisher) PublishFavorite(_ context.Context, ev queue.FavoriteEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Action
	}
	return out
}

var errBoom = errors.New("boom")
