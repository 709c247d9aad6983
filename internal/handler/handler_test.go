package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/recipe-favorites/internal/middleware"
	"github.com/iliyamo/recipe-favorites/internal/model"
	"github.com/iliyamo/recipe-favorites/internal/recipeapi"
	"github.com/iliyamo/recipe-favorites/internal/repository"
	"github.com/iliyamo/recipe-favorites/internal/service"
)

// ----- fakes -----

type fakeAuth struct {
	res service.AuthResult
	err error
}

func (f fakeAuth) Register(context.Context, string, string) (service.AuthResult, error) {
	return f.res, f.err
}
func (f fakeAuth) Login(context.Context, string, string) (service.AuthResult, error) {
	return f.res, f.err
}

type fakeProxy struct {
	body     json.RawMessage
	err      error
	term     string
	page     int
	pageSize int
	ids      []int64
}

func (p *fakeProxy) Search(_ context.Context, term string, page, pageSize int) (json.RawMessage, error) {
	p.term, p.page, p.pageSize = term, page, pageSize
	return p.body, p.err
}
func (p *fakeProxy) Summary(context.Context, int64) (json.RawMessage, error) { return p.body, p.err }
func (p *fakeProxy) Bulk(_ context.Context, ids []int64) (json.RawMessage, error) {
	p.ids = ids
	return p.body, p.err
}

type fakeFavorites struct {
	fav       *model.FavoriteRecipe
	list      []model.FavoriteRecipe
	report    model.FavoritesReport
	err       error
	removedBy string
}

func (f *fakeFavorites) Add(context.Context, uint64, int64) (*model.FavoriteRecipe, error) {
	return f.fav, f.err
}
func (f *fakeFavorites) Remove(context.Context, uint64, uint64) error {
	f.removedBy = "favoriteId"
	return f.err
}
func (f *fakeFavorites) RemoveByRecipe(context.Context, uint64, int64) error {
	f.removedBy = "recipeId"
	return f.err
}
func (f *fakeFavorites) UpdateNote(context.Context, uint64, string, uint64) (*model.FavoriteRecipe, error) {
	return f.fav, f.err
}
func (f *fakeFavorites) List(context.Context, uint64) ([]model.FavoriteRecipe, error) {
	return f.list, f.err
}
func (f *fakeFavorites) GetDetails(context.Context, uint64, uint64) (*model.FavoriteRecipe, error) {
	return f.fav, f.err
}
func (f *fakeFavorites) Report(context.Context) (model.FavoritesReport, error) {
	return f.report, f.err
}

// ----- helpers -----

func newCtx(method, target, body string, uid uint64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = middleware.NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != 0 {
		c.Set(middleware.UserIDKey, uid)
	}
	return c, rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	s, _ := m["error"].(string)
	return s
}

// ----- common -----

func TestSanitizeSearchTerm(t *testing.T) {
	cases := map[string]string{
		"pasta":              "pasta",
		"  chicken soup  ":   "chicken soup",
		"mac&cheese; DROP--": "maccheese DROP",
		"<script>x</script>": "scriptxscript",
		"crème brûlée 2":     "crème brûlée 2",
		"!!!":                "",
		"tab\tand\nnewline":  "tabandnewline",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeSearchTerm(in), in)
	}
}

func TestParseID(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "42": true, "0": false, "-1": false, "abc": false, "": false, "9223372036854775808": false} {
		c, _ := newCtx(http.MethodGet, "/", "", 0)
		c.SetParamNames("id")
		c.SetParamValues(raw)
		_, ok := parseID(c, "id")
		assert.Equal(t, want, ok, raw)
	}
}

func TestHealth(t *testing.T) {
	c, rec := newCtx(http.MethodGet, "/healthz", "", 0)
	require.NoError(t, Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

// ----- auth -----

func TestAuthHandler_Register(t *testing.T) {
	res := service.AuthResult{Token: "tok", Expires: time.Now().Add(time.Hour), User: model.PublicUser{ID: 1, Email: "alice@example.com"}}
	h := NewAuthHandler(fakeAuth{res: res}, zerolog.Nop())

	c, rec := newCtx(http.MethodPost, "/api/auth/register", `{"email":"alice@example.com","password":"Passw0rd"}`, 0)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "tok", got["token"])
	user := got["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAuthHandler_RegisterErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
		msg    string
	}{
		{"missing password", `{"email":"a@b.co"}`, nil, http.StatusBadRequest, "password is required"},
		{"bad json", `{"email":`, nil, http.StatusBadRequest, "invalid body"},
		{"too long password", `{"email":"a@b.co","password":"` + strings.Repeat("x", 73) + `"}`, nil, http.StatusBadRequest, "password must be at most 72 characters"},
		{"multibyte password over 72 bytes", `{"email":"a@b.co","password":"` + strings.Repeat("é", 40) + `"}`, service.ErrPasswordTooLong, http.StatusBadRequest, "password must be at most 72 bytes"},
		{"exists", `{"email":"a@b.co","password":"p"}`, service.ErrAlreadyExists, http.StatusBadRequest, "user already exists"},
		{"invalid email", `{"email":"nope","password":"p"}`, service.ErrInvalidEmail, http.StatusBadRequest, "invalid email"},
		{"store down", `{"email":"a@b.co","password":"p"}`, errors.New("db down"), http.StatusInternalServerError, "registration failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(fakeAuth{err: tc.err}, zerolog.Nop())
			c, rec := newCtx(http.MethodPost, "/api/auth/register", tc.body, 0)
			require.NoError(t, h.Register(c))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.msg, errorBody(t, rec))
		})
	}
}

func TestAuthHandler_LoginErrors(t *testing.T) {
	for _, err := range []error{service.ErrNotFound, service.ErrInvalidCredentials, service.ErrMissingFields} {
		h := NewAuthHandler(fakeAuth{err: err}, zerolog.Nop())
		c, rec := newCtx(http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"p"}`, 0)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, err.Error(), errorBody(t, rec))
	}
}

// ----- recipes -----

func TestRecipeHandler_Search(t *testing.T) {
	proxy := &fakeProxy{body: json.RawMessage(`{"results":[{"id":1}]}`)}
	h := NewRecipeHandler(proxy, zerolog.Nop())

	c, rec := newCtx(http.MethodGet, "/api/recipe/search?searchTerm=pasta%21%21&page=2&pageSize=5", "", 0)
	require.NoError(t, h.Search(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[{"id":1}]}`, rec.Body.String())
	assert.Equal(t, "pasta", proxy.term)
	assert.Equal(t, 2, proxy.page)
	assert.Equal(t, 5, proxy.pageSize)
}

func TestRecipeHandler_SearchErrors(t *testing.T) {
	h := NewRecipeHandler(&fakeProxy{}, zerolog.Nop())

	c, rec := newCtx(http.MethodGet, "/api/recipe/search?searchTerm=%3C%3E", "", 0)
	require.NoError(t, h.Search(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newCtx(http.MethodGet, "/api/recipe/search?searchTerm=soup&page=two", "", 0)
	require.NoError(t, h.Search(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = NewRecipeHandler(&fakeProxy{err: recipeapi.ErrUpstreamUnavailable}, zerolog.Nop())
	c, rec = newCtx(http.MethodGet, "/api/recipe/search?searchTerm=soup", "", 0)
	require.NoError(t, h.Search(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "recipe search failed", errorBody(t, rec))
}

func TestRecipeHandler_Summary(t *testing.T) {
	h := NewRecipeHandler(&fakeProxy{body: json.RawMessage(`{"id":42}`)}, zerolog.Nop())

	c, rec := newCtx(http.MethodGet, "/", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("42")
	require.NoError(t, h.Summary(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newCtx(http.MethodGet, "/", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("x")
	require.NoError(t, h.Summary(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ----- favorites -----

func TestFavoriteHandler_RequiresUser(t *testing.T) {
	h := NewFavoriteHandler(&fakeFavorites{}, &fakeProxy{}, zerolog.Nop())
	c, rec := newCtx(http.MethodGet, "/api/recipes/favorite", "", 0)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFavoriteHandler_List(t *testing.T) {
	favs := &fakeFavorites{list: []model.FavoriteRecipe{{ID: 1, RecipeID: 10}, {ID: 2, RecipeID: 20}}}
	proxy := &fakeProxy{body: json.RawMessage(`[{"id":10},{"id":20}]`)}
	h := NewFavoriteHandler(favs, proxy, zerolog.Nop())

	c, rec := newCtx(http.MethodGet, "/api/recipes/favorite", "", 1)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[{"id":10},{"id":20}]}`, rec.Body.String())
	assert.Equal(t, []int64{10, 20}, proxy.ids)
}

func TestFavoriteHandler_Add(t *testing.T) {
	h := NewFavoriteHandler(&fakeFavorites{fav: &model.FavoriteRecipe{ID: 9, UserID: 1, RecipeID: 42}}, &fakeProxy{}, zerolog.Nop())
	c, rec := newCtx(http.MethodPost, "/api/recipes/favorite", `{"recipeId":42}`, 1)
	require.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"recipeId":42`)

	c, rec = newCtx(http.MethodPost, "/api/recipes/favorite", `{"recipeId":-4}`, 1)
	require.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "recipeId must be a positive integer", errorBody(t, rec))

	h = NewFavoriteHandler(&fakeFavorites{err: repository.ErrFavoriteExists}, &fakeProxy{}, zerolog.Nop())
	c, rec = newCtx(http.MethodPost, "/api/recipes/favorite", `{"recipeId":42}`, 1)
	require.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFavoriteHandler_Remove(t *testing.T) {
	favs := &fakeFavorites{}
	h := NewFavoriteHandler(favs, &fakeProxy{}, zerolog.Nop())

	c, rec := newCtx(http.MethodDelete, "/api/recipes/favorite", `{"favoriteId":9}`, 1)
	require.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "favoriteId", favs.removedBy)

	c, rec = newCtx(http.MethodDelete, "/api/recipes/favorite", `{"recipeId":42}`, 1)
	require.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "recipeId", favs.removedBy)

	c, rec = newCtx(http.MethodDelete, "/api/recipes/favorite", `{}`, 1)
	require.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoriteHandler_RemoveErrors(t *testing.T) {
	cases := map[error]int{
		repository.ErrForbidden:        http.StatusForbidden,
		repository.ErrFavoriteNotFound: http.StatusNotFound,
		errors.New("db down"):          http.StatusInternalServerError,
	}
	for err, status := range cases {
		h := NewFavoriteHandler(&fakeFavorites{err: err}, &fakeProxy{}, zerolog.Nop())
		c, rec := newCtx(http.MethodDelete, "/api/recipes/favorite", `{"favoriteId":9}`, 2)
		require.NoError(t, h.Remove(c))
		assert.Equal(t, status, rec.Code, err.Error())
	}
}

func TestFavoriteHandler_UpdateNote(t *testing.T) {
	note := "great soup"
	h := NewFavoriteHandler(&fakeFavorites{fav: &model.FavoriteRecipe{ID: 9, Note: &note}}, &fakeProxy{}, zerolog.Nop())

	c, rec := newCtx(http.MethodPatch, "/", `{"note":"great soup"}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.UpdateNote(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Message         string               `json:"message"`
		UpdatedFavorite model.FavoriteRecipe `json:"updatedFavorite"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Note updated successfully", got.Message)
	require.NotNil(t, got.UpdatedFavorite.Note)
	assert.Equal(t, "great soup", *got.UpdatedFavorite.Note)

	c, rec = newCtx(http.MethodPatch, "/", `{"note":""}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.UpdateNote(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "note is required", errorBody(t, rec))
}

func TestFavoriteHandler_Details(t *testing.T) {
	h := NewFavoriteHandler(&fakeFavorites{err: repository.ErrFavoriteNotFound}, &fakeProxy{}, zerolog.Nop())
	c, rec := newCtx(http.MethodGet, "/", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.Details(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ----- report -----

func TestReportHandler_Favorites(t *testing.T) {
	rep := model.FavoritesReport{
		Title:         "Favorites Report",
		DateGenerated: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Data:          []model.FavoriteCount{{RecipeID: 42, TimesFavorited: 3}},
	}
	h := NewReportHandler(&fakeFavorites{report: rep}, zerolog.Nop())

	c, rec := newCtx(http.MethodGet, "/api/reports/favorites", "", 1)
	require.NoError(t, h.FavoritesReport(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"report":{"title":"Favorites Report","dateGenerated":"2024-05-01T10:00:00Z","data":[{"recipeId":42,"timesFavorited":3}]}}`, rec.Body.String())
}
