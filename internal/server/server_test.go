package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/rickmortyapi/internal/config"
	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/internal/testutil"
	"anoa.com/rickmortyapi/pkg/dto"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t  *testing.T
	db *gorm.DB
	h  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithRedis(t, nil)
}

func newTestServerWithRedis(t *testing.T, rdb *redis.Client) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	srv := NewServer(Deps{
		Config: &config.Config{
			AppEnv:             "test",
			JWTSecret:          "server-test-secret",
			JWTTTL:             time.Hour,
			LoginMaxAttempts:   5,
			LoginLockoutWindow: time.Minute,
		},
		DB:    db,
		Redis: rdb,
	})
	return &testServer{t: t, db: db, h: srv.Handler()}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			s.t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/login", "", map[string]string{"email": email, "password": password})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body)
	}
	var res struct {
		AccessToken string `json:"access_token"`
	}
	decode(s.t, rec, &res)
	return res.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, want, rec.Body)
	}
}

func TestWorkedExample(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/users", "", map[string]string{"email": "a@b.com", "password": "x"})
	expectStatus(t, rec, http.StatusCreated)
	var user dto.UserResponse
	decode(t, rec, &user)
	if user.ID != 1 || user.Email != "a@b.com" {
		t.Fatalf("created user = %+v", user)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Errorf("user response leaks the password: %s", rec.Body)
	}

	var stored entity.User
	if err := s.db.First(&stored, 1).Error; err != nil {
		t.Fatal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("x")) != nil {
		t.Errorf("stored password is not a bcrypt hash of x")
	}

	token := s.login("a@b.com", "x")
	if token == "" {
		t.Fatal("empty access token")
	}

	for i := 1; i <= 5; i++ {
		rec := s.do(http.MethodPost, "/characters", token, map[string]string{
			"name": fmt.Sprintf("Character %d", i), "status": "Alive", "species": "Human", "gender": "Male",
		})
		expectStatus(t, rec, http.StatusCreated)
	}

	rec = s.do(http.MethodPost, "/users/1/favorites", token, map[string]uint{"character_id": 5})
	expectStatus(t, rec, http.StatusCreated)
	var fav dto.FavoriteResponse
	decode(t, rec, &fav)
	if fav.Character == nil || fav.Character.ID != 5 || fav.User == nil || *fav.User != "a@b.com" {
		t.Errorf("favorite = %+v", fav)
	}

	rec = s.do(http.MethodPost, "/users/1/favorites", token, map[string]uint{"character_id": 5})
	expectStatus(t, rec, http.StatusConflict)

	var count int64
	s.db.Model(&entity.Favorite{}).Count(&count)
	if count != 1 {
		t.Errorf("favorites = %d, want 1", count)
	}
}

func TestLogin_FailuresLookAlike(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "a@b.com", "right", false)

	wrong := s.do(http.MethodPost, "/login", "", map[string]string{"email": "a@b.com", "password": "wrong"})
	unknown := s.do(http.MethodPost, "/login", "", map[string]string{"email": "nobody@b.com", "password": "wrong"})

	expectStatus(t, wrong, http.StatusUnauthorized)
	expectStatus(t, unknown, http.StatusUnauthorized)
	if wrong.Body.String() != unknown.Body.String() {
		t.Errorf("bodies differ: %s vs %s", wrong.Body, unknown.Body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/characters"},
		{http.MethodPut, "/episodes/1"},
		{http.MethodDelete, "/locations/1"},
		{http.MethodPost, "/users/1/favorites"},
		{http.MethodPost, "/favorites"},
		{http.MethodGet, "/infoperfil"},
		{http.MethodGet, "/admin/users"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := s.do(r.method, r.path, "", `{}`)
			expectStatus(t, rec, http.StatusUnauthorized)
		})
	}

	rec := s.do(http.MethodPost, "/characters", "not-a-token", `{}`)
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestInfoPerfil(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "rick@c137.com", "x", false)
	token := s.login("rick@c137.com", "x")

	rec := s.do(http.MethodGet, "/infoperfil", token, nil)
	expectStatus(t, rec, http.StatusOK)
	var res struct {
		LoggedInAs string `json:"logged_in_as"`
		ID         uint   `json:"id"`
	}
	decode(t, rec, &res)
	if res.LoggedInAs != "rick@c137.com" || res.ID != 1 {
		t.Errorf("infoperfil = %+v", res)
	}
}

func TestFavoriteOwnership(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "alice@b.com", "x", false)
	testutil.CreateUser(t, s.db, "bob@b.com", "x", false)
	testutil.CreateUser(t, s.db, "admin@b.com", "x", true)
	testutil.CreateCharacter(t, s.db, "Rick")

	bob := s.login("bob@b.com", "x")
	rec := s.do(http.MethodPost, "/users/1/favorites", bob, map[string]uint{"character_id": 1})
	expectStatus(t, rec, http.StatusNotFound)

	rec = s.do(http.MethodPost, "/favorites", bob, map[string]uint{"user_id": 1, "character_id": 1})
	expectStatus(t, rec, http.StatusNotFound)

	admin := s.login("admin@b.com", "x")
	rec = s.do(http.MethodPost, "/favorites", admin, map[string]uint{"user_id": 1, "character_id": 1})
	expectStatus(t, rec, http.StatusCreated)

	rec = s.do(http.MethodGet, "/users/1/favorites", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var favorites []dto.FavoriteResponse
	decode(t, rec, &favorites)
	if len(favorites) != 1 {
		t.Fatalf("alice favorites = %d, want 1", len(favorites))
	}

	rec = s.do(http.MethodDelete, fmt.Sprintf("/users/2/favorites/%d", favorites[0].ID), "", nil)
	expectStatus(t, rec, http.StatusNotFound)
	rec = s.do(http.MethodDelete, fmt.Sprintf("/users/1/favorites/%d", favorites[0].ID), "", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestFavoriteValidation(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "a@b.com", "x", false)
	token := s.login("a@b.com", "x")

	tests := []struct {
		name string
		body any
		want int
	}{
		{"no reference", map[string]any{}, http.StatusBadRequest},
		{"unknown character", map[string]uint{"character_id": 7}, http.StatusNotFound},
		{"unknown field", `{"character_id":1,"planet":"earth"}`, http.StatusBadRequest},
		{"malformed", `{"character_id":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/users/1/favorites", token, tt.body)
			expectStatus(t, rec, tt.want)
		})
	}

	var count int64
	s.db.Model(&entity.Favorite{}).Count(&count)
	if count != 0 {
		t.Errorf("favorites = %d, want 0", count)
	}
}

func TestDeleteUser_CascadesFavorites(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice@b.com", "x", false)
	bob := testutil.CreateUser(t, s.db, "bob@b.com", "x", false)
	rick := testutil.CreateCharacter(t, s.db, "Rick")
	favs := []entity.Favorite{
		{UserID: alice.ID, CharacterID: &rick.ID},
		{UserID: bob.ID, CharacterID: &rick.ID},
	}
	if err := s.db.Create(&favs).Error; err != nil {
		t.Fatal(err)
	}

	rec := s.do(http.MethodDelete, "/users/1", "", nil)
	expectStatus(t, rec, http.StatusOK)

	var left []entity.Favorite
	s.db.Find(&left)
	if len(left) != 1 || left[0].UserID != bob.ID {
		t.Errorf("remaining favorites = %+v", left)
	}

	rec = s.do(http.MethodGet, "/users/1", "", nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestCatalogRoundTrip(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "a@b.com", "x", false)
	token := s.login("a@b.com", "x")

	rec := s.do(http.MethodPost, "/locations", token, map[string]string{"name": "Earth", "type": "Planet"})
	expectStatus(t, rec, http.StatusCreated)
	rec = s.do(http.MethodPost, "/episodes", token, map[string]string{"name": "Pilot", "episode_code": "S01E01"})
	expectStatus(t, rec, http.StatusCreated)
	rec = s.do(http.MethodPost, "/characters", token, map[string]any{
		"name": "Rick", "status": "Alive", "species": "Human", "gender": "Male",
		"origin_id": 1, "episode_ids": []uint{1},
	})
	expectStatus(t, rec, http.StatusCreated)

	rec = s.do(http.MethodGet, "/characters/1", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var character dto.CharacterResponse
	decode(t, rec, &character)
	if character.Origin == nil || character.Origin.Name != "Earth" || character.Location != nil {
		t.Errorf("character relations = origin %+v location %+v", character.Origin, character.Location)
	}
	if len(character.Episodes) != 1 || character.Episodes[0].EpisodeCode != "S01E01" {
		t.Errorf("character episodes = %+v", character.Episodes)
	}

	rec = s.do(http.MethodGet, "/episodes/1", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var episode dto.EpisodeResponse
	decode(t, rec, &episode)
	if len(episode.Characters) != 1 || episode.Characters[0].Name != "Rick" {
		t.Errorf("episode characters = %+v", episode.Characters)
	}

	rec = s.do(http.MethodGet, "/characters?name=RI", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var list []dto.CharacterResponse
	decode(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("filtered characters = %d, want 1", len(list))
	}

	rec = s.do(http.MethodGet, "/search?q=earth", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var found dto.SearchResponse
	decode(t, rec, &found)
	if len(found.Hits) != 1 || found.Hits[0].Type != "location" {
		t.Errorf("search hits = %+v", found.Hits)
	}

	rec = s.do(http.MethodGet, "/search", "", nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(http.MethodDelete, "/locations/1", token, nil)
	expectStatus(t, rec, http.StatusOK)
	rec = s.do(http.MethodGet, "/characters/1", "", nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &character)
	if character.Origin != nil {
		t.Errorf("origin should be cleared after its location is deleted, got %+v", character.Origin)
	}

	rec = s.do(http.MethodGet, "/characters/99", "", nil)
	expectStatus(t, rec, http.StatusNotFound)
	rec = s.do(http.MethodGet, "/characters/abc", "", nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestAdminGate(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "user@b.com", "x", false)
	testutil.CreateUser(t, s.db, "admin@b.com", "x", true)

	user := s.login("user@b.com", "x")
	rec := s.do(http.MethodGet, "/admin/users", user, nil)
	expectStatus(t, rec, http.StatusForbidden)

	admin := s.login("admin@b.com", "x")
	rec = s.do(http.MethodPut, "/admin/users/1", admin, map[string]bool{"is_admin": true})
	expectStatus(t, rec, http.StatusOK)
	var updated dto.UserResponse
	decode(t, rec, &updated)
	if !updated.IsAdmin {
		t.Errorf("user should be promoted: %+v", updated)
	}

	rec = s.do(http.MethodGet, "/admin/users", user, nil)
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(http.MethodPost, "/admin/search/reindex", admin, nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)
}

func TestOptionalIntegrationsUnavailable(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "a@b.com", "x", false)
	testutil.CreateCharacter(t, s.db, "Rick")
	token := s.login("a@b.com", "x")

	rec := s.do(http.MethodGet, "/users/1/favorites/ws", token, nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)
	rec = s.do(http.MethodGet, "/users/2/favorites/ws", token, nil)
	expectStatus(t, rec, http.StatusNotFound)
	rec = s.do(http.MethodGet, "/users/1/favorites/ws?token="+token, "", nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "rick.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("\x89PNG"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/characters/1/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusServiceUnavailable)
}

func TestSitemap(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var routes []dto.RouteInfo
	decode(t, rec, &routes)

	want := map[string]bool{
		"GET /":                       false,
		"POST /users/:id/favorites":   false,
		"GET /search":                 false,
		"DELETE /admin/favorites/:id": false,
	}
	for _, r := range routes {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for route, seen := range want {
		if !seen {
			t.Errorf("sitemap is missing %s", route)
		}
	}
}

func TestLogin_LockedOutAfterMaxAttempts(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	s := newTestServerWithRedis(t, rdb)
	testutil.CreateUser(t, s.db, "a@b.com", "x", false)

	s.login("a@b.com", "x")
	for i := 0; i < 5; i++ {
		rec := s.do(http.MethodPost, "/login", "", map[string]string{"email": "a@b.com", "password": "nope"})
		expectStatus(t, rec, http.StatusUnauthorized)
	}
	rec := s.do(http.MethodPost, "/login", "", map[string]string{"email": "a@b.com", "password": "x"})
	expectStatus(t, rec, http.StatusTooManyRequests)
}

func TestCatalogText_StoredAsSent(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "a@b.com", "x", false)
	token := s.login("a@b.com", "x")

	for _, name := range []string{"a<b>c", "Two  spaces", "<Unknown>"} {
		rec := s.do(http.MethodPost, "/locations", token, map[string]string{"name": name, "type": "x < y"})
		expectStatus(t, rec, http.StatusCreated)
		var created dto.LocationResponse
		decode(t, rec, &created)

		rec = s.do(http.MethodGet, fmt.Sprintf("/locations/%d", created.ID), "", nil)
		expectStatus(t, rec, http.StatusOK)
		var fetched dto.LocationResponse
		decode(t, rec, &fetched)
		if fetched.Name != name || fetched.Type == nil || *fetched.Type != "x < y" {
			t.Errorf("GET /locations/%d = %+v, want name %q", created.ID, fetched, name)
		}
	}
}
