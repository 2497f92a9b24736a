package serializer

import (
	"encoding/json"
	"strings"
	"testing"

	"anoa.com/rickmortyapi/internal/entity"
)

func strPtr(s string) *string { return &s }
func uintPtr(v uint) *uint    { return &v }

func TestCharacter_EmbedsOneLevel(t *testing.T) {
	earth := &entity.Location{ID: 1, Name: "Earth (C-137)", Type: strPtr("Planet"), Dimension: strPtr("Dimension C-137")}
	citadel := &entity.Location{ID: 3, Name: "Citadel of Ricks", Type: strPtr("Space station")}

	rick := &entity.Character{
		ID: 1, Name: "Rick Sanchez", Status: "Alive", Species: "Human", Gender: "Male",
		OriginID: uintPtr(1), Origin: earth,
		LocationID: uintPtr(3), Location: citadel,
	}
	pilot := entity.Episode{ID: 1, Name: "Pilot", AirDate: strPtr("December 2, 2013"), EpisodeCode: "S01E01"}
	pilot.Characters = []entity.Character{*rick}
	rick.Episodes = []entity.Episode{pilot}

	got := Character(rick)

	if got.Origin == nil || got.Origin.Name != "Earth (C-137)" {
		t.Errorf("Origin = %+v, want Earth (C-137)", got.Origin)
	}
	if got.Location == nil || got.Location.Name != "Citadel of Ricks" {
		t.Errorf("Location = %+v, want Citadel of Ricks", got.Location)
	}
	if len(got.Episodes) != 1 || got.Episodes[0].EpisodeCode != "S01E01" {
		t.Fatalf("Episodes = %+v", got.Episodes)
	}

	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), `"characters"`) {
		t.Errorf("embedded episodes must not re-embed characters: %s", raw)
	}
}

func TestCharacter_EmptyAndAbsentRelations(t *testing.T) {
	got := Character(&entity.Character{ID: 2, Name: "Morty Smith", Status: "Alive", Species: "Human", Gender: "Male"})

	if got.Origin != nil || got.Location != nil {
		t.Error("absent locations should serialize as nil")
	}
	if got.Episodes == nil || len(got.Episodes) != 0 {
		t.Errorf("Episodes = %#v, want empty slice", got.Episodes)
	}

	raw, _ := json.Marshal(got)
	if !strings.Contains(string(raw), `"episodes":[]`) || !strings.Contains(string(raw), `"origin":null`) {
		t.Errorf("unexpected JSON: %s", raw)
	}
}

func TestEpisode_CharactersDoNotEmbedEpisodes(t *testing.T) {
	ep := &entity.Episode{
		ID: 2, Name: "Lawnmower Dog", EpisodeCode: "S01E02",
		Characters: []entity.Character{{ID: 1, Name: "Rick Sanchez", Episodes: []entity.Episode{{ID: 2}}}},
	}

	raw, err := json.Marshal(Episode(ep))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), `"episodes"`) {
		t.Errorf("embedded characters must not re-embed episodes: %s", raw)
	}
	if !strings.Contains(string(raw), `"air_date":null`) {
		t.Errorf("missing air_date should be null: %s", raw)
	}
}

func TestFavorite_OnlyExposesOwnerEmail(t *testing.T) {
	fav := &entity.Favorite{
		ID:          7,
		UserID:      1,
		User:        &entity.User{ID: 1, Email: "a@b.com", PasswordHash: "secret-hash"},
		CharacterID: uintPtr(5),
		Character:   &entity.Character{ID: 5, Name: "Mr. Meeseeks"},
	}

	got := Favorite(fav)
	if got.User == nil || *got.User != "a@b.com" {
		t.Errorf("User = %v, want a@b.com", got.User)
	}
	if got.Episode != nil || got.Location != nil {
		t.Error("unset references should be nil")
	}

	raw, _ := json.Marshal(got)
	if strings.Contains(string(raw), "secret-hash") {
		t.Errorf("password hash leaked: %s", raw)
	}
}

func TestUser_NeverSerializesPassword(t *testing.T) {
	u := &entity.User{ID: 1, Email: "a@b.com", PasswordHash: "$2a$10$hash", IsActive: true}
	u.Favorites = []entity.Favorite{{ID: 1, UserID: 1, LocationID: uintPtr(2), Location: &entity.Location{ID: 2, Name: "Anatomy Park"}}}

	got := User(u)
	if len(got.Favorites) != 1 || got.Favorites[0].User == nil || *got.Favorites[0].User != "a@b.com" {
		t.Fatalf("Favorites = %+v", got.Favorites)
	}

	raw, _ := json.Marshal(got)
	if strings.Contains(string(raw), "$2a$10$hash") || strings.Contains(string(raw), "password") {
		t.Errorf("password leaked: %s", raw)
	}
}

func TestListHelpers_EmptyInput(t *testing.T) {
	if got := Users(nil); got == nil || len(got) != 0 {
		t.Errorf("Users(nil) = %#v, want empty slice", got)
	}
	if got := Favorites(nil); got == nil || len(got) != 0 {
		t.Errorf("Favorites(nil) = %#v, want empty slice", got)
	}
}
