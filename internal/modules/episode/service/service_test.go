package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/internal/modules/episode/dto"
	"anoa.com/rickmortyapi/internal/modules/episode/repository"
	"anoa.com/rickmortyapi/internal/testutil"
	"anoa.com/rickmortyapi/pkg/apperror"
)

func TestCreateEpisode_WithCast(t *testing.T) {
	db := testutil.NewTestDB(t)
	idx := &testutil.Indexer{}
	svc := NewEpisodeService(repository.NewEpisodeRepository(db), idx)
	ctx := context.Background()

	morty := testutil.CreateCharacter(t, db, "Morty")
	rick := testutil.CreateCharacter(t, db, "Rick")

	res, err := svc.CreateEpisode(ctx, dto.CreateEpisodeRequest{
		Name:         "Pilot",
		AirDate:      testutil.Ptr("December 2, 2013"),
		EpisodeCode:  "S01E01",
		CharacterIDs: []uint{rick.ID, morty.ID},
	})
	if err != nil {
		t.Fatalf("CreateEpisode() error = %v", err)
	}
	if res.Name != "Pilot" || res.AirDate == nil || *res.AirDate != "December 2, 2013" {
		t.Errorf("CreateEpisode() = %+v", res)
	}
	if len(res.Characters) != 2 || res.Characters[0].ID != morty.ID || res.Characters[1].ID != rick.ID {
		t.Errorf("characters = %+v", res.Characters)
	}
	if len(idx.Indexed) != 1 || idx.Indexed[0] != "episode:1" {
		t.Errorf("indexed = %v", idx.Indexed)
	}

	var stored entity.Character
	if err := db.First(&stored, rick.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Name != "Rick" || stored.Status != "Alive" {
		t.Errorf("linked character was overwritten: %+v", stored)
	}
}

func TestCreateEpisode_Invalid(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewEpisodeService(repository.NewEpisodeRepository(db), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.CreateEpisodeRequest
		want error
	}{
		{"unknown character", dto.CreateEpisodeRequest{Name: "Pilot", EpisodeCode: "S01E01", CharacterIDs: []uint{3}}, apperror.ErrNotFound},
		{"blank code", dto.CreateEpisodeRequest{Name: "Pilot", EpisodeCode: " "}, apperror.ErrInvalidInput},
		{"blank name", dto.CreateEpisodeRequest{Name: "\t", EpisodeCode: "S01E01"}, apperror.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateEpisode(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("CreateEpisode() error = %v, want %v", err, tt.want)
			}
		})
	}

	var count int64
	db.Model(&entity.Episode{}).Count(&count)
	if count != 0 {
		t.Errorf("episodes = %d, want 0", count)
	}
}

func TestUpdateEpisode_ReplacesCast(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewEpisodeService(repository.NewEpisodeRepository(db), nil)
	ctx := context.Background()

	rick := testutil.CreateCharacter(t, db, "Rick")
	morty := testutil.CreateCharacter(t, db, "Morty")
	created, err := svc.CreateEpisode(ctx, dto.CreateEpisodeRequest{Name: "Pilot", EpisodeCode: "S01E01", CharacterIDs: []uint{rick.ID}})
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.UpdateEpisode(ctx, created.ID, dto.UpdateEpisodeRequest{AirDate: testutil.Ptr("2013")})
	if err != nil {
		t.Fatalf("UpdateEpisode() error = %v", err)
	}
	if len(res.Characters) != 1 || res.EpisodeCode != "S01E01" {
		t.Errorf("partial update changed other fields: %+v", res)
	}

	res, err = svc.UpdateEpisode(ctx, created.ID, dto.UpdateEpisodeRequest{CharacterIDs: &[]uint{morty.ID}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Characters) != 1 || res.Characters[0].ID != morty.ID {
		t.Errorf("characters = %+v, want only %d", res.Characters, morty.ID)
	}

	res, err = svc.UpdateEpisode(ctx, created.ID, dto.UpdateEpisodeRequest{CharacterIDs: &[]uint{}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Characters == nil || len(res.Characters) != 0 {
		t.Errorf("characters = %+v, want empty list", res.Characters)
	}
}

func TestListEpisodes_Filters(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewEpisodeService(repository.NewEpisodeRepository(db), nil)
	ctx := context.Background()

	testutil.CreateEpisode(t, db, "Pilot", "S01E01")
	testutil.CreateEpisode(t, db, "Lawnmower Dog", "S01E02")
	testutil.CreateEpisode(t, db, "A Rickle in Time", "S02E01")

	got, err := svc.ListEpisodes(ctx, dto.EpisodeFilter{EpisodeCode: "s01"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "Pilot" || got[1].Name != "Lawnmower Dog" {
		t.Errorf("ListEpisodes(S01) = %+v", got)
	}

	got, err = svc.ListEpisodes(ctx, dto.EpisodeFilter{Name: "rickle"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("ListEpisodes(rickle) = %+v", got)
	}
}

func TestDeleteEpisode_Cascades(t *testing.T) {
	db := testutil.NewTestDB(t)
	idx := &testutil.Indexer{}
	svc := NewEpisodeService(repository.NewEpisodeRepository(db), idx)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "a@b.com", "x", false)
	rick := testutil.CreateCharacter(t, db, "Rick")
	created, err := svc.CreateEpisode(ctx, dto.CreateEpisodeRequest{Name: "Pilot", EpisodeCode: "S01E01", CharacterIDs: []uint{rick.ID}})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&entity.Favorite{UserID: user.ID, EpisodeID: &created.ID}).Error; err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteEpisode(ctx, created.ID); err != nil {
		t.Fatalf("DeleteEpisode() error = %v", err)
	}

	var favorites, links int64
	db.Model(&entity.Favorite{}).Count(&favorites)
	db.Table("character_episodes").Count(&links)
	if favorites != 0 || links != 0 {
		t.Errorf("favorites = %d, links = %d, want 0 and 0", favorites, links)
	}
	if err := db.First(&entity.Character{}, rick.ID).Error; err != nil {
		t.Errorf("character should survive: %v", err)
	}
	if len(idx.Removed) != 1 || idx.Removed[0] != "episode:1" {
		t.Errorf("removed = %v", idx.Removed)
	}

	if err := svc.DeleteEpisode(ctx, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteEpisode() error = %v, want not found", err)
	}
}
