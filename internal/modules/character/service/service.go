package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/internal/modules/character/dto"
	"anoa.com/rickmortyapi/internal/modules/character/repository"
	search "anoa.com/rickmortyapi/internal/modules/search/service"
	"anoa.com/rickmortyapi/internal/serializer"
	"anoa.com/rickmortyapi/pkg/apperror"
	commonDto "anoa.com/rickmortyapi/pkg/dto"
	"anoa.com/rickmortyapi/pkg/logger"
	"anoa.com/rickmortyapi/pkg/sanitizer"
	"anoa.com/rickmortyapi/pkg/storage"
	"gorm.io/gorm"
)

type CharacterService interface {
	CreateCharacter(ctx context.Context, req dto.CreateCharacterRequest) (*commonDto.CharacterResponse, error)
	GetCharacter(ctx context.Context, id uint) (*commonDto.CharacterResponse, error)
	ListCharacters(ctx context.Context, filter dto.CharacterFilter) ([]commonDto.CharacterResponse, error)
	UpdateCharacter(ctx context.Context, id uint, req dto.UpdateCharacterRequest) (*commonDto.CharacterResponse, error)
	DeleteCharacter(ctx context.Context, id uint) error
	// UploadImage stores r as the character's image and replaces the old one.
	UploadImage(ctx context.Context, id uint, r io.Reader, fileName string) (*commonDto.CharacterResponse, error)
}

type characterService struct {
	repo         repository.CharacterRepository
	indexer      search.Indexer
	images       storage.ImageStorage
	uploadFolder string
}

// NewCharacterService accepts a nil indexer and nil image storage when those
// integrations are not configured.
func NewCharacterService(
	repo repository.CharacterRepository,
	indexer search.Indexer,
	images storage.ImageStorage,
	uploadFolder string,
) CharacterService {
	return &characterService{
		repo:         repo,
		indexer:      indexer,
		images:       images,
		uploadFolder: uploadFolder,
	}
}

func requiredText(field, value string) (string, error) {
	clean := sanitizer.Trim(value)
	if clean == "" {
		return "", apperror.InvalidInput(field + " is required")
	}
	return clean, nil
}

func (s *characterService) checkLocation(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	ok, err := s.repo.LocationExists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound(fmt.Sprintf("location %d not found", *id))
	}
	return nil
}

func (s *characterService) checkReferences(ctx context.Context, originID, locationID *uint, episodeIDs []uint) error {
	if err := s.checkLocation(ctx, originID); err != nil {
		return err
	}
	if err := s.checkLocation(ctx, locationID); err != nil {
		return err
	}

	missing, err := s.repo.MissingEpisodes(ctx, episodeIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperror.NotFound(fmt.Sprintf("episode %d not found", missing[0]))
	}
	return nil
}

func (s *characterService) CreateCharacter(ctx context.Context, req dto.CreateCharacterRequest) (*commonDto.CharacterResponse, error) {
	character := &entity.Character{
		OriginID:   req.OriginID,
		LocationID: req.LocationID,
		Image:      sanitizer.OptionalTrim(req.Image),
	}

	var err error
	if character.Name, err = requiredText("name", req.Name); err != nil {
		return nil, err
	}
	if character.Status, err = requiredText("status", req.Status); err != nil {
		return nil, err
	}
	if character.Species, err = requiredText("species", req.Species); err != nil {
		return nil, err
	}
	if character.Gender, err = requiredText("gender", req.Gender); err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, req.OriginID, req.LocationID, req.EpisodeIDs); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, character, req.EpisodeIDs); err != nil {
		return nil, err
	}

	return s.reload(ctx, character.ID)
}

func (s *characterService) find(ctx context.Context, id uint) (*entity.Character, error) {
	character, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("character not found")
		}
		return nil, err
	}
	return character, nil
}

// reload reads the stored character with its relations and refreshes the index.
func (s *characterService) reload(ctx context.Context, id uint) (*commonDto.CharacterResponse, error) {
	character, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.indexer != nil {
		if err := s.indexer.IndexCharacter(ctx, character); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Uint("character_id", id).Msg("failed to index character")
		}
	}
	return serializer.Character(character), nil
}

func (s *characterService) GetCharacter(ctx context.Context, id uint) (*commonDto.CharacterResponse, error) {
	character, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return serializer.Character(character), nil
}

func (s *characterService) ListCharacters(ctx context.Context, filter dto.CharacterFilter) ([]commonDto.CharacterResponse, error) {
	characters, err := s.repo.FindAll(ctx, repository.Filter{
		Name:    filter.Name,
		Status:  filter.Status,
		Species: filter.Species,
		Gender:  filter.Gender,
	})
	if err != nil {
		return nil, err
	}
	return serializer.Characters(characters), nil
}

func (s *characterService) UpdateCharacter(ctx context.Context, id uint, req dto.UpdateCharacterRequest) (*commonDto.CharacterResponse, error) {
	character, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := []struct {
		name  string
		value *string
		dst   *string
	}{
		{"name", req.Name, &character.Name},
		{"status", req.Status, &character.Status},
		{"species", req.Species, &character.Species},
		{"gender", req.Gender, &character.Gender},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		clean := sanitizer.Trim(*f.value)
		if clean == "" {
			return nil, apperror.InvalidInput(f.name + " must not be empty")
		}
		*f.dst = clean
	}
	if req.ClearOrigin && req.OriginID != nil {
		return nil, apperror.InvalidInput("origin_id and clear_origin are mutually exclusive")
	}
	if req.ClearLocation && req.LocationID != nil {
		return nil, apperror.InvalidInput("location_id and clear_location are mutually exclusive")
	}
	if req.OriginID != nil {
		character.OriginID = req.OriginID
	} else if req.ClearOrigin {
		character.OriginID = nil
	}
	if req.LocationID != nil {
		character.LocationID = req.LocationID
	} else if req.ClearLocation {
		character.LocationID = nil
	}
	if req.Image != nil {
		character.Image = sanitizer.OptionalTrim(req.Image)
	}

	var episodeIDs []uint
	if req.EpisodeIDs != nil {
		episodeIDs = *req.EpisodeIDs
	}
	if err := s.checkReferences(ctx, req.OriginID, req.LocationID, episodeIDs); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, character, req.EpisodeIDs); err != nil {
		return nil, err
	}

	return s.reload(ctx, id)
}

func (s *characterService) DeleteCharacter(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("character not found")
		}
		return err
	}

	if s.indexer != nil {
		if err := s.indexer.Remove(ctx, search.KindCharacter, id); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Uint("character_id", id).Msg("failed to remove character from search index")
		}
	}
	return nil
}

func (s *characterService) UploadImage(ctx context.Context, id uint, r io.Reader, fileName string) (*commonDto.CharacterResponse, error) {
	if s.images == nil {
		return nil, apperror.Unavailable("image storage is not configured")
	}

	character, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.images.UploadImage(ctx, r, s.uploadFolder, fileName)
	if err != nil {
		return nil, fmt.Errorf("upload character image: %w", err)
	}

	if err := s.repo.SetImage(ctx, id, &url); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("character not found")
		}
		return nil, err
	}

	if old := character.Image; old != nil && strings.Contains(*old, "res.cloudinary.com") {
		if err := s.images.DeleteImage(ctx, *old); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("url", *old).Msg("failed to delete previous character image")
		}
	}

	return s.reload(ctx, id)
}
