package service

import (
	"context"
	"errors"

	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/internal/modules/favorite/dto"
	"anoa.com/rickmortyapi/internal/modules/favorite/repository"
	userRepo "anoa.com/rickmortyapi/internal/modules/user/repository"
	"anoa.com/rickmortyapi/internal/serializer"
	"anoa.com/rickmortyapi/pkg/apperror"
	commonDto "anoa.com/rickmortyapi/pkg/dto"
	"gorm.io/gorm"
)

type FavoriteService interface {
	// CreateForUser favorites on behalf of userID. The actor must be that
	// user or an admin.
	CreateForUser(ctx context.Context, actorID, userID uint, req dto.CreateFavoriteRequest) (*commonDto.FavoriteResponse, error)
	Create(ctx context.Context, userID uint, req dto.CreateFavoriteRequest) (*commonDto.FavoriteResponse, error)
	ListByUser(ctx context.Context, userID uint) ([]commonDto.FavoriteResponse, error)
	ListAll(ctx context.Context) ([]commonDto.FavoriteResponse, error)
	// DeleteForUser removes a favorite only when userID owns it.
	DeleteForUser(ctx context.Context, userID, favoriteID uint) error
	Delete(ctx context.Context, favoriteID uint) error
}

type favoriteService struct {
	repo      repository.FavoriteRepository
	users     userRepo.UserRepository
	publisher *EventPublisher
}

func NewFavoriteService(repo repository.FavoriteRepository, users userRepo.UserRepository, publisher *EventPublisher) FavoriteService {
	return &favoriteService{repo: repo, users: users, publisher: publisher}
}

var repoErrors = []struct {
	err    error
	mapped func() error
}{
	{repository.ErrUserNotFound, func() error { return apperror.NotFound("user not found") }},
	{repository.ErrCharacterNotFound, func() error { return apperror.NotFound("character not found") }},
	{repository.ErrEpisodeNotFound, func() error { return apperror.NotFound("episode not found") }},
	{repository.ErrLocationNotFound, func() error { return apperror.NotFound("location not found") }},
	{repository.ErrDuplicate, func() error { return apperror.Conflict("favorite already exists") }},
}

func mapRepoError(err error) error {
	for _, e := range repoErrors {
		if errors.Is(err, e.err) {
			return e.mapped()
		}
	}
	return err
}

func (s *favoriteService) CreateForUser(ctx context.Context, actorID, userID uint, req dto.CreateFavoriteRequest) (*commonDto.FavoriteResponse, error) {
	if actorID != userID {
		actor, err := s.users.FindAccountByID(ctx, actorID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// Non-admins see other users as missing.
		if actor == nil || !actor.IsAdmin || !actor.IsActive {
			return nil, apperror.NotFound("user not found")
		}
	}
	return s.Create(ctx, userID, req)
}

func (s *favoriteService) Create(ctx context.Context, userID uint, req dto.CreateFavoriteRequest) (*commonDto.FavoriteResponse, error) {
	fav := &entity.Favorite{
		UserID:      userID,
		CharacterID: req.CharacterID,
		EpisodeID:   req.EpisodeID,
		LocationID:  req.LocationID,
	}
	if !fav.HasReference() {
		return nil, apperror.InvalidInput("one of character_id, episode_id or location_id is required")
	}

	if err := s.repo.Create(ctx, fav); err != nil {
		return nil, mapRepoError(err)
	}

	stored, err := s.repo.FindByID(ctx, fav.ID)
	if err != nil {
		return nil, err
	}
	res := serializer.Favorite(stored)

	s.publisher.Publish(ctx, dto.FavoriteEvent{
		Type:       dto.EventCreated,
		UserID:     userID,
		FavoriteID: fav.ID,
		Favorite:   res,
	})
	return res, nil
}

func (s *favoriteService) ListByUser(ctx context.Context, userID uint) ([]commonDto.FavoriteResponse, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("user not found")
	}

	favorites, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return serializer.Favorites(favorites), nil
}

func (s *favoriteService) ListAll(ctx context.Context) ([]commonDto.FavoriteResponse, error) {
	favorites, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return serializer.Favorites(favorites), nil
}

func (s *favoriteService) DeleteForUser(ctx context.Context, userID, favoriteID uint) error {
	fav, err := s.repo.FindByID(ctx, favoriteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("favorite not found")
		}
		return err
	}
	if fav.UserID != userID {
		return apperror.NotFound("favorite not found")
	}
	return s.remove(ctx, fav.UserID, favoriteID)
}

func (s *favoriteService) Delete(ctx context.Context, favoriteID uint) error {
	fav, err := s.repo.FindByID(ctx, favoriteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("favorite not found")
		}
		return err
	}
	return s.remove(ctx, fav.UserID, favoriteID)
}

func (s *favoriteService) remove(ctx context.Context, userID, favoriteID uint) error {
	if err := s.repo.Delete(ctx, favoriteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("favorite not found")
		}
		return err
	}

	s.publisher.Publish(ctx, dto.FavoriteEvent{
		Type:       dto.EventDeleted,
		UserID:     userID,
		FavoriteID: favoriteID,
	})
	return nil
}
