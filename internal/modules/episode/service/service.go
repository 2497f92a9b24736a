package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/internal/modules/episode/dto"
	"anoa.com/rickmortyapi/internal/modules/episode/repository"
	search "anoa.com/rickmortyapi/internal/modules/search/service"
	"anoa.com/rickmortyapi/internal/serializer"
	"anoa.com/rickmortyapi/pkg/apperror"
	commonDto "anoa.com/rickmortyapi/pkg/dto"
	"anoa.com/rickmortyapi/pkg/logger"
	"anoa.com/rickmortyapi/pkg/sanitizer"
	"gorm.io/gorm"
)

type EpisodeService interface {
	CreateEpisode(ctx context.Context, req dto.CreateEpisodeRequest) (*commonDto.EpisodeResponse, error)
	GetEpisode(ctx context.Context, id uint) (*commonDto.EpisodeResponse, error)
	ListEpisodes(ctx context.Context, filter dto.EpisodeFilter) ([]commonDto.EpisodeResponse, error)
	UpdateEpisode(ctx context.Context, id uint, req dto.UpdateEpisodeRequest) (*commonDto.EpisodeResponse, error)
	DeleteEpisode(ctx context.Context, id uint) error
}

type episodeService struct {
	repo    repository.EpisodeRepository
	indexer search.Indexer
}

func NewEpisodeService(repo repository.EpisodeRepository, indexer search.Indexer) EpisodeService {
	return &episodeService{repo: repo, indexer: indexer}
}

func (s *episodeService) checkCharacters(ctx context.Context, ids []uint) error {
	missing, err := s.repo.MissingCharacters(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperror.NotFound(fmt.Sprintf("character %d not found", missing[0]))
	}
	return nil
}

func (s *episodeService) CreateEpisode(ctx context.Context, req dto.CreateEpisodeRequest) (*commonDto.EpisodeResponse, error) {
	episode := &entity.Episode{
		Name:        sanitizer.Trim(req.Name),
		AirDate:     sanitizer.OptionalTrim(req.AirDate),
		EpisodeCode: sanitizer.Trim(req.EpisodeCode),
	}
	if episode.Name == "" {
		return nil, apperror.InvalidInput("name is required")
	}
	if episode.EpisodeCode == "" {
		return nil, apperror.InvalidInput("episode_code is required")
	}

	if err := s.checkCharacters(ctx, req.CharacterIDs); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, episode, req.CharacterIDs); err != nil {
		return nil, err
	}

	return s.reload(ctx, episode.ID)
}

func (s *episodeService) find(ctx context.Context, id uint) (*entity.Episode, error) {
	episode, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("episode not found")
		}
		return nil, err
	}
	return episode, nil
}

func (s *episodeService) reload(ctx context.Context, id uint) (*commonDto.EpisodeResponse, error) {
	episode, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.indexer != nil {
		if err := s.indexer.IndexEpisode(ctx, episode); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Uint("episode_id", id).Msg("failed to index episode")
		}
	}
	return serializer.Episode(episode), nil
}

func (s *episodeService) GetEpisode(ctx context.Context, id uint) (*commonDto.EpisodeResponse, error) {
	episode, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return serializer.Episode(episode), nil
}

func (s *episodeService) ListEpisodes(ctx context.Context, filter dto.EpisodeFilter) ([]commonDto.EpisodeResponse, error) {
	episodes, err := s.repo.FindAll(ctx, repository.Filter{Name: filter.Name, EpisodeCode: filter.EpisodeCode})
	if err != nil {
		return nil, err
	}
	return serializer.Episodes(episodes), nil
}

func (s *episodeService) UpdateEpisode(ctx context.Context, id uint, req dto.UpdateEpisodeRequest) (*commonDto.EpisodeResponse, error) {
	episode, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if episode.Name = sanitizer.Trim(*req.Name); episode.Name == "" {
			return nil, apperror.InvalidInput("name must not be empty")
		}
	}
	if req.EpisodeCode != nil {
		if episode.EpisodeCode = sanitizer.Trim(*req.EpisodeCode); episode.EpisodeCode == "" {
			return nil, apperror.InvalidInput("episode_code must not be empty")
		}
	}
	if req.AirDate != nil {
		episode.AirDate = sanitizer.OptionalTrim(req.AirDate)
	}

	if req.CharacterIDs != nil {
		if err := s.checkCharacters(ctx, *req.CharacterIDs); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, episode, req.CharacterIDs); err != nil {
		return nil, err
	}

	return s.reload(ctx, id)
}

func (s *episodeService) DeleteEpisode(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("episode not found")
		}
		return err
	}

	if s.indexer != nil {
		if err := s.indexer.Remove(ctx, search.KindEpisode, id); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Uint("episode_id", id).Msg("failed to remove episode from search index")
		}
	}
	return nil
}
