package service

import (
	"context"
	"errors"

	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/internal/modules/location/dto"
	"anoa.com/rickmortyapi/internal/modules/location/repository"
	search "anoa.com/rickmortyapi/internal/modules/search/service"
	"anoa.com/rickmortyapi/internal/serializer"
	"anoa.com/rickmortyapi/pkg/apperror"
	commonDto "anoa.com/rickmortyapi/pkg/dto"
	"anoa.com/rickmortyapi/pkg/logger"
	"anoa.com/rickmortyapi/pkg/sanitizer"
	"gorm.io/gorm"
)

type LocationService interface {
	CreateLocation(ctx context.Context, req dto.CreateLocationRequest) (*commonDto.LocationResponse, error)
	GetLocation(ctx context.Context, id uint) (*commonDto.LocationResponse, error)
	ListLocations(ctx context.Context, filter dto.LocationFilter) ([]commonDto.LocationResponse, error)
	UpdateLocation(ctx context.Context, id uint, req dto.UpdateLocationRequest) (*commonDto.LocationResponse, error)
	DeleteLocation(ctx context.Context, id uint) error
}

type locationService struct {
	repo    repository.LocationRepository
	indexer search.Indexer
}

// NewLocationService accepts a nil indexer when search is not configured.
func NewLocationService(repo repository.LocationRepository, indexer search.Indexer) LocationService {
	return &locationService{repo: repo, indexer: indexer}
}

func (s *locationService) CreateLocation(ctx context.Context, req dto.CreateLocationRequest) (*commonDto.LocationResponse, error) {
	name := sanitizer.Trim(req.Name)
	if name == "" {
		return nil, apperror.InvalidInput("name is required")
	}

	location := &entity.Location{
		Name:      name,
		Type:      sanitizer.OptionalTrim(req.Type),
		Dimension: sanitizer.OptionalTrim(req.Dimension),
	}
	if err := s.repo.Create(ctx, location); err != nil {
		return nil, err
	}

	s.index(ctx, location)
	return serializer.Location(location), nil
}

func (s *locationService) find(ctx context.Context, id uint) (*entity.Location, error) {
	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("location not found")
		}
		return nil, err
	}
	return location, nil
}

func (s *locationService) GetLocation(ctx context.Context, id uint) (*commonDto.LocationResponse, error) {
	location, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return serializer.Location(location), nil
}

func (s *locationService) ListLocations(ctx context.Context, filter dto.LocationFilter) ([]commonDto.LocationResponse, error) {
	locations, err := s.repo.FindAll(ctx, repository.Filter{
		Name:      filter.Name,
		Type:      filter.Type,
		Dimension: filter.Dimension,
	})
	if err != nil {
		return nil, err
	}
	return serializer.Locations(locations), nil
}

func (s *locationService) UpdateLocation(ctx context.Context, id uint, req dto.UpdateLocationRequest) (*commonDto.LocationResponse, error) {
	location, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := sanitizer.Trim(*req.Name)
		if name == "" {
			return nil, apperror.InvalidInput("name must not be empty")
		}
		location.Name = name
	}
	if req.Type != nil {
		location.Type = sanitizer.OptionalTrim(req.Type)
	}
	if req.Dimension != nil {
		location.Dimension = sanitizer.OptionalTrim(req.Dimension)
	}

	if err := s.repo.Update(ctx, location); err != nil {
		return nil, err
	}

	s.index(ctx, location)
	return serializer.Location(location), nil
}

func (s *locationService) DeleteLocation(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("location not found")
		}
		return err
	}

	if s.indexer != nil {
		if err := s.indexer.Remove(ctx, search.KindLocation, id); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Uint("location_id", id).Msg("failed to remove location from search index")
		}
	}
	return nil
}

func (s *locationService) index(ctx context.Context, location *entity.Location) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexLocation(ctx, location); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Uint("location_id", location.ID).Msg("failed to index location")
	}
}
