package service

import (
	"context"
	"strings"

	characterRepo "anoa.com/rickmortyapi/internal/modules/character/repository"
	episodeRepo "anoa.com/rickmortyapi/internal/modules/episode/repository"
	locationRepo "anoa.com/rickmortyapi/internal/modules/location/repository"
	"anoa.com/rickmortyapi/pkg/apperror"
	commonDto "anoa.com/rickmortyapi/pkg/dto"
	"anoa.com/rickmortyapi/pkg/logger"
)

const defaultLimit = 20

type SearchService interface {
	Search(ctx context.Context, query, kind string) (*commonDto.SearchResponse, error)
	// Reindex pushes the whole catalog to the search index.
	Reindex(ctx context.Context) error
}

type searchService struct {
	meili      MeiliSearchService
	characters characterRepo.CharacterRepository
	episodes   episodeRepo.EpisodeRepository
	locations  locationRepo.LocationRepository
}

// NewSearchService answers from Meilisearch when meili is non-nil and from
// the database otherwise.
func NewSearchService(
	meili MeiliSearchService,
	characters characterRepo.CharacterRepository,
	episodes episodeRepo.EpisodeRepository,
	locations locationRepo.LocationRepository,
) SearchService {
	return &searchService{
		meili:      meili,
		characters: characters,
		episodes:   episodes,
		locations:  locations,
	}
}

func validKind(kind string) bool {
	switch kind {
	case "", KindCharacter, KindEpisode, KindLocation:
		return true
	}
	return false
}

func (s *searchService) Search(ctx context.Context, query, kind string) (*commonDto.SearchResponse, error) {
	query = strings.TrimSpace(query)
	kind = strings.ToLower(strings.TrimSpace(kind))
	if query == "" {
		return nil, apperror.InvalidInput("q is required")
	}
	if !validKind(kind) {
		return nil, apperror.InvalidInput("type must be one of: character episode location")
	}

	if s.meili != nil {
		docs, err := s.meili.Search(ctx, query, kind, defaultLimit)
		if err == nil {
			hits := make([]commonDto.SearchHit, 0, len(docs))
			for _, d := range docs {
				hits = append(hits, commonDto.SearchHit{Type: d.Kind, ID: d.RefID, Name: d.Name})
			}
			return &commonDto.SearchResponse{Query: query, Hits: hits}, nil
		}
		logger.Ctx(ctx).Warn().Err(err).Msg("meilisearch query failed, falling back to database")
	}

	return s.searchDatabase(ctx, query, kind)
}

func (s *searchService) searchDatabase(ctx context.Context, query, kind string) (*commonDto.SearchResponse, error) {
	hits := make([]commonDto.SearchHit, 0)

	if kind == "" || kind == KindCharacter {
		characters, err := s.characters.FindAll(ctx, characterRepo.Filter{Name: query})
		if err != nil {
			return nil, err
		}
		for _, c := range characters {
			hits = append(hits, commonDto.SearchHit{Type: KindCharacter, ID: c.ID, Name: c.Name})
		}
	}
	if kind == "" || kind == KindEpisode {
		episodes, err := s.episodes.FindAll(ctx, episodeRepo.Filter{Name: query})
		if err != nil {
			return nil, err
		}
		for _, e := range episodes {
			hits = append(hits, commonDto.SearchHit{Type: KindEpisode, ID: e.ID, Name: e.Name})
		}
	}
	if kind == "" || kind == KindLocation {
		locations, err := s.locations.FindAll(ctx, locationRepo.Filter{Name: query})
		if err != nil {
			return nil, err
		}
		for _, l := range locations {
			hits = append(hits, commonDto.SearchHit{Type: KindLocation, ID: l.ID, Name: l.Name})
		}
	}

	if len(hits) > defaultLimit {
		hits = hits[:defaultLimit]
	}
	return &commonDto.SearchResponse{Query: query, Hits: hits}, nil
}

func (s *searchService) Reindex(ctx context.Context) error {
	if s.meili == nil {
		return apperror.Unavailable("search index is not configured")
	}

	var docs []CatalogDocument

	characters, err := s.characters.FindAll(ctx, characterRepo.Filter{})
	if err != nil {
		return err
	}
	for _, c := range characters {
		docs = append(docs, CharacterDocument(c))
	}

	episodes, err := s.episodes.FindAll(ctx, episodeRepo.Filter{})
	if err != nil {
		return err
	}
	for _, e := range episodes {
		docs = append(docs, EpisodeDocument(e))
	}

	locations, err := s.locations.FindAll(ctx, locationRepo.Filter{})
	if err != nil {
		return err
	}
	for _, l := range locations {
		docs = append(docs, LocationDocument(l))
	}

	if err := s.meili.IndexDocuments(ctx, docs); err != nil {
		return err
	}

	logger.Ctx(ctx).Info().Int("documents", len(docs)).Msg("catalog reindexed")
	return nil
}
