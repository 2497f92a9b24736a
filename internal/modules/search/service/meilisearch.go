package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/pkg/logger"
	"anoa.com/rickmortyapi/pkg/sanitizer"
	"github.com/meilisearch/meilisearch-go"
)

const (
	KindCharacter = "character"
	KindEpisode   = "episode"
	KindLocation  = "location"

	catalogIndex = "catalog"
)

// Indexer keeps the search index in step with catalog writes.
type Indexer interface {
	IndexCharacter(ctx context.Context, c *entity.Character) error
	IndexEpisode(ctx context.Context, e *entity.Episode) error
	IndexLocation(ctx context.Context, l *entity.Location) error
	Remove(ctx context.Context, kind string, id uint) error
}

// MeiliSearchService is the Meilisearch backed Indexer that can also query.
type MeiliSearchService interface {
	Indexer
	IndexDocuments(ctx context.Context, docs []CatalogDocument) error
	Search(ctx context.Context, query, kind string, limit int64) ([]CatalogDocument, error)
}

// CatalogDocument is one searchable catalog entry. All kinds share one index
// so a query can span them.
type CatalogDocument struct {
	DocID string `json:"doc_id"`
	Kind  string `json:"kind"`
	RefID uint   `json:"ref_id"`
	Name  string `json:"name"`
	Text  string `json:"text"`
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

func NewMeiliSearchService(client meilisearch.ServiceManager) MeiliSearchService {
	s := &meiliSearchService{client: client}
	s.initIndex()
	return s
}

func (s *meiliSearchService) initIndex() {
	filterable := []interface{}{"kind"}
	if _, err := s.client.Index(catalogIndex).UpdateFilterableAttributes(&filterable); err != nil {
		logger.Warn().Err(err).Msg("failed to update catalog filterable attributes")
	}

	searchable := []string{"name", "text"}
	if _, err := s.client.Index(catalogIndex).UpdateSearchableAttributes(&searchable); err != nil {
		logger.Warn().Err(err).Msg("failed to update catalog searchable attributes")
	}
}

func docID(kind string, id uint) string {
	return kind + "-" + strconv.FormatUint(uint64(id), 10)
}

func CharacterDocument(c *entity.Character) CatalogDocument {
	parts := []string{c.Status, c.Species, c.Gender}
	if c.Origin != nil {
		parts = append(parts, c.Origin.Name)
	}
	if c.Location != nil {
		parts = append(parts, c.Location.Name)
	}
	return CatalogDocument{
		DocID: docID(KindCharacter, c.ID),
		Kind:  KindCharacter,
		RefID: c.ID,
		Name:  sanitizer.Text(c.Name),
		Text:  sanitizer.Text(strings.Join(parts, " ")),
	}
}

func EpisodeDocument(e *entity.Episode) CatalogDocument {
	parts := []string{e.EpisodeCode}
	if e.AirDate != nil {
		parts = append(parts, *e.AirDate)
	}
	return CatalogDocument{
		DocID: docID(KindEpisode, e.ID),
		Kind:  KindEpisode,
		RefID: e.ID,
		Name:  sanitizer.Text(e.Name),
		Text:  sanitizer.Text(strings.Join(parts, " ")),
	}
}

func LocationDocument(l *entity.Location) CatalogDocument {
	var parts []string
	if l.Type != nil {
		parts = append(parts, *l.Type)
	}
	if l.Dimension != nil {
		parts = append(parts, *l.Dimension)
	}
	return CatalogDocument{
		DocID: docID(KindLocation, l.ID),
		Kind:  KindLocation,
		RefID: l.ID,
		Name:  sanitizer.Text(l.Name),
		Text:  sanitizer.Text(strings.Join(parts, " ")),
	}
}

func (s *meiliSearchService) IndexCharacter(ctx context.Context, c *entity.Character) error {
	return s.IndexDocuments(ctx, []CatalogDocument{CharacterDocument(c)})
}

func (s *meiliSearchService) IndexEpisode(ctx context.Context, e *entity.Episode) error {
	return s.IndexDocuments(ctx, []CatalogDocument{EpisodeDocument(e)})
}

func (s *meiliSearchService) IndexLocation(ctx context.Context, l *entity.Location) error {
	return s.IndexDocuments(ctx, []CatalogDocument{LocationDocument(l)})
}

func (s *meiliSearchService) IndexDocuments(ctx context.Context, docs []CatalogDocument) error {
	if len(docs) == 0 {
		return nil
	}

	task, err := s.client.Index(catalogIndex).AddDocuments(docs, strPtr("doc_id"))
	if err != nil {
		return fmt.Errorf("index catalog documents: %w", err)
	}
	logger.Ctx(ctx).Debug().Int("documents", len(docs)).Int64("task_uid", task.TaskUID).Msg("catalog documents queued for indexing")
	return nil
}

func (s *meiliSearchService) Remove(ctx context.Context, kind string, id uint) error {
	if _, err := s.client.Index(catalogIndex).DeleteDocument(docID(kind, id)); err != nil {
		return fmt.Errorf("remove %s %d from index: %w", kind, id, err)
	}
	return nil
}

func (s *meiliSearchService) Search(ctx context.Context, query, kind string, limit int64) ([]CatalogDocument, error) {
	req := &meilisearch.SearchRequest{Limit: limit}
	if kind != "" {
		req.Filter = fmt.Sprintf("kind = %q", kind)
	}

	raw, err := s.client.Index(catalogIndex).SearchRaw(query, req)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	var res struct {
		Hits []CatalogDocument `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &res); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return res.Hits, nil
}

func strPtr(s string) *string {
	return &s
}
