package testutil

import (
	"context"
	"fmt"
	"sync"

	"anoa.com/rickmortyapi/internal/entity"
)

// Indexer records search index writes as "kind:id" entries.
type Indexer struct {
	mu      sync.Mutex
	Indexed []string
	Removed []string
	Err     error
}

func (i *Indexer) record(list *[]string, kind string, id uint) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Err != nil {
		return i.Err
	}
	*list = append(*list, fmt.Sprintf("%s:%d", kind, id))
	return nil
}

func (i *Indexer) IndexCharacter(_ context.Context, c *entity.Character) error {
	return i.record(&i.Indexed, "character", c.ID)
}

func (i *Indexer) IndexEpisode(_ context.Context, e *entity.Episode) error {
	return i.record(&i.Indexed, "episode", e.ID)
}

func (i *Indexer) IndexLocation(_ context.Context, l *entity.Location) error {
	return i.record(&i.Indexed, "location", l.ID)
}

func (i *Indexer) Remove(_ context.Context, kind string, id uint) error {
	return i.record(&i.Removed, kind, id)
}
