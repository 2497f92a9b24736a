package jobs

import (
	"context"

	search "anoa.com/rickmortyapi/internal/modules/search/service"
)

// ReindexJob pushes the whole catalog to the search index.
type ReindexJob struct {
	search   search.SearchService
	schedule string
}

func NewReindexJob(search search.SearchService, schedule string) *ReindexJob {
	return &ReindexJob{search: search, schedule: schedule}
}

func (j *ReindexJob) Name() string     { return "search-reindex" }
func (j *ReindexJob) Schedule() string { return j.schedule }

func (j *ReindexJob) Run(ctx context.Context) error {
	return j.search.Reindex(ctx)
}
