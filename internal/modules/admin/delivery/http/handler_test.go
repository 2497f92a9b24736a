package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/rickmortyapi/pkg/apperror"
	commonDto "anoa.com/rickmortyapi/pkg/dto"
	"github.com/gin-gonic/gin"
)

type fakeSearch struct {
	reindexed int
	err       error
}

func (f *fakeSearch) Search(ctx context.Context, query, kind string) (*commonDto.SearchResponse, error) {
	return &commonDto.SearchResponse{Query: query}, nil
}

func (f *fakeSearch) Reindex(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.reindexed++
	return nil
}

func TestReindex(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantRuns   int
	}{
		{"completes before responding", nil, http.StatusOK, 1},
		{"search not configured", apperror.Unavailable("search index is not configured"), http.StatusServiceUnavailable, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &fakeSearch{err: tt.err}
			h := NewAdminHandler(nil, nil, search)
			router := gin.New()
			router.POST("/admin/search/reindex", h.Reindex)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/search/reindex", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			if search.reindexed != tt.wantRuns {
				t.Errorf("reindex runs = %d, want %d", search.reindexed, tt.wantRuns)
			}
			if tt.err == nil {
				var res commonDto.MessageResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatal(err)
				}
				if res.Message != "catalog reindexed" {
					t.Errorf("message = %q", res.Message)
				}
			}
		})
	}
}
