package jobs

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"anoa.com/rickmortyapi/pkg/dto"
)

type countingJob struct {
	name     string
	schedule string
	runs     atomic.Int32
	err      error
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestRegister(t *testing.T) {
	s := NewScheduler()

	if err := s.Register(&countingJob{name: "nightly", schedule: "0 3 * * *"}); err != nil {
		t.Fatalf("Register(nightly) error = %v", err)
	}
	if err := s.Register(&countingJob{name: "manual"}); err != nil {
		t.Fatalf("Register(manual) error = %v", err)
	}
	if err := s.Register(&countingJob{name: "broken", schedule: "every day"}); err == nil {
		t.Error("Register(broken) should reject the schedule")
	}

	got := strings.Join(s.Jobs(), ",")
	if got != "nightly,manual" {
		t.Errorf("Jobs() = %s, want nightly,manual", got)
	}
}

func TestRunByName(t *testing.T) {
	s := NewScheduler()
	job := &countingJob{name: "manual"}
	if err := s.Register(job); err != nil {
		t.Fatal(err)
	}

	if err := s.RunByName(context.Background(), "manual"); err != nil {
		t.Fatalf("RunByName() error = %v", err)
	}
	if job.runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", job.runs.Load())
	}
	if err := s.RunByName(context.Background(), "missing"); err == nil {
		t.Error("RunByName(missing) should fail")
	}
}

func TestExecute_LogsFailureWithoutPanicking(t *testing.T) {
	s := NewScheduler()
	job := &countingJob{name: "failing", err: errors.New("boom")}
	s.execute(job)
	if job.runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", job.runs.Load())
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler()
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

type fakeSearch struct {
	reindexed int
}

func (f *fakeSearch) Search(context.Context, string, string) (*dto.SearchResponse, error) {
	return nil, nil
}

func (f *fakeSearch) Reindex(context.Context) error {
	f.reindexed++
	return nil
}

func TestReindexJob(t *testing.T) {
	svc := &fakeSearch{}
	job := NewReindexJob(svc, "*/30 * * * *")

	if job.Name() != "search-reindex" || job.Schedule() != "*/30 * * * *" {
		t.Errorf("job = %s %q", job.Name(), job.Schedule())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if svc.reindexed != 1 {
		t.Errorf("reindexed = %d, want 1", svc.reindexed)
	}
}
