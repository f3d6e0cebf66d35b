package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/fraudlens/internal/cache"
	"github.com/ppiankov/fraudlens/internal/model"
	"gopkg.in/yaml.v3"
)

// mockRunner counts scoring calls and returns a minimal report
type mockRunner struct {
	calls int32
	fail  bool
}

func (m *mockRunner) ScoreRecords(ctx context.Context, name string, records []model.PolicyRecord, scoring model.ScoringConfig) (*model.Report, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.fail {
		return nil, errors.New("scoring failed")
	}
	return &model.Report{
		Dataset: name,
		Summary: model.Summary{TotalRecords: len(records)},
		Config:  scoring,
	}, nil
}

func writeDataset(t *testing.T, dir, name string, rows int) string {
	t.Helper()
	content := "customer_id,gender,age,car_model_year,annual_premium,total_loss\n"
	for i := 0; i < rows; i++ {
		content += fmt.Sprintf("%d,Male,40,2015,1200.00,0.00\n", i+1)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func TestBatchProcessor_Process(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeDataset(t, dir, "a.csv", 5),
		writeDataset(t, dir, "b.csv", 3),
	}
	tunings := []Tuning{
		{Name: "default", Scoring: model.DefaultScoringConfig()},
		{Name: "strict", Scoring: model.DefaultScoringConfig()},
	}

	runner := &mockRunner{}
	processor := NewBatchProcessor(runner, nil, 2)

	results := processor.Process(context.Background(), paths, tunings)

	// 2 datasets x 2 tunings
	if len(results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("%s [%s]: %v", r.DatasetPath, r.TuningName, r.Error)
		}
		if r.FromCache {
			t.Errorf("%s [%s]: unexpected cache hit", r.DatasetPath, r.TuningName)
		}
	}
	if got := atomic.LoadInt32(&runner.calls); got != 4 {
		t.Errorf("Expected 4 scoring calls, got %d", got)
	}
}

func TestBatchProcessor_Process_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockRunner{}, nil, 2)

	if got := processor.Process(context.Background(), nil, nil); len(got) != 0 {
		t.Errorf("Expected no results, got %d", len(got))
	}
}

func TestBatchProcessor_Process_MissingDataset(t *testing.T) {
	runner := &mockRunner{}
	processor := NewBatchProcessor(runner, nil, 1)

	results := processor.Process(context.Background(),
		[]string{"/nonexistent/data.csv"},
		[]Tuning{{Name: "default", Scoring: model.DefaultScoringConfig()}})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("Expected error for missing dataset")
	}
	if atomic.LoadInt32(&runner.calls) != 0 {
		t.Error("Runner should not be called for unreadable datasets")
	}
}

func TestScoreJob_CacheHitSkipsScoring(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, "a.csv", 5)
	tuning := Tuning{Name: "default", Scoring: model.DefaultScoringConfig()}

	c := cache.NewMemoryCache(time.Hour, time.Hour)
	runner := &mockRunner{}
	job := &ScoreJob{DatasetPath: path, Tuning: tuning, Runner: runner, Cache: c}

	// First run scores and populates the cache
	first := job.Execute(context.Background()).(*ScoreResult)
	if first.Error != nil {
		t.Fatalf("First run failed: %v", first.Error)
	}
	if first.FromCache {
		t.Error("First run should not hit the cache")
	}

	// Second run with identical dataset and tuning comes from the cache
	second := job.Execute(context.Background()).(*ScoreResult)
	if second.Error != nil {
		t.Fatalf("Second run failed: %v", second.Error)
	}
	if !second.FromCache {
		t.Error("Second run should hit the cache")
	}
	if second.Report.Summary.TotalRecords != first.Report.Summary.TotalRecords {
		t.Error("Cached report differs from original")
	}
	if got := atomic.LoadInt32(&runner.calls); got != 1 {
		t.Errorf("Expected 1 scoring call, got %d", got)
	}
}

func TestScoreJob_DatasetChangeInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, "a.csv", 5)
	tuning := Tuning{Name: "default", Scoring: model.DefaultScoringConfig()}

	c := cache.NewMemoryCache(time.Hour, time.Hour)
	runner := &mockRunner{}
	job := &ScoreJob{DatasetPath: path, Tuning: tuning, Runner: runner, Cache: c}

	if r := job.Execute(context.Background()).(*ScoreResult); r.Error != nil {
		t.Fatalf("First run failed: %v", r.Error)
	}

	// Rewrite the dataset with different content: the key changes
	writeDataset(t, dir, "a.csv", 7)

	second := job.Execute(context.Background()).(*ScoreResult)
	if second.Error != nil {
		t.Fatalf("Second run failed: %v", second.Error)
	}
	if second.FromCache {
		t.Error("Changed dataset must not hit the cache")
	}
	if got := atomic.LoadInt32(&runner.calls); got != 2 {
		t.Errorf("Expected 2 scoring calls, got %d", got)
	}
}

func TestScoreJob_CorruptCacheEntryIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, "a.csv", 2)
	tuning := Tuning{Name: "default", Scoring: model.DefaultScoringConfig()}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tuningYAML, err := yaml.Marshal(tuning.Scoring)
	if err != nil {
		t.Fatal(err)
	}

	c := cache.NewMemoryCache(time.Hour, time.Hour)
	key := cache.ReportKey(raw, tuningYAML)
	if err := c.Set(key, []byte("not json"), 0); err != nil {
		t.Fatal(err)
	}

	runner := &mockRunner{}
	job := &ScoreJob{DatasetPath: path, Tuning: tuning, Runner: runner, Cache: c}

	result := job.Execute(context.Background()).(*ScoreResult)
	if result.Error != nil {
		t.Fatalf("Execute failed: %v", result.Error)
	}
	if result.FromCache {
		t.Error("Corrupt entry must not count as a cache hit")
	}
	if atomic.LoadInt32(&runner.calls) != 1 {
		t.Error("Expected a fresh scoring run")
	}
}

func TestReadPathsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paths.txt")
	content := `# datasets
data/a.csv

data/b.csv
data/a.csv
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := ReadPathsFromFile(path)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}

	// Comments, blanks and duplicates dropped
	if len(paths) != 2 {
		t.Fatalf("Expected 2 paths, got %d: %v", len(paths), paths)
	}
	if paths[0] != "data/a.csv" || paths[1] != "data/b.csv" {
		t.Errorf("Unexpected paths: %v", paths)
	}
}
