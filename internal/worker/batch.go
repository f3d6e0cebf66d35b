package worker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/fraudlens/internal/cache"
	"github.com/ppiankov/fraudlens/internal/dataset"
	"github.com/ppiankov/fraudlens/internal/model"
	"gopkg.in/yaml.v3"
)

// Runner scores one loaded table under one rule tuning
type Runner interface {
	ScoreRecords(ctx context.Context, name string, records []model.PolicyRecord, scoring model.ScoringConfig) (*model.Report, error)
}

// Tuning is a named scoring configuration used in a sweep
type Tuning struct {
	Name    string
	Scoring model.ScoringConfig
}

// ScoreJob scores a single dataset under a single tuning
type ScoreJob struct {
	DatasetPath string
	Tuning      Tuning
	Runner      Runner
	Cache       cache.Cache // Optional; nil disables caching
}

// ScoreResult is the outcome of one dataset/tuning pair
type ScoreResult struct {
	DatasetPath string
	TuningName  string
	Report      *model.Report
	FromCache   bool
	Error       error
}

// Err returns the job error, if any
func (r *ScoreResult) Err() error {
	return r.Error
}

// Execute runs the scoring job, consulting the report cache first. The key
// covers the raw dataset bytes and the tuning, so any change to either
// forces a fresh run.
func (j *ScoreJob) Execute(ctx context.Context) Result {
	fail := func(err error) Result {
		return &ScoreResult{DatasetPath: j.DatasetPath, TuningName: j.Tuning.Name, Error: err}
	}

	raw, err := os.ReadFile(j.DatasetPath)
	if err != nil {
		return fail(fmt.Errorf("read dataset: %w", err))
	}

	var key string
	if j.Cache != nil {
		tuningYAML, err := yaml.Marshal(j.Tuning.Scoring)
		if err != nil {
			return fail(fmt.Errorf("marshal tuning: %w", err))
		}
		key = cache.ReportKey(raw, tuningYAML)

		if data, found := j.Cache.Get(key); found {
			var report model.Report
			if err := json.Unmarshal(data, &report); err == nil {
				return &ScoreResult{
					DatasetPath: j.DatasetPath,
					TuningName:  j.Tuning.Name,
					Report:      &report,
					FromCache:   true,
				}
			}
			// Corrupt entry: drop it and score fresh
			_ = j.Cache.Delete(key)
		}
	}

	records, err := dataset.NewLoader().Read(bytes.NewReader(raw))
	if err != nil {
		if ve, ok := err.(*model.ValidationError); ok {
			ve.Dataset = j.DatasetPath
		}
		return fail(err)
	}

	report, err := j.Runner.ScoreRecords(ctx, j.DatasetPath, records, j.Tuning.Scoring)
	if err != nil {
		return fail(err)
	}

	if j.Cache != nil {
		if data, err := json.Marshal(report); err == nil {
			_ = j.Cache.Set(key, data, 0)
		}
	}

	return &ScoreResult{
		DatasetPath: j.DatasetPath,
		TuningName:  j.Tuning.Name,
		Report:      report,
	}
}

// BatchProcessor fans dataset × tuning pairs out over a worker pool
type BatchProcessor struct {
	runner      Runner
	cache       cache.Cache
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(runner Runner, cache cache.Cache, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		cache:       cache,
		concurrency: concurrency,
	}
}

// Process scores every dataset under every tuning concurrently
func (b *BatchProcessor) Process(ctx context.Context, paths []string, tunings []Tuning) []*ScoreResult {
	if len(paths) == 0 || len(tunings) == 0 {
		return []*ScoreResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Submit concurrently so a sweep larger than the channel buffers cannot
	// stall against an undrained results channel
	go func() {
		for _, path := range paths {
			for _, tuning := range tunings {
				pool.Submit(&ScoreJob{
					DatasetPath: path,
					Tuning:      tuning,
					Runner:      b.runner,
					Cache:       b.cache,
				})
			}
		}
		pool.Close()
	}()

	results := pool.Wait()

	scoreResults := make([]*ScoreResult, len(results))
	for i, result := range results {
		scoreResults[i] = result.(*ScoreResult)
	}
	return scoreResults
}

// ReadPathsFromFile reads dataset paths from a file (one per line).
// Blank lines and #-comments are skipped; duplicates are dropped.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
