package repo

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	atlaserr "github.com/codeatlas/codeatlas-go/internal/errors"
	"github.com/codeatlas/codeatlas-go/internal/extract"
)

// Config holds aggregation settings
type Config struct {
	Workers int // concurrent extractions; 1 preserves the sequential model
}

// DefaultConfig returns default aggregation settings
func DefaultConfig() *Config {
	return &Config{Workers: 1}
}

// Result is one repository-wide extraction: the de-duplicated record bundle
// plus walk statistics. The bundle is immutable once returned.
type Result struct {
	RunID       string
	Bundle      *extract.Bundle
	FilesTotal  int
	FilesParsed int
	FilesFailed int
	Duration    time.Duration
	Errors      []error
}

// Aggregator walks one or more root directories, runs the tree walker per
// eligible file, and unions the per-file record sets. Per-file failures are
// logged with the offending path and do not abort the walk.
type Aggregator struct {
	config *Config
	logger *slog.Logger
}

// NewAggregator creates a repository aggregator
func NewAggregator(config *Config) *Aggregator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Aggregator{
		config: config,
		logger: slog.Default().With("component", "aggregator"),
	}
}

// Extract walks every root and returns the unioned, de-duplicated bundle.
// Traversal order is unspecified; the result is set-equal across runs on an
// unchanged tree.
func (a *Aggregator) Extract(ctx context.Context, roots []string) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:  uuid.NewString(),
		Bundle: extract.NewBundle(),
	}

	var files []string
	for _, root := range roots {
		discovered, err := DiscoverSourceFiles(root)
		if err != nil {
			return nil, atlaserr.Wrap(err, atlaserr.CategoryIO, "walk failed")
		}
		files = append(files, discovered...)
	}
	result.FilesTotal = len(files)

	a.logger.Info("extraction started",
		"run_id", result.RunID,
		"roots", roots,
		"files", len(files),
		"workers", a.config.Workers,
	)

	// Per-file extraction shares no state; merge happens under the lock.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Workers)

	for _, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bundle, err := extract.AnalyzeFile(path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if !atlaserr.IsSkippable(err) {
					return err
				}
				result.FilesFailed++
				result.Errors = append(result.Errors, err)
				a.logger.Warn("file skipped", "path", path, "error", err)
				return nil
			}
			result.FilesParsed++
			result.Bundle.Merge(bundle)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	a.logger.Info("extraction complete",
		"run_id", result.RunID,
		"parsed", result.FilesParsed,
		"failed", result.FilesFailed,
		"entities", result.Bundle.Entities.Len(),
		"relationships", result.Bundle.Relationships.Len(),
		"calls", result.Bundle.Calls.Len(),
		"data_flows", result.Bundle.DataFlows.Len(),
		"endpoints", result.Bundle.Endpoints.Len(),
		"duration", result.Duration,
	)

	return result, nil
}
