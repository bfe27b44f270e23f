package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/glucowatch/internal/cache"
	"github.com/blackwell-systems/glucowatch/internal/export"
	"github.com/blackwell-systems/glucowatch/internal/metrics"
	"github.com/blackwell-systems/glucowatch/internal/pattern"
	"github.com/blackwell-systems/glucowatch/internal/question"
)

// Pipeline runs the full analysis for one archive. It is safe for
// concurrent use: all analyzer functions are pure and the cache store
// is keyed by globally unique fingerprints.
type Pipeline struct {
	cache        *cache.Cache
	log          *zap.Logger
	maxQuestions int
}

// New builds a pipeline. A nil logger defaults to a no-op logger and a
// nil cache disables result caching.
func New(c *cache.Cache, log *zap.Logger, maxQuestions int) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if c == nil {
		c = cache.New(nil)
	}
	return &Pipeline{cache: c, log: log, maxQuestions: maxQuestions}
}

// Run analyzes the archive at path, returning the cached result when
// the archive bytes have been seen before. The caller's context bounds
// the whole run; on expiry no partial cache entry is left behind
// because the cache write only happens after full computation.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, bool, error) {
	fingerprint, err := cache.Fingerprint(path)
	if err != nil {
		return nil, false, err
	}
	log := p.log.With(zap.String("fingerprint", fingerprint[:12]))

	data, hit, err := p.cache.GetOrCompute(fingerprint, func() ([]byte, error) {
		result, err := p.compute(ctx, path, fingerprint, log)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	})
	if err != nil {
		return nil, false, err
	}
	if hit {
		log.Debug("analysis cache hit")
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("decoding cached result: %w", err)
	}
	return &result, hit, nil
}

// compute performs the uncached pipeline: parse, fan out the metrics
// analyzer and each pattern detector, join at question generation.
func (p *Pipeline) compute(ctx context.Context, path, fingerprint string, log *zap.Logger) (*Result, error) {
	rs, err := export.ParseArchive(path)
	if err != nil {
		return nil, err
	}
	if len(rs.Readings) == 0 {
		// Insulin or carb logs alone cannot drive glucose analysis.
		return nil, export.ErrNoUsableData
	}
	log.Debug("archive parsed",
		zap.Int("readings", len(rs.Readings)),
		zap.Int("insulin", len(rs.Insulin)),
		zap.Int("carbs", len(rs.Carbs)),
		zap.Int("activity", len(rs.Activity)),
		zap.Int("warnings", len(rs.Warnings)))

	readings := rs.SortedReadings()

	// The metrics analyzer and the detectors are mutually read-only
	// over the immutable record set, so they run concurrently and join
	// before question generation.
	var metricSet metrics.MetricSet
	patterns := make([]pattern.Result, len(pattern.Detectors))

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		metricSet = metrics.Compute(readings)
		return nil
	})
	for i, detect := range pattern.Detectors {
		i, detect := i, detect
		g.Go(func() error {
			patterns[i] = detect(rs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	questions := question.NewEngine().Generate(&question.Inputs{
		Metrics:  metricSet,
		Patterns: patterns,
	}, p.maxQuestions)

	return &Result{
		Fingerprint:   fingerprint,
		Window:        windowOf(rs),
		Metrics:       metricSet,
		Patterns:      patterns,
		Questions:     questions,
		ReadingCount:  len(rs.Readings),
		InsulinCount:  len(rs.Insulin),
		CarbCount:     len(rs.Carbs),
		ActivityCount: len(rs.Activity),
		Warnings:      rs.Warnings,
	}, nil
}
