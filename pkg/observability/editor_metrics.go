package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricJobsTotal      = "quill.jobs.total"
	metricTicksTotal     = "quill.jobs.ticks.total"
	metricTickDuration   = "quill.jobs.tick.duration.seconds"
	metricCacheHitsTotal = "quill.cache.hits.total"
	metricCacheMissTotal = "quill.cache.misses.total"

	attrCache = "cache"
)

// EditorMetrics holds OTel instruments for the job scheduler and the
// buffer-side caches (tokenizer check-points, completion candidates).
type EditorMetrics struct {
	jobsTotal    metric.Int64Counter
	ticksTotal   metric.Int64Counter
	tickDuration metric.Float64Histogram
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
}

// RunStats holds the statistics for one frame's worth of scheduler work,
// decoupled from the jobqueue package's own types.
type RunStats struct {
	JobsFinished   int64
	Ticks          int
	TickDurations  []time.Duration
	TokenCacheHits int64
	TokenCacheMiss int64
	CompleteHits   int64
	CompleteMisses int64
}

// NewEditorMetrics creates the editor metric instruments from the given meter.
func NewEditorMetrics(mt metric.Meter) (*EditorMetrics, error) {
	jobs, err := mt.Int64Counter(metricJobsTotal,
		metric.WithDescription("Total jobs finished by the scheduler"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricJobsTotal, err)
	}

	ticks, err := mt.Int64Counter(metricTicksTotal,
		metric.WithDescription("Total scheduler ticks processed"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricTicksTotal, err)
	}

	tickDur, err := mt.Float64Histogram(metricTickDuration,
		metric.WithDescription("Per-tick scheduler duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricTickDuration, err)
	}

	hits, err := mt.Int64Counter(metricCacheHitsTotal,
		metric.WithDescription("Cache hits by cache name"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheHitsTotal, err)
	}

	misses, err := mt.Int64Counter(metricCacheMissTotal,
		metric.WithDescription("Cache misses by cache name"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheMissTotal, err)
	}

	return &EditorMetrics{
		jobsTotal:    jobs,
		ticksTotal:   ticks,
		tickDuration: tickDur,
		cacheHits:    hits,
		cacheMisses:  misses,
	}, nil
}

// RecordRun records scheduler and cache statistics for a completed frame.
// Safe to call on a nil receiver (no-op), so callers need not guard every
// call site when metrics are disabled.
func (em *EditorMetrics) RecordRun(ctx context.Context, stats RunStats) {
	if em == nil {
		return
	}

	em.jobsTotal.Add(ctx, stats.JobsFinished)
	em.ticksTotal.Add(ctx, int64(stats.Ticks))

	for _, d := range stats.TickDurations {
		em.tickDuration.Record(ctx, d.Seconds())
	}

	tokenAttrs := metric.WithAttributes(attribute.String(attrCache, "tokenizer"))
	em.cacheHits.Add(ctx, stats.TokenCacheHits, tokenAttrs)
	em.cacheMisses.Add(ctx, stats.TokenCacheMiss, tokenAttrs)

	completionAttrs := metric.WithAttributes(attribute.String(attrCache, "completion"))
	em.cacheHits.Add(ctx, stats.CompleteHits, completionAttrs)
	em.cacheMisses.Add(ctx, stats.CompleteMisses, completionAttrs)
}
