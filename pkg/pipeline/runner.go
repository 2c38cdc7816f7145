package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mealyetf/pkg/cache"
	mio "github.com/matzehuels/mealyetf/pkg/io"
	"github.com/matzehuels/mealyetf/pkg/mealy"
	"github.com/matzehuels/mealyetf/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads the machine and produces every requested artifact, reading
// from and writing to the cache.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Artifacts: make(map[string][]byte, len(opts.Formats)),
		CacheInfo: CacheInfo{Hits: make(map[string]bool, len(opts.Formats))},
	}

	// Stage 1: Load
	loadStart := time.Now()
	m, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Machine = m
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.States = m.NumStates()
	result.Stats.Transitions = m.NumTransitions()
	result.Stats.Complete = mealy.Complete[string, string, string](m, m.Inputs())

	var canonical bytes.Buffer
	if err := mio.WriteJSON(&canonical, m); err != nil {
		return nil, fmt.Errorf("hash machine: %w", err)
	}
	result.MachineHash = cache.Hash(canonical.Bytes())

	r.Logger.Debug("loaded machine",
		"source", opts.sourceName(),
		"states", result.Stats.States,
		"transitions", result.Stats.Transitions,
		"duration", result.Stats.LoadTime)

	// Stage 2: Produce
	produceStart := time.Now()
	observability.Convert().OnConvertStart(ctx, opts.Formats)
	err = r.produceAll(ctx, m, result, opts)
	result.Stats.ProduceTime = time.Since(produceStart)
	observability.Convert().OnConvertComplete(ctx, opts.Formats, result.Stats.ProduceTime, err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("converted machine",
		"formats", opts.Formats,
		"cached", result.CacheInfo.AllHit(),
		"duration", result.Stats.ProduceTime)

	return result, nil
}

// Load decodes the machine named by opts and reports it to the conversion
// hooks.
func (r *Runner) Load(ctx context.Context, opts Options) (*mio.Machine, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	var (
		m   *mio.Machine
		err error
	)
	if opts.Path != "" {
		m, err = mio.Import(opts.Path)
	} else {
		m, err = mio.ReadBytes(opts.Source, opts.SourceFormat)
	}

	if err != nil {
		observability.Convert().OnLoad(ctx, opts.sourceName(), 0, 0, err)
		return nil, err
	}
	observability.Convert().OnLoad(ctx, opts.sourceName(), m.NumStates(), m.NumTransitions(), nil)
	return m, nil
}

func (r *Runner) produceAll(ctx context.Context, m *mio.Machine, result *Result, opts Options) error {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = cache.TTLArtifact
	}
	p := &producer{machine: m, logger: opts.Logger}

	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(result.MachineHash, format)

		if !opts.Refresh {
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				r.Logger.Warn("cache read failed", "format", format, "err", err)
			}
			if err == nil && hit {
				observability.Cache().OnCacheHit(ctx, format)
				result.Artifacts[format] = data
				result.CacheInfo.Hits[format] = true
				continue
			}
			observability.Cache().OnCacheMiss(ctx, format)
		}

		data, err := p.produce(ctx, format)
		if err != nil {
			return err
		}
		result.Artifacts[format] = data
		result.CacheInfo.Hits[format] = false

		if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, format, len(data))
	}

	result.Stats.Expansion = p.expansionStats()
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
