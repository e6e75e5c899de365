package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storyflow/pkg/cache"
	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/flow"
	"github.com/matzehuels/storyflow/pkg/io"
	"github.com/matzehuels/storyflow/pkg/levenshtein"
	"github.com/matzehuels/storyflow/pkg/observability"
	"github.com/matzehuels/storyflow/pkg/tree"
)

// Runner executes the pipeline with artifact caching.
//
// The Runner holds no per-run state; multiple goroutines can use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer uses [cache.DefaultKeyer], a nil
// cache disables caching and a nil logger uses the charm default logger.
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
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load → build → render. The render stage is skipped when
// opts.Formats is empty. The context is checked between stages.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	doc, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Document = doc
	result.Stats.LoadTime = time.Since(loadStart)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Build
	buildStart := time.Now()
	built, err := r.Build(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Nodes = built.Nodes
	result.Catalog = built.Catalog
	result.Graph = built.Graph
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = built.Graph.NodeCount()
	result.Stats.EdgeCount = built.Graph.EdgeCount()

	if data, err := io.MarshalJSON(built.Graph); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	r.Logger.Info("built flow graph",
		"controllers", built.Catalog.Len(),
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.BuildTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, info, err := r.RenderWithCacheInfo(ctx, built.Graph, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo = info
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", len(info.Hits),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads and parses the document at opts.Path.
func (r *Runner) Load(ctx context.Context, opts Options) (*tree.Document, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Path)
	start := time.Now()

	doc, err := tree.ParseFileWithLimits(opts.Path, opts.Flow.Limits())
	if err != nil {
		err = errors.EnsureSubject(err, opts.Path)
	}
	hooks.OnLoadComplete(ctx, opts.Path, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("loaded document", "path", opts.Path, "root", doc.Root.Tag(), "duration", time.Since(start))
	return doc, nil
}

// Built holds the outputs of the build stage.
type Built struct {
	Nodes   []flow.ControllerNode
	Catalog *flow.Catalog
	Edges   []flow.TransitionEdge
	Graph   *flow.Graph
}

// Build runs the three graph-building stages over a loaded document. It is
// equivalent to [flow.Build] but keeps the intermediate catalog for
// reporting.
func (r *Runner) Build(ctx context.Context, doc *tree.Document, opts Options) (*Built, error) {
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, doc.Path)
	start := time.Now()

	built, err := r.build(ctx, doc, opts)
	nodes, edges := 0, 0
	if err == nil {
		nodes, edges = built.Graph.NodeCount(), built.Graph.EdgeCount()
	}
	hooks.OnBuildComplete(ctx, doc.Path, nodes, edges, time.Since(start), err)
	return built, err
}

func (r *Runner) build(ctx context.Context, doc *tree.Document, opts Options) (*Built, error) {
	nodes, cat, err := flow.BuildCatalog(doc.Root, opts.Flow)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("catalogued controllers", "count", cat.Len(), "names", len(cat.Names()))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	edges, err := flow.ExtractTransitions(doc.Root, cat, opts.Flow)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("extracted transitions", "count", len(edges), "workers", opts.Flow.Workers)
	if opts.Logger.GetLevel() <= log.DebugLevel {
		logUnwinds(opts.Logger, edges, cat.Names(), opts.Flow)
	}

	initialID, _ := doc.Root.Attr(flow.AttrInitialViewController)
	g, err := flow.AssembleGraph(nodes, edges, initialID, cat)
	if err != nil {
		return nil, err
	}
	if g.InitialNodeName() == flow.Unknown {
		opts.Logger.Warn("initial controller not resolved", "id", initialID)
	}
	return &Built{Nodes: nodes, Catalog: cat, Edges: edges, Graph: g}, nil
}

// RenderWithCacheInfo renders every format in opts.Formats, serving what it
// can from the cache and storing what it had to render.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *flow.Graph, opts Options) (map[string][]byte, CacheInfo, error) {
	var info CacheInfo
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, info, err
	}

	graphData, err := io.MarshalJSON(g)
	if err != nil {
		return nil, info, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	graphHash := cache.Hash(graphData)
	cacheHooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				cacheHooks.OnCacheHit(ctx, format)
				artifacts[format] = data
				info.Hits = append(info.Hits, format)
				continue
			}
		}
		cacheHooks.OnCacheMiss(ctx, format)
		missing = append(missing, format)
	}
	info.RenderHit = len(missing) == 0

	if len(missing) > 0 {
		hooks := observability.Pipeline()
		hooks.OnRenderStart(ctx, missing)
		start := time.Now()
		rendered, err := Render(ctx, g, missing, opts)
		hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
		if err != nil {
			return nil, info, err
		}

		for format, data := range rendered {
			artifacts[format] = data
			key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, key, data, opts.TTL); err != nil {
				opts.Logger.Warn("cache write failed", "format", format, "error", err)
				continue
			}
			cacheHooks.OnCacheSet(ctx, format, len(data))
		}
	}

	return artifacts, info, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *flow.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
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

// logUnwinds explains each unwind resolution together with the runner-up
// candidate, which shows how close the call was.
func logUnwinds(l *log.Logger, edges []flow.TransitionEdge, names []string, fo flow.Options) {
	for _, e := range edges {
		if e.Kind != flow.Unwind {
			continue
		}
		ranked := levenshtein.Rank(flow.NormalizeIdentifier(e.Label, fo), names)
		runnerUp := "none"
		if len(ranked) > 1 {
			runnerUp = fmt.Sprintf("%s (%d)", ranked[1].Candidate, ranked[1].Distance)
		}
		l.Debug("resolved unwind", "segue", e.ID, "identifier", e.Label,
			"destination", e.Destination, "distance", e.Distance, "runner_up", runnerUp)
	}
}
