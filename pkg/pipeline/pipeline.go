// Package pipeline runs the storyflow load → build → render pipeline.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read the document file into a read-only element tree
//  2. Build: catalog controllers, extract transitions and assemble the graph
//  3. Render: produce artifacts (DOT, SVG, PNG, Mermaid, JSON, YAML)
//
// Every stage is timed into [Stats], reported to the observability hooks and
// logged. Rendered artifacts are cached by graph hash, so re-rendering an
// unchanged document is a cache hit even if the file was touched.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "Main.storyboard",
//	    Formats: []string{"dot", "svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storyflow/pkg/cache"
	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/flow"
	"github.com/matzehuels/storyflow/pkg/tree"
)

// Format constants for output artifacts.
const (
	FormatDOT     = "dot"
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatMermaid = "mermaid"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
)

// ValidFormats lists the supported artifact formats in display order.
var ValidFormats = []string{FormatDOT, FormatSVG, FormatPNG, FormatMermaid, FormatJSON, FormatYAML}

// ImageFormats are the formats that can be shown in an image viewer.
var ImageFormats = []string{FormatSVG, FormatPNG}

// Extension returns the file extension written for format.
func Extension(format string) string {
	if format == FormatMermaid {
		return ".mmd"
	}
	return "." + format
}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Path is the document to load.
	Path string

	// Flow tunes graph building.
	Flow flow.Options

	// Formats are the artifacts to render. Empty means no render stage.
	Formats []string

	// Title labels the start node of diagrams; defaults to the document's
	// file name.
	Title string

	// FontName is the diagram font; empty uses the renderer default.
	FontName string

	// Colors overrides the diagram edge colour per transition kind.
	Colors map[flow.TransitionKind]string

	// Highlight names a node to emphasise in Mermaid output.
	Highlight string

	// Refresh bypasses artifact cache reads; fresh results are still stored.
	Refresh bool

	// TTL is the lifetime of cached artifacts; zero uses cache.TTLArtifact.
	TTL time.Duration

	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Document *tree.Document

	// Nodes lists every catalogued controller in document order, including
	// controllers whose display name collapsed into an earlier node.
	Nodes   []flow.ControllerNode
	Catalog *flow.Catalog
	Graph   *flow.Graph

	// GraphHash is the content hash of the graph's JSON form.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks artifact cache hits.
type CacheInfo struct {
	RenderHit bool     // every requested artifact came from cache
	Hits      []string // formats served from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format %q (must be one of: %s)", format, strings.Join(ValidFormats, ", ")).WithSubject(format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates, and validates each entry.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the document path and sets the logger default.
func (o *Options) ValidateForLoad() error {
	if err := errors.ValidateDocumentPath(o.Path); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// ValidateForRender checks render options and applies render defaults.
func (o *Options) ValidateForRender() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Title == "" && o.Path != "" {
		o.Title = filepath.Base(o.Path)
	}
	if o.TTL <= 0 {
		o.TTL = cache.TTLArtifact
	}
	o.setLogger()
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ArtifactKeyOpts returns cache key options for one artifact format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:   format,
		Title:    o.Title,
		FontName: o.FontName,
	}
	if len(o.Colors) > 0 {
		opts.Colors = make(map[string]string, len(o.Colors))
		for k, c := range o.Colors {
			opts.Colors[k.String()] = c
		}
	}
	if format == FormatMermaid {
		opts.Highlight = o.Highlight
	}
	return opts
}
