package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/storyflow/pkg/cache"
	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/flow"
	"github.com/matzehuels/storyflow/pkg/observability"
)

var samplePath = filepath.Join("..", "flow", "testdata", "sample.storyboard")

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"mermaid", false},
		{"json", false},
		{"yaml", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats(" dot, SVG ,,dot,mermaid")
	require.NoError(t, err)
	assert.Equal(t, []string{"dot", "svg", "mermaid"}, got)

	_, err = ParseFormats("svg,gif")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	got, err = ParseFormats("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".svg", Extension(FormatSVG))
	assert.Equal(t, ".mmd", Extension(FormatMermaid))
	assert.Equal(t, ".dot", Extension(FormatDOT))
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Path: samplePath}
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, "sample.storyboard", opts.Title)
	assert.Equal(t, cache.TTLArtifact, opts.TTL)
	assert.NotNil(t, opts.Logger)

	bad := Options{Path: "flow.txt"}
	err := bad.ValidateAndSetDefaults()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath))
}

func TestExecuteBuildsSample(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Path: samplePath})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Catalog.Len())
	assert.Len(t, res.Nodes, 3)
	assert.Equal(t, 3, res.Stats.NodeCount)
	assert.Equal(t, 2, res.Stats.EdgeCount)
	assert.Equal(t, "navigationController-rS3-R9-Ivy", res.Graph.InitialNodeName())
	assert.Len(t, res.GraphHash, 64)
	assert.Empty(t, res.Artifacts, "no formats requested")
	assert.Equal(t, samplePath, res.Document.Path)
}

func TestExecuteRendersAndCaches(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(c, cache.NewScopedKeyer(nil, "test:"), nil)
	opts := Options{Path: samplePath, Formats: []string{FormatDOT, FormatMermaid, FormatJSON}}

	first, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.RenderHit)
	assert.Empty(t, first.CacheInfo.Hits)
	require.Len(t, first.Artifacts, 3)
	assert.Contains(t, string(first.Artifacts[FormatDOT]), `"" [label="sample.storyboard" shape=none]`)
	assert.True(t, strings.HasPrefix(string(first.Artifacts[FormatMermaid]), "graph TD"))
	assert.Contains(t, string(first.Artifacts[FormatJSON]), `"initial": "navigationController-rS3-R9-Ivy"`)

	second, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.ElementsMatch(t, opts.Formats, second.CacheInfo.Hits)
	assert.Equal(t, first.Artifacts, second.Artifacts)

	opts.Refresh = true
	third, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, third.CacheInfo.RenderHit, "refresh must bypass cache reads")
}

func TestRenderCacheKeyFollowsOptions(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(c, nil, nil)

	_, err = r.Execute(context.Background(), Options{Path: samplePath, Formats: []string{FormatDOT}})
	require.NoError(t, err)

	res, err := r.Execute(context.Background(), Options{
		Path:    samplePath,
		Formats: []string{FormatDOT},
		Colors:  map[flow.TransitionKind]string{flow.Push: "green"},
	})
	require.NoError(t, err)
	assert.False(t, res.CacheInfo.RenderHit)
	assert.Contains(t, string(res.Artifacts[FormatDOT]), "color=green")
}

func TestExecuteErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := []struct {
		name        string
		path        string
		code        errors.Code
		wantSubject string
	}{
		{
			name: "missing file",
			path: filepath.Join(dir, "missing.storyboard"),
			code: errors.ErrCodeFileNotFound,
		},
		{
			name: "not xml",
			path: write("broken.storyboard", "<document><scenes>"),
			code: errors.ErrCodeMalformedDocument,
		},
		{
			name: "unknown kind",
			path: write("kind.storyboard", `<document>
  <viewController id="a" customClass="A">
    <segue id="s1" kind="teleport" destination="a"/>
  </viewController>
</document>`),
			code:        errors.ErrCodeUnknownTransitionKind,
			wantSubject: "teleport",
		},
		{
			name: "dangling destination",
			path: write("dangling.storyboard", `<document>
  <viewController id="a" customClass="A">
    <segue id="s1" kind="push" destination="zzz"/>
  </viewController>
</document>`),
			code:        errors.ErrCodeMalformedDocument,
			wantSubject: "zzz",
		},
	}

	r := NewRunner(nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), Options{Path: tt.path})
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
			want := tt.wantSubject
			if want == "" {
				want = tt.path
			}
			assert.Equal(t, want, errors.SubjectOf(err))
		})
	}
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, nil).Execute(ctx, Options{Path: samplePath, Formats: []string{FormatDOT}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteReportsHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetPipelineHooks(rec)
	t.Cleanup(observability.Reset)

	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Path:    samplePath,
		Formats: []string{FormatMermaid},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"load-start", "load", "build-start", "build 3/2", "render-start", "render [mermaid]"}, rec.events)
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLoadStart(context.Context, string) { h.add("load-start") }
func (h *recordingHooks) OnLoadComplete(context.Context, string, time.Duration, error) {
	h.add("load")
}
func (h *recordingHooks) OnBuildStart(context.Context, string) { h.add("build-start") }
func (h *recordingHooks) OnBuildComplete(_ context.Context, _ string, nodes, edges int, _ time.Duration, _ error) {
	h.add(fmt.Sprintf("build %d/%d", nodes, edges))
}
func (h *recordingHooks) OnRenderStart(context.Context, []string) { h.add("render-start") }
func (h *recordingHooks) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, _ error) {
	h.add("render [" + strings.Join(formats, ",") + "]")
}

func TestExecuteLogsUnwindResolution(t *testing.T) {
	var buf strings.Builder
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	runner := NewRunner(nil, nil, logger)
	_, err := runner.Execute(context.Background(), Options{
		Path: filepath.Join("..", "flow", "testdata", "stickers.storyboard"),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "resolved unwind")
	assert.Contains(t, out, "Seg-07-unw")
	assert.Contains(t, out, "runner_up")
}

func TestLoadAppliesTraversalBounds(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	_, err := r.Load(context.Background(), Options{Path: samplePath, Flow: flow.Options{MaxDepth: 2}})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMalformedDocument, errors.GetCode(err))
	assert.Contains(t, errors.UserMessage(err), "deeper than 2 levels")

	doc, err := r.Load(context.Background(), Options{Path: samplePath})
	require.NoError(t, err)
	assert.Equal(t, "document", doc.Root.Tag())
}
