package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/storyflow/pkg/flow"
	"github.com/matzehuels/storyflow/pkg/io"
	"github.com/matzehuels/storyflow/pkg/render/dot"
	"github.com/matzehuels/storyflow/pkg/render/mermaid"
)

// Render produces the requested artifact formats for g. Image formats are
// laid out concurrently; the DOT source they share is generated once.
func Render(ctx context.Context, g *flow.Graph, formats []string, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	src := dot.ToDOT(g, dot.Options{Title: opts.Title, FontName: opts.FontName, Colors: opts.Colors})

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(formats))
	)
	eg, ctx := errgroup.WithContext(ctx)
	for _, format := range formats {
		eg.Go(func() error {
			data, err := renderFormat(ctx, g, src, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, g *flow.Graph, src, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(src), nil
	case FormatSVG, FormatPNG:
		return dot.Render(ctx, src, format)
	case FormatMermaid:
		return []byte(mermaid.Generate(g, mermaid.Options{Title: opts.Title, Highlight: opts.Highlight})), nil
	case FormatJSON:
		var buf bytes.Buffer
		err := io.WriteJSON(g, &buf)
		return buf.Bytes(), err
	case FormatYAML:
		var buf bytes.Buffer
		err := io.WriteYAML(g, &buf)
		return buf.Bytes(), err
	default:
		return nil, ValidateFormat(format)
	}
}
