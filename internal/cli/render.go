package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // base path; each format appends its extension
	formats   string // comma-separated formats; empty uses the config
	title     string // start node label; defaults to the file name
	highlight string // node emphasised in Mermaid output
	noView    bool   // do not open the first image in the system viewer
	noCache   bool   // neither read nor write the artifact cache
	refresh   bool   // re-render even when cached
}

// renderCommand creates the render command for writing diagrams and exports.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <file.storyboard>",
		Short: "Render the navigation graph to DOT, SVG, PNG, Mermaid, JSON or YAML",
		Long: `Render the navigation graph of a storyboard. One file is written per format,
named after --output (or the input file) with the format's extension.

Rendered artifacts are cached by graph content, so re-rendering an unchanged
storyboard is instant. The first SVG or PNG is opened in the system viewer
unless --no-view is given or the config sets render.view = false.`,
		Example: `  storyflow render Main.storyboard
  storyflow render Main.storyboard -f dot,svg,mermaid -o build/flow
  storyflow render Main.storyboard -f mermaid --highlight HomeViewController --no-view`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input path without extension)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.ValidFormats, ", ")+" (comma-separated)")
	cmd.Flags().StringVar(&opts.title, "title", "", "label of the diagram's start node")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "screen to highlight in Mermaid output")
	cmd.Flags().BoolVar(&opts.noView, "no-view", false, "do not open the rendered image")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	formats := c.Config.Render.Formats
	if opts.formats != "" {
		var err error
		if formats, err = pipeline.ParseFormats(opts.formats); err != nil {
			return err
		}
	}
	if len(formats) == 0 {
		formats = []string{pipeline.FormatSVG}
	}
	if err := errors.ValidateOutputPath(opts.output); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(input)
	popts.Formats = formats
	popts.Title = opts.title
	popts.Highlight = opts.highlight
	popts.Refresh = opts.refresh

	logger.Infof("Rendering %s", input)
	spin := newSpinnerWithContext(ctx, os.Stderr, "Rendering "+strings.Join(formats, ", ")+"...")
	spin.Start()
	prog := newProgress(logger)
	res, err := runner.Execute(ctx, popts)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d artifacts", len(res.Artifacts)))

	printSuccess(c.Out, "Rendered %s", filepath.Base(input))
	printStats(c.Out, res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.RenderHit)

	paths, err := writeArtifacts(res.Artifacts, formats, basePath(opts.output, input))
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(c.Out, p)
	}

	if opts.noView || !c.Config.Render.View {
		return nil
	}
	if img := firstImage(paths); img != "" {
		if err := openViewer(img); err != nil {
			logger.Warn("Could not open viewer", "path", img, "err", err)
		}
	}
	return nil
}

// basePath strips a known format extension from output, or derives the base
// from the input file when output is empty.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	for _, f := range pipeline.ValidFormats {
		if ext == pipeline.Extension(f) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// writeArtifacts writes one file per format in the requested order and
// returns the paths written.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory").WithSubject(dir)
		}
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			return paths, errors.New(errors.ErrCodeInternal, "no %s artifact was rendered", f).WithSubject(f)
		}
		path := base + pipeline.Extension(f)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", f).WithSubject(path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func firstImage(paths []string) string {
	for _, p := range paths {
		if slices.Contains(pipeline.ImageFormats, strings.TrimPrefix(filepath.Ext(p), ".")) {
			return p
		}
	}
	return ""
}
