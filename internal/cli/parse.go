package cli

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/flow"
	pkgio "github.com/matzehuels/storyflow/pkg/io"
	"github.com/matzehuels/storyflow/pkg/pipeline"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	output  string // export file; the report is printed either way
	format  string // export format: json or yaml
	workers int    // concurrent transition extraction; 0 keeps the config value
}

// parseCommand creates the parse command, which builds the graph and prints
// the report.
func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse <file.storyboard>",
		Short: "Build the navigation graph and print a report",
		Long: `Build the navigation graph of a storyboard and print the document's root
attributes, its controllers, the id-to-name catalog and every transition.
Unwind transitions show how closely their identifier matched the chosen screen.

With --output the graph is also exported as JSON or YAML. With --format and no
--output the export is written to stdout instead of the report.`,
		Example: `  storyflow parse Main.storyboard
  storyflow parse Main.storyboard -o graph.json
  storyflow parse Main.storyboard --format yaml > graph.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "export the graph to this file")
	cmd.Flags().StringVar(&opts.format, "format", "", "export format: json, yaml (default: from --output extension, else json)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "extract transitions with this many workers")

	return cmd
}

func (c *CLI) runParse(cmd *cobra.Command, path string, opts parseOpts) error {
	format, err := exportFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	if err := errors.ValidateOutputPath(opts.output); err != nil {
		return err
	}

	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(path)
	if opts.workers > 0 {
		popts.Flow.Workers = opts.workers
	}

	ctx := cmd.Context()
	prog := newProgress(loggerFromContext(ctx))
	res, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	prog.done("Built navigation graph")

	if opts.format != "" && opts.output == "" {
		return writeExport(cmd.OutOrStdout(), res.Graph, format)
	}

	writeReport(c.Out, res, popts.Flow)
	if res.Graph.InitialNodeName() == flow.Unknown {
		printWarning(c.Out, "initial controller could not be resolved")
	}

	if opts.output == "" {
		return nil
	}
	if err := exportGraph(res.Graph, opts.output, format); err != nil {
		return err
	}
	printSuccess(c.Out, "Exported graph")
	printFile(c.Out, opts.output)
	return nil
}

// exportFormat picks the export format from the flag or the output file's
// extension.
func exportFormat(flag, output string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" {
		switch strings.ToLower(filepath.Ext(output)) {
		case ".yaml", ".yml":
			format = pipeline.FormatYAML
		default:
			format = pipeline.FormatJSON
		}
	}
	if format != pipeline.FormatJSON && format != pipeline.FormatYAML {
		return "", errors.New(errors.ErrCodeInvalidFormat, "export format must be json or yaml").WithSubject(format)
	}
	return format, nil
}

func exportGraph(g *flow.Graph, path, format string) error {
	if format == pipeline.FormatYAML {
		return pkgio.ExportYAML(g, path)
	}
	return pkgio.ExportJSON(g, path)
}

func writeExport(w io.Writer, g *flow.Graph, format string) error {
	if format == pipeline.FormatYAML {
		return pkgio.WriteYAML(g, w)
	}
	return pkgio.WriteJSON(g, w)
}
