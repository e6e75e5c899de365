package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storyflow/pkg/errors"
)

// exploreCommand creates the explore command, an interactive browser over
// the screens of a storyboard and their transitions.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore <file.storyboard>",
		Short: "Browse screens and their transitions interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(true)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Execute(ctx, c.pipelineOptions(args[0]))
			if err != nil {
				return err
			}
			if res.Graph.NodeCount() == 0 {
				printInfo(c.Out, "No screens in %s", args[0])
				return nil
			}

			p := tea.NewProgram(NewExploreModel(res.Graph), tea.WithContext(ctx), tea.WithAltScreen())
			final, err := p.Run()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "explorer")
			}
			if m, ok := final.(ExploreModel); ok {
				printDetail(c.Out, "Last screen: %s", m.Current().DisplayName)
			}
			return nil
		},
	}
}
