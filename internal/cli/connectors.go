package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/indoorroute/pkg/connector"
)

// connectorsCommand creates the "connectors" command.
func (c *CLI) connectorsCommand() *cobra.Command {
	var (
		types  []string
		output string
	)

	cmd := &cobra.Command{
		Use:   "connectors",
		Short: "Show how floors are connected",
		Long: `Render the building's floor connectivity as a Graphviz graph.

Without --output the DOT source is printed. An output path ending in .svg is
rendered with Graphviz; any other extension receives the DOT source.`,
		Example: `  indoorroute connectors
  indoorroute connectors --via elevator -o elevators.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var filter []connector.Type
			for _, s := range types {
				t, err := connector.ParseType(s)
				if err != nil {
					return err
				}
				filter = append(filter, t)
			}

			e, release, err := c.newEngine(ctx, nil)
			if err != nil {
				return err
			}
			defer release()

			cons, err := e.Connectors(ctx)
			if err != nil {
				return err
			}
			if len(cons) == 0 {
				printInfo("No connectors defined")
				return nil
			}

			dot := connector.DOT(cons, filter...)
			if output == "" {
				fmt.Print(dot)
				return nil
			}

			data := []byte(dot)
			if strings.EqualFold(filepath.Ext(output), ".svg") {
				spin := newSpinner(ctx, "Rendering SVG...")
				spin.Start()
				data, err = connector.RenderSVG(ctx, dot)
				spin.Stop()
				if err != nil {
					return err
				}
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Rendered %d connectors", len(cons))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&types, "via", nil, "only show these connector types (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg renders, anything else gets DOT)")
	return cmd
}
