package cli

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/indoorroute/pkg/connector"
	"github.com/matzehuels/indoorroute/pkg/journey"
)

// journeyCommand creates the "journey" command.
func (c *CLI) journeyCommand() *cobra.Command {
	var (
		via         string
		interactive bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "journey <from-floor> <from-place> <to-floor> <to-place>",
		Short: "Directions between places on different floors",
		Long: `Plan a journey across floors using one connector type.

Each step is a walk on a single floor; consecutive steps are joined by the
chosen connector. With --interactive the journey can be walked step by step.`,
		Example: `  indoorroute journey L1 lobby L3 "Room 301" --via elevator
  indoorroute journey L1 lobby L3 "Room 301" -i`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			from := journey.Endpoint{Floor: args[0], Place: args[1]}
			to := journey.Endpoint{Floor: args[2], Place: args[3]}

			t := c.cfg.Via()
			if via != "" {
				parsed, err := connector.ParseType(via)
				if err != nil {
					return err
				}
				t = parsed
			}

			e, release, err := c.newEngine(ctx, nil)
			if err != nil {
				return err
			}
			defer release()

			spin := newSpinner(ctx, "Planning journey...")
			spin.Start()
			steps, err := e.ComputeMultiFloorRoute(ctx, from, to, t)
			spin.Stop()
			if err != nil {
				return err
			}
			if steps == nil {
				printWarning("No %s connection from floor %s to floor %s", t, from.Floor, to.Floor)
				return nil
			}

			if interactive {
				floors, err := e.Floors(ctx)
				if err != nil {
					return err
				}
				model := newNavigator(ctx, e, floors)
				_, err = tea.NewProgram(model).Run()
				return err
			}

			snap := e.Journey()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}

			printSuccess("%d steps from %s to %s via %s",
				len(steps), StyleHighlight.Render(from.Floor), StyleHighlight.Render(to.Floor), t)
			writeSteps(os.Stdout, steps, -1)
			for i, s := range steps {
				nodes, ok := snap.PreCalculatedRoutes[s.Key()]
				if !ok {
					printDetail("step %d: no walkable path", i+1)
					continue
				}
				printDetail("step %d: %s", i+1, formatPath(nodes))
			}
			fmt.Println()
			printNextStep("Walk it", fmt.Sprintf("indoorroute journey %s %q %s %q -i", from.Floor, from.Place, to.Floor, to.Place))
			return nil
		},
	}

	cmd.Flags().StringVar(&via, "via", "", "connector type: stairs, elevator, escalator (default from config)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "walk the journey step by step")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the journey state as JSON")
	return cmd
}
