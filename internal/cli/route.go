package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// routeCommand creates the "route" command.
func (c *CLI) routeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "route <floor> <from> <to>",
		Short: "Find the shortest route between two places on a floor",
		Long: `Find the shortest walking route between two places on one floor.

Places may be given by id, by name, or by entrance id.`,
		Example: `  indoorroute route L1 lobby "Room 101"
  indoorroute route -d ./building L2 L2_E3 cafeteria --json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			floor, from, to := args[0], args[1], args[2]

			e, release, err := c.newEngine(ctx, nil)
			if err != nil {
				return err
			}
			defer release()

			prog := newProgress(loggerFromContext(ctx))
			route, err := e.ComputeRoute(ctx, floor, from, to)
			if err != nil {
				return err
			}
			if route == nil {
				printWarning("No route from %q to %q on floor %s", from, to, floor)
				return nil
			}
			prog.done("Computed route")

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(route)
			}

			printSuccess("Route on %s", StyleHighlight.Render(floor))
			printKeyValue("From", from)
			printKeyValue("To", fmt.Sprintf("%s (%s)", route.ChosenDestination.Name, route.ChosenDestination.ID))
			if route.Ambiguous() {
				printWarning("%d places match %q; chose the closest", route.Candidates, to)
			}
			fmt.Println("  " + formatPath(route.Nodes))
			printRouteStats(len(route.Nodes), route.Distance)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the route as JSON")
	return cmd
}
