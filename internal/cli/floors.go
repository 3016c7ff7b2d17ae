package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// floorsCommand creates the "floors" command.
func (c *CLI) floorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "floors",
		Short: "List the floors of the building",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, release, err := c.newEngine(ctx, nil)
			if err != nil {
				return err
			}
			defer release()

			floors, err := e.Floors(ctx)
			if err != nil {
				return err
			}
			if len(floors) == 0 {
				printInfo("No floors found")
				return nil
			}
			for _, f := range floors {
				r, err := e.LoadFloor(ctx, f)
				if err != nil {
					printError("%s: %v", f, err)
					continue
				}
				g := r.Graph()
				fmt.Printf("%s  %s\n", StyleHighlight.Render(f),
					StyleDim.Render(fmt.Sprintf("%d nodes · %d edges · %d entrances · %d places",
						g.Len(), g.EdgeCount(), len(g.Entrances()), len(g.Places()))))
			}
			return nil
		},
	}
}
