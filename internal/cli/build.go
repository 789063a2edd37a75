package cli

import (
	"github.com/specialistvlad/partsegnet/internal/app"
	"github.com/spf13/cobra"
)

func buildCmd(g *globalOptions) *cobra.Command {
	var networks []string

	c := &cobra.Command{
		Use:   "build PATH...",
		Short: "Generate every network declared in HCL or YAML files",
		Long: `Load network declarations from .hcl, .yaml and .yml files or from
directories containing them, and generate each network to the destinations
in its output block. Networks without one are written to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(app.Config{ConfigPaths: args, Networks: networks})
			if err != nil {
				return err
			}
			return failure(a.Run(cmd.Context()))
		},
	}

	c.Flags().StringArrayVarP(&networks, "network", "n", nil, "Only generate the named network, repeatable")
	return c
}
