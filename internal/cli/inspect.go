package cli

import (
	"github.com/specialistvlad/partsegnet/internal/app"
	"github.com/spf13/cobra"
)

func inspectCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Decode a prototxt file and print its layers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(app.Config{})
			if err != nil {
				return err
			}
			return failure(a.Inspect(cmd.Context(), args[0]))
		},
	}
}

func categoriesCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the ShapeNet categories and their part counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.newApp(app.Config{})
			if err != nil {
				return err
			}
			return failure(a.Categories())
		},
	}
}
