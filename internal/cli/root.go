package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/partsegnet/internal/app"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	outW, errW io.Writer
	logLevel   string
	logFormat  string
}

// newApp validates the global flags and builds an App around cfg.
func (g *globalOptions) newApp(cfg app.Config) (*app.App, error) {
	cfg.LogLevel = strings.ToLower(g.logLevel)
	cfg.LogFormat = strings.ToLower(g.logFormat)
	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
	}
	return app.NewApp(g.outW, g.errW, appConfig, nil), nil
}

func newRootCmd(outW, errW io.Writer) *cobra.Command {
	g := &globalOptions{outW: outW, errW: errW}

	cmd := &cobra.Command{
		Use:   "partsegnet",
		Short: "partsegnet - Caffe prototxt generator for SPLATNet part segmentation networks",
		Long: `partsegnet writes Caffe network definitions for point cloud part segmentation.

Networks are stacks of 1x1 convolution and permutohedral lattice (bilateral)
blocks described by an architecture string such as "c64_b128_b128_c256".
Declare them in HCL or YAML files and run "partsegnet build", or generate a
single network from flags with "partsegnet generate".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(outW)
	cmd.SetErr(errW)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Message: fmt.Sprintf("%v\nRun '%s --help' for usage.", err, c.CommandPath()), Err: err}
	})

	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Logging level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log output format: text|json")

	cmd.AddCommand(
		generateCmd(g),
		buildCmd(g),
		inspectCmd(g),
		categoriesCmd(g),
	)
	return cmd
}
