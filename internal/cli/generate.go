package cli

import (
	"time"

	"github.com/specialistvlad/partsegnet/internal/app"
	"github.com/specialistvlad/partsegnet/internal/config"
	"github.com/specialistvlad/partsegnet/internal/partseg"
	"github.com/specialistvlad/partsegnet/internal/sink"
	"github.com/spf13/cobra"
)

func generateCmd(g *globalOptions) *cobra.Command {
	opts := partseg.DefaultOptions()
	var out config.Output
	var datasetParams map[string]string
	var sio config.SocketIO

	c := &cobra.Command{
		Use:   "generate",
		Short: "Generate one network from flags",
		Example: `  partsegnet generate --arch c64_b128_b128_c256 --lattice 'x*8_y*8_z*8' --skip 4_1_ga
  partsegnet generate --combined --renorm-class --renorm-head -o all.prototxt --render all.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := parseDatasetParams(datasetParams)
			if err != nil {
				return &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
			}
			opts.DatasetParams = params
			if sio.URL != "" {
				out.SocketIO = &sio
			}

			a, err := g.newApp(app.Config{})
			if err != nil {
				return err
			}
			name := opts.Name
			if name == "" {
				name = "network"
			}
			return failure(a.Generate(cmd.Context(), &config.Network{Name: name, Options: opts, Output: out}))
		},
	}

	f := c.Flags()
	f.StringVar(&opts.Name, "name", "", "Network name written as the prototxt header")
	f.StringVar(&opts.Arch, "arch", opts.Arch, "Block widths, e.g. c64_b128_b128_c256 (c: 1x1 convolution, b: bilateral)")
	f.BoolVar(&opts.BatchNorm, "batch-norm", opts.BatchNorm, "Add a BatchNorm layer after each block")
	f.StringArrayVar(&opts.Skips, "skip", nil, "Skip connection TO_FROM[_OPTS], repeatable; OPTS holds g (global pool) and a (add)")
	f.IntVar(&opts.BilateralNeighborhood, "bilateral-neighborhood", opts.BilateralNeighborhood, "Permutohedral neighborhood size")
	f.StringVar(&opts.ConvFiller, "conv-filler", opts.ConvFiller, "Weight filler of convolution blocks")
	f.StringVar(&opts.BilateralFiller, "bilateral-filler", opts.BilateralFiller, "Weight filler of bilateral blocks")

	f.StringVar(&opts.Dataset, "dataset", opts.Dataset, "Dataset name")
	f.StringToStringVar(&datasetParams, "dataset-param", nil, "Extra data layer parameter KEY=VALUE; VALUE is an HCL literal or a bare string")
	f.StringVar(&opts.Category, "category", opts.Category, "ShapeNet category name or synset id")
	f.IntVar(&opts.SampleSize, "sample-size", opts.SampleSize, "Points per sample")
	f.IntVar(&opts.BatchSize, "batch-size", opts.BatchSize, "Samples per batch")
	f.StringVar(&opts.FeatDims, "feat-dims", opts.FeatDims, "Input feature channels, e.g. x_y_z")
	f.StringArrayVar(&opts.Lattices, "lattice", nil, "Lattice channels with scales, one per bilateral block or one shared, repeatable")

	f.BoolVar(&opts.Combined, "combined", false, "Build the all-categories network")
	f.BoolVar(&opts.RenormClass, "renorm-class", false, "Emit a label mask from the combined data layer")
	f.BoolVar(&opts.RenormHead, "renorm-head", false, "Use the mask renormalized head (needs --renorm-class)")
	f.BoolVar(&opts.Deploy, "deploy", false, "Replace data layers with a fixed Input and the loss with a softmax")

	f.StringVarP(&out.Path, "output", "o", "", "Write the prototxt to this file instead of stdout")
	f.StringVar(&out.Render, "render", "", "Also write an HTML graph of the network to this file")
	f.StringVar(&out.UploadURL, "upload-url", "", "PUT the prototxt to this pre-signed URL")
	f.StringVar(&sio.URL, "socketio-url", "", "Emit the prototxt to this socket.io server")
	f.StringVar(&sio.Namespace, "socketio-namespace", "", "socket.io namespace")
	f.StringVar(&sio.Event, "socketio-event", sink.DefaultEvent, "Event carrying the prototxt")
	f.StringVar(&sio.AckEvent, "socketio-ack-event", sink.DefaultAckEvent, "Event the server sends back once stored")
	f.DurationVar(&sio.Timeout, "socketio-timeout", 15*time.Second, "Time to wait for the connection and the ack")
	f.BoolVar(&sio.InsecureSkipVerify, "socketio-insecure", false, "Skip TLS certificate verification")

	return c
}
