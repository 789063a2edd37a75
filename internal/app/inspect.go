package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/specialistvlad/partsegnet/internal/dataset"
	"github.com/specialistvlad/partsegnet/internal/netspec"
)

// Inspect decodes a prototxt file, checks its graph, and writes one row per
// layer to outW.
func (a *App) Inspect(ctx context.Context, path string) error {
	ctx = a.Context(ctx)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	net, err := netspec.Read(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := net.Validate(ctx); err != nil {
		return err
	}
	a.logger.Debug("Decoded network.", "path", path, "name", net.Name, "layers", net.Len())

	return writeLayerTable(a.outW, net)
}

func writeLayerTable(w io.Writer, net *netspec.Net) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if net.Name != "" {
		fmt.Fprintf(tw, "# %s\n", net.Name)
	}
	fmt.Fprintln(tw, "#\tNAME\tTYPE\tPHASE\tBOTTOMS\tTOPS\tIN-PLACE")
	for i, l := range net.Layers() {
		phase := string(l.Phase)
		if l.Phase == netspec.PhaseAll {
			phase = "-"
		}
		inPlace := "-"
		if l.InPlace() {
			inPlace = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i, l.Name, l.Type, phase, joinTops(l.Bottoms), joinTops(l.Tops), inPlace)
	}
	return tw.Flush()
}

func joinTops(tops []netspec.Top) string {
	if len(tops) == 0 {
		return "-"
	}
	s := make([]string, len(tops))
	for i, t := range tops {
		s[i] = string(t)
	}
	return strings.Join(s, ",")
}

// Categories writes the ShapeNet category table to outW.
func (a *App) Categories() error {
	tw := tabwriter.NewWriter(a.outW, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYNSET\tNAME\tPARTS")
	for _, c := range dataset.Categories() {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Synset, c.Name, c.Parts)
	}
	fmt.Fprintf(tw, "\t\t%d\n", dataset.TotalParts())
	return tw.Flush()
}
