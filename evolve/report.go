package evolve

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ehwlab/sysevo/sysarr"
)

// WritePopulationTable renders the population as a table: one row per tribe
// with its fitness, output-mux row and the PE function grid.
func WritePopulationTable(w io.Writer, pop Population, codec sysarr.Codec) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Population (%d tribes)", len(pop))
	t.AppendHeader(table.Row{"Tribe", "Fitness", "Out Row", "PE Functions"})

	for i := range pop {
		grid := ""
		for r := 1; r <= sysarr.Height; r++ {
			if r > 1 {
				grid += " / "
			}
			for c := 1; c <= sysarr.Width; c++ {
				if c > 1 {
					grid += " "
				}
				grid += fmt.Sprintf("%d", codec.At(&pop[i].Genome, r, c))
			}
		}
		t.AppendRow(table.Row{
			i,
			pop[i].Fitness,
			codec.At(&pop[i].Genome, 0, 0),
			grid,
		})
	}

	t.Render()
}
