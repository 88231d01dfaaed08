package sysarr

import "fmt"

// A Genome is the packed candidate configuration for one array instance:
// Words configuration words, three per column region, several 6-bit gene
// fields per word. Genomes are plain values; assignment copies them.
type Genome struct {
	Cfg [Words]uint32
}

// Reset marks every gene field as unconfigured. The all-ones sentinel is
// distinguishable from the valid value 0; the fabric ignores the two MSbs of
// each field, so 0xFFFFFFFF is safe to commit.
func (g *Genome) Reset() {
	for i := range g.Cfg {
		g.Cfg[i] = 0xFFFFFFFF
	}
}

// GeneKind classifies one gene coordinate.
type GeneKind int

const (
	// GeneOutMux is the single output-routing gene at (0, 0).
	GeneOutMux GeneKind = iota
	// GeneInMux is a window-tap selector on the row-0 or column-0 edge.
	GeneInMux
	// GenePE is the function selector of an interior processing element.
	GenePE
)

// Per-row field placement within a column region. Rows share words at
// different shifts; the layout is fixed by the fabric word format.
var (
	woffs = [Height + 1]int{0, 0, 0, 0, 1, 1, 1, 1, 2}
	shift = [Height + 1]uint{0, 8, 16, 24, 0, 8, 16, 24, 0}
)

// Codec translates (row, col, value) gene coordinates into packed genome
// fields. Input-mux values share the field address space with PE function
// values, disambiguated by adding the function-table size; the output mux is
// not a dense field but a marker tagged onto one of the east-column entries.
type Codec struct {
	geo Geometry
}

// NewCodec returns a codec for the given geometry.
func NewCodec(geo Geometry) Codec {
	return Codec{geo: geo}
}

// Geometry returns the geometry the codec was built for.
func (c Codec) Geometry() Geometry {
	return c.geo
}

// KindAt returns the gene kind stored at (row, col).
func (c Codec) KindAt(row, col int) GeneKind {
	c.checkCoord(row, col)
	switch {
	case row == 0 && col == 0:
		return GeneOutMux
	case row == 0 || col == 0:
		return GeneInMux
	default:
		return GenePE
	}
}

// Legal returns the number of legal values for a gene kind. Valid values are
// 0 to Legal(kind)-1.
func (c Codec) Legal(kind GeneKind) int {
	switch kind {
	case GeneOutMux:
		return Height
	case GeneInMux:
		return c.geo.InMuxCount()
	case GenePE:
		return c.geo.FunctionCount()
	default:
		panic("invalid gene kind")
	}
}

// Set stores gene value v at (row, col). The coordinate and value must be in
// range for the gene kind; violations are caller errors and panic.
func (c Codec) Set(g *Genome, row, col, v int) {
	kind := c.KindAt(row, col)
	if v < 0 || v >= c.Legal(kind) {
		panic(fmt.Sprintf("sysarr: gene value %d out of range for (%d, %d)", v, row, col))
	}

	if kind == GeneOutMux {
		// Tag exactly one east-column entry with the marker offset; the
		// remaining rows carry the pass entry.
		marker := c.geo.FunctionCount() + c.geo.InMuxCount()
		for ii := 0; ii < Height; ii++ {
			v2 := uint32(marker)
			if ii == v {
				v2++
			}
			c.setField(g, ii+1, Width+1, v2)
		}
		return
	}

	if kind == GeneInMux {
		v += c.geo.FunctionCount()
	}
	c.setField(g, row, col, uint32(v))
}

// At reads the gene value at (row, col). For the output mux it scans the
// east column for the marker and returns -1 if no row carries it, which
// signals genome corruption rather than a plausible row index.
func (c Codec) At(g *Genome, row, col int) int {
	kind := c.KindAt(row, col)

	if kind == GeneOutMux {
		marker := uint32(c.geo.FunctionCount() + c.geo.InMuxCount() + 1)
		for ii := 0; ii < Height; ii++ {
			if c.field(g, ii+1, Width+1) == marker {
				return ii
			}
		}
		return -1
	}

	v := int(c.field(g, row, col))
	if kind == GeneInMux {
		v -= c.geo.FunctionCount()
	}
	return v
}

func (c Codec) setField(g *Genome, row, col int, v uint32) {
	w := woffs[row] + WordsPerColumn*col
	s := shift[row]
	g.Cfg[w] &^= GeneMask << s
	g.Cfg[w] |= v << s
}

func (c Codec) field(g *Genome, row, col int) uint32 {
	w := woffs[row] + WordsPerColumn*col
	s := shift[row]
	return (g.Cfg[w] >> s) & GeneMask
}

func (c Codec) checkCoord(row, col int) {
	if row < 0 || row > Height || col < 0 || col > Width {
		panic(fmt.Sprintf("sysarr: gene coordinate (%d, %d) out of range", row, col))
	}
}
