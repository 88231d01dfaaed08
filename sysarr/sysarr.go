// Package sysarr defines the commonly used data structures for the systolic
// array fabric: the array geometry, the packed genome words, frame addresses,
// and the register-level hardware port interfaces.
package sysarr

// Physical dimensions of one systolic array instance. The gene grid has one
// extra row and column for the edge multiplexers.
const (
	Height = 8
	Width  = 8

	// WordsPerColumn is the number of configuration words per column region.
	WordsPerColumn = 3

	// Columns counts the column regions: the west-mux column, one column per
	// PE column, and the east column holding the output multiplexer.
	Columns = Width + 2

	// Words is the full genome length in configuration words.
	Words = Columns * WordsPerColumn

	// GeneMask selects one 6-bit gene field within a configuration word.
	GeneMask = 0x3F

	// OutMuxCount is the number of output-routing LUT entries (pass, get).
	OutMuxCount = 2
)

// Training image dimensions, fixed by the hardware image regions.
const (
	ImgHeight = 128
	ImgWidth  = 128
	ImgSize   = ImgHeight * ImgWidth
)

// FunctionSet selects which PE function library the fabric is loaded with.
type FunctionSet int

const (
	// SmallSet is the original 16-function library.
	SmallSet FunctionSet = iota
	// LargeSet adds signed-difference variants and threshold comparisons,
	// 19 functions in total.
	LargeSet
)

// Name returns the name of the function set.
func (s FunctionSet) Name() string {
	switch s {
	case SmallSet:
		return "small"
	case LargeSet:
		return "large"
	default:
		panic("invalid function set")
	}
}

// Geometry fixes the configurable parameters of the fabric: the PE function
// library and the input window size. The array dimensions themselves are
// hardware constants.
type Geometry struct {
	Functions FunctionSet
	Window    int // input window side length, 3 or 5
}

// DefaultGeometry returns the configuration the hardware demo ships with.
func DefaultGeometry() Geometry {
	return Geometry{Functions: SmallSet, Window: 3}
}

// FunctionCount returns the number of selectable PE functions.
func (g Geometry) FunctionCount() int {
	switch g.Functions {
	case SmallSet:
		return 16
	case LargeSet:
		return 19
	default:
		panic("invalid function set")
	}
}

// InMuxCount returns the number of selectable window taps.
func (g Geometry) InMuxCount() int {
	switch g.Window {
	case 3:
		return 9
	case 5:
		return 25
	default:
		panic("invalid window size")
	}
}

// LUTCount returns the total function-library size.
func (g Geometry) LUTCount() int {
	return g.FunctionCount() + g.InMuxCount() + OutMuxCount
}

// IdentityPE returns the pass-west function index, the PE seed of the
// deterministic copy filter.
func (g Geometry) IdentityPE() int {
	switch g.Functions {
	case SmallSet:
		return 11
	case LargeSet:
		return 1
	default:
		panic("invalid function set")
	}
}

// IdentityTap returns the center window tap, the mux seed of the copy filter.
func (g Geometry) IdentityTap() int {
	switch g.Window {
	case 3:
		return 4
	case 5:
		return 12
	default:
		panic("invalid window size")
	}
}

// IdentityOut is the output-mux seed of the copy filter: the bottom PE row.
const IdentityOut = Height - 1
