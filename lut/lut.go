// Package lut synthesizes the lookup-table content for every selectable PE
// function, window tap, and output-routing option. The table is built once
// from fixed bit-plane constants and is bit-identical across runs.
package lut

import (
	"fmt"

	"github.com/ehwlab/sysevo/sysarr"
)

// Input bit planes. Each 32-bit word holds two 16-bit LUT frames; the planes
// encode the neighbor values replicated across the two pipeline stages.
const (
	a6 uint32 = 0x00FF00FF
	a5 uint32 = 0x0F0F0F0F
	// a4 is tied to zero in the fabric and has no plane.
	a3 uint32 = 0x33333333
	a2 uint32 = 0x55555555
	a1 uint32 = 0x0000FFFF

	north  = a5 // north input, first stage
	west   = a3 // west input, first stage
	north2 = a2 // north input, second stage
	west2  = a1 // west input, second stage
	sum    = a3 // first-stage sum mod 256, seen by the second stage
	half   = a5 // first-stage sum/2, rounded down
	carry  = a6 // first-stage overflow indicator
	ones   = uint32(0xFFFFFFFF)
)

// An Entry is the immutable pair of LUT words for one selectable function:
// one word per pipeline stage.
type Entry struct {
	Stage1, Stage2 uint32
}

// StageWords splits an entry the way the partial-bitstream loader replicates
// it into CLB frames: for each stage, the upper and lower 16-bit frame halves
// duplicated across both halves of a frame word.
func (e Entry) StageWords() (stage1, stage2 [2]uint32) {
	split := func(v uint32) [2]uint32 {
		hi := v >> 16
		lo := v & 0xFFFF
		return [2]uint32{hi<<16 | hi, lo<<16 | lo}
	}
	return split(e.Stage1), split(e.Stage2)
}

// addMerge builds a first-stage word: bitwise AND and XOR of the two chosen
// planes, split across the carry-indicating mask.
func addMerge(a, b uint32) uint32 {
	return ((a & b) &^ a6) | ((a ^ b) & a6)
}

// satMerge builds a second-stage word from the no-overflow and overflow
// planes.
func satMerge(noOvf, ovf uint32) uint32 {
	return (noOvf &^ carry) | (ovf & carry)
}

func fn(a, b, noOvf, ovf uint32) Entry {
	return Entry{Stage1: addMerge(a, b), Stage2: satMerge(noOvf, ovf)}
}

// A Library is the complete LUT table: FunctionCount PE functions, then
// InMuxCount window taps, then the two output-routing entries. Gene values
// index it directly once the codec's offsets are applied.
type Library []Entry

// Build constructs the library for a geometry. Building twice with the same
// geometry yields bit-identical tables.
func Build(geo sysarr.Geometry) Library {
	lib := make(Library, 0, geo.LUTCount())
	lib = append(lib, functions(geo.Functions)...)
	lib = append(lib, taps(geo.Window)...)
	lib = append(lib,
		Entry{Stage1: a6, Stage2: 0}, // pass
		Entry{Stage1: a5, Stage2: 0}, // read out
	)
	if len(lib) != geo.LUTCount() {
		panic(fmt.Sprintf("lut: built %d entries, geometry wants %d", len(lib), geo.LUTCount()))
	}
	return lib
}

func functions(set sysarr.FunctionSet) []Entry {
	switch set {
	case sysarr.SmallSet:
		return []Entry{
			fn(north, west, sum, sum),       // N+W mod
			fn(north, north, sum, sum),      // 2N mod
			fn(west, west, sum, sum),        // 2W mod
			fn(north, west, sum, ones),      // N+W sat
			fn(north, north, sum, ones),     // 2N sat
			fn(west, west, sum, ones),       // 2W sat
			fn(north, west, half, half),     // (N+W)/2
			fn(0, 0, ones, ones),            // 255
			fn(north, 0, half, half),        // N/2
			fn(west, 0, half, half),         // W/2
			fn(0, 0, north2, north2),        // N
			fn(0, 0, west2, west2),          // W
			fn(north, ^west, west2, north2), // max
			fn(north, ^west, north2, west2), // min
			fn(^north, west, ^sum, 0),       // N-W
			fn(^west, north, ^sum, 0),       // W-N
		}
	case sysarr.LargeSet:
		return []Entry{
			fn(0, 0, north2, north2),        // N
			fn(0, 0, west2, west2),          // W
			fn(north, ^west, west2, north2), // max
			fn(north, ^west, north2, west2), // min
			fn(north, west, 0, sum),         // N+W-256 (sat<0)
			fn(^north, west, ^sum, 0),       // N-W     (sat<0)
			fn(^west, north, ^sum, 0),       // W-N     (sat<0)
			fn(north, west, sum, ones),      // N+W     (sat>255)
			fn(^north, west, ones, ^sum),    // N-W+256 (sat>255)
			fn(^west, north, ones, ^sum),    // W-N+256 (sat>255)
			fn(north, west, sum, sum),       // N+W mod
			fn(^north, west, ^sum, ^sum),    // N-W mod
			fn(^west, north, ^sum, ^sum),    // W-N mod
			fn(north, west, half, half),     // (N+W)/2
			fn(^north, west, ^half, ^half),  // (N-W)/2+128
			fn(^west, north, ^half, ^half),  // (W-N)/2+128
			fn(^north, west, ^sum, sum),     // |N-W| (overflow side one low)
			fn(^north, west, ones, 0),       // N>=W ? 255 : 0
			fn(^west, north, ones, 0),       // W>=N ? 255 : 0
		}
	default:
		panic("invalid function set")
	}
}

// taps returns the window-tap entries. The physical window is 5x5; the 3x3
// variant addresses its central channels. Entries run row-major from the
// south-east tap to the north-west tap.
func taps(window int) []Entry {
	switch window {
	case 3:
		return []Entry{
			{a5, a5}, {a3, a5}, {a2, a5}, // SE, E, NE
			{a5, a3}, {a3, a3}, {a2, a3}, // S,  C,  N
			{a5, a2}, {a3, a2}, {a2, a2}, // SW, W, NW
		}
	case 5:
		planes := [5]uint32{a6, a5, a3, a2, a1}
		entries := make([]Entry, 0, 25)
		for _, row := range planes {
			for _, ch := range planes {
				entries = append(entries, Entry{Stage1: ch, Stage2: row})
			}
		}
		return entries
	default:
		panic("invalid window size")
	}
}
