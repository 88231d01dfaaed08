package sysarr

// A FrameAddress is the packed physical coordinate of one writable partial
// reconfiguration region. Writing it to the commit register triggers the
// reconfiguration of the column staged in the data registers.
type FrameAddress uint32

// NewFrameAddress packs a frame address. frames is the number of consecutive
// frames covered; bottom selects the bottom half of the device.
func NewFrameAddress(frames, block int, bottom bool, row, col, frame int) FrameAddress {
	b := 0
	if bottom {
		b = 1
	}
	return FrameAddress(uint32(frames)<<26 |
		uint32(block)<<23 |
		uint32(b)<<22 |
		uint32(row)<<17 |
		uint32(col)<<7 |
		uint32(frame))
}

// A FrameTable maps (array instance, column region) to the frame address the
// region's words must be committed to. It is static data determined by the
// floorplan, independent of any genome.
type FrameTable [][Columns]FrameAddress

// Instances returns the number of array instances the table covers.
func (t FrameTable) Instances() int {
	return len(t)
}

// clblm returns the two column regions one CLBLM column pair provides.
func clblm(bottom bool, row, col int) [2]FrameAddress {
	return [2]FrameAddress{
		NewFrameAddress(2, 0, bottom, row, col, 34),
		NewFrameAddress(2, 0, bottom, row, col, 26),
	}
}

// DefaultFrameTable returns the floorplan of the four array instances in the
// reference design: five CLBLM column pairs per array, covering the west mux,
// the eight PE columns, and the east mux / readout column.
func DefaultFrameTable() FrameTable {
	arrays := [][5][2]FrameAddress{
		// Array 0: top half, clock row 0, starting at device column 60.
		{clblm(false, 0, 60), clblm(false, 0, 61), clblm(false, 0, 62), clblm(false, 0, 63), clblm(false, 0, 65)},
		// Array 1: bottom half, clock row 0.
		{clblm(true, 0, 60), clblm(true, 0, 61), clblm(true, 0, 62), clblm(true, 0, 63), clblm(true, 0, 65)},
		// Array 2: bottom half, clock row 1.
		{clblm(true, 1, 60), clblm(true, 1, 61), clblm(true, 1, 62), clblm(true, 1, 63), clblm(true, 1, 65)},
		// Array 3: bottom half, clock row 1, second site.
		{clblm(true, 1, 10), clblm(true, 1, 11), clblm(true, 1, 12), clblm(true, 1, 13), clblm(true, 1, 15)},
	}

	table := make(FrameTable, len(arrays))
	for arr, pairs := range arrays {
		i := 0
		for _, pair := range pairs {
			table[arr][i] = pair[0]
			table[arr][i+1] = pair[1]
			i += 2
		}
	}
	return table
}
