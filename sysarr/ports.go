package sysarr

// Evaluation command word layout: one selection bit per array instance plus
// a flag that stores array 0's filtered output instead of discarding it.
const (
	// CmdFilter makes array 0 filter the input image and store the result in
	// the output image region. No fitness is produced by this flag alone.
	CmdFilter uint32 = 0x80000000
)

// CmdCompare returns the command bits that make arrays 0..n-1 filter the
// input image and compare the result against the reference, producing one
// fitness value per selected array.
func CmdCompare(n int) uint32 {
	return (uint32(1) << uint(n)) - 1
}

// CmdCompareRange selects arrays lo..hi-1 for filter-and-compare.
func CmdCompareRange(lo, hi int) uint32 {
	return CmdCompare(hi) &^ CmdCompare(lo)
}

// ReconfigPort is the shared partial-reconfiguration port: a busy bit, three
// staging data registers, and a commit register. Writes must never be issued
// while the port is busy from a previous commit; polling Busy to idle is the
// sole mutual-exclusion mechanism.
type ReconfigPort interface {
	// Busy reports whether a previous commit is still in flight.
	Busy() bool

	// WriteData stages the three configuration words of one column region.
	WriteData(words [WordsPerColumn]uint32)

	// Commit writes the commit register, triggering partial reconfiguration
	// of the staged words at the given frame address.
	Commit(addr FrameAddress)
}

// EvalControl is the evaluation side of the fabric: a mode/control register
// and one fitness register per array instance. Between writing the control
// register and observing it return to zero, the fitness registers of the
// addressed arrays are undefined and must not be read.
type EvalControl interface {
	// SetCtrl writes the control register, starting the addressed arrays.
	SetCtrl(mode uint32)

	// Ctrl reads the control register; zero means the last run finished.
	Ctrl() uint32

	// Fitness reads the fitness register of one array: the sum of absolute
	// differences against the reference image, 0 for an exact match.
	Fitness(array int) uint32
}
