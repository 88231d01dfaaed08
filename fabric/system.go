// Package fabric is a behavioral model of the systolic-array hardware. It
// implements the register-level port interfaces on an akita ticking
// component: commits and evaluations take simulated cycles, and register
// reads pump the simulation engine the way the real registers absorb bus
// reads while the fabric runs in the background.
package fabric

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/ehwlab/sysevo/sysarr"
)

const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs fabric activity at the trace level.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

type location struct {
	arr, region int
}

// System models the shared reconfiguration port, the array instances, and
// the evaluation registers of one fabric. It implements sysarr.ReconfigPort
// and sysarr.EvalControl.
type System struct {
	*sim.TickingComponent

	geo    sysarr.Geometry
	lookup map[sysarr.FrameAddress]location

	// Reconfiguration port state.
	staged      [sysarr.WordsPerColumn]uint32
	pending     location
	icapCycles  int
	commitDelay int

	// Per-instance committed configuration shadows.
	committed [][sysarr.Words]uint32

	// Evaluation state.
	ctrl       uint32
	evalCycles int
	evalDelay  int
	fitness    []uint32

	input, reference, output []byte
}

// LoadInput copies the image to be filtered into the input region.
func (s *System) LoadInput(img []byte) {
	if len(img) != sysarr.ImgSize {
		panic(fmt.Sprintf("fabric: input image is %d bytes, want %d", len(img), sysarr.ImgSize))
	}
	copy(s.input, img)
}

// LoadReference copies the image fitness is measured against.
func (s *System) LoadReference(img []byte) {
	if len(img) != sysarr.ImgSize {
		panic(fmt.Sprintf("fabric: reference image is %d bytes, want %d", len(img), sysarr.ImgSize))
	}
	copy(s.reference, img)
}

// Output returns a copy of the output image region, written by the last run
// whose mode carried sysarr.CmdFilter.
func (s *System) Output() []byte {
	out := make([]byte, sysarr.ImgSize)
	copy(out, s.output)
	return out
}

// Committed returns the configuration words last committed to one instance.
// The fabric-side view of what a programmer wrote, used by inspection and
// tests.
func (s *System) Committed(arr int) [sysarr.Words]uint32 {
	return s.committed[arr]
}

// Busy reports whether a commit is still in flight. Reading the status
// register lets the fabric clock run.
func (s *System) Busy() bool {
	s.Engine.Run()
	return s.icapCycles > 0
}

// WriteData stages the three words of one column region.
func (s *System) WriteData(words [sysarr.WordsPerColumn]uint32) {
	if s.icapCycles > 0 {
		panic("fabric: data register written while the port is busy")
	}
	s.staged = words
}

// Commit triggers partial reconfiguration of the staged words at the given
// frame address. An address outside the floorplan is a caller error.
func (s *System) Commit(addr sysarr.FrameAddress) {
	loc, ok := s.lookup[addr]
	if !ok {
		panic(fmt.Sprintf("fabric: unmapped frame address %#08x", uint32(addr)))
	}
	s.pending = loc
	s.icapCycles = s.commitDelay
	s.TickNow()
}

// SetCtrl writes the control register, starting the selected arrays.
func (s *System) SetCtrl(mode uint32) {
	s.ctrl = mode
	s.evalCycles = s.evalDelay
	s.TickNow()
}

// Ctrl reads the control register; zero means the last run has finished and
// the addressed fitness registers are valid.
func (s *System) Ctrl() uint32 {
	s.Engine.Run()
	return s.ctrl
}

// Fitness reads one instance's fitness register.
func (s *System) Fitness(arr int) uint32 {
	return s.fitness[arr]
}

// Tick advances the fabric by one cycle: first any in-flight commit, then
// any running evaluation.
func (s *System) Tick() (madeProgress bool) {
	if s.icapCycles > 0 {
		s.icapCycles--
		if s.icapCycles == 0 {
			s.applyCommit()
		}
		return true
	}

	if s.ctrl != 0 {
		s.evalCycles--
		if s.evalCycles <= 0 {
			s.finishRun()
		}
		return true
	}

	return false
}

func (s *System) applyCommit() {
	base := sysarr.WordsPerColumn * s.pending.region
	dst := &s.committed[s.pending.arr]
	dst[base], dst[base+1], dst[base+2] = s.staged[0], s.staged[1], s.staged[2]

	Trace("Reconfig",
		"Behavior", "Commit",
		"Time", float64(s.Engine.CurrentTime()*1e9),
		"Array", s.pending.arr,
		"Region", s.pending.region,
	)
}

func (s *System) finishRun() {
	mode := s.ctrl
	for arr := range s.committed {
		if mode&(uint32(1)<<uint(arr)) == 0 {
			continue
		}
		out := s.filter(arr)
		s.fitness[arr] = sumAbsDiff(out, s.reference)

		Trace("Eval",
			"Behavior", "Compare",
			"Time", float64(s.Engine.CurrentTime()*1e9),
			"Array", arr,
			"Fitness", s.fitness[arr],
		)
	}

	if mode&sysarr.CmdFilter != 0 {
		copy(s.output, s.filter(0))
	}

	s.ctrl = 0
}

func sumAbsDiff(a, b []byte) uint32 {
	var sum uint32
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		sum += uint32(d)
	}
	return sum
}
