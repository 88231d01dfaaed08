package fabric

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/ehwlab/sysevo/sysarr"
)

// Builder can build fabric systems.
type Builder struct {
	engine      sim.Engine
	freq        sim.Freq
	geo         sysarr.Geometry
	frames      sysarr.FrameTable
	commitDelay int
	evalDelay   int
}

// NewBuilder returns a builder with the reference-design defaults: one
// evaluation takes one cycle per image row, one commit takes two cycles.
func NewBuilder() Builder {
	return Builder{
		freq:        1 * sim.GHz,
		geo:         sysarr.DefaultGeometry(),
		frames:      sysarr.DefaultFrameTable(),
		commitDelay: 2,
		evalDelay:   sysarr.ImgHeight,
	}
}

// WithEngine sets the engine that drives the fabric simulation.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the fabric clock frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithGeometry sets the function library and window size.
func (b Builder) WithGeometry(geo sysarr.Geometry) Builder {
	b.geo = geo
	return b
}

// WithFrameTable sets the floorplan. The table also fixes how many array
// instances the system models.
func (b Builder) WithFrameTable(frames sysarr.FrameTable) Builder {
	b.frames = frames
	return b
}

// WithCommitDelay sets the partial-reconfiguration latency in cycles.
func (b Builder) WithCommitDelay(cycles int) Builder {
	b.commitDelay = cycles
	return b
}

// WithEvalDelay sets the filtering latency in cycles.
func (b Builder) WithEvalDelay(cycles int) Builder {
	b.evalDelay = cycles
	return b
}

// Build creates a fabric system.
func (b Builder) Build(name string) *System {
	instances := b.frames.Instances()

	s := &System{
		geo:         b.geo,
		lookup:      make(map[sysarr.FrameAddress]location),
		commitDelay: b.commitDelay,
		evalDelay:   b.evalDelay,
		committed:   make([][sysarr.Words]uint32, instances),
		fitness:     make([]uint32, instances),
		input:       make([]byte, sysarr.ImgSize),
		reference:   make([]byte, sysarr.ImgSize),
		output:      make([]byte, sysarr.ImgSize),
	}
	s.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, s)

	for arr := 0; arr < instances; arr++ {
		for region := 0; region < sysarr.Columns; region++ {
			s.lookup[b.frames[arr][region]] = location{arr: arr, region: region}
		}
		// Unconfigured fabric reads back as all ones.
		for i := range s.committed[arr] {
			s.committed[arr][i] = 0xFFFFFFFF
		}
	}

	return s
}
