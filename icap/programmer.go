// Package icap is the software side of the fabric: it programs genomes
// through the shared partial-reconfiguration port and drives the evaluation
// control and fitness registers.
package icap

import (
	"fmt"

	"github.com/ehwlab/sysevo/sysarr"
)

// A Programmer writes genomes into array instances. It keeps one shadow copy
// of the last committed words per instance and skips columns that have not
// changed: partial reconfiguration is costly, so unchanged columns must never
// be rewritten. All instances funnel through the one shared port, so writes
// are strictly serialized by polling the port idle before each one.
type Programmer struct {
	port   sysarr.ReconfigPort
	frames sysarr.FrameTable
	shadow [][sysarr.Words]uint32
}

// NewProgrammer returns a programmer for as many instances as the frame
// table covers. The shadow caches start at the all-ones sentinel, matching
// unconfigured fabric, so the first Program call writes exactly the columns
// that differ from it.
func NewProgrammer(port sysarr.ReconfigPort, frames sysarr.FrameTable) *Programmer {
	p := &Programmer{
		port:   port,
		frames: frames,
		shadow: make([][sysarr.Words]uint32, frames.Instances()),
	}
	for arr := range p.shadow {
		for i := range p.shadow[arr] {
			p.shadow[arr][i] = 0xFFFFFFFF
		}
	}
	return p
}

// Instances returns the number of array instances the programmer addresses.
func (p *Programmer) Instances() int {
	return len(p.shadow)
}

// Program commits the genome to the given array instance, rewriting only the
// column regions whose words differ from the instance's shadow copy. It
// returns the number of columns written.
func (p *Programmer) Program(g *sysarr.Genome, arr int) int {
	if arr < 0 || arr >= len(p.shadow) {
		panic(fmt.Sprintf("icap: array instance %d out of range", arr))
	}

	count := 0
	old := &p.shadow[arr]
	for i := 0; i < sysarr.Columns; i++ {
		base := sysarr.WordsPerColumn * i
		words := [sysarr.WordsPerColumn]uint32{
			g.Cfg[base], g.Cfg[base+1], g.Cfg[base+2],
		}

		if words[0] == old[base] && words[1] == old[base+1] && words[2] == old[base+2] {
			continue
		}

		// Wait for the previous commit's ack. Mandatory: the staging
		// registers are shared across instances.
		for p.port.Busy() {
		}
		p.port.WriteData(words)
		p.port.Commit(p.frames[arr][i])

		old[base], old[base+1], old[base+2] = words[0], words[1], words[2]
		count++
	}
	return count
}
