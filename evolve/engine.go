// Package evolve implements a parallelized Nx(1+1) "tribal" evolution
// strategy on top of a reconfigurable systolic array. Each tribe evolves
// separately with a (1+1) mutation step, and a war between tribes ends each
// macro-generation, duplicating the strongest tribe and culling the weakest.
// Configuration can turn this into a (1+lambda) evolution, a war-less tribal
// run, or a latency-hiding pipelined variant.
package evolve

import (
	"log/slog"

	"github.com/ehwlab/sysevo/sysarr"
)

// Hardware is the systolic-array fabric the engine evolves on: programming a
// genome into an array instance and running fitness evaluations.
type Hardware interface {
	Program(g *sysarr.Genome, arr int) int
	Start(mode uint32)
	Wait()
	Go(mode uint32)
	Fitness(arr int) uint32
}

// Engine runs the evolution strategy configured in its Config.
type Engine struct {
	cfg   Config
	codec sysarr.Codec
	hw    Hardware
	rng   *Rand
}

// NewEngine validates cfg and builds an engine for the given array geometry.
func NewEngine(cfg Config, geo sysarr.Geometry, hw Hardware) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}

	return &Engine{
		cfg:   cfg,
		codec: sysarr.NewCodec(geo),
		hw:    hw,
		rng:   NewRand(seed),
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Check re-measures the fitness of every member, in batches of ParallelWidth
// array instances. Useful when the population has been modified externally
// or the training images have changed.
func (e *Engine) Check(pop Population) {
	for i1 := 0; i1 < len(pop); i1 += e.cfg.ParallelWidth {
		n := min(e.cfg.ParallelWidth, len(pop)-i1)
		for i2 := 0; i2 < n; i2++ {
			e.hw.Program(&pop[i1+i2].Genome, i2)
		}
		e.hw.Go(sysarr.CmdCompare(n))
		for i2 := 0; i2 < n; i2++ {
			pop[i1+i2].Fitness = e.hw.Fitness(i2)
		}
	}
}

// Initialize seeds every member, either with the deterministic copy filter or
// uniformly at random, and measures the initial fitnesses.
func (e *Engine) Initialize(pop Population) {
	for i := range pop {
		if e.cfg.RandomInit {
			e.randomGenome(&pop[i].Genome)
		} else {
			e.identityGenome(&pop[i].Genome)
		}
	}
	e.Check(pop)
}

// Generation evolves the population for SubGenerations rounds using the
// configured strategy, then consolidates per the war policy. It returns the
// number of times a child replaced its parent, which monitors whether the
// search has stalled (equal-fitness children count as replacements).
func (e *Engine) Generation(pop Population) int {
	var changes int
	switch e.cfg.Strategy {
	case ElitistLambda:
		changes = e.elitistGeneration(pop)
	case HalfAndHalf:
		changes = e.pipelinedGeneration(pop)
	default:
		changes = e.tribalGeneration(pop)
	}

	slog.Debug("generation complete",
		"strategy", e.cfg.Strategy.String(),
		"replacements", changes,
		"bestFitness", pop[0].Fitness)

	return changes
}

// elitistGeneration is a (1+lambda) step: every child is spawned from the
// member in slot 0, and any child at least as fit takes the slot. No war.
func (e *Engine) elitistGeneration(pop Population) int {
	children := make(Population, len(pop))
	changes := 0

	for gen := 0; gen < e.cfg.SubGenerations; gen++ {
		for i := range children {
			children[i] = pop[0]
		}
		for i := range children {
			e.Mutate(&children[i].Genome)
		}

		e.Check(children)

		changed := false
		for i := range children {
			if children[i].Fitness <= pop[0].Fitness {
				pop[0] = children[i]
				changed = true
			}
		}
		if changed {
			changes++
		}
	}

	return changes
}

// tribalGeneration runs each tribe's (1+1) step independently and ends with
// a war.
func (e *Engine) tribalGeneration(pop Population) int {
	children := make(Population, len(pop))
	changes := 0

	for gen := 0; gen < e.cfg.SubGenerations; gen++ {
		copy(children, pop)
		for i := range children {
			e.Mutate(&children[i].Genome)
		}

		e.Check(children)

		for i := range children {
			if children[i].Fitness <= pop[i].Fitness {
				pop[i] = children[i]
				changes++
			}
		}
	}

	e.war(pop)
	return changes
}

// pipelinedGeneration is the tribal step with the two population halves
// interleaved: while one half evaluates, the other half is selected, mutated
// and reprogrammed, hiding reconfiguration latency behind evaluation latency.
// Needs one array instance per tribe.
func (e *Engine) pipelinedGeneration(pop Population) int {
	half := len(pop) / 2
	children := make(Population, len(pop))
	changes := 0

	for gen := 0; gen <= e.cfg.SubGenerations; gen++ {
		first := gen == 0
		last := gen == e.cfg.SubGenerations

		// 1st half: select the previous round's children.
		if !first {
			for i := 0; i < half; i++ {
				if children[i].Fitness <= pop[i].Fitness {
					pop[i] = children[i]
					changes++
				}
			}
		}
		// 1st half: mutate and reconfigure.
		if !last {
			for i := 0; i < half; i++ {
				children[i] = pop[i]
			}
			for i := 0; i < half; i++ {
				e.Mutate(&children[i].Genome)
			}
			for i := 0; i < half; i++ {
				e.hw.Program(&children[i].Genome, i)
			}
		}
		// 2nd half: finish the previous launch.
		if !first {
			e.hw.Wait()
			for i := half; i < len(pop); i++ {
				children[i].Fitness = e.hw.Fitness(i)
			}
		}
		// 1st half: launch.
		if !last {
			e.hw.Start(sysarr.CmdCompare(half))
		}

		// 2nd half: select the previous round's children.
		if !first {
			for i := half; i < len(pop); i++ {
				if children[i].Fitness <= pop[i].Fitness {
					pop[i] = children[i]
					changes++
				}
			}
		}
		// 2nd half: mutate and reconfigure.
		if !last {
			for i := half; i < len(pop); i++ {
				children[i] = pop[i]
			}
			for i := half; i < len(pop); i++ {
				e.Mutate(&children[i].Genome)
			}
			for i := half; i < len(pop); i++ {
				e.hw.Program(&children[i].Genome, i)
			}
		}
		// 1st half: finish its launch.
		if !last {
			e.hw.Wait()
			for i := 0; i < half; i++ {
				children[i].Fitness = e.hw.Fitness(i)
			}
		}
		// 2nd half: launch.
		if !last {
			e.hw.Start(sysarr.CmdCompareRange(half, len(pop)))
		}
	}

	e.war(pop)
	return changes
}

// RandomSearch replaces each member with a fresh random genome whenever the
// newcomer is at least as fit, for SubGenerations rounds, then elects the
// best into slot 0. It is the baseline the evolution strategies are measured
// against. Returns the number of replacements.
func (e *Engine) RandomSearch(pop Population) int {
	children := make(Population, len(pop))
	changes := 0

	for gen := 0; gen < e.cfg.SubGenerations; gen++ {
		for i := range children {
			e.randomGenome(&children[i].Genome)
		}

		e.Check(children)

		for i := range children {
			if children[i].Fitness <= pop[i].Fitness {
				pop[i] = children[i]
				changes++
			}
		}
	}

	electBest(pop)
	return changes
}

// Mutate applies MutationRate point mutations to a genome. With the
// SingleColumn scope, all mutations of one call land in the same column.
// When the output mux is pinned, draws that hit it are resampled; only
// applied mutations count against the rate.
func (e *Engine) Mutate(g *sysarr.Genome) {
	geo := e.codec.Geometry()

	j := 0
	if e.cfg.Mutation == SingleColumn {
		j = e.rng.Intn(sysarr.Width + 1)
	}

	for n := 0; n < e.cfg.MutationRate; n++ {
		i := e.rng.Intn(sysarr.Height + 1)
		if e.cfg.Mutation == AnyColumn {
			j = e.rng.Intn(sysarr.Width + 1)
		}
		if !e.cfg.MutateOutput {
			for i == 0 && j == 0 {
				i = e.rng.Intn(sysarr.Height + 1)
				if e.cfg.Mutation == AnyColumn {
					j = e.rng.Intn(sysarr.Width + 1)
				}
			}
		}

		var v int
		switch {
		case i == 0 && j == 0:
			v = e.rng.Intn(sysarr.Height)
		case i == 0 || j == 0:
			v = e.rng.Intn(geo.InMuxCount())
		default:
			v = e.rng.Intn(geo.FunctionCount())
		}
		e.codec.Set(g, i, j, v)
	}
}

// identityGenome configures a copy filter: center input taps, pass-west PEs,
// bottom-row readout.
func (e *Engine) identityGenome(g *sysarr.Genome) {
	g.Reset()
	geo := e.codec.Geometry()

	for i := 0; i <= sysarr.Height; i++ {
		for j := 0; j <= sysarr.Width; j++ {
			switch {
			case i == 0 && j == 0:
				e.codec.Set(g, 0, 0, sysarr.IdentityOut)
			case i == 0 || j == 0:
				e.codec.Set(g, i, j, geo.IdentityTap())
			default:
				e.codec.Set(g, i, j, geo.IdentityPE())
			}
		}
	}
}

// randomGenome configures every gene uniformly at random. With the output
// mux pinned, it is skipped during the draw and set to the bottom row after.
func (e *Engine) randomGenome(g *sysarr.Genome) {
	g.Reset()
	geo := e.codec.Geometry()

	for i := 0; i <= sysarr.Height; i++ {
		for j := 0; j <= sysarr.Width; j++ {
			if i == 0 && j == 0 {
				if e.cfg.MutateOutput {
					e.codec.Set(g, 0, 0, e.rng.Intn(sysarr.Height))
				}
				continue
			}
			if i == 0 || j == 0 {
				e.codec.Set(g, i, j, e.rng.Intn(geo.InMuxCount()))
			} else {
				e.codec.Set(g, i, j, e.rng.Intn(geo.FunctionCount()))
			}
		}
	}

	if !e.cfg.MutateOutput {
		e.codec.Set(g, 0, 0, sysarr.IdentityOut)
	}
}

// war consolidates the population after a macro-generation.
func (e *Engine) war(pop Population) {
	switch e.cfg.War {
	case DuplicateCull:
		best, worst := 0, 0
		for i := 1; i < len(pop); i++ {
			if pop[i].Fitness < pop[best].Fitness {
				best = i
			}
			if pop[i].Fitness > pop[worst].Fitness {
				worst = i
			}
		}
		// Remove the worst, moving slot 0 out of the way, then duplicate
		// the best into slot 0.
		pop[worst] = pop[0]
		pop[0] = pop[best]
	default: // Democracy
		electBest(pop)
	}
}

// electBest swaps the fittest member into slot 0, displacing the previous
// occupant into the fittest member's old slot.
func electBest(pop Population) {
	best := pop.Best()
	if best == 0 {
		return
	}
	pop[0], pop[best] = pop[best], pop[0]
}
