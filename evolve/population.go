package evolve

import "github.com/ehwlab/sysevo/sysarr"

// Member is one tribe: a configuration and its last measured fitness.
// Fitness is the sum of absolute pixel differences against the reference
// image, so lower is better.
type Member struct {
	Genome  sysarr.Genome
	Fitness uint32
}

// Population holds every tribe. Slot 0 is the elite slot: wars and elections
// consolidate the fittest member there.
type Population []Member

// NewPopulation allocates n members with unconfigured genomes.
func NewPopulation(n int) Population {
	pop := make(Population, n)
	for i := range pop {
		pop[i].Genome.Reset()
	}
	return pop
}

// Best returns the index of the fittest member, preferring earlier slots on
// ties.
func (p Population) Best() int {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i].Fitness < p[best].Fitness {
			best = i
		}
	}
	return best
}

// Worst returns the index of the least fit member, preferring earlier slots
// on ties.
func (p Population) Worst() int {
	worst := 0
	for i := 1; i < len(p); i++ {
		if p[i].Fitness > p[worst].Fitness {
			worst = i
		}
	}
	return worst
}
