package evolve

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Strategy selects how one generation evolves the population.
type Strategy int

const (
	// TribalWar evolves each tribe independently with a (1+1) step and ends
	// the generation with a war between tribes.
	TribalWar Strategy = iota
	// ElitistLambda spawns the whole population from the single best member
	// each round, a (1+lambda) evolution with no wars.
	ElitistLambda
	// HalfAndHalf is the tribal step with the two population halves
	// pipelined, hiding reconfiguration latency behind evaluation latency.
	// It needs at least as many array instances as tribes.
	HalfAndHalf
)

// WarPolicy selects what the war step does.
type WarPolicy int

const (
	// DuplicateCull duplicates the best tribe into slot 0 and culls the
	// least fit.
	DuplicateCull WarPolicy = iota
	// Democracy only moves the best tribe into slot 0, never culling.
	Democracy
)

// MutationScope selects how mutation coordinates are drawn.
type MutationScope int

const (
	// AnyColumn draws a fresh column for every point mutation.
	AnyColumn MutationScope = iota
	// SingleColumn puts all of one call's mutations in the same column.
	SingleColumn
)

// Config gathers every evolution knob in one explicit value.
type Config struct {
	// Tribes is the population size.
	Tribes int `yaml:"tribes"`
	// SubGenerations is the number of (1+1) rounds per generation call,
	// i.e. the rounds between wars.
	SubGenerations int `yaml:"subGenerations"`
	// MutationRate is the number of point mutations per mutation call.
	MutationRate int `yaml:"mutationRate"`
	// ParallelWidth is the number of array instances evaluated per batch.
	ParallelWidth int `yaml:"parallelWidth"`

	Strategy Strategy      `yaml:"strategy"`
	War      WarPolicy     `yaml:"war"`
	Mutation MutationScope `yaml:"mutation"`

	// MutateOutput allows mutation and random seeding to touch the output
	// multiplexer gene at (0, 0).
	MutateOutput bool `yaml:"mutateOutput"`
	// RandomInit seeds the initial population uniformly at random instead of
	// with the deterministic copy filter.
	RandomInit bool `yaml:"randomInit"`
	// Seed is the generator seed; 0 means the default seed 1.
	Seed uint32 `yaml:"seed"`
}

// DefaultConfig returns the hardware demo's configuration: 12 tribes, 100
// rounds per war, 2-gene single-column mutations, duplicate-and-cull wars,
// and 4 array instances.
func DefaultConfig() Config {
	return Config{
		Tribes:         12,
		SubGenerations: 100,
		MutationRate:   2,
		ParallelWidth:  4,
		Strategy:       TribalWar,
		War:            DuplicateCull,
		Mutation:       SingleColumn,
		MutateOutput:   true,
		RandomInit:     false,
		Seed:           1,
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.Tribes < 1 {
		return errors.Errorf("tribe count %d must be positive", c.Tribes)
	}
	if c.SubGenerations < 1 {
		return errors.Errorf("sub-generation count %d must be positive", c.SubGenerations)
	}
	if c.MutationRate < 0 {
		return errors.Errorf("mutation rate %d must not be negative", c.MutationRate)
	}
	if c.ParallelWidth < 1 {
		return errors.Errorf("parallel width %d must be positive", c.ParallelWidth)
	}
	if c.Strategy == HalfAndHalf {
		if c.Tribes%2 != 0 {
			return errors.Errorf(
				"half-and-half splits the population exactly in half; tribe count %d must be even",
				c.Tribes)
		}
		if c.ParallelWidth < c.Tribes {
			return errors.Errorf(
				"half-and-half needs one array instance per tribe: %d instances for %d tribes",
				c.ParallelWidth, c.Tribes)
		}
	}
	return nil
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func (s Strategy) String() string {
	switch s {
	case TribalWar:
		return "tribalWar"
	case ElitistLambda:
		return "elitistLambda"
	case HalfAndHalf:
		return "halfAndHalf"
	default:
		return "unknown"
	}
}

// UnmarshalYAML accepts the strategy by name.
func (s *Strategy) UnmarshalYAML(node *yaml.Node) error {
	switch node.Value {
	case "tribalWar":
		*s = TribalWar
	case "elitistLambda":
		*s = ElitistLambda
	case "halfAndHalf":
		*s = HalfAndHalf
	default:
		return errors.Errorf("unknown strategy %q", node.Value)
	}
	return nil
}

func (w WarPolicy) String() string {
	switch w {
	case DuplicateCull:
		return "duplicateCull"
	case Democracy:
		return "democracy"
	default:
		return "unknown"
	}
}

// UnmarshalYAML accepts the war policy by name.
func (w *WarPolicy) UnmarshalYAML(node *yaml.Node) error {
	switch node.Value {
	case "duplicateCull":
		*w = DuplicateCull
	case "democracy":
		*w = Democracy
	default:
		return errors.Errorf("unknown war policy %q", node.Value)
	}
	return nil
}

func (m MutationScope) String() string {
	switch m {
	case AnyColumn:
		return "anyColumn"
	case SingleColumn:
		return "singleColumn"
	default:
		return "unknown"
	}
}

// UnmarshalYAML accepts the mutation scope by name.
func (m *MutationScope) UnmarshalYAML(node *yaml.Node) error {
	switch node.Value {
	case "anyColumn":
		*m = AnyColumn
	case "singleColumn":
		*m = SingleColumn
	default:
		return errors.Errorf("unknown mutation scope %q", node.Value)
	}
	return nil
}
