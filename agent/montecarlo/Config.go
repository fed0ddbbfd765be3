package montecarlo

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/racetrack/agent"
	"github.com/samuelfneumann/racetrack/environment"
	"github.com/samuelfneumann/racetrack/environment/racetrack"
)

// DefaultInitialValue is the default initial action-value estimate. It
// is higher than any return a racetrack episode can produce, so every
// untried action looks better than every tried one.
const DefaultInitialValue = 100.0

func init() {
	// Register ConfigList type so that it can be typed using
	// agent.TypedConfigList to help with serialization/deserialization.
	agent.Register(agent.EGreedyMonteCarloTabular, ConfigList{})
}

// ConfigList implements functionality for storing a number of Configs
// in a simple manner. Instead of storing a slice of Configs, the
// ConfigList stores each field's values and constructs the list by
// every combination of field values.
type ConfigList struct {
	Epsilon      []float64
	InitialValue []float64
}

// NewConfigList returns a new ConfigList as an agent.TypedConfigList
// so that it can easily be JSON serialized/deserialized without
// knowing the underlying concrete type.
func NewConfigList(ɛ, initialValue []float64) agent.TypedConfigList {
	config := ConfigList{Epsilon: ɛ, InitialValue: initialValue}
	return agent.NewTypedConfigList(config)
}

// Config returns an empty Config that is of the type stored by
// ConfigList
func (c ConfigList) Config() agent.Config {
	return Config{}
}

// Type returns the type of agent that can be constructed by Configs
// stored by the list
func (c ConfigList) Type() agent.Type {
	return c.Config().Type()
}

// NumFields returns the number of settable fields for the ConfigList
func (c ConfigList) NumFields() int {
	return reflect.ValueOf(c).NumField()
}

// Len returns the number of Configs stored by the list
func (c ConfigList) Len() int {
	return len(c.Epsilon) * len(c.InitialValue)
}

// Config represents a configuration for the MonteCarlo agent
type Config struct {
	Epsilon      float64 // Probability of a random action while training
	InitialValue float64 // Initial action-value estimates
}

// DefaultConfig returns the default Config with the given epsilon
func DefaultConfig(ɛ float64) Config {
	return Config{Epsilon: ɛ, InitialValue: DefaultInitialValue}
}

// CreateAgent creates the agent from the Config. The environment must
// be a *racetrack.Racetrack.
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	track, ok := env.(*racetrack.Racetrack)
	if !ok {
		return nil, fmt.Errorf("createAgent: environment must be a "+
			"racetrack, have %T", env)
	}
	return New(track, c, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*MonteCarlo)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("validate: epsilon %v not in [0, 1]", c.Epsilon)
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.EGreedyMonteCarloTabular
}
