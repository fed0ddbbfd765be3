// Package experiment implements functionality for running an experiment
package experiment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samuelfneumann/racetrack/agent"
	"github.com/samuelfneumann/racetrack/environment/envconfig"
	"github.com/samuelfneumann/racetrack/experiment/tracker"
)

// Experiment outlines structs that can run experiments. Experiments
// send each environment TimeStep to Trackers, which cache the data
// they track in RAM. The Save() method then takes all cached data and
// saves it to disk, usually after an experiment has been run. The Run()
// method runs all episodes of the experiment.
type Experiment interface {
	Run() error

	// Save all tracked data to disk
	Save()

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

// Type is the type of an experiment
type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment
type Config struct {
	Type
	Episodes     int
	EvalEvery    int // Evaluate every this many episodes, 0 to never
	EvalEpisodes int // Number of episodes in each evaluation

	EnvConf   envconfig.Config
	AgentConf agent.TypedConfigList
}

// Validate returns an error if the Config is not valid
func (c Config) Validate() error {
	if c.Type != OnlineExp {
		return fmt.Errorf("validate: no such experiment type %v", c.Type)
	}
	if c.Episodes <= 0 {
		return fmt.Errorf("validate: episodes must be positive")
	}
	if c.EvalEvery < 0 || (c.EvalEvery > 0 && c.EvalEpisodes <= 0) {
		return fmt.Errorf("validate: evaluation needs a positive " +
			"frequency and number of episodes")
	}
	if err := c.EnvConf.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if c.AgentConf.ConfigList == nil || c.AgentConf.Len() == 0 {
		return fmt.Errorf("validate: no agent configurations")
	}
	return nil
}

// agentSeedOffset separates the agent's random stream from the
// environment's, which uses seed and seed+1
const agentSeedOffset = 2

// CreateExp creates the experiment that runs the agent at index i of
// the Config's agent configurations. Trackers given are registered as
// training trackers.
func (c Config) CreateExp(i int, seed uint64,
	t ...tracker.Tracker) (*Online, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}
	if i < 0 || i >= c.AgentConf.Len() {
		return nil, fmt.Errorf("createExp: no agent configuration %d", i)
	}

	env, _, err := c.EnvConf.Create(seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create environment: "+
			"%w", err)
	}

	agentConf := c.AgentConf.At(i)
	if err := agentConf.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}
	a, err := agentConf.CreateAgent(env, seed+agentSeedOffset)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %w", err)
	}

	return NewOnline(env, a, c.Episodes, c.EvalEvery, c.EvalEpisodes, t...),
		nil
}

// LoadConfig loads a JSON experiment Config from a file
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode %v: %w",
			filename, err)
	}
	return c, nil
}
