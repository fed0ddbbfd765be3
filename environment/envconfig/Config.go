// Package envconfig provides configuration structs for configuring
// racetrack environments. Environment configurations in this package
// are JSON serializable.
package envconfig

import (
	"fmt"

	"github.com/samuelfneumann/racetrack/environment"
	"github.com/samuelfneumann/racetrack/environment/racetrack"
	ts "github.com/samuelfneumann/racetrack/timestep"
)

// Config implements a specific configuration of a racetrack
// environment. Exactly one of Track and MapFile should be set: Track
// names a built-in racetrack, MapFile is the path to the text form of
// a racetrack.
type Config struct {
	Track   string `json:",omitempty"`
	MapFile string `json:",omitempty"`

	Policy racetrack.Policy
	Noise  float64

	// Rewards, the defaults for the Policy are used when nil
	StepReward        *float64 `json:",omitempty"`
	OutOfBoundsReward *float64 `json:",omitempty"`

	// EpisodeCutoff ends episodes stepped through the Environment
	// interface after this many steps. Zero means no cutoff.
	EpisodeCutoff uint
}

// NewConfig returns a new environment Config for a built-in racetrack
// with default rewards
func NewConfig(track string, policy racetrack.Policy, noise float64,
	episodeCutoff uint) Config {
	return Config{
		Track:         track,
		Policy:        policy,
		Noise:         noise,
		EpisodeCutoff: episodeCutoff,
	}
}

// Validate returns an error if the Config is not valid
func (c Config) Validate() error {
	if (c.Track == "") == (c.MapFile == "") {
		return fmt.Errorf("validate: exactly one of Track and MapFile " +
			"must be set")
	}
	if err := c.RacetrackConfig().Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// RacetrackConfig returns the racetrack.Config described by the Config
func (c Config) RacetrackConfig() racetrack.Config {
	conf := racetrack.DefaultConfig(c.Policy)
	conf.Noise = c.Noise
	if c.StepReward != nil {
		conf.StepReward = *c.StepReward
	}
	if c.OutOfBoundsReward != nil {
		conf.OutOfBoundsReward = *c.OutOfBoundsReward
	}
	return conf
}

// Map returns the racetrack Map described by the Config
func (c Config) Map() (*racetrack.Map, error) {
	if c.MapFile != "" {
		return racetrack.LoadMap(c.MapFile)
	}
	return racetrack.Named(c.Track)
}

// Create returns the racetrack described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (*racetrack.Racetrack, ts.TimeStep,
	error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}

	m, err := c.Map()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}

	env, err := racetrack.New(m, c.RacetrackConfig(), seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}

	if c.EpisodeCutoff > 0 {
		env.SetCutoff(environment.NewStepLimit(int(c.EpisodeCutoff)))
	}
	return env, env.CurrentTimeStep(), nil
}
