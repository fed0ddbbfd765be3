package command

import (
	"github.com/samuelfneumann/racetrack/environment/envconfig"
	"github.com/samuelfneumann/racetrack/environment/racetrack"
	"github.com/spf13/cobra"
)

// envFlags are the flags which configure the racetrack
type envFlags struct {
	track   string
	mapFile string
	policy  string
	noise   float64
	cutoff  uint
}

func (e *envFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.track, "track", racetrack.Track1,
		"Built-in racetrack to drive on")
	cmd.Flags().StringVar(&e.mapFile, "map", "",
		"File holding the racetrack to drive on, overrides --track")
	cmd.Flags().StringVar(&e.policy, "policy", racetrack.Strict.String(),
		"What happens when leaving the track: Strict or Recovering")
	cmd.Flags().Float64Var(&e.noise, "noise", 0,
		"Probability of being displaced an extra cell each step")
	cmd.Flags().UintVar(&e.cutoff, "cutoff", 1000,
		"Maximum steps of greedy episodes, 0 for no limit")
}

// apply sets the fields of c for which flags were given. If all is
// true, every field is set.
func (e *envFlags) apply(cmd *cobra.Command, c *envconfig.Config,
	all bool) error {
	changed := func(name string) bool {
		return all || cmd.Flags().Changed(name)
	}

	if changed("map") && e.mapFile != "" {
		c.MapFile, c.Track = e.mapFile, ""
	} else if changed("track") {
		c.Track, c.MapFile = e.track, ""
	}
	if changed("policy") {
		policy, err := racetrack.ParsePolicy(e.policy)
		if err != nil {
			return err
		}
		c.Policy = policy
	}
	if changed("noise") {
		c.Noise = e.noise
	}
	if changed("cutoff") {
		c.EpisodeCutoff = e.cutoff
	}
	return nil
}

// config returns the environment configuration given by the flags
func (e *envFlags) config(cmd *cobra.Command) (envconfig.Config, error) {
	var c envconfig.Config
	if err := e.apply(cmd, &c, true); err != nil {
		return c, err
	}
	return c, c.Validate()
}
