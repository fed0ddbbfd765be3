package command

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/samuelfneumann/racetrack/agent/montecarlo"
	"github.com/samuelfneumann/racetrack/environment/racetrack"
	"github.com/samuelfneumann/racetrack/render"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

// cellSize is the width in pixels of a racetrack cell in trajectory
// images
const cellSize = 20

type replayFlags struct {
	env      envFlags
	tables   string
	episodes int
}

// ReplayCommand returns the command which drives greedy episodes with
// saved tables
func ReplayCommand(root *rootOptions) *cobra.Command {
	f := &replayFlags{}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Drive greedy episodes with saved tables and draw them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return replay(cmd, root, f)
		},
	}

	f.env.add(cmd)
	cmd.Flags().StringVarP(&f.tables, "tables", "t", "",
		"Tables saved by train")
	cmd.Flags().IntVarP(&f.episodes, "episodes", "e", 1,
		"Number of episodes to drive")
	cmd.MarkFlagRequired("tables")

	return cmd
}

func replay(cmd *cobra.Command, root *rootOptions, f *replayFlags) error {
	c, err := f.env.config(cmd)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	env, _, err := c.Create(root.seed)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	tables, err := montecarlo.LoadTables(f.tables)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	mc, err := montecarlo.New(env, montecarlo.DefaultConfig(0), root.seed)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	if err := mc.SetTables(tables); err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	if err := root.mkOutDir(); err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	returns := make([]float64, f.episodes)
	for i := range returns {
		ret, path := greedyRun(env, mc, c.EpisodeCutoff)
		returns[i] = ret
		fmt.Fprintf(cmd.OutOrStdout(), "Episode %d: return %.0f in %d "+
			"steps (%v)\n", i+1, ret, len(path)-1, env.EndType())

		filename := filepath.Join(root.outDir,
			fmt.Sprintf("replay%d.png", i+1))
		if err := render.Trajectory(env.Map(), path, cellSize, filename); err != nil {
			return fmt.Errorf("replay: %w", err)
		}
	}

	log.Printf("Mean return over %d episodes: %.2f", f.episodes,
		stat.Mean(returns, nil))
	return nil
}

// greedyRun resets the racetrack and drives one greedy episode of at
// most cutoff steps without learning. It returns the return of the
// episode and every position the car was at, in order.
func greedyRun(env *racetrack.Racetrack, mc *montecarlo.MonteCarlo,
	cutoff uint) (float64, []racetrack.Position) {
	env.Reset()
	ret, episode := mc.PlayEpisodeLimit(false, false, int(cutoff))

	path := make([]racetrack.Position, 0, len(episode)+1)
	for _, step := range episode {
		path = append(path, step.State.Position())
	}
	return ret, append(path, env.Position())
}
