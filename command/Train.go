package command

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/racetrack/agent"
	"github.com/samuelfneumann/racetrack/agent/montecarlo"
	"github.com/samuelfneumann/racetrack/environment/racetrack"
	"github.com/samuelfneumann/racetrack/experiment"
	"github.com/samuelfneumann/racetrack/experiment/checkpointer"
	"github.com/samuelfneumann/racetrack/experiment/tracker"
	"github.com/samuelfneumann/racetrack/render"
	"github.com/samuelfneumann/racetrack/utils/intutils"
	"github.com/samuelfneumann/racetrack/utils/progressbar"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

// Velocities at which greedy policies are drawn after training
var policyVelocities = []racetrack.Velocity{{Row: 1, Col: 0}, {Row: 0, Col: 1},
	{Row: 1, Col: 1}, {Row: 2, Col: 2}}

type trainFlags struct {
	env        envFlags
	configFile string
	agentIndex int

	episodes     int
	evalEvery    int
	evalEpisodes int

	epsilon      float64
	initialValue float64

	checkpointEvery int
	checkpointNames string
	quiet           bool
}

// checkpointNamer returns the function which names checkpoint files
// saved under base: "number" enumerates them, "time" stamps them with
// the time they were saved
func checkpointNamer(names, base string) (func() string, error) {
	switch names {
	case "number":
		return checkpointer.FilenameEnumerator(0, base, ".bin"), nil
	case "time":
		return checkpointer.FileTimer(base, ".bin"), nil
	default:
		return nil, fmt.Errorf("checkpointNamer: unknown naming %q, want "+
			"number or time", names)
	}
}

// TrainCommand returns the command which trains a Monte Carlo agent
func TrainCommand(root *rootOptions) *cobra.Command {
	f := &trainFlags{}

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a Monte Carlo agent and save its tables and plots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return train(cmd, root, f)
		},
	}

	f.env.add(cmd)
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "",
		"JSON experiment configuration, other flags override its fields")
	cmd.Flags().IntVar(&f.agentIndex, "agent", 0,
		"Index of the agent configuration to train")
	cmd.Flags().IntVarP(&f.episodes, "episodes", "e", 10000,
		"Number of training episodes")
	cmd.Flags().IntVar(&f.evalEvery, "eval-every", 1000,
		"Evaluate the greedy policy every this many episodes, 0 to never")
	cmd.Flags().IntVar(&f.evalEpisodes, "eval-episodes", 10,
		"Number of episodes in each evaluation")
	cmd.Flags().Float64Var(&f.epsilon, "epsilon", 0.1,
		"Probability of a random action while training")
	cmd.Flags().Float64Var(&f.initialValue, "initial-value",
		montecarlo.DefaultInitialValue, "Initial action-value estimates")
	cmd.Flags().IntVar(&f.checkpointEvery, "checkpoint-every", 0,
		"Save the agent's tables every this many episodes, 0 to never")
	cmd.Flags().StringVar(&f.checkpointNames, "checkpoint-names", "number",
		"Name checkpoints by number or by time")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false,
		"Do not display a progress bar")

	return cmd
}

// experimentConfig returns the experiment configuration given by the
// configuration file and the flags
func (f *trainFlags) experimentConfig(cmd *cobra.Command) (experiment.Config,
	error) {
	var c experiment.Config
	fromFile := f.configFile != ""
	changed := func(name string) bool {
		return !fromFile || cmd.Flags().Changed(name)
	}

	if fromFile {
		var err error
		if c, err = experiment.LoadConfig(f.configFile); err != nil {
			return c, err
		}
	} else {
		c.Type = experiment.OnlineExp
	}

	if err := f.env.apply(cmd, &c.EnvConf, !fromFile); err != nil {
		return c, err
	}
	if changed("episodes") {
		c.Episodes = f.episodes
	}
	if changed("eval-every") {
		c.EvalEvery = f.evalEvery
	}
	if changed("eval-episodes") {
		c.EvalEpisodes = f.evalEpisodes
	}
	if changed("epsilon") || changed("initial-value") {
		list, ok := c.AgentConf.ConfigList.(montecarlo.ConfigList)
		if !ok {
			list = montecarlo.ConfigList{
				Epsilon:      []float64{f.epsilon},
				InitialValue: []float64{f.initialValue},
			}
		}
		if changed("epsilon") {
			list.Epsilon = []float64{f.epsilon}
		}
		if changed("initial-value") {
			list.InitialValue = []float64{f.initialValue}
		}
		c.AgentConf = agent.NewTypedConfigList(list)
	}

	return c, c.Validate()
}

func train(cmd *cobra.Command, root *rootOptions, f *trainFlags) error {
	c, err := f.experimentConfig(cmd)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	checkpointName, err := checkpointNamer(f.checkpointNames,
		filepath.Join(root.outDir, "checkpoint"))
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if err := root.mkOutDir(); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	out := func(name string) string {
		return filepath.Join(root.outDir, name)
	}

	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return fmt.Errorf("train: could not encode config: %w", err)
	}
	if err := os.WriteFile(out("config.json"), data, 0644); err != nil {
		return fmt.Errorf("train: could not save config: %w", err)
	}

	returns := tracker.NewReturn(out("returns.bin"))
	lengths := tracker.NewEpisodeLength(out("lengths.bin"))
	evalReturns := tracker.NewReturn(out("eval_returns.bin"))

	exp, err := c.CreateExp(f.agentIndex, root.seed, returns, lengths)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	exp.RegisterEval(evalReturns)

	mc, ok := exp.Agent.(*montecarlo.MonteCarlo)
	if !ok {
		return fmt.Errorf("train: cannot train agent of type %T", exp.Agent)
	}
	env := exp.Environment.(*racetrack.Racetrack)

	if f.checkpointEvery > 0 {
		exp.RegisterCheckpointer(checkpointer.NewNEpisode(f.checkpointEvery,
			mc, checkpointName))
	}

	bar := progressbar.NewManualProgressBarTo(cmd.OutOrStdout(), 40,
		c.Episodes)
	exp.OnEpisode = func(int, float64) {
		bar.Increment()
		if !f.quiet {
			bar.Display()
		}
	}
	exp.OnEvaluation = func(e experiment.Evaluation) {
		bar.SetStatus("eval@%d: %.2f", e.Episode, e.Mean())
	}

	log.Printf("Training on %v racetrack for %d episodes", c.EnvConf.Policy,
		c.Episodes)
	if err := exp.Run(); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if !f.quiet {
		bar.Close()
	}

	exp.Save()
	if err := mc.Save(out("tables.bin")); err != nil {
		return fmt.Errorf("train: %w", err)
	}

	trainReturns := returns.Data()
	last := trainReturns[len(trainReturns)-intutils.Min(100, len(trainReturns)):]
	log.Printf("Mean return of the last %d episodes: %.2f", len(last),
		stat.Mean(last, nil))
	if best, ok := exp.Best(); ok {
		log.Printf("Best evaluation after %d episodes: %.2f", best.Episode,
			best.Mean())
	}

	return renderTraining(env, mc, exp, trainReturns, c.EnvConf.EpisodeCutoff,
		out)
}

// renderTraining saves plots of the agent trained in exp
func renderTraining(env *racetrack.Racetrack, mc *montecarlo.MonteCarlo,
	exp *experiment.Online, trainReturns []float64, cutoff uint,
	out func(string) string) error {
	evals := exp.Evaluations()
	evalCurve := render.Curve{Name: "greedy"}
	for _, e := range evals {
		evalCurve.X = append(evalCurve.X, float64(e.Episode))
		evalCurve.Y = append(evalCurve.Y, e.Mean())
	}
	err := render.LearningCurve(out("learning_curve.png"),
		render.NewCurve("training", trainReturns), evalCurve)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	m := env.Map()
	tables := mc.Tables()
	if err := render.Track(m, out("track.png")); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	for _, v := range policyVelocities {
		filename := out(fmt.Sprintf("policy_%d_%d.png", v.Row, v.Col))
		if err := render.Policy(tables, m, v, filename); err != nil {
			return fmt.Errorf("train: %w", err)
		}
	}
	if err := render.MaxValue(tables, m, out("max_value.png")); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if err := render.Exploration(tables, m, out("explored.png")); err != nil {
		return fmt.Errorf("train: %w", err)
	}

	ret, path := greedyRun(env, mc, cutoff)
	log.Printf("Greedy episode: return %.0f in %d steps", ret, len(path)-1)
	if err := render.Trajectory(m, path, cellSize, out("trajectory.png")); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	return nil
}
