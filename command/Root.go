// Package command implements the command line interface for training,
// inspecting, and replaying racetrack agents
package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by all subcommands
type rootOptions struct {
	seed   uint64
	outDir string
}

// mkOutDir creates the output directory if it does not exist
func (r *rootOptions) mkOutDir() error {
	if err := os.MkdirAll(r.outDir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}
	return nil
}

// GetRootCommand returns the root command of the racetrack command line
// interface
func GetRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCommand := &cobra.Command{
		Use:           "racetrack",
		Short:         "Monte Carlo control on Sutton and Barto's racetrack",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().Uint64Var(&opts.seed, "seed", 1,
		"Seed for all random number generation")
	rootCommand.PersistentFlags().StringVarP(&opts.outDir, "out", "o",
		"results", "Save results in the specified folder")

	// adding the subcommands here
	rootCommand.AddCommand(TrainCommand(opts))
	rootCommand.AddCommand(ReplayCommand(opts))
	rootCommand.AddCommand(ShowCommand(opts))
	return rootCommand
}
