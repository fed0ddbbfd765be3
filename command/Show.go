package command

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/racetrack/environment/racetrack"
	"github.com/samuelfneumann/racetrack/render"
	"github.com/spf13/cobra"
)

// ShowCommand returns the command which prints and draws a racetrack
func ShowCommand(root *rootOptions) *cobra.Command {
	var env envFlags
	var list, color bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print and draw a racetrack",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, name := range racetrack.Names() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			return show(cmd, root, &env, color)
		},
	}

	env.add(cmd)
	cmd.Flags().BoolVarP(&list, "list", "l", false,
		"List the built-in racetracks")
	cmd.Flags().BoolVar(&color, "color", false,
		"Print the racetrack in colour")

	return cmd
}

func show(cmd *cobra.Command, root *rootOptions, env *envFlags,
	color bool) error {
	c, err := env.config(cmd)
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}
	m, err := c.Map()
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}

	rows, cols := m.Dims()
	fmt.Fprintf(cmd.OutOrStdout(), "%d x %d racetrack with %d start "+
		"cells\n", rows, cols, len(m.Starts()))
	if color {
		printColored(cmd.OutOrStdout(), m)
	} else {
		fmt.Fprint(cmd.OutOrStdout(), m)
	}

	if err := root.mkOutDir(); err != nil {
		return fmt.Errorf("show: %w", err)
	}
	if err := render.Track(m, filepath.Join(root.outDir, "track.png")); err != nil {
		return fmt.Errorf("show: %w", err)
	}
	cells := filepath.Join(root.outDir, "track_cells.png")
	if err := render.Trajectory(m, nil, cellSize, cells); err != nil {
		return fmt.Errorf("show: %w", err)
	}
	return nil
}

// printColored prints the text form of m with each kind of cell in its
// own colour
func printColored(w io.Writer, m *racetrack.Map) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			cell := m.At(i, j)
			char := string(cell.Char())

			switch cell {
			case racetrack.Grass:
				fmt.Fprint(w, aurora.Green(char))
			case racetrack.Start:
				fmt.Fprint(w, aurora.Blue(char).Bold())
			case racetrack.Finish:
				fmt.Fprint(w, aurora.Red(char).Bold())
			default:
				fmt.Fprint(w, aurora.White(char))
			}
		}
		fmt.Fprintln(w)
	}
}
