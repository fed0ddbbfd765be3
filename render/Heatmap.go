// Package render draws racetracks, the tables learned on them, and
// episodes driven on them
package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/samuelfneumann/racetrack/agent/montecarlo"
	"github.com/samuelfneumann/racetrack/environment/racetrack"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Size of saved heatmaps
const (
	HeatmapWidth  = 6 * vg.Inch
	HeatmapHeight = 6 * vg.Inch
)

// cellGrid is a plotter.GridXYZ over the cells of a racetrack. Row 0
// of the racetrack is drawn at the top.
type cellGrid struct {
	rows, cols int
	z          func(row, col int) float64
	min, max   float64
}

var _ plotter.GridXYZ = cellGrid{}

// newCellGrid returns a grid with values z, bounded by the smallest and
// largest non-NaN values of z
func newCellGrid(rows, cols int, z func(row, col int) float64) cellGrid {
	min, max := math.Inf(1), math.Inf(-1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := z(i, j); !math.IsNaN(v) {
				min = math.Min(min, v)
				max = math.Max(max, v)
			}
		}
	}
	if math.IsInf(min, 1) {
		min, max = 0, 0
	}
	return cellGrid{rows, cols, z, min, max}
}

func (g cellGrid) Dims() (c, r int) {
	return g.cols, g.rows
}

func (g cellGrid) Z(c, r int) float64 {
	return g.z(g.rows-1-r, c)
}

func (g cellGrid) X(c int) float64 {
	return float64(c)
}

func (g cellGrid) Y(r int) float64 {
	return float64(r)
}

func (g cellGrid) Min() float64 {
	return g.min
}

// Max returns the upper bound of the grid, which is always above Min so
// that the palette can be spread between them
func (g cellGrid) Max() float64 {
	if g.max <= g.min {
		return g.min + 1
	}
	return g.max
}

// rowTicker labels the y axis with racetrack rows, which increase
// downwards
type rowTicker int

func (t rowTicker) Ticks(min, max float64) []plot.Tick {
	rows := int(t)
	step := 1
	if rows > 10 {
		step = 5
	}

	var ticks []plot.Tick
	for row := 0; row < rows; row++ {
		tick := plot.Tick{Value: float64(rows - 1 - row)}
		if row%step == 0 {
			tick.Label = strconv.Itoa(row)
		}
		ticks = append(ticks, tick)
	}
	return ticks
}

// cellPalette colours each racetrack Cell
type cellPalette struct{}

func (cellPalette) Colors() []color.Color {
	return []color.Color{
		color.RGBA{R: 128, G: 128, B: 128, A: 255}, // Track
		color.RGBA{R: 34, G: 139, B: 34, A: 255},   // Grass
		color.RGBA{R: 30, G: 144, B: 255, A: 255},  // Start
		color.RGBA{R: 220, G: 20, B: 60, A: 255},   // Finish
	}
}

// heatmap saves a heatmap of g to filename. The file format is given by
// the filename's extension.
func heatmap(title string, g cellGrid, p palette.Palette,
	filename string) error {
	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "Column"
	pl.Y.Label.Text = "Row"
	pl.Y.Tick.Marker = rowTicker(g.rows)

	h := plotter.NewHeatMap(g, p)
	h.Min, h.Max = g.Min(), g.Max()
	h.NaN = color.White
	pl.Add(h)

	if err := pl.Save(HeatmapWidth, HeatmapHeight, filename); err != nil {
		return fmt.Errorf("could not save %v: %w", filename, err)
	}
	return nil
}

// Track saves an image of the racetrack to filename
func Track(m *racetrack.Map, filename string) error {
	rows, cols := m.Dims()
	g := newCellGrid(rows, cols, func(row, col int) float64 {
		return float64(m.At(row, col))
	})
	g.min, g.max = float64(racetrack.Track), float64(racetrack.Finish)

	if err := heatmap("Racetrack", g, cellPalette{}, filename); err != nil {
		return fmt.Errorf("track: %w", err)
	}
	return nil
}

// Policy saves a heatmap of the greedy action in every cell of the
// racetrack when driving with velocity v. Grass is left blank.
func Policy(t *montecarlo.Tables, m *racetrack.Map, v racetrack.Velocity,
	filename string) error {
	rows, cols := m.Dims()
	g := newCellGrid(rows, cols, func(row, col int) float64 {
		if m.At(row, col) == racetrack.Grass {
			return math.NaN()
		}
		return float64(t.Action(racetrack.NewState(
			racetrack.Position{Row: row, Col: col}, v)))
	})
	g.min, g.max = 0, montecarlo.NumActions-1

	title := fmt.Sprintf("Greedy action at velocity %v", v)
	err := heatmap(title, g, palette.Heat(montecarlo.NumActions, 1), filename)
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	return nil
}

// MaxValues returns, for every cell of the racetrack, the highest
// estimated action value over all velocities and actions that have
// been tried. Cells where nothing has been tried are NaN.
func MaxValues(t *montecarlo.Tables, m *racetrack.Map) [][]float64 {
	return perCell(m, math.NaN(), func(max float64, s racetrack.State) float64 {
		for a := 0; a < montecarlo.NumActions; a++ {
			if t.Count(s, a) == 0 {
				continue
			}
			if v := t.Value(s, a); math.IsNaN(max) || v > max {
				max = v
			}
		}
		return max
	})
}

// Explored returns, for every cell of the racetrack, the fraction of
// state-action pairs of the cell that have been tried at least once
func Explored(t *montecarlo.Tables, m *racetrack.Map) [][]float64 {
	total := float64(racetrack.NumSpeeds * racetrack.NumSpeeds *
		montecarlo.NumActions)

	return perCell(m, 0, func(explored float64, s racetrack.State) float64 {
		for a := 0; a < montecarlo.NumActions; a++ {
			if t.Count(s, a) > 0 {
				explored += 1 / total
			}
		}
		return explored
	})
}

// perCell folds every state of each cell of m into a single value per
// cell, starting from init
func perCell(m *racetrack.Map, init float64,
	fold func(acc float64, s racetrack.State) float64) [][]float64 {
	rows, cols := m.Dims()
	out := make([][]float64, rows)

	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			acc := init
			for rs := racetrack.MinSpeed; rs <= racetrack.MaxSpeed; rs++ {
				for cs := racetrack.MinSpeed; cs <= racetrack.MaxSpeed; cs++ {
					acc = fold(acc, racetrack.State{Row: i, Col: j,
						RowSpeed: rs, ColSpeed: cs})
				}
			}
			out[i][j] = acc
		}
	}
	return out
}

// MaxValue saves a heatmap of MaxValues to filename
func MaxValue(t *montecarlo.Tables, m *racetrack.Map, filename string) error {
	values := MaxValues(t, m)
	rows, cols := m.Dims()
	g := newCellGrid(rows, cols, func(row, col int) float64 {
		return values[row][col]
	})

	if err := heatmap("Maximum action value", g, palette.Heat(32, 1),
		filename); err != nil {
		return fmt.Errorf("maxValue: %w", err)
	}
	return nil
}

// Exploration saves a heatmap of Explored to filename
func Exploration(t *montecarlo.Tables, m *racetrack.Map,
	filename string) error {
	explored := Explored(t, m)
	rows, cols := m.Dims()
	g := newCellGrid(rows, cols, func(row, col int) float64 {
		if m.At(row, col) == racetrack.Grass {
			return math.NaN()
		}
		return explored[row][col]
	})
	g.min, g.max = 0, 1

	if err := heatmap("Fraction of state-actions explored", g,
		palette.Heat(32, 1), filename); err != nil {
		return fmt.Errorf("exploration: %w", err)
	}
	return nil
}
