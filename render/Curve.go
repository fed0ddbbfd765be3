package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Curve is a named series of points to draw as a line
type Curve struct {
	Name string
	X, Y []float64
}

// NewCurve returns a Curve of ys against their index, starting at 1
func NewCurve(name string, ys []float64) Curve {
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	return Curve{Name: name, X: xs, Y: ys}
}

// LearningCurve saves a line plot of the curves to filename
func LearningCurve(filename string, curves ...Curve) error {
	p := plot.New()
	p.Title.Text = "Learning curve"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Return"

	for i, c := range curves {
		if len(c.X) != len(c.Y) {
			return fmt.Errorf("learningCurve: curve %v has %d x values and "+
				"%d y values", c.Name, len(c.X), len(c.Y))
		}
		if len(c.X) == 0 {
			continue
		}

		points := make(plotter.XYs, len(c.X))
		for j := range c.X {
			points[j] = plotter.XY{X: c.X[j], Y: c.Y[j]}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("learningCurve: %w", err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(c.Name, line)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, filename); err != nil {
		return fmt.Errorf("learningCurve: could not save %v: %w", filename,
			err)
	}
	return nil
}
