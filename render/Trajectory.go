package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"github.com/samuelfneumann/racetrack/environment/racetrack"
)

// Colours of each Cell in trajectory images
var cellRGB = map[racetrack.Cell][3]float64{
	racetrack.Track:  {0.5, 0.5, 0.5},
	racetrack.Grass:  {0.13, 0.55, 0.13},
	racetrack.Start:  {0.12, 0.56, 1.0},
	racetrack.Finish: {0.86, 0.08, 0.24},
}

// TrajectoryImage draws the path of a car over the racetrack. Each
// cell is cellSize pixels wide. Positions off the racetrack are drawn
// past its edge and so may be clipped.
func TrajectoryImage(m *racetrack.Map, path []racetrack.Position,
	cellSize int) image.Image {
	if cellSize <= 0 {
		panic(fmt.Sprintf("trajectoryImage: cell size must be positive, "+
			"have %d", cellSize))
	}

	rows, cols := m.Dims()
	size := float64(cellSize)
	dc := gg.NewContext(cols*cellSize, rows*cellSize)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			rgb := cellRGB[m.At(i, j)]
			dc.DrawRectangle(float64(j)*size, float64(i)*size, size, size)
			dc.SetRGB(rgb[0], rgb[1], rgb[2])
			dc.Fill()
		}
	}

	if len(path) == 0 {
		return dc.Image()
	}

	centre := func(p racetrack.Position) (float64, float64) {
		return (float64(p.Col) + 0.5) * size, (float64(p.Row) + 0.5) * size
	}

	dc.ClearPath()
	dc.MoveTo(centre(path[0]))
	for _, p := range path[1:] {
		dc.LineTo(centre(p))
	}
	dc.SetRGB(1, 0.84, 0)
	dc.SetLineWidth(size / 6)
	dc.Stroke()

	for _, p := range path {
		x, y := centre(p)
		dc.DrawCircle(x, y, size/5)
	}
	dc.SetRGB(0, 0, 0)
	dc.Fill()

	return dc.Image()
}

// Trajectory saves a PNG image of the path of a car over the racetrack
func Trajectory(m *racetrack.Map, path []racetrack.Position, cellSize int,
	filename string) error {
	img := TrajectoryImage(m, path, cellSize)
	if err := gg.SavePNG(filename, img); err != nil {
		return fmt.Errorf("trajectory: could not save %v: %w", filename, err)
	}
	return nil
}
