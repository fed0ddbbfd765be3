package racetrack

import (
	"fmt"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Cell is the type of a single racetrack cell
type Cell int

const (
	Track Cell = iota
	Grass
	Start
	Finish
)

// Characters used in the text form of a Map. The digits of each Cell
// value are accepted as well.
const (
	TrackChar  = '.'
	GrassChar  = '#'
	StartChar  = 'S'
	FinishChar = 'F'
)

func (c Cell) String() string {
	switch c {
	case Track:
		return "Track"
	case Grass:
		return "Grass"
	case Start:
		return "Start"
	case Finish:
		return "Finish"
	default:
		return fmt.Sprintf("Cell(%d)", int(c))
	}
}

// Char returns the character that represents the Cell in the text form
// of a Map
func (c Cell) Char() byte {
	switch c {
	case Grass:
		return GrassChar
	case Start:
		return StartChar
	case Finish:
		return FinishChar
	default:
		return TrackChar
	}
}

func (c Cell) valid() bool {
	return c >= Track && c <= Finish
}

// Map is an immutable 2D grid of racetrack cells. Coordinates are
// (row, col) with row 0 at the top of the track.
type Map struct {
	rows, cols int
	cells      []Cell
	starts     []Position
}

// NewMap returns a new Map with the given cells. The cells must form a
// non-empty rectangle and contain at least one Start cell.
func NewMap(cells [][]Cell) (*Map, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, fmt.Errorf("newMap: map must have at least one cell")
	}

	rows, cols := len(cells), len(cells[0])
	m := &Map{rows: rows, cols: cols, cells: make([]Cell, 0, rows*cols)}

	for i, row := range cells {
		if len(row) != cols {
			return nil, fmt.Errorf("newMap: row %d has %d columns, want %d",
				i, len(row), cols)
		}
		for j, cell := range row {
			if !cell.valid() {
				return nil, fmt.Errorf("newMap: invalid cell %v at (%d, %d)",
					cell, i, j)
			}
			if cell == Start {
				m.starts = append(m.starts, Position{i, j})
			}
			m.cells = append(m.cells, cell)
		}
	}

	if len(m.starts) == 0 {
		return nil, fmt.Errorf("newMap: map has no start cells")
	}
	return m, nil
}

// ParseMap parses the text form of a Map. Each non-empty line is one
// row of the map, and each character is one cell.
func ParseMap(text string) (*Map, error) {
	var cells [][]Cell
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		row := make([]Cell, len(line))
		for j := 0; j < len(line); j++ {
			switch line[j] {
			case TrackChar, '0':
				row[j] = Track
			case GrassChar, '1':
				row[j] = Grass
			case StartChar, '2':
				row[j] = Start
			case FinishChar, '3':
				row[j] = Finish
			default:
				return nil, fmt.Errorf("parseMap: unknown cell %q at (%d, %d)",
					line[j], len(cells), j)
			}
		}
		cells = append(cells, row)
	}

	return NewMap(cells)
}

// LoadMap reads and parses the text form of a Map from a file
func LoadMap(filename string) (*Map, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("loadMap: could not read map: %w", err)
	}

	m, err := ParseMap(string(data))
	if err != nil {
		return nil, fmt.Errorf("loadMap: %v: %w", filename, err)
	}
	return m, nil
}

// Dims returns the number of rows and columns in the Map
func (m *Map) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// InBounds returns whether (row, col) lies on the Map
func (m *Map) InBounds(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// At returns the Cell at (row, col). At panics if (row, col) is not on
// the Map.
func (m *Map) At(row, col int) Cell {
	if !m.InBounds(row, col) {
		panic(fmt.Sprintf("at: (%d, %d) out of bounds (%d, %d)", row, col,
			m.rows, m.cols))
	}
	return m.cells[row*m.cols+col]
}

// Starts returns the positions of all Start cells, in row-major order
func (m *Map) Starts() []Position {
	starts := make([]Position, len(m.starts))
	copy(starts, m.starts)
	return starts
}

// startMatrix returns the Start cells as a matrix with one (row, col)
// pair per row
func (m *Map) startMatrix() *mat.Dense {
	coords := make([]float64, 0, 2*len(m.starts))
	for _, s := range m.starts {
		coords = append(coords, float64(s.Row), float64(s.Col))
	}
	return mat.NewDense(len(m.starts), 2, coords)
}

// Dense returns the Map as a matrix of cell codes
func (m *Map) Dense() *mat.Dense {
	data := make([]float64, len(m.cells))
	for i, cell := range m.cells {
		data[i] = float64(cell)
	}
	return mat.NewDense(m.rows, m.cols, data)
}

// String returns the text form of the Map
func (m *Map) String() string {
	var b strings.Builder
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			b.WriteByte(m.At(i, j).Char())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
