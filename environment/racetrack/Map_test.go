package racetrack

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseMap(t *testing.T) {
	m, err := ParseMap(`
#..F
S.0F
2#.3
`)
	if err != nil {
		t.Fatal(err)
	}

	if rows, cols := m.Dims(); rows != 3 || cols != 4 {
		t.Errorf("dims: want (3, 4), have (%d, %d)", rows, cols)
	}

	want := [][]Cell{
		{Grass, Track, Track, Finish},
		{Start, Track, Track, Finish},
		{Start, Grass, Track, Finish},
	}
	for i := range want {
		for j := range want[i] {
			if have := m.At(i, j); have != want[i][j] {
				t.Errorf("at(%d, %d): want %v, have %v", i, j, want[i][j],
					have)
			}
		}
	}

	starts := m.Starts()
	if len(starts) != 2 || starts[0] != (Position{1, 0}) ||
		starts[1] != (Position{2, 0}) {
		t.Errorf("starts: want [(1, 0) (2, 0)], have %v", starts)
	}

	if text := m.String(); text != "#..F\nS..F\nS#.F\n" {
		t.Errorf("string: unexpected text form %q", text)
	}
}

func TestParseMapErrors(t *testing.T) {
	tests := map[string]string{
		"empty":      "",
		"no start":   "..F\n..F",
		"ragged":     "S..F\n..F",
		"bad symbol": "S.xF",
	}

	for name, text := range tests {
		if _, err := ParseMap(text); err == nil {
			t.Errorf("%v: expected error", name)
		}
	}
}

func TestNewMapRejectsBadCells(t *testing.T) {
	if _, err := NewMap([][]Cell{{Start, Cell(7)}}); err == nil {
		t.Error("expected error for unknown cell")
	}
}

func TestAtPanicsOutOfBounds(t *testing.T) {
	m, err := ParseMap("S.F")
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Error("at out of bounds should panic")
		}
	}()
	m.At(1, 0)
}

func TestNamedTracks(t *testing.T) {
	for _, name := range Names() {
		m, err := Named(name)
		if err != nil {
			t.Errorf("%v: %v", name, err)
			continue
		}

		// The finish line lies along the last column of every track
		rows, cols := m.Dims()
		finishes := 0
		for i := 0; i < rows; i++ {
			if m.At(i, cols-1) == Finish {
				finishes++
			}
		}
		if finishes == 0 {
			t.Errorf("%v: no finish cells in last column", name)
		}

		if err := checkRecoverable(m); err != nil {
			t.Errorf("%v: %v", name, err)
		}
	}

	if _, err := Named("track9"); err == nil {
		t.Error("expected error for unknown track")
	}
}

func TestLoadMap(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "track.txt")
	if err := os.WriteFile(filename, []byte("S..F\n...F\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadMap(filename)
	if err != nil {
		t.Fatal(err)
	}
	if rows, cols := m.Dims(); rows != 2 || cols != 4 {
		t.Errorf("dims: want (2, 4), have (%d, %d)", rows, cols)
	}

	if _, err := LoadMap(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
