package racetrack

import (
	"fmt"
	"sort"
	"strings"
)

// Names of the built-in racetracks
const (
	Track1 = "track1"
	Track2 = "track2"
)

// track1 is a narrow track that turns right at the top, 32 rows by 17
// columns
var track1 = []string{
	"###.............F",
	"##..............F",
	"##..............F",
	"#...............F",
	"................F",
	"................F",
	"..........#######",
	".........########",
	".........########",
	".........########",
	".........########",
	".........########",
	".........########",
	".........########",
	"#........########",
	"#........########",
	"#........########",
	"#........########",
	"#........########",
	"#........########",
	"#........########",
	"#........########",
	"##.......########",
	"##.......########",
	"##.......########",
	"##.......########",
	"##.......########",
	"##.......########",
	"##.......########",
	"###......########",
	"###......########",
	"###SSSSSS########",
}

// track2 is a wide track that turns right at the top, 30 rows by 32
// columns
var track2 = []string{
	"################...............F",
	"#############..................F",
	"############...................F",
	"###########....................F",
	"###########....................F",
	"###########....................F",
	"###########....................F",
	"############...................F",
	"#############..................F",
	"##############.................#",
	"#############..................#",
	"############..................##",
	"###########...................##",
	"##########...................###",
	"#########....................###",
	"########....................####",
	"#######.....................####",
	"######.....................#####",
	"#####......................#####",
	"####......................######",
	"###.......................######",
	"##.......................#######",
	"#........................#######",
	"........................########",
	"........................########",
	".......................#########",
	".......................#########",
	".......................#########",
	".......................#########",
	"SSSSSSSSSSSSSSSSSSSSSSS#########",
}

var tracks = map[string][]string{
	Track1: track1,
	Track2: track2,
}

// Named returns the built-in racetrack with the given name
func Named(name string) (*Map, error) {
	rows, ok := tracks[name]
	if !ok {
		return nil, fmt.Errorf("named: no such track %q, have %v", name,
			Names())
	}
	return ParseMap(strings.Join(rows, "\n"))
}

// Names returns the names of all built-in racetracks
func Names() []string {
	names := make([]string, 0, len(tracks))
	for name := range tracks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
