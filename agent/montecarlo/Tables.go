package montecarlo

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/samuelfneumann/racetrack/environment/racetrack"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Tables holds the tabular action-value estimates, visit counts, and
// greedy policy of a Monte Carlo agent on a racetrack with a fixed
// number of rows and columns.
//
// Each state (row, col, row speed, col speed) is flattened to a single
// row of the value table, which has one column per action.
type Tables struct {
	rows, cols int

	values *mat.Dense
	counts []int
	policy []int
}

// NewTables returns new Tables for a racetrack of the given dimensions
// with every action-value estimate set to initialValue and every visit
// count set to 0. The greedy policy starts at action 0 in every state.
func NewTables(rows, cols int, initialValue float64) *Tables {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("newTables: dimensions must be positive, "+
			"have (%d, %d)", rows, cols))
	}

	states := rows * cols * racetrack.NumSpeeds * racetrack.NumSpeeds
	data := make([]float64, states*NumActions)
	for i := range data {
		data[i] = initialValue
	}

	return &Tables{
		rows:   rows,
		cols:   cols,
		values: mat.NewDense(states, NumActions, data),
		counts: make([]int, states*NumActions),
		policy: make([]int, states),
	}
}

// Dims returns the number of rows and columns of the racetrack the
// Tables are for
func (t *Tables) Dims() (rows, cols int) {
	return t.rows, t.cols
}

// NumStates returns the number of states in the Tables
func (t *Tables) NumStates() int {
	return len(t.policy)
}

// StateIndex returns the row of the value table for state s. StateIndex
// panics if s is not a state of the racetrack.
func (t *Tables) StateIndex(s racetrack.State) int {
	if s.Row < 0 || s.Row >= t.rows || s.Col < 0 || s.Col >= t.cols {
		panic(fmt.Sprintf("stateIndex: position (%d, %d) out of bounds "+
			"(%d, %d)", s.Row, s.Col, t.rows, t.cols))
	}
	if s.RowSpeed < racetrack.MinSpeed || s.RowSpeed > racetrack.MaxSpeed ||
		s.ColSpeed < racetrack.MinSpeed || s.ColSpeed > racetrack.MaxSpeed {
		panic(fmt.Sprintf("stateIndex: velocity (%d, %d) out of bounds",
			s.RowSpeed, s.ColSpeed))
	}

	index := s.Row*t.cols + s.Col
	index = index*racetrack.NumSpeeds + s.RowSpeed - racetrack.MinSpeed
	return index*racetrack.NumSpeeds + s.ColSpeed - racetrack.MinSpeed
}

// Value returns the estimated value of taking action a in state s
func (t *Tables) Value(s racetrack.State, a int) float64 {
	checkAction("value", a)
	return t.values.At(t.StateIndex(s), a)
}

// ActionValues returns a copy of the estimated values of each action
// in state s
func (t *Tables) ActionValues(s racetrack.State) []float64 {
	values := make([]float64, NumActions)
	copy(values, t.values.RawRowView(t.StateIndex(s)))
	return values
}

// Count returns the number of returns averaged into the estimated
// value of taking action a in state s
func (t *Tables) Count(s racetrack.State, a int) int {
	checkAction("count", a)
	return t.counts[t.StateIndex(s)*NumActions+a]
}

// Action returns the greedy action in state s, as of the last call to
// UpdatePolicy
func (t *Tables) Action(s racetrack.State) int {
	return t.policy[t.StateIndex(s)]
}

// Update averages ret into the estimated value of taking action a in
// state s using an incremental sample mean
func (t *Tables) Update(s racetrack.State, a int, ret float64) {
	checkAction("update", a)
	state := t.StateIndex(s)
	n := t.counts[state*NumActions+a]

	v := t.values.At(state, a)
	t.values.Set(state, a, v+(ret-v)/float64(n+1))
	t.counts[state*NumActions+a] = n + 1
}

// UpdatePolicy sets the greedy action of every state to the action with
// the highest estimated value. Ties go to the lowest action index.
func (t *Tables) UpdatePolicy() {
	for i := range t.policy {
		t.policy[i] = floats.MaxIdx(t.values.RawRowView(i))
	}
}

// tables is the serialized form of Tables
type tables struct {
	Rows, Cols int
	Values     *mat.Dense
	Counts     []int
	Policy     []int
}

// GobEncode implements the gob.GobEncoder interface
func (t *Tables) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err := enc.Encode(tables{t.rows, t.cols, t.values, t.counts, t.policy})
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (t *Tables) GobDecode(in []byte) error {
	var data tables
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&data); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	states := data.Rows * data.Cols * racetrack.NumSpeeds *
		racetrack.NumSpeeds
	if data.Values == nil {
		return fmt.Errorf("gobDecode: missing value table")
	}
	if r, c := data.Values.Dims(); r != states || c != NumActions {
		return fmt.Errorf("gobDecode: value table has shape (%d, %d), "+
			"want (%d, %d)", r, c, states, NumActions)
	}
	if len(data.Counts) != states*NumActions || len(data.Policy) != states {
		return fmt.Errorf("gobDecode: tables have inconsistent sizes")
	}

	t.rows, t.cols = data.Rows, data.Cols
	t.values = data.Values
	t.counts = data.Counts
	t.policy = data.Policy
	return nil
}

// Save saves the Tables to a file
func (t *Tables) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not create file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(t); err != nil {
		return fmt.Errorf("save: could not encode tables: %w", err)
	}
	return nil
}

// LoadTables loads Tables saved with Save
func LoadTables(filename string) (*Tables, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadTables: could not open file: %w", err)
	}
	defer file.Close()

	t := &Tables{}
	if err := gob.NewDecoder(file).Decode(t); err != nil {
		return nil, fmt.Errorf("loadTables: could not decode tables: %w",
			err)
	}
	return t, nil
}

func checkAction(method string, a int) {
	if a < 0 || a >= NumActions {
		panic(fmt.Sprintf("%v: action %d not in [0, %d)", method, a,
			NumActions))
	}
}
