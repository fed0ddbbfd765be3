package montecarlo

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/racetrack/agent"
	"github.com/samuelfneumann/racetrack/environment/racetrack"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// straight is a 6x11 track with a single start cell at (5, 0) and the
// finish line along the last column
const straight = `
..........F
..........F
..........F
..........F
..........F
S.........F
`

func newStraight(t *testing.T, policy racetrack.Policy) *racetrack.Racetrack {
	t.Helper()

	m, err := racetrack.ParseMap(straight)
	if err != nil {
		t.Fatalf("could not parse map: %v", err)
	}
	env, err := racetrack.New(m, racetrack.DefaultConfig(policy), 13)
	if err != nil {
		t.Fatalf("could not create racetrack: %v", err)
	}
	return env
}

func newAgent(t *testing.T, env *racetrack.Racetrack, ɛ float64) *MonteCarlo {
	t.Helper()

	m, err := New(env, DefaultConfig(ɛ), 17)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}
	return m
}

// forEachState calls f on every state of a racetrack with the given
// dimensions
func forEachState(rows, cols int, f func(racetrack.State)) {
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			for rs := racetrack.MinSpeed; rs <= racetrack.MaxSpeed; rs++ {
				for cs := racetrack.MinSpeed; cs <= racetrack.MaxSpeed; cs++ {
					f(racetrack.State{Row: i, Col: j, RowSpeed: rs,
						ColSpeed: cs})
				}
			}
		}
	}
}

func TestReturns(t *testing.T) {
	tests := []struct {
		rewards, want []float64
	}{
		{[]float64{-1, -1, -1}, []float64{-3, -2, -1}},
		{[]float64{-1, -100, -1}, []float64{-102, -101, -1}},
		{[]float64{}, []float64{}},
	}

	for _, test := range tests {
		if have := Returns(test.rewards); !floats.Equal(have, test.want) {
			t.Errorf("returns(%v): want %v, have %v", test.rewards,
				test.want, have)
		}
	}
}

func TestIncrementalMean(t *testing.T) {
	tables := NewTables(1, 1, 0)
	s := racetrack.State{}

	tables.Update(s, 4, 10)
	if v, n := tables.Value(s, 4), tables.Count(s, 4); v != 10 || n != 1 {
		t.Errorf("after first update: want (10, 1), have (%v, %v)", v, n)
	}

	tables.Update(s, 4, 20)
	if v, n := tables.Value(s, 4), tables.Count(s, 4); v != 15 || n != 2 {
		t.Errorf("after second update: want (15, 2), have (%v, %v)", v, n)
	}

	for a := 0; a < NumActions; a++ {
		if a != 4 && (tables.Value(s, a) != 0 || tables.Count(s, a) != 0) {
			t.Errorf("action %d should not have been updated", a)
		}
	}
}

func TestLearnEveryVisit(t *testing.T) {
	env := newStraight(t, racetrack.Recovering)
	m := newAgent(t, env, 0)

	s := racetrack.State{Row: 3, Col: 2, RowSpeed: 0, ColSpeed: 0}
	other := racetrack.State{Row: 4, Col: 2, RowSpeed: 0, ColSpeed: 0}
	episode := Episode{
		{State: s, Action: 2, Reward: -1},
		{State: other, Action: 5, Reward: -100},
		{State: s, Action: 2, Reward: -3},
	}

	// Returns are (-104, -103, -3), so the repeated pair sees -104 and -3
	returns := Returns(episode.Rewards())
	m.learn(episode, returns)

	tables := m.Tables()
	if n := tables.Count(s, 2); n != 2 {
		t.Errorf("repeated pair: want 2 visits, have %d", n)
	}
	if v, want := tables.Value(s, 2), (-104.0-3.0)/2; v != want {
		t.Errorf("repeated pair: want value %v, have %v", want, v)
	}
	if n, v := tables.Count(other, 5), tables.Value(other, 5); n != 1 ||
		v != -103 {
		t.Errorf("single pair: want (-103, 1), have (%v, %v)", v, n)
	}
}

func TestObservePanicsOnFractionalAction(t *testing.T) {
	env := newStraight(t, racetrack.Strict)
	m := newAgent(t, env, 0)
	step := env.Reset()
	m.ObserveFirst(step)

	defer func() {
		if recover() == nil {
			t.Error("observe with a fractional acceleration should panic")
		}
	}()
	m.Observe(mat.NewVecDense(2, []float64{0.4, 0.6}), step)
}

func TestActionBijection(t *testing.T) {
	seen := make(map[[2]int]bool)

	for a := 0; a < NumActions; a++ {
		row, col := Acceleration(a)
		if row < -1 || row > 1 || col < -1 || col > 1 {
			t.Errorf("action %d: acceleration (%d, %d) out of range", a, row,
				col)
		}
		if seen[[2]int{row, col}] {
			t.Errorf("acceleration (%d, %d) appears twice", row, col)
		}
		seen[[2]int{row, col}] = true

		if index, ok := ActionIndex(row, col); !ok || index != a {
			t.Errorf("actionIndex(%d, %d): want %d, have %d", row, col, a,
				index)
		}
		if v := AccelerationVec(a); v.AtVec(0) != float64(row) ||
			v.AtVec(1) != float64(col) {
			t.Errorf("accelerationVec(%d): have %v", a, v.RawVector().Data)
		}
	}

	if len(seen) != 9 {
		t.Errorf("want 9 accelerations, have %d", len(seen))
	}
	if _, ok := ActionIndex(2, 0); ok {
		t.Error("actionIndex(2, 0) should not exist")
	}

	defer func() {
		if recover() == nil {
			t.Error("acceleration of an invalid action should panic")
		}
	}()
	Acceleration(NumActions)
}

func TestUpdatePolicySelectsMaximum(t *testing.T) {
	rows, cols := 3, 4
	tables := NewTables(rows, cols, 0)

	want := make(map[racetrack.State]int)
	forEachState(rows, cols, func(s racetrack.State) {
		i := tables.StateIndex(s)
		for a := 0; a < NumActions; a++ {
			tables.values.Set(i, a, float64(-(i+a)%7))
		}
		best := (i * 5) % NumActions
		tables.values.Set(i, best, 1)
		want[s] = best
	})

	tables.UpdatePolicy()
	for s, best := range want {
		if have := tables.Action(s); have != best {
			t.Errorf("%v: want action %d, have %d", s, best, have)
		}
	}
}

func TestUpdatePolicyBreaksTiesByFirstIndex(t *testing.T) {
	tables := NewTables(2, 2, -5)
	s := racetrack.State{Row: 1, Col: 1, RowSpeed: 2, ColSpeed: 3}
	tables.values.Set(tables.StateIndex(s), 3, 0)
	tables.values.Set(tables.StateIndex(s), 7, 0)

	tables.UpdatePolicy()
	if a := tables.Action(s); a != 3 {
		t.Errorf("want action 3, have %d", a)
	}
	if a := tables.Action(racetrack.State{}); a != 0 {
		t.Errorf("want action 0 for all-equal values, have %d", a)
	}
}

func TestStateIndexIsUnique(t *testing.T) {
	tables := NewTables(4, 3, 0)
	seen := make(map[int]bool)

	forEachState(4, 3, func(s racetrack.State) {
		i := tables.StateIndex(s)
		if i < 0 || i >= tables.NumStates() || seen[i] {
			t.Errorf("%v: index %d reused or out of range", s, i)
		}
		seen[i] = true
	})

	defer func() {
		if recover() == nil {
			t.Error("stateIndex of an off-track state should panic")
		}
	}()
	tables.StateIndex(racetrack.State{Row: 4})
}

func TestPlayEpisodeLearns(t *testing.T) {
	env := newStraight(t, racetrack.Strict)
	m := newAgent(t, env, 1.0)

	ret, episode := m.PlayEpisode(true, true)
	if !env.Done() {
		t.Fatal("episode should end when the racetrack is done")
	}
	if len(episode) == 0 {
		t.Fatal("episode should have at least one step")
	}
	if ret != episode.Return() {
		t.Errorf("return: want %v, have %v", episode.Return(), ret)
	}

	returns := Returns(episode.Rewards())
	visits := make(map[Step]int)
	for _, step := range episode {
		visits[Step{State: step.State, Action: step.Action}]++
	}

	total := 0
	for i, step := range episode {
		count := m.Tables().Count(step.State, step.Action)
		if want := visits[Step{State: step.State, Action: step.Action}]; count != want {
			t.Errorf("step %d: count %d, want %d", i, count, want)
		}
		if count == 1 && m.Tables().Value(step.State, step.Action) != returns[i] {
			t.Errorf("step %d: value %v, want return %v", i,
				m.Tables().Value(step.State, step.Action), returns[i])
		}
	}
	for _, n := range visits {
		total += n
	}
	if total != len(episode) {
		t.Errorf("want %d visits, have %d", len(episode), total)
	}
}

func TestPlayEpisodeWithoutLearning(t *testing.T) {
	env := newStraight(t, racetrack.Recovering)
	m := newAgent(t, env, 0.5)

	_, episode := m.PlayEpisode(true, false)
	for _, step := range episode {
		if n := m.Tables().Count(step.State, step.Action); n != 0 {
			t.Errorf("%v: count %d without learning", step.State, n)
		}
		if v := m.Tables().Value(step.State, step.Action); v != DefaultInitialValue {
			t.Errorf("%v: value %v without learning", step.State, v)
		}
	}
}

func TestGreedyEpisodeFollowsPolicy(t *testing.T) {
	env := newStraight(t, racetrack.Recovering)
	m := newAgent(t, env, 1.0)

	for i := 0; i < 10; i++ {
		env.Reset()
		m.PlayEpisode(true, true)
		m.UpdatePolicy()
	}

	env.Reset()
	_, episode := m.PlayEpisode(false, false)
	for _, step := range episode {
		if want := m.Tables().Action(step.State); step.Action != want {
			t.Errorf("%v: greedy action %d, took %d", step.State, want,
				step.Action)
		}
	}
}

func TestTrainingFindsFinishLine(t *testing.T) {
	env := newStraight(t, racetrack.Strict)
	m := newAgent(t, env, 0.1)

	for i := 0; i < 2000; i++ {
		env.Reset()
		m.PlayEpisode(true, true)
		m.UpdatePolicy()
	}

	env.Reset()
	ret, episode := m.PlayEpisode(false, false)
	if ret <= racetrack.OutOfBoundsReward {
		t.Errorf("greedy policy left the track: return %v over %d steps",
			ret, len(episode))
	}
}

func TestAgentInterface(t *testing.T) {
	env := newStraight(t, racetrack.Recovering)
	m := newAgent(t, env, 0.2)

	run := func() int {
		step := env.Reset()
		m.ObserveFirst(step)

		steps := 0
		for !step.Last() {
			action := m.SelectAction(step)
			step, _ = env.Step(action)
			m.Observe(action, step)
			steps++
		}
		m.EndEpisode()
		return steps
	}

	steps := run()
	visits := 0
	forEachState(6, 11, func(s racetrack.State) {
		for a := 0; a < NumActions; a++ {
			visits += m.Tables().Count(s, a)
		}
	})
	if visits != steps {
		t.Errorf("training: want %d visits, have %d", steps, visits)
	}

	m.Eval()
	if !m.IsEval() {
		t.Fatal("agent should be in evaluation mode")
	}
	run()
	after := 0
	forEachState(6, 11, func(s racetrack.State) {
		for a := 0; a < NumActions; a++ {
			after += m.Tables().Count(s, a)
		}
	})
	if after != visits {
		t.Errorf("evaluation should not learn: %d visits, have %d", visits,
			after)
	}
}

func TestSaveAndLoadTables(t *testing.T) {
	env := newStraight(t, racetrack.Recovering)
	m := newAgent(t, env, 0.3)
	for i := 0; i < 5; i++ {
		env.Reset()
		m.PlayEpisode(true, true)
		m.UpdatePolicy()
	}

	filename := filepath.Join(t.TempDir(), "tables.bin")
	if err := m.Save(filename); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadTables(filename)
	if err != nil {
		t.Fatal(err)
	}

	forEachState(6, 11, func(s racetrack.State) {
		if loaded.Action(s) != m.Tables().Action(s) {
			t.Errorf("%v: policy differs after loading", s)
		}
		for a := 0; a < NumActions; a++ {
			if loaded.Value(s, a) != m.Tables().Value(s, a) ||
				loaded.Count(s, a) != m.Tables().Count(s, a) {
				t.Errorf("%v, %d: tables differ after loading", s, a)
			}
		}
	})

	other := newAgent(t, newStraight(t, racetrack.Strict), 0)
	if err := other.SetTables(loaded); err != nil {
		t.Errorf("setTables: %v", err)
	}
	if err := other.SetTables(NewTables(2, 2, 0)); err == nil {
		t.Error("setTables should reject tables of the wrong size")
	}
}

func TestConfigList(t *testing.T) {
	list := NewConfigList([]float64{0.1, 0.2}, []float64{100, 0})
	if list.Len() != 4 {
		t.Fatalf("len: want 4, have %d", list.Len())
	}

	want := []Config{{0.1, 100}, {0.1, 0}, {0.2, 100}, {0.2, 0}}
	for i, c := range want {
		if have := list.At(i); have != c {
			t.Errorf("at(%d): want %v, have %v", i, c, have)
		}
	}

	data, err := json.Marshal(list)
	if err != nil {
		t.Fatal(err)
	}
	var decoded agent.TypedConfigList
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != agent.EGreedyMonteCarloTabular {
		t.Errorf("type: want %v, have %v", agent.EGreedyMonteCarloTabular,
			decoded.Type)
	}
	if have := decoded.At(3); have != want[3] {
		t.Errorf("decoded at(3): want %v, have %v", want[3], have)
	}
}

func TestConfigValidate(t *testing.T) {
	for _, ɛ := range []float64{-0.1, 1.1} {
		if err := DefaultConfig(ɛ).Validate(); err == nil {
			t.Errorf("epsilon %v should be invalid", ɛ)
		}
	}
	env := newStraight(t, racetrack.Strict)
	a, err := DefaultConfig(0.1).CreateAgent(env, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !DefaultConfig(0.1).ValidAgent(a) {
		t.Error("created agent should be valid for its config")
	}
}

func TestPlayEpisodeLimit(t *testing.T) {
	env := newStraight(t, racetrack.Recovering)
	m := newAgent(t, env, 0)

	_, episode := m.PlayEpisodeLimit(false, false, 1)
	if len(episode) != 1 {
		t.Fatalf("want 1 step, have %d", len(episode))
	}
	if env.Done() {
		t.Error("a single step should not finish the straight track")
	}
}
