package envconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/racetrack/environment/racetrack"
	ts "github.com/samuelfneumann/racetrack/timestep"
	"gonum.org/v1/gonum/mat"
)

func TestCreateBuiltIn(t *testing.T) {
	c := NewConfig(racetrack.Track1, racetrack.Recovering, 0.1, 0)

	env, step, err := c.Create(1)
	if err != nil {
		t.Fatal(err)
	}
	if !step.First() {
		t.Errorf("first timestep: have %v", step.StepType)
	}
	if conf := env.Config(); conf.OutOfBoundsReward !=
		racetrack.RecoveringOutOfBoundsReward || conf.Noise != 0.1 {
		t.Errorf("unexpected racetrack config %+v", conf)
	}
}

func TestCreateFromFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "track.txt")
	if err := os.WriteFile(filename, []byte("S..F\nS..F\n"), 0644); err != nil {
		t.Fatal(err)
	}

	stepReward := -2.0
	c := Config{MapFile: filename, Policy: racetrack.Strict,
		StepReward: &stepReward}
	env, _, err := c.Create(1)
	if err != nil {
		t.Fatal(err)
	}
	if rows, cols := env.Map().Dims(); rows != 2 || cols != 4 {
		t.Errorf("dims: want (2, 4), have (%d, %d)", rows, cols)
	}
	if env.Config().StepReward != -2 {
		t.Errorf("step reward: want -2, have %v", env.Config().StepReward)
	}
}

func TestZeroRewards(t *testing.T) {
	var zero float64
	c := NewConfig(racetrack.Track1, racetrack.Strict, 0, 0)
	c.OutOfBoundsReward = &zero

	conf := c.RacetrackConfig()
	if conf.OutOfBoundsReward != 0 {
		t.Errorf("out of bounds reward: want 0, have %v",
			conf.OutOfBoundsReward)
	}
	if conf.StepReward != racetrack.StepReward {
		t.Errorf("step reward: want default %v, have %v",
			racetrack.StepReward, conf.StepReward)
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Config
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.OutOfBoundsReward == nil || *decoded.OutOfBoundsReward != 0 {
		t.Errorf("zero reward should survive encoding, have %s", data)
	}
	if decoded.StepReward != nil {
		t.Errorf("unset step reward should stay unset, have %s", data)
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]Config{
		"no track":   {Policy: racetrack.Strict},
		"both":       {Track: racetrack.Track1, MapFile: "x.txt"},
		"bad noise":  {Track: racetrack.Track1, Noise: 2},
		"bad policy": {Track: racetrack.Track1, Policy: 5},
	}

	for name, c := range tests {
		if err := c.Validate(); err == nil {
			t.Errorf("%v: config should be invalid", name)
		}
	}
	if _, _, err := (Config{Track: "nope"}).Create(1); err == nil {
		t.Error("unknown track should not be created")
	}
}

func TestEpisodeCutoff(t *testing.T) {
	c := NewConfig(racetrack.Track2, racetrack.Recovering, 0, 3)
	env, step, err := c.Create(2)
	if err != nil {
		t.Fatal(err)
	}

	coast := mat.NewVecDense(2, []float64{0, 0})
	steps := 0
	for !step.Last() {
		step, _ = env.Step(coast)
		steps++
	}
	if steps > 3 {
		t.Errorf("episode should be cut off after 3 steps, ran %d", steps)
	}
	if steps == 3 && step.EndType() != ts.Timeout {
		t.Errorf("end type: want %v, have %v", ts.Timeout, step.EndType())
	}
}

func TestJSON(t *testing.T) {
	data := []byte(`{"Track": "track2", "Policy": "Recovering", "Noise": 0.1}`)

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatal(err)
	}
	if c.Policy != racetrack.Recovering || c.Track != racetrack.Track2 ||
		c.Noise != 0.1 {
		t.Errorf("unexpected config %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Error(err)
	}
}
