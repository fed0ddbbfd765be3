package agent

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/racetrack/environment"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// ValidAgent returns whether the argument agent is valid for the
	// Config
	ValidAgent(Agent) bool

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of agent the Config creates
	Type() Type
}

// ConfigList stores a number of Configs of a single Type. Instead of
// storing a slice of Configs, a ConfigList stores a slice of values
// for each field of the Config, and the Configs of the list are every
// combination of these field values.
//
// A ConfigList must be a struct with only slice fields, and each field
// must have the same name as a field of the Config it stores.
type ConfigList interface {
	// Config returns an empty Config of the type stored in the list
	Config() Config

	// Type returns the type of agent the stored Configs create
	Type() Type

	// NumFields returns the number of settable fields of the list
	NumFields() int

	// Len returns the number of Configs stored in the list
	Len() int
}

// ConfigAt returns the Config at index i of the ConfigList. Index 0
// holds the first value of every field. The last field of the list
// varies fastest as i increases.
//
// ConfigAt panics if i is not in [0, list.Len()).
func ConfigAt(i int, list ConfigList) Config {
	if i < 0 || i >= list.Len() {
		panic(fmt.Sprintf("configAt: index %d out of range [0, %d)", i,
			list.Len()))
	}

	listValue := reflect.ValueOf(list)
	config := reflect.New(reflect.TypeOf(list.Config())).Elem()

	for field := list.NumFields() - 1; field >= 0; field-- {
		values := listValue.Field(field)
		name := listValue.Type().Field(field).Name

		configField := config.FieldByName(name)
		if !configField.IsValid() {
			panic(fmt.Sprintf("configAt: config has no field %v", name))
		}

		configField.Set(values.Index(i % values.Len()))
		i /= values.Len()
	}

	return config.Interface().(Config)
}
