package agent

import "reflect"

// Type represents a specific type of an agent Config. Configs with
// this type can create Agents of the corresponding type.
type Type string

const (
	// Tabular methods
	EGreedyMonteCarloTabular Type = "EGreedyMonteCarlo-Tabular"
)

// Registered types with the package. Once a Type has been registered
// with this map, a ConfigList with that type can be deserialized.
//
// No Types are registered with this package upon initialization.
// Each agent package registers its own Type to avoid circular imports.
var registeredTypes = make(map[Type]reflect.Type)

// Register registers an agent's Type with a concrete ConfigList type
// so that upon deserialization of a TypedConfigList, ConfigLists of
// type agentType are deserialized into the concrete type of configs.
func Register(agentType Type, configs ConfigList) {
	registeredTypes[agentType] = reflect.TypeOf(configs)
}

// Registered returns whether a ConfigList type has been registered for
// agentType
func Registered(agentType Type) bool {
	_, ok := registeredTypes[agentType]
	return ok
}
