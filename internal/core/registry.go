package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registry   = make(map[EntityType]EntityDefinition)
	registryMu sync.RWMutex
)

// Register adds an entity definition to the registry.
// Panics if the type is already registered or the definition is inconsistent.
func Register(def EntityDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Type]; exists {
		panic(fmt.Sprintf("entity already registered: %s", def.Type))
	}
	if err := checkDefinition(def); err != nil {
		panic(fmt.Sprintf("entity %s: %v", def.Type, err))
	}

	registry[def.Type] = def
}

func checkDefinition(def EntityDefinition) error {
	if def.Type == "" {
		return fmt.Errorf("missing type")
	}
	if len(def.Inputs) == 0 {
		return fmt.Errorf("no inputs")
	}
	if len(def.KeyFields) == 0 {
		return fmt.Errorf("no key fields")
	}
	for _, f := range def.KeyFields {
		if _, ok := def.Spec(f); !ok {
			return fmt.Errorf("key field %q has no field spec", f)
		}
	}
	for _, ref := range def.References {
		for _, f := range ref.Fields {
			if _, ok := def.Spec(f); !ok {
				return fmt.Errorf("reference field %q has no field spec", f)
			}
		}
	}
	return nil
}

// Get returns an entity definition by type.
// Returns false if not found.
func Get(t EntityType) (EntityDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[t]
	return def, ok
}

// All returns all registered definitions in processing order.
func All() []EntityDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]EntityDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Type < result[j].Type
	})

	return result
}

// Inputs returns every distinct input file named by registered definitions,
// in processing order.
func Inputs() []string {
	seen := make(map[string]bool)
	var files []string
	for _, def := range All() {
		for _, in := range def.Inputs {
			key := strings.ToLower(in)
			if !seen[key] {
				seen[key] = true
				files = append(files, in)
			}
		}
	}
	return files
}
