package presenter

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.yaml
var schemasFS embed.FS

// registry is the singleton schema registry.
var registry = &Registry{}

// Registry holds loaded entity schemas indexed by name and type key.
type Registry struct {
	once    sync.Once
	byName  map[string]*EntitySchema // "todo" → schema
	byType  map[string]*EntitySchema // "Todo" → schema
	loadErr error
}

// load parses all embedded YAML schemas.
func (r *Registry) load() {
	r.once.Do(func() {
		r.byName = make(map[string]*EntitySchema)
		r.byType = make(map[string]*EntitySchema)

		entries, err := schemasFS.ReadDir("schemas")
		if err != nil {
			r.loadErr = fmt.Errorf("reading schemas dir: %w", err)
			return
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			data, err := schemasFS.ReadFile("schemas/" + entry.Name())
			if err != nil {
				continue
			}

			schema := new(EntitySchema)
			if err := yaml.Unmarshal(data, schema); err != nil {
				continue
			}

			r.byName[schema.Entity] = schema
			if schema.TypeKey != "" {
				r.byType[schema.TypeKey] = schema
			}
		}
	})
}

// LookupByName returns a schema by entity name (e.g. "todo").
func LookupByName(name string) *EntitySchema {
	registry.load()
	return registry.byName[name]
}

// LookupByTypeKey returns a schema by API type key (e.g. "Todo").
func LookupByTypeKey(typeKey string) *EntitySchema {
	registry.load()
	return registry.byType[typeKey]
}
