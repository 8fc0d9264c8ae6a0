package gamedata

import (
	"errors"
	"math/rand"
)

// ThingRegistry holds loaded thing definitions and provides spawning utilities.
type ThingRegistry struct {
	things []ThingDef
	byID   map[string]*ThingDef
	levels LevelTables
}

// NewThingRegistry creates a registry from loaded thing definitions.
func NewThingRegistry(things []ThingDef, levels LevelTables) *ThingRegistry {
	r := &ThingRegistry{
		things: things,
		byID:   make(map[string]*ThingDef, len(things)),
		levels: levels,
	}
	for i := range things {
		r.byID[things[i].ID] = &things[i]
	}
	return r
}

// LoadThingRegistry loads and creates a registry from the embedded things.yaml.
func LoadThingRegistry() (*ThingRegistry, error) {
	file, err := LoadThings()
	if err != nil {
		return nil, err
	}
	if len(file.Things) == 0 {
		return nil, errors.New("no things loaded from things.yaml")
	}
	return NewThingRegistry(file.Things, file.Levels), nil
}

// MustLoadThingRegistry loads a registry, panicking on error.
func MustLoadThingRegistry() *ThingRegistry {
	registry, err := LoadThingRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// SpawnRandom selects a definition of the given kind available on level,
// using weighted probability. Returns nil when nothing qualifies.
func (r *ThingRegistry) SpawnRandom(rng *rand.Rand, kind ThingKind, level int) *ThingDef {
	totalWeight := 0
	for i := range r.things {
		if r.eligible(&r.things[i], kind, level) {
			totalWeight += r.things[i].SpawnWeight
		}
	}
	if totalWeight <= 0 {
		return nil
	}

	roll := rng.Intn(totalWeight)
	cumulative := 0
	for i := range r.things {
		if !r.eligible(&r.things[i], kind, level) {
			continue
		}
		cumulative += r.things[i].SpawnWeight
		if roll < cumulative {
			return &r.things[i]
		}
	}
	return nil
}

func (r *ThingRegistry) eligible(t *ThingDef, kind ThingKind, level int) bool {
	return t.Kind == kind && t.MinLevel <= level && t.SpawnWeight > 0
}

// MaxBlockers returns the per-room blocker cap for a level.
func (r *ThingRegistry) MaxBlockers(level int) int {
	return FromLevel(r.levels.MaxBlockersPerRoom, level)
}

// MaxItems returns the per-room item cap for a level.
func (r *ThingRegistry) MaxItems(level int) int {
	return FromLevel(r.levels.MaxItemsPerRoom, level)
}

// GetByID returns the definition with the given ID, or nil if not found.
func (r *ThingRegistry) GetByID(id string) *ThingDef {
	return r.byID[id]
}

// All returns all thing definitions.
func (r *ThingRegistry) All() []ThingDef {
	return r.things
}

// Count returns the number of thing types in the registry.
func (r *ThingRegistry) Count() int {
	return len(r.things)
}
