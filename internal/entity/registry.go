package entity

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/samdwyer/roguetiles/internal/gamedata"
	"github.com/samdwyer/roguetiles/internal/world"
)

// ErrUnknownEntity is returned when an ID is not registered.
var ErrUnknownEntity = errors.New("unknown entity")

// Registry owns every live entity. Dungeon tiles only hold the IDs it hands
// out, so entities can move between tiles, into inventories and across
// levels without the map owning them.
type Registry struct {
	entities map[uuid.UUID]*Entity
	order    []uuid.UUID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[uuid.UUID]*Entity)}
}

// Spawn registers a new entity built from a thing definition. The entity is
// not on the map until the caller places it.
func (r *Registry) Spawn(def *gamedata.ThingDef) *Entity {
	e := &Entity{
		ID:       uuid.New(),
		Template: def.ID,
		Name:     def.Name,
		Kind:     KindOf(def.Kind),
		Glyph:    def.WorldGlyph(),
	}
	r.insert(e)
	return e
}

// Add registers an existing entity, e.g. one read back from a save.
func (r *Registry) Add(e *Entity) error {
	if e.ID == uuid.Nil {
		return fmt.Errorf("add entity %q: %w", e.Name, world.ErrNilRef)
	}
	if _, dup := r.entities[e.ID]; dup {
		return fmt.Errorf("add entity %q: id %s already registered", e.Name, e.ID)
	}
	r.insert(e)
	return nil
}

func (r *Registry) insert(e *Entity) {
	r.entities[e.ID] = e
	r.order = append(r.order, e.ID)
}

// Get returns the entity with the given ID.
func (r *Registry) Get(id uuid.UUID) (*Entity, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// Lookup is Get with an error for unregistered IDs.
func (r *Registry) Lookup(id uuid.UUID) (*Entity, error) {
	e, ok := r.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	return e, nil
}

// Remove unregisters the entity and returns it.
func (r *Registry) Remove(id uuid.UUID) (*Entity, bool) {
	e, ok := r.entities[id]
	if !ok {
		return nil, false
	}
	delete(r.entities, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return e, true
}

// Glyph implements world.GlyphSource.
func (r *Registry) Glyph(id uuid.UUID) (world.Glyph, bool) {
	e, ok := r.entities[id]
	if !ok {
		return world.Glyph{}, false
	}
	return e.Glyph, true
}

// All returns every entity in registration order.
func (r *Registry) All() []*Entity {
	out := make([]*Entity, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entities[id])
	}
	return out
}

// OnMap returns the entities currently standing on the map, in registration order.
func (r *Registry) OnMap() []*Entity {
	var out []*Entity
	for _, id := range r.order {
		if e := r.entities[id]; e.OnMap {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of registered entities.
func (r *Registry) Count() int {
	return len(r.order)
}
