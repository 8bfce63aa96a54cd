package core

import "fmt"

// IDRegistry maps each entity type to its Source Key → Destination ID slice.
//
// A slice is committed exactly once, by the processor run for that entity type,
// and is read-only afterwards. Runs are sequential, so there is no locking.
type IDRegistry struct {
	slices map[EntityType]*idSlice
}

type idSlice struct {
	order []string       // Assigned Source Keys in assignment order; pinned keys excluded
	ids   map[string]int // Assigned and pinned keys
}

// NewIDRegistry creates an empty registry for one run.
func NewIDRegistry() *IDRegistry {
	return &IDRegistry{slices: make(map[EntityType]*idSlice)}
}

// Lookup returns the Destination ID assigned to key within an entity type.
// It fails with ErrReferenceNotFound if the slice has not been committed yet
// or the key is absent.
func (r *IDRegistry) Lookup(t EntityType, key string) (int, error) {
	s, ok := r.slices[t]
	if !ok {
		return 0, &Error{
			Kind:   ErrReferenceNotFound,
			Entity: t,
			Err:    fmt.Errorf("%s ids have not been assigned yet", t),
		}
	}
	id, ok := s.ids[key]
	if !ok {
		return 0, &Error{
			Kind:   ErrReferenceNotFound,
			Entity: t,
			Err:    fmt.Errorf("no destination id for source key %s", key),
		}
	}
	return id, nil
}

// Populated reports whether the slice for t has been committed.
func (r *IDRegistry) Populated(t EntityType) bool {
	_, ok := r.slices[t]
	return ok
}

// Len returns the number of Source Keys assigned a position in the slice for t.
// Pinned keys resolve through Lookup but are not counted.
func (r *IDRegistry) Len(t EntityType) int {
	if s, ok := r.slices[t]; ok {
		return len(s.order)
	}
	return 0
}

// commit stores a finished assignment as the slice for t.
func (r *IDRegistry) commit(t EntityType, a *assignment) error {
	if _, exists := r.slices[t]; exists {
		return fmt.Errorf("%s ids already assigned", t)
	}
	r.slices[t] = &idSlice{order: a.order, ids: a.ids}
	return nil
}

// assignment accumulates one entity type's IDs during a single pass.
type assignment struct {
	offset int
	next   int
	order  []string
	ids    map[string]int
}

func newAssignment(offset int) *assignment {
	return &assignment{offset: offset, ids: make(map[string]int)}
}

// reserve returns the ID for key, assigning offset+position on first sight.
func (a *assignment) reserve(key string) int {
	if id, ok := a.ids[key]; ok {
		return id
	}
	id := a.offset + a.next
	a.next++
	a.order = append(a.order, key)
	a.ids[key] = id
	return id
}

// pin records a fixed ID for key without consuming a position.
func (a *assignment) pin(key string, id int) {
	if _, ok := a.ids[key]; ok {
		return
	}
	a.ids[key] = id
}
