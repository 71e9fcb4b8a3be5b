package nation

import (
	"fmt"

	"github.com/samber/lo"
)

// Roster is the stable id → nation arena owned by the orchestrator and
// shared by reference with every subsystem. Nations are appended once
// at world initialization and never removed; dead nations stay in the
// roster and are filtered by liveness at each use.
type Roster struct {
	list  []*Nation
	index map[int]*Nation
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{index: make(map[int]*Nation)}
}

// Add registers a nation. Duplicate ids are a programming error.
func (r *Roster) Add(n *Nation) error {
	if _, exists := r.index[n.ID]; exists {
		return fmt.Errorf("duplicate nation id %d", n.ID)
	}
	r.list = append(r.list, n)
	r.index[n.ID] = n
	return nil
}

// Get returns the nation with the given id.
func (r *Roster) Get(id int) (*Nation, bool) {
	n, ok := r.index[id]
	return n, ok
}

// All returns every nation, dead or alive, in creation order.
func (r *Roster) All() []*Nation {
	return r.list
}

// Living returns the currently living nations in creation order.
func (r *Roster) Living() []*Nation {
	return lo.Filter(r.list, func(n *Nation, _ int) bool { return n.Alive() })
}

// Len returns the roster size including dead nations.
func (r *Roster) Len() int {
	return len(r.list)
}
