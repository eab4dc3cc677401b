package task

import (
	"fmt"
	"sync"
)

// Registry is the Task Registry: it maps each declared target to its owning
// Declaration (many targets to one declaration, never the reverse) and owns
// every Declaration's RunState.
//
// Per the concurrency model, the registry is mutated only while installing
// declarations during configuration; during a run it is read-mostly (only
// RunState entries mutate), so the mutex here guards bookkeeping rather than
// hot-path contention.
type Registry struct {
	mu       sync.Mutex
	decls    []*Declaration
	byTarget map[string]*Declaration
	states   map[ID]*RunState
}

// NewRegistry creates an empty Task Registry.
func NewRegistry() *Registry {
	return &Registry{
		byTarget: make(map[string]*Declaration),
		states:   make(map[ID]*RunState),
	}
}

// Install installs decl, assigning it an ID and indexing its targets. It is
// an error for any of decl's targets to already be owned by another
// declaration.
func (r *Registry) Install(decl *Declaration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range decl.Targets {
		if existing, ok := r.byTarget[t]; ok {
			return fmt.Errorf("target %q already owned by task %q", t, existing.Label)
		}
	}

	decl.ID = ID(len(r.decls))
	r.decls = append(r.decls, decl)
	for _, t := range decl.Targets {
		r.byTarget[t] = decl
	}
	r.states[decl.ID] = newRunState()
	return nil
}

// Lookup returns the declaration owning target, if any.
func (r *Registry) Lookup(target string) (*Declaration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byTarget[target]
	return d, ok
}

// RunState returns the run-state for the given declaration ID.
func (r *Registry) RunState(id ID) *RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[id]
}

// All returns every installed declaration, in installation order.
func (r *Registry) All() []*Declaration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Declaration, len(r.decls))
	copy(out, r.decls)
	return out
}
