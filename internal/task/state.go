package task

import "sync"

// State is a Declaration's run-state within one Engine.Update call.
type State int

const (
	// Idle means the declaration has not been touched this run.
	Idle State = iota
	// Running means a goroutine is currently executing (or about to
	// execute) the declaration's run/key functions.
	Running
	// Done means the run completed without error (including the
	// skip-because-cached case).
	Done
	// Failed means run or key (or a recursively-updated prerequisite)
	// returned an error.
	Failed
)

// Future is a one-shot completion signal for a Declaration's current run.
// Multiple requesters of the same in-flight task Wait on the same Future,
// giving at-most-once execution per Declaration per update.
type Future struct {
	done chan struct{}
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Wait blocks until the run this future tracks has settled.
func (f *Future) Wait() {
	<-f.done
}

func (f *Future) resolve() {
	close(f.done)
}

// RunState is the mutable, scheduler-owned half of a task: everything the
// source piled directly onto the task object (src, pending, cachedKey,
// failed) lives here instead, keyed by Declaration.ID in a Registry.
type RunState struct {
	mu        sync.Mutex
	state     State
	src       string
	cachedKey Signature
	hasCached bool
	err       error
	future    *Future
}

func newRunState() *RunState {
	return &RunState{state: Idle}
}

// Get returns the current state.
func (rs *RunState) Get() State {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.state
}

// Err returns the error recorded by the most recent Finish, if any.
func (rs *RunState) Err() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.err
}

// SetSrc stamps the debug breadcrumb naming who first requested this task in
// the current run.
func (rs *RunState) SetSrc(src string) {
	rs.mu.Lock()
	rs.src = src
	rs.mu.Unlock()
}

// Src returns the debug breadcrumb.
func (rs *RunState) Src() string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.src
}

// CachedKey returns the signature recorded from the last successful run
// (either loaded from the persistent cache store, or produced by this run).
func (rs *RunState) CachedKey() (Signature, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.cachedKey, rs.hasCached
}

// LoadCachedKey installs a signature read from the persistent cache store at
// startup, before any scheduling happens.
func (rs *RunState) LoadCachedKey(s Signature) {
	rs.mu.Lock()
	rs.cachedKey = s
	rs.hasCached = true
	rs.mu.Unlock()
}

// SetCachedKey records the signature computed after a successful run.
func (rs *RunState) SetCachedKey(s Signature) {
	rs.mu.Lock()
	rs.cachedKey = s
	rs.hasCached = true
	rs.mu.Unlock()
}

// ClearCachedKey zeroes the cached key, e.g. at the start of Engine.Update
// before the persistent cache store is (re-)loaded.
func (rs *RunState) ClearCachedKey() {
	rs.mu.Lock()
	rs.cachedKey = nil
	rs.hasCached = false
	rs.mu.Unlock()
}

// Reset rearms the state machine to Idle so the declaration can be scheduled
// again on a subsequent Engine.Update call within the same process.
func (rs *RunState) Reset() {
	rs.mu.Lock()
	rs.state = Idle
	rs.err = nil
	rs.future = nil
	rs.mu.Unlock()
}

// EnsureStarted consults the state machine: if Idle, transitions to Running
// and starts fn in its own goroutine; otherwise returns the Future already
// in flight (or already resolved), so the caller awaits rather than
// re-entering the task. fn must call Finish exactly once.
func (rs *RunState) EnsureStarted(fn func()) *Future {
	rs.mu.Lock()
	if rs.state == Idle {
		rs.state = Running
		rs.future = newFuture()
		f := rs.future
		rs.mu.Unlock()
		go fn()
		return f
	}
	f := rs.future
	rs.mu.Unlock()
	return f
}

// Finish transitions Running -> Done or Failed and resolves the future.
// Called exactly once, by the goroutine started from EnsureStarted.
func (rs *RunState) Finish(err error) {
	rs.mu.Lock()
	rs.err = err
	if err != nil {
		rs.state = Failed
	} else {
		rs.state = Done
	}
	f := rs.future
	rs.mu.Unlock()
	f.resolve()
}
