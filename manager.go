package teardown

import (
	"errors"
	"fmt"

	"github.com/birdayz/teardown/depgraph"
	"go.uber.org/multierr"
)

// CleanupFunc releases the resources held by a component. It is
// invoked exactly once, during Shutdown.
type CleanupFunc func() error

// componentState tracks whether a component's cleanup has run.
type componentState int

const (
	stateLive componentState = iota
	stateCleanedUp
)

// component is the per-vertex record stored in the graph.
type component struct {
	cleanup CleanupFunc
	state   componentState
}

// managerState is the coordinator lifecycle: registration is accepted
// while open, Shutdown moves through draining to closed, and closed is
// terminal.
type managerState int

const (
	stateOpen managerState = iota
	stateDraining
	stateClosed
)

// Manager tracks components and their dependencies and tears them down
// in reverse-dependency order. ID is the component identifier type; L
// is an opaque label attached to each dependency edge for the caller's
// bookkeeping (use struct{} if unneeded).
//
// Manager is NOT safe for concurrent use; see the package
// documentation.
type Manager[ID comparable, L any] struct {
	graph *depgraph.Graph[ID, component, L]
	state managerState
	cfg   config
}

// New creates an empty Manager.
func New[ID comparable, L any](opts ...Option) *Manager[ID, L] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager[ID, L]{
		graph: depgraph.New[ID, component, L](),
		cfg:   cfg,
	}
}

// Register adds a component under id with its cleanup function. A nil
// cleanup is allowed and recorded as a no-op.
//
// Fails with depgraph.ErrVertexExists if id is taken, and ErrShutdown
// once Shutdown has been entered.
func (m *Manager[ID, L]) Register(id ID, cleanup CleanupFunc) error {
	if m.state != stateOpen {
		return fmt.Errorf("%w: cannot register component %v", ErrShutdown, id)
	}
	if cleanup == nil {
		cleanup = func() error { return nil }
	}
	if err := m.graph.AddVertex(id, component{cleanup: cleanup, state: stateLive}); err != nil {
		return fmt.Errorf("register component: %w", err)
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (m *Manager[ID, L]) MustRegister(id ID, cleanup CleanupFunc) {
	must(m.Register(id, cleanup))
}

// RegisterDependency declares that dst depends on src: src must
// outlive dst, so during Shutdown dst is cleaned up before src. Both
// components must already be registered. The label is stored with the
// edge and never inspected.
//
// Fails with depgraph.ErrUnknownVertex, depgraph.ErrDuplicateEdge or
// depgraph.ErrWouldCycle (the graph is unchanged in every case), and
// ErrShutdown once Shutdown has been entered. Callers that re-declare
// edges may treat ErrDuplicateEdge as success.
func (m *Manager[ID, L]) RegisterDependency(src, dst ID, label L) error {
	if m.state != stateOpen {
		return fmt.Errorf("%w: cannot register dependency %v -> %v", ErrShutdown, src, dst)
	}
	if err := m.graph.AddEdge(src, dst, label); err != nil {
		return fmt.Errorf("register dependency: %w", err)
	}
	return nil
}

// MustRegisterDependency is like RegisterDependency but panics on
// error.
func (m *Manager[ID, L]) MustRegisterDependency(src, dst ID, label L) {
	must(m.RegisterDependency(src, dst, label))
}

// Shutdown cleans up every registered component exactly once, in
// reverse-dependency order: for every edge (u, v), v's cleanup returns
// before u's cleanup starts. The sweep runs to completion even when
// individual cleanups fail; failures are aggregated into a
// *PartialShutdownError. The Manager is closed afterwards either way,
// and all further calls except the queries fail with ErrShutdown.
func (m *Manager[ID, L]) Shutdown() error {
	if m.state != stateOpen {
		return ErrShutdown
	}
	m.state = stateDraining
	defer func() { m.state = stateClosed }()

	roots := m.graph.Roots()
	if len(roots) == 0 && m.graph.Len() > 0 {
		// Unreachable as long as AddEdge holds the line; a cycle is
		// the only way a non-empty DAG has no roots.
		err := fmt.Errorf("%w: non-empty graph has no roots", ErrCorruptGraph)
		return multierr.Append(err, m.graph.CheckAcyclic())
	}

	var (
		errs   error
		failed []any
	)

	// Depth-first post-order per root: every live descendant of a
	// vertex is cleaned before the vertex itself, which is the edge
	// ordering guarantee. Insertion-ordered adjacency keeps the sweep
	// deterministic for a given registration history.
	var sweep func(v *depgraph.Vertex[ID, component, L])
	sweep = func(v *depgraph.Vertex[ID, component, L]) {
		rec := v.Value()
		if rec.state != stateLive {
			return
		}
		for _, childID := range v.Children() {
			child, ok := m.graph.Vertex(childID)
			if !ok {
				continue
			}
			sweep(child)
		}
		m.cfg.log.V(1).Info("cleaning up component", "id", fmt.Sprintf("%v", v.ID()))
		err := rec.cleanup()
		rec.state = stateCleanedUp
		if err != nil {
			m.cfg.log.Error(err, "cleanup failed", "id", fmt.Sprintf("%v", v.ID()))
			failed = append(failed, v.ID())
			errs = multierr.Append(errs, fmt.Errorf("cleanup of %v: %w", v.ID(), err))
		}
	}
	for _, root := range roots {
		sweep(root)
	}

	if errs != nil {
		return &PartialShutdownError{ids: failed, err: errs}
	}
	return nil
}

// Has reports whether a component is registered under id. Valid in
// every state.
func (m *Manager[ID, L]) Has(id ID) bool {
	return m.graph.Contains(id)
}

// HasDependency reports whether the dependency edge src -> dst has
// been registered. Valid in every state.
func (m *Manager[ID, L]) HasDependency(src, dst ID) bool {
	return m.graph.HasEdge(src, dst)
}

// Len returns the number of registered components.
func (m *Manager[ID, L]) Len() int {
	return m.graph.Len()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// PartialShutdownError reports that one or more cleanups failed during
// Shutdown. The remaining components were still cleaned up and the
// Manager is closed.
type PartialShutdownError struct {
	ids []any
	err error
}

func (e *PartialShutdownError) Error() string {
	return fmt.Sprintf("shutdown finished with %d failed cleanup(s) %v: %v", len(e.ids), e.ids, e.err)
}

// Failed returns the ids of the components whose cleanup failed, in
// the order their cleanups were attempted.
func (e *PartialShutdownError) Failed() []any {
	return e.ids
}

// Unwrap exposes the aggregated cleanup errors.
func (e *PartialShutdownError) Unwrap() error {
	return e.err
}

// Sentinel errors for common failure cases.
var (
	// ErrShutdown is returned once Shutdown has been entered; a Manager
	// cannot be reused.
	ErrShutdown = errors.New("manager is shut down")

	// ErrCorruptGraph signals a broken internal invariant. It should be
	// unreachable; seeing it means a bug in this package.
	ErrCorruptGraph = errors.New("dependency graph is corrupt")
)
