// Package bootstrap constructs components in dependency order and
// registers them with a teardown.Manager as it goes.
//
// A component is declared once, next to its definition, together with
// the ids of the components it depends on. Build then walks the
// declarations depth-first: every dependency is constructed and
// registered before its dependents, each component is constructed
// exactly once, and every dependency edge is registered with the
// Manager. Construction order is thereby the exact reverse of teardown
// order.
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/birdayz/teardown"
)

// BuildFunc constructs a component and returns its cleanup function.
// A nil cleanup is allowed.
type BuildFunc func() (teardown.CleanupFunc, error)

type definition[ID comparable] struct {
	id    ID
	build BuildFunc
	deps  []ID
}

// Registrar collects component definitions and builds them against a
// Manager. Like the Manager itself it is NOT safe for concurrent use.
type Registrar[ID comparable, L any] struct {
	manager *teardown.Manager[ID, L]
	defs    map[ID]*definition[ID]

	// Deterministic build ordering (declaration order).
	order []ID

	built bool
}

// New creates a Registrar that registers everything it builds with m.
func New[ID comparable, L any](m *teardown.Manager[ID, L]) *Registrar[ID, L] {
	return &Registrar[ID, L]{
		manager: m,
		defs:    make(map[ID]*definition[ID]),
		order:   make([]ID, 0),
	}
}

// Provide declares a component: its id, how to construct it, and the
// ids of the components it depends on. Dependencies may be declared in
// any order relative to their dependents; nothing is constructed until
// Build.
func (r *Registrar[ID, L]) Provide(id ID, build BuildFunc, deps ...ID) error {
	if r.built {
		return fmt.Errorf("%w: cannot provide %v", ErrBuilt, id)
	}
	if _, exists := r.defs[id]; exists {
		return fmt.Errorf("%w: %v", ErrAlreadyProvided, id)
	}
	r.defs[id] = &definition[ID]{id: id, build: build, deps: deps}
	r.order = append(r.order, id)
	return nil
}

// MustProvide is like Provide but panics on error.
func (r *Registrar[ID, L]) MustProvide(id ID, build BuildFunc, deps ...ID) {
	if err := r.Provide(id, build, deps...); err != nil {
		panic(err)
	}
}

// Build constructs every declared component, dependencies strictly
// before dependents, and registers components and dependency edges
// with the Manager. Each component is constructed exactly once.
//
// A dependency on an undeclared id fails with ErrUnknownDefinition; a
// cycle among the declarations fails with ErrDefinitionCycle before
// anything on the cycle is constructed. A failing BuildFunc aborts the
// walk; the error names the failing definition. Components constructed
// before the failure stay registered, so the Manager can still tear
// them down.
//
// Build is single-shot: a second call fails with ErrBuilt.
func (r *Registrar[ID, L]) Build() error {
	if r.built {
		return ErrBuilt
	}
	r.built = true

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[ID]int, len(r.defs))

	var visit func(def *definition[ID]) error
	visit = func(def *definition[ID]) error {
		state[def.id] = visiting

		for _, dep := range def.deps {
			switch state[dep] {
			case done:
				continue
			case visiting:
				return fmt.Errorf("%w: %v -> %v", ErrDefinitionCycle, def.id, dep)
			}
			depDef, ok := r.defs[dep]
			if !ok {
				return fmt.Errorf("%w: %v depends on %v", ErrUnknownDefinition, def.id, dep)
			}
			if err := visit(depDef); err != nil {
				return err
			}
		}

		cleanup, err := def.build()
		if err != nil {
			return fmt.Errorf("build %v: %w", def.id, err)
		}
		if err := r.manager.Register(def.id, cleanup); err != nil {
			return err
		}
		var zero L
		for _, dep := range def.deps {
			if err := r.manager.RegisterDependency(dep, def.id, zero); err != nil {
				return err
			}
		}

		state[def.id] = done
		return nil
	}

	for _, id := range r.order {
		if state[id] != done {
			if err := visit(r.defs[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Sentinel errors for common failure cases.
var (
	ErrAlreadyProvided   = errors.New("definition already provided")
	ErrUnknownDefinition = errors.New("definition not found")
	ErrDefinitionCycle   = errors.New("definitions form a cycle")
	ErrBuilt             = errors.New("registrar already built")
)
