// Package teardown manages the lifetimes of process-wide components.
//
// # Overview
//
// Components are registered with a Manager under a caller-chosen id
// together with a cleanup function. Dependencies between components
// are declared as directed edges: an edge A -> B states that B depends
// on A, so A must outlive B and is cleaned up after B. The dependency
// graph is kept acyclic at all times; an edge that would close a cycle
// is rejected at registration time.
//
// Shutdown tears all components down in reverse-dependency order: for
// every edge A -> B, B's cleanup returns before A's cleanup starts.
// Every component is cleaned up exactly once, even when reachable from
// several top-level components. Cleanup failures do not abort the
// sweep; they are collected and reported together once every component
// has been attempted.
//
// # Basic Usage
//
//	m := teardown.New[string, struct{}]()
//
//	m.MustRegister("db", db.Close)
//	m.MustRegister("cache", cache.Close)
//	m.MustRegister("server", server.Close)
//
//	// The server depends on both; it is torn down first.
//	m.MustRegisterDependency("db", "server", struct{}{})
//	m.MustRegisterDependency("cache", "server", struct{}{})
//
//	if err := m.Shutdown(); err != nil {
//		log.Error(err, "shutdown incomplete")
//	}
//
// # Concurrency
//
// A Manager is NOT safe for concurrent use. All calls must come from a
// single goroutine, or the caller must wrap the Manager in a mutex. In
// exchange, registration and the cycle check are atomic by
// construction and no operation ever blocks.
//
// # Structure
//
// The graph itself lives in the depgraph subpackage and is usable on
// its own. The bootstrap subpackage builds components in dependency
// order and registers them with a Manager as it goes.
package teardown
