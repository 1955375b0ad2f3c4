// Package depgraph provides the labelled, always-acyclic dependency
// graph backing the teardown package.
package depgraph

import (
	"errors"
	"fmt"
)

// Graph is an in-memory labelled DAG. Vertices are keyed by a
// caller-chosen ID and carry a value of type V; edges carry a label of
// type L. An edge (src, dst) states that dst depends on src.
//
// IMPORTANT: Graph is NOT safe for concurrent use. All mutating and
// querying methods must be called from a single goroutine, or the
// caller must serialize access externally.
//
// The graph only ever grows: vertices and edges cannot be removed
// individually. Acyclicity is enforced on every AddEdge, so the graph
// is a DAG at all times.
type Graph[ID comparable, V, L any] struct {
	vertices map[ID]*Vertex[ID, V, L]

	// Deterministic vertex ordering (insertion order). Iteration over
	// the vertices map would randomize traversal and teardown order
	// between runs.
	order []ID

	numEdges int
}

// Vertex is a single node of the graph. It carries the caller's value
// and insertion-ordered adjacency in both directions.
type Vertex[ID comparable, V, L any] struct {
	id    ID
	value V

	// Incoming edges, in insertion order.
	parents []ID

	// Outgoing edges, in insertion order.
	children []ID

	// Edge labels, keyed by edge target.
	labels map[ID]L
}

// ID returns the vertex identifier.
func (v *Vertex[ID, V, L]) ID() ID {
	return v.id
}

// Value returns a pointer to the vertex value. The pointee is owned by
// the graph; callers may mutate it in place.
func (v *Vertex[ID, V, L]) Value() *V {
	return &v.value
}

// Children returns the targets of the vertex's outgoing edges in
// insertion order. The slice is owned by the graph; callers must not
// mutate it.
func (v *Vertex[ID, V, L]) Children() []ID {
	return v.children
}

// Parents returns the sources of the vertex's incoming edges in
// insertion order. The slice is owned by the graph; callers must not
// mutate it.
func (v *Vertex[ID, V, L]) Parents() []ID {
	return v.parents
}

// OutDegree returns the number of outgoing edges.
func (v *Vertex[ID, V, L]) OutDegree() int {
	return len(v.children)
}

// InDegree returns the number of incoming edges.
func (v *Vertex[ID, V, L]) InDegree() int {
	return len(v.parents)
}

// New creates a new empty graph.
func New[ID comparable, V, L any]() *Graph[ID, V, L] {
	return &Graph[ID, V, L]{
		vertices: make(map[ID]*Vertex[ID, V, L]),
		order:    make([]ID, 0),
	}
}

// AddVertex adds a vertex carrying value under id.
// Returns ErrVertexExists if id is already present; the graph is
// unchanged in that case.
func (g *Graph[ID, V, L]) AddVertex(id ID, value V) error {
	if _, exists := g.vertices[id]; exists {
		return fmt.Errorf("%w: %v", ErrVertexExists, id)
	}
	g.vertices[id] = &Vertex[ID, V, L]{
		id:       id,
		value:    value,
		parents:  []ID{},
		children: []ID{},
		labels:   make(map[ID]L),
	}
	g.order = append(g.order, id)
	return nil
}

// AddEdge adds a directed edge src -> dst with the given label,
// meaning dst depends on src.
//
// Fails with ErrUnknownVertex if either endpoint is missing (the error
// message names the missing side), ErrDuplicateEdge if the edge is
// already present, and ErrWouldCycle if dst already reaches src. On
// any failure the graph is left untouched.
func (g *Graph[ID, V, L]) AddEdge(src, dst ID, label L) error {
	srcV, srcOK := g.vertices[src]
	dstV, dstOK := g.vertices[dst]
	switch {
	case !srcOK && !dstOK:
		return fmt.Errorf("%w: source %v and destination %v", ErrUnknownVertex, src, dst)
	case !srcOK:
		return fmt.Errorf("%w: source %v", ErrUnknownVertex, src)
	case !dstOK:
		return fmt.Errorf("%w: destination %v", ErrUnknownVertex, dst)
	}

	if _, exists := srcV.labels[dst]; exists {
		return fmt.Errorf("%w: %v -> %v", ErrDuplicateEdge, src, dst)
	}

	// src -> dst closes a cycle iff dst already reaches src. A
	// self-edge trips this too: every vertex reaches itself.
	if g.reaches(dst, src) {
		return fmt.Errorf("%w: %v -> %v", ErrWouldCycle, src, dst)
	}

	srcV.children = append(srcV.children, dst)
	srcV.labels[dst] = label
	dstV.parents = append(dstV.parents, src)
	g.numEdges++
	return nil
}

// Vertex returns the vertex registered under id, if any.
func (g *Graph[ID, V, L]) Vertex(id ID) (*Vertex[ID, V, L], bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// Contains reports whether a vertex is registered under id.
func (g *Graph[ID, V, L]) Contains(id ID) bool {
	_, ok := g.vertices[id]
	return ok
}

// HasEdge reports whether the edge src -> dst exists.
func (g *Graph[ID, V, L]) HasEdge(src, dst ID) bool {
	srcV, ok := g.vertices[src]
	if !ok {
		return false
	}
	_, ok = srcV.labels[dst]
	return ok
}

// Label returns the label attached to the edge src -> dst.
func (g *Graph[ID, V, L]) Label(src, dst ID) (L, bool) {
	srcV, ok := g.vertices[src]
	if !ok {
		var zero L
		return zero, false
	}
	label, ok := srcV.labels[dst]
	return label, ok
}

// Len returns the number of vertices.
func (g *Graph[ID, V, L]) Len() int {
	return len(g.vertices)
}

// NumEdges returns the number of edges.
func (g *Graph[ID, V, L]) NumEdges() int {
	return g.numEdges
}

// Sentinel errors for common failure cases.
var (
	ErrVertexExists  = errors.New("vertex already exists")
	ErrUnknownVertex = errors.New("vertex not found")
	ErrDuplicateEdge = errors.New("edge already exists")
	ErrWouldCycle    = errors.New("edge would introduce a cycle")
)
