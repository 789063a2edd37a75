// Package topologystore defines the interface for storing and querying the
// static structure of a layer graph.
//
// # Why Topology Store Exists
//
// A generated network is an ordered list of layers that reference blobs by
// name. Tooling that needs to reason about the graph as a graph (validation,
// cycle detection, visualization) works on a topology store instead: layers
// become nodes, and every bottom blob becomes a dependency edge from the
// layer that produced it to the layer that consumes it.
//
// The store is populated once from a finished network and then only read.
package topologystore

import (
	"context"
	"errors"
)

var (
	// ErrNodeNotFound is returned when an operation references an unknown node.
	ErrNodeNotFound = errors.New("node not found in topology")
	// ErrCycle is returned by TopoOrder when the graph is not acyclic.
	ErrCycle = errors.New("topology contains a cycle")
)

// Node is a vertex of the layer graph.
type Node struct {
	// ID is the unique layer name.
	ID string
	// Type is the layer type, e.g. "Convolution".
	Type string
	// Phase is "TRAIN", "TEST" or empty for layers present in every phase.
	Phase string
}

// Store is the interface for managing the topology of a layer graph.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent reads and writes.
//
// # Typical Implementation
//
// See internal/inmemorytopology for the in-memory implementation using maps
// and sync.RWMutex.
type Store interface {
	// AddNode registers a node. Adding the same ID twice is idempotent and
	// keeps the first node.
	AddNode(ctx context.Context, n *Node) error

	// AddDependency records that 'to' consumes an output of 'from'. Both
	// nodes must already exist.
	AddDependency(ctx context.Context, from, to string) error

	// GetNode retrieves a single node by ID.
	GetNode(ctx context.Context, id string) (*Node, bool)

	// AllNodes returns every node in insertion order.
	AllNodes(ctx context.Context) []*Node

	// DependenciesOf returns the IDs 'id' depends on, in the order the
	// edges were added.
	DependenciesOf(ctx context.Context, id string) ([]string, error)

	// Dependents returns the IDs that depend on 'id', in the order the
	// edges were added.
	Dependents(ctx context.Context, id string) ([]string, error)

	// TopoOrder returns every node ID so that each node comes after all of
	// its dependencies. Ties keep insertion order. A cycle yields ErrCycle.
	TopoOrder(ctx context.Context) ([]string, error)
}
