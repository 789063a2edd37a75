package inmemorytopology

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/partsegnet/internal/topologystore"
)

// Store implements the topologystore.Store interface using maps and a mutex
// for thread-safe concurrent access.
type Store struct {
	mu    sync.RWMutex
	order []string
	nodes map[string]*topologystore.Node
	deps  map[string][]string // Key: node ID, Value: dependency IDs in edge order
	rdeps map[string][]string // Key: node ID, Value: dependent IDs in edge order
}

// New creates a new, empty in-memory topology store.
func New() *Store {
	return &Store{
		nodes: make(map[string]*topologystore.Node),
		deps:  make(map[string][]string),
		rdeps: make(map[string][]string),
	}
}

var _ topologystore.Store = (*Store)(nil)

// AddNode adds a new node to the store.
func (s *Store) AddNode(ctx context.Context, n *topologystore.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[n.ID]; exists {
		// Adding the same node twice is not an error, it's idempotent.
		return nil
	}
	s.nodes[n.ID] = n
	s.order = append(s.order, n.ID)
	return nil
}

// AddDependency creates a dependency link from one node to another.
// Repeated edges are stored once.
func (s *Store) AddDependency(ctx context.Context, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[from]; !exists {
		return fmt.Errorf("dependency source '%s': %w", from, topologystore.ErrNodeNotFound)
	}
	if _, exists := s.nodes[to]; !exists {
		return fmt.Errorf("dependency target '%s': %w", to, topologystore.ErrNodeNotFound)
	}

	if slices.Contains(s.deps[to], from) {
		return nil
	}
	s.deps[to] = append(s.deps[to], from)
	s.rdeps[from] = append(s.rdeps[from], to)
	return nil
}

// GetNode retrieves a single node by its ID.
func (s *Store) GetNode(ctx context.Context, id string) (*topologystore.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	return n, ok
}

// AllNodes returns a slice of all nodes in insertion order.
func (s *Store) AllNodes(ctx context.Context) []*topologystore.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*topologystore.Node, 0, len(s.order))
	for _, id := range s.order {
		nodes = append(nodes, s.nodes[id])
	}
	return nodes
}

// DependenciesOf returns the IDs of all nodes that the given node depends on.
func (s *Store) DependenciesOf(ctx context.Context, id string) ([]string, error) {
	return s.edges(s.deps, id)
}

// Dependents returns the IDs of all nodes that depend on the given node.
func (s *Store) Dependents(ctx context.Context, id string) ([]string, error) {
	return s.edges(s.rdeps, id)
}

func (s *Store) edges(m map[string][]string, id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.nodes[id]; !exists {
		return nil, fmt.Errorf("node '%s': %w", id, topologystore.ErrNodeNotFound)
	}
	return slices.Clone(m[id]), nil
}

// TopoOrder runs Kahn's algorithm, always releasing the earliest inserted
// ready node so the result is deterministic.
func (s *Store) TopoOrder(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := make(map[string]int, len(s.order))
	for _, id := range s.order {
		pending[id] = len(s.deps[id])
	}
	rank := make(map[string]int, len(s.order))
	for i, id := range s.order {
		rank[id] = i
	}

	var ready []string
	for _, id := range s.order {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	out := make([]string, 0, len(s.order))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		out = append(out, id)
		for _, next := range s.rdeps[id] {
			pending[next]--
			if pending[next] == 0 {
				i, _ := slices.BinarySearchFunc(ready, rank[next], func(a string, r int) int { return rank[a] - r })
				ready = slices.Insert(ready, i, next)
			}
		}
	}

	if len(out) != len(s.order) {
		var stuck []string
		for _, id := range s.order {
			if pending[id] > 0 {
				stuck = append(stuck, id)
			}
		}
		return nil, fmt.Errorf("%w: involving %v", topologystore.ErrCycle, stuck)
	}
	return out, nil
}
