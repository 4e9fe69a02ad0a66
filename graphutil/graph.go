// Package graphutil implements the dense-integer-id adjacency-list graph
// utility: insertion, Warshall transitive closure, Kahn topological order,
// and connected-component enumeration over nodes 1..n.
package graphutil

import (
	"fmt"
	"strings"

	"github.com/darienchong/spa/spaerr"
)

// Graph is a directed adjacency-list graph over dense node ids 1..n.
type Graph struct {
	n   int
	adj []map[int]bool
}

// New creates an empty graph over nodes 1..n.
func New(n int) *Graph {
	adj := make([]map[int]bool, n+1)
	for i := range adj {
		adj[i] = make(map[int]bool)
	}
	return &Graph{n: n, adj: adj}
}

// Nodes returns the number of nodes the graph was created with.
func (g *Graph) Nodes() int { return g.n }

func (g *Graph) checkBounds(i, j int) error {
	if i < 1 || i > g.n || j < 1 || j > g.n {
		return spaerr.NewInvariantViolation("graph index out of bounds")
	}
	return nil
}

// Insert adds the directed edge i->j.
func (g *Graph) Insert(i, j int) error {
	if err := g.checkBounds(i, j); err != nil {
		return err
	}
	g.adj[i][j] = true
	return nil
}

// Get reports whether the edge i->j exists.
func (g *Graph) Get(i, j int) bool {
	if i < 0 || i >= len(g.adj) {
		return false
	}
	return g.adj[i][j]
}

// Successors returns the direct successors of i.
func (g *Graph) Successors(i int) []int {
	out := make([]int, 0, len(g.adj[i]))
	for j := range g.adj[i] {
		out = append(out, j)
	}
	return out
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := New(g.n)
	for i := 1; i <= g.n; i++ {
		for j := range g.adj[i] {
			out.adj[i][j] = true
		}
	}
	return out
}

// TransitiveClosure computes the reflexive-free transitive closure via the
// Floyd-Warshall reachability algorithm (O(n^3)) and returns it as a new
// graph; the receiver is left unmodified.
func (g *Graph) TransitiveClosure() *Graph {
	out := g.Clone()
	for k := 1; k <= g.n; k++ {
		for i := 1; i <= g.n; i++ {
			if !out.adj[i][k] {
				continue
			}
			for j := 1; j <= g.n; j++ {
				if out.adj[k][j] {
					out.adj[i][j] = true
				}
			}
		}
	}
	return out
}

// TopologicalOrder returns a topological ordering of every node reachable
// via Kahn's algorithm. The returned slice has length < n iff the graph
// contains a cycle.
func (g *Graph) TopologicalOrder() []int {
	inDegree := make([]int, g.n+1)
	for i := 1; i <= g.n; i++ {
		for j := range g.adj[i] {
			inDegree[j]++
		}
	}

	queue := make([]int, 0, g.n)
	for i := 1; i <= g.n; i++ {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, g.n)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		neighbors := g.Successors(node)
		sortInts(neighbors)
		for _, next := range neighbors {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return order
}

// ConnectedComponents returns the connected components of the undirected
// skeleton of the graph (an edge i->j makes i and j adjacent regardless of
// direction), via breadth-first search.
func (g *Graph) ConnectedComponents() [][]int {
	undirected := make([]map[int]bool, g.n+1)
	for i := range undirected {
		undirected[i] = make(map[int]bool)
	}
	for i := 1; i <= g.n; i++ {
		for j := range g.adj[i] {
			undirected[i][j] = true
			undirected[j][i] = true
		}
	}

	visited := make([]bool, g.n+1)
	var components [][]int
	for start := 1; start <= g.n; start++ {
		if visited[start] {
			continue
		}
		var component []int
		queue := []int{start}
		visited[start] = true
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			component = append(component, node)
			neighbors := make([]int, 0, len(undirected[node]))
			for next := range undirected[node] {
				neighbors = append(neighbors, next)
			}
			sortInts(neighbors)
			for _, next := range neighbors {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		sortInts(component)
		components = append(components, component)
	}
	return components
}

// String renders the adjacency list deterministically for debugging.
func (g *Graph) String() string {
	var b strings.Builder
	for i := 1; i <= g.n; i++ {
		neighbors := g.Successors(i)
		sortInts(neighbors)
		fmt.Fprintf(&b, "%d -> %v\n", i, neighbors)
	}
	return b.String()
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
