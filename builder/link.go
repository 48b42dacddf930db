package builder

import (
	"slices"

	"go.viam.com/xviz/message"
)

type edge struct {
	parent, child string
}

// linkGraph is the explicit edge list of a frame's links.
type linkGraph struct {
	edges  []edge
	parent map[string]string
}

func newLinkGraph() *linkGraph {
	return &linkGraph{parent: map[string]string{}}
}

func (g *linkGraph) add(parent, child string) error {
	if _, ok := g.parent[child]; ok {
		return &DuplicateAssignmentError{Stream: child, Field: "link"}
	}
	g.parent[child] = parent
	g.edges = append(g.edges, edge{parent: parent, child: child})
	return nil
}

// check topologically sorts the graph and reports the first edge that closes a cycle.
func (g *linkGraph) check() error {
	indegree := map[string]int{}
	children := map[string][]string{}
	for _, e := range g.edges {
		indegree[e.child]++
		if _, ok := indegree[e.parent]; !ok {
			indegree[e.parent] = 0
		}
		children[e.parent] = append(children[e.parent], e.child)
	}

	var queue []string
	for node, d := range indegree {
		if d == 0 {
			queue = append(queue, node)
		}
	}
	visited := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		visited++
		for _, child := range children[node] {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	if visited == len(indegree) {
		return nil
	}

	// the latest edge whose parent chain leads back to its child closes the cycle
	for i := len(g.edges) - 1; i >= 0; i-- {
		e := g.edges[i]
		if path, ok := g.ancestry(e.parent, e.child); ok {
			slices.Reverse(path)
			return &LinkCycleError{Parent: e.parent, Child: e.child, Cycle: append(path, e.child)}
		}
	}
	return nil
}

// ancestry walks parents from node and returns the visited nodes when target is reached.
func (g *linkGraph) ancestry(node, target string) ([]string, bool) {
	path := []string{node}
	seen := map[string]struct{}{node: {}}
	for node != target {
		parent, ok := g.parent[node]
		if !ok {
			return nil, false
		}
		if _, loop := seen[parent]; loop {
			return nil, false
		}
		seen[parent] = struct{}{}
		path = append(path, parent)
		node = parent
	}
	return path, true
}

func (g *linkGraph) links() map[string]message.Link {
	if len(g.edges) == 0 {
		return nil
	}
	out := make(map[string]message.Link, len(g.edges))
	for _, e := range g.edges {
		out[e.child] = message.Link{TargetPose: e.parent}
	}
	return out
}
