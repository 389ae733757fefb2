package engine

import "github.com/rendis/batchml/pkg/schema"

// Graph is the dependency graph over recipe-bearing items. Nodes are item
// positions, so items sharing a raw id stay distinct nodes.
type Graph struct {
	Items []*schema.WorkspaceItem
	Succ  [][]int // node → dependents, in connection order
	Pred  [][]int // node → dependencies, in connection order
	index map[string]int
}

// Order is the result of sorting a Graph.
type Order struct {
	Nodes  []int   // visiting order
	Cyclic []int   // nodes appended by the cycle policy, in input order
	Levels [][]int // topological depth groups; cyclic nodes form the last level
}

// Items maps the visiting order back to items.
func (o *Order) Items(g *Graph) []*schema.WorkspaceItem {
	out := make([]*schema.WorkspaceItem, len(o.Nodes))
	for i, n := range o.Nodes {
		out[i] = g.Items[n]
	}
	return out
}

// BuildGraph registers items and adds one edge per transition connection
// whose endpoints are both items of the graph. A raw id shared by several
// items binds to its first occurrence.
func BuildGraph(items []*schema.WorkspaceItem, conns []schema.Connection) *Graph {
	g := &Graph{
		Items: items,
		Succ:  make([][]int, len(items)),
		Pred:  make([][]int, len(items)),
		index: make(map[string]int, len(items)),
	}
	for i, it := range items {
		if _, exists := g.index[it.ID]; !exists {
			g.index[it.ID] = i
		}
	}

	for _, c := range conns {
		if !c.IsTransition {
			continue
		}
		from, okFrom := g.index[c.SourceID]
		to, okTo := g.index[c.TargetID]
		if !okFrom || !okTo {
			continue
		}
		g.Succ[from] = append(g.Succ[from], to)
		g.Pred[to] = append(g.Pred[to], from)
	}
	return g
}

// Node returns the node bound to a raw id.
func (g *Graph) Node(id string) (int, bool) {
	n, ok := g.index[id]
	return n, ok
}

// Sort orders the graph with Kahn's algorithm. Roots are queued in input
// order and the queue is FIFO, so the result is deterministic. Nodes that
// never reach in-degree zero are appended in input order; Sort never fails.
func (g *Graph) Sort() *Order {
	n := len(g.Items)
	inDegree := make([]int, n)
	for v := range n {
		inDegree[v] = len(g.Pred[v])
	}

	queue := make([]int, 0, n)
	for v := range n {
		if inDegree[v] == 0 {
			queue = append(queue, v)
		}
	}

	visited := make([]bool, n)
	order := &Order{Nodes: make([]int, 0, n)}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		visited[node] = true
		order.Nodes = append(order.Nodes, node)

		for _, dep := range g.Succ[node] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	for v := range n {
		if !visited[v] {
			order.Cyclic = append(order.Cyclic, v)
		}
	}
	order.Nodes = append(order.Nodes, order.Cyclic...)
	order.Levels = computeLevels(g, order)
	return order
}

// computeLevels groups the acyclic part by topological depth.
func computeLevels(g *Graph, order *Order) [][]int {
	cyclic := make(map[int]bool, len(order.Cyclic))
	for _, v := range order.Cyclic {
		cyclic[v] = true
	}

	depth := make(map[int]int, len(order.Nodes))
	maxLevel := -1
	for _, v := range order.Nodes {
		if cyclic[v] {
			continue
		}
		maxDep := -1
		for _, p := range g.Pred[v] {
			if d, ok := depth[p]; ok && d > maxDep {
				maxDep = d
			}
		}
		depth[v] = maxDep + 1
		if depth[v] > maxLevel {
			maxLevel = depth[v]
		}
	}

	levels := make([][]int, maxLevel+1)
	for _, v := range order.Nodes {
		if d, ok := depth[v]; ok {
			levels[d] = append(levels[d], v)
		}
	}
	if len(order.Cyclic) > 0 {
		levels = append(levels, append([]int(nil), order.Cyclic...))
	}
	return levels
}
