// Package breakgraph implements the break-graph analyzer (§4.8): groups
// breaks that share flanking genes or are each other's opposite into
// graphs, collapses species with identical relationships, and detects
// cycles by iterative leaf-pruning.
package breakgraph

import (
	"sort"
	"strings"

	"github.com/syntruptor/syntctl/internal/model"
)

// BreakInput is the subset of a break the analyzer needs to group it.
type BreakInput struct {
	BreakID              int
	Sp1, Sp2             model.SpeciesID
	LeftPid1, RightPid1  model.Pid
	Opposite             int
}

// Graph is one transitive-closure component of related breaks.
type Graph struct {
	GraphID int
	Breaks  []BreakInput
	Cycle   int
	Edges   []model.BreakGraphEdge
}

type unionFind struct {
	parent map[int]int
}

func newUnionFind() *unionFind { return &unionFind{parent: make(map[int]int)} }

func (u *unionFind) find(x int) int {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
	}
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

type flankKey struct {
	left, right model.Pid
}

// Group partitions breaks into transitive-closure components over "shares
// the same (left1,right1) key" and "is the opposite of a member" (§4.8).
func Group(breaks []BreakInput) []Graph {
	uf := newUnionFind()
	byFlank := make(map[flankKey][]int)
	byID := make(map[int]BreakInput, len(breaks))

	for _, b := range breaks {
		byID[b.BreakID] = b
		uf.find(b.BreakID)
		k := flankKey{b.LeftPid1, b.RightPid1}
		byFlank[k] = append(byFlank[k], b.BreakID)
	}
	for _, ids := range byFlank {
		for i := 1; i < len(ids); i++ {
			uf.union(ids[0], ids[i])
		}
	}
	for _, b := range breaks {
		if b.Opposite != 0 {
			if _, ok := byID[b.Opposite]; ok {
				uf.union(b.BreakID, b.Opposite)
			}
		}
	}

	components := make(map[int][]BreakInput)
	for _, b := range breaks {
		root := uf.find(b.BreakID)
		components[root] = append(components[root], b)
	}

	roots := make([]int, 0, len(components))
	for r := range components {
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool {
		return minBreakID(components[roots[i]]) < minBreakID(components[roots[j]])
	})

	graphs := make([]Graph, 0, len(roots))
	for i, r := range roots {
		bs := components[r]
		sort.Slice(bs, func(i, j int) bool { return bs[i].BreakID < bs[j].BreakID })
		graphs = append(graphs, Graph{GraphID: i + 1, Breaks: bs})
	}
	return graphs
}

func minBreakID(bs []BreakInput) int {
	m := bs[0].BreakID
	for _, b := range bs[1:] {
		if b.BreakID < m {
			m = b.BreakID
		}
	}
	return m
}

// Analyze computes the collapsed-graph cycle size and the uncollapsed
// species edges for one graph (§4.8).
func Analyze(g Graph) Graph {
	neighbors := make(map[model.SpeciesID]map[model.SpeciesID]bool)
	addNeighbor := func(a, b model.SpeciesID) {
		if neighbors[a] == nil {
			neighbors[a] = make(map[model.SpeciesID]bool)
		}
		neighbors[a][b] = true
	}
	edgeSeen := make(map[[2]model.SpeciesID]bool)
	var uncollapsed []model.BreakGraphEdge
	for _, b := range g.Breaks {
		addNeighbor(b.Sp1, b.Sp2)
		addNeighbor(b.Sp2, b.Sp1)
		from, to := b.Sp1, b.Sp2
		if to < from {
			from, to = to, from
		}
		key := [2]model.SpeciesID{from, to}
		if !edgeSeen[key] {
			edgeSeen[key] = true
			uncollapsed = append(uncollapsed, model.BreakGraphEdge{GraphID: g.GraphID, FromName: string(from), ToName: string(to)})
		}
	}
	sort.Slice(uncollapsed, func(i, j int) bool {
		if uncollapsed[i].FromName != uncollapsed[j].FromName {
			return uncollapsed[i].FromName < uncollapsed[j].FromName
		}
		return uncollapsed[i].ToName < uncollapsed[j].ToName
	})

	label := collapseLabels(neighbors)

	collapsedNeighbors := make(map[string]map[string]bool)
	for sp, nbrs := range neighbors {
		l := label[sp]
		if collapsedNeighbors[l] == nil {
			collapsedNeighbors[l] = make(map[string]bool)
		}
		for n := range nbrs {
			nl := label[n]
			if nl != l {
				collapsedNeighbors[l][nl] = true
			}
		}
	}

	cycle := pruneLeaves(collapsedNeighbors)

	g.Cycle = cycle
	g.Edges = uncollapsed
	return g
}

// collapseLabels unites species whose neighbor sets are identical into a
// single composite label, the space-joined sorted species names.
func collapseLabels(neighbors map[model.SpeciesID]map[model.SpeciesID]bool) map[model.SpeciesID]string {
	sigOf := func(sp model.SpeciesID) string {
		nbrs := make([]string, 0, len(neighbors[sp]))
		for n := range neighbors[sp] {
			nbrs = append(nbrs, string(n))
		}
		sort.Strings(nbrs)
		return strings.Join(nbrs, ",")
	}
	bySig := make(map[string][]model.SpeciesID)
	for sp := range neighbors {
		sig := sigOf(sp)
		bySig[sig] = append(bySig[sig], sp)
	}
	label := make(map[model.SpeciesID]string, len(neighbors))
	for _, group := range bySig {
		sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })
		names := make([]string, len(group))
		for i, sp := range group {
			names[i] = string(sp)
		}
		composite := strings.Join(names, " ")
		for _, sp := range group {
			label[sp] = composite
		}
	}
	return label
}

// pruneLeaves iteratively removes nodes with fewer than 2 remaining
// neighbors until the graph stabilizes, returning the surviving count.
func pruneLeaves(adj map[string]map[string]bool) int {
	alive := make(map[string]bool, len(adj))
	for n := range adj {
		alive[n] = true
	}
	for {
		removed := false
		for n := range alive {
			degree := 0
			for nbr := range adj[n] {
				if alive[nbr] {
					degree++
				}
			}
			if degree < 2 {
				delete(alive, n)
				removed = true
			}
		}
		if !removed {
			break
		}
	}
	return len(alive)
}
