package breakgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntruptor/syntctl/internal/model"
)

func TestGroupUnitesBreaksByOppositeRelation(t *testing.T) {
	breaks := []BreakInput{
		{BreakID: 1, Sp1: "A", Sp2: "B", LeftPid1: "a1", RightPid1: "a2", Opposite: 2},
		{BreakID: 2, Sp1: "B", Sp2: "A", LeftPid1: "b1", RightPid1: "b2", Opposite: 1},
		{BreakID: 3, Sp1: "C", Sp2: "D", LeftPid1: "c1", RightPid1: "c2"},
	}

	graphs := Group(breaks)
	require.Len(t, graphs, 2)
	assert.Len(t, graphs[0].Breaks, 2)
	assert.Len(t, graphs[1].Breaks, 1)
}

func TestGroupUnitesBreaksSharingFlankKey(t *testing.T) {
	breaks := []BreakInput{
		{BreakID: 1, Sp1: "A", Sp2: "B", LeftPid1: "x1", RightPid1: "x2"},
		{BreakID: 2, Sp1: "A", Sp2: "C", LeftPid1: "x1", RightPid1: "x2"},
	}
	graphs := Group(breaks)
	require.Len(t, graphs, 1)
	assert.Len(t, graphs[0].Breaks, 2)
}

func TestAnalyzeDetectsThreeCycleAfterCollapsing(t *testing.T) {
	// A-B, B-C, C-A form a 3-cycle; no two species share an identical
	// neighbor set, so nothing collapses and all three survive pruning.
	g := Graph{GraphID: 1, Breaks: []BreakInput{
		{BreakID: 1, Sp1: "A", Sp2: "B"},
		{BreakID: 2, Sp1: "B", Sp2: "C"},
		{BreakID: 3, Sp1: "C", Sp2: "A"},
	}}

	out := Analyze(g)
	assert.Equal(t, 3, out.Cycle)
	assert.Len(t, out.Edges, 3)
}

func TestAnalyzePrunesLeafChain(t *testing.T) {
	// A-B-C is a simple chain: A and C share the same neighbor set {B}
	// and collapse into one node, leaving a 2-node chain that prunes
	// down to nothing.
	g := Graph{GraphID: 1, Breaks: []BreakInput{
		{BreakID: 1, Sp1: "A", Sp2: "B"},
		{BreakID: 2, Sp1: "B", Sp2: "C"},
	}}

	out := Analyze(g)
	assert.Equal(t, 0, out.Cycle)
}

func TestCollapseLabelsMergesIdenticalNeighborSets(t *testing.T) {
	neighbors := map[model.SpeciesID]map[model.SpeciesID]bool{
		"A": {"C": true},
		"B": {"C": true},
		"C": {"A": true, "B": true},
	}
	label := collapseLabels(neighbors)
	assert.Equal(t, label["A"], label["B"])
	assert.NotEqual(t, label["A"], label["C"])
}
