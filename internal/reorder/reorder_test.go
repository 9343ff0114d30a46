package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntruptor/syntctl/internal/model"
)

func TestReorderOrdersPartsByMedianReferencePosition(t *testing.T) {
	genesByPart := map[string][]GeneRow{
		"contig2": {{Pid: "b1", GPart: "contig2", PnumAll: 1}, {Pid: "b2", GPart: "contig2", PnumAll: 2}},
		"contig1": {{Pid: "a1", GPart: "contig1", PnumAll: 1}, {Pid: "a2", GPart: "contig1", PnumAll: 2}},
	}
	orthoPnumInRef := map[model.Pid]int{
		"a1": 10, "a2": 11, // contig1 maps early in the reference
		"b1": 100, "b2": 101, // contig2 maps later
	}

	out := Reorder(genesByPart, orthoPnumInRef, DefaultParams())
	require.Len(t, out, 4)
	assert.Equal(t, "contig1", out[0].GPart)
	assert.Equal(t, "contig1", out[1].GPart)
	assert.Equal(t, "contig2", out[2].GPart)
	assert.Equal(t, "contig2", out[3].GPart)
	for i, a := range out {
		assert.Equal(t, i+1, a.PnumDisplay)
	}
}

func TestReorderReversesPartsWithNegativeCumulativeOrder(t *testing.T) {
	genesByPart := map[string][]GeneRow{
		"contig1": {
			{Pid: "a1", GPart: "contig1", PnumAll: 1},
			{Pid: "a2", GPart: "contig1", PnumAll: 2},
			{Pid: "a3", GPart: "contig1", PnumAll: 3},
		},
	}
	// Reference positions decrease along pnum_all order: the part is
	// oriented opposite the reference and should be emitted reversed.
	orthoPnumInRef := map[model.Pid]int{"a1": 30, "a2": 20, "a3": 10}

	out := Reorder(genesByPart, orthoPnumInRef, DefaultParams())
	require.Len(t, out, 3)
	assert.Equal(t, model.Pid("a3"), out[0].Pid)
	assert.Equal(t, model.Pid("a2"), out[1].Pid)
	assert.Equal(t, model.Pid("a1"), out[2].Pid)
}

func TestReorderPartWithNoOrthologsSortsLast(t *testing.T) {
	genesByPart := map[string][]GeneRow{
		"anchored":   {{Pid: "a1", GPart: "anchored", PnumAll: 1}},
		"unanchored": {{Pid: "u1", GPart: "unanchored", PnumAll: 1}},
	}
	orthoPnumInRef := map[model.Pid]int{"a1": 5}

	out := Reorder(genesByPart, orthoPnumInRef, DefaultParams())
	require.Len(t, out, 2)
	assert.Equal(t, "anchored", out[0].GPart)
	assert.Equal(t, "unanchored", out[1].GPart)
}
