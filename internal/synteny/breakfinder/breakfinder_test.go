package breakfinder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMatchesOppositeAcrossReverseComparison(t *testing.T) {
	blocks := []BlockRow{
		// A-B forward pair, two consecutive blocks leaving a gap of 2 genes each side.
		{BlockID: 1, Sp1: "A", Sp2: "B", GPart1: "c1", GPart2: "c1", Direction: 1, BlockOrder1: 1,
			EndPid1: "a1", EndPid2: "b1", PnumCDSEnd1: 10, PnumCDSEnd2: 20},
		{BlockID: 2, Sp1: "A", Sp2: "B", GPart1: "c1", GPart2: "c1", Direction: 1, BlockOrder1: 2,
			StartPid1: "a2", StartPid2: "b2", PnumCDSStart1: 13, PnumCDSStart2: 23},

		// B-A reverse pair, matching endpoints by swapped pid roles.
		{BlockID: 3, Sp1: "B", Sp2: "A", GPart1: "c1", GPart2: "c1", Direction: 1, BlockOrder1: 1,
			EndPid1: "b1", EndPid2: "a1", PnumCDSEnd1: 5, PnumCDSEnd2: 30},
		{BlockID: 4, Sp1: "B", Sp2: "A", GPart1: "c1", GPart2: "c1", Direction: 1, BlockOrder1: 2,
			StartPid1: "b2", StartPid2: "a2", PnumCDSStart1: 8, PnumCDSStart2: 33},
	}

	resolved, orphans := Resolve(blocks, DefaultParams())
	require.Len(t, resolved, 2)
	assert.Equal(t, 0, orphans)

	bySp := make(map[string]Resolved)
	for _, r := range resolved {
		bySp[string(r.Sp1)+">"+string(r.Sp2)] = r
	}

	fwd, ok := bySp["A>B"]
	require.True(t, ok)
	rev, ok := bySp["B>A"]
	require.True(t, ok)

	assert.Equal(t, 2, fwd.BreakSize1)
	assert.Equal(t, 2, fwd.BreakSize2)
	assert.Equal(t, rev.BreakID, fwd.Opposite)
	assert.Equal(t, fwd.BreakID, rev.Opposite)
}

func TestResolveDropsOrphanBreaks(t *testing.T) {
	blocks := []BlockRow{
		{BlockID: 1, Sp1: "A", Sp2: "B", GPart1: "c1", GPart2: "c1", Direction: 1, BlockOrder1: 1,
			EndPid1: "a1", EndPid2: "b1", PnumCDSEnd1: 10, PnumCDSEnd2: 20},
		{BlockID: 2, Sp1: "A", Sp2: "B", GPart1: "c1", GPart2: "c1", Direction: 1, BlockOrder1: 2,
			StartPid1: "a2", StartPid2: "b2", PnumCDSStart1: 13, PnumCDSStart2: 23},
	}

	resolved, orphans := Resolve(blocks, DefaultParams())
	assert.Empty(t, resolved)
	assert.Equal(t, 1, orphans)
}
