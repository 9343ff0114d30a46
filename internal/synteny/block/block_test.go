package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsToMap(rows []OrthoRow) map[int]OrthoRow {
	out := make(map[int]OrthoRow, len(rows))
	for _, r := range rows {
		out[r.Oid] = r
	}
	return out
}

func TestFindPairLinksChainsConsecutiveOrthologs(t *testing.T) {
	rows := []OrthoRow{
		{Oid: 1, Sp1: "A", Sp2: "B", PnumCDS1: 10, PnumCDS2: 50, PnumOrder1: 1, PnumOrder2: 1},
		{Oid: 2, Sp1: "A", Sp2: "B", PnumCDS1: 11, PnumCDS2: 51, PnumOrder1: 2, PnumOrder2: 2},
		{Oid: 3, Sp1: "A", Sp2: "B", PnumCDS1: 12, PnumCDS2: 52, PnumOrder1: 3, PnumOrder2: 3},
	}

	links, noblock := FindPairLinks(rows, DefaultParams())
	require.Len(t, links, 2)
	assert.Empty(t, noblock)

	byOid := rowsToMap(rows)
	blocks := Extend(links, byOid)
	require.Len(t, blocks, 1)
	assert.Equal(t, 3, blocks[0].BlockSize)
	assert.Equal(t, 1, blocks[0].Direction)
	assert.Equal(t, 1, blocks[0].OidStart)
	assert.Equal(t, 3, blocks[0].OidEnd)
}

func TestFindPairLinksMarksGapTooWideAsNoBlock(t *testing.T) {
	rows := []OrthoRow{
		{Oid: 1, Sp1: "A", Sp2: "B", PnumCDS1: 10, PnumCDS2: 50, PnumOrder1: 1, PnumOrder2: 1},
		{Oid: 2, Sp1: "A", Sp2: "B", PnumCDS1: 999, PnumCDS2: 51, PnumOrder1: 2, PnumOrder2: 2},
	}

	links, noblock := FindPairLinks(rows, DefaultParams())
	assert.Empty(t, links)
	assert.True(t, noblock[1])
	assert.True(t, noblock[2])
}

func TestFindPairLinksDetectsInversion(t *testing.T) {
	rows := []OrthoRow{
		{Oid: 1, Sp1: "A", Sp2: "B", PnumCDS1: 10, PnumCDS2: 52, PnumOrder1: 1, PnumOrder2: 2},
		{Oid: 2, Sp1: "A", Sp2: "B", PnumCDS1: 11, PnumCDS2: 50, PnumOrder1: 2, PnumOrder2: 1},
	}

	links, _ := FindPairLinks(rows, DefaultParams())
	require.Len(t, links, 1)
	assert.Equal(t, -1, links[0].Direction)
}
