package breakgenes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntruptor/syntctl/internal/model"
)

func TestExtractFiltersByGPartAndRangeExclusive(t *testing.T) {
	genes := []GeneRow{
		{Pid: "g1", GPart: "c1", PnumAll: 10},
		{Pid: "g2", GPart: "c1", PnumAll: 11},
		{Pid: "g3", GPart: "c1", PnumAll: 12},
		{Pid: "g4", GPart: "c1", PnumAll: 20}, // out of range
		{Pid: "g5", GPart: "c2", PnumAll: 11}, // wrong gpart
	}
	span := BreakSpan{BreakID: 1, Sp: "A", GPart: "c1", LeftPnum: 10, RightPnum: 12}

	out := Extract(span, 1, genes, func(model.Pid) (model.Pid, bool) { return "", false }, nil)
	require.Len(t, out, 1)
	assert.Equal(t, model.Pid("g2"), out[0].Pid)
	assert.Equal(t, 1, out[0].Side)
}

func TestExtractHandlesReversedSpanBounds(t *testing.T) {
	genes := []GeneRow{
		{Pid: "g1", GPart: "c1", PnumAll: 11},
	}
	span := BreakSpan{BreakID: 1, Sp: "A", GPart: "c1", LeftPnum: 12, RightPnum: 10}

	out := Extract(span, 2, genes, func(model.Pid) (model.Pid, bool) { return "", false }, nil)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Side)
}

func TestExtractTagsOrthoAndOrthoIn(t *testing.T) {
	genes := []GeneRow{
		{Pid: "g1", GPart: "c1", PnumAll: 11},
	}
	span := BreakSpan{BreakID: 1, Sp: "A", GPart: "c1", LeftPnum: 10, RightPnum: 12}

	lookup := func(pid model.Pid) (model.Pid, bool) {
		if pid == "g1" {
			return "h1", true
		}
		return "", false
	}
	out := Extract(span, 1, genes, lookup, func(partner model.Pid) bool { return partner == "h1" })
	require.Len(t, out, 1)
	assert.Equal(t, model.Pid("h1"), out[0].Ortho)
	assert.True(t, out[0].OrthoIn)
}
