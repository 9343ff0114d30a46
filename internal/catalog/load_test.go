package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syntruptor/syntctl/internal/model"
)

func TestReverseOrthoSwapsColumns(t *testing.T) {
	o := model.OrthoPair{Pid1: "a1", Pid2: "b1", Sp1: "A", Sp2: "B", OIdent: 95.5, OAlen: 300}
	r := reverseOrtho(o)

	assert.Equal(t, model.Pid("b1"), r.Pid1)
	assert.Equal(t, model.Pid("a1"), r.Pid2)
	assert.Equal(t, model.SpeciesID("B"), r.Sp1)
	assert.Equal(t, model.SpeciesID("A"), r.Sp2)
	assert.Equal(t, o.OIdent, r.OIdent)
	assert.Equal(t, o.OAlen, r.OAlen)
}

// TestComputeOrthoOrderingsRanksEachDirectionIndependently exercises the
// scenario the break finder depends on: storing both the (A,B) and (B,A)
// reading of the same pairs must give each direction its own pnum_order1/2
// ranking, rather than the reverse rows accidentally sharing (or
// clobbering) the forward bucket's ranks.
func TestComputeOrthoOrderingsRanksEachDirectionIndependently(t *testing.T) {
	forward := []model.OrthoPair{
		{Pid1: "a1", Pid2: "b1", Sp1: "A", Sp2: "B"},
		{Pid1: "a2", Pid2: "b2", Sp1: "A", Sp2: "B"},
	}
	pnumCDS := map[model.Pid]int{
		"a1": 1, "a2": 2,
		"b1": 1, "b2": 2,
	}

	orthos := make([]model.OrthoPair, 0, len(forward)*2)
	for _, o := range forward {
		orthos = append(orthos, o, reverseOrtho(o))
	}

	computeOrthoOrderings(orthos, pnumCDS)

	var fwd, rev []model.OrthoPair
	for _, o := range orthos {
		if o.Sp1 == "A" {
			fwd = append(fwd, o)
		} else {
			rev = append(rev, o)
		}
	}

	byPid1A := make(map[model.Pid]model.OrthoPair, len(fwd))
	for _, o := range fwd {
		byPid1A[o.Pid1] = o
	}
	assert.Equal(t, 1, byPid1A["a1"].PnumOrder1)
	assert.Equal(t, 2, byPid1A["a2"].PnumOrder1)

	byPid1B := make(map[model.Pid]model.OrthoPair, len(rev))
	for _, o := range rev {
		byPid1B[o.Pid1] = o
	}
	assert.Equal(t, 1, byPid1B["b1"].PnumOrder1)
	assert.Equal(t, 2, byPid1B["b2"].PnumOrder1)
}
