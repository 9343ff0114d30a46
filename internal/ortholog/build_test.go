package ortholog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntruptor/syntctl/internal/model"
)

func TestBuildResolvesReciprocalBestHit(t *testing.T) {
	genes := map[string]GeneInfo{
		"a1": {Sp: "speciesA", PnumCDS: 1, Length: 900},
		"b1": {Sp: "speciesB", PnumCDS: 1, Length: 900},
	}
	hits := []Hit{
		{Query: "a1", Subject: "b1", PctIdent: 95, AlignLen: 300, EValue: 1e-150, BitScore: 500},
		{Query: "b1", Subject: "a1", PctIdent: 95, AlignLen: 300, EValue: 1e-150, BitScore: 500},
	}

	pairs, err := Build(hits, genes, DefaultParams())
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	p := pairs[0]
	assert.NotEqual(t, p.Sp1, p.Sp2)
	assert.Equal(t, 1, p.Oid)
}

// TestResolvePairNeighborRescueAcceptsDoublyConfirmedCandidate exercises
// the synteny-neighbor rescue branch: a2 is ambiguous between b2 and an
// unrelated decoy b9, but a2's CDS neighbors on both flanks (a1, a3) are
// already committed to b1 and b3, and only b2 is adjacent to both — the
// strongest possible rescue signal. A query reachable through both the
// -1 and +1 flank must still count as exactly one candidate, not two.
func TestResolvePairNeighborRescueAcceptsDoublyConfirmedCandidate(t *testing.T) {
	adjacency := map[string]string{
		"a2|-1": "a1", "a2|1": "a3",
		"b2|-1": "b1", "b2|1": "b3",
	}
	neighbor := func(_ model.SpeciesID, pid string, delta int) (string, bool) {
		v, ok := adjacency[fmt.Sprintf("%s|%d", pid, delta)]
		return v, ok
	}

	fwd := map[string]*bestMatch{
		"a1": {EValue: 1e-100, Identity: 90, AlignLen: 300, Matches: []string{"b1"}},
		"a3": {EValue: 1e-100, Identity: 90, AlignLen: 300, Matches: []string{"b3"}},
		"a2": {EValue: 1e-20, Identity: 40, AlignLen: 200, Matches: []string{"b2", "b9"}},
	}
	rev := map[string]*bestMatch{
		"b1": {EValue: 1e-100, Identity: 90, AlignLen: 300, Matches: []string{"a1"}},
		"b3": {EValue: 1e-100, Identity: 90, AlignLen: 300, Matches: []string{"a3"}},
		"b2": {EValue: 1e-20, Identity: 40, AlignLen: 200, Matches: []string{"a2"}},
		"b9": {EValue: 1e-20, Identity: 40, AlignLen: 200, Matches: []string{"a2"}},
	}

	pairs := resolvePair("speciesA", "speciesB", fwd, rev, neighbor)

	byPid1 := make(map[model.Pid]model.Pid, len(pairs))
	for _, p := range pairs {
		byPid1[p.Pid1] = p.Pid2
	}
	require.Equal(t, model.Pid("b1"), byPid1["a1"])
	require.Equal(t, model.Pid("b3"), byPid1["a3"])
	require.Contains(t, byPid1, model.Pid("a2"))
	assert.Equal(t, model.Pid("b2"), byPid1["a2"])
}

func TestBuildRejectsUnknownGene(t *testing.T) {
	genes := map[string]GeneInfo{
		"a1": {Sp: "speciesA", PnumCDS: 1, Length: 900},
	}
	hits := []Hit{
		{Query: "a1", Subject: "ghost", PctIdent: 95, AlignLen: 300, EValue: 1e-150, BitScore: 500},
	}
	_, err := Build(hits, genes, DefaultParams())
	assert.Error(t, err)
}
