package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntruptor/syntctl/internal/model"
)

func TestParseGeneCatalogSkipsHeaderAndParsesRow(t *testing.T) {
	in := strings.Join([]string{
		"sp\tgpart\tpid\tpnum_CDS\tpnum_all\tfeat\tloc_start\tloc_end\tstrand\tlength\tsequence\tproduct\tGC\tdelta_GC",
		"speciesA\tc1\tA_00001\t1\t1\tCDS\t1\t300\t1\t300\tATG...\thypothetical protein\t0.55\t0.01",
	}, "\n")

	genes, err := ParseGeneCatalog(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, genes, 1)

	g := genes[0]
	assert.Equal(t, model.Pid("A_00001"), g.Pid)
	assert.Equal(t, model.SpeciesID("speciesA"), g.Sp)
	assert.Equal(t, model.StrandPlus, g.Strand)
	assert.Equal(t, 1, g.PnumCDS)
	assert.InDelta(t, 0.01, g.DeltaGC, 1e-9)
}

func TestParseGeneCatalogBlanksCDSRankForNonCDSFeatures(t *testing.T) {
	in := strings.Join([]string{
		"sp\tgpart\tpid\tpnum_CDS\tpnum_all\tfeat\tloc_start\tloc_end\tstrand\tlength\tsequence\tproduct\tGC\tdelta_GC",
		"speciesA\tc1\tA_00002\t5\t2\ttRNA\t301\t380\t-1\t80\tATG...\ttRNA-Leu\t0.5\t0",
	}, "\n")

	genes, err := ParseGeneCatalog(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, genes, 1)
	assert.Equal(t, -1, genes[0].PnumCDS)
	assert.Equal(t, model.StrandMinus, genes[0].Strand)
}

func TestParseGeneCatalogRejectsInvertedCoordinates(t *testing.T) {
	in := strings.Join([]string{
		"header",
		"speciesA\tc1\tA_00003\t1\t1\tCDS\t300\t1\t1\t300\tATG\tproduct\t0.5\t0",
	}, "\n")
	_, err := ParseGeneCatalog(strings.NewReader(in))
	assert.Error(t, err)
}

func TestParseOrthoPairsParsesRow(t *testing.T) {
	in := "oid\tpid1\tpid2\to_ident\to_alen\n1\tA_1\tB_1\t0.95\t300\n"
	pairs, err := ParseOrthoPairs(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].Oid)
	assert.Equal(t, model.Pid("A_1"), pairs[0].Pid1)
}

func TestParseParalogPairsParsesRow(t *testing.T) {
	in := "A_1\t2\tB_1 (95%), B_2 (88%)\n"
	entries, err := ParseParalogPairs(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].N)
	assert.Contains(t, entries[0].Text, "B_1")
}
