package paralog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntruptor/syntctl/internal/ortholog"
)

func TestBuildCountsSameSpeciesHitsAboveThreshold(t *testing.T) {
	genes := map[string]ortholog.GeneInfo{
		"a1": {Sp: "A", Length: 900},
		"a2": {Sp: "A", Length: 900},
		"a3": {Sp: "A", Length: 900},
		"b1": {Sp: "B", Length: 900}, // different species, must be excluded
	}
	hits := []ortholog.Hit{
		{Query: "a1", Subject: "a2", PctIdent: 60, AlignLen: 300, EValue: 1e-50},
		{Query: "a1", Subject: "a3", PctIdent: 45, AlignLen: 300, EValue: 1e-50},
		{Query: "a1", Subject: "b1", PctIdent: 90, AlignLen: 300, EValue: 1e-50},
	}

	entries, err := Build(hits, genes, DefaultParams())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].N)
	assert.Contains(t, entries[0].Text, "a2")
}

func TestBuildToleratesMissingReferencesUpToLimit(t *testing.T) {
	genes := map[string]ortholog.GeneInfo{
		"a1": {Sp: "A", Length: 900},
	}
	hits := []ortholog.Hit{
		{Query: "a1", Subject: "ghost", PctIdent: 60, AlignLen: 300, EValue: 1e-50},
	}
	entries, err := Build(hits, genes, DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
