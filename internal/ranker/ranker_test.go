package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syntruptor/syntctl/internal/model"
)

func TestScoreSideClassifiesProductsAndTRNA(t *testing.T) {
	genes := []GeneRow{
		{Pid: "p1", Feat: model.FeatCDS, Product: "transposase", HasOrtho: false, Length: 300, DeltaGC: 0.1},
		{Pid: "p2", Feat: model.FeatCDS, Product: "hypothetical protein", HasOrtho: true, Length: 300, DeltaGC: -0.1},
		{Pid: "p3", Feat: model.FeatTRNA, Product: "tRNA-Leu"},
	}

	s := ScoreSide(genes)
	assert.Equal(t, 1, s.Counts["mobile"])
	assert.Equal(t, 1, s.TRNA)
	assert.Equal(t, 1, s.TRNAExt) // edge of a 3-gene list
	assert.Equal(t, 1, s.RealSize)
	assert.Contains(t, s.Content(), "mobile")
	assert.Contains(t, s.Content(), "tRNA")
}

func TestAggregateSwapsRealSizeBetweenSides(t *testing.T) {
	side1 := Score{Counts: map[string]int{}, RealSize: 3}
	side2 := Score{Counts: map[string]int{}, RealSize: 7}

	r := Aggregate(42, side1, side2)
	assert.Equal(t, 42, r.BreakID)
	assert.Equal(t, 7, r.RealSize1)
	assert.Equal(t, 3, r.RealSize2)
}

func TestShouldPruneWhenBothSidesAreEmpty(t *testing.T) {
	r := model.BreakRanking{RealSize1: 0, RealSize2: 0}
	assert.True(t, ShouldPrune(r, 5, 5))
}

func TestShouldPruneKeepsDenseBreaks(t *testing.T) {
	r := model.BreakRanking{RealSize1: 8, RealSize2: 8}
	assert.False(t, ShouldPrune(r, 10, 10))
}

func TestShouldPruneSparseSide(t *testing.T) {
	r := model.BreakRanking{RealSize1: 1, RealSize2: 8}
	assert.True(t, ShouldPrune(r, 10, 10))
}
