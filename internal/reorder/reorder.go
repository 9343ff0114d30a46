// Package reorder implements the assembly reorderer (§4.9): reorders the
// parts of a fragmented genome against a complete reference by median
// ortholog position, renumbering pnum_display densely.
package reorder

import (
	"math"
	"sort"

	"github.com/syntruptor/syntctl/internal/model"
)

// GeneRow is the subset of the catalog the reorderer needs, scoped to
// one sample genome.
type GeneRow struct {
	Pid     model.Pid
	GPart   string
	PnumAll int
}

// Params tunes the ambiguous-part detection thresholds (§4.9, an open
// question in the source material — exposed here as tunables rather
// than hard-coded).
type Params struct {
	AmbiguousRangeMin int // range must exceed this
	AmbiguousCountMax int // count must be below this
	AmbiguousCumulMax int // |cumul| must not exceed this
}

func DefaultParams() Params {
	return Params{AmbiguousRangeMin: 200, AmbiguousCountMax: 50, AmbiguousCumulMax: 20}
}

// partStat holds the per-part computed orientation and sort key.
type partStat struct {
	GPart    string
	Genes    []GeneRow // sorted by PnumAll ascending
	Median   float64
	Cumul    int
	Count    int
	Range    int
	Reversed bool
}

// Assignment is one gene's new display rank.
type Assignment struct {
	Pid         model.Pid
	GPart       string
	PnumDisplay int
}

// Reorder computes new pnum_display values for a sample genome's genes,
// given per-gpart gene lists and the sample→reference ortholog map
// (keyed by sample pid, valued by the reference gene's pnum_all).
func Reorder(genesByPart map[string][]GeneRow, orthoPnumInRef map[model.Pid]int, p Params) []Assignment {
	parts := make([]partStat, 0, len(genesByPart))
	for gpart, genes := range genesByPart {
		sorted := append([]GeneRow(nil), genes...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].PnumAll < sorted[j].PnumAll })

		var refPnums []int
		for _, g := range sorted {
			if v, ok := orthoPnumInRef[g.Pid]; ok {
				refPnums = append(refPnums, v)
			}
		}

		stat := partStat{GPart: gpart, Genes: sorted, Count: len(refPnums)}
		if len(refPnums) == 0 {
			stat.Median = math.Inf(1)
		} else {
			stat.Median = median(refPnums)
			stat.Cumul = cumulSign(refPnums)
			lo, hi := refPnums[0], refPnums[0]
			for _, v := range refPnums[1:] {
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			stat.Range = hi - lo

			if stat.Count > 2 && stat.Range > p.AmbiguousRangeMin && stat.Count < p.AmbiguousCountMax && abs(stat.Cumul) <= p.AmbiguousCumulMax {
				stat.Median = math.Inf(1)
			}
		}
		stat.Reversed = stat.Cumul < 0
		parts = append(parts, stat)
	}

	sort.Slice(parts, func(i, j int) bool {
		if parts[i].Median != parts[j].Median {
			return parts[i].Median < parts[j].Median
		}
		return parts[i].GPart < parts[j].GPart
	})

	var out []Assignment
	display := 0
	for _, part := range parts {
		genes := part.Genes
		if part.Reversed {
			genes = reversed(genes)
		}
		for _, g := range genes {
			display++
			out = append(out, Assignment{Pid: g.Pid, GPart: part.GPart, PnumDisplay: display})
		}
	}
	return out
}

func median(vals []int) float64 {
	sorted := append([]int(nil), vals...)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

func cumulSign(vals []int) int {
	cumul := 0
	for i := 1; i < len(vals); i++ {
		switch {
		case vals[i] > vals[i-1]:
			cumul++
		case vals[i] < vals[i-1]:
			cumul--
		}
	}
	return cumul
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func reversed(genes []GeneRow) []GeneRow {
	out := make([]GeneRow, len(genes))
	for i, g := range genes {
		out[len(genes)-1-i] = g
	}
	return out
}
