// Package breakgenes implements break-gene extraction (§4.6): the genes
// strictly between a break's flanking block endpoints on each side, with
// their ortholog partner if any and whether that partner lies inside the
// opposite break.
package breakgenes

import (
	"sort"

	"github.com/syntruptor/syntctl/internal/model"
)

// GeneRow is the subset of the catalog the break-gene extractor needs,
// scoped to one species.
type GeneRow struct {
	Pid     model.Pid
	GPart   string
	PnumAll int
}

// BreakSpan is one side of a break: the species, the flanking gene
// pnum_all values (exclusive), and the gpart they share.
type BreakSpan struct {
	BreakID int
	Sp      model.SpeciesID
	GPart   string
	LeftPnum  int
	RightPnum int
}

// OrthoLookup answers whether a gene has a known ortholog and, if so,
// its partner pid.
type OrthoLookup func(pid model.Pid) (model.Pid, bool)

// Extract returns every gene strictly between a span's flanking pnum_all
// values, tagged with side (1 or 2) and its ortholog partner if any.
// insideOpposite reports whether a candidate ortho pair also falls
// within the break's counterpart span on the other genome, the
// condition for OrthoIn.
func Extract(span BreakSpan, side int, genes []GeneRow, ortho OrthoLookup, insideOpposite func(partner model.Pid) bool) []model.BreakGene {
	lo, hi := span.LeftPnum, span.RightPnum
	if hi < lo {
		lo, hi = hi, lo
	}

	var candidates []GeneRow
	for _, g := range genes {
		if g.GPart != span.GPart {
			continue
		}
		if g.PnumAll > lo && g.PnumAll < hi {
			candidates = append(candidates, g)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].PnumAll < candidates[j].PnumAll })

	out := make([]model.BreakGene, 0, len(candidates))
	for _, g := range candidates {
		bg := model.BreakGene{
			BreakID: span.BreakID,
			Pid:     g.Pid,
			Side:    side,
		}
		if partner, ok := ortho(g.Pid); ok {
			bg.Ortho = partner
			if insideOpposite != nil {
				bg.OrthoIn = insideOpposite(partner)
			}
		}
		out = append(out, bg)
	}
	return out
}
