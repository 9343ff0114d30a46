package ortholog

import (
	"sort"

	"github.com/syntruptor/syntctl/internal/model"
)

// Build runs the full ortholog builder (§4.1): filter, best-match
// reduction, BRH resolution with synteny rescue, for every species pair
// present in the hits. Returns sorted, 1-based oid-numbered pairs.
func Build(hits []Hit, genes map[string]GeneInfo, p Params) ([]model.OrthoPair, error) {
	filtered, err := filterHits(hits, genes, p)
	if err != nil {
		return nil, err
	}

	forward := buildBestMatches(filtered, genes, p)

	cdsIndex := make(map[model.SpeciesID]map[int]string)
	for pid, g := range genes {
		if g.PnumCDS <= 0 {
			continue
		}
		bySp, ok := cdsIndex[g.Sp]
		if !ok {
			bySp = make(map[int]string)
			cdsIndex[g.Sp] = bySp
		}
		bySp[g.PnumCDS] = pid
	}
	pnumOf := make(map[string]int, len(genes))
	for pid, g := range genes {
		pnumOf[pid] = g.PnumCDS
	}

	neighbor := func(sp model.SpeciesID, pid string, delta int) (string, bool) {
		rank, ok := pnumOf[pid]
		if !ok || rank <= 0 {
			return "", false
		}
		bySp, ok := cdsIndex[sp]
		if !ok {
			return "", false
		}
		n, ok := bySp[rank+delta]
		return n, ok
	}

	speciesPairs := canonicalPairs(forward)

	var all []model.OrthoPair
	for _, sp := range speciesPairs {
		fwd := forward[sp.a][sp.b]
		rev := forward[sp.b][sp.a]
		pairs := resolvePair(sp.a, sp.b, fwd, rev, neighbor)
		all = append(all, pairs...)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Sp1 != all[j].Sp1 {
			return all[i].Sp1 < all[j].Sp1
		}
		if all[i].Sp2 != all[j].Sp2 {
			return all[i].Sp2 < all[j].Sp2
		}
		if all[i].Pid1 != all[j].Pid1 {
			return all[i].Pid1 < all[j].Pid1
		}
		return all[i].Pid2 < all[j].Pid2
	})
	for i := range all {
		all[i].Oid = i + 1
	}
	return all, nil
}

type spPair struct {
	a, b model.SpeciesID
}

// canonicalPairs picks one ordering per unordered species pair (the
// lexicographically smaller species id as spA) so each pair is resolved
// exactly once.
func canonicalPairs(forward map[model.SpeciesID]map[model.SpeciesID]map[string]*bestMatch) []spPair {
	seen := make(map[spPair]bool)
	var out []spPair
	for a, byB := range forward {
		for b := range byB {
			if a == b {
				continue
			}
			lo, hi := a, b
			if hi < lo {
				lo, hi = hi, lo
			}
			key := spPair{lo, hi}
			if !seen[key] {
				seen[key] = true
				out = append(out, key)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].a != out[j].a {
			return out[i].a < out[j].a
		}
		return out[i].b < out[j].b
	})
	return out
}
