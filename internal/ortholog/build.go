package ortholog

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/syntruptor/syntctl/internal/model"
	"github.com/syntruptor/syntctl/internal/pipeline"
)

// geneLookupCacheSize bounds the front-end LRU that sits in front of the
// gene catalog map for the hit-scanning passes below, so a hits file
// with far more rows than distinct pids does not keep re-hashing the
// same keys against the full catalog map.
const geneLookupCacheSize = 4096

// geneLookup fronts the full gene-catalog map with an LRU cache; the map
// itself remains the source of truth, this only speeds up the repeated
// per-hit lookups in filterHits/buildBestMatches.
type geneLookup struct {
	genes map[string]GeneInfo
	cache *lru.Cache[string, GeneInfo]
}

func newGeneLookup(genes map[string]GeneInfo) *geneLookup {
	size := geneLookupCacheSize
	if len(genes) < size {
		size = len(genes)
	}
	if size < 1 {
		size = 1
	}
	cache, _ := lru.New[string, GeneInfo](size)
	return &geneLookup{genes: genes, cache: cache}
}

func (l *geneLookup) get(pid string) (GeneInfo, bool) {
	if g, ok := l.cache.Get(pid); ok {
		return g, true
	}
	g, ok := l.genes[pid]
	if ok {
		l.cache.Add(pid, g)
	}
	return g, ok
}

// Params tunes the ortholog builder's filters (§4.1).
type Params struct {
	MinAlenFrac     float64 // fraction of the shorter protein, default 0.40
	MinIdentity     float64 // fraction 0..1, default 0.40
	MaxEvalue       float64 // default 1e-10
	EvalueTolerance float64 // tie-policy band, default 1.0
}

func DefaultParams() Params {
	return Params{
		MinAlenFrac:     0.40,
		MinIdentity:     0.40,
		MaxEvalue:       1e-10,
		EvalueTolerance: 1.0,
	}
}

// bestMatch is the per-query best-hit accumulator (§4.1).
type bestMatch struct {
	EValue   float64
	Identity float64
	AlignLen int
	Matches  []string
}

// filterHits keeps cross-species hits passing the min-length, identity
// and e-value gates. A hit referencing a pid absent from the catalog is
// a fatal contract violation (§7).
func filterHits(hits []Hit, genes map[string]GeneInfo, p Params) ([]Hit, error) {
	lookup := newGeneLookup(genes)
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		q, ok := lookup.get(h.Query)
		if !ok {
			return nil, pipeline.NewContractError("gene", h.Query, "referenced by similarity hit but absent from gene catalog")
		}
		s, ok := lookup.get(h.Subject)
		if !ok {
			return nil, pipeline.NewContractError("gene", h.Subject, "referenced by similarity hit but absent from gene catalog")
		}
		if q.Sp == s.Sp {
			continue
		}
		if h.EValue > p.MaxEvalue {
			continue
		}
		if h.PctIdent < p.MinIdentity*100 {
			continue
		}
		qProt := float64(q.Length) / 3
		sProt := float64(s.Length) / 3
		shorter := qProt
		if sProt < shorter {
			shorter = sProt
		}
		if float64(h.AlignLen) < p.MinAlenFrac*shorter {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

// updateBest applies the three-way tie policy in order (§4.1).
func updateBest(best *bestMatch, evalue, identity float64, alen int, subject string, tol float64) {
	if best.Matches == nil {
		best.EValue = evalue
		best.Identity = identity
		best.AlignLen = alen
		best.Matches = []string{subject}
		return
	}
	// 1. e-value lower than the current best by more than the tolerance
	// factor; e-values within the tolerance band fall through to 2/3.
	if evalue < best.EValue/tol {
		best.EValue = evalue
		best.Identity = identity
		best.AlignLen = alen
		best.Matches = []string{subject}
		return
	}
	if evalue <= best.EValue*tol {
		// 2. equal e-value within tolerance, higher identity.
		if identity > best.Identity {
			best.EValue = evalue
			best.Identity = identity
			best.AlignLen = alen
			best.Matches = []string{subject}
			return
		}
		// 3. equal e-value within tolerance, identical identity.
		if identity == best.Identity {
			best.Matches = append(best.Matches, subject)
		}
	}
}

// buildBestMatches reduces filtered hits to, for every ordered species
// pair (spA,spB), the best-match set per query in spA.
func buildBestMatches(hits []Hit, genes map[string]GeneInfo, p Params) map[model.SpeciesID]map[model.SpeciesID]map[string]*bestMatch {
	forward := make(map[model.SpeciesID]map[model.SpeciesID]map[string]*bestMatch)
	lookup := newGeneLookup(genes)

	for _, h := range hits {
		qGene, _ := lookup.get(h.Query)
		sGene, _ := lookup.get(h.Subject)
		spA, spB := qGene.Sp, sGene.Sp

		bySpB, ok := forward[spA]
		if !ok {
			bySpB = make(map[model.SpeciesID]map[string]*bestMatch)
			forward[spA] = bySpB
		}
		byQuery, ok := bySpB[spB]
		if !ok {
			byQuery = make(map[string]*bestMatch)
			bySpB[spB] = byQuery
		}
		bm, ok := byQuery[h.Query]
		if !ok {
			bm = &bestMatch{}
			byQuery[h.Query] = bm
		}
		updateBest(bm, h.EValue, h.PctIdent, h.AlignLen, h.Subject, p.EvalueTolerance)
	}

	return forward
}

// union-find over a shared string namespace ("Q:"/"S:"-prefixed pids),
// used to merge candidate sets into groups (§4.1 "Grouping").
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(x string) string {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		return x
	}
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		next := u.parent[x]
		u.parent[x] = root
		x = next
	}
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

type group struct {
	from map[string]bool
	to   map[string]bool
}

// resolvePair runs Best-Reciprocal-Hit resolution with synteny rescue
// (§4.1) for one ordered species pair (spA,spB), given the forward
// best-match sets for (spA,spB) and the reverse (spB,spA), and a CDS
// neighbor index for synteny rescue.
func resolvePair(
	spA, spB model.SpeciesID,
	fwd, rev map[string]*bestMatch,
	neighbor func(sp model.SpeciesID, pid string, delta int) (string, bool),
) []model.OrthoPair {
	committed := make(map[string]string) // query(spA) -> subject(spB)
	committedRev := make(map[string]string)
	var idents = make(map[string]float64)
	var alens = make(map[string]int)

	uf := newUnionFind()
	deferredQueries := make(map[string]bool)
	deferredSubjects := make(map[string]bool)

	queries := sortedKeys(fwd)
	for _, q := range queries {
		b := fwd[q]
		switch {
		case len(b.Matches) == 1:
			t := b.Matches[0]
			rb, ok := rev[t]
			if !ok {
				continue // no correspondence back: drop
			}
			switch {
			case len(rb.Matches) == 1 && rb.Matches[0] == q:
				committed[q] = t
				committedRev[t] = q
				idents[q] = b.Identity
				alens[q] = b.AlignLen
			case len(rb.Matches) == 1:
				// non-reciprocal: drop
			case len(rb.Matches) > 1:
				for _, m := range rb.Matches {
					if m == q {
						deferredQueries[q] = true
						deferredSubjects[t] = true
						uf.union("Q:"+q, "S:"+t)
					}
				}
			}
		case len(b.Matches) > 1:
			var restricted []string
			for _, t := range b.Matches {
				if rb, ok := rev[t]; ok {
					for _, m := range rb.Matches {
						if m == q {
							restricted = append(restricted, t)
							break
						}
					}
				}
			}
			if len(restricted) == 0 {
				continue // drop
			}
			deferredQueries[q] = true
			for _, t := range restricted {
				deferredSubjects[t] = true
				uf.union("Q:"+q, "S:"+t)
			}
		}
	}

	// Build groups from the union-find partition.
	groups := make(map[string]*group)
	for q := range deferredQueries {
		root := uf.find("Q:" + q)
		g, ok := groups[root]
		if !ok {
			g = &group{from: map[string]bool{}, to: map[string]bool{}}
			groups[root] = g
		}
		g.from[q] = true
	}
	for t := range deferredSubjects {
		root := uf.find("S:" + t)
		g, ok := groups[root]
		if !ok {
			g = &group{from: map[string]bool{}, to: map[string]bool{}}
			groups[root] = g
		}
		g.to[t] = true
	}

	pairedQ := make(map[string]bool)
	pairedT := make(map[string]bool)

	for {
		changed := false
		groupKeys := sortedGroupKeys(groups)
		for _, gk := range groupKeys {
			g := groups[gk]
			remFrom := remaining(g.from, pairedQ)
			remTo := remaining(g.to, pairedT)
			if len(remFrom) == 0 || len(remTo) == 0 {
				continue
			}
			if len(remFrom) == 1 && len(remTo) == 1 {
				q, t := remFrom[0], remTo[0]
				committed[q] = t
				committedRev[t] = q
				pairedQ[q] = true
				pairedT[t] = true
				changed = true
				continue
			}

			// Neighbor-based potential pairs. A given (f,t) pair can be
			// reachable through more than one delta/d2 combination (f's
			// CDS-neighbor on both sides can each resolve to the same t);
			// dedupe per f before counting so that doesn't look like
			// ambiguity between distinct candidates.
			potential := make(map[string]string) // q -> t
			countQ := make(map[string]int)
			countT := make(map[string]int)
			for _, f := range remFrom {
				matchedT := make(map[string]bool)
				for _, delta := range [2]int{-1, 1} {
					nb, ok := neighbor(spA, f, delta)
					if !ok {
						continue
					}
					tPrime, ok := committed[nb]
					if !ok {
						continue
					}
					for _, t := range remTo {
						for _, d2 := range [2]int{-1, 1} {
							tn, ok := neighbor(spB, t, d2)
							if ok && tn == tPrime {
								matchedT[t] = true
							}
						}
					}
				}
				for t := range matchedT {
					potential[f] = t
					countQ[f]++
					countT[t]++
				}
			}
			for q, t := range potential {
				if countQ[q] == 1 && countT[t] == 1 {
					committed[q] = t
					committedRev[t] = q
					pairedQ[q] = true
					pairedT[t] = true
					idents[q] = 0
					alens[q] = 0
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	out := make([]model.OrthoPair, 0, len(committed))
	for q, t := range committed {
		out = append(out, model.OrthoPair{
			Pid1:   model.Pid(q),
			Pid2:   model.Pid(t),
			Sp1:    spA,
			Sp2:    spB,
			OIdent: idents[q],
			OAlen:  alens[q],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pid1 != out[j].Pid1 {
			return out[i].Pid1 < out[j].Pid1
		}
		return out[i].Pid2 < out[j].Pid2
	})
	return out
}

func remaining(set map[string]bool, paired map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if !paired[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]*bestMatch) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedGroupKeys(m map[string]*group) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
