// Package block implements the block finder (§4.4): builds pair links
// between consecutive ortholog pairs and aggregates them into maximal
// synteny blocks.
package block

import (
	"sort"

	"github.com/syntruptor/syntctl/internal/model"
)

// OrthoRow is the subset of orthos_all the block finder needs.
type OrthoRow struct {
	Oid        int
	Sp1, Sp2   model.SpeciesID
	GPart1     string
	GPart2     string
	PnumCDS1   int
	PnumCDS2   int
	PnumOrder1 int
	PnumOrder2 int
}

// Params tunes the block finder's CDS-gap tolerance (§4.4).
type Params struct {
	Tolerance int // default 2
}

func DefaultParams() Params { return Params{Tolerance: 2} }

type bucketKey struct {
	sp1, sp2 model.SpeciesID
}

// FindPairLinks builds the set of PairLinks (§4.4) and marks orthos that
// appear as neither endpoint of any link as NoBlock. Pair links are built
// per species pair, using the pnum_order1/pnum_order2 rankings already
// scoped to that pair (§4.3) — gpart locality falls out of the CDS-gap
// tolerance, since orthologs do not stay "consecutive" across a gpart
// boundary under realistic gap tolerances.
func FindPairLinks(rows []OrthoRow, p Params) ([]model.PairLink, map[int]bool) {
	buckets := make(map[bucketKey][]OrthoRow)
	for _, r := range rows {
		k := bucketKey{r.Sp1, r.Sp2}
		buckets[k] = append(buckets[k], r)
	}

	byOid := make(map[int]OrthoRow, len(rows))
	for _, r := range rows {
		byOid[r.Oid] = r
	}

	var links []model.PairLink
	inLink := make(map[int]bool)

	keys := sortedBucketKeys(buckets)
	for _, k := range keys {
		bucket := buckets[k]
		// Order by pnum_order1 to scan consecutive-in-genome1 candidates.
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].PnumOrder1 < bucket[j].PnumOrder1 })

		byOrder1 := make(map[int]OrthoRow, len(bucket))
		for _, r := range bucket {
			byOrder1[r.PnumOrder1] = r
		}

		for _, s := range bucket {
			e, ok := byOrder1[s.PnumOrder1+1]
			if !ok {
				continue
			}
			if !(e.PnumCDS1 > s.PnumCDS1 && e.PnumCDS1 < s.PnumCDS1+2+p.Tolerance) {
				continue
			}

			direction := e.PnumOrder2 - s.PnumOrder2
			var ok2 bool
			if direction == 1 {
				ok2 = e.PnumCDS2 > s.PnumCDS2 && e.PnumCDS2 < s.PnumCDS2+2+p.Tolerance
			} else if direction == -1 {
				ok2 = e.PnumCDS2 < s.PnumCDS2 && e.PnumCDS2 > s.PnumCDS2-2-p.Tolerance
			}
			if !ok2 {
				continue
			}

			links = append(links, model.PairLink{
				OidStart:  s.Oid,
				OidEnd:    e.Oid,
				Direction: direction,
			})
			inLink[s.Oid] = true
			inLink[e.Oid] = true
		}
	}

	noblock := make(map[int]bool)
	for _, r := range rows {
		if !inLink[r.Oid] {
			noblock[r.Oid] = true
		}
	}

	return links, noblock
}

// Extend aggregates PairLinks into maximal Blocks (§4.4) by greedily
// absorbing links that share an endpoint.
func Extend(links []model.PairLink, rowsByOid map[int]OrthoRow) []model.Block {
	byStart := make(map[int]model.PairLink, len(links))
	byEnd := make(map[int]model.PairLink, len(links))
	type key struct{ s, e int }
	consumed := make(map[key]bool, len(links))
	linkKey := func(l model.PairLink) key { return key{l.OidStart, l.OidEnd} }

	for _, l := range links {
		byStart[l.OidStart] = l
		byEnd[l.OidEnd] = l
	}

	// Stable order: iterate links sorted by (OidStart, OidEnd).
	ordered := append([]model.PairLink(nil), links...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].OidStart != ordered[j].OidStart {
			return ordered[i].OidStart < ordered[j].OidStart
		}
		return ordered[i].OidEnd < ordered[j].OidEnd
	})

	var blocks []model.Block
	for _, l := range ordered {
		if consumed[linkKey(l)] {
			continue
		}
		consumed[linkKey(l)] = true

		s, e := l.OidStart, l.OidEnd
		direction := l.Direction
		size := 2

		for {
			prev, ok := byEnd[s]
			if !ok || consumed[key{prev.OidStart, prev.OidEnd}] {
				break
			}
			consumed[key{prev.OidStart, prev.OidEnd}] = true
			s = prev.OidStart
			size++
		}
		for {
			next, ok := byStart[e]
			if !ok || consumed[key{next.OidStart, next.OidEnd}] {
				break
			}
			consumed[key{next.OidStart, next.OidEnd}] = true
			e = next.OidEnd
			size++
		}

		if size < 2 {
			continue
		}

		sr := rowsByOid[s]
		blocks = append(blocks, model.Block{
			Sp1:       sr.Sp1,
			Sp2:       sr.Sp2,
			OidStart:  s,
			OidEnd:    e,
			Direction: direction,
			BlockSize: size,
		})
	}

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Sp1 != blocks[j].Sp1 {
			return blocks[i].Sp1 < blocks[j].Sp1
		}
		if blocks[i].Sp2 != blocks[j].Sp2 {
			return blocks[i].Sp2 < blocks[j].Sp2
		}
		return rowsByOid[blocks[i].OidStart].PnumCDS1 < rowsByOid[blocks[j].OidStart].PnumCDS1
	})

	// Assign block_order1/block_order2 per (sp1,sp2) bucket, ordered by
	// pnum_CDS_start on each genome respectively.
	assignOrder(blocks, rowsByOid)

	return blocks
}

func assignOrder(blocks []model.Block, rowsByOid map[int]OrthoRow) {
	type spKey struct{ sp1, sp2 model.SpeciesID }
	byPair := make(map[spKey][]*model.Block)
	for i := range blocks {
		k := spKey{blocks[i].Sp1, blocks[i].Sp2}
		byPair[k] = append(byPair[k], &blocks[i])
	}
	for _, bs := range byPair {
		byGenome1 := append([]*model.Block(nil), bs...)
		sort.Slice(byGenome1, func(i, j int) bool {
			return rowsByOid[byGenome1[i].OidStart].PnumCDS1 < rowsByOid[byGenome1[j].OidStart].PnumCDS1
		})
		for rank, b := range byGenome1 {
			b.BlockOrder1 = rank + 1
		}

		byGenome2 := append([]*model.Block(nil), bs...)
		sort.Slice(byGenome2, func(i, j int) bool {
			start1 := rowsByOid[byGenome2[i].OidStart].PnumCDS2
			end1 := rowsByOid[byGenome2[i].OidEnd].PnumCDS2
			start2 := rowsByOid[byGenome2[j].OidStart].PnumCDS2
			end2 := rowsByOid[byGenome2[j].OidEnd].PnumCDS2
			lo1, lo2 := start1, start2
			if end1 < lo1 {
				lo1 = end1
			}
			if end2 < lo2 {
				lo2 = end2
			}
			return lo1 < lo2
		})
		for rank, b := range byGenome2 {
			b.BlockOrder2 = rank + 1
		}
	}
}

func sortedBucketKeys(m map[bucketKey][]OrthoRow) []bucketKey {
	out := make([]bucketKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].sp1 != out[j].sp1 {
			return out[i].sp1 < out[j].sp1
		}
		return out[i].sp2 < out[j].sp2
	})
	return out
}
