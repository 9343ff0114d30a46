// Package breakfinder implements the break finder (§4.5): the regions
// between near-consecutive blocks, matched against their counterpart in
// the reverse species comparison.
package breakfinder

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/syntruptor/syntctl/internal/model"
)

// BlockRow is the subset of blocks_all the break finder needs.
type BlockRow struct {
	BlockID     int
	Sp1, Sp2    model.SpeciesID
	GPart1      string
	GPart2      string
	Direction   int
	BlockOrder1 int
	StartPid1   model.Pid
	EndPid1     model.Pid
	StartPid2   model.Pid
	EndPid2     model.Pid
	PnumCDSStart1 int
	PnumCDSEnd1   int
	PnumCDSStart2 int
	PnumCDSEnd2   int
}

// Params tunes the break finder's adjacency window (§4.5).
type Params struct {
	MaxIncludedBlocks int // default 0: only strictly consecutive blocks form a break
}

func DefaultParams() Params { return Params{MaxIncludedBlocks: 0} }

type bucketKey struct {
	sp1, sp2  model.SpeciesID
	gpart1    string
	gpart2    string
	direction int
}

// candidate is a break before endpoint cleanup and opposite matching.
type candidate struct {
	Sp1, Sp2   model.SpeciesID
	LeftBlock  int
	RightBlock int
	Direction  int
	BreakSize1 int
	BreakSize2 int
	InBlocks   int
	LeftPid1   model.Pid
	RightPid1  model.Pid
	LeftPid2   model.Pid
	RightPid2  model.Pid
}

func (c candidate) size() int { return c.BreakSize1 + c.BreakSize2 }

// findCandidates generates break candidates between blocks that are
// within p.MaxIncludedBlocks of each other along genome1, within the
// same (sp1,sp2,gpart1,gpart2,direction) bucket.
func findCandidates(blocks []BlockRow, p Params) []candidate {
	buckets := make(map[bucketKey][]BlockRow)
	for _, b := range blocks {
		k := bucketKey{b.Sp1, b.Sp2, b.GPart1, b.GPart2, b.Direction}
		buckets[k] = append(buckets[k], b)
	}

	var out []candidate
	for _, k := range sortedBucketKeys(buckets) {
		bucket := buckets[k]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].BlockOrder1 < bucket[j].BlockOrder1 })

		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket) && j <= i+1+p.MaxIncludedBlocks; j++ {
				left, right := bucket[i], bucket[j]
				c := candidate{
					Sp1: k.sp1, Sp2: k.sp2,
					LeftBlock: left.BlockID, RightBlock: right.BlockID,
					Direction: k.direction,
					InBlocks:  j - i - 1,
					BreakSize1: right.PnumCDSStart1 - left.PnumCDSEnd1 - 1,
					LeftPid1:  left.EndPid1,
					RightPid1: right.StartPid1,
					LeftPid2:  left.EndPid2,
					RightPid2: right.StartPid2,
				}
				if k.direction >= 0 {
					c.BreakSize2 = right.PnumCDSStart2 - left.PnumCDSEnd2 - 1
				} else {
					c.BreakSize2 = left.PnumCDSEnd2 - right.PnumCDSStart2 - 1
				}
				if c.BreakSize1 < 0 || c.BreakSize2 < 0 {
					continue
				}
				out = append(out, c)
			}
		}
	}
	return out
}

// cleanup keeps, at each block endpoint, only the shortest break that
// uses it as a left or right anchor — first pass keyed on left_block
// ascending, second pass on right_block descending, per §4.5.
func cleanup(cands []candidate) []candidate {
	byLeft := make(map[int]candidate)
	for _, c := range cands {
		cur, ok := byLeft[c.LeftBlock]
		if !ok || c.size() < cur.size() || (c.size() == cur.size() && c.RightBlock < cur.RightBlock) {
			byLeft[c.LeftBlock] = c
		}
	}
	pass1 := make([]candidate, 0, len(byLeft))
	for _, c := range byLeft {
		pass1 = append(pass1, c)
	}

	byRight := make(map[int]candidate)
	for _, c := range pass1 {
		cur, ok := byRight[c.RightBlock]
		if !ok || c.size() < cur.size() || (c.size() == cur.size() && c.LeftBlock > cur.LeftBlock) {
			byRight[c.RightBlock] = c
		}
	}
	out := make([]candidate, 0, len(byRight))
	for _, c := range byRight {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sp1 != out[j].Sp1 {
			return out[i].Sp1 < out[j].Sp1
		}
		if out[i].Sp2 != out[j].Sp2 {
			return out[i].Sp2 < out[j].Sp2
		}
		return out[i].LeftBlock < out[j].LeftBlock
	})
	return out
}

// Resolved is a break after opposite matching, ready for storage.
type Resolved struct {
	model.Break
}

type spPair struct{ a, b model.SpeciesID }

type pidPair struct{ x, y model.Pid }

func normalize(x, y model.Pid) pidPair {
	if y < x {
		x, y = y, x
	}
	return pidPair{x, y}
}

// Resolve runs candidate generation, endpoint cleanup, and opposite
// matching, returning breaks assigned sequential ids. Orphan breaks with
// no counterpart in the reverse species comparison are dropped; their
// count is returned separately so the caller can log a warning.
func Resolve(blocks []BlockRow, p Params) (resolved []Resolved, orphans int) {
	bySpPair := make(map[spPair][]candidate)

	allCands := findCandidates(blocks, p)
	perBucket := make(map[spPair][]candidate)
	for _, c := range allCands {
		k := spPair{c.Sp1, c.Sp2}
		perBucket[k] = append(perBucket[k], c)
	}
	for k, cs := range perBucket {
		bySpPair[k] = cleanup(cs)
	}

	pairs := make([]spPair, 0, len(bySpPair))
	for k := range bySpPair {
		pairs = append(pairs, k)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})

	oppositeOf := make(map[spPair]map[int]pidPair) // pair -> leftBlock -> matched genome1-pid-pair of the opposite break

	for _, pair := range pairs {
		reverse := spPair{pair.b, pair.a}
		revCands, ok := bySpPair[reverse]
		if !ok {
			continue
		}
		revByGenome1Flank := make(map[pidPair]candidate, len(revCands))
		for _, rc := range revCands {
			revByGenome1Flank[normalize(rc.LeftPid1, rc.RightPid1)] = rc
		}
		for _, c := range bySpPair[pair] {
			key := normalize(c.LeftPid2, c.RightPid2)
			if _, ok := revByGenome1Flank[key]; ok {
				if oppositeOf[pair] == nil {
					oppositeOf[pair] = make(map[int]pidPair)
				}
				oppositeOf[pair][c.LeftBlock] = key
			}
		}
	}

	var out []Resolved

	type withKey struct {
		pair spPair
		c    candidate
		fp   pidPair
	}
	var kept []withKey
	for _, pair := range pairs {
		for _, c := range bySpPair[pair] {
			fp, ok := oppositeOf[pair][c.LeftBlock]
			if !ok {
				orphans++
				continue
			}
			kept = append(kept, withKey{pair, c, fp})
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].pair.a != kept[j].pair.a {
			return kept[i].pair.a < kept[j].pair.a
		}
		if kept[i].pair.b != kept[j].pair.b {
			return kept[i].pair.b < kept[j].pair.b
		}
		return kept[i].c.LeftBlock < kept[j].c.LeftBlock
	})

	// Assign ids, then resolve opposite ids by looking up the reverse
	// pair's break that shares the matched genome1-pid-pair fingerprint.
	idOf := make(map[spPair]map[pidPair]int)
	for i, wk := range kept {
		id := i + 1
		if idOf[wk.pair] == nil {
			idOf[wk.pair] = make(map[pidPair]int)
		}
		idOf[wk.pair][normalize(wk.c.LeftPid1, wk.c.RightPid1)] = id
		out = append(out, Resolved{model.Break{
			BreakID:    id,
			Sp1:        wk.c.Sp1,
			Sp2:        wk.c.Sp2,
			LeftBlock:  wk.c.LeftBlock,
			RightBlock: wk.c.RightBlock,
			Direction:  wk.c.Direction,
			BreakSize1: wk.c.BreakSize1,
			BreakSize2: wk.c.BreakSize2,
			InBlocks1:  wk.c.InBlocks,
			InBlocks2:  wk.c.InBlocks,
			BreakSum:   breakSum(wk.c),
		}})
	}
	for i, wk := range kept {
		reverse := spPair{wk.pair.b, wk.pair.a}
		if m, ok := idOf[reverse]; ok {
			if oppID, ok := m[wk.fp]; ok {
				out[i].Opposite = oppID
			}
		}
	}

	return out, orphans
}

func breakSum(c candidate) string {
	joined := strings.Join([]string{string(c.LeftPid1), string(c.RightPid1), string(c.LeftPid2), string(c.RightPid2)}, "|")
	sum := sha1.Sum([]byte(joined))
	return hex.EncodeToString(sum[:])
}

func sortedBucketKeys(m map[bucketKey][]BlockRow) []bucketKey {
	out := make([]bucketKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].sp1 != out[j].sp1 {
			return out[i].sp1 < out[j].sp1
		}
		if out[i].sp2 != out[j].sp2 {
			return out[i].sp2 < out[j].sp2
		}
		if out[i].gpart1 != out[j].gpart1 {
			return out[i].gpart1 < out[j].gpart1
		}
		if out[i].gpart2 != out[j].gpart2 {
			return out[i].gpart2 < out[j].gpart2
		}
		return out[i].direction < out[j].direction
	})
	return out
}

// Summary formats an orphan-drop warning for logging.
func Summary(orphans int) string {
	return fmt.Sprintf("dropped %d break candidate(s) with no counterpart in the reverse species comparison", orphans)
}
