// Package ranker implements the break content scorer (§4.7): product
// regex classification, tRNA/paralog/real-size/delta-GC scoring, and the
// bad-break pruning pass.
package ranker

import (
	"regexp"
	"strings"

	"github.com/syntruptor/syntctl/internal/model"
)

// categories is the fixed order content strings are rendered in.
var categories = []string{"tRNA", "SM", "regulatory", "resistance", "transport", "mobile", "phage", "CRISPR"}

var patterns = map[string]*regexp.Regexp{
	"mobile":     regexp.MustCompile(`(?i)\b(insertion|mobile element|integrase|excisionase|plasmid|DNA ligase|transposase|transfer protein|Spd[ABCD])\b`),
	"phage":      regexp.MustCompile(`(?i)\b(pro-?)?phage\b`),
	"CRISPR":     regexp.MustCompile(`(?i)\bCRISPR(-\w+)?\b`),
	"regulatory": regexp.MustCompile(`(?i)\b(regulat|repress)(or|ory|ion)\b`),
	"transport":  regexp.MustCompile(`(?i)\b(transport(er|ing)?|export|permease|efflux)\b`),
	"resistance": regexp.MustCompile(`(?i)\bresistance\b`),
	"SM":         regexp.MustCompile(`(?i)\b(PKS|polyketide|beta[- ]?lactamase|penicillin|antibiotic|acyl[- ]?carrier|\w*[cd]in\b|\w*phenazine|chitin(ase)?)\b`),
}

// GeneRow is the subset of the catalog the ranker scores.
type GeneRow struct {
	Pid       model.Pid
	Feat      string
	Product   string
	ParalogsN int
	DeltaGC   float64
	Length    int
	HasOrtho  bool
}

// Score is a single side's content score.
type Score struct {
	Counts   map[string]int // mobile, phage, CRISPR, regulatory, transport, resistance, SM
	TRNA     int
	TRNAExt  int
	Paralogs int
	RealSize int
	DeltaGC  float64
}

// Content renders the category counts in fixed order as a comma-joined
// string, omitting zero counts.
func (s Score) Content() string {
	var parts []string
	for _, cat := range categories {
		if cat == "tRNA" {
			if s.TRNA > 0 {
				parts = append(parts, formatCount("tRNA", s.TRNA))
			}
			continue
		}
		if n := s.Counts[cat]; n > 0 {
			parts = append(parts, formatCount(cat, n))
		}
	}
	return strings.Join(parts, ", ")
}

func formatCount(cat string, n int) string {
	if n == 1 {
		return cat
	}
	return cat + " x" + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// ScoreSide scores one side's gene list (§4.7).
func ScoreSide(genes []GeneRow) Score {
	s := Score{Counts: make(map[string]int, len(categories))}

	n := len(genes)
	var gcWeight, gcLen float64

	for i, g := range genes {
		for cat, re := range patterns {
			if re.MatchString(g.Product) {
				s.Counts[cat]++
			}
		}
		if g.Feat == model.FeatTRNA {
			s.TRNA++
			atEdge := i == 0 || i == n-1
			nearEdge := n > 10 && (i < 3 || i >= n-3)
			if atEdge || nearEdge {
				s.TRNAExt++
			}
		}
		if g.Feat != model.FeatCDS {
			continue
		}
		if g.ParalogsN > 0 {
			s.Paralogs++
		}
		if !g.HasOrtho {
			s.RealSize++
		}
		gcWeight += g.DeltaGC * float64(g.Length)
		gcLen += float64(g.Length)
	}
	if gcLen > 0 {
		s.DeltaGC = gcWeight / gcLen
	}
	return s
}

// Aggregate combines two sides' scores into the break-level ranking row,
// including the real_size swap (§4.7).
func Aggregate(breakID int, side1, side2 Score) model.BreakRanking {
	r := model.BreakRanking{
		BreakID:   breakID,
		RealSize1: side2.RealSize,
		RealSize2: side1.RealSize,
		Content1:  side1.Content(),
		Content2:  side2.Content(),
		Paralogs1: side1.Paralogs,
		Paralogs2: side2.Paralogs,
		DeltaGC1:  side1.DeltaGC,
		DeltaGC2:  side2.DeltaGC,
	}
	r.TRNABoth = trnaBoth(side1.TRNA, side2.TRNA)
	r.TRNABothExt = trnaBoth(side1.TRNAExt, side2.TRNAExt)
	return r
}

func trnaBoth(a, b int) int {
	switch {
	case a > 0 && b > 0:
		return 2
	case a > 0 || b > 0:
		return 1
	default:
		return 0
	}
}

// ShouldPrune implements the bad-break pruning rule (§4.7), applied only
// when clean mode is requested.
func ShouldPrune(r model.BreakRanking, breakSize1, breakSize2 int) bool {
	if r.RealSize1 == 0 && r.RealSize2 == 0 {
		return true
	}
	if lowYield(r.RealSize1, breakSize1) && lowYield(r.RealSize2, breakSize2) {
		return true
	}
	if sparseSide(r.RealSize1, breakSize1) || sparseSide(r.RealSize2, breakSize2) {
		return true
	}
	return false
}

func lowYield(realSize, breakSize int) bool {
	if breakSize == 0 {
		return realSize == 0
	}
	return realSize <= 2 && float64(breakSize-realSize) >= 0.5*float64(breakSize)
}

func sparseSide(realSize, breakSize int) bool {
	if breakSize <= 4 {
		return false
	}
	return float64(realSize)/float64(breakSize) <= 0.25
}
