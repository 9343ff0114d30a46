// Package ortholog implements the ortholog builder (§4.1): filters
// all-vs-all similarity hits, resolves best-reciprocal-hit pairs, and
// rescues the remainder via local synteny.
package ortholog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/syntruptor/syntctl/internal/model"
)

// Hit is one row of the tab-separated similarity search output (§6.1).
type Hit struct {
	Query      string
	Subject    string
	PctIdent   float64
	AlignLen   int
	Mismatches int
	GapOpens   int
	QStart     int
	QEnd       int
	SStart     int
	SEnd       int
	EValue     float64
	BitScore   float64
}

// ParseHits reads the 12-column tab-separated hits file, tolerating
// `#`-prefixed comments and blank lines.
func ParseHits(r io.Reader) ([]Hit, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var hits []Hit
	lineNo := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 12 {
			return nil, fmt.Errorf("hits line %d: expected 12 columns, got %d", lineNo, len(fields))
		}

		pctIdent, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("hits line %d: bad pct_identity %q: %w", lineNo, fields[2], err)
		}
		alen, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("hits line %d: bad alignment_length %q: %w", lineNo, fields[3], err)
		}
		evalue, err := strconv.ParseFloat(fields[10], 64)
		if err != nil {
			return nil, fmt.Errorf("hits line %d: bad e_value %q: %w", lineNo, fields[10], err)
		}
		bitscore, err := strconv.ParseFloat(fields[11], 64)
		if err != nil {
			return nil, fmt.Errorf("hits line %d: bad bit_score %q: %w", lineNo, fields[11], err)
		}

		mismatches, _ := strconv.Atoi(fields[4])
		gapOpens, _ := strconv.Atoi(fields[5])
		qstart, _ := strconv.Atoi(fields[6])
		qend, _ := strconv.Atoi(fields[7])
		sstart, _ := strconv.Atoi(fields[8])
		send, _ := strconv.Atoi(fields[9])

		hits = append(hits, Hit{
			Query:      fields[0],
			Subject:    fields[1],
			PctIdent:   pctIdent,
			AlignLen:   alen,
			Mismatches: mismatches,
			GapOpens:   gapOpens,
			QStart:     qstart,
			QEnd:       qend,
			SStart:     sstart,
			SEnd:       send,
			EValue:     evalue,
			BitScore:   bitscore,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading hits: %w", err)
	}
	return hits, nil
}

// GeneInfo is the slice of the gene catalog the ortholog and paralog
// builders need: species, CDS-only rank, and nucleotide length.
type GeneInfo struct {
	Sp      model.SpeciesID
	PnumCDS int
	Length  int // nucleotides
}
