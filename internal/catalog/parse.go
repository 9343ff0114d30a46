// Package catalog parses the gene catalog, genome metadata, ortholog and
// paralog intermediate files (§6.2-§6.5) and loads them into the store
// (§4.3).
package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/syntruptor/syntctl/internal/model"
)

// ParalogEntry is one row of the paralog intermediate file (§6.5).
type ParalogEntry struct {
	Pid   model.Pid
	N     int
	Text  string
}

// GenomeMeta is one row of the optional genome metadata file (§6.3).
type GenomeMeta struct {
	Abbr      string
	Species   string
	Strain    string
	Taxonomy  string
	GC        float64
}

func splitFields(line string) []string {
	return strings.Split(line, "\t")
}

// ParseGeneCatalog reads the tab-separated gene catalog (§6.2):
// sp, gpart, pid, pnum_CDS, pnum_all, feat, loc_start, loc_end, strand,
// length, sequence, product, GC, delta_GC. A header line is required.
func ParseGeneCatalog(r io.Reader) ([]model.Gene, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var genes []model.Gene
	lineNo := 0
	sawHeader := false

	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		if line == "" {
			continue
		}
		if !sawHeader {
			sawHeader = true
			continue // skip header line
		}
		fields := splitFields(line)
		if len(fields) < 14 {
			return nil, fmt.Errorf("gene catalog line %d: expected 14 columns, got %d", lineNo, len(fields))
		}

		pnumCDS, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("gene catalog line %d: bad pnum_CDS %q: %w", lineNo, fields[3], err)
		}
		pnumAll, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("gene catalog line %d: bad pnum_all %q: %w", lineNo, fields[4], err)
		}
		locStart, err := strconv.Atoi(fields[6])
		if err != nil {
			return nil, fmt.Errorf("gene catalog line %d: bad loc_start %q: %w", lineNo, fields[6], err)
		}
		locEnd, err := strconv.Atoi(fields[7])
		if err != nil {
			return nil, fmt.Errorf("gene catalog line %d: bad loc_end %q: %w", lineNo, fields[7], err)
		}
		if locStart > locEnd {
			return nil, fmt.Errorf("gene catalog line %d: loc_start %d > loc_end %d", lineNo, locStart, locEnd)
		}
		strandRaw, err := strconv.Atoi(fields[8])
		if err != nil {
			return nil, fmt.Errorf("gene catalog line %d: bad strand %q: %w", lineNo, fields[8], err)
		}
		strand := model.StrandPlus
		if strandRaw < 0 {
			strand = model.StrandMinus
		}
		length, err := strconv.Atoi(fields[9])
		if err != nil {
			return nil, fmt.Errorf("gene catalog line %d: bad length %q: %w", lineNo, fields[9], err)
		}
		gc, err := strconv.ParseFloat(fields[12], 64)
		if err != nil {
			return nil, fmt.Errorf("gene catalog line %d: bad GC %q: %w", lineNo, fields[12], err)
		}
		deltaGC, err := strconv.ParseFloat(fields[13], 64)
		if err != nil {
			return nil, fmt.Errorf("gene catalog line %d: bad delta_GC %q: %w", lineNo, fields[13], err)
		}

		feat := fields[5]
		if feat != model.FeatCDS {
			pnumCDS = -1
		}

		genes = append(genes, model.Gene{
			Pid:      model.Pid(fields[2]),
			Sp:       model.SpeciesID(fields[0]),
			GPart:    fields[1],
			PnumAll:  pnumAll,
			PnumCDS:  pnumCDS,
			LocStart: locStart,
			LocEnd:   locEnd,
			Strand:   strand,
			Feat:     feat,
			Length:   length,
			Product:  fields[11],
			GC:       gc,
			DeltaGC:  deltaGC,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading gene catalog: %w", err)
	}
	return genes, nil
}

// ParseGenomeMeta reads the optional genome metadata file (§6.3):
// abbr, species, strain, taxonomy, GC.
func ParseGenomeMeta(r io.Reader) ([]GenomeMeta, error) {
	scanner := bufio.NewScanner(r)
	var out []GenomeMeta
	sawHeader := false
	lineNo := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		if line == "" {
			continue
		}
		if !sawHeader {
			sawHeader = true
			continue
		}
		fields := splitFields(line)
		if len(fields) < 5 {
			return nil, fmt.Errorf("genome metadata line %d: expected 5 columns, got %d", lineNo, len(fields))
		}
		gc, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("genome metadata line %d: bad GC %q: %w", lineNo, fields[4], err)
		}
		out = append(out, GenomeMeta{
			Abbr:     fields[0],
			Species:  fields[1],
			Strain:   fields[2],
			Taxonomy: fields[3],
			GC:       gc,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading genome metadata: %w", err)
	}
	return out, nil
}

// ParseOrthoPairs reads the ortholog intermediate file (§6.4):
// header `oid, pid1, pid2, o_ident, o_alen`.
func ParseOrthoPairs(r io.Reader) ([]model.OrthoPair, error) {
	scanner := bufio.NewScanner(r)
	var out []model.OrthoPair
	sawHeader := false
	lineNo := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		if line == "" {
			continue
		}
		if !sawHeader {
			sawHeader = true
			continue
		}
		fields := splitFields(line)
		if len(fields) < 5 {
			return nil, fmt.Errorf("ortholog pairs line %d: expected 5 columns, got %d", lineNo, len(fields))
		}
		oid, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("ortholog pairs line %d: bad oid %q: %w", lineNo, fields[0], err)
		}
		ident, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("ortholog pairs line %d: bad o_ident %q: %w", lineNo, fields[3], err)
		}
		alen, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("ortholog pairs line %d: bad o_alen %q: %w", lineNo, fields[4], err)
		}
		out = append(out, model.OrthoPair{
			Oid:    oid,
			Pid1:   model.Pid(fields[1]),
			Pid2:   model.Pid(fields[2]),
			OIdent: ident,
			OAlen:  alen,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ortholog pairs: %w", err)
	}
	return out, nil
}

// ParseParalogPairs reads the paralog intermediate file (§6.5):
// `pid<TAB>n<TAB>"subj (id%), ..."`.
func ParseParalogPairs(r io.Reader) ([]ParalogEntry, error) {
	scanner := bufio.NewScanner(r)
	var out []ParalogEntry
	lineNo := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		if line == "" {
			continue
		}
		fields := splitFields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("paralog pairs line %d: expected 3 columns, got %d", lineNo, len(fields))
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("paralog pairs line %d: bad count %q: %w", lineNo, fields[1], err)
		}
		out = append(out, ParalogEntry{
			Pid:  model.Pid(fields[0]),
			N:    n,
			Text: fields[2],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading paralog pairs: %w", err)
	}
	return out, nil
}
