// Package paralog implements the paralog builder (§4.2): within-species
// hits above threshold, reduced to a per-query count and annotation
// string.
package paralog

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/syntruptor/syntctl/internal/catalog"
	"github.com/syntruptor/syntctl/internal/model"
	"github.com/syntruptor/syntctl/internal/ortholog"
	"github.com/syntruptor/syntctl/internal/pipeline"
)

// Params tunes the paralog builder's filters (§4.2).
type Params struct {
	MinAlenFrac float64 // fraction of the shorter CDS in amino acids, default 0.5
	MinIdentity float64 // percent 0..100, default 40 (para_id)
	MaxEvalue   float64 // default 1e-20
}

func DefaultParams() Params {
	return Params{
		MinAlenFrac: 0.5,
		MinIdentity: 40,
		MaxEvalue:   1e-20,
	}
}

// MaxMissingWarnings bounds how many hit-references-unknown-pid warnings
// accumulate before the stage becomes fatal (§7).
const MaxMissingWarnings = 10

// Build reduces same-species hits to per-query paralog annotations.
// Missing gene references are soft warnings up to MaxMissingWarnings,
// then fatal.
func Build(hits []ortholog.Hit, genes map[string]ortholog.GeneInfo, p Params) ([]catalog.ParalogEntry, error) {
	warnings := pipeline.NewDataQualityWarnings(MaxMissingWarnings)

	// maxIdentity[query][subject] = best identity seen for that ordered pair.
	maxIdentity := make(map[string]map[string]float64)

	for _, h := range hits {
		if h.Query == h.Subject {
			continue
		}
		q, ok := genes[h.Query]
		if !ok {
			if err := warnings.Add(fmt.Errorf("paralog hit references unknown query pid %q", h.Query)); err != nil {
				return nil, err
			}
			continue
		}
		s, ok := genes[h.Subject]
		if !ok {
			if err := warnings.Add(fmt.Errorf("paralog hit references unknown subject pid %q", h.Subject)); err != nil {
				return nil, err
			}
			continue
		}
		if q.Sp != s.Sp {
			continue
		}
		if h.EValue > p.MaxEvalue {
			continue
		}
		if h.PctIdent < p.MinIdentity {
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

		bySubject, ok := maxIdentity[h.Query]
		if !ok {
			bySubject = make(map[string]float64)
			maxIdentity[h.Query] = bySubject
		}
		if cur, ok := bySubject[h.Subject]; !ok || h.PctIdent > cur {
			bySubject[h.Subject] = h.PctIdent
		}
	}

	queries := make([]string, 0, len(maxIdentity))
	for q := range maxIdentity {
		queries = append(queries, q)
	}
	sort.Strings(queries)

	out := make([]catalog.ParalogEntry, 0, len(queries))
	for _, q := range queries {
		subjects := make([]string, 0, len(maxIdentity[q]))
		for s := range maxIdentity[q] {
			subjects = append(subjects, s)
		}
		sort.Slice(subjects, func(i, j int) bool {
			si, sj := maxIdentity[q][subjects[i]], maxIdentity[q][subjects[j]]
			if si != sj {
				return si > sj
			}
			return subjects[i] < subjects[j]
		})

		text := formatText(subjects, maxIdentity[q])
		out = append(out, catalog.ParalogEntry{
			Pid:  model.Pid(q),
			N:    len(subjects),
			Text: text,
		})
	}
	return out, nil
}

func formatText(subjects []string, identity map[string]float64) string {
	var buf []byte
	for i, s := range subjects {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, fmt.Sprintf("%s (%.1f%%)", s, identity[s])...)
	}
	return string(buf)
}

// WriteParalogs emits the paralog intermediate file (§6.5):
// `pid<TAB>n<TAB>"subj (id%), ..."`.
func WriteParalogs(w io.Writer, entries []catalog.ParalogEntry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%q\n", e.Pid, e.N, e.Text); err != nil {
			return fmt.Errorf("write paralog entry %s: %w", e.Pid, err)
		}
	}
	return bw.Flush()
}
