// Package gocexport writes the flat per-break text projection consumed
// by the downstream gene-order-conservation (GOC) scorer: a thin view
// over breaks/breaks_genes/breaks_ranking, not a reimplementation of GOC's
// numeric computation (out of scope per the core pipeline's contract).
package gocexport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/syntruptor/syntctl/internal/model"
	"github.com/syntruptor/syntctl/internal/store"
)

// Row is one exported line: a surviving break plus its side gene counts.
type Row struct {
	Sp1, Sp2     model.SpeciesID
	BreakID      int
	GeneCount1   int
	GeneCount2   int
	BreakSum     string
}

// Load reads every surviving break (one with a breaks_ranking row) and
// its side gene counts from the store.
func Load(ctx context.Context, s *store.Store) ([]Row, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT b.sp1, b.sp2, b.breakid, b.break_sum,
			(SELECT COUNT(*) FROM breaks_genes bg WHERE bg.breakid = b.breakid AND bg.side = 1),
			(SELECT COUNT(*) FROM breaks_genes bg WHERE bg.breakid = b.breakid AND bg.side = 2)
		FROM breaks b
		JOIN breaks_ranking r ON r.breakid = b.breakid
	`)
	if err != nil {
		return nil, fmt.Errorf("query breaks for goc export: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var sp1, sp2 string
		if err := rows.Scan(&sp1, &sp2, &r.BreakID, &r.BreakSum, &r.GeneCount1, &r.GeneCount2); err != nil {
			return nil, fmt.Errorf("scan goc export row: %w", err)
		}
		r.Sp1, r.Sp2 = model.SpeciesID(sp1), model.SpeciesID(sp2)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Sp1 != out[j].Sp1 {
			return out[i].Sp1 < out[j].Sp1
		}
		if out[i].Sp2 != out[j].Sp2 {
			return out[i].Sp2 < out[j].Sp2
		}
		return out[i].BreakID < out[j].BreakID
	})
	return out, nil
}

// Write emits the TSV: sp1, sp2, breakid, gene_count1, gene_count2, break_sum.
func Write(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			r.Sp1, r.Sp2, r.BreakID, r.GeneCount1, r.GeneCount2, r.BreakSum,
		); err != nil {
			return fmt.Errorf("write goc export row breakid=%d: %w", r.BreakID, err)
		}
	}
	return bw.Flush()
}
