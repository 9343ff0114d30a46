package breakgenes

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/syntruptor/syntctl/internal/logging"
	"github.com/syntruptor/syntctl/internal/model"
	"github.com/syntruptor/syntctl/internal/store"
)

type breakRow struct {
	BreakID                        int
	Sp1, Sp2                       model.SpeciesID
	Opposite                       int
	LeftPid1, RightPid1            model.Pid
	LeftPid2, RightPid2            model.Pid
}

// Run executes the break-gene extraction stage against the store.
func Run(ctx context.Context, s *store.Store) error {
	done := logging.StageTimer("break-genes")

	breaks, err := loadBreaks(ctx, s)
	if err != nil {
		return err
	}
	genesBySp, err := loadGenesBySpecies(ctx, s)
	if err != nil {
		return err
	}
	orthoOf, err := loadOrthoLookup(ctx, s)
	if err != nil {
		return err
	}
	geneInfo, err := loadGeneInfo(ctx, s)
	if err != nil {
		return err
	}

	byID := make(map[int]breakRow, len(breaks))
	for _, b := range breaks {
		byID[b.BreakID] = b
	}

	var rows []model.BreakGene
	for _, b := range breaks {
		span1 := BreakSpan{BreakID: b.BreakID, Sp: b.Sp1, GPart: geneInfo[b.LeftPid1].GPart, LeftPnum: geneInfo[b.LeftPid1].PnumAll, RightPnum: geneInfo[b.RightPid1].PnumAll}
		span2 := BreakSpan{BreakID: b.BreakID, Sp: b.Sp2, GPart: geneInfo[b.LeftPid2].GPart, LeftPnum: geneInfo[b.LeftPid2].PnumAll, RightPnum: geneInfo[b.RightPid2].PnumAll}

		opp, hasOpp := byID[b.Opposite]

		insideOpp2 := func(partner model.Pid) bool {
			if !hasOpp {
				return false
			}
			return pnumBetween(geneInfo[partner].PnumAll, geneInfo[opp.LeftPid2].PnumAll, geneInfo[opp.RightPid2].PnumAll) && geneInfo[partner].GPart == geneInfo[opp.LeftPid2].GPart
		}
		insideOpp1 := func(partner model.Pid) bool {
			if !hasOpp {
				return false
			}
			return pnumBetween(geneInfo[partner].PnumAll, geneInfo[opp.LeftPid1].PnumAll, geneInfo[opp.RightPid1].PnumAll) && geneInfo[partner].GPart == geneInfo[opp.LeftPid1].GPart
		}

		rows = append(rows, Extract(span1, 1, genesBySp[b.Sp1], orthoOf, insideOpp1)...)
		rows = append(rows, Extract(span2, 2, genesBySp[b.Sp2], orthoOf, insideOpp2)...)
	}

	if err := writeBreakGenes(ctx, s, rows); err != nil {
		return err
	}

	done(len(rows))
	return nil
}

func pnumBetween(v, a, b int) bool {
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	return v > lo && v < hi
}

func loadBreaks(ctx context.Context, s *store.Store) ([]breakRow, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT breakid, sp1, sp2, opposite, left_pid1, right_pid1, left_pid2, right_pid2
		FROM breaks_all
	`)
	if err != nil {
		return nil, fmt.Errorf("query breaks_all: %w", err)
	}
	defer rows.Close()

	var out []breakRow
	for rows.Next() {
		var b breakRow
		var sp1, sp2, l1, r1, l2, r2 string
		var opposite sql.NullInt64
		if err := rows.Scan(&b.BreakID, &sp1, &sp2, &opposite, &l1, &r1, &l2, &r2); err != nil {
			return nil, fmt.Errorf("scan breaks_all: %w", err)
		}
		b.Sp1, b.Sp2 = model.SpeciesID(sp1), model.SpeciesID(sp2)
		b.LeftPid1, b.RightPid1 = model.Pid(l1), model.Pid(r1)
		b.LeftPid2, b.RightPid2 = model.Pid(l2), model.Pid(r2)
		if opposite.Valid {
			b.Opposite = int(opposite.Int64)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func loadGenesBySpecies(ctx context.Context, s *store.Store) (map[model.SpeciesID][]GeneRow, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT pid, sp, gpart, pnum_all FROM genes`)
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()

	out := make(map[model.SpeciesID][]GeneRow)
	for rows.Next() {
		var pid, sp, gpart string
		var pnumAll int
		if err := rows.Scan(&pid, &sp, &gpart, &pnumAll); err != nil {
			return nil, fmt.Errorf("scan genes: %w", err)
		}
		spID := model.SpeciesID(sp)
		out[spID] = append(out[spID], GeneRow{Pid: model.Pid(pid), GPart: gpart, PnumAll: pnumAll})
	}
	return out, rows.Err()
}

type geneCoord struct {
	GPart   string
	PnumAll int
}

func loadGeneInfo(ctx context.Context, s *store.Store) (map[model.Pid]geneCoord, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT pid, gpart, pnum_all FROM genes`)
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()

	out := make(map[model.Pid]geneCoord)
	for rows.Next() {
		var pid, gpart string
		var pnumAll int
		if err := rows.Scan(&pid, &gpart, &pnumAll); err != nil {
			return nil, fmt.Errorf("scan genes: %w", err)
		}
		out[model.Pid(pid)] = geneCoord{GPart: gpart, PnumAll: pnumAll}
	}
	return out, rows.Err()
}

func loadOrthoLookup(ctx context.Context, s *store.Store) (OrthoLookup, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT pid1, pid2 FROM orthos`)
	if err != nil {
		return nil, fmt.Errorf("query orthos: %w", err)
	}
	defer rows.Close()

	partner := make(map[model.Pid]model.Pid)
	for rows.Next() {
		var p1, p2 string
		if err := rows.Scan(&p1, &p2); err != nil {
			return nil, fmt.Errorf("scan orthos: %w", err)
		}
		partner[model.Pid(p1)] = model.Pid(p2)
		partner[model.Pid(p2)] = model.Pid(p1)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return func(pid model.Pid) (model.Pid, bool) {
		p, ok := partner[pid]
		return p, ok
	}, nil
}

func writeBreakGenes(ctx context.Context, s *store.Store, rows []model.BreakGene) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO breaks_genes (breakid, pid, side, ortho, ortho_in)
			VALUES (?,?,?,?,?)
		`)
		if err != nil {
			return fmt.Errorf("prepare breaks_genes insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range rows {
			orthoIn := 0
			if r.OrthoIn {
				orthoIn = 1
			}
			if _, err := stmt.ExecContext(ctx, r.BreakID, string(r.Pid), r.Side, string(r.Ortho), orthoIn); err != nil {
				return fmt.Errorf("insert break gene break=%d pid=%s: %w", r.BreakID, r.Pid, err)
			}
		}
		return nil
	})
}
