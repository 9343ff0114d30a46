package reorder

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/syntruptor/syntctl/internal/logging"
	"github.com/syntruptor/syntctl/internal/model"
	"github.com/syntruptor/syntctl/internal/store"
)

// Run reorders every fragmented (multi-part) genome against the
// complete reference genome with which it shares the most orthologs.
func Run(ctx context.Context, s *store.Store, p Params) error {
	done := logging.StageTimer("reorder")

	partCounts, err := loadPartCounts(ctx, s)
	if err != nil {
		return err
	}

	var fragmented, complete []model.SpeciesID
	for sp, n := range partCounts {
		if n > 1 {
			fragmented = append(fragmented, sp)
		} else {
			complete = append(complete, sp)
		}
	}
	sort.Slice(fragmented, func(i, j int) bool { return fragmented[i] < fragmented[j] })
	sort.Slice(complete, func(i, j int) bool { return complete[i] < complete[j] })

	if len(complete) == 0 {
		done(0)
		return nil
	}

	total := 0
	for _, sample := range fragmented {
		ref, err := bestReference(ctx, s, sample, complete)
		if err != nil {
			return err
		}
		if ref == "" {
			continue
		}
		n, err := reorderSample(ctx, s, sample, ref, p)
		if err != nil {
			return err
		}
		total += n
	}

	if total > 0 {
		if err := s.RebuildProjections(ctx); err != nil {
			return err
		}
	}

	done(total)
	return nil
}

// RunManual reorders a single named sample against a single named
// reference, skipping the automatic best-reference selection (the
// `-m model -s sample` command-line mode, mutually exclusive with -a).
func RunManual(ctx context.Context, s *store.Store, sample, reference model.SpeciesID, p Params) error {
	done := logging.StageTimer("reorder-manual")

	n, err := reorderSample(ctx, s, sample, reference, p)
	if err != nil {
		return err
	}
	if n > 0 {
		if err := s.RebuildProjections(ctx); err != nil {
			return err
		}
	}

	done(n)
	return nil
}

func loadPartCounts(ctx context.Context, s *store.Store) (map[model.SpeciesID]int, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT sp, COUNT(*) FROM genome_parts GROUP BY sp`)
	if err != nil {
		return nil, fmt.Errorf("query genome_parts: %w", err)
	}
	defer rows.Close()

	out := make(map[model.SpeciesID]int)
	for rows.Next() {
		var sp string
		var n int
		if err := rows.Scan(&sp, &n); err != nil {
			return nil, fmt.Errorf("scan genome_parts: %w", err)
		}
		out[model.SpeciesID(sp)] = n
	}
	return out, rows.Err()
}

// bestReference picks the complete genome sharing the most orthologs
// with sample, breaking ties by species name ascending.
func bestReference(ctx context.Context, s *store.Store, sample model.SpeciesID, complete []model.SpeciesID) (model.SpeciesID, error) {
	counts := make(map[model.SpeciesID]int)
	rows, err := s.DB.QueryContext(ctx, `
		SELECT CASE WHEN sp1 = ? THEN sp2 ELSE sp1 END AS other, COUNT(*)
		FROM orthos WHERE sp1 = ? OR sp2 = ?
		GROUP BY other
	`, string(sample), string(sample), string(sample))
	if err != nil {
		return "", fmt.Errorf("query orthos for %s: %w", sample, err)
	}
	defer rows.Close()
	for rows.Next() {
		var other string
		var n int
		if err := rows.Scan(&other, &n); err != nil {
			return "", fmt.Errorf("scan orthos counts: %w", err)
		}
		counts[model.SpeciesID(other)] = n
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	isComplete := make(map[model.SpeciesID]bool, len(complete))
	for _, sp := range complete {
		isComplete[sp] = true
	}

	var best model.SpeciesID
	bestCount := -1
	candidates := make([]model.SpeciesID, 0, len(counts))
	for sp := range counts {
		if isComplete[sp] {
			candidates = append(candidates, sp)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	for _, sp := range candidates {
		if counts[sp] > bestCount {
			bestCount = counts[sp]
			best = sp
		}
	}
	return best, nil
}

func reorderSample(ctx context.Context, s *store.Store, sample, ref model.SpeciesID, p Params) (int, error) {
	genesByPart, err := loadSampleGenes(ctx, s, sample)
	if err != nil {
		return 0, err
	}
	orthoPnum, err := loadOrthoPnumInRef(ctx, s, sample, ref)
	if err != nil {
		return 0, err
	}

	assignments := Reorder(genesByPart, orthoPnum, p)

	if err := writeAssignments(ctx, s, assignments); err != nil {
		return 0, err
	}
	if err := refreshGenomeParts(ctx, s, sample); err != nil {
		return 0, err
	}
	return len(assignments), nil
}

func loadSampleGenes(ctx context.Context, s *store.Store, sp model.SpeciesID) (map[string][]GeneRow, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT pid, gpart, pnum_all FROM genes WHERE sp = ?`, string(sp))
	if err != nil {
		return nil, fmt.Errorf("query genes for %s: %w", sp, err)
	}
	defer rows.Close()

	out := make(map[string][]GeneRow)
	for rows.Next() {
		var pid, gpart string
		var pnumAll int
		if err := rows.Scan(&pid, &gpart, &pnumAll); err != nil {
			return nil, fmt.Errorf("scan genes: %w", err)
		}
		out[gpart] = append(out[gpart], GeneRow{Pid: model.Pid(pid), GPart: gpart, PnumAll: pnumAll})
	}
	return out, rows.Err()
}

func loadOrthoPnumInRef(ctx context.Context, s *store.Store, sample, ref model.SpeciesID) (map[model.Pid]int, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT o.pid1, o.pid2, o.sp1, o.sp2, g1.pnum_all, g2.pnum_all
		FROM orthos o
		JOIN genes g1 ON g1.pid = o.pid1
		JOIN genes g2 ON g2.pid = o.pid2
		WHERE (o.sp1 = ? AND o.sp2 = ?) OR (o.sp1 = ? AND o.sp2 = ?)
	`, string(sample), string(ref), string(ref), string(sample))
	if err != nil {
		return nil, fmt.Errorf("query orthos %s-%s: %w", sample, ref, err)
	}
	defer rows.Close()

	out := make(map[model.Pid]int)
	for rows.Next() {
		var pid1, pid2, sp1, sp2 string
		var pnumAll1, pnumAll2 int
		if err := rows.Scan(&pid1, &pid2, &sp1, &sp2, &pnumAll1, &pnumAll2); err != nil {
			return nil, fmt.Errorf("scan orthos: %w", err)
		}
		if sp1 == string(sample) {
			out[model.Pid(pid1)] = pnumAll2
		} else {
			out[model.Pid(pid2)] = pnumAll1
		}
	}
	return out, rows.Err()
}

func writeAssignments(ctx context.Context, s *store.Store, assignments []Assignment) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE genes SET pnum_display = ? WHERE pid = ?`)
		if err != nil {
			return fmt.Errorf("prepare pnum_display update: %w", err)
		}
		defer stmt.Close()
		for _, a := range assignments {
			if _, err := stmt.ExecContext(ctx, a.PnumDisplay, string(a.Pid)); err != nil {
				return fmt.Errorf("update pnum_display for %s: %w", a.Pid, err)
			}
		}
		return nil
	})
}

func refreshGenomeParts(ctx context.Context, s *store.Store, sp model.SpeciesID) error {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT gpart, MIN(pnum_display), MAX(pnum_display) FROM genes WHERE sp = ? GROUP BY gpart
	`, string(sp))
	if err != nil {
		return fmt.Errorf("query part ranges for %s: %w", sp, err)
	}
	defer rows.Close()

	type partRange struct {
		gpart    string
		min, max int
	}
	var ranges []partRange
	for rows.Next() {
		var pr partRange
		if err := rows.Scan(&pr.gpart, &pr.min, &pr.max); err != nil {
			return fmt.Errorf("scan part ranges: %w", err)
		}
		ranges = append(ranges, pr)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	maxDisplay := 0
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE genome_parts SET min_pnum = ?, max_pnum = ? WHERE sp = ? AND gpart = ?`)
		if err != nil {
			return fmt.Errorf("prepare genome_parts update: %w", err)
		}
		defer stmt.Close()
		for _, pr := range ranges {
			if _, err := stmt.ExecContext(ctx, pr.min, pr.max, string(sp), pr.gpart); err != nil {
				return fmt.Errorf("update genome_parts for %s/%s: %w", sp, pr.gpart, err)
			}
			if pr.max > maxDisplay {
				maxDisplay = pr.max
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE genomes SET max_pnum_display = ? WHERE sp = ?`, maxDisplay, string(sp)); err != nil {
			return fmt.Errorf("update genomes.max_pnum_display for %s: %w", sp, err)
		}
		return nil
	})
}
