package ranker

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/syntruptor/syntctl/internal/logging"
	"github.com/syntruptor/syntctl/internal/model"
	"github.com/syntruptor/syntctl/internal/store"
)

// Params tunes whether bad-break pruning runs (§4.7, `-C`/clean).
type Params struct {
	Clean bool
}

// Run executes the ranker stage against the store.
func Run(ctx context.Context, s *store.Store, p Params) error {
	done := logging.StageTimer("ranker")

	breaks, err := loadBreaks(ctx, s)
	if err != nil {
		return err
	}
	genesByBreakSide, err := loadBreakGenes(ctx, s)
	if err != nil {
		return err
	}

	var rankings []model.BreakRanking
	var toPrune []int

	for _, b := range breaks {
		side1 := ScoreSide(genesByBreakSide[sideKey{b.BreakID, 1}])
		side2 := ScoreSide(genesByBreakSide[sideKey{b.BreakID, 2}])
		r := Aggregate(b.BreakID, side1, side2)

		if p.Clean && ShouldPrune(r, b.BreakSize1, b.BreakSize2) {
			toPrune = append(toPrune, b.BreakID)
			continue
		}
		rankings = append(rankings, r)
	}
	sort.Ints(toPrune)

	if len(toPrune) > 0 {
		if err := pruneBreaks(ctx, s, toPrune); err != nil {
			return err
		}
		logging.Warn("pruned low-quality breaks", zap.Int("count", len(toPrune)))
		if err := s.RebuildProjections(ctx); err != nil {
			return err
		}
	}

	if err := writeRankings(ctx, s, rankings); err != nil {
		return err
	}

	done(len(rankings))
	return nil
}

type breakRow struct {
	BreakID    int
	BreakSize1 int
	BreakSize2 int
}

type sideKey struct {
	BreakID int
	Side    int
}

func loadBreaks(ctx context.Context, s *store.Store) ([]breakRow, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT breakid, break_size1, break_size2 FROM breaks`)
	if err != nil {
		return nil, fmt.Errorf("query breaks: %w", err)
	}
	defer rows.Close()

	var out []breakRow
	for rows.Next() {
		var b breakRow
		if err := rows.Scan(&b.BreakID, &b.BreakSize1, &b.BreakSize2); err != nil {
			return nil, fmt.Errorf("scan breaks: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func loadBreakGenes(ctx context.Context, s *store.Store) (map[sideKey][]GeneRow, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT bg.breakid, bg.side, bg.ortho, g.feat, g.product, g.paralogs_n, g.delta_gc, (g.loc_end - g.loc_start + 1)
		FROM breaks_genes bg
		JOIN genes g ON g.pid = bg.pid
		ORDER BY bg.breakid, bg.side, g.pnum_all
	`)
	if err != nil {
		return nil, fmt.Errorf("query breaks_genes: %w", err)
	}
	defer rows.Close()

	out := make(map[sideKey][]GeneRow)
	for rows.Next() {
		var breakID, side int
		var ortho, feat, product string
		var paralogsN int
		var deltaGC float64
		var length int
		if err := rows.Scan(&breakID, &side, &ortho, &feat, &product, &paralogsN, &deltaGC, &length); err != nil {
			return nil, fmt.Errorf("scan breaks_genes: %w", err)
		}
		k := sideKey{breakID, side}
		out[k] = append(out[k], GeneRow{
			Feat: feat, Product: product, ParalogsN: paralogsN,
			DeltaGC: deltaGC, Length: length, HasOrtho: ortho != "",
		})
	}
	return out, rows.Err()
}

func writeRankings(ctx context.Context, s *store.Store, rankings []model.BreakRanking) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO breaks_ranking (breakid, real_size1, real_size2, trna_both, trna_both_ext,
				content1, content2, paralogs1, paralogs2, delta_gc1, delta_gc2, cycle, graphid)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,0,0)
		`)
		if err != nil {
			return fmt.Errorf("prepare breaks_ranking insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range rankings {
			if _, err := stmt.ExecContext(ctx,
				r.BreakID, r.RealSize1, r.RealSize2, r.TRNABoth, r.TRNABothExt,
				r.Content1, r.Content2, r.Paralogs1, r.Paralogs2, r.DeltaGC1, r.DeltaGC2,
			); err != nil {
				return fmt.Errorf("insert break ranking %d: %w", r.BreakID, err)
			}
		}
		return nil
	})
}

func pruneBreaks(ctx context.Context, s *store.Store, breakIDs []int) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `DELETE FROM breaks WHERE breakid = ?`)
		if err != nil {
			return fmt.Errorf("prepare break delete: %w", err)
		}
		defer stmt.Close()
		for _, id := range breakIDs {
			if _, err := stmt.ExecContext(ctx, id); err != nil {
				return fmt.Errorf("delete break %d: %w", id, err)
			}
		}
		return nil
	})
}
