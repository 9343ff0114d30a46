package block

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/syntruptor/syntctl/internal/logging"
	"github.com/syntruptor/syntctl/internal/model"
	"github.com/syntruptor/syntctl/internal/store"
)

// Run executes the block finder stage end to end against the store.
func Run(ctx context.Context, s *store.Store, p Params) error {
	done := logging.StageTimer("block-finder")

	rows, err := loadOrthoRows(ctx, s)
	if err != nil {
		return err
	}
	rowsByOid := make(map[int]OrthoRow, len(rows))
	for _, r := range rows {
		rowsByOid[r.Oid] = r
	}

	links, noblock := FindPairLinks(rows, p)
	blocks := Extend(links, rowsByOid)
	for i := range blocks {
		blocks[i].BlockID = i + 1
	}

	if err := s.EnsurePairsSchema(ctx); err != nil {
		return err
	}
	if err := s.EnsureBlocksSchema(ctx); err != nil {
		return err
	}

	if err := writeNoBlock(ctx, s, noblock); err != nil {
		return err
	}
	if err := writePairs(ctx, s, links); err != nil {
		return err
	}
	if err := writeBlocks(ctx, s, blocks); err != nil {
		return err
	}

	done(len(blocks))
	return nil
}

func loadOrthoRows(ctx context.Context, s *store.Store) ([]OrthoRow, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT oid, sp1, sp2, gpart1, gpart2, pnum_cds1, pnum_cds2, pnum_order1, pnum_order2
		FROM orthos_all
	`)
	if err != nil {
		return nil, fmt.Errorf("query orthos_all: %w", err)
	}
	defer rows.Close()

	var out []OrthoRow
	for rows.Next() {
		var r OrthoRow
		var sp1, sp2 string
		if err := rows.Scan(&r.Oid, &sp1, &sp2, &r.GPart1, &r.GPart2, &r.PnumCDS1, &r.PnumCDS2, &r.PnumOrder1, &r.PnumOrder2); err != nil {
			return nil, fmt.Errorf("scan orthos_all: %w", err)
		}
		r.Sp1, r.Sp2 = model.SpeciesID(sp1), model.SpeciesID(sp2)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orthos_all: %w", err)
	}
	return out, nil
}

func writeNoBlock(ctx context.Context, s *store.Store, noblock map[int]bool) error {
	oids := make([]int, 0, len(noblock))
	for oid := range noblock {
		oids = append(oids, oid)
	}
	sort.Ints(oids)

	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE orthos SET noblock = 1 WHERE oid = ?`)
		if err != nil {
			return fmt.Errorf("prepare noblock update: %w", err)
		}
		defer stmt.Close()
		for _, oid := range oids {
			if _, err := stmt.ExecContext(ctx, oid); err != nil {
				return fmt.Errorf("mark noblock oid=%d: %w", oid, err)
			}
		}
		return nil
	})
}

func writePairs(ctx context.Context, s *store.Store, links []model.PairLink) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO pairs (sp1, sp2, oid_start, oid_end, direction, inblocks1, inblocks2)
			VALUES ((SELECT sp1 FROM orthos WHERE oid=?), (SELECT sp2 FROM orthos WHERE oid=?), ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare pairs insert: %w", err)
		}
		defer stmt.Close()
		for _, l := range links {
			if _, err := stmt.ExecContext(ctx, l.OidStart, l.OidStart, l.OidStart, l.OidEnd, l.Direction, l.InBlocks1, l.InBlocks2); err != nil {
				return fmt.Errorf("insert pair %d-%d: %w", l.OidStart, l.OidEnd, err)
			}
		}
		return nil
	})
}

func writeBlocks(ctx context.Context, s *store.Store, blocks []model.Block) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO blocks (blockid, sp1, sp2, oid_start, oid_end, direction, block_size, block_order1, block_order2)
			VALUES (?,?,?,?,?,?,?,?,?)
		`)
		if err != nil {
			return fmt.Errorf("prepare blocks insert: %w", err)
		}
		defer stmt.Close()
		for _, b := range blocks {
			if _, err := stmt.ExecContext(ctx,
				b.BlockID, string(b.Sp1), string(b.Sp2), b.OidStart, b.OidEnd,
				b.Direction, b.BlockSize, b.BlockOrder1, b.BlockOrder2,
			); err != nil {
				return fmt.Errorf("insert block %d: %w", b.BlockID, err)
			}
		}
		return nil
	})
}
