package breakfinder

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/syntruptor/syntctl/internal/logging"
	"github.com/syntruptor/syntctl/internal/model"
	"github.com/syntruptor/syntctl/internal/store"
)

// Run executes the break finder stage end to end against the store.
func Run(ctx context.Context, s *store.Store, p Params) error {
	done := logging.StageTimer("break-finder")

	blocks, err := loadBlockRows(ctx, s)
	if err != nil {
		return err
	}

	resolved, orphans := Resolve(blocks, p)
	if orphans > 0 {
		logging.Warn(Summary(orphans))
	}

	if err := s.EnsureBreaksSchema(ctx); err != nil {
		return err
	}
	if err := writeBreaks(ctx, s, resolved); err != nil {
		return err
	}
	if err := s.RebuildProjections(ctx); err != nil {
		return err
	}

	done(len(resolved))
	return nil
}

func loadBlockRows(ctx context.Context, s *store.Store) ([]BlockRow, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT blockid, sp1, sp2, gpart1, gpart2, direction, block_order1,
			start_pid1, end_pid1, start_pid2, end_pid2,
			pnum_cds_start1, pnum_cds_end1, pnum_cds_start2, pnum_cds_end2
		FROM blocks_all
	`)
	if err != nil {
		return nil, fmt.Errorf("query blocks_all: %w", err)
	}
	defer rows.Close()

	var out []BlockRow
	for rows.Next() {
		var b BlockRow
		var sp1, sp2, startPid1, endPid1, startPid2, endPid2 string
		if err := rows.Scan(
			&b.BlockID, &sp1, &sp2, &b.GPart1, &b.GPart2, &b.Direction, &b.BlockOrder1,
			&startPid1, &endPid1, &startPid2, &endPid2,
			&b.PnumCDSStart1, &b.PnumCDSEnd1, &b.PnumCDSStart2, &b.PnumCDSEnd2,
		); err != nil {
			return nil, fmt.Errorf("scan blocks_all: %w", err)
		}
		b.Sp1, b.Sp2 = model.SpeciesID(sp1), model.SpeciesID(sp2)
		b.StartPid1, b.EndPid1 = model.Pid(startPid1), model.Pid(endPid1)
		b.StartPid2, b.EndPid2 = model.Pid(startPid2), model.Pid(endPid2)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks_all: %w", err)
	}
	return out, nil
}

// writeBreaks inserts every break with opposite left NULL, then fills in
// opposite in a second pass so the self-referencing foreign key never
// points at a row that does not exist yet.
func writeBreaks(ctx context.Context, s *store.Store, resolved []Resolved) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		insert, err := tx.PrepareContext(ctx, `
			INSERT INTO breaks (breakid, sp1, sp2, left_block, right_block, direction,
				break_size1, break_size2, inblocks1, inblocks2, opposite, break_sum)
			VALUES (?,?,?,?,?,?,?,?,?,?,NULL,?)
		`)
		if err != nil {
			return fmt.Errorf("prepare breaks insert: %w", err)
		}
		defer insert.Close()
		for _, r := range resolved {
			b := r.Break
			if _, err := insert.ExecContext(ctx,
				b.BreakID, string(b.Sp1), string(b.Sp2), b.LeftBlock, b.RightBlock, b.Direction,
				b.BreakSize1, b.BreakSize2, b.InBlocks1, b.InBlocks2, b.BreakSum,
			); err != nil {
				return fmt.Errorf("insert break %d: %w", b.BreakID, err)
			}
		}

		setOpposite, err := tx.PrepareContext(ctx, `UPDATE breaks SET opposite = ? WHERE breakid = ?`)
		if err != nil {
			return fmt.Errorf("prepare opposite update: %w", err)
		}
		defer setOpposite.Close()
		for _, r := range resolved {
			if r.Break.Opposite == 0 {
				continue
			}
			if _, err := setOpposite.ExecContext(ctx, r.Break.Opposite, r.Break.BreakID); err != nil {
				return fmt.Errorf("set opposite for break %d: %w", r.Break.BreakID, err)
			}
		}
		return nil
	})
}
