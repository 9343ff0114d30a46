package breakgraph

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/syntruptor/syntctl/internal/logging"
	"github.com/syntruptor/syntctl/internal/model"
	"github.com/syntruptor/syntctl/internal/store"
)

// Run executes the break-graph analyzer stage against the store.
func Run(ctx context.Context, s *store.Store) error {
	done := logging.StageTimer("break-graph")

	breaks, err := loadBreaks(ctx, s)
	if err != nil {
		return err
	}

	graphs := Group(breaks)
	analyzed := make([]Graph, len(graphs))
	for i, g := range graphs {
		analyzed[i] = Analyze(g)
	}

	if err := writeGraphs(ctx, s, analyzed); err != nil {
		return err
	}

	done(len(analyzed))
	return nil
}

func loadBreaks(ctx context.Context, s *store.Store) ([]BreakInput, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT breakid, sp1, sp2, left_pid1, right_pid1, COALESCE(opposite, 0)
		FROM breaks_all
	`)
	if err != nil {
		return nil, fmt.Errorf("query breaks_all: %w", err)
	}
	defer rows.Close()

	var out []BreakInput
	for rows.Next() {
		var b BreakInput
		var sp1, sp2, left1, right1 string
		if err := rows.Scan(&b.BreakID, &sp1, &sp2, &left1, &right1, &b.Opposite); err != nil {
			return nil, fmt.Errorf("scan breaks_all: %w", err)
		}
		b.Sp1, b.Sp2 = model.SpeciesID(sp1), model.SpeciesID(sp2)
		b.LeftPid1, b.RightPid1 = model.Pid(left1), model.Pid(right1)
		out = append(out, b)
	}
	return out, rows.Err()
}

func writeGraphs(ctx context.Context, s *store.Store, graphs []Graph) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		edgeStmt, err := tx.PrepareContext(ctx, `INSERT INTO breaks_graph (graphid, from_name, to_name) VALUES (?,?,?)`)
		if err != nil {
			return fmt.Errorf("prepare breaks_graph insert: %w", err)
		}
		defer edgeStmt.Close()

		rankStmt, err := tx.PrepareContext(ctx, `UPDATE breaks_ranking SET cycle = ?, graphid = ? WHERE breakid = ?`)
		if err != nil {
			return fmt.Errorf("prepare ranking update: %w", err)
		}
		defer rankStmt.Close()

		for _, g := range graphs {
			for _, e := range g.Edges {
				if _, err := edgeStmt.ExecContext(ctx, g.GraphID, e.FromName, e.ToName); err != nil {
					return fmt.Errorf("insert graph edge %d: %w", g.GraphID, err)
				}
			}
			for _, b := range g.Breaks {
				if _, err := rankStmt.ExecContext(ctx, g.Cycle, g.GraphID, b.BreakID); err != nil {
					return fmt.Errorf("update ranking for break %d: %w", b.BreakID, err)
				}
			}
		}
		return nil
	})
}
