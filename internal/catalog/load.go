package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/syntruptor/syntctl/internal/logging"
	"github.com/syntruptor/syntctl/internal/model"
	"github.com/syntruptor/syntctl/internal/pipeline"
	"github.com/syntruptor/syntctl/internal/store"
)

// Input bundles everything the catalog loader stage consumes.
type Input struct {
	Genes      []model.Gene
	GenomeMeta []GenomeMeta
	OrthoPairs []model.OrthoPair
	Paralogs   []ParalogEntry
}

// Load writes genes/genomes/genome_parts/orthos (§4.3): merges paralog
// annotations onto genes, computes pnum_display (initialized to
// pnum_all), and the per-species-pair ortholog orderings pnum_order1/2.
func Load(ctx context.Context, s *store.Store, in Input) error {
	done := logging.StageTimer("catalog-loader")

	if err := s.EnsureCatalogSchema(ctx); err != nil {
		return err
	}

	genes := mergeParalogs(in.Genes, in.Paralogs)

	if err := insertGenes(ctx, s, genes); err != nil {
		return err
	}
	if err := insertGenomeParts(ctx, s, genes); err != nil {
		return err
	}
	if err := insertGenomes(ctx, s, genes, in.GenomeMeta); err != nil {
		return err
	}

	if err := s.EnsureOrthosSchema(ctx); err != nil {
		return err
	}

	geneBySp := make(map[model.Pid]model.SpeciesID, len(genes))
	geneByPidCDS := make(map[model.Pid]int, len(genes))
	for _, g := range genes {
		geneBySp[g.Pid] = g.Sp
		geneByPidCDS[g.Pid] = g.PnumCDS
	}

	orthos := make([]model.OrthoPair, 0, len(in.OrthoPairs)*2)
	for _, o := range in.OrthoPairs {
		sp1, ok1 := geneBySp[o.Pid1]
		sp2, ok2 := geneBySp[o.Pid2]
		if !ok1 {
			return pipeline.NewContractError("gene", string(o.Pid1), "referenced by ortholog pair but absent from gene catalog")
		}
		if !ok2 {
			return pipeline.NewContractError("gene", string(o.Pid2), "referenced by ortholog pair but absent from gene catalog")
		}
		o.Sp1 = sp1
		o.Sp2 = sp2
		// Stored bidirectionally: the block/break finders bucket purely on
		// (sp1,sp2), and the break finder's opposite matching (§4.5) needs
		// the (sp2,sp1) reading of every pair to exist as its own bucket,
		// not just the ortholog builder's single canonical direction.
		orthos = append(orthos, o, reverseOrtho(o))
	}

	computeOrthoOrderings(orthos, geneByPidCDS)
	for i := range orthos {
		orthos[i].Oid = i + 1
	}

	if err := insertOrthos(ctx, s, orthos); err != nil {
		return err
	}

	done(len(genes))
	return nil
}

// mergeParalogs folds paralog counts/strings onto the matching genes,
// returning a new slice (the input is left untouched).
func mergeParalogs(genes []model.Gene, paralogs []ParalogEntry) []model.Gene {
	byPid := make(map[model.Pid]ParalogEntry, len(paralogs))
	for _, p := range paralogs {
		byPid[p.Pid] = p
	}

	out := make([]model.Gene, len(genes))
	copy(out, genes)
	for i := range out {
		if p, ok := byPid[out[i].Pid]; ok {
			out[i].ParalogsN = p.N
			out[i].Paralogs = p.Text
		}
		out[i].PnumDisplay = out[i].PnumAll
	}
	return out
}

func insertGenes(ctx context.Context, s *store.Store, genes []model.Gene) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO genes (
				pid, sp, gpart, pnum_all, pnum_cds, pnum_display,
				loc_start, loc_end, strand, feat, product, gc, delta_gc,
				paralogs_n, paralogs
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		`)
		if err != nil {
			return fmt.Errorf("prepare gene insert: %w", err)
		}
		defer stmt.Close()

		for _, g := range genes {
			if _, err := stmt.ExecContext(ctx,
				string(g.Pid), string(g.Sp), g.GPart, g.PnumAll, g.PnumCDS, g.PnumDisplay,
				g.LocStart, g.LocEnd, int(g.Strand), g.Feat, g.Product, g.GC, g.DeltaGC,
				g.ParalogsN, g.Paralogs,
			); err != nil {
				return fmt.Errorf("insert gene %s: %w", g.Pid, err)
			}
		}
		return nil
	})
}

func insertGenomeParts(ctx context.Context, s *store.Store, genes []model.Gene) error {
	type key struct {
		sp    model.SpeciesID
		gpart string
	}
	ranges := make(map[key]*model.GenomePart)
	for _, g := range genes {
		k := key{g.Sp, g.GPart}
		gp, ok := ranges[k]
		if !ok {
			gp = &model.GenomePart{Sp: g.Sp, GPart: g.GPart, MinPnum: g.PnumDisplay, MaxPnum: g.PnumDisplay}
			ranges[k] = gp
			continue
		}
		if g.PnumDisplay < gp.MinPnum {
			gp.MinPnum = g.PnumDisplay
		}
		if g.PnumDisplay > gp.MaxPnum {
			gp.MaxPnum = g.PnumDisplay
		}
	}

	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO genome_parts (sp, gpart, min_pnum, max_pnum) VALUES (?,?,?,?)`)
		if err != nil {
			return fmt.Errorf("prepare genome_parts insert: %w", err)
		}
		defer stmt.Close()
		for _, gp := range ranges {
			if _, err := stmt.ExecContext(ctx, string(gp.Sp), gp.GPart, gp.MinPnum, gp.MaxPnum); err != nil {
				return fmt.Errorf("insert genome_parts %s/%s: %w", gp.Sp, gp.GPart, err)
			}
		}
		return nil
	})
}

func insertGenomes(ctx context.Context, s *store.Store, genes []model.Gene, meta []GenomeMeta) error {
	maxDisplay := make(map[model.SpeciesID]int)
	gcSum := make(map[model.SpeciesID]float64)
	gcCount := make(map[model.SpeciesID]int)
	for _, g := range genes {
		if g.PnumDisplay > maxDisplay[g.Sp] {
			maxDisplay[g.Sp] = g.PnumDisplay
		}
		gcSum[g.Sp] += g.GC
		gcCount[g.Sp]++
	}

	metaByAbbr := make(map[model.SpeciesID]GenomeMeta, len(meta))
	for _, m := range meta {
		metaByAbbr[model.SpeciesID(m.Abbr)] = m
	}

	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO genomes (sp, name, gc, max_pnum_display) VALUES (?,?,?,?)`)
		if err != nil {
			return fmt.Errorf("prepare genomes insert: %w", err)
		}
		defer stmt.Close()

		for sp, md := range maxDisplay {
			name := string(sp)
			gc := 0.0
			if gcCount[sp] > 0 {
				gc = gcSum[sp] / float64(gcCount[sp])
			}
			if m, ok := metaByAbbr[sp]; ok {
				name = m.Species
				gc = m.GC
			}
			if _, err := stmt.ExecContext(ctx, string(sp), name, gc, md); err != nil {
				return fmt.Errorf("insert genome %s: %w", sp, err)
			}
		}
		return nil
	})
}

func insertOrthos(ctx context.Context, s *store.Store, orthos []model.OrthoPair) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO orthos (oid, pid1, pid2, sp1, sp2, o_ident, o_alen, pnum_order1, pnum_order2, noblock)
			VALUES (?,?,?,?,?,?,?,?,?,0)
		`)
		if err != nil {
			return fmt.Errorf("prepare orthos insert: %w", err)
		}
		defer stmt.Close()

		for _, o := range orthos {
			if _, err := stmt.ExecContext(ctx,
				o.Oid, string(o.Pid1), string(o.Pid2), string(o.Sp1), string(o.Sp2),
				o.OIdent, o.OAlen, o.PnumOrder1, o.PnumOrder2,
			); err != nil {
				return fmt.Errorf("insert ortho oid=%d: %w", o.Oid, err)
			}
		}
		return nil
	})
}

// reverseOrtho returns the (sp2,sp1) reading of o, pid columns swapped to
// match.
func reverseOrtho(o model.OrthoPair) model.OrthoPair {
	return model.OrthoPair{
		Pid1:   o.Pid2,
		Pid2:   o.Pid1,
		Sp1:    o.Sp2,
		Sp2:    o.Sp1,
		OIdent: o.OIdent,
		OAlen:  o.OAlen,
	}
}

// computeOrthoOrderings assigns, per species pair (sp1,sp2), two 1-based
// rankings over the ortholog pairs: pnum_order1 orders by pnum_CDS along
// genome1, pnum_order2 orders by pnum_CDS along genome2 (§4.3, §4.4's
// building block).
func computeOrthoOrderings(orthos []model.OrthoPair, pnumCDS map[model.Pid]int) {
	type pairKey struct {
		sp1, sp2 model.SpeciesID
	}
	buckets := make(map[pairKey][]*model.OrthoPair)
	for i := range orthos {
		k := pairKey{orthos[i].Sp1, orthos[i].Sp2}
		buckets[k] = append(buckets[k], &orthos[i])
	}

	for _, bucket := range buckets {
		byPid1 := append([]*model.OrthoPair(nil), bucket...)
		sort.Slice(byPid1, func(i, j int) bool {
			ci, cj := pnumCDS[byPid1[i].Pid1], pnumCDS[byPid1[j].Pid1]
			if ci != cj {
				return ci < cj
			}
			return byPid1[i].Pid1 < byPid1[j].Pid1
		})
		for rank, o := range byPid1 {
			o.PnumOrder1 = rank + 1
		}

		byPid2 := append([]*model.OrthoPair(nil), bucket...)
		sort.Slice(byPid2, func(i, j int) bool {
			ci, cj := pnumCDS[byPid2[i].Pid2], pnumCDS[byPid2[j].Pid2]
			if ci != cj {
				return ci < cj
			}
			return byPid2[i].Pid2 < byPid2[j].Pid2
		})
		for rank, o := range byPid2 {
			o.PnumOrder2 = rank + 1
		}
	}
}
