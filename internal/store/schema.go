package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Each Ensure* function drops and recreates the tables/views owned by one
// stage, per the idempotent-recovery discipline of §7.

const catalogSchema = `
DROP TABLE IF EXISTS genome_parts;
DROP TABLE IF EXISTS genomes;
DROP TABLE IF EXISTS genes;

CREATE TABLE genes (
	pid          TEXT PRIMARY KEY,
	sp           TEXT NOT NULL,
	gpart        TEXT NOT NULL,
	pnum_all     INTEGER NOT NULL,
	pnum_cds     INTEGER NOT NULL,
	pnum_display INTEGER NOT NULL,
	loc_start    INTEGER NOT NULL,
	loc_end      INTEGER NOT NULL,
	strand       INTEGER NOT NULL,
	feat         TEXT NOT NULL,
	product      TEXT NOT NULL DEFAULT '',
	gc           REAL NOT NULL DEFAULT 0,
	delta_gc     REAL NOT NULL DEFAULT 0,
	paralogs_n   INTEGER NOT NULL DEFAULT 0,
	paralogs     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX idx_genes_sp_gpart ON genes (sp, gpart);
CREATE INDEX idx_genes_sp_pnumcds ON genes (sp, pnum_cds);
CREATE INDEX idx_genes_sp_pnumall ON genes (sp, pnum_all);

CREATE TABLE genomes (
	sp               TEXT PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	gc               REAL NOT NULL DEFAULT 0,
	max_pnum_display INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE genome_parts (
	sp      TEXT NOT NULL,
	gpart   TEXT NOT NULL,
	min_pnum INTEGER NOT NULL,
	max_pnum INTEGER NOT NULL,
	PRIMARY KEY (sp, gpart)
);
`

const orthosSchema = `
DROP VIEW IF EXISTS orthos_all;
DROP TABLE IF EXISTS orthos;

CREATE TABLE orthos (
	oid         INTEGER PRIMARY KEY,
	pid1        TEXT NOT NULL REFERENCES genes(pid),
	pid2        TEXT NOT NULL REFERENCES genes(pid),
	sp1         TEXT NOT NULL,
	sp2         TEXT NOT NULL,
	o_ident     REAL NOT NULL DEFAULT 0,
	o_alen      INTEGER NOT NULL DEFAULT 0,
	pnum_order1 INTEGER NOT NULL DEFAULT 0,
	pnum_order2 INTEGER NOT NULL DEFAULT 0,
	noblock     INTEGER NOT NULL DEFAULT 0,
	UNIQUE (pid1, pid2)
);
CREATE INDEX idx_orthos_sp1_sp2 ON orthos (sp1, sp2);
CREATE INDEX idx_orthos_pid1 ON orthos (pid1);
CREATE INDEX idx_orthos_pid2 ON orthos (pid2);

CREATE VIEW orthos_all AS
SELECT
	o.oid, o.pid1, o.pid2, o.sp1, o.sp2, o.o_ident, o.o_alen,
	o.pnum_order1, o.pnum_order2, o.noblock,
	g1.gpart AS gpart1, g1.pnum_all AS pnum_all1, g1.pnum_cds AS pnum_cds1,
	g1.pnum_display AS pnum_display1, g1.loc_start AS loc_start1, g1.loc_end AS loc_end1,
	g1.strand AS strand1,
	g2.gpart AS gpart2, g2.pnum_all AS pnum_all2, g2.pnum_cds AS pnum_cds2,
	g2.pnum_display AS pnum_display2, g2.loc_start AS loc_start2, g2.loc_end AS loc_end2,
	g2.strand AS strand2
FROM orthos o
JOIN genes g1 ON g1.pid = o.pid1
JOIN genes g2 ON g2.pid = o.pid2;
`

const blocksSchema = `
DROP VIEW IF EXISTS blocks_all;
DROP TABLE IF EXISTS blocks;

CREATE TABLE blocks (
	blockid      INTEGER PRIMARY KEY,
	sp1          TEXT NOT NULL,
	sp2          TEXT NOT NULL,
	oid_start    INTEGER NOT NULL REFERENCES orthos(oid),
	oid_end      INTEGER NOT NULL REFERENCES orthos(oid),
	direction    INTEGER NOT NULL,
	block_size   INTEGER NOT NULL,
	block_order1 INTEGER NOT NULL DEFAULT 0,
	block_order2 INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_blocks_sp ON blocks (sp1, sp2, direction);

CREATE VIEW blocks_all AS
SELECT
	b.blockid, b.sp1, b.sp2, b.direction, b.block_size, b.block_order1, b.block_order2,
	os.pid1 AS start_pid1, os.pid2 AS start_pid2,
	oe.pid1 AS end_pid1, oe.pid2 AS end_pid2,
	gs1.gpart AS gpart1, gs1.pnum_cds AS pnum_cds_start1, gs1.pnum_display AS pnum_display_start1,
	ge1.pnum_cds AS pnum_cds_end1, ge1.pnum_display AS pnum_display_end1,
	gs2.gpart AS gpart2, gs2.pnum_cds AS pnum_cds_start2, gs2.pnum_display AS pnum_display_start2,
	ge2.pnum_cds AS pnum_cds_end2, ge2.pnum_display AS pnum_display_end2
FROM blocks b
JOIN orthos os ON os.oid = b.oid_start
JOIN orthos oe ON oe.oid = b.oid_end
JOIN genes gs1 ON gs1.pid = os.pid1
JOIN genes ge1 ON ge1.pid = oe.pid1
JOIN genes gs2 ON gs2.pid = os.pid2
JOIN genes ge2 ON ge2.pid = oe.pid2;
`

const breaksSchema = `
DROP VIEW IF EXISTS breaks_all;
DROP TABLE IF EXISTS breaks_genes;
DROP TABLE IF EXISTS breaks_ranking;
DROP TABLE IF EXISTS breaks_graph;
DROP TABLE IF EXISTS breaks;

CREATE TABLE breaks (
	breakid     INTEGER PRIMARY KEY,
	sp1         TEXT NOT NULL,
	sp2         TEXT NOT NULL,
	left_block  INTEGER NOT NULL REFERENCES blocks(blockid),
	right_block INTEGER NOT NULL REFERENCES blocks(blockid),
	direction   INTEGER NOT NULL,
	break_size1 INTEGER NOT NULL,
	break_size2 INTEGER NOT NULL,
	inblocks1   INTEGER NOT NULL,
	inblocks2   INTEGER NOT NULL,
	opposite    INTEGER REFERENCES breaks(breakid) ON DELETE CASCADE,
	break_sum   TEXT NOT NULL
);
CREATE INDEX idx_breaks_sp ON breaks (sp1, sp2);
CREATE INDEX idx_breaks_sum ON breaks (break_sum);
CREATE INDEX idx_breaks_left ON breaks (left_block);
CREATE INDEX idx_breaks_right ON breaks (right_block);

CREATE TABLE breaks_genes (
	breakid  INTEGER NOT NULL REFERENCES breaks(breakid) ON DELETE CASCADE,
	pid      TEXT NOT NULL REFERENCES genes(pid),
	side     INTEGER NOT NULL,
	ortho    TEXT NOT NULL DEFAULT '',
	ortho_in INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (breakid, pid, side)
);
CREATE INDEX idx_breaksgenes_breakid ON breaks_genes (breakid);

CREATE TABLE breaks_ranking (
	breakid       INTEGER PRIMARY KEY REFERENCES breaks(breakid) ON DELETE CASCADE,
	real_size1    INTEGER NOT NULL DEFAULT 0,
	real_size2    INTEGER NOT NULL DEFAULT 0,
	trna_both     INTEGER NOT NULL DEFAULT 0,
	trna_both_ext INTEGER NOT NULL DEFAULT 0,
	content1      TEXT NOT NULL DEFAULT '',
	content2      TEXT NOT NULL DEFAULT '',
	paralogs1     INTEGER NOT NULL DEFAULT 0,
	paralogs2     INTEGER NOT NULL DEFAULT 0,
	delta_gc1     REAL NOT NULL DEFAULT 0,
	delta_gc2     REAL NOT NULL DEFAULT 0,
	cycle         INTEGER NOT NULL DEFAULT 0,
	graphid       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE breaks_graph (
	graphid   INTEGER NOT NULL,
	from_name TEXT NOT NULL,
	to_name   TEXT NOT NULL,
	PRIMARY KEY (graphid, from_name, to_name)
);

CREATE VIEW breaks_all AS
SELECT
	b.breakid, b.sp1, b.sp2, b.left_block, b.right_block, b.direction,
	b.break_size1, b.break_size2, b.inblocks1, b.inblocks2, b.opposite, b.break_sum,
	lb.end_pid1 AS left_pid1, lb.end_pid2 AS left_pid2,
	rb.start_pid1 AS right_pid1, rb.start_pid2 AS right_pid2
FROM breaks b
JOIN blocks_all lb ON lb.blockid = b.left_block
JOIN blocks_all rb ON rb.blockid = b.right_block;
`

// Pairs table (PairLink, §4.4) persists the intermediate links consumed
// only within the block-finder stage's own run; kept in the store (rather
// than purely in memory) so a crashed block-finder run can be inspected.
const pairsSchema = `
DROP TABLE IF EXISTS pairs;

CREATE TABLE pairs (
	pairid    INTEGER PRIMARY KEY,
	sp1       TEXT NOT NULL,
	sp2       TEXT NOT NULL,
	oid_start INTEGER NOT NULL REFERENCES orthos(oid),
	oid_end   INTEGER NOT NULL REFERENCES orthos(oid),
	direction INTEGER NOT NULL,
	inblocks1 INTEGER NOT NULL DEFAULT 0,
	inblocks2 INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_pairs_sp ON pairs (sp1, sp2, direction);
`

func execScript(ctx context.Context, db *sql.DB, script string) error {
	if _, err := db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("exec schema script: %w", err)
	}
	return nil
}

func (s *Store) EnsureCatalogSchema(ctx context.Context) error {
	return execScript(ctx, s.DB, catalogSchema)
}

func (s *Store) EnsureOrthosSchema(ctx context.Context) error {
	return execScript(ctx, s.DB, orthosSchema)
}

func (s *Store) EnsurePairsSchema(ctx context.Context) error {
	return execScript(ctx, s.DB, pairsSchema)
}

func (s *Store) EnsureBlocksSchema(ctx context.Context) error {
	return execScript(ctx, s.DB, blocksSchema)
}

func (s *Store) EnsureBreaksSchema(ctx context.Context) error {
	return execScript(ctx, s.DB, breaksSchema)
}

// RebuildProjections drops and recreates orthos_all, blocks_all and
// breaks_all without touching the underlying tables; used by the ranker
// after pruning breaks and by the reorderer (§4.9) after pnum_display
// changes.
func (s *Store) RebuildProjections(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, `DROP VIEW IF EXISTS breaks_all;`); err != nil {
		return fmt.Errorf("drop breaks_all: %w", err)
	}
	if _, err := s.DB.ExecContext(ctx, `DROP VIEW IF EXISTS blocks_all;`); err != nil {
		return fmt.Errorf("drop blocks_all: %w", err)
	}
	if _, err := s.DB.ExecContext(ctx, `DROP VIEW IF EXISTS orthos_all;`); err != nil {
		return fmt.Errorf("drop orthos_all: %w", err)
	}

	const orthosAllView = `
CREATE VIEW orthos_all AS
SELECT
	o.oid, o.pid1, o.pid2, o.sp1, o.sp2, o.o_ident, o.o_alen,
	o.pnum_order1, o.pnum_order2, o.noblock,
	g1.gpart AS gpart1, g1.pnum_all AS pnum_all1, g1.pnum_cds AS pnum_cds1,
	g1.pnum_display AS pnum_display1, g1.loc_start AS loc_start1, g1.loc_end AS loc_end1,
	g1.strand AS strand1,
	g2.gpart AS gpart2, g2.pnum_all AS pnum_all2, g2.pnum_cds AS pnum_cds2,
	g2.pnum_display AS pnum_display2, g2.loc_start AS loc_start2, g2.loc_end AS loc_end2,
	g2.strand AS strand2
FROM orthos o
JOIN genes g1 ON g1.pid = o.pid1
JOIN genes g2 ON g2.pid = o.pid2;
`
	const blocksAllView = `
CREATE VIEW blocks_all AS
SELECT
	b.blockid, b.sp1, b.sp2, b.direction, b.block_size, b.block_order1, b.block_order2,
	os.pid1 AS start_pid1, os.pid2 AS start_pid2,
	oe.pid1 AS end_pid1, oe.pid2 AS end_pid2,
	gs1.gpart AS gpart1, gs1.pnum_cds AS pnum_cds_start1, gs1.pnum_display AS pnum_display_start1,
	ge1.pnum_cds AS pnum_cds_end1, ge1.pnum_display AS pnum_display_end1,
	gs2.gpart AS gpart2, gs2.pnum_cds AS pnum_cds_start2, gs2.pnum_display AS pnum_display_start2,
	ge2.pnum_cds AS pnum_cds_end2, ge2.pnum_display AS pnum_display_end2
FROM blocks b
JOIN orthos os ON os.oid = b.oid_start
JOIN orthos oe ON oe.oid = b.oid_end
JOIN genes gs1 ON gs1.pid = os.pid1
JOIN genes ge1 ON ge1.pid = oe.pid1
JOIN genes gs2 ON gs2.pid = os.pid2
JOIN genes ge2 ON ge2.pid = oe.pid2;
`
	const breaksAllView = `
CREATE VIEW breaks_all AS
SELECT
	b.breakid, b.sp1, b.sp2, b.left_block, b.right_block, b.direction,
	b.break_size1, b.break_size2, b.inblocks1, b.inblocks2, b.opposite, b.break_sum,
	lb.end_pid1 AS left_pid1, lb.end_pid2 AS left_pid2,
	rb.start_pid1 AS right_pid1, rb.start_pid2 AS right_pid2
FROM breaks b
JOIN blocks_all lb ON lb.blockid = b.left_block
JOIN blocks_all rb ON rb.blockid = b.right_block;
`
	if err := execScript(ctx, s.DB, orthosAllView); err != nil {
		return err
	}
	if err := execScript(ctx, s.DB, blocksAllView); err != nil {
		return err
	}
	return execScript(ctx, s.DB, breaksAllView)
}
