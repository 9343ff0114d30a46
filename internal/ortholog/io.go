package ortholog

import (
	"bufio"
	"fmt"
	"io"

	"github.com/syntruptor/syntctl/internal/model"
)

// WritePairs emits the ortholog intermediate file (§6.4):
// header `oid, pid1, pid2, o_ident, o_alen`.
func WritePairs(w io.Writer, pairs []model.OrthoPair) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "oid\tpid1\tpid2\to_ident\to_alen"); err != nil {
		return fmt.Errorf("write ortho header: %w", err)
	}
	for _, p := range pairs {
		if _, err := fmt.Fprintf(bw, "%d\t%s\t%s\t%g\t%d\n", p.Oid, p.Pid1, p.Pid2, p.OIdent, p.OAlen); err != nil {
			return fmt.Errorf("write ortho pair oid=%d: %w", p.Oid, err)
		}
	}
	return bw.Flush()
}

// GeneInfoFromCatalog narrows a full gene catalog down to the fields the
// ortholog/paralog builders need, keyed by pid.
func GeneInfoFromCatalog(genes []model.Gene) map[string]GeneInfo {
	out := make(map[string]GeneInfo, len(genes))
	for _, g := range genes {
		out[string(g.Pid)] = GeneInfo{Sp: g.Sp, PnumCDS: g.PnumCDS, Length: g.Length}
	}
	return out
}
