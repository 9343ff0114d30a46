package ortholog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHitsSkipsCommentsAndBlankLines(t *testing.T) {
	in := strings.Join([]string{
		"# blast -outfmt 6",
		"",
		"g1\tg2\t95.5\t300\t2\t0\t1\t300\t1\t300\t1e-150\t550",
		"\t \t",
	}, "\n")

	hits, err := ParseHits(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, hits, 1)

	h := hits[0]
	assert.Equal(t, "g1", h.Query)
	assert.Equal(t, "g2", h.Subject)
	assert.InDelta(t, 95.5, h.PctIdent, 1e-9)
	assert.Equal(t, 300, h.AlignLen)
	assert.InDelta(t, 1e-150, h.EValue, 1e-160)
	assert.InDelta(t, 550.0, h.BitScore, 1e-9)
}

func TestParseHitsRejectsShortRows(t *testing.T) {
	_, err := ParseHits(strings.NewReader("g1\tg2\t95.5\n"))
	assert.Error(t, err)
}
