package gocexport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEmitsTabSeparatedRows(t *testing.T) {
	rows := []Row{
		{Sp1: "A", Sp2: "B", BreakID: 1, GeneCount1: 3, GeneCount2: 5, BreakSum: "deadbeef"},
	}
	var buf strings.Builder
	require.NoError(t, Write(&buf, rows))
	assert.Equal(t, "A\tB\t1\t3\t5\tdeadbeef\n", buf.String())
}
