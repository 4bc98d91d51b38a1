package tabular

import (
	"testing"

	"astrocat/internal/catalogs"

	"github.com/stretchr/testify/require"
)

func TestParseDelimited(t *testing.T) {
	text := `
|SCW_ID      |RA_X     |DEC_X    |GOOD_ISGRI|_SEARCH_OFFSET|
|023900340010|83.6331  |22.0145  |1834      |0.123 (Crab)  |
|023900350010|83.6289  |22.0102  |          |0.456 (Crab)  |
`
	table, err := ParseDelimited(text, '|')
	require.NoError(t, err)
	require.Equal(t, []string{"SCW_ID", "RA_X", "DEC_X", "GOOD_ISGRI", "_SEARCH_OFFSET"}, table.Names())
	require.Equal(t, 2, table.Len())
	require.Equal(t, "023900340010", table.Rows[0][0].Str)
	require.Equal(t, "", table.Rows[1][3].Str)
	require.Equal(t, "0.456 (Crab)", table.Rows[1][4].Str)
}

func TestParseDelimitedHeaderOnly(t *testing.T) {
	table, err := ParseDelimited("|a|b|\n", '|')
	require.NoError(t, err)
	require.Equal(t, 0, table.Len())
	require.Equal(t, []string{"a", "b"}, table.Names())
}

func TestParseDelimitedNoRows(t *testing.T) {
	_, err := ParseDelimited("nothing to see here\n", '|')
	require.ErrorIs(t, err, catalogs.ErrNoData)
}
