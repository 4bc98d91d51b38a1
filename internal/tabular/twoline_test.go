package tabular

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const missionListing = `
 Mission  | Table            | Table Description
----------+------------------+-------------------------------
 INTEGRAL | integral_rev3_scw| INTEGRAL Science Window Data
 INTEGRAL | integral_rev3_prp| INTEGRAL Proposals
 SPI      | spi_acs          | SPI Anti-Coincidence Shield
Found 3 tables
`

func TestParseTwoLine(t *testing.T) {
	table, err := ParseTwoLine(missionListing, TwoLineOptions{
		PositionChar: '-',
		Delimiter:    '+',
		DropFooter:   true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Mission", "Table", "Table Description"}, table.Names())
	require.Equal(t, 3, table.Len())

	tables, err := table.Column("Table")
	require.NoError(t, err)
	require.Equal(t, "integral_rev3_scw", tables[0].Str)
	require.Equal(t, "spi_acs", tables[2].Str)

	require.Equal(t, "INTEGRAL Proposals", table.Rows[1][2].Str)
}

func TestParseTwoLineKeepsFooter(t *testing.T) {
	table, err := ParseTwoLine(missionListing, TwoLineOptions{Delimiter: '+'})
	require.NoError(t, err)
	require.Equal(t, 4, table.Len())
}

func TestParseTwoLineWithoutPositionLine(t *testing.T) {
	_, err := ParseTwoLine("just\nsome text\n", TwoLineOptions{Delimiter: '+'})
	require.Error(t, err)
}
