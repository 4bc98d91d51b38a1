package tabular

import (
	"errors"
	"os"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"astrocat/internal/catalogs"

	"github.com/stretchr/testify/require"
)

var cdmsSchema = Schema{
	{Name: "FREQ", Start: 0, Kind: Float},
	{Name: "ERR", Start: 14, Kind: Float},
	{Name: "LGINT", Start: 25, Kind: Float},
	{Name: "DR", Start: 36, Kind: Int},
	{Name: "ELO", Start: 38, Kind: Float},
	{Name: "GUP", Start: 48, Kind: Int},
	{Name: "TAG", Start: 51, Kind: Int},
	{Name: "QNFMT", Start: 57, Kind: Int},
	{Name: "Ju", Start: 61, Kind: QuantumNumber},
	{Name: "Ku", Start: 63, Kind: QuantumNumber},
	{Name: "vu", Start: 65, Kind: QuantumNumber},
	{Name: "Jl", Start: 67, Kind: QuantumNumber},
	{Name: "Kl", Start: 69, Kind: QuantumNumber},
	{Name: "vl", Start: 71, Kind: QuantumNumber},
	{Name: "F", Start: 73, Kind: String},
	{Name: "name", Start: 89, Kind: String},
}

var cdmsComment = regexp.MustCompile(`THIS|^\s{12,14}\d{4,6}.*`)

func readFixture(t testing.TB, name string) string {
	contents, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	return string(contents)
}

func TestParseFixedWidthMatchesManualSlices(t *testing.T) {
	text := readFixture(t, "testdata/cdms_lines.txt")

	table, err := ParseFixedWidth(text, cdmsSchema, cdmsComment)
	require.NoError(t, err)
	require.Equal(t, 4, table.Len())

	var dataLines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" || IsComment(cdmsComment, line) {
			continue
		}
		dataLines = append(dataLines, line)
	}
	require.Len(t, dataLines, 4)

	for i, line := range dataLines {
		row := table.Rows[i]

		freq, err := strconv.ParseFloat(strings.TrimSpace(line[0:14]), 64)
		require.NoError(t, err)
		require.Equal(t, freq, row[table.Index("FREQ")].Float)

		lgint, err := strconv.ParseFloat(strings.TrimSpace(line[25:36]), 64)
		require.NoError(t, err)
		require.Equal(t, lgint, row[table.Index("LGINT")].Float)

		tag, err := strconv.ParseInt(strings.TrimSpace(line[51:57]), 10, 64)
		require.NoError(t, err)
		require.Equal(t, tag, row[table.Index("TAG")].Int)

		require.Equal(t, strings.TrimSpace(line[73:89]), row[table.Index("F")].Str)
		require.Equal(t, strings.TrimSpace(line[89:]), row[table.Index("name")].Str)
	}

	first := table.Rows[0]
	require.Equal(t, 103614.4941, first[0].Float)
	require.Equal(t, 2.237, first[1].Float)
	require.Equal(t, int64(3), first[3].Int)
	require.Equal(t, int64(8), first[5].Int)
	require.Equal(t, int64(2356), first[7].Int)
	require.Equal(t, "3 2 1 3 0 3", first[14].Str)
	require.Equal(t, "H2O+", first[15].Str)

	co := table.Rows[3]
	require.Equal(t, int64(-28503), co[table.Index("TAG")].Int)
	require.False(t, co[table.Index("Ju")].Null)
	require.True(t, co[table.Index("Ku")].Null, "blank quantum numbers are null")
	require.Equal(t, "", co[table.Index("F")].Str)
}

func TestCommentFilter(t *testing.T) {
	testCases := []struct {
		line    string
		comment bool
	}{
		{line: "THIS QUERY MATCHED 4 LINES", comment: true},
		{line: "THIS", comment: true},
		{line: "            18505 H2O+", comment: true},
		{line: "              028503 CO", comment: true},
		{line: "             28503", comment: true},
		{line: "           18505 H2O+", comment: false},
		{line: "               18505 H2O+", comment: false},
		{line: "   103614.4941     2.2370    -4.1826 3  202.8941  8 185052356", comment: false},
		{line: "  CONTAINS THIS LATER", comment: false},
	}

	for _, test := range testCases {
		require.Equal(t, test.comment, IsComment(cdmsComment, test.line), test.line)
	}
}

func TestParseFixedWidthMalformedField(t *testing.T) {
	text := "   103614.4941     2.2370    -4.1826 3  202.8941  8 18505\n" +
		"   10361x.4941     2.2370    -4.1826 3  202.8941  8 18505\n"
	schema := cdmsSchema[:7]

	_, err := ParseFixedWidth(text, schema, cdmsComment)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, 2, parseErr.Line)
	require.Equal(t, "FREQ", parseErr.Column)
	require.Contains(t, parseErr.Text, "10361x.4941")
}

func TestParseFixedWidthNonFinite(t *testing.T) {
	schema := Schema{
		{Name: "a", Start: 0, Kind: Int},
		{Name: "b", Start: 4, Kind: Float},
	}
	for _, cell := range []string{"NaN", "Inf", "-inf", "+Infinity"} {
		_, err := ParseFixedWidth("  12  1.5\n   7 "+cell+"\n", schema, nil)
		require.Error(t, err, cell)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr), cell)
		require.Equal(t, 2, parseErr.Line)
		require.Equal(t, "b", parseErr.Column)
		require.ErrorIs(t, err, errNonFinite)
	}

	v, err := ParseValue("1e308", Float)
	require.NoError(t, err)
	require.Equal(t, 1e308, v.Float)
}

func TestParseFixedWidthNoData(t *testing.T) {
	text := "THIS QUERY MATCHED 0 LINES\n\n              18505 H2O+\n"
	_, err := ParseFixedWidth(text, cdmsSchema, cdmsComment)
	require.ErrorIs(t, err, catalogs.ErrNoData)
}

func TestParseFixedWidthShortLines(t *testing.T) {
	schema := Schema{
		{Name: "a", Start: 0, Kind: Int},
		{Name: "b", Start: 4, Kind: Float},
		{Name: "c", Start: 10, Kind: String},
	}
	table, err := ParseFixedWidth("  12  1.5 tail end\n   7\n", schema, nil)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	require.Equal(t, "tail end", table.Rows[0][2].Str)
	require.Equal(t, int64(7), table.Rows[1][0].Int)
	require.True(t, table.Rows[1][1].Null)
	require.Equal(t, "", table.Rows[1][2].Str)
}

func TestSchemaValidate(t *testing.T) {
	require.NoError(t, cdmsSchema.Validate())
	require.Error(t, Schema{}.Validate())
	require.Error(t, Schema{{Name: "a", Start: 3}, {Name: "b", Start: 3}}.Validate())
	require.Error(t, Schema{{Name: "a", Start: 0}, {Name: "a", Start: 3}}.Validate())
	require.Error(t, Schema{{Name: "", Start: 0}}.Validate())
}

func TestSplitSpans(t *testing.T) {
	require.Equal(t, []string{"ab", "cd", "ef"}, SplitSpans("abcdef", SpansFromStarts([]int{0, 2, 4})))
	require.Equal(t, []string{"ab", "c", ""}, SplitSpans("abc", SpansFromStarts([]int{0, 2, 4})))
	require.Equal(t, []string{"é", "xy"}, SplitSpans("éxy", SpansFromStarts([]int{0, 1})))
}

func TestParseQuantumNumber(t *testing.T) {
	testCases := []struct {
		text   string
		expect int64
	}{
		{text: "12", expect: 12},
		{text: " 4", expect: 4},
		{text: "-3", expect: -3},
		{text: "A0", expect: 100},
		{text: "B5", expect: 115},
		{text: "Z9", expect: 359},
		{text: "a0", expect: -10},
		{text: "b3", expect: -23},
	}
	for _, test := range testCases {
		v, err := ParseValue(test.text, QuantumNumber)
		require.NoError(t, err, test.text)
		require.Equal(t, test.expect, v.Int, test.text)
	}

	_, err := ParseValue("A", QuantumNumber)
	require.Error(t, err)
	_, err = ParseValue("?1", QuantumNumber)
	require.Error(t, err)
}
