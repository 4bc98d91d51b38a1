package cdms

import (
	"context"
	"errors"
	"os"
	"testing"

	"astrocat/internal/catalogs"
	"astrocat/internal/units"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func readTestdata(t testing.TB, name string) []byte {
	t.Helper()
	body, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return body
}

func qn(v int) QuantumNumber {
	return QuantumNumber{Value: v, Valid: true}
}

func TestParseLines(t *testing.T) {
	table, err := ParseLines(context.Background(), readTestdata(t, "lines.html"), 300)
	require.NoError(t, err)

	require.Equal(t, 300.0, table.Temperature)
	require.Equal(t, LogIntensity, table.Intensity)
	require.Equal(t, 4, table.Table.Len())
	require.Len(t, table.Records, 4)

	expected := []Record{
		{
			Frequency: 103614.4941, Error: 2.2370, Intensity: -4.1826,
			DegreesOfFreedom: 3, LowerEnergy: 202.8941, UpperDegeneracy: 8,
			Tag: 18505, QNFormat: 2356,
			Ju: qn(4), Ku: qn(1), Vu: qn(4), Jl: qn(4), Kl: qn(0), Vl: qn(4),
			Hyperfine: "3 2 1 3 0 3", Name: "H2O+",
		},
		{
			Frequency: 115271.2018, Error: 0.0005, Intensity: -5.0105,
			DegreesOfFreedom: 2, LowerEnergy: 0, UpperDegeneracy: 3,
			Tag: -28503, QNFormat: 101,
			Ju: qn(1), Jl: qn(0),
			Name: "CO",
		},
	}
	if diff := cmp.Diff(expected, []Record{table.Records[0], table.Records[3]}); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}

	co := table.Records[3]
	require.True(t, co.Measured())
	require.Equal(t, 28503, co.Species())
	require.Equal(t, 28, co.Mass())
	require.False(t, table.Records[0].Measured())

	columns := table.Table.Columns
	require.Equal(t, units.MHz, columns[table.Table.Index("FREQ")].Unit)
	require.Equal(t, units.MHz, columns[table.Table.Index("ERR")].Unit)
	require.Equal(t, units.PerCentimetre, columns[table.Table.Index("ELO")].Unit)
	require.Equal(t, units.MHzNm2, columns[table.Table.Index("LGINT")].Unit)
	require.Equal(t, -1, table.Table.Index("LGAIJ"))
}

func TestParseLinesEinsteinA(t *testing.T) {
	table, err := ParseLines(context.Background(), readTestdata(t, "lines.html"), 0)
	require.NoError(t, err)

	require.Equal(t, LogEinsteinA, table.Intensity)
	require.Equal(t, -1, table.Table.Index("LGINT"))
	idx := table.Table.Index("LGAIJ")
	require.Equal(t, 2, idx)
	require.Equal(t, units.PerSecond, table.Table.Columns[idx].Unit)
	require.InDelta(t, -4.1826, table.Records[0].Intensity, 1e-9)
}

func TestParseLinesPlainText(t *testing.T) {
	body, err := os.ReadFile("../../tabular/testdata/cdms_lines.txt")
	require.NoError(t, err)

	table, err := ParseLines(context.Background(), body, 150)
	require.NoError(t, err)
	require.Len(t, table.Records, 4)
	require.Equal(t, "CO", table.Records[3].Name)
}

func TestParseLinesZeroLines(t *testing.T) {
	body := []byte("<html><body>Zero lines were found for your search criteria.</body></html>")
	_, err := ParseLines(context.Background(), body, 300)
	require.True(t, errors.Is(err, catalogs.ErrNoData))
	require.Contains(t, err.Error(), "Zero lines were found")
}

func TestParseLinesMalformed(t *testing.T) {
	body := []byte("<html><body><pre>\n" +
		"   103614.4941     2.2370    -4.1826 3  202.8941  8 185052356 4 1 4 4 0 43 2 1 3 0 3     H2O+\n" +
		"   1078x4.8763   148.6000    -5.4438 3  878.1191 12 185052356 6 5 1 7 1 67 4 4 8 1 7     H2O+\n" +
		"</pre></body></html>")
	_, err := ParseLines(context.Background(), body, 300)
	require.Error(t, err)
	require.False(t, errors.Is(err, catalogs.ErrNoData))
}

func TestParseLinesNoPre(t *testing.T) {
	_, err := ParseLines(context.Background(), []byte("<html><body><p>maintenance</p></body></html>"), 300)
	require.True(t, errors.Is(err, catalogs.ErrNoData))
}

func TestClassify(t *testing.T) {
	ctx := context.Background()

	frameset := []byte(`<html><frameset rows="20%,80%">` +
		`<frame src="tmp/cdmshead_123.html">` +
		`<frame src="tmp/cdmstab_123.html">` +
		`</frameset></html>`)
	res, err := Classify(ctx, frameset)
	require.NoError(t, err)
	require.Equal(t, FrameResponse{Src: "tmp/cdmstab_123.html"}, res)

	onlyHead := []byte(`<html><frameset><frame src="tmp/cdmshead_123.html"></frameset></html>`)
	_, err = Classify(ctx, onlyHead)
	require.True(t, errors.Is(err, catalogs.ErrNoData))

	listing := readTestdata(t, "lines.html")
	res, err = Classify(ctx, listing)
	require.NoError(t, err)
	require.Equal(t, DataResponse{Body: listing}, res)

	zero := []byte("<html><body>Zero lines were found</body></html>")
	res, err = Classify(ctx, zero)
	require.NoError(t, err)
	require.IsType(t, DataResponse{}, res)

	_, err = Classify(ctx, []byte("<html><body>error</body></html>"))
	require.True(t, errors.Is(err, catalogs.ErrNoData))
}
