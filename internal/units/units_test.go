package units

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	testCases := []struct {
		text string
		ghz  float64
	}{
		{text: "100 GHz", ghz: 100},
		{text: "115271.2018 MHz", ghz: 115.2712018},
		{text: "1e11 Hz", ghz: 100},
		{text: "110", ghz: 110},
		{text: "0.3THz", ghz: 300},
	}
	for _, test := range testCases {
		f, err := ParseFrequency(test.text)
		require.NoError(t, err, test.text)
		require.InDelta(t, test.ghz, f.GHz(), 1e-9, test.text)
	}

	f, err := ParseFrequency("3 mm")
	require.NoError(t, err)
	require.InDelta(t, 99.930819, f.GHz(), 1e-5)

	_, err = ParseFrequency("GHz")
	require.Error(t, err)
	_, err = ParseFrequency("10 parsec")
	require.Error(t, err)
}

func TestParseAngle(t *testing.T) {
	a, err := ParseAngle("1 degree")
	require.NoError(t, err)
	require.InDelta(t, 60, a.Arcmin(), 1e-9)

	a, err = ParseAngle("3 arcmin")
	require.NoError(t, err)
	require.InDelta(t, 3, a.Arcmin(), 1e-9)

	a, err = ParseAngle("36arcsec")
	require.NoError(t, err)
	require.InDelta(t, 0.6, a.Arcmin(), 1e-9)

	a, err = ParseAngle("361 deg")
	require.NoError(t, err)
	require.InDelta(t, 361, a.Degrees(), 1e-9)

	_, err = ParseAngle("1 furlong")
	require.Error(t, err)
}
