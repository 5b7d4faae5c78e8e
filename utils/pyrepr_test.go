package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReprFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{1, "1.0"},
		{-2.5, "-2.5"},
		{0.1, "0.1"},
		{math.Pi, "3.141592653589793"},
		{1e15, "1000000000000000.0"},
		{1e16, "1e+16"},
		{1.5e16, "1.5e+16"},
		{123456789012345678, "1.2345678901234568e+17"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{-1.25e-10, "-1.25e-10"},
		{1e100, "1e+100"},
		{5e-324, "5e-324"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ReprFloat(tt.in), "%v", tt.in)
	}
}

func TestReprComplex(t *testing.T) {
	tests := []struct {
		in   complex128
		want string
	}{
		{complex(1, 2), "(1+2j)"},
		{complex(0, 2), "2j"},
		{complex(0, -1.5), "-1.5j"},
		{complex(math.Copysign(0, -1), 1), "(-0+1j)"},
		{complex(1.5, 0), "(1.5+0j)"},
		{complex(1, -1), "(1-1j)"},
		{complex(0, 0), "0j"},
		{complex(1, math.Inf(1)), "(1+infj)"},
		{complex(1e20, 1e-7), "(1e+20+1e-07j)"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ReprComplex(tt.in), "%v", tt.in)
	}
}

func TestReprString(t *testing.T) {
	require.Equal(t, "'cz'", ReprString("cz"))
	require.Equal(t, `"it's"`, ReprString("it's"))
	require.Equal(t, `'both \' and "'`, ReprString(`both ' and "`))
	require.Equal(t, `'a\\b'`, ReprString(`a\b`))
	require.Equal(t, `'\n\t\x00\x7f'`, ReprString("\n\t\x00\x7f"))
	require.Equal(t, "'θ'", ReprString("θ"))
	require.Equal(t, `'\xa0\xad'`, ReprString("\u00a0\u00ad"))
	require.Equal(t, `'a\u200bb\u2028\u3000'`, ReprString("a\u200bb\u2028\u3000"))
	require.Equal(t, `'\U000e0001'`, ReprString("\U000E0001"))
	require.Equal(t, "'🙂'", ReprString("🙂"))
}

func TestReprOrderedCounts(t *testing.T) {
	require.Equal(t, "OrderedDict()", ReprOrderedCounts(nil))
	require.Equal(t,
		"OrderedDict({'cz': 100000, 'measure': 200})",
		ReprOrderedCounts([]Count{{"cz", 100000}, {"measure", 200}}))
}

func TestReprList(t *testing.T) {
	require.Equal(t, "[]", ReprList(nil))
	require.Equal(t, "[1.0, 2]", ReprList([]string{"1.0", "2"}))
}
