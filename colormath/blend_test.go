package colormath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlendOnWhite(t *testing.T) {
	tests := []struct {
		base  string
		alpha float64
		want  string
	}{
		{"#0D99F6", 0.10, "#E7F5FE"},
		{"#0D99F6", 1.00, "#0D99F6"},
		{"#0D99F6", 0.00, "#FFFFFF"},
		{"#2F2F45", 0.80, "#59596A"},
		{"#2F2F45", 0.65, "#787886"},
		{"#2F2F45", 0.40, "#ACACB5"},
		{"#2F2F45", 0.04, "#F7F7F8"},
		{"#000000", 0.50, "#808080"},
		{"#8A4646", 0.10, "#F3EDED"},
		{"#0D99F6", 1.50, "#0D99F6"},
		{"#0D99F6", -1.0, "#FFFFFF"},
	}

	for _, tt := range tests {
		got, err := BlendOnWhite(tt.base, tt.alpha)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s @ %v", tt.base, tt.alpha)
	}

	_, err := BlendOnWhite("#12345", 0.5)
	assert.Error(t, err)
}

func TestBlendOnWhiteBounds(t *testing.T) {
	for _, hex := range samplePalette {
		full, err := BlendOnWhite(hex, 1)
		require.NoError(t, err)
		assert.Equal(t, hex, full)

		none, err := BlendOnWhite(hex, 0)
		require.NoError(t, err)
		assert.Equal(t, "#FFFFFF", none)
	}
}

func TestGenerateScale(t *testing.T) {
	scale, err := GenerateScale("#8A4646")
	require.NoError(t, err)
	assert.Equal(t, map[int]string{
		100: "#8A4646",
		80:  "#A16B6B",
		60:  "#B99090",
		40:  "#D0B5B5",
		20:  "#E8DADA",
		10:  "#F3EDED",
	}, scale)

	_, err = GenerateScale("zzz")
	assert.Error(t, err)
}

func TestAlphaHex(t *testing.T) {
	tests := []struct {
		alpha float64
		want  string
	}{
		{1.0, "#FF0D99F6"},
		{0.8, "#CC0D99F6"},
		{0.6, "#990D99F6"},
		{0.4, "#660D99F6"},
		{0.2, "#330D99F6"},
		{0.1, "#1A0D99F6"},
		{0.0, "#000D99F6"},
	}
	for _, tt := range tests {
		got, err := AlphaHex("#0d99f6", tt.alpha)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
