package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "major minor", input: "1.24", want: "1.24"},
		{name: "major minor patch", input: "1.24.9", want: "1.24.9"},
		{name: "git version prefix", input: "v1.24.9", want: "1.24.9"},
		{name: "surrounding whitespace", input: "  1.27.3\n", want: "1.27.3"},
		{name: "pre-release suffix", input: "v1.28.0-rc.1", want: "1.28.0-rc.1"},
		{name: "empty", input: "", wantErr: true},
		{name: "only prefix", input: "v", wantErr: true},
		{name: "major only", input: "1", wantErr: true},
		{name: "four components", input: "1.2.3.4", wantErr: true},
		{name: "garbage", input: "latest", wantErr: true},
		{name: "non numeric minor", input: "1.x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var invalid *InvalidVersionError
				require.True(t, errors.As(err, &invalid))
				assert.Equal(t, tt.input, invalid.Input)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCompare(t *testing.T) {
	assert.True(t, MustParse("1.24.9").LessThan(MustParse("1.26")))
	assert.True(t, MustParse("1.9").LessThan(MustParse("1.10")))
	assert.False(t, MustParse("1.26").LessThan(MustParse("1.26.0")))
	assert.True(t, MustParse("1.26").Equal(MustParse("v1.26.0")))
	assert.False(t, MustParse("1.24").Equal(MustParse("1.24.9")))
	assert.Equal(t, 1, MustParse("1.28.1").Compare(MustParse("1.28.0")))
}

func TestCompareZeroValue(t *testing.T) {
	var zero Version
	assert.True(t, zero.IsZero())
	assert.Equal(t, 0, zero.Compare(Version{}))
	assert.True(t, zero.LessThan(MustParse("0.1")))
	assert.Equal(t, 1, MustParse("1.24").Compare(zero))
	assert.False(t, MustParse("1.24").Equal(zero))
}

func TestTextRoundTrip(t *testing.T) {
	var v Version
	require.NoError(t, v.UnmarshalText([]byte("v1.30.2")))
	b, err := v.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.30.2", string(b))

	assert.Error(t, v.UnmarshalText([]byte("nope")))
	assert.True(t, Version{}.IsZero())
}
