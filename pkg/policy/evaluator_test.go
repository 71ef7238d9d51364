package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.goms.io/aks/AKSupport/pkg/catalog"
	"go.goms.io/aks/AKSupport/pkg/version"
)

func catalogOf(versions ...string) catalog.Catalog {
	c := make(catalog.Catalog, 0, len(versions))
	for _, v := range versions {
		c = append(c, catalog.Entry{Version: version.MustParse(v)})
	}
	return c
}

func TestIsSupported(t *testing.T) {
	c := catalogOf("1.24", "1.25", "1.26", "1.27", "1.28")

	for _, v := range c.Versions() {
		assert.True(t, IsSupported(version.MustParse(v), c), "version %s is in the catalog", v)
	}
	for _, v := range []string{"1.23", "1.29", "1.24.9", "2.0"} {
		assert.False(t, IsSupported(version.MustParse(v), c), "version %s is not in the catalog", v)
	}
	assert.False(t, IsSupported(version.MustParse("1.24"), catalog.Catalog{}))
}

func TestIsSupportEnding(t *testing.T) {
	c := catalogOf("1.24", "1.25", "1.26", "1.27", "1.28")

	ending, err := IsSupportEnding(version.MustParse("1.25"), c)
	require.NoError(t, err)
	assert.True(t, ending)

	ending, err = IsSupportEnding(version.MustParse("1.26"), c)
	require.NoError(t, err)
	assert.False(t, ending)

	ending, err = IsSupportEnding(version.MustParse("1.28"), c)
	require.NoError(t, err)
	assert.False(t, ending)
}

func TestIsSupportEnding_ShortCatalog(t *testing.T) {
	for _, c := range []catalog.Catalog{{}, catalogOf("1.24"), catalogOf("1.24", "1.25")} {
		_, err := IsSupportEnding(version.MustParse("1.24"), c)
		require.Error(t, err)
		var idxErr *IndexOutOfRangeError
		require.True(t, errors.As(err, &idxErr))
		assert.Equal(t, 2, idxErr.Index)
		assert.Equal(t, len(c), idxErr.Length)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		running string
		catalog catalog.Catalog
		want    Status
		wantErr bool
	}{
		{name: "newest is supported", running: "1.28", catalog: catalogOf("1.24", "1.25", "1.26", "1.27", "1.28"), want: Supported},
		{name: "third oldest is supported", running: "1.26", catalog: catalogOf("1.24", "1.25", "1.26", "1.27", "1.28"), want: Supported},
		{name: "second oldest is ending soon", running: "1.25", catalog: catalogOf("1.24", "1.25", "1.26", "1.27", "1.28"), want: SupportEndingSoon},
		{name: "absent below index two is not supported", running: "1.24.5", catalog: catalogOf("1.24", "1.25", "1.26", "1.27", "1.28"), want: NotSupported},
		{name: "absent above window is not supported", running: "1.30", catalog: catalogOf("1.24", "1.25", "1.26"), want: NotSupported},
		{name: "empty catalog is not supported", running: "1.24", catalog: catalog.Catalog{}, want: NotSupported},
		{name: "short catalog fails", running: "1.24", catalog: catalogOf("1.24", "1.25"), wantErr: true},
	}

	evaluator := NewEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluator.Classify(version.MustParse(tt.running), tt.catalog)
			if tt.wantErr {
				var idxErr *IndexOutOfRangeError
				assert.ErrorAs(t, err, &idxErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_GitVersionScenario(t *testing.T) {
	running, err := version.Parse("v1.24.9")
	require.NoError(t, err)

	c := catalogOf("1.24.9", "1.25.5", "1.26.0")
	assert.True(t, IsSupported(running, c))
	ending, err := IsSupportEnding(running, c)
	require.NoError(t, err)
	assert.True(t, ending)

	status, err := NewEvaluator().Classify(running, c)
	require.NoError(t, err)
	assert.Equal(t, SupportEndingSoon, status)
}

func TestClassify_PatchVersionAgainstMinorOnlyCatalog(t *testing.T) {
	// matching is exact: "1.24" stands for 1.24.0 and does not cover 1.24.9
	running := version.MustParse("v1.24.9")
	c := catalogOf("1.24", "1.25", "1.26")

	assert.False(t, IsSupported(running, c))
	status, err := NewEvaluator().Classify(running, c)
	require.NoError(t, err)
	assert.Equal(t, NotSupported, status)

	status, err = NewEvaluator().Classify(version.MustParse("v1.24.0"), c)
	require.NoError(t, err)
	assert.Equal(t, SupportEndingSoon, status)
}

func TestClassify_CustomRule(t *testing.T) {
	never := func(version.Version, catalog.Catalog) (bool, error) { return false, nil }
	evaluator := &Evaluator{EndingSoon: never}

	got, err := evaluator.Classify(version.MustParse("1.24"), catalogOf("1.24"))
	require.NoError(t, err)
	assert.Equal(t, Supported, got)
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "Not Supported", NotSupported.String())
	assert.Equal(t, "Support Ending Soon", SupportEndingSoon.String())
	assert.Equal(t, "Supported", Supported.String())
	assert.Contains(t, NotSupported.Description(), "no longer covered")
	assert.Contains(t, SupportEndingSoon.Description(), "will soon lose support")

	b, err := SupportEndingSoon.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Support Ending Soon", string(b))
}
