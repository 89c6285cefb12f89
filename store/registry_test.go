package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprstat/exprstat/dataset"
	"github.com/exprstat/exprstat/design"
	"github.com/exprstat/exprstat/formula"
	"github.com/exprstat/exprstat/lm"
)

func fitGenotype(t *testing.T) *lm.FitResult {
	t.Helper()

	tbl, err := dataset.NewBuilder().
		Factor("genotype", []string{"WT", "WT", "KO", "KO"}, "WT", "KO").
		Response("expression", []float64{2.0, 2.2, 4.1, 4.3}).
		Build()
	require.NoError(t, err)

	dm, err := design.Build(tbl, formula.MustParse("expression ~ genotype"))
	require.NoError(t, err)

	fit, err := lm.Fit(dm)
	require.NoError(t, err)

	return fit
}

func TestSnapshot_RoundTrip(t *testing.T) {
	fit := fitGenotype(t)
	snap := NewSnapshot("genotype-ref", fit)

	require.Equal(t, "expression ~ genotype", snap.Formula)
	require.Equal(t, fit.Design().Table().Fingerprint(), snap.Dataset)
	require.Equal(t, 2, snap.ResidualDF)

	for _, compression := range []Compression{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4} {
		t.Run(compression.String(), func(t *testing.T) {
			codec, err := NewCodec(compression)
			require.NoError(t, err)

			payload, err := snap.Encode(codec)
			require.NoError(t, err)

			got, err := DecodeSnapshot(payload, codec)
			require.NoError(t, err)
			require.Equal(t, snap.Name, got.Name)
			require.Equal(t, snap.Coefficients, got.Coefficients)
			require.Equal(t, snap.Cov, got.Cov)
		})
	}
}

func TestSnapshot_SaturatedFitSerializes(t *testing.T) {
	// Saturated fits have NaN standard errors; the snapshot must survive
	// the JSON round trip with NaN restored.
	tbl := dataset.TwoPointLine(3, 2)
	dm, err := design.Build(tbl, formula.MustParse("expression ~ age"))
	require.NoError(t, err)
	fit, err := lm.Fit(dm)
	require.NoError(t, err)

	snap := NewSnapshot("saturated", fit)
	codec := NewNoOpCodec()

	payload, err := snap.Encode(codec)
	require.NoError(t, err)

	got, err := DecodeSnapshot(payload, codec)
	require.NoError(t, err)
	require.True(t, math.IsNaN(float64(got.Sigma2)))

	c, ok := got.Coefficient("age")
	require.True(t, ok)
	assert.Equal(t, 2.0, c.Estimate)
	assert.True(t, math.IsNaN(float64(c.StdErr)))
}

func TestRegistry_SaveLoad(t *testing.T) {
	ctx := context.Background()
	fit := fitGenotype(t)

	reg, err := Open(filepath.Join(t.TempDir(), "fits.db"))
	require.NoError(t, err)
	defer reg.Close()

	snap := NewSnapshot("genotype-ref", fit)
	require.NoError(t, reg.Save(ctx, snap))

	got, err := reg.Load(ctx, "genotype-ref")
	require.NoError(t, err)
	require.Equal(t, snap.Formula, got.Formula)
	require.Equal(t, snap.Dataset, got.Dataset)
	require.Equal(t, snap.Coefficients, got.Coefficients)

	_, err = reg.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	fit := fitGenotype(t)

	reg, err := Open(filepath.Join(t.TempDir(), "fits.db"))
	require.NoError(t, err)
	defer reg.Close()

	snap := NewSnapshot("fit", fit)
	require.NoError(t, reg.Save(ctx, snap))
	require.NoError(t, reg.Save(ctx, snap), "saving under an existing name replaces the row")

	entries, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRegistry_List(t *testing.T) {
	ctx := context.Background()
	fit := fitGenotype(t)

	reg, err := Open(filepath.Join(t.TempDir(), "fits.db"), WithCompression(CompressionLZ4))
	require.NoError(t, err)
	defer reg.Close()

	require.NoError(t, reg.Save(ctx, NewSnapshot("b-fit", fit)))
	require.NoError(t, reg.Save(ctx, NewSnapshot("a-fit", fit)))

	entries, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a-fit", entries[0].Name, "entries are ordered by name")
	assert.Equal(t, "b-fit", entries[1].Name)
	assert.Equal(t, CompressionLZ4, entries[0].Compression)
	assert.Equal(t, "expression ~ genotype", entries[0].Formula)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestRegistry_CrossCodecRead(t *testing.T) {
	// A row saved with one codec must load from a registry opened with a
	// different default, via the per-row compression tag.
	ctx := context.Background()
	fit := fitGenotype(t)
	path := filepath.Join(t.TempDir(), "fits.db")

	lz4Reg, err := Open(path, WithCompression(CompressionLZ4))
	require.NoError(t, err)
	require.NoError(t, lz4Reg.Save(ctx, NewSnapshot("fit", fit)))
	require.NoError(t, lz4Reg.Close())

	zstdReg, err := Open(path, WithCompression(CompressionZstd))
	require.NoError(t, err)
	defer zstdReg.Close()

	got, err := zstdReg.Load(ctx, "fit")
	require.NoError(t, err)
	assert.Equal(t, "expression ~ genotype", got.Formula)
}

func TestRegistry_Delete(t *testing.T) {
	ctx := context.Background()
	fit := fitGenotype(t)

	reg, err := Open(filepath.Join(t.TempDir(), "fits.db"))
	require.NoError(t, err)
	defer reg.Close()

	require.NoError(t, reg.Save(ctx, NewSnapshot("fit", fit)))
	require.NoError(t, reg.Delete(ctx, "fit"))
	require.ErrorIs(t, reg.Delete(ctx, "fit"), ErrNotFound)
}

func TestRegistry_InvalidOptions(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "fits.db"), WithCompression(Compression(0xff)))
	require.Error(t, err)
}

func TestRegistry_EmptyName(t *testing.T) {
	ctx := context.Background()
	fit := fitGenotype(t)

	reg, err := Open(filepath.Join(t.TempDir(), "fits.db"))
	require.NoError(t, err)
	defer reg.Close()

	snap := NewSnapshot("", fit)
	require.Error(t, reg.Save(ctx, snap))
}
