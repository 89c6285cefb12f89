// Package store persists fitted linear models so the worked examples can
// re-examine earlier fits without recomputing them.
//
// A fit is captured as a Snapshot: the formula text, the coefficient table,
// the covariance matrix, the residual bookkeeping and the fingerprint of
// the dataset it was fitted on. Snapshots serialize to JSON and are
// compressed with a pluggable codec (Zstd, S2, LZ4 block, or none) before
// hitting storage.
//
// The Registry is an embedded SQLite database keyed by snapshot name:
//
//	reg, err := store.Open("fits.db", store.WithCompression(store.CompressionZstd))
//	if err != nil { ... }
//	defer reg.Close()
//
//	err = reg.Save(ctx, store.NewSnapshot("genotype-ref", fit))
//	snap, err := reg.Load(ctx, "genotype-ref")
//
// The compression used at save time is recorded per row, so a registry can
// be reopened with a different default codec and still read old rows.
package store
