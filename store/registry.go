package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/exprstat/exprstat/internal/options"
)

// ErrNotFound reports a snapshot name with no registry row.
var ErrNotFound = errors.New("snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS fits (
	name        TEXT PRIMARY KEY,
	formula     TEXT NOT NULL,
	dataset     INTEGER NOT NULL,
	compression INTEGER NOT NULL,
	payload     BLOB NOT NULL,
	created_at  TEXT NOT NULL
);
`

// Registry is an embedded SQLite store of fitted-model snapshots.
//
// Each row records the compression used for its payload, so rows written
// with different default codecs coexist and remain readable.
type Registry struct {
	db          *sql.DB
	compression Compression
	codec       Codec
}

// Entry is one registry row as returned by List, without the payload.
type Entry struct {
	// Name is the snapshot name.
	Name string
	// Formula is the model formula in source notation.
	Formula string
	// Dataset is the fingerprint of the fitted table.
	Dataset uint64
	// Compression is the payload compression algorithm.
	Compression Compression
	// CreatedAt is the snapshot creation time.
	CreatedAt time.Time
}

// registryConfig holds Open configuration.
type registryConfig struct {
	compression Compression
}

// Option is a functional option for Open.
type Option = options.Option[*registryConfig]

// WithCompression sets the compression used for newly saved snapshots.
// The default is Zstd.
func WithCompression(c Compression) Option {
	return options.New(func(cfg *registryConfig) error {
		if _, err := NewCodec(c); err != nil {
			return err
		}
		cfg.compression = c

		return nil
	})
}

// Open opens (creating if needed) a snapshot registry at path. Use the
// in-memory path ":memory:" for throwaway registries.
func Open(path string, opts ...Option) (*Registry, error) {
	cfg := registryConfig{compression: CompressionZstd}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry %q: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize registry schema: %w", err)
	}

	codec, err := NewCodec(cfg.compression)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Registry{db: db, compression: cfg.compression, codec: codec}, nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Save stores snap under its name, replacing any existing row.
func (r *Registry) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Name == "" {
		return fmt.Errorf("snapshot name must not be empty")
	}

	payload, err := snap.Encode(r.codec)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO fits (name, formula, dataset, compression, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			formula = excluded.formula,
			dataset = excluded.dataset,
			compression = excluded.compression,
			payload = excluded.payload,
			created_at = excluded.created_at`,
		snap.Name, snap.Formula, int64(snap.Dataset), int64(r.compression),
		payload, snap.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save snapshot %q: %w", snap.Name, err)
	}

	return nil
}

// Load reads the named snapshot, decompressing with whatever codec the row
// was saved under.
func (r *Registry) Load(ctx context.Context, name string) (*Snapshot, error) {
	var (
		compression int64
		payload     []byte
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT compression, payload FROM fits WHERE name = ?`, name).
		Scan(&compression, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %q: %w", name, err)
	}

	codec, err := NewCodec(Compression(compression))
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", name, err)
	}

	return DecodeSnapshot(payload, codec)
}

// List returns all registry rows ordered by name.
func (r *Registry) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, formula, dataset, compression, created_at FROM fits ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			dataset   int64
			comp      int64
			createdAt string
		)
		if err := rows.Scan(&e.Name, &e.Formula, &dataset, &comp, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		e.Dataset = uint64(dataset)
		e.Compression = Compression(comp)
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("snapshot %q has invalid timestamp: %w", e.Name, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Delete removes the named snapshot. Deleting a missing snapshot returns
// ErrNotFound.
func (r *Registry) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fits WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return nil
}
