package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/exprstat/exprstat/lm"
)

// jsonFloat is a float64 that serializes NaN as JSON null. Saturated fits
// (zero residual degrees of freedom) carry NaN standard errors and p
// values, which encoding/json rejects.
type jsonFloat float64

// MarshalJSON implements json.Marshaler.
func (f jsonFloat) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) {
		return []byte("null"), nil
	}

	return json.Marshal(float64(f))
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = jsonFloat(math.NaN())
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = jsonFloat(v)

	return nil
}

// SnapshotCoefficient is one coefficient row in a snapshot.
type SnapshotCoefficient struct {
	Name     string    `json:"name"`
	Estimate float64   `json:"estimate"`
	StdErr   jsonFloat `json:"std_err"`
	TValue   jsonFloat `json:"t_value"`
	PValue   jsonFloat `json:"p_value"`
}

// Snapshot captures a fitted model for persistence: everything needed to
// re-read the coefficient table and re-evaluate contrasts, plus the
// fingerprint of the dataset the model was fitted on.
type Snapshot struct {
	// Name identifies the snapshot in the registry.
	Name string `json:"name"`
	// Formula is the model formula in source notation.
	Formula string `json:"formula"`
	// Dataset is the fingerprint of the source table.
	Dataset uint64 `json:"dataset"`
	// N is the number of observations.
	N int `json:"n"`
	// ResidualDF is n minus the number of estimated coefficients.
	ResidualDF int `json:"residual_df"`
	// Sigma2 is the studentized residual variance.
	Sigma2 jsonFloat `json:"sigma2"`
	// RSquared is the coefficient of determination.
	RSquared float64 `json:"r_squared"`
	// Coefficients is the coefficient table in design-column order.
	Coefficients []SnapshotCoefficient `json:"coefficients"`
	// Cov is the coefficient covariance matrix, row major.
	Cov [][]jsonFloat `json:"cov"`
	// CreatedAt is the snapshot creation time.
	CreatedAt time.Time `json:"created_at"`
}

// NewSnapshot captures fit under the given registry name.
func NewSnapshot(name string, fit *lm.FitResult) *Snapshot {
	coeffs := make([]SnapshotCoefficient, len(fit.Coefficients))
	for i, c := range fit.Coefficients {
		coeffs[i] = SnapshotCoefficient{
			Name:     c.Name,
			Estimate: c.Estimate,
			StdErr:   jsonFloat(c.StdErr),
			TValue:   jsonFloat(c.TValue),
			PValue:   jsonFloat(c.PValue),
		}
	}

	cov := fit.Cov()
	p := len(fit.Coefficients)
	covRows := make([][]jsonFloat, p)
	for i := 0; i < p; i++ {
		covRows[i] = make([]jsonFloat, p)
		for j := 0; j < p; j++ {
			covRows[i][j] = jsonFloat(cov.At(i, j))
		}
	}

	return &Snapshot{
		Name:         name,
		Formula:      fit.Design().Formula().String(),
		Dataset:      fit.Design().Table().Fingerprint(),
		N:            fit.N(),
		ResidualDF:   fit.ResidualDF,
		Sigma2:       jsonFloat(fit.Sigma2),
		RSquared:     fit.RSquared,
		Coefficients: coeffs,
		Cov:          covRows,
		CreatedAt:    time.Now().UTC(),
	}
}

// Coefficient returns the named coefficient row.
func (s *Snapshot) Coefficient(name string) (SnapshotCoefficient, bool) {
	for _, c := range s.Coefficients {
		if c.Name == name {
			return c, true
		}
	}

	return SnapshotCoefficient{}, false
}

// Encode serializes the snapshot to JSON and compresses it with codec.
func (s *Snapshot) Encode(codec Codec) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot %q: %w", s.Name, err)
	}

	payload, err := codec.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to compress snapshot %q: %w", s.Name, err)
	}

	return payload, nil
}

// DecodeSnapshot decompresses payload with codec and deserializes the
// snapshot.
func DecodeSnapshot(payload []byte, codec Codec) (*Snapshot, error) {
	raw, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &s, nil
}
