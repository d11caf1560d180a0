// Package embedding holds the face embedding invariants and distance metrics.
// Reference embeddings are fixed-length vectors of finite floats; a vector
// that fails validation must never enter the employee store.
package embedding

import (
	"errors"
	"fmt"
	"math"
)

// Dim is the required embedding dimensionality.
const Dim = 128

var (
	// ErrWrongDimension indicates a vector whose length is not Dim.
	ErrWrongDimension = errors.New("embedding has wrong dimension")

	// ErrNotFinite indicates a vector containing NaN or Inf values.
	ErrNotFinite = errors.New("embedding contains non-finite values")
)

// Validate checks the store-entry invariant: exactly Dim components,
// all of them finite.
func Validate(v []float32) error {
	if len(v) != Dim {
		return fmt.Errorf("%w: got %d, want %d", ErrWrongDimension, len(v), Dim)
	}
	return CheckFinite(v)
}

// CheckFinite returns ErrNotFinite if any component is NaN or Inf.
func CheckFinite(v []float32) error {
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: component %d", ErrNotFinite, i)
		}
	}
	return nil
}
