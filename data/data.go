// Package data provides the public API for loading measurement records
// and reference wavefunctions.
//
// Measurement files hold one basis outcome per line as whitespace-separated
// 0/1 tokens; wavefunction files hold one amplitude per line in Hilbert
// space enumeration order. See the format details on each function.
package data

import (
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/tomo-ml/tomo/internal/data"
)

// LoadObservations reads measurement outcomes from a file into a
// (numSamples x numSites) binary matrix.
func LoadObservations(path string) (*mat.Dense, error) {
	return data.LoadObservations(path)
}

// ReadObservations reads measurement outcomes from a stream.
func ReadObservations(r io.Reader) (*mat.Dense, error) {
	return data.ReadObservations(r)
}

// LoadWavefunction reads reference amplitudes from a file, in Hilbert
// space enumeration order.
func LoadWavefunction(path string) (*mat.VecDense, error) {
	return data.LoadWavefunction(path)
}

// ReadWavefunction reads reference amplitudes from a stream.
func ReadWavefunction(r io.Reader) (*mat.VecDense, error) {
	return data.ReadWavefunction(r)
}
