// Package hilbert enumerates the computational basis of a binary system.
//
// A system of N two-level sites has 2^N basis configurations. The
// enumeration order is fixed: row i holds the binary digits of i with the
// most significant site first, so the ordering matches integer counting
// and is stable across calls. Downstream code (exact normalization,
// fidelity and KL evaluation against a reference wavefunction) relies on
// this ordering being identical to the ordering of externally supplied
// amplitude files.
package hilbert

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MaxSites is the largest system Enumerate will materialize.
//
// The space has 2^N rows of N float64 values; at N=20 that is already
// ~168 MB. Exact enumeration is an evaluation-time tool for small systems,
// not a training-path operation, and refusing larger requests is preferable
// to silently exhausting memory.
const MaxSites = 20

// Common errors.
var (
	ErrInvalidArgument = errors.New("hilbert: number of sites must be positive")
	ErrSpaceTooLarge   = errors.New("hilbert: space exceeds the enumeration cap")
)

// Enumerate generates all 2^numSites binary configurations.
//
// The result is a (2^numSites x numSites) matrix whose rows are the
// configurations in integer-counting order: row 0 is all zeros, row
// 2^numSites-1 is all ones. Two calls with the same argument produce
// identical matrices.
//
// Returns ErrInvalidArgument for numSites <= 0 and ErrSpaceTooLarge for
// numSites > MaxSites.
func Enumerate(numSites int) (*mat.Dense, error) {
	if numSites <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidArgument, numSites)
	}
	if numSites > MaxSites {
		return nil, fmt.Errorf("%w: %d sites needs 2^%d rows (cap is %d sites)",
			ErrSpaceTooLarge, numSites, numSites, MaxSites)
	}

	dim := 1 << numSites
	space := mat.NewDense(dim, numSites, nil)

	for i := 0; i < dim; i++ {
		for j := 0; j < numSites; j++ {
			// Most significant site first.
			if i&(1<<(numSites-1-j)) != 0 {
				space.Set(i, j, 1)
			}
		}
	}

	return space, nil
}

// Index returns the row index of a configuration in the enumeration order.
//
// The configuration is read as a binary integer, most significant site
// first, mirroring Enumerate.
func Index(config mat.Vector) int {
	idx := 0
	for j := 0; j < config.Len(); j++ {
		idx <<= 1
		if config.AtVec(j) != 0 {
			idx |= 1
		}
	}
	return idx
}

// Dim returns the dimension 2^numSites of the space without building it.
func Dim(numSites int) int {
	return 1 << numSites
}
