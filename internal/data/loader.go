// Package data reads measurement records and reference wavefunctions from
// flat text files.
//
// Measurement files hold one computational-basis outcome per line as
// whitespace-delimited 0/1 tokens. Reference wavefunction files hold one
// amplitude per line, in the same configuration ordering the hilbert
// package enumerates; an optional second column carries an imaginary part,
// which must vanish for the positive-real model.
package data

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Common errors.
var (
	ErrEmptyFile     = errors.New("file contains no records")
	ErrRaggedRecords = errors.New("records have inconsistent lengths")
)

// imagTolerance bounds how large an imaginary column may be before a
// wavefunction is rejected as non-real.
const imagTolerance = 1e-12

// LoadObservations reads measurement outcomes from a file.
//
// Returns a (numSamples x numSites) binary matrix. Every line must have
// the same number of tokens and every token must be 0 or 1.
func LoadObservations(path string) (_ *mat.Dense, err error) {
	//nolint:gosec // G304: the data path is caller-supplied by design
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	obs, err := ReadObservations(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obs, nil
}

// ReadObservations reads measurement outcomes from a stream.
func ReadObservations(r io.Reader) (*mat.Dense, error) {
	var rows [][]float64
	numSites := -1

	scanner := newLineScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue // Blank lines are tolerated.
		}
		if numSites == -1 {
			numSites = len(fields)
		} else if len(fields) != numSites {
			return nil, fmt.Errorf("line %d: %w: got %d tokens, want %d",
				line, ErrRaggedRecords, len(fields), numSites)
		}

		row := make([]float64, numSites)
		for j, field := range fields {
			switch field {
			case "0":
				row[j] = 0
			case "1":
				row[j] = 1
			default:
				return nil, fmt.Errorf("line %d: token %d: %q is not a binary outcome", line, j+1, field)
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	out := mat.NewDense(len(rows), numSites, nil)
	for i, row := range rows {
		out.SetRow(i, row)
	}
	return out, nil
}

// LoadWavefunction reads reference amplitudes from a file.
//
// Each line holds one amplitude: either a single real value, or a real and
// an imaginary column. Imaginary parts larger than a small tolerance are
// rejected since the positive-real model cannot represent them. The line
// ordering must match the Hilbert space enumeration order.
func LoadWavefunction(path string) (_ *mat.VecDense, err error) {
	//nolint:gosec // G304: the data path is caller-supplied by design
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	psi, err := ReadWavefunction(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return psi, nil
}

// ReadWavefunction reads reference amplitudes from a stream.
func ReadWavefunction(r io.Reader) (*mat.VecDense, error) {
	var amps []float64
	numCols := -1

	scanner := newLineScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if numCols == -1 {
			numCols = len(fields)
			if numCols != 1 && numCols != 2 {
				return nil, fmt.Errorf("line %d: want 1 (real) or 2 (real, imag) columns, got %d",
					line, numCols)
			}
		} else if len(fields) != numCols {
			return nil, fmt.Errorf("line %d: %w: got %d columns, want %d",
				line, ErrRaggedRecords, len(fields), numCols)
		}

		re, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amplitude: %w", line, err)
		}
		if numCols == 2 {
			im, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid imaginary part: %w", line, err)
			}
			if math.Abs(im) > imagTolerance {
				return nil, fmt.Errorf("line %d: imaginary part %g is nonzero; positive-real model requires real amplitudes",
					line, im)
			}
		}
		amps = append(amps, re)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read amplitudes: %w", err)
	}
	if len(amps) == 0 {
		return nil, ErrEmptyFile
	}

	return mat.NewVecDense(len(amps), amps), nil
}

// newLineScanner builds a scanner with a buffer large enough for wide
// measurement records.
func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
