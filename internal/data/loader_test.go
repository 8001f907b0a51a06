package data_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomo-ml/tomo/internal/data"
)

// TestReadObservations_Valid tests parsing a well-formed measurement file.
func TestReadObservations_Valid(t *testing.T) {
	input := "1 0 1\n0 0 0\n1 1 1\n"

	obs, err := data.ReadObservations(strings.NewReader(input))
	require.NoError(t, err)

	rows, cols := obs.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, []float64{1, 0, 1}, obs.RawRowView(0))
	assert.Equal(t, []float64{0, 0, 0}, obs.RawRowView(1))
	assert.Equal(t, []float64{1, 1, 1}, obs.RawRowView(2))
}

// TestReadObservations_BlankLines tests that blank lines are skipped.
func TestReadObservations_BlankLines(t *testing.T) {
	input := "1 0\n\n   \n0 1\n"

	obs, err := data.ReadObservations(strings.NewReader(input))
	require.NoError(t, err)
	rows, _ := obs.Dims()
	assert.Equal(t, 2, rows)
}

// TestReadObservations_Ragged tests inconsistent record lengths.
func TestReadObservations_Ragged(t *testing.T) {
	input := "1 0 1\n0 0\n"

	_, err := data.ReadObservations(strings.NewReader(input))
	require.ErrorIs(t, err, data.ErrRaggedRecords)
	assert.Contains(t, err.Error(), "line 2")
}

// TestReadObservations_NonBinaryToken tests rejection of values other
// than 0 and 1.
func TestReadObservations_NonBinaryToken(t *testing.T) {
	for _, input := range []string{"1 2 1\n", "1 -1 0\n", "1 x 0\n", "0.5 0 1\n"} {
		_, err := data.ReadObservations(strings.NewReader(input))
		assert.Error(t, err, "input %q accepted", input)
	}
}

// TestReadObservations_Empty tests the empty-input guard.
func TestReadObservations_Empty(t *testing.T) {
	_, err := data.ReadObservations(strings.NewReader(""))
	require.ErrorIs(t, err, data.ErrEmptyFile)

	_, err = data.ReadObservations(strings.NewReader("\n\n"))
	require.ErrorIs(t, err, data.ErrEmptyFile)
}

// TestReadWavefunction_RealColumn tests the single-column format.
func TestReadWavefunction_RealColumn(t *testing.T) {
	input := "0.5\n-0.25\n0.75\n"

	psi, err := data.ReadWavefunction(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 3, psi.Len())
	assert.Equal(t, 0.5, psi.AtVec(0))
	assert.Equal(t, -0.25, psi.AtVec(1))
	assert.Equal(t, 0.75, psi.AtVec(2))
}

// TestReadWavefunction_ZeroImagColumn tests the two-column format with a
// vanishing imaginary part.
func TestReadWavefunction_ZeroImagColumn(t *testing.T) {
	input := "0.5 0.0\n0.5 0\n0.5 1e-15\n0.5 0\n"

	psi, err := data.ReadWavefunction(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 4, psi.Len())
}

// TestReadWavefunction_NonzeroImag tests rejection of complex amplitudes.
func TestReadWavefunction_NonzeroImag(t *testing.T) {
	input := "0.5 0\n0.5 0.3\n"

	_, err := data.ReadWavefunction(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imaginary")
	assert.Contains(t, err.Error(), "line 2")
}

// TestReadWavefunction_BadColumnCount tests rejection of 3+ columns.
func TestReadWavefunction_BadColumnCount(t *testing.T) {
	_, err := data.ReadWavefunction(strings.NewReader("0.5 0 0\n"))
	require.Error(t, err)
}

// TestReadWavefunction_RaggedColumns tests a column count that changes
// mid-file.
func TestReadWavefunction_RaggedColumns(t *testing.T) {
	_, err := data.ReadWavefunction(strings.NewReader("0.5\n0.5 0\n"))
	require.ErrorIs(t, err, data.ErrRaggedRecords)
}

// TestReadWavefunction_InvalidNumber tests unparseable amplitudes.
func TestReadWavefunction_InvalidNumber(t *testing.T) {
	_, err := data.ReadWavefunction(strings.NewReader("abc\n"))
	require.Error(t, err)
}

// TestLoad_FromFiles tests the path-based loaders, including the path in
// error messages.
func TestLoad_FromFiles(t *testing.T) {
	dir := t.TempDir()

	obsPath := filepath.Join(dir, "train.txt")
	require.NoError(t, os.WriteFile(obsPath, []byte("1 0\n0 1\n"), 0o644))
	obs, err := data.LoadObservations(obsPath)
	require.NoError(t, err)
	rows, cols := obs.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)

	psiPath := filepath.Join(dir, "psi.txt")
	require.NoError(t, os.WriteFile(psiPath, []byte("0.7\n0.7\n"), 0o644))
	psi, err := data.LoadWavefunction(psiPath)
	require.NoError(t, err)
	assert.Equal(t, 2, psi.Len())

	badPath := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(badPath, []byte("1 0\n1\n"), 0o644))
	_, err = data.LoadObservations(badPath)
	require.ErrorIs(t, err, data.ErrRaggedRecords)
	assert.Contains(t, err.Error(), badPath)

	_, err = data.LoadObservations(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}

// TestReadObservations_EmptyIsErr ensures ErrEmptyFile survives wrapping
// through the path loader.
func TestReadObservations_EmptyIsErr(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := data.LoadObservations(path)
	require.True(t, errors.Is(err, data.ErrEmptyFile))
}
