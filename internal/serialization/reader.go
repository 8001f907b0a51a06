package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// File is a fully parsed .tomo file.
type File struct {
	Header  Header
	tensors map[string]Tensor
}

// Tensor looks up a tensor by name.
func (f *File) Tensor(name string) (Tensor, bool) {
	t, ok := f.tensors[name]
	return t, ok
}

// Names returns the tensor names in data-section order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Header.Tensors))
	for _, meta := range f.Header.Tensors {
		names = append(names, meta.Name)
	}
	return names
}

// Read parses a .tomo file from disk, validating the data checksum.
func Read(path string) (_ *File, err error) {
	//nolint:gosec // G304: the load path is caller-supplied by design
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	parsed, err := ReadFrom(file)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	return parsed, nil
}

// ReadFrom parses a .tomo stream.
func ReadFrom(r io.Reader) (*File, error) {
	// Magic bytes.
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, ErrInvalidMagic
	}

	// Version.
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	// Flags (currently informational only).
	var flags uint32
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, fmt.Errorf("failed to read flags: %w", err)
	}

	// Header.
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > maxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	// Skip alignment padding.
	currentPos := int64(4+4+4+8) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	if padding > 0 {
		if _, err := io.CopyN(io.Discard, r, padding); err != nil {
			return nil, fmt.Errorf("failed to skip padding: %w", err)
		}
	}

	// Data section.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	if err := validateChecksum(computeChecksum(data), header.Checksum); err != nil {
		return nil, err
	}

	// Decode tensors.
	tensors := make(map[string]Tensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		if _, exists := tensors[meta.Name]; exists {
			return nil, &FormatError{Tensor: meta.Name, Err: ErrDuplicateTensor}
		}
		if meta.Offset < 0 || meta.Size < 0 || meta.Offset+meta.Size > int64(len(data)) {
			return nil, &FormatError{Tensor: meta.Name, Err: ErrOutOfBounds}
		}

		t := Tensor{Name: meta.Name, Shape: meta.Shape}
		if int64(t.NumElements()*8) != meta.Size {
			return nil, &FormatError{Tensor: meta.Name,
				Err: fmt.Errorf("%w: shape %v vs %d bytes", ErrSizeMismatch, meta.Shape, meta.Size)}
		}

		t.Data = make([]float64, t.NumElements())
		raw := data[meta.Offset : meta.Offset+meta.Size]
		for i := range t.Data {
			t.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		tensors[meta.Name] = t
	}

	return &File{Header: header, tensors: tensors}, nil
}
