package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

// Write serializes named tensors to a .tomo file at path.
//
// Tensors are written in the order given; each Tensor's Data length must
// match its Shape. The data-section checksum is stored in the header so
// Read can detect corruption.
func Write(path, modelType string, tensors []Tensor, metadata map[string]string) (err error) {
	//nolint:gosec // G304: the save path is caller-supplied by design
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return WriteTo(file, modelType, tensors, metadata)
}

// WriteTo serializes named tensors to an io.Writer in .tomo format.
func WriteTo(w io.Writer, modelType string, tensors []Tensor, metadata map[string]string) error {
	// Encode the data section first: offsets and the checksum go into the
	// header, which precedes the data on the wire.
	var currentOffset int64
	metas := make([]TensorMeta, 0, len(tensors))
	seen := make(map[string]bool, len(tensors))

	var dataSize int64
	for _, t := range tensors {
		if len(t.Data) != t.NumElements() {
			return &FormatError{Tensor: t.Name,
				Err: fmt.Errorf("%w: shape %v implies %d elements, have %d",
					ErrSizeMismatch, t.Shape, t.NumElements(), len(t.Data))}
		}
		dataSize += int64(len(t.Data) * 8)
	}

	data := make([]byte, 0, dataSize)
	for _, t := range tensors {
		if seen[t.Name] {
			return &FormatError{Tensor: t.Name, Err: ErrDuplicateTensor}
		}
		seen[t.Name] = true

		size := int64(len(t.Data) * 8)
		metas = append(metas, TensorMeta{
			Name:   t.Name,
			Shape:  t.Shape,
			Offset: currentOffset,
			Size:   size,
		})
		currentOffset += size

		for _, v := range t.Data {
			data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
		}
	}

	header := Header{
		FormatVersion:  FormatVersion,
		LibraryVersion: libraryVersion,
		ModelType:      modelType,
		CreatedAt:      time.Now().UTC(),
		Tensors:        metas,
		Checksum:       computeChecksum(data),
		Metadata:       metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	// Magic bytes.
	if _, err := w.Write([]byte(MagicBytes)); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}

	// Version.
	if err := binary.Write(w, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}

	// Flags.
	flags := uint32(0)
	if len(metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if err := binary.Write(w, binary.LittleEndian, flags); err != nil {
		return fmt.Errorf("failed to write flags: %w", err)
	}

	// Header size and header JSON.
	headerSize := uint64(len(headerJSON))
	if err := binary.Write(w, binary.LittleEndian, headerSize); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Padding to align the data section.
	currentPos := int64(4+4+4+8) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	if padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	// Data section.
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}

	return nil
}
