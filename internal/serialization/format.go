package serialization

import "time"

// Format constants.
const (
	MagicBytes      = "TOMO"
	FormatVersion   = 1
	HeaderAlignment = 64 // Align tensor data to 64 bytes
)

// Flags for the .tomo format.
const (
	FlagHasMetadata uint32 = 1 << 0 // bit 0: custom metadata included
)

// libraryVersion is recorded in every written file.
const libraryVersion = "0.1.0"

// Header is the JSON header of a .tomo file.
type Header struct {
	FormatVersion  int               `json:"format_version"`  // Version of the .tomo format
	LibraryVersion string            `json:"library_version"` // Version of tomo that created this file
	ModelType      string            `json:"model_type"`      // Type of model (e.g., "PositiveWavefunction")
	CreatedAt      time.Time         `json:"created_at"`      // When the file was created
	Tensors        []TensorMeta      `json:"tensors"`         // Tensor metadata, in data-section order
	Checksum       string            `json:"checksum"`        // SHA-256 of the data section, hex encoded
	Metadata       map[string]string `json:"metadata"`        // Custom metadata
}

// TensorMeta describes a tensor in the .tomo file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "weights")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section, in bytes
	Size   int64  `json:"size"`   // Size in bytes
}

// Tensor is a named float64 tensor in row-major layout.
type Tensor struct {
	Name  string
	Shape []int
	Data  []float64
}

// NumElements returns the number of elements implied by the shape.
func (t Tensor) NumElements() int {
	n := 1
	for _, dim := range t.Shape {
		n *= dim
	}
	return n
}
