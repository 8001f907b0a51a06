// Package serialization provides the native .tomo container for saving and
// loading wavefunction model parameters.
//
// The .tomo format is a small named-tensor binary container:
//
//	Format Structure:
//	  [4 bytes: Magic "TOMO"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON metadata, includes SHA-256 checksum of the data section]
//	  [Tensor data: little-endian float64, 64-byte aligned]
//
// The format supports:
//   - Named float64 tensors of arbitrary shape
//   - Metadata preservation (model type, creation time, custom keys)
//   - Corruption detection via checksum
//
// Example usage:
//
//	tensors := []serialization.Tensor{
//	    {Name: "weights", Shape: []int{10, 4}, Data: weightData},
//	}
//	if err := serialization.Write("model.tomo", "PositiveWavefunction", tensors, nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	file, err := serialization.Read("model.tomo")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	weights, ok := file.Tensor("weights")
package serialization
