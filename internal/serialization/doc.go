// Package serialization saves and loads parameter trees in the .born format.
//
// Format structure:
//
//	[0x00: Magic "BORN"]
//	[0x04: Version (uint32 LE)]
//	[0x08: Flags (uint32 LE)]
//	[0x0C: reserved]
//	[0x10: Header size (uint64 LE)]
//	[0x18: Data size (uint64 LE)]
//	[0x20: SHA-256 of the data section]
//	[0x40: Header: JSON metadata]
//	[Tensor data: little-endian values, 64-byte aligned]
//
// Besides tensors, the header can carry the muP multipliers recorded when the
// parameters were initialized, so a checkpoint can be resumed with the same
// learning-rate scaling or used as a base model for a wider one.
//
// Example usage:
//
//	err := serialization.Save("model.born", params, serialization.Header{
//	    ModelType: "mlp",
//	    Mup:       meta,
//	})
//
//	f, err := serialization.Load("model.born")
//	params := f.Params
package serialization
