package serialization

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
)

// ReaderOptions configures Read.
type ReaderOptions struct {
	SkipChecksumValidation bool // Skip checksum validation (faster but less safe)
	HeaderOnly             bool // Stop after the JSON header; File.Params stays nil
}

// File is a decoded .born file.
type File struct {
	Header Header
	Flags  uint32
	Params tree.Tree
}

// Load reads and validates the .born file at path.
func Load(path string) (*File, error) {
	return LoadWithOptions(path, ReaderOptions{})
}

// LoadWithOptions reads the .born file at path with custom options.
func LoadWithOptions(path string, opts ReaderOptions) (*File, error) {
	//nolint:gosec // G304: the path is chosen by the caller
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	f, err := read(bufio.NewReader(file), opts, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Read decodes a .born stream. The data section may not exceed MaxDataSize.
func Read(r io.Reader, opts ReaderOptions) (*File, error) {
	return read(r, opts, -1)
}

// read decodes a .born stream; fileSize bounds the data section when it is
// known (>= 0).
func read(r io.Reader, opts ReaderOptions, fileSize int64) (*File, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	f := &File{Flags: binary.LittleEndian.Uint32(fixed[8:12])}
	headerSize := binary.LittleEndian.Uint64(fixed[headerSizeOffset : headerSizeOffset+8])
	dataSize := binary.LittleEndian.Uint64(fixed[dataSizeOffset : dataSizeOffset+8])
	var checksum [ChecksumSize]byte
	copy(checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}
	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &f.Header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	pos := int64(FixedHeaderSize) + int64(headerSize)
	if dataSize > MaxDataSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrDataTooLarge, dataSize)
	}
	//nolint:gosec // G115: dataSize <= MaxDataSize
	if fileSize >= 0 && int64(dataSize) > fileSize-alignedOffset(pos) {
		return nil, fmt.Errorf("%w: header claims %d bytes, file holds %d", ErrDataTooLarge, dataSize, max(fileSize-alignedOffset(pos), 0))
	}
	//nolint:gosec // G115: dataSize <= MaxDataSize
	if err := validateTensors(f.Header.Tensors, int64(dataSize)); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if opts.HeaderOnly {
		return f, nil
	}

	if _, err := io.CopyN(io.Discard, r, alignedOffset(pos)-pos); err != nil {
		return nil, fmt.Errorf("failed to skip padding: %w", err)
	}

	// The buffer grows with what the stream delivers, not with the claimed size.
	var buf bytes.Buffer
	//nolint:gosec // G115: dataSize <= MaxDataSize
	if _, err := io.CopyN(&buf, r, int64(dataSize)); err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	data := buf.Bytes()
	if !opts.SkipChecksumValidation && sha256.Sum256(data) != checksum {
		return nil, ErrChecksumMismatch
	}

	f.Params = tree.Tree{}
	for _, meta := range f.Header.Tensors {
		t, err := decodeTensor(data[meta.Offset:meta.Offset+meta.Size], meta)
		if err != nil {
			return nil, err
		}
		scope, name, ok := tree.SplitName(meta.Name)
		if !ok {
			return nil, &ValidationError{Type: "invalid_name", Tensor: meta.Name, Details: "missing scope"}
		}
		f.Params.Set(scope, name, t)
	}
	return f, nil
}

func decodeTensor(raw []byte, meta TensorMeta) (*tensor.Tensor, error) {
	dtype, err := stringToDtype(meta.DType)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(raw)/dtype.Size())
	for i := range values {
		switch dtype {
		case tensor.Float32:
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		case tensor.Float64:
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
	}

	t, err := tensor.FromSlice(values, tensor.Shape(meta.Shape), dtype)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", meta.Name, err)
	}
	return t, nil
}
