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
	"time"

	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
)

// Version is recorded in every written header.
const Version = "0.1.0"

// Save writes params to a new .born file at path.
func Save(path string, params tree.Tree, header Header) (err error) {
	//nolint:gosec // G304: the path is chosen by the caller
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	buf := bufio.NewWriter(file)
	if err := Write(buf, params, header); err != nil {
		return err
	}
	return buf.Flush()
}

// Write encodes params in .born format.
//
// Tensors are written in scope then name order. header.Tensors and
// header.FormatVersion are filled in by Write; CreatedAt defaults to now.
func Write(w io.Writer, params tree.Tree, header Header) error {
	var data bytes.Buffer
	header.Tensors = make([]TensorMeta, 0, params.Len())

	var encErr error
	params.Walk(func(scope, name string, t *tensor.Tensor) {
		if encErr != nil {
			return
		}
		offset := int64(data.Len())
		if err := encodeTensor(&data, t); err != nil {
			encErr = fmt.Errorf("failed to encode tensor %s: %w", tree.JoinName(scope, name), err)
			return
		}
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   tree.JoinName(scope, name),
			DType:  dtypeToString(t.DType()),
			Shape:  []int(t.Shape().Clone()),
			Offset: offset,
			Size:   int64(data.Len()) - offset,
		})
	})
	if encErr != nil {
		return encErr
	}

	header.FormatVersion = FormatVersion
	if header.Version == "" {
		header.Version = Version
	}
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	var flags uint32
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.Mup != nil {
		flags |= FlagHasMup
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[headerSizeOffset:headerSizeOffset+8], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[dataSizeOffset:dataSizeOffset+8], uint64(data.Len()))
	checksum := sha256.Sum256(data.Bytes())
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	pos := int64(FixedHeaderSize + len(headerJSON))
	if padding := alignedOffset(pos) - pos; padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.Write(data.Bytes()); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

func encodeTensor(w *bytes.Buffer, t *tensor.Tensor) error {
	switch t.DType() {
	case tensor.Float32:
		var b [4]byte
		for _, v := range t.Data() {
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v)))
			w.Write(b[:])
		}
	case tensor.Float64:
		var b [8]byte
		for _, v := range t.Data() {
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
			w.Write(b[:])
		}
	default:
		return fmt.Errorf("unsupported dtype: %s", t.DType())
	}
	return nil
}
