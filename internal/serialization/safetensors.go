// Package serialization reads and writes state dictionaries in the
// SafeTensors format.
//
// Format:
//
//	[8 bytes: header_size (uint64 LE)]
//	[header_size bytes: JSON header]
//	[tensor data: raw little-endian bytes]
//
// Only F32 tensors are supported.
package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/radarml/rdcnn/internal/tensor"
)

// MaxHeaderSize bounds the JSON header read from untrusted files.
const MaxHeaderSize = 100 << 20

const metadataKey = "__metadata__"

// tensorHeader represents a tensor in the SafeTensors header.
type tensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// WriteFile writes tensors to path in SafeTensors format.
func WriteFile(path string, tensors map[string]*tensor.Tensor, metadata map[string]string) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(file)
	if err := Encode(bw, tensors, metadata); err != nil {
		return err
	}
	return bw.Flush()
}

// Encode writes tensors to w in SafeTensors format.
//
// Tensors are written in alphabetical order by name.
func Encode(w io.Writer, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if name == "" || name == metadataKey {
			return &ValidationError{Tensor: name, Details: "reserved or empty name", Err: ErrInvalidTensorName}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}

	var offset int64
	for _, name := range names {
		t := tensors[name]
		size := int64(t.NumElements() * 4)

		shape := make([]int64, t.Rank())
		for i, dim := range t.Shape() {
			shape[i] = int64(dim)
		}

		header[name] = tensorHeader{
			DType:       "F32",
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	buf := make([]byte, 4)
	for _, name := range names {
		for _, v := range tensors[name].Data() {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("failed to write tensor %s: %w", name, err)
			}
		}
	}

	return nil
}

// ReadFile reads a SafeTensors file.
func ReadFile(path string) (map[string]*tensor.Tensor, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close() // Best effort close
	}()

	return Decode(bufio.NewReader(file))
}

// Decode reads SafeTensors data from r and returns the tensors and metadata.
func Decode(r io.Reader) (map[string]*tensor.Tensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, &ValidationError{Details: fmt.Sprintf("%d bytes", headerSize), Err: ErrHeaderTooLarge}
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	var metadata map[string]string
	infos := make(map[string]tensorHeader, len(raw))
	for name, value := range raw {
		if name == metadataKey {
			if err := json.Unmarshal(value, &metadata); err != nil {
				return nil, nil, fmt.Errorf("failed to parse metadata: %w", err)
			}
			continue
		}
		var info tensorHeader
		if err := json.Unmarshal(value, &info); err != nil {
			return nil, nil, fmt.Errorf("failed to parse tensor %s: %w", name, err)
		}
		if info.DType != "F32" {
			return nil, nil, &ValidationError{Tensor: name, Details: info.DType, Err: ErrUnsupportedDType}
		}
		infos[name] = info
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	if err := validateOffsets(infos, int64(len(data))); err != nil {
		return nil, nil, err
	}

	tensors := make(map[string]*tensor.Tensor, len(infos))
	for name, info := range infos {
		shape := make(tensor.Shape, len(info.Shape))
		for i, dim := range info.Shape {
			shape[i] = int(dim)
		}

		chunk := data[info.DataOffsets[0]:info.DataOffsets[1]]
		values := make([]float32, len(chunk)/4)
		for i := range values {
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(chunk[i*4:]))
		}

		t, err := tensor.FromSlice(values, shape)
		if err != nil {
			return nil, nil, &ValidationError{Tensor: name, Details: err.Error(), Err: ErrOutOfBounds}
		}
		tensors[name] = t
	}

	return tensors, metadata, nil
}

// validateOffsets checks that every tensor lies inside the data section and
// that no two tensors overlap.
func validateOffsets(infos map[string]tensorHeader, dataLen int64) error {
	type span struct {
		name       string
		start, end int64
	}
	spans := make([]span, 0, len(infos))
	for name, info := range infos {
		start, end := info.DataOffsets[0], info.DataOffsets[1]
		if start < 0 || end < start || end > dataLen {
			return &ValidationError{Tensor: name, Details: fmt.Sprintf("offsets [%d, %d) with %d data bytes", start, end, dataLen), Err: ErrOutOfBounds}
		}
		if (end-start)%4 != 0 {
			return &ValidationError{Tensor: name, Details: "size is not a multiple of 4 bytes", Err: ErrOutOfBounds}
		}
		spans = append(spans, span{name, start, end})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return &ValidationError{Tensor: spans[i].name, Details: "overlaps " + spans[i-1].name, Err: ErrOffsetOverlap}
		}
	}
	return nil
}
