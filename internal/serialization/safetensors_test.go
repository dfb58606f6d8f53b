package serialization

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radarml/rdcnn/internal/tensor"
)

// rawFile assembles a SafeTensors stream from a literal header.
func rawFile(t *testing.T, header string, data []byte) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(header))))
	buf.WriteString(header)
	buf.Write(data)
	return bytes.NewReader(buf.Bytes())
}

func TestEncodeDecode(t *testing.T) {
	tensors := map[string]*tensor.Tensor{
		"convolutions.0.0.weight": tensor.New([]float32{1, -2, 3.5, 4}, tensor.Shape{1, 1, 2, 2}),
		"convolutions.0.0.bias":   tensor.New([]float32{0.25}, tensor.Shape{1}),
	}
	metadata := map[string]string{"format": "rdcnn"}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tensors, metadata))

	loaded, meta, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, metadata, meta)
	require.Len(t, loaded, 2)
	for name, want := range tensors {
		got := loaded[name]
		require.NotNil(t, got, name)
		assert.Equal(t, want.Shape(), got.Shape())
		assert.Equal(t, want.Data(), got.Data())
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")
	tensors := map[string]*tensor.Tensor{
		"a": tensor.Full(tensor.Shape{2, 3}, 1.5),
	}

	require.NoError(t, WriteFile(path, tensors, nil))

	loaded, meta, err := ReadFile(path)
	require.NoError(t, err)
	assert.Nil(t, meta)
	assert.Equal(t, tensors["a"].Data(), loaded["a"].Data())

	_, _, err = ReadFile(filepath.Join(t.TempDir(), "missing.safetensors"))
	assert.Error(t, err)
}

func TestEncode_ReservedName(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, map[string]*tensor.Tensor{"__metadata__": tensor.Zeros(tensor.Shape{1})}, nil)
	assert.ErrorIs(t, err, ErrInvalidTensorName)
}

func TestDecode_UnsupportedDType(t *testing.T) {
	r := rawFile(t, `{"x":{"dtype":"F16","shape":[2],"data_offsets":[0,4]}}`, make([]byte, 4))

	_, _, err := Decode(r)

	assert.ErrorIs(t, err, ErrUnsupportedDType)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "x", verr.Tensor)
}

func TestDecode_OutOfBounds(t *testing.T) {
	r := rawFile(t, `{"x":{"dtype":"F32","shape":[2],"data_offsets":[0,8]}}`, make([]byte, 4))

	_, _, err := Decode(r)

	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDecode_ShapeSizeMismatch(t *testing.T) {
	r := rawFile(t, `{"x":{"dtype":"F32","shape":[3],"data_offsets":[0,8]}}`, make([]byte, 8))

	_, _, err := Decode(r)

	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDecode_Overlap(t *testing.T) {
	header := `{"a":{"dtype":"F32","shape":[2],"data_offsets":[0,8]},` +
		`"b":{"dtype":"F32","shape":[2],"data_offsets":[4,12]}}`
	r := rawFile(t, header, make([]byte, 12))

	_, _, err := Decode(r)

	assert.ErrorIs(t, err, ErrOffsetOverlap)
}

func TestDecode_HeaderTooLarge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(MaxHeaderSize+1)))

	_, _, err := Decode(&buf)

	assert.ErrorIs(t, err, ErrHeaderTooLarge)
}

func TestDecode_Truncated(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)
}
