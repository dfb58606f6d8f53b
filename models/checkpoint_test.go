package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radarml/rdcnn/internal/backend/cpu"
	"github.com/radarml/rdcnn/internal/nn"
	"github.com/radarml/rdcnn/internal/serialization"
	"github.com/radarml/rdcnn/internal/tensor"
)

func TestRICNN_StateDictKeys(t *testing.T) {
	model, err := NewRICNN(smallConfig(2), cpu.New())
	require.NoError(t, err)

	sd := model.StateDict()

	// 2 tensors for each of 6 convolutions, 4 for each of 4 batch norms.
	assert.Len(t, sd, 6*2+4*4)
	assert.Contains(t, sd, "convolutions.0.0.weight")
	assert.Contains(t, sd, "convolutions.1.1.running_mean")
	assert.Contains(t, sd, "convolutions.5.0.bias")
	assert.NotContains(t, sd, "convolutions.0.1.weight")
}

func TestRICNN_SaveLoad(t *testing.T) {
	cfg := smallConfig(2)
	path := filepath.Join(t.TempDir(), "weights.safetensors")

	src, err := NewRICNN(cfg, cpu.New())
	require.NoError(t, err)
	src.Forward(randomInput(cfg, 2, 1))
	require.NoError(t, src.Save(path))

	cfg.Seed = 99
	dst, err := NewRICNN(cfg, cpu.New())
	require.NoError(t, err)
	require.NoError(t, dst.Load(path))

	for key, want := range src.StateDict() {
		assert.Equal(t, want.Data(), dst.StateDict()[key].Data(), key)
	}

	src.SetTraining(false)
	dst.SetTraining(false)
	x := randomInput(cfg, 1, 2)
	assert.Equal(t, src.Forward(x).Data(), dst.Forward(x).Data())

	_, meta, err := serialization.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rdcnn", meta["format"])
	assert.Equal(t, "6", meta["num_conv_layers"])
	assert.Equal(t, "2,8,6", meta["input_size"])
}

func TestRICNN_LoadMismatchedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.safetensors")

	src, err := NewRICNN(smallConfig(2), cpu.New())
	require.NoError(t, err)
	require.NoError(t, src.Save(path))

	cfg := smallConfig(2)
	cfg.NumFilters = 8
	dst, err := NewRICNN(cfg, cpu.New())
	require.NoError(t, err)

	err = dst.Load(path)
	assert.ErrorIs(t, err, nn.ErrShapeMismatch)

	assert.Error(t, dst.Load(filepath.Join(t.TempDir(), "missing.safetensors")))
}

func TestRICNN_LoadStateDictErrors(t *testing.T) {
	model, err := NewRICNN(smallConfig(1), cpu.New())
	require.NoError(t, err)

	sd := model.StateDict()
	sd["convolutions.9.0.weight"] = tensor.Zeros(tensor.Shape{1})
	assert.ErrorIs(t, model.LoadStateDict(sd), ErrUnexpectedTensor)

	sd = model.StateDict()
	delete(sd, "convolutions.3.1.running_var")
	err = model.LoadStateDict(sd)
	assert.ErrorIs(t, err, nn.ErrMissingTensor)
	assert.Contains(t, err.Error(), "stage 3")
}
