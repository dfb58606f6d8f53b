// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/radarml/rdcnn/internal/serialization"
	"github.com/radarml/rdcnn/internal/tensor"
)

const stateDictPrefix = "convolutions."

// StateDict returns every persistent tensor keyed as
// "convolutions.<stage>.<module>.<name>", e.g. "convolutions.1.1.running_mean".
//
// The tensors share storage with the model.
func (m *RICNN) StateDict() map[string]*tensor.Tensor {
	stateDict := make(map[string]*tensor.Tensor)
	for i, stage := range m.stages {
		for name, t := range stage.StateDict() {
			stateDict[fmt.Sprintf("%s%d.%s", stateDictPrefix, i, name)] = t
		}
	}
	return stateDict
}

// LoadStateDict copies tensors into the model.
//
// Every key of StateDict must be present with a matching shape, and no
// other keys are accepted.
func (m *RICNN) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	expected := m.StateDict()
	for key := range stateDict {
		if _, ok := expected[key]; !ok {
			return fmt.Errorf("%w: %q", ErrUnexpectedTensor, key)
		}
	}

	for i, stage := range m.stages {
		prefix := stateDictPrefix + strconv.Itoa(i) + "."
		stageStateDict := make(map[string]*tensor.Tensor)
		for key, t := range stateDict {
			if name, ok := strings.CutPrefix(key, prefix); ok {
				stageStateDict[name] = t
			}
		}
		if err := stage.LoadStateDict(stageStateDict); err != nil {
			return fmt.Errorf("stage %d: %w", i, err)
		}
	}
	return nil
}

// Save writes the model's state dict to path in SafeTensors format.
//
// The resolved configuration is stored in the file metadata.
func (m *RICNN) Save(path string) error {
	if err := serialization.WriteFile(path, m.StateDict(), m.metadata()); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

// Load reads a SafeTensors file written by Save into the model.
func (m *RICNN) Load(path string) error {
	stateDict, _, err := serialization.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	if err := m.LoadStateDict(stateDict); err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	return nil
}

func (m *RICNN) metadata() map[string]string {
	cfg := m.cfg
	return map[string]string{
		"format":          "rdcnn",
		"num_conv_layers": strconv.Itoa(cfg.NumConvLayers),
		"num_filters":     strconv.Itoa(cfg.NumFilters),
		"filter_size":     fmt.Sprintf("%d,%d", cfg.FilterSize[0], cfg.FilterSize[1]),
		"padding":         fmt.Sprintf("%d,%d", cfg.Padding[0], cfg.Padding[1]),
		"use_batch_norm":  strconv.FormatBool(cfg.BatchNorm()),
		"input_size":      fmt.Sprintf("%d,%d,%d", cfg.InputSize[0], cfg.InputSize[1], cfg.InputSize[2]),
	}
}
