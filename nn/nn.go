// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn exposes the layer types that make up rdcnn models.
//
// Models return their stages as *Sequential values; callers inspect them
// with type switches on the aliases below.
//
//	for i, stage := range model.Stages() {
//	    for _, m := range stage.Modules() {
//	        if bn, ok := m.(*nn.BatchNorm2D); ok {
//	            fmt.Println(i, bn.RunningMean().Data())
//	        }
//	    }
//	}
package nn

import (
	"github.com/radarml/rdcnn/internal/nn"
)

// Module is the interface shared by all layers.
type Module = nn.Module

// Resetter is implemented by modules with re-initializable parameters.
type Resetter = nn.Resetter

// Trainable is implemented by modules with distinct train/eval behavior.
type Trainable = nn.Trainable

// Parameter is a named learnable tensor.
type Parameter = nn.Parameter

// Sequential chains modules.
type Sequential = nn.Sequential

// Conv2D is a 2D convolution layer.
type Conv2D = nn.Conv2D

// BatchNorm2D is per-channel batch normalization.
type BatchNorm2D = nn.BatchNorm2D

// ReLU is the rectified linear activation.
type ReLU = nn.ReLU

// State dict loading errors.
var (
	ErrMissingTensor = nn.ErrMissingTensor
	ErrShapeMismatch = nn.ErrShapeMismatch
)
