// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/kevin-thankyou-lin/dcargs/pkg/dcargs"
)

// Activation is an enum: its names are the command-line choices.
type Activation int

const (
	ReLU Activation = iota
	GELU
	Tanh
)

func (a Activation) String() string {
	switch a {
	case ReLU:
		return "RELU"
	case GELU:
		return "GELU"
	case Tanh:
		return "TANH"
	}
	return "UNKNOWN"
}

func (Activation) Values() []Activation {
	return []Activation{ReLU, GELU, Tanh}
}

type Encoder struct {
	Layers int        `default:"2" help:"Number of layers."`
	Hidden int        `default:"128" help:"Hidden size."`
	Act    Activation `default:"GELU"`
	Bias   bool       `default:"true" help:"Add bias terms."`
}

type Betas struct {
	dcargs.Tuple
	B1 float64
	B2 float64
}

type Adam struct {
	LR    float64 `default:"0.001" help:"Learning rate."`
	Betas Betas   `default:"0.9,0.999"`
}

func (Adam) Description() string { return "Adam with decoupled weight decay." }

type SGD struct {
	LR       float64 `default:"0.01" help:"Learning rate."`
	Momentum float64 `default:"0.9"`
	Nesterov bool
}

func (SGD) Description() string { return "Plain stochastic gradient descent." }

type Optimizer struct {
	dcargs.OneOf
	Adam *Adam
	SGD  *SGD
}

// ImageData is bound to Experiment.Data.
type ImageData struct {
	Root string   `default:"./data" help:"Dataset root."`
	Size [2]int   `default:"224,224"`
	Aug  []string `default:"flip,crop" choices:"flip,crop,jitter"`
}

type Experiment struct {
	Name      string        `help:"Experiment name."`
	Seed      int           `default:"0"`
	Tags      *[]string     `help:"Free-form tags."`
	Timeout   time.Duration `default:"30m"`
	Device    string        `default:"cpu" choices:"cpu,cuda,mps"`
	Encoder   Encoder
	Decoder   *Encoder `help:"Optional decoder; set any decoder flag to enable."`
	Optimizer Optimizer
	Data      any `typeparam:"D"`
}

func (Experiment) Description() string {
	return "Train a toy model. Flags are generated from the Experiment struct."
}
