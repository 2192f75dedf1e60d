// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import "time"

type color int

const (
	red color = iota
	green
	blue
)

func (c color) String() string {
	switch c {
	case red:
		return "RED"
	case green:
		return "GREEN"
	case blue:
		return "BLUE"
	}
	return "?"
}

func (color) Values() []color { return []color{red, green, blue} }

type celsius float64

type pair struct {
	Tuple
	Name  string
	Count int
}

type adam struct {
	LR float64 `default:"0.001"`
}

type sgd struct {
	Momentum float64
}

type optimizer struct {
	OneOf
	Adam *adam
	SGD  *sgd `arg:"plain-sgd"`
}

type model struct {
	Hidden int `default:"8"`
	Act    color
}

type config struct {
	Name     string   `help:"Run name."`
	Steps    int      `default:"10"`
	Tags     []string `default:"a,b"`
	Shape    [2]int   `default:"3,4"`
	Seen     map[int]struct{}
	Pair     pair
	Temp     celsius       `default:"21.5"`
	Timeout  time.Duration `default:"1s"`
	Mode     string        `choices:"fast,slow" default:"fast"`
	Verbose  bool
	Limit    *int
	Model    model
	Extra    *model
	Opt      optimizer
	Payload  any `typeparam:"T"`
	Internal int `dcargs:"-"`
	hidden   int
}

func (config) Description() string { return "Training config." }

type node struct {
	Next *node
}
