// Copyright 2021 Intel Corporation. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vmm

// Rand is the narrow interface RandomAlgorithm needs from
// pkg/randsrc.Source, so this package never imports the concrete random
// source type and stays testable with a stub.
type Rand interface {
	Next(modulus int) int
}

func init() {
	RegisterAlgorithm("R", func(ctx AlgorithmContext) Algorithm { return NewRandomAlgorithm(ctx.Rand) })
}

// RandomAlgorithm draws a uniformly random frame index from the
// deterministic random source. It never consults referenced or modified
// bits, so its output is reproducible given the same random file and
// nothing but the frame count.
type RandomAlgorithm struct {
	source Rand
}

// NewRandomAlgorithm builds a Random algorithm drawing from source.
func NewRandomAlgorithm(source Rand) *RandomAlgorithm {
	return &RandomAlgorithm{source: source}
}

func (a *RandomAlgorithm) Name() string { return "Random" }

func (a *RandomAlgorithm) SelectVictim(frames FrameTable, pteOf PTELookup, tick int64) *Frame {
	return frames[a.source.Next(len(frames))]
}

func (a *RandomAlgorithm) OnMap(f *Frame, tick int64) {}
func (a *RandomAlgorithm) OnUnmap(f *Frame)            {}
func (a *RandomAlgorithm) Configure(map[string]int)    {}
