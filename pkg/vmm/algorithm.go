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

import (
	"fmt"
	"sort"
	"strings"
)

// PTELookup resolves the PTE a frame's reverse mapping points at. Clock,
// NRU, Aging and Working-Set all classify frames by their referenced
// process's PTE bits; PTELookup is how they reach those bits without the
// vmm package exposing the whole Process type to every algorithm.
type PTELookup func(pid, vpage int) *PTE

// Algorithm is the shared surface all six replacement strategies implement.
// SelectVictim is the only operation the pager depends on; OnMap/OnUnmap
// are optional hooks Aging and Working-Set use to reset per-frame
// scratch state, matching the "single interface surface... plus two
// optional hooks" design.
type Algorithm interface {
	// Name identifies the algorithm for the -o a ASELECT diagnostic line.
	Name() string
	// SelectVictim picks a frame to evict. tick is the dispatcher's
	// inst_count at the moment of the fault; NRU and Working-Set use it
	// as their time base. The frame still carries its live reverse
	// mapping; the caller is responsible for unmapping it.
	SelectVictim(frames FrameTable, pteOf PTELookup, tick int64) *Frame
	// OnMap is called after a frame is newly mapped.
	OnMap(f *Frame, tick int64)
	// OnUnmap is called just before a frame's reverse mapping is cleared.
	OnUnmap(f *Frame)
	// Configure applies algorithm-tunable overrides (see pkg/vmmconfig).
	// Unknown keys are ignored; this lets every algorithm share one
	// Configure(map[string]int) signature even though only NRU and
	// Working-Set have tunables.
	Configure(tunables map[string]int)
}

// AlgorithmContext carries the few pieces of run configuration an
// algorithm's constructor may need: the Random algorithm is the only one
// that draws from the deterministic random source.
type AlgorithmContext struct {
	Rand Rand
}

// AlgorithmCreator builds a fresh Algorithm instance.
type AlgorithmCreator func(ctx AlgorithmContext) Algorithm

var algorithms = make(map[string]AlgorithmCreator)

// RegisterAlgorithm adds a replacement algorithm under the given
// single-letter CLI selector (case-insensitive). Algorithms self-register
// from their own file's init().
func RegisterAlgorithm(letter string, creator AlgorithmCreator) {
	algorithms[letter] = creator
}

// AlgorithmLetters lists the registered selector letters, sorted.
func AlgorithmLetters() []string {
	keys := make([]string, 0, len(algorithms))
	for k := range algorithms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewAlgorithm builds the algorithm registered for the given letter
// (case-insensitive).
func NewAlgorithm(letter string, ctx AlgorithmContext) (Algorithm, error) {
	upper := toUpperASCII(letter)
	creator, ok := algorithms[upper]
	if !ok {
		return nil, fmt.Errorf("invalid algorithm letter %q, options are: %s",
			letter, strings.Join(AlgorithmLetters(), "/"))
	}
	return creator(ctx), nil
}

func toUpperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
