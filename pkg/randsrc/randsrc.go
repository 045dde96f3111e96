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

// Package randsrc implements the simulator's deterministic random source: a
// fixed integer array loaded once from a random file, and a rolling offset
// into it. It exists so the Random replacement algorithm's eviction choices
// are reproducible given the same random file, matching the determinism
// law; nothing else in the simulator draws from it.
package randsrc

// Source wraps a fixed array of non-negative integers and a rolling read
// offset, wrapping back to the start once exhausted.
type Source struct {
	values []int
	offset int
}

// New builds a Source over values, starting at offset 0.
func New(values []int) *Source {
	return &Source{values: values}
}

// SetOffset rotates the starting read position, the way a -tunables
// seedOffset lets a run begin partway through the random table instead of
// always at index 0.
func (s *Source) SetOffset(offset int) {
	if len(s.values) == 0 {
		return
	}
	s.offset = offset % len(s.values)
	if s.offset < 0 {
		s.offset += len(s.values)
	}
}

// Len returns the number of values in the underlying table.
func (s *Source) Len() int {
	return len(s.values)
}

// Next draws the next value from the table and returns it mod modulus,
// advancing (and wrapping) the rolling offset.
func (s *Source) Next(modulus int) int {
	v := s.values[s.offset]
	s.offset++
	if s.offset >= len(s.values) {
		s.offset = 0
	}
	return v % modulus
}
