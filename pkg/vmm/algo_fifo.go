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

func init() {
	RegisterAlgorithm("F", func(ctx AlgorithmContext) Algorithm { return &FIFOAlgorithm{} })
}

// FIFOAlgorithm evicts frames in round-robin order of a rotating hand over
// the frame table, never consulting the referenced bit. O(1) selection.
type FIFOAlgorithm struct {
	hand int
}

func (a *FIFOAlgorithm) Name() string { return "FIFO" }

func (a *FIFOAlgorithm) SelectVictim(frames FrameTable, pteOf PTELookup, tick int64) *Frame {
	victim := frames[a.hand]
	a.hand = (a.hand + 1) % len(frames)
	return victim
}

func (a *FIFOAlgorithm) OnMap(f *Frame, tick int64) {}
func (a *FIFOAlgorithm) OnUnmap(f *Frame)            {}
func (a *FIFOAlgorithm) Configure(map[string]int)    {}
