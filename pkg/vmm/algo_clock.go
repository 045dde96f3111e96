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
	RegisterAlgorithm("C", func(ctx AlgorithmContext) Algorithm { return &ClockAlgorithm{} })
}

// ClockAlgorithm is the second-chance algorithm: starting at hand, it gives
// every referenced frame one more chance (clearing the bit) before
// settling on the first frame it finds with REFERENCED=0. Worst case
// O(NUM_FRAMES).
type ClockAlgorithm struct {
	hand int
}

func (a *ClockAlgorithm) Name() string { return "Clock" }

func (a *ClockAlgorithm) SelectVictim(frames FrameTable, pteOf PTELookup, tick int64) *Frame {
	n := len(frames)
	for {
		f := frames[a.hand]
		pte := pteOf(f.Pid, f.VPage)
		if pte.Referenced() {
			pte.SetReferenced(false)
			a.hand = (a.hand + 1) % n
			continue
		}
		a.hand = (a.hand + 1) % n
		return f
	}
}

func (a *ClockAlgorithm) OnMap(f *Frame, tick int64) {}
func (a *ClockAlgorithm) OnUnmap(f *Frame)            {}
func (a *ClockAlgorithm) Configure(map[string]int)    {}
