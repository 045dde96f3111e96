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
	RegisterAlgorithm("A", func(ctx AlgorithmContext) Algorithm { return &AgingAlgorithm{} })
}

// AgingAlgorithm approximates LRU with a 32-bit per-frame shift register.
// Every invocation shifts every visited frame's age right by one, ORing in
// the top bit when the frame was recently referenced, then picks the
// frame with the numerically smallest age — ties broken by scan order.
type AgingAlgorithm struct {
	hand int
}

func (a *AgingAlgorithm) Name() string { return "Aging" }

func (a *AgingAlgorithm) SelectVictim(frames FrameTable, pteOf PTELookup, tick int64) *Frame {
	n := len(frames)
	var victim *Frame
	var victimAge uint32

	for i := 0; i < n; i++ {
		idx := (a.hand + i) % n
		f := frames[idx]
		pte := pteOf(f.Pid, f.VPage)

		f.Age >>= 1
		if pte.Referenced() {
			f.Age |= 0x80000000
			pte.SetReferenced(false)
		}

		if victim == nil || f.Age < victimAge {
			victim = f
			victimAge = f.Age
		}
	}

	a.hand = (victim.Index + 1) % n
	return victim
}

func (a *AgingAlgorithm) OnMap(f *Frame, tick int64) {
	f.Age = 0
}

func (a *AgingAlgorithm) OnUnmap(f *Frame)         {}
func (a *AgingAlgorithm) Configure(map[string]int) {}
