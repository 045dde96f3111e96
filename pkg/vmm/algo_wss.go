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

// wssTau is the default Working-Set age threshold in ticks; overridable
// via Configure (pkg/vmmconfig).
const wssTau = 49

func init() {
	RegisterAlgorithm("W", func(ctx AlgorithmContext) Algorithm { return &WorkingSetAlgorithm{tau: wssTau} })
}

// WorkingSetAlgorithm evicts the first unreferenced frame, in scan order
// from the hand, whose load_tick is older than tau, falling back to the
// frame with the smallest
// load_tick among those that are not yet stale, and finally to the first
// freshly-referenced frame if nothing else qualifies.
type WorkingSetAlgorithm struct {
	hand int
	tau  int64
}

func (a *WorkingSetAlgorithm) Name() string { return "WorkingSet" }

func (a *WorkingSetAlgorithm) SelectVictim(frames FrameTable, pteOf PTELookup, tick int64) *Frame {
	n := len(frames)
	now := tick - 1

	var class1Candidate, class2Candidate *Frame
	var class1Age int64

	for i := 0; i < n; i++ {
		idx := (a.hand + i) % n
		f := frames[idx]
		pte := pteOf(f.Pid, f.VPage)

		if pte.Referenced() {
			pte.SetReferenced(false)
			f.LoadTick = now
			if class2Candidate == nil {
				class2Candidate = f
			}
			continue
		}
		if now-f.LoadTick > a.tau {
			a.hand = (f.Index + 1) % n
			return f
		}
		if class1Candidate == nil || f.LoadTick < class1Age {
			class1Candidate = f
			class1Age = f.LoadTick
		}
	}

	var victim *Frame
	if class1Candidate != nil {
		victim = class1Candidate
	} else {
		victim = class2Candidate
	}
	a.hand = (victim.Index + 1) % n
	return victim
}

func (a *WorkingSetAlgorithm) OnMap(f *Frame, tick int64) {
	f.LoadTick = tick
}

func (a *WorkingSetAlgorithm) OnUnmap(f *Frame) {}

func (a *WorkingSetAlgorithm) Configure(tunables map[string]int) {
	if v, ok := tunables["wss-tau"]; ok {
		a.tau = int64(v)
	}
}
