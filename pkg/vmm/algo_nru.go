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

// nruResetPeriod is the default number of ticks between global
// reference-bit resets; overridable via Configure (pkg/vmmconfig).
const nruResetPeriod = 50

func init() {
	RegisterAlgorithm("E", func(ctx AlgorithmContext) Algorithm {
		return &NRUAlgorithm{resetPeriod: nruResetPeriod}
	})
}

// NRUAlgorithm is the Enhanced Second-Chance / Not-Recently-Used algorithm.
// It classifies every frame by (REFERENCED, MODIFIED) into one of four
// classes and evicts the first frame found in the lowest non-empty class,
// while periodically sweeping the whole table to clear REFERENCED.
type NRUAlgorithm struct {
	hand        int
	lastReset   int64
	resetPeriod int64
}

func (a *NRUAlgorithm) Name() string { return "NRU" }

func (a *NRUAlgorithm) SelectVictim(frames FrameTable, pteOf PTELookup, tick int64) *Frame {
	n := len(frames)
	doReset := tick-a.lastReset >= a.resetPeriod

	var classCandidate [4]*Frame
	foundClass0 := false

	for i := 0; i < n; i++ {
		idx := (a.hand + i) % n
		f := frames[idx]
		pte := pteOf(f.Pid, f.VPage)
		class := 0
		if pte.Referenced() {
			class |= 2
		}
		if pte.Modified() {
			class |= 1
		}
		if classCandidate[class] == nil {
			classCandidate[class] = f
		}
		if class == 0 {
			foundClass0 = true
		}
		if doReset {
			pte.SetReferenced(false)
		} else if foundClass0 {
			// No reset due: once class 0 is found the scan can
			// short-circuit: class 0 never improves.
			break
		}
	}

	if doReset {
		a.lastReset = tick
	}

	var victim *Frame
	for class := 0; class < 4; class++ {
		if classCandidate[class] != nil {
			victim = classCandidate[class]
			break
		}
	}

	a.hand = (victim.Index + 1) % n
	return victim
}

func (a *NRUAlgorithm) OnMap(f *Frame, tick int64) {}
func (a *NRUAlgorithm) OnUnmap(f *Frame)            {}

func (a *NRUAlgorithm) Configure(tunables map[string]int) {
	if v, ok := tunables["nru-reset-period"]; ok {
		a.resetPeriod = int64(v)
	}
}
