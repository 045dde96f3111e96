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

package vmm_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmsim/vmsim/pkg/vmm"
)

func newRunner(t *testing.T, numFrames int, algoLetter string, rand vmm.Rand, vmas vmm.VMATable) (*vmm.Dispatcher, *vmm.Process) {
	t.Helper()
	proc := vmm.NewProcess(0, vmas)
	algo, err := vmm.NewAlgorithm(algoLetter, vmm.AlgorithmContext{Rand: rand})
	require.NoError(t, err)

	pager := vmm.NewPager(numFrames, algo, []*vmm.Process{proc})
	pager.Out = io.Discard
	cost := &vmm.Cost{}
	d := vmm.NewDispatcher(pager, cost, []*vmm.Process{proc})
	d.Out = io.Discard
	return d, proc
}

type stubRand struct {
	values []int
	i      int
}

func (s *stubRand) Next(modulus int) int {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v % modulus
}

// Scenario 1: FIFO evicts page 0 on the fifth distinct fault.
func TestScenarioFIFOEvictsOldest(t *testing.T) {
	vmas := vmm.VMATable{{StartVPage: 0, EndVPage: 9, WriteProtect: false, FileMapped: false}}
	d, proc := newRunner(t, 4, "F", nil, vmas)

	d.Step(vmm.Instruction{Op: vmm.OpContextSwitch, Arg: 0})
	for vp := 0; vp <= 4; vp++ {
		d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: vp})
	}

	require.Equal(t, uint64(5), proc.Counters.Maps)
	require.Equal(t, uint64(1), proc.Counters.Unmaps)
	require.Equal(t, uint64(5), proc.Counters.Zeros)
	require.Equal(t, uint64(0), proc.Counters.Outs)

	require.False(t, proc.PageTable[0].Present())
	for vp := 1; vp <= 4; vp++ {
		require.True(t, proc.PageTable[vp].Present(), "vpage %d should still be present", vp)
	}

	d.Step(vmm.Instruction{Op: vmm.OpExit})
}

// Scenario 2: Clock with no intervening references behaves like FIFO.
func TestScenarioClockMatchesFIFOWithoutReferences(t *testing.T) {
	vmas := vmm.VMATable{{StartVPage: 0, EndVPage: 9}}
	d, proc := newRunner(t, 4, "C", nil, vmas)

	d.Step(vmm.Instruction{Op: vmm.OpContextSwitch, Arg: 0})
	for vp := 0; vp <= 4; vp++ {
		d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: vp})
	}

	require.False(t, proc.PageTable[0].Present())
	for vp := 1; vp <= 4; vp++ {
		require.True(t, proc.PageTable[vp].Present())
	}
}

// Scenario 3: writes to a write-protected VMA always SEGPROT and never set
// MODIFIED; exit unmaps both pages with MODIFIED still clear.
func TestScenarioWriteProtectAlwaysSegprot(t *testing.T) {
	vmas := vmm.VMATable{{StartVPage: 0, EndVPage: 2, WriteProtect: true}}
	d, proc := newRunner(t, 2, "F", nil, vmas)

	d.Step(vmm.Instruction{Op: vmm.OpContextSwitch, Arg: 0})
	d.Step(vmm.Instruction{Op: vmm.OpWrite, Arg: 0})
	d.Step(vmm.Instruction{Op: vmm.OpWrite, Arg: 1})

	require.Equal(t, uint64(2), proc.Counters.Maps)
	require.Equal(t, uint64(2), proc.Counters.SegProt)
	require.Equal(t, uint64(0), proc.Counters.Outs)
	require.False(t, proc.PageTable[0].Modified())
	require.False(t, proc.PageTable[1].Modified())

	d.Step(vmm.Instruction{Op: vmm.OpExit})
	require.Equal(t, uint64(2), proc.Counters.Unmaps)
	require.Equal(t, uint64(0), proc.Counters.Outs)
}

// Scenario 4: one file-mapped frame, Random always picking index 0, forces
// FIN/FOUT churn on every fault.
func TestScenarioSingleFrameFileMappedChurn(t *testing.T) {
	vmas := vmm.VMATable{{StartVPage: 0, EndVPage: 1, FileMapped: true}}
	d, proc := newRunner(t, 1, "R", &stubRand{values: []int{0}}, vmas)

	d.Step(vmm.Instruction{Op: vmm.OpContextSwitch, Arg: 0})
	d.Step(vmm.Instruction{Op: vmm.OpWrite, Arg: 0})
	require.Equal(t, uint64(1), proc.Counters.FIns)

	d.Step(vmm.Instruction{Op: vmm.OpWrite, Arg: 1})
	require.Equal(t, uint64(1), proc.Counters.FOuts)
	require.Equal(t, uint64(2), proc.Counters.FIns)

	d.Step(vmm.Instruction{Op: vmm.OpWrite, Arg: 0})
	require.Equal(t, uint64(2), proc.Counters.FOuts)
	require.Equal(t, uint64(3), proc.Counters.FIns)

	d.Step(vmm.Instruction{Op: vmm.OpExit})
	require.Equal(t, uint64(3), proc.Counters.FOuts)
}

// Scenario 5: Aging keeps a continuously re-referenced page's age high
// (top bit repeatedly set) while the cold pages cycling through the two
// remaining frames decay toward zero, so the hot page is never picked as
// the eviction victim across many rounds. The very first eviction ever
// run ties all three initial frames at the same age (none has had its
// REFERENCED bit cleared yet) and breaks the tie in scan order, so that
// round's victim is exercised first and excluded from the "stays hot"
// claim.
func TestScenarioAgingKeepsHotPageAlive(t *testing.T) {
	vmas := vmm.VMATable{{StartVPage: 0, EndVPage: 40}}
	d, proc := newRunner(t, 3, "A", nil, vmas)

	d.Step(vmm.Instruction{Op: vmm.OpContextSwitch, Arg: 0})
	d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: 0}) // tick 2: frame <- vp0
	d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: 1}) // tick 3: frame <- vp1
	d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: 2}) // tick 4: frame <- vp2
	d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: 3}) // tick 5: first-ever scan ties all ages, evicts vp0

	require.False(t, proc.PageTable[0].Present())

	for i := 0; i < 30; i++ {
		filler := 4 + i
		d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: 1})      // keep vp1 hot
		d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: filler}) // force another eviction round
	}

	require.True(t, proc.PageTable[1].Present(), "continuously re-referenced page should survive 30 rounds of eviction pressure")
}

// Scenario 6: Working-Set evicts the page stale beyond TAU rather than the
// one freshly referenced just before the new fault. The first eviction
// round (forced by a fourth distinct page) clears every frame's
// REFERENCED bit and stamps load_tick; pages 1 and 2 are then left
// untouched for long enough that, on the next fault, one of them is
// stale beyond TAU while the actively re-read page is not.
func TestScenarioWorkingSetEvictsStalePage(t *testing.T) {
	vmas := vmm.VMATable{{StartVPage: 0, EndVPage: 4}}
	d, proc := newRunner(t, 3, "W", nil, vmas)

	d.Step(vmm.Instruction{Op: vmm.OpContextSwitch, Arg: 0})
	d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: 0}) // tick 2: frame <- vp0
	d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: 1}) // tick 3: frame <- vp1
	d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: 2}) // tick 4: frame <- vp2
	d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: 3}) // tick 5: evicts vp0 (first-found, all referenced), frame <- vp3

	require.False(t, proc.PageTable[0].Present(), "first eviction round picks the first scanned frame")

	for i := 0; i < 55; i++ {
		d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: 3}) // ticks 6..60, keeps vp3 hot, vp1/vp2 go stale
	}
	d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: 4}) // tick 61: vp1/vp2 are stale well beyond TAU=49

	require.False(t, proc.PageTable[1].Present(), "page idle far longer than TAU should be evicted")
	require.True(t, proc.PageTable[2].Present())
	require.True(t, proc.PageTable[3].Present())
	require.True(t, proc.PageTable[4].Present())
}
