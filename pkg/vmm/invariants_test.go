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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vmsim/vmsim/pkg/vmm"
)

// snapshot is a cmp-friendly projection of a process's live mapping state,
// used to compare two independent runs over the same trace for the
// determinism law: identical input should reach identical
// process state at every step.
type snapshot struct {
	Present map[int]int // vpage -> frame
	Counts  vmm.Counters
}

func snapshotOf(proc *vmm.Process) snapshot {
	s := snapshot{Present: map[int]int{}, Counts: proc.Counters}
	for vp := 0; vp < vmm.NumVirtualPages; vp++ {
		if proc.PageTable[vp].Present() {
			s.Present[vp] = proc.PageTable[vp].FrameNumber()
		}
	}
	return s
}

// TestDeterminism runs the same trace twice through fresh state and
// requires byte-for-byte identical resulting mappings and counters.
func TestDeterminism(t *testing.T) {
	run := func() snapshot {
		vmas := vmm.VMATable{{StartVPage: 0, EndVPage: 9}}
		d, proc := newRunner(t, 4, "F", nil, vmas)
		d.Step(vmm.Instruction{Op: vmm.OpContextSwitch, Arg: 0})
		for vp := 0; vp <= 6; vp++ {
			d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: vp})
		}
		return snapshotOf(proc)
	}

	first := run()
	second := run()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("two runs over the same trace diverged (-first +second):\n%s", diff)
	}
}

// TestInvariantMapsEqualsUnmapsPlusResident checks invariant 5 from
// sum(MAPS) = sum(UNMAPS) + number of frames currently mapped.
func TestInvariantMapsEqualsUnmapsPlusResident(t *testing.T) {
	vmas := vmm.VMATable{{StartVPage: 0, EndVPage: 9}}
	d, proc := newRunner(t, 3, "C", nil, vmas)

	d.Step(vmm.Instruction{Op: vmm.OpContextSwitch, Arg: 0})
	for vp := 0; vp <= 5; vp++ {
		d.Step(vmm.Instruction{Op: vmm.OpRead, Arg: vp})
	}

	resident := 0
	for vp := 0; vp < vmm.NumVirtualPages; vp++ {
		if proc.PageTable[vp].Present() {
			resident++
		}
	}
	require.Equal(t, proc.Counters.Maps, proc.Counters.Unmaps+uint64(resident))
}

// TestInvariantModifiedImpliesPresent checks invariant 3: a PTE can never
// carry MODIFIED=1 while PRESENT=0 (unmap always clears MODIFIED first).
func TestInvariantModifiedImpliesPresent(t *testing.T) {
	vmas := vmm.VMATable{{StartVPage: 0, EndVPage: 2}}
	d, proc := newRunner(t, 1, "F", nil, vmas)

	d.Step(vmm.Instruction{Op: vmm.OpContextSwitch, Arg: 0})
	d.Step(vmm.Instruction{Op: vmm.OpWrite, Arg: 0})
	d.Step(vmm.Instruction{Op: vmm.OpWrite, Arg: 1}) // evicts vp0, which was MODIFIED

	require.False(t, proc.PageTable[0].Modified())
	require.False(t, proc.PageTable[0].Present())
}
