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

// Counters are the nine per-process operation counters the final
// require: unmaps, maps, ins, outs, fins, fouts, zeros, segv, segprot.
type Counters struct {
	Unmaps  uint64
	Maps    uint64
	Ins     uint64
	Outs    uint64
	FIns    uint64
	FOuts   uint64
	Zeros   uint64
	SegV    uint64
	SegProt uint64
}

// Process owns one virtual address space: a fixed 64-entry page table and
// an immutable VMA list. A process is created at load and
// destroyed never: an "e" instruction tears down its present pages but the
// Process value lives for the rest of the run.
type Process struct {
	Pid      int
	PageTable [NumVirtualPages]PTE
	VMAs     VMATable
	Counters Counters
}

// NewProcess builds a process with the given pid and VMA list. The VMA
// list is expected to have already passed VMATable.Validate.
func NewProcess(pid int, vmas VMATable) *Process {
	return &Process{Pid: pid, VMAs: vmas}
}

// lazyInit fills in WRITE_PROTECT/FILEMAPPED from the covering VMA and sets
// EXISTS, the first time vpage is referenced. It is a no-op if the PTE
// already exists. Returns false if no VMA covers vpage (a SEGV).
func (p *Process) lazyInit(vpage int) bool {
	pte := &p.PageTable[vpage]
	if pte.Exists() {
		return true
	}
	vma := p.VMAs.Find(vpage)
	if vma == nil {
		return false
	}
	pte.SetExists(true)
	pte.SetWriteProtect(vma.WriteProtect)
	pte.SetFileMapped(vma.FileMapped)
	return true
}
