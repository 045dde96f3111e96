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
	"io"
)

// Op is one instruction opcode: context-switch, read, write or exit.
type Op byte

const (
	OpContextSwitch Op = 'c'
	OpRead          Op = 'r'
	OpWrite         Op = 'w'
	OpExit          Op = 'e'
)

// Instruction is one (op, arg) pair from the trace. Arg is unused for
// OpExit.
type Instruction struct {
	Op  Op
	Arg int
}

// Dispatcher drives the trace: it owns the global tick counter and the
// currently-selected process, and routes every instruction through the
// pager's map/unmap/get_frame primitives.
type Dispatcher struct {
	Pager     *Pager
	Cost      *Cost
	Processes []*Process
	Current   *Process

	// Out receives the "<n>: ==> op arg" per-instruction trace line; set
	// to io.Discard unless the -o O option is active. Shared with
	// Pager.Out so event lines interleave in source order.
	Out io.Writer

	// Diag receives "ASELECT ..." algorithm-selection diagnostics when
	// the -o a option is active; nil disables them.
	Diag io.Writer
}

// NewDispatcher wires a dispatcher around pager, cost accounting and the
// fully-loaded process array.
func NewDispatcher(pager *Pager, cost *Cost, processes []*Process) *Dispatcher {
	return &Dispatcher{
		Pager:     pager,
		Cost:      cost,
		Processes: processes,
		Out:       io.Discard,
	}
}

// Step consumes one instruction, advancing inst_count and mutating process,
// frame and cost state.
func (d *Dispatcher) Step(inst Instruction) {
	d.Cost.InstCount++
	d.traceInstruction(inst)

	switch inst.Op {
	case OpContextSwitch:
		d.Current = d.Processes[inst.Arg]
		d.Cost.chargeContextSwitch()
	case OpExit:
		d.doExit()
	case OpRead:
		d.doRead(inst.Arg)
	case OpWrite:
		d.doWrite(inst.Arg)
	}
}

func (d *Dispatcher) traceInstruction(inst Instruction) {
	if inst.Op == OpExit {
		fmt.Fprintf(d.Out, "%d: ==> %c\n", d.Cost.InstCount, inst.Op)
		return
	}
	fmt.Fprintf(d.Out, "%d: ==> %c %d\n", d.Cost.InstCount, inst.Op, inst.Arg)
}

// access implements the page-fault protocol: returns true
// if vpage ends the instruction PRESENT, false on SEGV.
func (d *Dispatcher) access(vpage int) bool {
	proc := d.Current
	pte := &proc.PageTable[vpage]
	if pte.Present() {
		return true
	}

	if !proc.lazyInit(vpage) {
		d.Cost.chargeSegV(proc)
		d.emit("SEGV")
		return false
	}

	frame := d.Pager.GetFrame(d.Cost.InstCount)
	if !frame.Free() {
		if d.Diag != nil {
			fmt.Fprintf(d.Diag, "ASELECT %s victim=%d pid=%d vpage=%d\n",
				d.Pager.Algo.Name(), frame.Index, frame.Pid, frame.VPage)
		}
		victim := d.Processes[frame.Pid]
		d.Pager.Unmap(victim, frame.VPage, d.Cost, false)
	}
	d.Pager.Map(proc, vpage, frame, d.Cost, d.Cost.InstCount)
	return true
}

func (d *Dispatcher) doRead(vpage int) {
	d.Cost.chargeReadWrite()
	if d.access(vpage) {
		d.Current.PageTable[vpage].SetReferenced(true)
	}
}

func (d *Dispatcher) doWrite(vpage int) {
	d.Cost.chargeReadWrite()
	if !d.access(vpage) {
		return
	}
	pte := &d.Current.PageTable[vpage]
	if pte.WriteProtect() {
		d.Cost.chargeSegProt(d.Current)
		d.emit("SEGPROT")
	} else {
		pte.SetModified(true)
	}
	pte.SetReferenced(true)
}

func (d *Dispatcher) doExit() {
	proc := d.Current
	for vpage := 0; vpage < NumVirtualPages; vpage++ {
		if proc.PageTable[vpage].Present() {
			d.Pager.Unmap(proc, vpage, d.Cost, true)
		}
	}
	d.Cost.chargeProcessExit()
}

func (d *Dispatcher) emit(format string, args ...interface{}) {
	fmt.Fprintf(d.Out, " "+format+"\n", args...)
}
