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

// Pager owns the frame table, free pool and replacement algorithm for the
// whole run, and the process array it maps pages against. It exposes the
// three primitives the dispatcher drives: GetFrame, Map and Unmap.
type Pager struct {
	Frames    FrameTable
	Free      *FreePool
	Algo      Algorithm
	Processes []*Process

	// Out receives per-event trace lines (" MAP frame", " UNMAP pid:vp",
	// " IN"/" OUT"/" FIN"/" FOUT"/" ZERO"); " SEGV" and " SEGPROT" are
	// written by the dispatcher to Dispatcher.Out instead. Set to io.Discard
	// to suppress them; cmd/vmsim wires it to stdout only when -o includes O.
	Out io.Writer
}

// NewPager builds a pager over numFrames physical frames, the given
// replacement algorithm and process array.
func NewPager(numFrames int, algo Algorithm, processes []*Process) *Pager {
	return &Pager{
		Frames:    newFrameTable(numFrames),
		Free:      newFreePool(numFrames),
		Algo:      algo,
		Processes: processes,
		Out:       io.Discard,
	}
}

func (p *Pager) pteOf(pid, vpage int) *PTE {
	if pid < 0 {
		return nil
	}
	return &p.Processes[pid].PageTable[vpage]
}

func (p *Pager) emit(format string, args ...interface{}) {
	fmt.Fprintf(p.Out, " "+format+"\n", args...)
}

// GetFrame returns a frame ready to hold a new mapping: the head of the
// free pool if one exists, otherwise the active algorithm's chosen victim.
// In the latter case the returned frame still carries its live reverse
// mapping; the caller must Unmap it before mapping into it.
func (p *Pager) GetFrame(tick int64) *Frame {
	if !p.Free.Empty() {
		return p.Frames[p.Free.Pop()]
	}
	return p.Algo.SelectVictim(p.Frames, p.pteOf, tick)
}

// Map installs (proc, vpage) into frame. Preconditions: frame carries no
// live reverse mapping, and PTE[vpage] has EXISTS=1, PRESENT=0.
func (p *Pager) Map(proc *Process, vpage int, frame *Frame, cost *Cost, tick int64) {
	pte := &proc.PageTable[vpage]

	wasFileMapped := pte.FileMapped()
	wasPagedOut := pte.PagedOut()

	cost.chargeMaps(proc)
	pte.SetFrameNumber(frame.Index)
	pte.SetPresent(true)
	pte.SetReferenced(true)

	switch {
	case wasFileMapped:
		cost.chargeFIns(proc)
		p.emit("FIN")
	case wasPagedOut:
		cost.chargeIns(proc)
		p.emit("IN")
	default:
		cost.chargeZeros(proc)
		p.emit("ZERO")
	}

	frame.Pid = proc.Pid
	frame.VPage = vpage
	p.Algo.OnMap(frame, tick)
	p.emit("MAP %d", frame.Index)
}

// Unmap tears down the mapping for proc's vpage, which must be PRESENT.
// onExit selects the on-exit variant of unmap: PAGEDOUT is
// cleared and the frame is returned to the free pool.
func (p *Pager) Unmap(proc *Process, vpage int, cost *Cost, onExit bool) {
	pte := &proc.PageTable[vpage]
	frame := p.Frames[pte.FrameNumber()]

	cost.chargeUnmaps(proc)
	p.emit("UNMAP %d:%d", proc.Pid, vpage)

	if pte.Modified() {
		if pte.FileMapped() {
			cost.chargeFOuts(proc)
			p.emit("FOUT")
		} else {
			cost.chargeOuts(proc)
			pte.SetPagedOut(true)
			p.emit("OUT")
		}
		pte.SetModified(false)
	}

	if onExit {
		pte.SetPagedOut(false)
	}

	p.Algo.OnUnmap(frame)
	frame.Pid = -1
	frame.VPage = -1
	pte.SetPresent(false)

	if onExit {
		p.Free.Push(frame.Index)
	}
}
