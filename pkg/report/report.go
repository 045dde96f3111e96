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

// Package report renders the final -P/-F/-S summaries and the VMA debug
// dump from the in-memory simulation state. Nothing here feeds back into
// the dispatcher, pager or algorithms; it only reads.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/vmsim/vmsim/pkg/vmm"
)

// PageTable writes one "PT[pid]:" line per process: a token per virtual
// page, in vpage order. A present entry prints "frame:RMS", a paged-out
// but not-present entry prints "#", and any other entry (never touched, or
// evicted without being paged out) prints "*". In "frame:RMS"
// where R/M/S are letters for Referenced/Modified/write-protect and "-"
// where a flag is clear.
func PageTable(w io.Writer, proc *vmm.Process) {
	tokens := make([]string, vmm.NumVirtualPages)
	for vp := 0; vp < vmm.NumVirtualPages; vp++ {
		pte := &proc.PageTable[vp]
		switch {
		case pte.Present():
			tokens[vp] = fmt.Sprintf("%d:%s", pte.FrameNumber(), pte.RMSString())
		case pte.PagedOut():
			tokens[vp] = "#"
		default:
			tokens[vp] = "*"
		}
	}
	fmt.Fprintf(w, "PT[%d]: %s\n", proc.Pid, strings.Join(tokens, " "))
}

// FrameTable writes the single "FT:" line: a token per physical frame, in
// frame order. A free frame prints "*", an occupied one "pid:vpage".
func FrameTable(w io.Writer, frames vmm.FrameTable) {
	tokens := make([]string, len(frames))
	for i, f := range frames {
		if f.Free() {
			tokens[i] = "*"
		} else {
			tokens[i] = fmt.Sprintf("%d:%d", f.Pid, f.VPage)
		}
	}
	fmt.Fprintf(w, "FT: %s\n", strings.Join(tokens, " "))
}

// Stats writes the per-process PROC[i] lines followed by the TOTALCOST
// line, in the order the end-of-run summary is printed.
func Stats(w io.Writer, processes []*vmm.Process, cost *vmm.Cost) {
	for _, p := range processes {
		fmt.Fprintln(w, vmm.ProcLine(p.Pid, p.Counters))
	}
	fmt.Fprintln(w, cost.TotalCostLine())
}

// DumpVMAs writes one process's VMA list, a feature present in the C
// original debug build but left out of the trace-replay summary; wired in
// here as a -o v diagnostic.
func DumpVMAs(w io.Writer, proc *vmm.Process) {
	fmt.Fprintf(w, "VMAS[%d]:\n", proc.Pid)
	for _, vma := range proc.VMAs {
		fmt.Fprintf(w, "  %d-%d prot=%d filemapped=%d\n",
			vma.StartVPage, vma.EndVPage, boolToInt(vma.WriteProtect), boolToInt(vma.FileMapped))
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
