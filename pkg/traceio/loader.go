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

// Package traceio is an external collaborator, out of scope for
// §1: it tokenises the input and random files and hands the core typed
// configuration (VMA tables) and a lazy instruction stream. None of it
// participates in the page-fault handler or the replacement algorithms.
package traceio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/vmsim/vmsim/pkg/vmm"
)

// Loader tokenises one input file: process/VMA header followed by the
// instruction trace, comments (from "#" to end of line) and blank lines
// stripped as they're read.
type Loader struct {
	sc     *bufio.Scanner
	lineNo int
}

// NewLoader wraps r for sequential line-at-a-time reading.
func NewLoader(r io.Reader) *Loader {
	return &Loader{sc: bufio.NewScanner(r)}
}

func (l *Loader) nextLine() (string, bool) {
	for l.sc.Scan() {
		l.lineNo++
		line := l.sc.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return line, true
	}
	return "", false
}

// LoadVMATables reads the process/VMA header: a process count, then for
// each process a VMA count and that many "start end write_protected
// file_mapped" lines. A missing or malformed process count aborts at once;
// after it, every malformed line is collected rather than aborting at the
// first, the way pkg/config's node.Validate aggregates fragment errors with
// go-multierror.
func (l *Loader) LoadVMATables() ([]vmm.VMATable, error) {
	var errs *multierror.Error

	line, ok := l.nextLine()
	if !ok {
		return nil, fmt.Errorf("empty input: expected process count")
	}
	numProcesses, err := strconv.Atoi(line)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid process count %q: %w", l.lineNo, line, err)
	}

	tables := make([]vmm.VMATable, numProcesses)
	for p := 0; p < numProcesses; p++ {
		line, ok := l.nextLine()
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("process %d: missing VMA count", p))
			continue
		}
		numVMAs, err := strconv.Atoi(line)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("process %d, line %d: invalid VMA count %q", p, l.lineNo, line))
			continue
		}

		table := make(vmm.VMATable, 0, numVMAs)
		for v := 0; v < numVMAs; v++ {
			line, ok := l.nextLine()
			if !ok {
				errs = multierror.Append(errs, fmt.Errorf("process %d, vma %d: missing VMA line", p, v))
				continue
			}
			vma, err := parseVMA(line)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("process %d, vma %d, line %d: %w", p, v, l.lineNo, err))
				continue
			}
			table = append(table, vma)
		}
		if vmaErrs := table.Validate(); len(vmaErrs) > 0 {
			for _, e := range vmaErrs {
				errs = multierror.Append(errs, fmt.Errorf("process %d: %w", p, e))
			}
		}
		tables[p] = table
	}

	if errs != nil {
		return nil, errs.ErrorOrNil()
	}
	return tables, nil
}

func parseVMA(line string) (vmm.VMA, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return vmm.VMA{}, fmt.Errorf("expected 4 fields \"start end write_protected file_mapped\", got %q", line)
	}
	nums := make([]int, 4)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return vmm.VMA{}, fmt.Errorf("field %d: invalid integer %q", i, f)
		}
		nums[i] = n
	}
	return vmm.VMA{
		StartVPage:   nums[0],
		EndVPage:     nums[1],
		WriteProtect: nums[2] != 0,
		FileMapped:   nums[3] != 0,
	}, nil
}

// Instructions returns an iterator over the remaining lines as trace
// instructions. Must be called after LoadVMATables has consumed the
// header; the two share the same underlying scanner so the instruction
// stream picks up exactly where the header left off.
func (l *Loader) Instructions() *InstructionIterator {
	return &InstructionIterator{l: l}
}

// InstructionIterator lazily tokenises "op arg" lines into vmm.Instruction
// values, one Next() call at a time, so a multi-million-line trace never
// has to be held in memory at once.
type InstructionIterator struct {
	l *Loader
}

// Next returns the next instruction. ok is false once the trace is
// exhausted. err reports a malformed instruction line.
func (it *InstructionIterator) Next() (inst vmm.Instruction, ok bool, err error) {
	line, more := it.l.nextLine()
	if !more {
		return vmm.Instruction{}, false, nil
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields[0]) != 1 {
		return vmm.Instruction{}, false, fmt.Errorf("line %d: malformed instruction %q", it.l.lineNo, line)
	}
	op := vmm.Op(fields[0][0])
	switch op {
	case vmm.OpContextSwitch, vmm.OpRead, vmm.OpWrite:
		if len(fields) != 2 {
			return vmm.Instruction{}, false, fmt.Errorf("line %d: %q instruction needs one argument", it.l.lineNo, string(op))
		}
		arg, err := strconv.Atoi(fields[1])
		if err != nil {
			return vmm.Instruction{}, false, fmt.Errorf("line %d: invalid argument %q", it.l.lineNo, fields[1])
		}
		return vmm.Instruction{Op: op, Arg: arg}, true, nil
	case vmm.OpExit:
		return vmm.Instruction{Op: op}, true, nil
	default:
		return vmm.Instruction{}, false, fmt.Errorf("line %d: unknown opcode %q", it.l.lineNo, string(op))
	}
}
