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

package vmmtest

import (
	"strings"
	"testing"

	"github.com/vmsim/vmsim/pkg/traceio"
	"github.com/vmsim/vmsim/pkg/vmm"
)

// MustDecodeTrace parses the literal "process/VMA header + instructions"
// trace input format from a Go string literal, so end-to-end scenarios
// can be written inline rather than kept
// in fixture files. It fails the test immediately on any parse error.
func MustDecodeTrace(t *testing.T, text string) ([]*vmm.Process, []vmm.Instruction) {
	t.Helper()
	loader := traceio.NewLoader(strings.NewReader(text))

	tables, err := loader.LoadVMATables()
	if err != nil {
		t.Fatalf("decoding trace header: %v", err)
	}
	processes := make([]*vmm.Process, len(tables))
	for i, table := range tables {
		processes[i] = vmm.NewProcess(i, table)
	}

	var instructions []vmm.Instruction
	it := loader.Instructions()
	for {
		inst, ok, err := it.Next()
		if err != nil {
			t.Fatalf("decoding trace instructions: %v", err)
		}
		if !ok {
			break
		}
		instructions = append(instructions, inst)
	}
	return processes, instructions
}
