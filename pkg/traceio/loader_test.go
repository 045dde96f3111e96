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

package traceio_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmsim/vmsim/pkg/traceio"
	"github.com/vmsim/vmsim/pkg/vmm"
	"github.com/vmsim/vmsim/pkg/vmmtest"
)

const sampleTrace = `
# two processes
2
1
0 9 0 0
2
0 3 1 0
4 5 0 1
c 0
r 0
w 1
c 1
r 4
e
`

func TestLoadVMATablesAndInstructions(t *testing.T) {
	loader := traceio.NewLoader(strings.NewReader(sampleTrace))

	tables, err := loader.LoadVMATables()
	require.NoError(t, err)
	require.Len(t, tables, 2)
	require.Equal(t, vmm.VMATable{{StartVPage: 0, EndVPage: 9}}, tables[0])
	require.Equal(t, vmm.VMATable{
		{StartVPage: 0, EndVPage: 3, WriteProtect: true},
		{StartVPage: 4, EndVPage: 5, FileMapped: true},
	}, tables[1])

	var got []vmm.Instruction
	it := loader.Instructions()
	for {
		inst, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, inst)
	}
	require.Equal(t, []vmm.Instruction{
		{Op: vmm.OpContextSwitch, Arg: 0},
		{Op: vmm.OpRead, Arg: 0},
		{Op: vmm.OpWrite, Arg: 1},
		{Op: vmm.OpContextSwitch, Arg: 1},
		{Op: vmm.OpRead, Arg: 4},
		{Op: vmm.OpExit},
	}, got)
}

func TestLoadVMATablesAggregatesOverlapErrors(t *testing.T) {
	const badTrace = `
1
2
0 5 0 0
3 8 0 0
`
	loader := traceio.NewLoader(strings.NewReader(badTrace))
	_, err := loader.LoadVMATables()
	vmmtest.VerifyError(t, err, 1, []string{"overlaps"})
}

func TestLoadVMATablesRejectsBadProcessCount(t *testing.T) {
	loader := traceio.NewLoader(strings.NewReader("not-a-number\n"))
	_, err := loader.LoadVMATables()
	require.Error(t, err)
}
