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

package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmsim/vmsim/pkg/report"
	"github.com/vmsim/vmsim/pkg/vmm"
)

func TestDumpVMAs(t *testing.T) {
	proc := vmm.NewProcess(2, vmm.VMATable{
		{StartVPage: 0, EndVPage: 3, WriteProtect: true},
		{StartVPage: 10, EndVPage: 20, FileMapped: true},
	})

	var buf bytes.Buffer
	report.DumpVMAs(&buf, proc)

	out := buf.String()
	require.Contains(t, out, "VMAS[2]:")
	require.Contains(t, out, "0-3 prot=1 filemapped=0")
	require.Contains(t, out, "10-20 prot=0 filemapped=1")
}

func TestFrameTable(t *testing.T) {
	algo, err := vmm.NewAlgorithm("F", vmm.AlgorithmContext{})
	require.NoError(t, err)
	proc := vmm.NewProcess(0, vmm.VMATable{{StartVPage: 0, EndVPage: 5}})
	pager := vmm.NewPager(2, algo, []*vmm.Process{proc})

	var buf bytes.Buffer
	report.FrameTable(&buf, pager.Frames)
	require.Equal(t, "FT: * *\n", buf.String())
}
