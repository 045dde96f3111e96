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

import "fmt"

// Cost weights for each instruction/event kind. Charged exactly once per
// operation by the dispatcher/pager/algorithm that performs it; never
// summed a second time by a process-local "calc_total_cost"-style helper.
const (
	costReadWrite     = 1
	costContextSwitch = 130
	costProcessExit   = 1230
	costMaps          = 350
	costUnmaps        = 410
	costIns           = 3200
	costOuts          = 2750
	costFIns          = 2350
	costFOuts         = 2800
	costZeros         = 150
	costSegV          = 440
	costSegProt       = 410
)

// Cost accumulates the global cost model alongside the dispatcher's tick
// counter and context-switch/process-exit totals.
type Cost struct {
	InstCount     int64
	ContextSwitch uint64
	ProcessExits  uint64
	total         int64
}

// Total returns the running total cost.
func (c *Cost) Total() int64 {
	return c.total
}

func (c *Cost) chargeReadWrite() { c.total += costReadWrite }
func (c *Cost) chargeContextSwitch() {
	c.ContextSwitch++
	c.total += costContextSwitch
}
func (c *Cost) chargeProcessExit() {
	c.ProcessExits++
	c.total += costProcessExit
}
func (c *Cost) chargeMaps(p *Process)    { p.Counters.Maps++; c.total += costMaps }
func (c *Cost) chargeUnmaps(p *Process)  { p.Counters.Unmaps++; c.total += costUnmaps }
func (c *Cost) chargeIns(p *Process)     { p.Counters.Ins++; c.total += costIns }
func (c *Cost) chargeOuts(p *Process)    { p.Counters.Outs++; c.total += costOuts }
func (c *Cost) chargeFIns(p *Process)    { p.Counters.FIns++; c.total += costFIns }
func (c *Cost) chargeFOuts(p *Process)   { p.Counters.FOuts++; c.total += costFOuts }
func (c *Cost) chargeZeros(p *Process)   { p.Counters.Zeros++; c.total += costZeros }
func (c *Cost) chargeSegV(p *Process)    { p.Counters.SegV++; c.total += costSegV }
func (c *Cost) chargeSegProt(p *Process) { p.Counters.SegProt++; c.total += costSegProt }

// TotalCostLine renders the final "TOTALCOST ..." summary line.
func (c *Cost) TotalCostLine() string {
	return fmt.Sprintf("TOTALCOST %d %d %d %d %d",
		c.InstCount, c.ContextSwitch, c.ProcessExits, c.total, SizeofPTE)
}

// ProcLine renders one process's "PROC[i]: ..." stats line.
func ProcLine(pid int, c Counters) string {
	return fmt.Sprintf("PROC[%d]: U=%d M=%d I=%d O=%d FI=%d FO=%d Z=%d SV=%d SP=%d",
		pid, c.Unmaps, c.Maps, c.Ins, c.Outs, c.FIns, c.FOuts, c.Zeros, c.SegV, c.SegProt)
}
