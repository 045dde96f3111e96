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

// VMA describes one legal, contiguous virtual page range for a process.
// VMAs are immutable once loaded.
type VMA struct {
	StartVPage   int
	EndVPage     int
	WriteProtect bool
	FileMapped   bool
}

// Contains reports whether vpage falls inside this range.
func (v VMA) Contains(vpage int) bool {
	return vpage >= v.StartVPage && vpage <= v.EndVPage
}

// VMATable is the ordered, non-overlapping list of VMAs for one process.
type VMATable []VMA

// Find returns the VMA covering vpage, or nil if vpage is not legal.
func (t VMATable) Find(vpage int) *VMA {
	for i := range t {
		if t[i].Contains(vpage) {
			return &t[i]
		}
	}
	return nil
}

// Validate checks that ranges are well-formed and pairwise non-overlapping.
// Overlap and ordering checks are aggregated rather than stopping at the
// first violation, the way traceio's loader aggregates one multierror per
// malformed input file.
func (t VMATable) Validate() []error {
	var errs []error
	for i, v := range t {
		if v.StartVPage < 0 || v.EndVPage >= NumVirtualPages || v.StartVPage > v.EndVPage {
			errs = append(errs, fmt.Errorf("vma %d: invalid range [%d,%d]", i, v.StartVPage, v.EndVPage))
			continue
		}
		for j := i + 1; j < len(t); j++ {
			o := t[j]
			if v.StartVPage <= o.EndVPage && o.StartVPage <= v.EndVPage {
				errs = append(errs, fmt.Errorf("vma %d [%d,%d] overlaps vma %d [%d,%d]",
					i, v.StartVPage, v.EndVPage, j, o.StartVPage, o.EndVPage))
			}
		}
	}
	return errs
}
