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

// Package vmmconfig loads the optional -tunables overlay: a small YAML
// document carrying per-algorithm integer knobs layered on top of each
// algorithm's built-in defaults.
package vmmconfig

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// Tunables is the -tunables document. The algorithm keys are ignored by
// algorithms that don't recognise them, so one file can hold knobs for
// several algorithms at once; keys with no field here are silently dropped
// when the document is parsed.
type Tunables struct {
	// NRUResetPeriod overrides algo_nru.go's default reference-bit reset
	// period (50 ticks).
	NRUResetPeriod *int `json:"nruResetPeriod,omitempty"`

	// WSSTau overrides algo_wss.go's default Working-Set age threshold
	// (49 ticks).
	WSSTau *int `json:"wssTau,omitempty"`

	// SeedOffset rotates the starting offset into the loaded random table,
	// consumed by the caller before constructing the Random source rather
	// than by an algorithm's Configure.
	SeedOffset *int `json:"seedOffset,omitempty"`
}

// Load reads and parses a -tunables file. A file that cannot be read is an
// error; an empty document is not: every field is optional and its absence
// just means "use the algorithm's built-in default".
func Load(path string) (Tunables, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return Tunables{}, errors.Wrapf(err, "reading tunables file %q", path)
	}
	var t Tunables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Tunables{}, errors.Wrapf(err, "parsing tunables file %q", path)
	}
	return t, nil
}

// ToMap flattens the document into the map[string]int every
// vmm.Algorithm.Configure expects, keyed the way algo_nru.go and
// algo_wss.go read them ("nru-reset-period", "wss-tau").
func (t Tunables) ToMap() map[string]int {
	m := map[string]int{}
	if t.NRUResetPeriod != nil {
		m["nru-reset-period"] = *t.NRUResetPeriod
	}
	if t.WSSTau != nil {
		m["wss-tau"] = *t.WSSTau
	}
	return m
}
