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

// Package vmmmetrics exposes the running cost model over an optional
// Prometheus endpoint (-metrics-addr): a small named-collector registry
// feeding a single pedantic Gatherer. It holds the "cost" collector and, on
// Linux, the "selfrss" collector from rss_linux.go.
package vmmmetrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vmsim/vmsim/pkg/vmm"
)

// InitCollector builds a prometheus.Collector, the same registration
// signature pkg/metrics uses so a second collector (the Linux RSS gauge in
// rss_linux.go) slots into the same registry.
type InitCollector func() (prometheus.Collector, error)

var builtInCollectors = make(map[string]InitCollector)

// RegisterCollector adds a named collector constructor. Safe to call only
// from package init; returns an error on a duplicate name instead of
// panicking so a caller composing several packages' collectors can decide
// how to handle the clash.
func RegisterCollector(name string, init InitCollector) error {
	if _, found := builtInCollectors[name]; found {
		return fmt.Errorf("collector %q already registered", name)
	}
	builtInCollectors[name] = init
	return nil
}

// NewMetricGatherer instantiates every registered collector into a fresh
// pedantic registry.
func NewMetricGatherer() (prometheus.Gatherer, error) {
	reg := prometheus.NewPedanticRegistry()
	for name, init := range builtInCollectors {
		c, err := init()
		if err != nil {
			return nil, fmt.Errorf("collector %q: %w", name, err)
		}
		reg.MustRegister(c)
	}
	return reg, nil
}

func init() {
	if err := RegisterCollector("cost", newCostCollector); err != nil {
		panic(err)
	}
}

// costCollector exposes the live vmm.Cost counters as a handful of
// Prometheus counters.
// It is registered once at startup but reads c fresh on every Collect, so
// the values stay current across the whole run without the caller having
// to re-register anything.
type costCollector struct {
	instCount     *prometheus.Desc
	total         *prometheus.Desc
	contextSwitch *prometheus.Desc
	processExits  *prometheus.Desc
}

// Cost is an alias of vmm.Cost, the value the collector reads; bound via
// Bind once the dispatcher's Cost value exists.
type Cost = vmm.Cost

var boundCost *Cost

// Bind points the "cost" collector at the dispatcher's live Cost value.
// Must be called before the metrics endpoint serves its first scrape.
func Bind(cost *Cost) {
	boundCost = cost
}

func newCostCollector() (prometheus.Collector, error) {
	return &costCollector{
		instCount:     prometheus.NewDesc("vmsim_inst_count", "Instructions dispatched so far.", nil, nil),
		total:         prometheus.NewDesc("vmsim_cost_total", "Running total simulated cost.", nil, nil),
		contextSwitch: prometheus.NewDesc("vmsim_context_switches_total", "Context-switch instructions dispatched.", nil, nil),
		processExits:  prometheus.NewDesc("vmsim_process_exits_total", "Exit instructions dispatched.", nil, nil),
	}, nil
}

func (c *costCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.instCount
	ch <- c.total
	ch <- c.contextSwitch
	ch <- c.processExits
}

func (c *costCollector) Collect(ch chan<- prometheus.Metric) {
	if boundCost == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.instCount, prometheus.CounterValue, float64(boundCost.InstCount))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.CounterValue, float64(boundCost.Total()))
	ch <- prometheus.MustNewConstMetric(c.contextSwitch, prometheus.CounterValue, float64(boundCost.ContextSwitch))
	ch <- prometheus.MustNewConstMetric(c.processExits, prometheus.CounterValue, float64(boundCost.ProcessExits))
}
