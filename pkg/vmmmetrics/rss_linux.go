//go:build linux
// +build linux

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

package vmmmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sys/unix"
)

// rssCollector exposes the simulator process's own peak resident set size
// (ru_maxrss), read fresh from getrusage(2) on every scrape. Purely an observability aid for
// whoever is running a large trace through -metrics-addr; it has no
// bearing on the simulated page-replacement state.
type rssCollector struct {
	rss *prometheus.Desc
}

func init() {
	if err := RegisterCollector("selfrss", newRSSCollector); err != nil {
		panic(err)
	}
}

func newRSSCollector() (prometheus.Collector, error) {
	return &rssCollector{
		rss: prometheus.NewDesc("vmsim_self_rss_bytes", "Peak resident set size of the simulator process.", nil, nil),
	}, nil
}

func (c *rssCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rss
}

func (c *rssCollector) Collect(ch chan<- prometheus.Metric) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return
	}
	// ru_maxrss is reported in kilobytes on Linux.
	ch <- prometheus.MustNewConstMetric(c.rss, prometheus.GaugeValue, float64(ru.Maxrss)*1024)
}
