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

package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vmsim/vmsim/pkg/randsrc"
	"github.com/vmsim/vmsim/pkg/report"
	"github.com/vmsim/vmsim/pkg/traceio"
	"github.com/vmsim/vmsim/pkg/vmm"
	"github.com/vmsim/vmsim/pkg/vmmconfig"
	"github.com/vmsim/vmsim/pkg/vmmmetrics"
	"github.com/vmsim/vmsim/pkg/version"
)

const (
	exitBadArg  = 1
	exitBadAlgo = 2
)

func exit(code int, format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "vmsim: "+format+"\n", a...)
	os.Exit(code)
}

// options holds the parsed CLI surface: "-f<N> -a<algo>
// -o<opts> inputfile randfile", plus the ambient -tunables/-metrics-addr
// flags. The jammed single-letter style ("-f128", "-aE", "-oOPFS") isn't
// representable with the standard flag package, so it's hand-parsed the
// way the trace input format itself is hand-parsed in pkg/traceio.
type options struct {
	numFrames    int
	algoLetter   string
	outputOpts   string
	tunablesPath string
	metricsAddr  string
	inputPath    string
	randPath     string
}

func parseArgs(args []string) (options, error) {
	var o options
	var positional []string

	for i := 0; i < len(args); i++ {
		a := args[i]
		takeValue := func(flag string) (string, error) {
			if rest := strings.TrimPrefix(a, flag+"="); rest != a {
				return rest, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", flag)
			}
			i++
			return args[i], nil
		}

		switch {
		case strings.HasPrefix(a, "-f"):
			n, err := strconv.Atoi(a[2:])
			if err != nil {
				return o, fmt.Errorf("invalid -f argument %q", a)
			}
			o.numFrames = n
		case strings.HasPrefix(a, "-a"):
			o.algoLetter = a[2:]
		case strings.HasPrefix(a, "-o"):
			o.outputOpts = a[2:]
		case a == "-tunables" || strings.HasPrefix(a, "-tunables="):
			v, err := takeValue("-tunables")
			if err != nil {
				return o, err
			}
			o.tunablesPath = v
		case a == "-metrics-addr" || strings.HasPrefix(a, "-metrics-addr="):
			v, err := takeValue("-metrics-addr")
			if err != nil {
				return o, err
			}
			o.metricsAddr = v
		case strings.HasPrefix(a, "-"):
			return o, fmt.Errorf("unrecognised argument %q", a)
		default:
			positional = append(positional, a)
		}
	}

	if len(positional) != 2 {
		return o, fmt.Errorf("expected exactly 2 positional arguments (inputfile randfile), got %d", len(positional))
	}
	o.inputPath, o.randPath = positional[0], positional[1]
	return o, nil
}

func main() {
	vmm.SetLogger(log.New(os.Stderr, "", 0))

	for _, a := range os.Args[1:] {
		if a == "-version" || a == "--version" {
			version.PrintVersionInfo()
			return
		}
	}

	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		exit(exitBadArg, "%s", err)
	}
	if opts.numFrames < 1 || opts.numFrames > vmm.MaxFrames {
		exit(exitBadArg, "-f must be between 1 and %d, got %d", vmm.MaxFrames, opts.numFrames)
	}

	tunables := map[string]int{}
	var seedOffset *int
	if opts.tunablesPath != "" {
		t, err := vmmconfig.Load(opts.tunablesPath)
		if err != nil {
			exit(exitBadArg, "%s", err)
		}
		tunables = t.ToMap()
		seedOffset = t.SeedOffset
	}

	randValues, err := traceio.LoadRandomFile(opts.randPath)
	if err != nil {
		exit(exitBadArg, "%s", err)
	}
	randSource := randsrc.New(randValues)
	if seedOffset != nil {
		randSource.SetOffset(*seedOffset)
	}

	algo, err := vmm.NewAlgorithm(opts.algoLetter, vmm.AlgorithmContext{Rand: randSource})
	if err != nil {
		exit(exitBadAlgo, "%s", err)
	}
	algo.Configure(tunables)

	inputFile, err := os.Open(opts.inputPath)
	if err != nil {
		exit(exitBadArg, "%s", err)
	}
	defer inputFile.Close()

	loader := traceio.NewLoader(inputFile)
	vmaTables, err := loader.LoadVMATables()
	if err != nil {
		exit(exitBadArg, "%s", err)
	}

	processes := make([]*vmm.Process, len(vmaTables))
	for i, table := range vmaTables {
		processes[i] = vmm.NewProcess(i, table)
	}

	if strings.ContainsRune(opts.outputOpts, 'v') {
		for _, p := range processes {
			report.DumpVMAs(os.Stdout, p)
		}
	}

	pager := vmm.NewPager(opts.numFrames, algo, processes)
	cost := &vmm.Cost{}
	dispatcher := vmm.NewDispatcher(pager, cost, processes)

	events := strings.ContainsRune(opts.outputOpts, 'O')
	if events {
		pager.Out = os.Stdout
		dispatcher.Out = os.Stdout
	}
	if strings.ContainsRune(opts.outputOpts, 'a') {
		dispatcher.Diag = os.Stdout
	}

	if opts.metricsAddr != "" {
		vmmmetrics.Bind(cost)
		gatherer, err := vmmmetrics.NewMetricGatherer()
		if err != nil {
			exit(exitBadArg, "%s", err)
		}
		http.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(opts.metricsAddr, nil); err != nil {
				vmm.GetLogger().Warnf("metrics server stopped: %s", err)
			}
		}()
	}

	dumpCurrent := strings.ContainsRune(opts.outputOpts, 'x')
	dumpAll := strings.ContainsRune(opts.outputOpts, 'y')
	dumpFrames := strings.ContainsRune(opts.outputOpts, 'f')

	it := loader.Instructions()
	for {
		inst, ok, err := it.Next()
		if err != nil {
			exit(exitBadArg, "%s", err)
		}
		if !ok {
			break
		}
		dispatcher.Step(inst)

		switch {
		case dumpAll:
			for _, p := range processes {
				report.PageTable(os.Stdout, p)
			}
		case dumpCurrent && dispatcher.Current != nil:
			report.PageTable(os.Stdout, dispatcher.Current)
		}
		if dumpFrames {
			report.FrameTable(os.Stdout, pager.Frames)
		}
	}

	if strings.ContainsRune(opts.outputOpts, 'P') {
		for _, p := range processes {
			report.PageTable(os.Stdout, p)
		}
	}
	if strings.ContainsRune(opts.outputOpts, 'F') {
		report.FrameTable(os.Stdout, pager.Frames)
	}
	if strings.ContainsRune(opts.outputOpts, 'S') {
		report.Stats(os.Stdout, processes, cost)
	}
}
