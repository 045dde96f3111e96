// Copyright 2019 Intel Corporation. All Rights Reserved.
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

// Package version lets one tag a built vmsim binary with version metadata.
//
// Two pieces of metadata are tracked:
//   - Version: by convention, the output of 'git describe'.
//   - Build:   by convention, the git SHA1 the binary was built from.
//
// Both are overridden at link time:
//
//	-ldflags "-X=github.com/vmsim/vmsim/pkg/version.Version=<version> \
//	          -X=github.com/vmsim/vmsim/pkg/version.Build=<build-id>"
//
// cmd/vmsim checks for a "-version" argument itself (its CLI surface is
// hand-parsed, not the standard flag package) rather than registering a
// flag.Value here.
package version

import (
	"fmt"
	"os"
	"path/filepath"
)

// Default values of variables we'll override with the linker.
var (
	// Version is our version as given by 'git describe'.
	Version = "<If you see this, you ain't doin' it right, Jimbo...>"
	// Build is the SHA1 of the repository we've been built from.
	Build = "<If you see this, you ain't doin' it right, Jimbo...>"
)

// PrintVersionInfo prints version information about this binary.
func PrintVersionInfo() {
	fmt.Printf("%s version information:\n", filepath.Base(os.Args[0]))
	fmt.Printf("  - version: %s\n", Version)
	fmt.Printf("  - build:   %s\n", Build)
}
