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

package traceio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// LoadRandomFile reads the random file format: a leading
// integer array length, then that many whitespace-separated integers.
func LoadRandomFile(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening random file %q", path)
	}
	defer f.Close()
	return parseRandomFile(f)
}

func parseRandomFile(r io.Reader) ([]int, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	readInt := func() (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("unexpected end of random file")
		}
		return strconv.Atoi(sc.Text())
	}

	n, err := readInt()
	if err != nil {
		return nil, errors.Wrap(err, "reading random table length")
	}
	values := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := readInt()
		if err != nil {
			return nil, errors.Wrapf(err, "reading random value %d", i)
		}
		values[i] = v
	}
	return values, nil
}
