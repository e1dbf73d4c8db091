// Copyright © 2020-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package reads

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
)

// LoadFile reads all reads of an (optionally gzipped) alignment file,
// in file order. Blank lines and lines starting with "#" are ignored.
// A duplicated read id is an error.
func LoadFile(file string, threads int) ([]*Read, error) {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	fn := func(line string) (interface{}, bool, error) {
		if line == "" || line[0] == '#' {
			return nil, false, nil
		}
		read, err := ParseLine(line)
		if err != nil {
			return nil, false, err
		}
		return read, true, nil
	}

	reader, err := breader.NewBufferedReader(file, threads, 100, fn)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}

	reads := make([]*Read, 0, 1024)
	ids := make(map[string]struct{}, 1024)
	var read *Read
	var data interface{}
	var ok bool
	for chunk := range reader.Ch {
		if err != nil { // draining
			continue
		}
		if chunk.Err != nil {
			err = errors.Wrap(chunk.Err, file)
			continue
		}
		for _, data = range chunk.Data {
			read = data.(*Read)
			if _, ok = ids[read.ID]; ok {
				err = fmt.Errorf("%s: duplicated read id: %s", file, read.ID)
				break
			}
			ids[read.ID] = struct{}{}
			reads = append(reads, read)
		}
	}
	if err != nil {
		return nil, err
	}
	return reads, nil
}
