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

package annotation

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"github.com/shenwei356/taxbin/taxbin/cmd/cds"
	"github.com/shenwei356/taxbin/taxbin/cmd/reads"
	"github.com/zeebo/wyhash"
)

// Annotator sets the statuses of reads on several workers. Each read is
// owned by the worker chosen by the hash of its id.
type Annotator struct {
	Classifier *Classifier
	Threads    int

	// OnDone, if not nil, is called after each read, from the worker
	// goroutines.
	OnDone func()
}

// Annotate classifies all reads, skipping those marked as host. The
// first error stops the workers.
func (a *Annotator) Annotate(rs []*reads.Read, index map[string][]*cds.CdsAlignment) error {
	threads := a.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	shards := make([][]*reads.Read, threads)
	for _, read := range rs {
		i := int(wyhash.HashString(read.ID, 1) % uint64(threads))
		shards[i] = append(shards[i], read)
	}

	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error
	done := make(chan struct{})
	for _, shard := range shards {
		wg.Add(1)
		go func(shard []*reads.Read) {
			defer wg.Done()
			for _, read := range shard {
				select {
				case <-done:
					return
				default:
				}
				if read.PotentialHost != reads.Host {
					s, err := a.Classifier.Classify(read, index[read.ID])
					if err != nil {
						once.Do(func() {
							firstErr = errors.Wrapf(err, "classifying read %s", read.ID)
							close(done)
						})
						return
					}
					read.Status = s
				}
				if a.OnDone != nil {
					a.OnDone()
				}
			}
		}(shard)
	}
	wg.Wait()
	return firstErr
}
