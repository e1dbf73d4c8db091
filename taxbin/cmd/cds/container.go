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

package cds

import (
	"github.com/shenwei356/taxbin/taxbin/cmd/reads"
	"github.com/shenwei356/taxbin/taxbin/cmd/records"
)

// Container indexes coding-region alignments by coding region and by
// read.
type Container struct {
	repository map[records.CdsKey]*CdsAlignment
	keys       []records.CdsKey // insertion order
	read2cds   map[string][]*CdsAlignment
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{
		repository: make(map[records.CdsKey]*CdsAlignment, 1024),
		read2cds:   make(map[string][]*CdsAlignment, 1024),
	}
}

// Populate adds coding-region hits of reads. Potential host reads and
// inactive alignments are skipped. A read is added to a coding region
// once, by the first of its alignments hitting it.
func (c *Container) Populate(rs []*reads.Read) {
	var ok bool
	var key records.CdsKey
	var ca *CdsAlignment
	for _, read := range rs {
		if read.PotentialHost == reads.Host {
			continue
		}
		for _, aln := range read.Alignments {
			if !aln.Active {
				continue
			}
			for _, hit := range aln.AlignedCds {
				key = hit.Cds.Key()
				if ca, ok = c.repository[key]; !ok {
					ca = NewCdsAlignment(hit.Cds)
					c.repository[key] = ca
					c.keys = append(c.keys, key)
				}
				if ca.Add(read.ID, hit.Intersection, aln.Score) {
					c.read2cds[read.ID] = append(c.read2cds[read.ID], ca)
				}
			}
		}
	}
}

// Get returns the alignment of a coding region.
func (c *Container) Get(key records.CdsKey) (*CdsAlignment, bool) {
	ca, ok := c.repository[key]
	return ca, ok
}

// ReadCds returns the coding regions hit by a read, nil if none.
func (c *Container) ReadCds(readID string) []*CdsAlignment {
	return c.read2cds[readID]
}

// Read2Cds returns the read index. Do not modify it.
func (c *Container) Read2Cds() map[string][]*CdsAlignment {
	return c.read2cds
}

// All returns all coding-region alignments in insertion order.
func (c *Container) All() []*CdsAlignment {
	all := make([]*CdsAlignment, len(c.keys))
	for i, key := range c.keys {
		all[i] = c.repository[key]
	}
	return all
}

// Active returns coding-region alignments with any active sublocation.
func (c *Container) Active() []*CdsAlignment {
	all := make([]*CdsAlignment, 0, len(c.keys))
	for _, key := range c.keys {
		if ca := c.repository[key]; ca.IsActive() {
			all = append(all, ca)
		}
	}
	return all
}

// Len returns the number of coding regions.
func (c *Container) Len() int { return len(c.keys) }
