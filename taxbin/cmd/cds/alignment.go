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
	"math"
	"sync"

	"github.com/shenwei356/taxbin/taxbin/cmd/location"
	"github.com/shenwei356/taxbin/taxbin/cmd/records"
)

// Sublocation is the part of a coding region covered by one read.
type Sublocation struct {
	ReadID string
	Loc    location.Location
	Score  float64
	Active bool
}

// CdsAlignment holds the reads mapped to one coding region, at most
// one sublocation per read.
//
// Coverage statistics are computed once on first access. Reads added
// afterwards are not reflected.
type CdsAlignment struct {
	Cds *records.Cds

	regions map[string]*Sublocation
	order   []string

	once     sync.Once
	coverage []int
	mean     float64
	std      float64
}

// NewCdsAlignment returns an empty alignment of a coding region.
func NewCdsAlignment(cds *records.Cds) *CdsAlignment {
	return &CdsAlignment{Cds: cds, regions: make(map[string]*Sublocation, 4)}
}

// Add records the sublocation covered by a read. It returns false, and
// changes nothing, if the read is already present.
func (c *CdsAlignment) Add(readID string, loc location.Location, score float64) bool {
	if _, ok := c.regions[readID]; ok {
		return false
	}
	c.regions[readID] = &Sublocation{ReadID: readID, Loc: loc, Score: score, Active: true}
	c.order = append(c.order, readID)
	return true
}

// Contains tells whether a read is mapped to the coding region.
func (c *CdsAlignment) Contains(readID string) bool {
	_, ok := c.regions[readID]
	return ok
}

// Sublocation returns the sublocation of a read.
func (c *CdsAlignment) Sublocation(readID string) (*Sublocation, bool) {
	s, ok := c.regions[readID]
	return s, ok
}

// Sublocations returns sublocations in insertion order.
func (c *CdsAlignment) Sublocations() []*Sublocation {
	subs := make([]*Sublocation, len(c.order))
	for i, id := range c.order {
		subs[i] = c.regions[id]
	}
	return subs
}

// Deactivate marks the sublocation of a read inactive.
func (c *CdsAlignment) Deactivate(readID string) {
	if s, ok := c.regions[readID]; ok {
		s.Active = false
	}
}

// Len returns the number of reads.
func (c *CdsAlignment) Len() int { return len(c.order) }

// IsActive tells whether any sublocation is active.
func (c *CdsAlignment) IsActive() bool {
	for _, s := range c.regions {
		if s.Active {
			return true
		}
	}
	return false
}

// ActiveCount returns the number of active sublocations.
func (c *CdsAlignment) ActiveCount() int {
	var n int
	for _, s := range c.regions {
		if s.Active {
			n++
		}
	}
	return n
}

// Coverage returns the per-base coverage over the span of the coding
// region, index 0 being its first base. Do not modify it.
func (c *CdsAlignment) Coverage() []int {
	c.once.Do(c.computeCoverage)
	return c.coverage
}

// MeanCoverage returns the mean per-base coverage.
func (c *CdsAlignment) MeanCoverage() float64 {
	c.once.Do(c.computeCoverage)
	return c.mean
}

// StdCoverage returns the population standard deviation of the
// per-base coverage.
func (c *CdsAlignment) StdCoverage() float64 {
	c.once.Do(c.computeCoverage)
	return c.std
}

func (c *CdsAlignment) computeCoverage() {
	start, end := c.Cds.Start(), c.Cds.End()
	n := end - start + 1
	if n <= 0 {
		return
	}
	cov := make([]int, n)
	var s, e, i int
	for _, id := range c.order {
		for _, p := range c.regions[id].Loc.Parts {
			s, e = p.Start, p.End
			if s < start {
				s = start
			}
			if e > end {
				e = end
			}
			for i = s; i <= e; i++ {
				cov[i-start]++
			}
		}
	}

	var sum float64
	for _, v := range cov {
		sum += float64(v)
	}
	mean := sum / float64(n)
	var d, ss float64
	for _, v := range cov {
		d = float64(v) - mean
		ss += d * d
	}
	c.coverage = cov
	c.mean = mean
	c.std = math.Sqrt(ss / float64(n))
}
