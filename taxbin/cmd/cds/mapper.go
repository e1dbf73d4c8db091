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

// Package cds maps read alignments onto annotated coding regions and
// aggregates the reads of each coding region.
package cds

import (
	"github.com/shenwei356/taxbin/taxbin/cmd/location"
	"github.com/shenwei356/taxbin/taxbin/cmd/reads"
	"github.com/shenwei356/taxbin/taxbin/cmd/records"
)

type relPos uint8

const (
	leftOf  relPos = iota // fully left of the alignment
	rightOf               // fully right, or overlapping but not the first
	first                 // the first one overlapping
)

func span(c *records.Cds) location.Interval {
	return location.Interval{Start: c.Start(), End: c.End()}
}

func position(cdss []*records.Cds, i int, aln location.Interval) relPos {
	s := span(cdss[i])
	if s.End < aln.Start {
		return leftOf
	}
	if s.Start > aln.End {
		return rightOf
	}
	if i == 0 || !location.Overlap(span(cdss[i-1]), aln) {
		return first
	}
	return rightOf
}

// FirstOverlap returns the index of the first coding region overlapping
// the interval, or -1. cdss must be sorted by start. Neighbouring regions
// may overlap, but a region nested in an earlier longer one hides that
// longer one: with 1..1000, 10..20 and 500..600, an interval at 30..40
// finds nothing and one at 550..560 misses 1..1000.
func FirstOverlap(cdss []*records.Cds, aln location.Interval) int {
	if len(cdss) == 0 {
		return -1
	}
	lo, hi := 0, len(cdss)-1
	var mid int
	for lo < hi {
		mid = lo + (hi-lo)/2
		switch position(cdss, mid, aln) {
		case leftOf:
			lo = mid + 1
		case rightOf:
			hi = mid - 1
		case first:
			return mid
		}
	}
	if lo >= 0 && lo < len(cdss) && location.Overlap(span(cdss[lo]), aln) {
		return lo
	}
	return -1
}

// Overlapping returns the coding regions whose spans overlap the
// interval, in list order, with the intersections of their locations.
// Regions overlapping only within an intron are skipped.
func Overlapping(cdss []*records.Cds, aln location.Location) []reads.AlignedCds {
	iv := location.Interval{Start: aln.Start(), End: aln.End()}
	i := FirstOverlap(cdss, iv)
	if i < 0 {
		return nil
	}
	var hits []reads.AlignedCds
	for ; i < len(cdss); i++ {
		if !location.Overlap(span(cdss[i]), iv) {
			break
		}
		inter, ok := cdss[i].Loc.Intersection(aln)
		if !ok {
			continue
		}
		hits = append(hits, reads.AlignedCds{Cds: cdss[i], Intersection: inter})
	}
	return hits
}

// MapAlignment fills the coding regions hit by an alignment. A nil
// record means no coding-region data and leaves the list empty.
func MapAlignment(aln *reads.Alignment, rec *records.Record) {
	aln.AlignedCds = nil
	if rec == nil {
		return
	}
	aln.AlignedCds = Overlapping(rec.Cds, aln.Location())
}
