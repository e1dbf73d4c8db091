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

package location

import (
	"sort"
	"strconv"
	"strings"
)

// Interval is a closed interval [Start, End] on a reference sequence.
type Interval struct {
	Start int
	End   int
}

// Len returns the number of bases covered.
func (i Interval) Len() int {
	return i.End - i.Start + 1
}

func (i Interval) String() string {
	return strconv.Itoa(i.Start) + ".." + strconv.Itoa(i.End)
}

// Overlap tells whether a and b share at least one base.
// Intervals touching at a single coordinate overlap.
func Overlap(a, b Interval) bool {
	return !(a.End < b.Start || a.Start > b.End)
}

// Intersect returns the common part of two intervals.
func (i Interval) Intersect(o Interval) (Interval, bool) {
	if !Overlap(i, o) {
		return Interval{}, false
	}
	r := Interval{Start: i.Start, End: i.End}
	if o.Start > r.Start {
		r.Start = o.Start
	}
	if o.End < r.End {
		r.End = o.End
	}
	return r, true
}

// Location is a simple interval or an ordered list of intervals of a
// spliced feature. The zero value is an empty location.
type Location struct {
	Parts      []Interval
	Complement bool
}

// New returns a simple location.
func New(start, end int) Location {
	return Location{Parts: []Interval{{Start: start, End: end}}}
}

// IsEmpty tells whether the location holds no interval.
func (l Location) IsEmpty() bool {
	return len(l.Parts) == 0
}

// Start returns the leftmost coordinate.
func (l Location) Start() int {
	if len(l.Parts) == 0 {
		return 0
	}
	s := l.Parts[0].Start
	for _, p := range l.Parts[1:] {
		if p.Start < s {
			s = p.Start
		}
	}
	return s
}

// End returns the rightmost coordinate.
func (l Location) End() int {
	if len(l.Parts) == 0 {
		return 0
	}
	e := l.Parts[0].End
	for _, p := range l.Parts[1:] {
		if p.End > e {
			e = p.End
		}
	}
	return e
}

// Span returns the interval from Start() to End(), ignoring gaps.
func (l Location) Span() Interval {
	return Interval{Start: l.Start(), End: l.End()}
}

// Length returns the sum of lengths of all parts.
func (l Location) Length() int {
	var n int
	for _, p := range l.Parts {
		n += p.Len()
	}
	return n
}

// Overlaps compares spans only, sub-locations are not considered.
func (l Location) Overlaps(o Location) bool {
	if l.IsEmpty() || o.IsEmpty() {
		return false
	}
	return Overlap(l.Span(), o.Span())
}

// Intersection returns the parts shared by l and o, sorted by start.
// The boolean is false if they do not intersect.
func (l Location) Intersection(o Location) (Location, bool) {
	var parts []Interval
	var r Interval
	var ok bool
	for _, a := range l.Parts {
		for _, b := range o.Parts {
			if r, ok = a.Intersect(b); ok {
				parts = append(parts, r)
			}
		}
	}
	if len(parts) == 0 {
		return Location{}, false
	}
	sort.Slice(parts, func(i, j int) bool {
		if parts[i].Start == parts[j].Start {
			return parts[i].End < parts[j].End
		}
		return parts[i].Start < parts[j].Start
	})
	return Location{Parts: parts, Complement: l.Complement}, true
}

func (l Location) String() string {
	if len(l.Parts) == 0 {
		return ""
	}
	var s string
	if len(l.Parts) == 1 {
		s = l.Parts[0].String()
	} else {
		items := make([]string, len(l.Parts))
		for i, p := range l.Parts {
			items[i] = p.String()
		}
		s = "join(" + strings.Join(items, ",") + ")"
	}
	if l.Complement {
		return "complement(" + s + ")"
	}
	return s
}
