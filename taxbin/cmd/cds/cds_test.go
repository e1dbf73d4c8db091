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
	"fmt"
	"math"
	"testing"

	"github.com/shenwei356/taxbin/taxbin/cmd/location"
	"github.com/shenwei356/taxbin/taxbin/cmd/reads"
	"github.com/shenwei356/taxbin/taxbin/cmd/records"
)

// n coding regions of 10 bases, separated by 5-base gaps: 1..10, 16..25, ...
func syntheticCds(n int) []*records.Cds {
	cdss := make([]*records.Cds, n)
	for i := range cdss {
		s := 1 + i*15
		c, err := records.NewCds("NC_1", fmt.Sprintf("%d..%d", s, s+9), 2)
		if err != nil {
			panic(err)
		}
		cdss[i] = c
	}
	return cdss
}

func TestOverlappingSpans(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 16} {
		cdss := syntheticCds(n)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				aln := location.New(cdss[i].Start(), cdss[j].End())
				hits := Overlapping(cdss, aln)
				if len(hits) != j-i+1 {
					t.Errorf("n=%d [%d,%d]: %d hits", n, i, j, len(hits))
					continue
				}
				for k, h := range hits {
					if h.Cds != cdss[i+k] {
						t.Errorf("n=%d [%d,%d]: hit %d is %s", n, i, j, k, h.Cds.Location)
					}
				}

				// widened into the neighbouring gaps
				aln = location.New(cdss[i].Start()-2, cdss[j].End()+2)
				if hits = Overlapping(cdss, aln); len(hits) != j-i+1 {
					t.Errorf("n=%d [%d,%d] widened: %d hits", n, i, j, len(hits))
				}
			}
		}
	}
}

func TestOverlappingEdges(t *testing.T) {
	cdss := syntheticCds(4) // 1..10 16..25 31..40 46..55

	if hits := Overlapping(nil, location.New(1, 100)); len(hits) != 0 {
		t.Errorf("no hits expected for an empty list")
	}
	if hits := Overlapping(cdss, location.New(11, 15)); len(hits) != 0 {
		t.Errorf("no hits expected in a gap")
	}
	if hits := Overlapping(cdss, location.New(100, 200)); len(hits) != 0 {
		t.Errorf("no hits expected beyond the last region")
	}
	// touching at one base
	hits := Overlapping(cdss, location.New(25, 31))
	if len(hits) != 2 || hits[0].Intersection.String() != "25..25" || hits[1].Intersection.String() != "31..31" {
		t.Errorf("unexpected hits at boundaries: %v", hits)
	}
	if i := FirstOverlap(cdss, location.Interval{Start: 20, End: 50}); i != 1 {
		t.Errorf("first overlap: %d", i)
	}
	if i := FirstOverlap(cdss, location.Interval{Start: 56, End: 60}); i != -1 {
		t.Errorf("first overlap: %d", i)
	}

	// overlap only within an intron
	spliced, _ := records.NewCds("NC_2", "join(1..10,50..60)", 2)
	if hits = Overlapping([]*records.Cds{spliced}, location.New(20, 30)); len(hits) != 0 {
		t.Errorf("no hits expected inside an intron")
	}
}

func TestOverlappingNeighbours(t *testing.T) {
	rec := records.NewRecord("NC_1", []records.RawCds{
		{Location: "90..200", Taxon: 2},
		{Location: "300..400", Taxon: 2},
		{Location: "350..700", Taxon: 2},
	})
	if i := FirstOverlap(rec.Cds, location.Interval{Start: 380, End: 420}); i != 1 {
		t.Errorf("first overlap: %d", i)
	}
	hits := Overlapping(rec.Cds, location.New(380, 420))
	if len(hits) != 2 || hits[0].Intersection.String() != "380..400" || hits[1].Intersection.String() != "380..420" {
		t.Errorf("unexpected hits: %v", hits)
	}

	// a short region nested in a longer one hides it
	nested := records.NewRecord("NC_2", []records.RawCds{
		{Location: "1..1000", Taxon: 2},
		{Location: "10..20", Taxon: 2},
		{Location: "500..600", Taxon: 2},
	})
	if i := FirstOverlap(nested.Cds, location.Interval{Start: 30, End: 40}); i != -1 {
		t.Errorf("first overlap: %d", i)
	}
	if hits = Overlapping(nested.Cds, location.New(550, 560)); len(hits) != 1 || hits[0].Cds != nested.Cds[2] {
		t.Errorf("unexpected hits: %v", hits)
	}
}

func TestMapAlignment(t *testing.T) {
	rec := records.NewRecord("NC_1", []records.RawCds{
		{Location: "1..10", Taxon: 2},
		{Location: "16..25", Taxon: 2},
	})
	aln := reads.NewAlignment("r1", "NC_1", "gb", 1, 10, 8, 18, false)
	MapAlignment(aln, rec)
	if len(aln.AlignedCds) != 2 {
		t.Errorf("2 hits expected, got %d", len(aln.AlignedCds))
	}
	MapAlignment(aln, nil)
	if len(aln.AlignedCds) != 0 {
		t.Errorf("no hits expected for a missing record")
	}
}

func TestCdsAlignment(t *testing.T) {
	c, _ := records.NewCds("NC_1", "1..10", 2)
	ca := NewCdsAlignment(c)

	if !ca.Add("r1", location.New(1, 5), 10) {
		t.Errorf("r1 should be added")
	}
	if ca.Add("r1", location.New(1, 10), 99) {
		t.Errorf("r1 should not be added twice")
	}
	if s, _ := ca.Sublocation("r1"); s.Score != 10 || s.Loc.String() != "1..5" {
		t.Errorf("first write should win: %+v", s)
	}
	ca.Add("r2", location.New(4, 8), 20)

	if ca.Len() != 2 || !ca.Contains("r2") || ca.Contains("r3") {
		t.Errorf("unexpected reads")
	}

	// 1 1 1 2 2 1 1 1 0 0
	cov := ca.Coverage()
	want := []int{1, 1, 1, 2, 2, 1, 1, 1, 0, 0}
	for i := range want {
		if cov[i] != want[i] {
			t.Fatalf("coverage: %v, want %v", cov, want)
		}
	}
	if math.Abs(ca.MeanCoverage()-1.0) > 1e-9 {
		t.Errorf("mean coverage: %f", ca.MeanCoverage())
	}
	if math.Abs(ca.StdCoverage()-math.Sqrt(0.4)) > 1e-9 {
		t.Errorf("std coverage: %f", ca.StdCoverage())
	}

	// computed once
	ca.Add("r3", location.New(1, 10), 5)
	if ca.MeanCoverage() != 1.0 {
		t.Errorf("coverage should not be recomputed")
	}

	if !ca.IsActive() || ca.ActiveCount() != 3 {
		t.Errorf("all sublocations should be active")
	}
	ca.Deactivate("r1")
	ca.Deactivate("r2")
	ca.Deactivate("r3")
	if ca.IsActive() || ca.ActiveCount() != 0 {
		t.Errorf("no active sublocation expected")
	}
}

func TestContainer(t *testing.T) {
	rec := records.NewRecord("NC_1", []records.RawCds{
		{Location: "1..10", Taxon: 2},
		{Location: "16..25", Taxon: 2},
	})

	r1 := &reads.Read{ID: "r1", Alignments: []*reads.Alignment{
		reads.NewAlignment("r1", "NC_1", "gb", 1, 10, 5, 18, false),
		reads.NewAlignment("r1", "NC_1", "gb", 1, 30, 2, 4, false), // same region again
	}}
	r2 := &reads.Read{ID: "r2", PotentialHost: reads.Host, Alignments: []*reads.Alignment{
		reads.NewAlignment("r2", "NC_1", "gb", 1, 10, 1, 10, false),
	}}
	r3 := &reads.Read{ID: "r3", Alignments: []*reads.Alignment{
		reads.NewAlignment("r3", "NC_1", "gb", 1, 10, 20, 22, false),
	}}
	r3.Alignments[0].Active = false
	r4 := &reads.Read{ID: "r4", Alignments: []*reads.Alignment{
		reads.NewAlignment("r4", "NC_1", "gb", 1, 10, 11, 14, false),
	}}
	for _, r := range []*reads.Read{r1, r2, r3, r4} {
		for _, a := range r.Alignments {
			MapAlignment(a, rec)
		}
	}

	c := NewContainer()
	c.Populate([]*reads.Read{r1, r2, r3, r4})

	if c.Len() != 2 {
		t.Errorf("2 coding regions expected, got %d", c.Len())
	}
	if n := len(c.ReadCds("r1")); n != 2 {
		t.Errorf("r1 should hit 2 coding regions, got %d", n)
	}
	for _, id := range []string{"r2", "r3", "r4"} {
		if c.ReadCds(id) != nil {
			t.Errorf("%s should not be indexed", id)
		}
	}
	ca, ok := c.Get(records.CdsKey{RecordID: "NC_1", Location: "1..10"})
	if !ok {
		t.Fatal("1..10 should be indexed")
	}
	if s, _ := ca.Sublocation("r1"); s.Score != 10 || s.Loc.String() != "5..10" {
		t.Errorf("first alignment should win: %+v", s)
	}
	if len(c.All()) != 2 || len(c.Active()) != 2 {
		t.Errorf("unexpected listing")
	}
}
