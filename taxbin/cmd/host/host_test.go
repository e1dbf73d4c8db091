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

package host

import (
	"errors"
	"testing"

	"github.com/shenwei356/taxbin/taxbin/cmd/reads"
)

// 9606 human (host seed 9606), 562 E. coli (microbe seed 2),
// 32630 synthetic construct (unassigned)
type categories map[uint32]uint32

func (c categories) Category(taxid uint32) (uint32, bool) {
	cat, ok := c[taxid]
	return cat, ok
}

var testCategories = categories{9606: 9606, 562: 2, 32630: Unassigned}

func aln(taxid uint32, score float64) *reads.Alignment {
	a := reads.NewAlignment("r", "NC", "gb", 1, score, 1, 100, false)
	a.TaxID = taxid
	return a
}

func newRead(id string, alns ...*reads.Alignment) *reads.Read {
	return &reads.Read{ID: id, Alignments: alns}
}

func TestIsHostAlignment(t *testing.T) {
	f := NewFilter(testCategories, []uint32{9606}, false)
	cases := []struct {
		taxid uint32
		want  bool
	}{
		{9606, true},
		{562, false},
		{32630, false},
		{0, true},     // unresolved
		{12345, true}, // unknown to the taxonomy
	}
	for _, c := range cases {
		if f.IsHostAlignment(aln(c.taxid, 1)) != c.want {
			t.Errorf("IsHostAlignment(%d) != %v", c.taxid, c.want)
		}
	}

	f = NewFilter(testCategories, []uint32{9606}, true)
	if !f.IsHostAlignment(aln(32630, 1)) {
		t.Errorf("unassigned should be host-like when filtered")
	}
}

func TestFilterAlignments(t *testing.T) {
	f := NewFilter(testCategories, []uint32{9606}, false)

	r1 := newRead("r1", aln(9606, 1), aln(562, 2), aln(0, 3), aln(562, 4), aln(9606, 5))
	r2 := newRead("r2")
	rs := []*reads.Read{r1, r2}

	if n := f.FilterAlignments(rs, true); n != 3 {
		t.Errorf("3 host alignments expected, got %d", n)
	}
	if len(r1.Alignments) != 2 || r1.Alignments[0].Score != 2 || r1.Alignments[1].Score != 4 {
		t.Fatalf("unexpected alignments: %v", r1.Alignments)
	}
	for _, a := range r1.Alignments {
		if a.PotentialHost != reads.NotHost {
			t.Errorf("kept alignments should be marked not host")
		}
	}

	// idempotent
	if n := f.FilterAlignments(rs, true); n != 0 {
		t.Errorf("no host alignments expected in the second pass, got %d", n)
	}
	if len(r1.Alignments) != 2 || len(r2.Alignments) != 0 {
		t.Errorf("second pass should change nothing")
	}

	r3 := newRead("r3", aln(9606, 1), aln(562, 2))
	f.FilterAlignments([]*reads.Read{r3}, false)
	if len(r3.Alignments) != 2 ||
		r3.Alignments[0].PotentialHost != reads.Host ||
		r3.Alignments[1].PotentialHost != reads.NotHost {
		t.Errorf("alignments should be marked only")
	}
}

func TestParseRule(t *testing.T) {
	for s, want := range map[string]Rule{"best-score": BestScore, "Percentage": Percentage, "all": AllAlignments} {
		r, err := ParseRule(s)
		if err != nil || r != want {
			t.Errorf("ParseRule(%s) = %s, %v", s, r, err)
		}
	}
	_, err := ParseRule("majority")
	if !errors.Is(err, ErrUnknownRule) {
		t.Errorf("ErrUnknownRule expected, got %v", err)
	}

	f := NewFilter(testCategories, []uint32{9606}, false)
	if _, err = NewReadFilter(f, Rule(42), 0.5); !errors.Is(err, ErrUnknownRule) {
		t.Errorf("ErrUnknownRule expected, got %v", err)
	}
	if _, err = NewReadFilter(f, Percentage, 0); err == nil {
		t.Errorf("error expected for percentage 0")
	}
}

func TestReadRules(t *testing.T) {
	f := NewFilter(testCategories, []uint32{9606}, false)

	// host best score, 2 of 3 host-like
	r1 := newRead("r1", aln(562, 10), aln(9606, 50), aln(0, 5))
	// microbe best score, 1 of 2 host-like
	r2 := newRead("r2", aln(9606, 10), aln(562, 50))
	// all host-like
	r3 := newRead("r3", aln(9606, 10), aln(9606, 10))
	r0 := newRead("r0")

	cases := []struct {
		rule Rule
		perc float64
		want [4]bool // r0 r1 r2 r3
	}{
		{BestScore, 0, [4]bool{false, true, false, true}},
		{Percentage, 0.5, [4]bool{false, true, true, true}},
		{Percentage, 0.7, [4]bool{false, false, false, true}},
		{AllAlignments, 0, [4]bool{false, false, false, true}},
	}
	for _, c := range cases {
		rf, err := NewReadFilter(f, c.rule, c.perc)
		if err != nil {
			t.Fatal(err)
		}
		for i, r := range []*reads.Read{r0, r1, r2, r3} {
			if rf.IsHostRead(r) != c.want[i] {
				t.Errorf("%s(%v): %s should be %v", c.rule, c.perc, r.ID, c.want[i])
			}
		}
	}

	// ties of the best score: the first one wins
	rf, _ := NewReadFilter(f, BestScore, 0)
	if !rf.IsHostRead(newRead("r4", aln(9606, 10), aln(562, 10))) {
		t.Errorf("first best alignment should decide")
	}
}

func TestFilterReads(t *testing.T) {
	f := NewFilter(testCategories, []uint32{9606}, false)
	rf, err := NewReadFilter(f, Percentage, DefaultPercentage)
	if err != nil {
		t.Fatal(err)
	}

	newReads := func() []*reads.Read {
		return []*reads.Read{
			newRead("r1", aln(9606, 10)),
			newRead("r2", aln(562, 10)),
			newRead("r3"),
		}
	}

	kept, n := rf.FilterReads(newReads(), true)
	if n != 1 || len(kept) != 2 || kept[0].ID != "r2" || kept[1].ID != "r3" {
		t.Errorf("unexpected kept reads: %d host, %d kept", n, len(kept))
	}

	rs := newReads()
	kept, n = rf.FilterReads(rs, false)
	if n != 1 || len(kept) != 3 {
		t.Errorf("reads should be marked only")
	}
	if rs[0].PotentialHost != reads.Host || rs[1].PotentialHost != reads.NotHost || rs[2].PotentialHost != reads.NotHost {
		t.Errorf("unexpected marks")
	}
}
