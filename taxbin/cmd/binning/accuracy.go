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

package binning

import (
	"github.com/pkg/errors"
)

// AccuracyRanks are the ranks evaluated, from the most specific.
var AccuracyRanks = []string{"species", "genus", "family", "order", "class", "phylum", "superkingdom"}

// RankFinder finds ancestors of a given rank.
type RankFinder interface {
	ParentWithRank(taxid uint32, rank string) (uint32, error)
}

// RankCount holds correct and incorrect assignments of a rank.
type RankCount struct {
	Rank  string
	True  int
	False int
}

// RankAccuracy compares assignments with the true taxa of reads.
type RankAccuracy struct {
	Counts []RankCount // in the order of AccuracyRanks

	Evaluated int
	NoTruth   int // assigned reads absent from the truth
}

// EvaluateRanks checks each assignment at each rank from species up.
// A rank where the assigned taxon has no ancestor is not counted, and
// once a rank matches all higher ranks count as correct.
func EvaluateRanks(tax RankFinder, assignments []Assignment, truth map[string]uint32) (*RankAccuracy, error) {
	acc := &RankAccuracy{Counts: make([]RankCount, len(AccuracyRanks))}
	for i, rank := range AccuracyRanks {
		acc.Counts[i].Rank = rank
	}

	var correct, p1, p2 uint32
	var ok, matched bool
	var err error
	for _, a := range assignments {
		if correct, ok = truth[a.ReadID]; !ok {
			acc.NoTruth++
			continue
		}
		acc.Evaluated++
		matched = false
		for i, rank := range AccuracyRanks {
			if matched {
				acc.Counts[i].True++
				continue
			}
			if p1, err = tax.ParentWithRank(a.TaxID, rank); err != nil {
				return nil, errors.Wrapf(err, "read %s", a.ReadID)
			}
			if p1 == 0 { // not specific enough
				continue
			}
			if p2, err = tax.ParentWithRank(correct, rank); err != nil {
				return nil, errors.Wrapf(err, "read %s", a.ReadID)
			}
			if p1 == p2 {
				acc.Counts[i].True++
				matched = true
			} else {
				acc.Counts[i].False++
			}
		}
	}
	return acc, nil
}
