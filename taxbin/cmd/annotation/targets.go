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

// Package annotation classifies reads by their alignments and
// coding-region hits with respect to a list of target organisms.
package annotation

import "sort"

// Taxonomy is the part of the taxonomy tree needed here.
type Taxonomy interface {
	IsChild(a, b uint32) (bool, error)
	RankLevel(taxid uint32) int
}

// Targets is a list of target organisms.
type Targets struct {
	tax Taxonomy
	ids []uint32
	set map[uint32]struct{}
}

// NewTargets returns a target list, duplicates are removed.
func NewTargets(tax Taxonomy, ids []uint32) *Targets {
	t := &Targets{
		tax: tax,
		ids: make([]uint32, 0, len(ids)),
		set: make(map[uint32]struct{}, len(ids)),
	}
	for _, id := range ids {
		if _, ok := t.set[id]; ok {
			continue
		}
		t.set[id] = struct{}{}
		t.ids = append(t.ids, id)
	}
	return t
}

// IDs returns target taxids in the given order.
func (t *Targets) IDs() []uint32 { return t.ids }

// Has tells whether a taxid is a target itself.
func (t *Targets) Has(taxid uint32) bool {
	_, ok := t.set[taxid]
	return ok
}

// Ancestors returns targets of which the taxid is a strict descendant,
// in the given order.
func (t *Targets) Ancestors(taxid uint32) ([]uint32, error) {
	var parents []uint32
	for _, id := range t.ids {
		ok, err := t.tax.IsChild(taxid, id)
		if err != nil {
			return nil, err
		}
		if ok {
			parents = append(parents, id)
		}
	}
	return parents, nil
}

// IsTarget tells whether a taxid is a target or a descendant of one.
// Unresolved taxids (0) are not.
func (t *Targets) IsTarget(taxid uint32) (bool, error) {
	if taxid == 0 {
		return false, nil
	}
	if t.Has(taxid) {
		return true, nil
	}
	for _, id := range t.ids {
		ok, err := t.tax.IsChild(taxid, id)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Resolve returns the target organism governing a taxid, 0 if none.
// A target resolves to itself. Among nested targets the most specific
// rank wins, and the later one in the list on equal ranks.
func (t *Targets) Resolve(taxid uint32) (uint32, error) {
	if taxid == 0 {
		return 0, nil
	}
	if t.Has(taxid) {
		return taxid, nil
	}
	parents, err := t.Ancestors(taxid)
	if err != nil {
		return 0, err
	}
	switch len(parents) {
	case 0:
		return 0, nil
	case 1:
		return parents[0], nil
	}
	sort.SliceStable(parents, func(i, j int) bool {
		return t.tax.RankLevel(parents[i]) < t.tax.RankLevel(parents[j])
	})
	return parents[len(parents)-1], nil
}
