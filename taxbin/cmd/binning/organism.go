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
	"sync"

	"github.com/shenwei356/taxbin/taxbin/cmd/cds"
	"github.com/shenwei356/taxbin/taxbin/cmd/location"
	"github.com/shenwei356/taxbin/taxbin/cmd/records"
)

// BinnedRead is a read assigned to an organism.
type BinnedRead struct {
	ReadID string
	TaxID  uint32 // taxid of the chosen alignment
	Target uint32 // target organism
	Rule   Rule
	Score  float64
	Loc    location.Location // intersection with the coding region, if any
}

// IdentifiedCds is a coding region with the reads binned to it.
type IdentifiedCds struct {
	Cds       *records.Cds
	Alignment *cds.CdsAlignment // nil if not indexed
	Reads     []BinnedRead
}

// Organism aggregates reads binned to one target organism. It is safe
// for concurrent use.
type Organism struct {
	TaxID uint32
	Name  string
	Rank  string

	mu                sync.Mutex
	cds               map[records.CdsKey]*IdentifiedCds
	cdsOrder          []records.CdsKey
	coding            []BinnedRead
	noncoding         []BinnedRead
	ambiguousOrganism []BinnedRead
	ambiguousCoding   []BinnedRead
}

// NewOrganism returns an empty organism.
func NewOrganism(taxid uint32, name, rank string) *Organism {
	return &Organism{
		TaxID: taxid,
		Name:  name,
		Rank:  rank,
		cds:   make(map[records.CdsKey]*IdentifiedCds, 64),
	}
}

// AddCds bins a read to a coding region.
func (o *Organism) AddCds(c *records.Cds, ca *cds.CdsAlignment, br BinnedRead) {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := c.Key()
	ic, ok := o.cds[key]
	if !ok {
		ic = &IdentifiedCds{Cds: c, Alignment: ca}
		o.cds[key] = ic
		o.cdsOrder = append(o.cdsOrder, key)
	}
	ic.Reads = append(ic.Reads, br)
	o.coding = append(o.coding, br)
}

// AddNonCoding bins a read to non-coding regions.
func (o *Organism) AddNonCoding(br BinnedRead) {
	o.mu.Lock()
	o.noncoding = append(o.noncoding, br)
	o.mu.Unlock()
}

// AddAmbiguousOrganism keeps a read of ambiguous organism-level
// assignment for audit.
func (o *Organism) AddAmbiguousOrganism(br BinnedRead) {
	o.mu.Lock()
	o.ambiguousOrganism = append(o.ambiguousOrganism, br)
	o.mu.Unlock()
}

// AddAmbiguousCoding keeps a read of ambiguous coding-region mapping
// for audit.
func (o *Organism) AddAmbiguousCoding(br BinnedRead) {
	o.mu.Lock()
	o.ambiguousCoding = append(o.ambiguousCoding, br)
	o.mu.Unlock()
}

// HasCds tells whether a coding region is identified.
func (o *Organism) HasCds(key records.CdsKey) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.cds[key]
	return ok
}

// IdentifiedCds returns identified coding regions in order of
// identification.
func (o *Organism) IdentifiedCds() []*IdentifiedCds {
	o.mu.Lock()
	defer o.mu.Unlock()
	list := make([]*IdentifiedCds, len(o.cdsOrder))
	for i, key := range o.cdsOrder {
		list[i] = o.cds[key]
	}
	return list
}

func copyReads(rs []BinnedRead) []BinnedRead {
	return append([]BinnedRead(nil), rs...)
}

// CodingReads returns reads binned to coding regions.
func (o *Organism) CodingReads() []BinnedRead {
	o.mu.Lock()
	defer o.mu.Unlock()
	return copyReads(o.coding)
}

// NonCodingReads returns reads binned to non-coding regions.
func (o *Organism) NonCodingReads() []BinnedRead {
	o.mu.Lock()
	defer o.mu.Unlock()
	return copyReads(o.noncoding)
}

// Reads returns all binned reads, non-coding ones first.
func (o *Organism) Reads() []BinnedRead {
	o.mu.Lock()
	defer o.mu.Unlock()
	all := make([]BinnedRead, 0, len(o.noncoding)+len(o.coding))
	all = append(all, o.noncoding...)
	return append(all, o.coding...)
}

// NumReads returns the number of binned reads.
func (o *Organism) NumReads() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.noncoding) + len(o.coding)
}

// AmbiguousOrganismReads returns reads kept for audit.
func (o *Organism) AmbiguousOrganismReads() []BinnedRead {
	o.mu.Lock()
	defer o.mu.Unlock()
	return copyReads(o.ambiguousOrganism)
}

// AmbiguousCodingReads returns reads kept for audit.
func (o *Organism) AmbiguousCodingReads() []BinnedRead {
	o.mu.Lock()
	defer o.mu.Unlock()
	return copyReads(o.ambiguousCoding)
}
