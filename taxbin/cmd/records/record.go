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

package records

import (
	"github.com/shenwei356/go-logging"
	"github.com/shenwei356/taxbin/taxbin/cmd/location"
	"github.com/twotwotwo/sorts"
)

var log = logging.MustGetLogger("taxbin")

// CdsKey identifies a coding region.
type CdsKey struct {
	RecordID string
	Location string
}

func (k CdsKey) String() string {
	return k.RecordID + ":" + k.Location
}

// Cds is an annotated coding region of a reference record.
type Cds struct {
	RecordID string
	Location string // location string as stored
	Loc      location.Location

	Taxon     uint32
	Gene      string
	Product   string
	ProteinID string
	LocusTag  string
}

// NewCds parses the location string of a coding region.
func NewCds(recordID, loc string, taxon uint32) (*Cds, error) {
	l, err := location.Parse(loc)
	if err != nil {
		return nil, err
	}
	return &Cds{RecordID: recordID, Location: loc, Loc: l, Taxon: taxon}, nil
}

// Key returns the key of the CDS.
func (c *Cds) Key() CdsKey {
	return CdsKey{RecordID: c.RecordID, Location: c.Location}
}

// Start returns the leftmost coordinate.
func (c *Cds) Start() int { return c.Loc.Start() }

// End returns the rightmost coordinate.
func (c *Cds) End() int { return c.Loc.End() }

// Len returns the number of coding bases.
func (c *Cds) Len() int { return c.Loc.Length() }

// Name returns the most descriptive available identifier.
func (c *Cds) Name() string {
	switch {
	case c.Gene != "":
		return c.Gene
	case c.ProteinID != "":
		return c.ProteinID
	case c.LocusTag != "":
		return c.LocusTag
	}
	return c.Key().String()
}

// Record is a reference sequence with its coding regions sorted by start.
type Record struct {
	ID  string
	Cds []*Cds
}

// RawCds holds unparsed fields of a coding region as read from a store.
type RawCds struct {
	Location  string
	Taxon     uint32
	Gene      string
	Product   string
	ProteinID string
	LocusTag  string
}

// NewRecord builds a record. Coding regions with malformed or empty
// locations are logged and dropped.
func NewRecord(id string, raws []RawCds) *Record {
	rec := &Record{ID: id, Cds: make([]*Cds, 0, len(raws))}
	for _, r := range raws {
		cds, err := NewCds(id, r.Location, r.Taxon)
		if err != nil {
			log.Warningf("record %s: skip CDS: %s", id, err)
			continue
		}
		if cds.Loc.IsEmpty() {
			log.Debugf("record %s: skip CDS with empty location", id)
			continue
		}
		cds.Gene = r.Gene
		cds.Product = r.Product
		cds.ProteinID = r.ProteinID
		cds.LocusTag = r.LocusTag
		rec.Cds = append(rec.Cds, cds)
	}
	sorts.Quicksort(byStart(rec.Cds))
	return rec
}

type byStart []*Cds

func (s byStart) Len() int { return len(s) }
func (s byStart) Less(i, j int) bool {
	a, b := s[i].Start(), s[j].Start()
	if a != b {
		return a < b
	}
	a, b = s[i].End(), s[j].End()
	if a != b {
		return a < b
	}
	return s[i].Location < s[j].Location
}
func (s byStart) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
