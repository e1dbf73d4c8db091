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

package reads

import (
	"github.com/shenwei356/go-logging"
	"github.com/shenwei356/taxbin/taxbin/cmd/location"
	"github.com/shenwei356/taxbin/taxbin/cmd/records"
	"github.com/shenwei356/taxbin/taxbin/cmd/status"
)

var log = logging.MustGetLogger("taxbin")

// HostStatus is a tri-state potential-host flag.
type HostStatus int8

const (
	HostUnknown HostStatus = iota
	Host
	NotHost
)

func (s HostStatus) String() string {
	switch s {
	case Host:
		return "host"
	case NotHost:
		return "not-host"
	}
	return "unknown"
}

// HostStatusOf converts a boolean to a known status.
func HostStatusOf(host bool) HostStatus {
	if host {
		return Host
	}
	return NotHost
}

// AlignedCds is a coding region overlapped by an alignment, with the
// intersecting part.
type AlignedCds struct {
	Cds          *records.Cds
	Intersection location.Location
}

// Alignment is one alignment of a read against a reference record.
type Alignment struct {
	ReadID     string
	Accession  string
	Source     string // database source tag
	GI         int
	Score      float64
	Start      int
	End        int
	Complement bool

	TaxID         uint32 // 0 for unresolved
	PotentialHost HostStatus
	Active        bool

	AlignedCds []AlignedCds
}

// NewAlignment returns an active alignment. Start and end are swapped
// if given in reverse order.
func NewAlignment(readID, accession, source string, gi int, score float64,
	start, end int, complement bool) *Alignment {
	if start > end {
		start, end = end, start
	}
	return &Alignment{
		ReadID:     readID,
		Accession:  accession,
		Source:     source,
		GI:         gi,
		Score:      score,
		Start:      start,
		End:        end,
		Complement: complement,
		Active:     true,
	}
}

// Location returns the aligned span on the reference.
func (a *Alignment) Location() location.Location {
	loc := location.New(a.Start, a.End)
	loc.Complement = a.Complement
	return loc
}

// Resolved tells whether the taxid is known.
func (a *Alignment) Resolved() bool { return a.TaxID != 0 }

// Coding tells whether the alignment overlaps any coding region.
func (a *Alignment) Coding() bool { return len(a.AlignedCds) > 0 }

// Read is a sequencing read with its alignments in input order.
type Read struct {
	ID            string
	Length        int // 0 for unknown
	Alignments    []*Alignment
	PotentialHost HostStatus
	Status        status.Status
}

// ActiveAlignments returns active alignments.
func (r *Read) ActiveAlignments() []*Alignment {
	alns := make([]*Alignment, 0, len(r.Alignments))
	for _, a := range r.Alignments {
		if a.Active {
			alns = append(alns, a)
		}
	}
	return alns
}

// GIs returns GIs of all alignments.
func (r *Read) GIs() []int {
	gis := make([]int, len(r.Alignments))
	for i, a := range r.Alignments {
		gis[i] = a.GI
	}
	return gis
}

// TaxIDs returns resolved taxids of alignments, duplicates kept.
func (r *Read) TaxIDs() []uint32 {
	taxids := make([]uint32, 0, len(r.Alignments))
	for _, a := range r.Alignments {
		if a.TaxID != 0 {
			taxids = append(taxids, a.TaxID)
		}
	}
	return taxids
}
