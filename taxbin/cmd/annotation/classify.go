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

package annotation

import (
	"github.com/shenwei356/taxbin/taxbin/cmd/cds"
	"github.com/shenwei356/taxbin/taxbin/cmd/reads"
	"github.com/shenwei356/taxbin/taxbin/cmd/records"
	"github.com/shenwei356/taxbin/taxbin/cmd/status"
)

// Classifier computes read statuses.
type Classifier struct {
	targets *Targets
}

// NewClassifier returns a classifier for the targets.
func NewClassifier(targets *Targets) *Classifier {
	return &Classifier{targets: targets}
}

// Targets returns the target list.
func (c *Classifier) Targets() *Targets { return c.targets }

// Classify computes the status of a read from its alignments and the
// coding regions it is indexed to.
func (c *Classifier) Classify(read *reads.Read, hits []*cds.CdsAlignment) (status.Status, error) {
	var s status.Status
	n := len(read.Alignments)
	if n == 0 {
		return s, nil
	}
	if n == 1 {
		s.Alignments = status.OneAlignment
	} else {
		s.Alignments = status.MultipleAlignments
	}

	// organisms
	organisms := make([]uint32, 0, n)
	seen := make(map[uint32]struct{}, n)
	for _, a := range read.Alignments {
		if _, ok := seen[a.TaxID]; ok {
			continue
		}
		seen[a.TaxID] = struct{}{}
		organisms = append(organisms, a.TaxID)
	}
	if len(organisms) == 1 {
		s.Organisms = status.OneOrganism
	} else {
		s.Organisms = status.MultipleOrganisms
	}

	nTargets, err := c.countTargets(organisms)
	if err != nil {
		return s, err
	}
	switch nTargets {
	case len(organisms):
		s.OrganismType = status.TargetOrganisms
	case 0:
		s.OrganismType = status.NonTargetOrganisms
	default:
		s.OrganismType = status.MixedOrganisms
	}

	// coding regions. A single alignment is one coding hit however many
	// regions it spans, the longest one is chosen when binning.
	switch {
	case len(hits) == 0:
		return s, nil
	case len(hits) == 1 || n == 1:
		s.Coding = status.OneCoding
	default:
		s.Coding = status.MultipleCoding
	}

	taxa := make([]uint32, 0, len(hits))
	seen = make(map[uint32]struct{}, len(hits))
	var taxid uint32
	for _, hit := range hits {
		taxid = CodingTaxon(read, hit.Cds)
		if _, ok := seen[taxid]; ok {
			continue
		}
		seen[taxid] = struct{}{}
		taxa = append(taxa, taxid)
	}

	resolved := make(map[uint32]struct{}, len(taxa))
	nTargets = 0
	for _, taxid = range taxa {
		target, err := c.targets.Resolve(taxid)
		if err != nil {
			return s, err
		}
		if target == 0 {
			continue
		}
		nTargets++
		resolved[target] = struct{}{}
	}
	switch {
	case nTargets == 0:
		s.CodingType = status.NonTargetCoding
	case nTargets < len(taxa):
		s.CodingType = status.MixedCoding
	case len(resolved) == 1:
		s.CodingType = status.OneTargetCoding
	default:
		s.CodingType = status.MultipleTargetCoding
	}
	return s, nil
}

func (c *Classifier) countTargets(taxids []uint32) (int, error) {
	var n int
	for _, taxid := range taxids {
		ok, err := c.targets.IsTarget(taxid)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// CodingTaxon returns the taxon of a coding region hit by a read. A
// coding region without a taxon takes the taxid of the first alignment
// of the read hitting it.
func CodingTaxon(read *reads.Read, c *records.Cds) uint32 {
	if c.Taxon != 0 {
		return c.Taxon
	}
	key := c.Key()
	for _, a := range read.Alignments {
		for _, hit := range a.AlignedCds {
			if hit.Cds.Key() == key {
				return a.TaxID
			}
		}
	}
	return 0
}
