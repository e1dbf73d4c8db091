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

// Package binning assigns reads to target organisms and their coding
// regions.
package binning

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shenwei356/go-logging"
	"github.com/shenwei356/taxbin/taxbin/cmd/annotation"
	"github.com/shenwei356/taxbin/taxbin/cmd/cds"
	"github.com/shenwei356/taxbin/taxbin/cmd/reads"
	"github.com/shenwei356/taxbin/taxbin/cmd/status"
)

var log = logging.MustGetLogger("taxbin")

// Rule is the binning decision taken for a read.
type Rule uint8

const (
	// Discard: no alignments, or only non-target organisms.
	Discard Rule = iota
	// SingleCoding: one alignment into one coding region of a target.
	SingleCoding
	// MultiCoding: coding regions of several targets, or of targets and
	// non-targets.
	MultiCoding
	// NonCoding: target alignments outside coding regions.
	NonCoding
	// Inert: any other status, kept for audit only.
	Inert
)

var ruleNames = []string{"discard", "single-coding", "multi-coding", "non-coding", "inert"}

func (r Rule) String() string {
	if int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return fmt.Sprintf("rule(%d)", r)
}

// Rules lists all rules.
var Rules = []Rule{Discard, SingleCoding, MultiCoding, NonCoding, Inert}

// Dispatch chooses the rule for a status. Rules are tried in order and
// the first match wins.
func Dispatch(s status.Status) Rule {
	switch {
	case s.IsZeroAlignment() || s.IsMappedToNonTarget():
		return Discard
	case s.IsSingleAlignment() && s.IsSingleCoding() &&
		s.IsMappedToTarget() && s.IsCodingSingleTarget():
		return SingleCoding
	case s.IsCodingMultipleTargets() || s.IsCodingMixed():
		return MultiCoding
	case s.IsNotCoding() && (s.IsMappedToTarget() || s.IsMappedToMixed()):
		return NonCoding
	}
	return Inert
}

// Names provides names and ranks of taxa.
type Names interface {
	Name(taxid uint32) string
	Rank(taxid uint32) string
}

// Result holds binning results.
type Result struct {
	Organisms map[uint32]*Organism
	Targets   []uint32 // in the order of the target list

	Assignments []BinnedRead // in read order
	Counts      map[Rule]int
	Host        int          // reads marked as host and skipped
	Unhandled   []BinnedRead // inert reads not attributable to one target
}

// Organism returns the organism of a target.
func (r *Result) Organism(taxid uint32) *Organism {
	return r.Organisms[taxid]
}

// Binner bins annotated reads.
type Binner struct {
	names   Names
	targets *annotation.Targets
	index   *cds.Container
}

// NewBinner returns a binner. index could be nil if no coding-region
// data is used.
func NewBinner(names Names, targets *annotation.Targets, index *cds.Container) *Binner {
	if index == nil {
		index = cds.NewContainer()
	}
	return &Binner{names: names, targets: targets, index: index}
}

// Bin assigns every read per its status. Reads marked as host are
// skipped. Reads must have been annotated.
func (b *Binner) Bin(rs []*reads.Read) (*Result, error) {
	res := &Result{
		Organisms: make(map[uint32]*Organism, len(b.targets.IDs())),
		Targets:   b.targets.IDs(),
		Counts:    make(map[Rule]int, len(Rules)),
	}
	for _, taxid := range b.targets.IDs() {
		res.Organisms[taxid] = NewOrganism(taxid, b.names.Name(taxid), b.names.Rank(taxid))
	}

	var rule Rule
	var br BinnedRead
	var ok bool
	var err error
	for _, read := range rs {
		if read.PotentialHost == reads.Host {
			res.Host++
			continue
		}

		rule = Dispatch(read.Status)
		switch rule {
		case Discard:
			ok = true
		case SingleCoding, MultiCoding:
			br, ok, err = b.binCoding(res, read, rule)
		case NonCoding:
			br, ok, err = b.binNonCoding(res, read)
		case Inert:
			ok = true
			err = b.keepInert(res, read)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "binning read %s", read.ID)
		}
		if !ok { // status and alignments disagree
			log.Debugf("read %s (%s): no target alignment for rule %s", read.ID, read.Status, rule)
			rule = Inert
			if err = b.keepInert(res, read); err != nil {
				return nil, errors.Wrapf(err, "binning read %s", read.ID)
			}
		}
		res.Counts[rule]++
		if rule == SingleCoding || rule == MultiCoding || rule == NonCoding {
			res.Assignments = append(res.Assignments, br)
		}
	}
	return res, nil
}

// bestTargetAlignment returns the first highest-scoring active alignment
// to a target, restricted to coding ones if coding is true.
func (b *Binner) bestTargetAlignment(read *reads.Read, coding bool) (*reads.Alignment, error) {
	var best *reads.Alignment
	for _, a := range read.Alignments {
		if !a.Active || (coding && !a.Coding()) {
			continue
		}
		ok, err := b.targets.IsTarget(a.TaxID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if best == nil || a.Score > best.Score {
			best = a
		}
	}
	return best, nil
}

// longestCds returns the longest coding region hit, the first one on ties.
func longestCds(a *reads.Alignment) reads.AlignedCds {
	longest := a.AlignedCds[0]
	for _, h := range a.AlignedCds[1:] {
		if h.Cds.Len() > longest.Cds.Len() {
			longest = h
		}
	}
	return longest
}

func (b *Binner) binCoding(res *Result, read *reads.Read, rule Rule) (BinnedRead, bool, error) {
	var br BinnedRead
	best, err := b.bestTargetAlignment(read, true)
	if err != nil || best == nil {
		return br, false, err
	}
	target, err := b.targets.Resolve(best.TaxID)
	if err != nil || target == 0 {
		return br, false, err
	}

	hit := longestCds(best)
	br = BinnedRead{
		ReadID: read.ID,
		TaxID:  best.TaxID,
		Target: target,
		Rule:   rule,
		Score:  best.Score,
		Loc:    hit.Intersection,
	}
	key := hit.Cds.Key()
	ca, _ := b.index.Get(key)
	res.Organisms[target].AddCds(hit.Cds, ca, br)

	// the read now counts only for the chosen coding region
	for _, other := range b.index.ReadCds(read.ID) {
		if other.Cds.Key() != key {
			other.Deactivate(read.ID)
		}
	}
	return br, true, nil
}

func (b *Binner) binNonCoding(res *Result, read *reads.Read) (BinnedRead, bool, error) {
	var br BinnedRead
	best, err := b.bestTargetAlignment(read, false)
	if err != nil || best == nil {
		return br, false, err
	}
	target, err := b.targets.Resolve(best.TaxID)
	if err != nil || target == 0 {
		return br, false, err
	}
	br = BinnedRead{
		ReadID: read.ID,
		TaxID:  best.TaxID,
		Target: target,
		Rule:   NonCoding,
		Score:  best.Score,
	}
	res.Organisms[target].AddNonCoding(br)
	return br, true, nil
}

// keepInert files a read in the ambiguous lists of its only target
// organism, or in the unhandled list.
func (b *Binner) keepInert(res *Result, read *reads.Read) error {
	var target, t uint32
	var err error
	var best *reads.Alignment
	targets := make(map[uint32]struct{}, len(read.Alignments))
	for _, a := range read.Alignments {
		if t, err = b.targets.Resolve(a.TaxID); err != nil {
			return err
		}
		if t == 0 {
			continue
		}
		targets[t] = struct{}{}
		target = t
		if best == nil || a.Score > best.Score {
			best = a
		}
	}

	br := BinnedRead{ReadID: read.ID, Rule: Inert}
	if best != nil {
		br.TaxID, br.Score = best.TaxID, best.Score
	}
	if len(targets) != 1 {
		log.Debugf("unhandled read %s: %s", read.ID, read.Status)
		res.Unhandled = append(res.Unhandled, br)
		return nil
	}
	br.Target = target
	if read.Status.IsNotCoding() {
		res.Organisms[target].AddAmbiguousOrganism(br)
	} else {
		res.Organisms[target].AddAmbiguousCoding(br)
	}
	return nil
}
