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

// Package host marks or removes reads and alignments likely coming from
// a host organism.
package host

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/taxbin/taxbin/cmd/reads"
)

// ErrUnknownRule means an unsupported read filtering rule.
var ErrUnknownRule = errors.New("host: unknown read filtering rule")

// Categorizer returns the category (seed taxid) of a taxid. The
// boolean is false for unknown taxids.
type Categorizer interface {
	Category(taxid uint32) (uint32, bool)
}

// Unassigned is the category of taxa in no seed subtree.
const Unassigned uint32 = 0

// Filter decides whether alignments are host-like.
type Filter struct {
	cat            Categorizer
	potentialHosts map[uint32]struct{}
}

// NewFilter returns a filter. With filterUnassigned, alignments to taxa
// outside all seed subtrees are treated as host-like too.
func NewFilter(cat Categorizer, potentialHosts []uint32, filterUnassigned bool) *Filter {
	m := make(map[uint32]struct{}, len(potentialHosts)+1)
	for _, taxid := range potentialHosts {
		m[taxid] = struct{}{}
	}
	if filterUnassigned {
		m[Unassigned] = struct{}{}
	}
	return &Filter{cat: cat, potentialHosts: m}
}

// IsHostAlignment tells whether an alignment is a host candidate.
// Unresolved alignments always are.
func (f *Filter) IsHostAlignment(a *reads.Alignment) bool {
	if !a.Resolved() {
		return true
	}
	c, ok := f.cat.Category(a.TaxID)
	if !ok {
		return true
	}
	_, ok = f.potentialHosts[c]
	return ok
}

// FilterAlignments removes or marks host candidate alignments
// of every read. Kept alignments are marked as not host.
func (f *Filter) FilterAlignments(rs []*reads.Read, remove bool) (n int) {
	var hosts []int
	for _, read := range rs {
		hosts = hosts[:0]
		for i, a := range read.Alignments {
			if f.IsHostAlignment(a) {
				hosts = append(hosts, i)
			} else {
				a.PotentialHost = reads.NotHost
			}
		}
		n += len(hosts)
		if remove {
			for j := len(hosts) - 1; j >= 0; j-- {
				i := hosts[j]
				read.Alignments = append(read.Alignments[:i], read.Alignments[i+1:]...)
			}
		} else {
			for _, i := range hosts {
				read.Alignments[i].PotentialHost = reads.Host
			}
		}
	}
	return n
}

// Rule is a decision rule for whole reads.
type Rule int

const (
	BestScore Rule = iota
	Percentage
	AllAlignments
)

var ruleNames = []string{"best-score", "percentage", "all"}

func (r Rule) String() string {
	if r >= 0 && int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

// ParseRule parses a rule name: best-score, percentage or all.
func ParseRule(s string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "best-score", "best_score", "bestscore", "best":
		return BestScore, nil
	case "percentage", "perc":
		return Percentage, nil
	case "all", "all-alignments", "all_alignments":
		return AllAlignments, nil
	}
	return 0, errors.Wrapf(ErrUnknownRule, "%q", s)
}

// DefaultPercentage is the default threshold of the percentage rule.
const DefaultPercentage = 0.5

// ReadFilter classifies whole reads.
type ReadFilter struct {
	*Filter
	rule       Rule
	percentage float64
}

// NewReadFilter returns a read filter. The percentage is used by the
// percentage rule only and must be in (0, 1].
func NewReadFilter(f *Filter, rule Rule, percentage float64) (*ReadFilter, error) {
	switch rule {
	case BestScore, AllAlignments:
	case Percentage:
		if percentage <= 0 || percentage > 1 {
			return nil, fmt.Errorf("host: percentage should be in (0, 1]: %v", percentage)
		}
	default:
		return nil, errors.Wrapf(ErrUnknownRule, "%d", int(rule))
	}
	return &ReadFilter{Filter: f, rule: rule, percentage: percentage}, nil
}

// Rule returns the decision rule.
func (f *ReadFilter) Rule() Rule { return f.rule }

// IsHostRead applies the rule. Reads without alignments are not host.
func (f *ReadFilter) IsHostRead(read *reads.Read) bool {
	if len(read.Alignments) == 0 {
		return false
	}
	switch f.rule {
	case BestScore:
		best := read.Alignments[0]
		for _, a := range read.Alignments[1:] {
			if a.Score > best.Score {
				best = a
			}
		}
		return f.IsHostAlignment(best)
	case Percentage:
		return f.hostFraction(read) >= f.percentage
	case AllAlignments:
		return f.hostFraction(read) >= 1
	}
	return false
}

func (f *ReadFilter) hostFraction(read *reads.Read) float64 {
	var n int
	for _, a := range read.Alignments {
		if f.IsHostAlignment(a) {
			n++
		}
	}
	return float64(n) / float64(len(read.Alignments))
}

// FilterReads removes or marks host reads. It returns the
// kept reads and the number of host reads.
func (f *ReadFilter) FilterReads(rs []*reads.Read, remove bool) ([]*reads.Read, int) {
	kept := rs
	if remove {
		kept = make([]*reads.Read, 0, len(rs))
	}
	var n int
	for _, read := range rs {
		if f.IsHostRead(read) {
			n++
			if !remove {
				read.PotentialHost = reads.Host
			}
			continue
		}
		read.PotentialHost = reads.NotHost
		if remove {
			kept = append(kept, read)
		}
	}
	return kept, n
}
