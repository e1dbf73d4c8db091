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

// Package status describes the classification of a read by its
// alignments and coding-region hits.
package status

import "fmt"

// AlignmentCount classifies the number of alignments of a read.
type AlignmentCount uint8

const (
	NoAlignments AlignmentCount = iota
	OneAlignment
	MultipleAlignments
)

// OrganismCount classifies the number of distinct organisms.
type OrganismCount uint8

const (
	NoOrganisms OrganismCount = iota
	OneOrganism
	MultipleOrganisms
)

// OrganismType tells whether the organisms are targets.
type OrganismType uint8

const (
	NoOrganismType OrganismType = iota
	TargetOrganisms
	NonTargetOrganisms
	MixedOrganisms
)

// CodingCount classifies the number of coding regions hit.
type CodingCount uint8

const (
	NoCoding CodingCount = iota
	OneCoding
	MultipleCoding
)

// CodingType tells whether the organisms of the coding regions hit are
// targets.
type CodingType uint8

const (
	NoCodingType CodingType = iota
	OneTargetCoding
	MultipleTargetCoding
	NonTargetCoding
	MixedCoding
)

// Status is the classification of a read. The zero value is the status
// of a read without alignments.
type Status struct {
	Alignments   AlignmentCount
	Organisms    OrganismCount
	OrganismType OrganismType
	Coding       CodingCount
	CodingType   CodingType
}

func (s Status) IsZeroAlignment() bool     { return s.Alignments == NoAlignments }
func (s Status) IsSingleAlignment() bool   { return s.Alignments == OneAlignment }
func (s Status) IsMultipleAlignment() bool { return s.Alignments == MultipleAlignments }

func (s Status) IsSingleOrganism() bool    { return s.Organisms == OneOrganism }
func (s Status) IsMultipleOrganisms() bool { return s.Organisms == MultipleOrganisms }

func (s Status) IsMappedToTarget() bool    { return s.OrganismType == TargetOrganisms }
func (s Status) IsMappedToNonTarget() bool { return s.OrganismType == NonTargetOrganisms }
func (s Status) IsMappedToMixed() bool     { return s.OrganismType == MixedOrganisms }

func (s Status) IsNotCoding() bool      { return s.Coding == NoCoding }
func (s Status) IsSingleCoding() bool   { return s.Coding == OneCoding }
func (s Status) IsMultipleCoding() bool { return s.Coding == MultipleCoding }

func (s Status) IsCodingSingleTarget() bool    { return s.CodingType == OneTargetCoding }
func (s Status) IsCodingMultipleTargets() bool { return s.CodingType == MultipleTargetCoding }
func (s Status) IsCodingNonTarget() bool       { return s.CodingType == NonTargetCoding }
func (s Status) IsCodingMixed() bool           { return s.CodingType == MixedCoding }

var (
	alignmentCountNames = []string{"0", "1", "n"}
	organismCountNames  = []string{"0", "1", "n"}
	organismTypeNames   = []string{"none", "target", "non-target", "mixed"}
	codingCountNames    = []string{"0", "1", "n"}
	codingTypeNames     = []string{"none", "one-target", "multi-target", "non-target", "mixed"}
)

func name(names []string, i uint8) string {
	if int(i) < len(names) {
		return names[i]
	}
	return fmt.Sprintf("?%d", i)
}

func (s Status) String() string {
	return fmt.Sprintf("aln:%s org:%s/%s cds:%s/%s",
		name(alignmentCountNames, uint8(s.Alignments)),
		name(organismCountNames, uint8(s.Organisms)),
		name(organismTypeNames, uint8(s.OrganismType)),
		name(codingCountNames, uint8(s.Coding)),
		name(codingTypeNames, uint8(s.CodingType)))
}

// All enumerates every combination of field values.
func All() []Status {
	all := make([]Status, 0, 3*3*4*3*5)
	for a := NoAlignments; a <= MultipleAlignments; a++ {
		for o := NoOrganisms; o <= MultipleOrganisms; o++ {
			for ot := NoOrganismType; ot <= MixedOrganisms; ot++ {
				for c := NoCoding; c <= MultipleCoding; c++ {
					for ct := NoCodingType; ct <= MixedCoding; ct++ {
						all = append(all, Status{a, o, ot, c, ct})
					}
				}
			}
		}
	}
	return all
}
