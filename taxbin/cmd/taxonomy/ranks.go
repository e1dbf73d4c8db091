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

package taxonomy

import "strings"

// RankNone is the rank of unranked nodes, including "no rank" and "clade".
const RankNone = ""

// RankLevels orders the NCBI ranks, a higher level is more specific.
// Unranked nodes have level 0.
var RankLevels = map[string]int{
	"superkingdom":     1,
	"kingdom":          2,
	"subkingdom":       3,
	"superphylum":      4,
	"phylum":           5,
	"subphylum":        6,
	"superclass":       7,
	"class":            8,
	"subclass":         9,
	"infraclass":       10,
	"cohort":           11,
	"superorder":       12,
	"order":            13,
	"suborder":         14,
	"infraorder":       15,
	"parvorder":        16,
	"superfamily":      17,
	"family":           18,
	"subfamily":        19,
	"tribe":            20,
	"subtribe":         21,
	"genus":            22,
	"subgenus":         23,
	"species group":    24,
	"species subgroup": 25,
	"species":          26,
	"subspecies":       27,
	"varietas":         28,
	"forma":            29,
	"strain":           30,
}

// NormalizeRank lower-cases a rank and maps unranked values to RankNone.
func NormalizeRank(rank string) string {
	rank = strings.ToLower(strings.TrimSpace(rank))
	switch rank {
	case "", "no rank", "none", "clade", "unranked":
		return RankNone
	}
	return rank
}

// RankLevel returns the level of a rank, 0 for unranked or unknown ranks.
func RankLevel(rank string) int {
	return RankLevels[NormalizeRank(rank)]
}
