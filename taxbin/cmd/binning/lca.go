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
	"github.com/shenwei356/taxbin/taxbin/cmd/reads"
)

// LCAFinder finds lowest common ancestors.
type LCAFinder interface {
	FindLCA(taxids []uint32) (uint32, error)
}

// Assignment is a read assigned to a taxon.
type Assignment struct {
	ReadID string
	TaxID  uint32
}

// BinLCA assigns every read to the LCA of the taxids of its alignments.
// Reads without any resolved alignment are skipped and counted.
func BinLCA(tax LCAFinder, rs []*reads.Read) ([]Assignment, int, error) {
	assignments := make([]Assignment, 0, len(rs))
	var skipped int
	var taxids []uint32
	for _, read := range rs {
		taxids = read.TaxIDs()
		if len(taxids) == 0 {
			skipped++
			continue
		}
		lca, err := tax.FindLCA(taxids)
		if err != nil {
			return nil, skipped, errors.Wrapf(err, "read %s", read.ID)
		}
		assignments = append(assignments, Assignment{ReadID: read.ID, TaxID: lca})
	}
	return assignments, skipped, nil
}
