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
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/util/cliutil"
	"github.com/shenwei356/xopen"
)

// ErrRecordNotFound means the accession is absent from the store.
var ErrRecordNotFound = errors.New("records: record not found")

// Store provides reference records and GI->taxid mappings.
type Store interface {
	// Record returns ErrRecordNotFound for unknown accessions.
	Record(ctx context.Context, accession string) (*Record, error)

	// TaxIDs maps GIs to taxids. Unknown GIs are omitted.
	TaxIDs(ctx context.Context, gis []int) (map[int]uint32, error)

	Close() error
}

// FileStore keeps all records and GI->taxid pairs in memory.
type FileStore struct {
	records  map[string]*Record
	gi2taxid map[int]uint32
}

// NewFileStore loads a CDS table and a GI->taxid table. Either file could
// be empty.
func NewFileStore(cdsFile, gi2taxidFile string) (*FileStore, error) {
	s := &FileStore{
		records:  make(map[string]*Record),
		gi2taxid: make(map[int]uint32),
	}
	var err error
	if cdsFile != "" {
		if s.records, err = ReadCdsFile(cdsFile); err != nil {
			return nil, err
		}
	}
	if gi2taxidFile != "" {
		if s.gi2taxid, err = ReadGi2TaxidFile(gi2taxidFile); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Record implements Store.
func (s *FileStore) Record(_ context.Context, accession string) (*Record, error) {
	if rec, ok := s.records[accession]; ok {
		return rec, nil
	}
	return nil, ErrRecordNotFound
}

// TaxIDs implements Store.
func (s *FileStore) TaxIDs(_ context.Context, gis []int) (map[int]uint32, error) {
	m := make(map[int]uint32, len(gis))
	for _, gi := range gis {
		if taxid, ok := s.gi2taxid[gi]; ok {
			m[gi] = taxid
		}
	}
	return m, nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

// NumRecords returns the number of records.
func (s *FileStore) NumRecords() int { return len(s.records) }

// ReadCdsFile reads a tab-delimited CDS table with columns:
// record_id, location, taxon, gene, product, protein_id, locus_tag.
// The last four columns are optional.
func ReadCdsFile(file string) (map[string]*Record, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	defer fh.Close()

	raws := make(map[string][]RawCds, 1024)
	ids := make([]string, 0, 1024)
	var line string
	var items []string
	var taxid uint64
	var n int
	for {
		line, err = fh.ReadString('\n')
		if line != "" {
			n++
			line = strings.TrimRight(line, "\r\n")
			if line != "" && line[0] != '#' {
				items = strings.Split(line, "\t")
				if len(items) < 3 {
					return nil, fmt.Errorf("%s: line %d: at least 3 columns needed", file, n)
				}
				if taxid, err = strconv.ParseUint(items[2], 10, 32); err != nil {
					return nil, fmt.Errorf("%s: line %d: invalid taxid: %s", file, n, items[2])
				}
				r := RawCds{Location: items[1], Taxon: uint32(taxid)}
				for i, v := range items[3:] {
					switch i {
					case 0:
						r.Gene = v
					case 1:
						r.Product = v
					case 2:
						r.ProteinID = v
					case 3:
						r.LocusTag = v
					}
				}
				if _, ok := raws[items[0]]; !ok {
					ids = append(ids, items[0])
				}
				raws[items[0]] = append(raws[items[0]], r)
			}
		}
		if err != nil {
			break
		}
	}
	if err != io.EOF {
		return nil, errors.Wrap(err, file)
	}

	records := make(map[string]*Record, len(ids))
	for _, id := range ids {
		records[id] = NewRecord(id, raws[id])
	}
	return records, nil
}

// ReadGi2TaxidFile reads a two-column GI->taxid table.
// Non-positive taxids mean no taxon and are skipped.
func ReadGi2TaxidFile(file string) (map[int]uint32, error) {
	kvs, err := cliutil.ReadKVs(file, false)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	m := make(map[int]uint32, len(kvs))
	var gi int
	var taxid int64
	for k, v := range kvs {
		if gi, err = strconv.Atoi(k); err != nil {
			return nil, fmt.Errorf("%s: invalid GI: %s", file, k)
		}
		if taxid, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("%s: invalid taxid: %s", file, v)
		}
		if taxid <= 0 {
			continue
		}
		m[gi] = uint32(taxid)
	}
	return m, nil
}
