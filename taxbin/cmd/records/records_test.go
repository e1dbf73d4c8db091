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
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRecord(t *testing.T) {
	rec := NewRecord("NC_1", []RawCds{
		{Location: "300..400", Taxon: 2, Gene: "c"},
		{Location: "1..100", Taxon: 2, Gene: "a"},
		{Location: "bad..location", Taxon: 2, Gene: "x"},
		{Location: "", Taxon: 2, Gene: "y"},
		{Location: "complement(join(150..160,170..200))", Taxon: 2, Gene: "b"},
	})
	if len(rec.Cds) != 3 {
		t.Fatalf("3 CDS expected, got %d", len(rec.Cds))
	}
	for i, gene := range []string{"a", "b", "c"} {
		if rec.Cds[i].Gene != gene {
			t.Errorf("CDS %d: gene %s, want %s", i, rec.Cds[i].Gene, gene)
		}
	}
	b := rec.Cds[1]
	if b.Start() != 150 || b.End() != 200 || b.Len() != 42 || !b.Loc.Complement {
		t.Errorf("unexpected CDS: %d..%d, %d", b.Start(), b.End(), b.Len())
	}
	if b.Key() != (CdsKey{"NC_1", "complement(join(150..160,170..200))"}) {
		t.Errorf("unexpected key: %s", b.Key())
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	file := filepath.Join(dir, name)
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	cdsFile := writeFile(t, dir, "cds.tsv", "# comment\n"+
		"NC_1\t500..900\t562\tlacZ\tbeta-galactosidase\tNP_1\tb0344\n"+
		"NC_1\t1..300\t562\tthrL\n"+
		"NC_2\t10..20\t9606\n")
	giFile := writeFile(t, dir, "gi.tsv", "11\t562\n12\t9606\n13\t-1\n")

	s, err := NewFileStore(cdsFile, giFile)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	rec, err := s.Record(ctx, "NC_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Cds) != 2 || rec.Cds[0].Gene != "thrL" || rec.Cds[1].ProteinID != "NP_1" {
		t.Errorf("unexpected record: %+v", rec.Cds)
	}
	if rec.Cds[1].LocusTag != "b0344" || rec.Cds[1].Product != "beta-galactosidase" {
		t.Errorf("optional columns not loaded: %+v", rec.Cds[1])
	}

	if _, err = s.Record(ctx, "NC_404"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("ErrRecordNotFound expected, got %v", err)
	}

	m, err := s.TaxIDs(ctx, []int{11, 12, 13, 14})
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 || m[11] != 562 || m[12] != 9606 {
		t.Errorf("unexpected taxids: %v", m)
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	err = s.AddCds(ctx, "NC_1", []RawCds{
		{Location: "500..900", Taxon: 562, Gene: "lacZ"},
		{Location: "1..300", Taxon: 562, Gene: "thrL"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err = s.AddTaxIDs(ctx, map[int]uint32{11: 562, 12: 9606}); err != nil {
		t.Fatal(err)
	}
	if err = s.AddTaxIDs(ctx, map[int]uint32{12: 9605}); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Record(ctx, "NC_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Cds) != 2 || rec.Cds[0].Gene != "thrL" || rec.Cds[0].Taxon != 562 {
		t.Errorf("unexpected record: %+v", rec.Cds)
	}
	if _, err = s.Record(ctx, "NC_2"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("ErrRecordNotFound expected, got %v", err)
	}

	m, err := s.TaxIDs(ctx, []int{11, 12, 99})
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 || m[11] != 562 || m[12] != 9605 {
		t.Errorf("unexpected taxids: %v", m)
	}
}

type countingStore struct {
	FileStore
	queries int
}

func (s *countingStore) TaxIDs(ctx context.Context, gis []int) (map[int]uint32, error) {
	s.queries++
	return s.FileStore.TaxIDs(ctx, gis)
}

func TestContainer(t *testing.T) {
	s := &FileStore{
		records: map[string]*Record{
			"NC_1": NewRecord("NC_1", []RawCds{{Location: "1..10", Taxon: 2}}),
		},
	}
	c := NewContainer(s)
	ctx := context.Background()

	if err := c.Populate(ctx, []string{"NC_1", "NC_2", "NC_3", "NC_2"}); err != nil {
		t.Fatal(err)
	}
	if rec := c.Existing("NC_1"); rec == nil || len(rec.Cds) != 1 {
		t.Errorf("NC_1 should be cached")
	}
	rec, err := c.Fetch(ctx, "NC_2")
	if err != nil || rec != nil {
		t.Errorf("missing record should be nil without error: %v, %v", rec, err)
	}

	stats := c.MissingStats()
	if stats.Missing != 2 || stats.Total != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.Percentage < 66.6 || stats.Percentage > 66.7 {
		t.Errorf("unexpected percentage: %f", stats.Percentage)
	}

	if NewContainer(s).MissingStats().Percentage != 0 {
		t.Errorf("zero percentage expected for an empty container")
	}
}

func TestResolver(t *testing.T) {
	s := &countingStore{FileStore: FileStore{gi2taxid: map[int]uint32{1: 100, 2: 200}}}
	r, err := NewResolver(s, 16)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	m, err := r.TaxIDs(ctx, []int{1, 2, 3, 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 || m[1] != 100 || m[2] != 200 {
		t.Errorf("unexpected taxids: %v", m)
	}
	if r.Len() != 3 {
		t.Errorf("3 cached GIs expected, got %d", r.Len())
	}

	taxid, ok, err := r.TaxID(ctx, 3)
	if err != nil || ok || taxid != 0 {
		t.Errorf("GI 3 should have no taxon")
	}
	if s.queries != 1 {
		t.Errorf("cached GIs should not be queried again, %d queries", s.queries)
	}

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("empty cache expected")
	}
	if _, _, err = r.TaxID(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if s.queries != 2 {
		t.Errorf("store should be queried after Clear, %d queries", s.queries)
	}
}
