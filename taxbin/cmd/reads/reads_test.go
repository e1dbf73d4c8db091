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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	read, err := ParseLine("@read1,3;NC_1,gb,11,55.5,100,200,+;NC_2,emb,12,40,300,250,-;NC_3,gb,x,1,1,2,+;\n")
	if err != nil {
		t.Fatal(err)
	}
	if read.ID != "read1" {
		t.Errorf("read id: %s", read.ID)
	}
	if len(read.Alignments) != 2 {
		t.Fatalf("2 alignments expected, got %d", len(read.Alignments))
	}

	a := read.Alignments[0]
	if a.Accession != "NC_1" || a.Source != "gb" || a.GI != 11 || a.Score != 55.5 ||
		a.Start != 100 || a.End != 200 || a.Complement || !a.Active || a.ReadID != "read1" {
		t.Errorf("unexpected alignment: %+v", a)
	}
	if a.Resolved() || a.PotentialHost != HostUnknown {
		t.Errorf("new alignments should be unresolved")
	}

	b := read.Alignments[1]
	if b.Start != 250 || b.End != 300 || !b.Complement {
		t.Errorf("unexpected alignment: %+v", b)
	}
	if loc := b.Location(); loc.String() != "complement(250..300)" {
		t.Errorf("unexpected location: %s", loc)
	}

	read, err = ParseLine("read2,0")
	if err != nil {
		t.Fatal(err)
	}
	if len(read.Alignments) != 0 {
		t.Errorf("no alignments expected")
	}

	for _, s := range []string{"", ";", ",1;NC_1,gb,11,1,1,2,+", "read3,x;NC_1,gb,11,1,1,2,+"} {
		if _, err = ParseLine(s); err == nil {
			t.Errorf("%q: error expected", s)
		}
	}
}

func TestParseLineLayout(t *testing.T) {
	// declared count differs from the alignments given
	read, err := ParseLine("r1,5;NC_1,gb,1,10,1,50,+")
	if err != nil {
		t.Fatal(err)
	}
	if len(read.Alignments) != 1 {
		t.Errorf("1 alignment expected, got %d", len(read.Alignments))
	}

	// length and count as separate fields are not part of the layout
	read, err = ParseLine("r2;100;1;NC_ECOLI,gb,5,60,100,150,+")
	if err != nil {
		t.Fatal(err)
	}
	if read.ID != "r2" || len(read.Alignments) != 1 || read.Alignments[0].Accession != "NC_ECOLI" {
		t.Errorf("unexpected read: %+v", read)
	}

	if _, err = ParseLine("r3,x;NC_1,gb,1,10,1,50,+"); err == nil {
		t.Errorf("invalid alignment count should be an error")
	}
}

func TestParseAlignmentErrors(t *testing.T) {
	for _, s := range []string{
		"NC_1,gb,11,1,1,2",
		"NC_1,gb,11,1,1,2,*",
		",gb,11,1,1,2,+",
		"NC_1,gb,11,high,1,2,+",
		"NC_1,gb,11,1,a,2,+",
		"NC_1,gb,11,1,1,b,+",
	} {
		if _, err := parseAlignment("r", s); err == nil {
			t.Errorf("%q: error expected", s)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "reads.txt")
	content := strings.Join([]string{
		"# comment",
		"r1,1;NC_1,gb,11,50,1,100,+;",
		"",
		"r2,2;NC_1,gb,11,50,1,100,+;NC_2,gb,12,30,5,80,-;",
		"@r3,1;NC_3,gb,13,10,7,9,+;",
	}, "\n") + "\n"
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	reads, err := LoadFile(file, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(reads) != 3 {
		t.Fatalf("3 reads expected, got %d", len(reads))
	}
	for i, id := range []string{"r1", "r2", "r3"} {
		if reads[i].ID != id {
			t.Errorf("read %d: %s, want %s", i, reads[i].ID, id)
		}
	}
	if gis := reads[1].GIs(); len(gis) != 2 || gis[0] != 11 || gis[1] != 12 {
		t.Errorf("unexpected GIs: %v", gis)
	}

	dup := filepath.Join(dir, "dup.txt")
	if err = os.WriteFile(dup, []byte("r1,0\nr1,0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err = LoadFile(dup, 1); err == nil {
		t.Errorf("error expected for duplicated read ids")
	}
}

func TestActiveAlignmentsAndTaxIDs(t *testing.T) {
	read := &Read{ID: "r", Alignments: []*Alignment{
		NewAlignment("r", "A", "gb", 1, 10, 1, 10, false),
		NewAlignment("r", "B", "gb", 2, 20, 1, 10, false),
		NewAlignment("r", "C", "gb", 3, 30, 1, 10, false),
	}}
	read.Alignments[0].TaxID = 100
	read.Alignments[2].TaxID = 100
	read.Alignments[1].Active = false

	if n := len(read.ActiveAlignments()); n != 2 {
		t.Errorf("2 active alignments expected, got %d", n)
	}
	if taxids := read.TaxIDs(); len(taxids) != 2 || taxids[0] != 100 || taxids[1] != 100 {
		t.Errorf("unexpected taxids: %v", taxids)
	}
	if HostStatusOf(true) != Host || HostStatusOf(false) != NotHost {
		t.Errorf("unexpected host status")
	}
}
