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

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testEdges = `1 1
2 1
10 2
100 10
101 10
1000 100
3 1
30 3
300 30
50 1
500 50
`

const testData = `1|root|no rank
2|Bacteria|superkingdom
10|Escherichia|genus
100|Escherichia coli|species
101|Escherichia albertii|species
1000|Escherichia coli K-12|no rank
3|Eukaryota|superkingdom
30|Metazoa|kingdom
300|Homo sapiens|species
50|unclassified entries|no rank
500|unclassified sequences|no rank
`

var testTaxids = []uint32{1, 2, 10, 100, 101, 1000, 3, 30, 300, 50, 500}

func newTestTree(t *testing.T) *Tree {
	tree, err := NewTree(strings.NewReader(testEdges), strings.NewReader(testData),
		Config{HostSeeds: []uint32{30}, MicrobeSeeds: []uint32{2, 404}})
	if err != nil {
		t.Fatalf("building tree: %s", err)
	}
	return tree
}

func TestNewTree(t *testing.T) {
	tree := newTestTree(t)
	if tree.Root() != 1 {
		t.Errorf("root: %d", tree.Root())
	}
	if tree.Len() != len(testTaxids) {
		t.Errorf("size: %d", tree.Len())
	}
	children := tree.Children(10)
	if len(children) != 2 || children[0] != 100 || children[1] != 101 {
		t.Errorf("children of 10: %v", children)
	}
	if tree.Name(100) != "Escherichia coli" || tree.Rank(100) != "species" {
		t.Errorf("node data of 100: %s, %s", tree.Name(100), tree.Rank(100))
	}
	if tree.Rank(1000) != RankNone || tree.RankLevel(1000) != 0 {
		t.Errorf("unranked node expected for 1000")
	}
	if tree.RankLevel(100) <= tree.RankLevel(10) {
		t.Errorf("species should be more specific than genus")
	}

	_, err := NewTree(strings.NewReader("2 1\n3 2\n"), nil, Config{})
	if err != ErrNoRoot {
		t.Errorf("ErrNoRoot expected, got %v", err)
	}
	_, err = NewTree(strings.NewReader("1 1\n2 2\n"), nil, Config{})
	if err == nil {
		t.Errorf("error expected for multiple roots")
	}
	_, err = NewTree(strings.NewReader("1 1\n2\n"), nil, Config{})
	if err == nil {
		t.Errorf("error expected for malformed edge")
	}
}

func TestIsChild(t *testing.T) {
	tree := newTestTree(t)

	for _, a := range testTaxids {
		ok, err := tree.IsChild(a, a)
		if err != nil {
			t.Errorf("IsChild(%d, %d): %s", a, a, err)
		}
		if ok {
			t.Errorf("IsChild(%d, %d) should be false", a, a)
		}

		ok, err = tree.IsChild(a, tree.Root())
		if err != nil {
			t.Errorf("IsChild(%d, root): %s", a, err)
		}
		if ok != (a != tree.Root()) {
			t.Errorf("IsChild(%d, root) = %v", a, ok)
		}
	}

	cases := []struct {
		a, b uint32
		want bool
	}{
		{1000, 10, true},
		{1000, 2, true},
		{100, 1000, false},
		{101, 100, false},
		{300, 2, false},
		{500, 50, true},
	}
	for _, c := range cases {
		ok, err := tree.IsChild(c.a, c.b)
		if err != nil {
			t.Errorf("IsChild(%d, %d): %s", c.a, c.b, err)
		}
		if ok != c.want {
			t.Errorf("IsChild(%d, %d) = %v, want %v", c.a, c.b, ok, c.want)
		}
	}

	if ok, _ := tree.IsChildOrSelf(100, 100); !ok {
		t.Errorf("IsChildOrSelf(100, 100) should be true")
	}

	_, err := tree.IsChild(9999, 2)
	var e *TaxIDNotFoundError
	if !errors.As(err, &e) || e.TaxID != 9999 {
		t.Errorf("TaxIDNotFoundError expected, got %v", err)
	}
}

func TestFindLCA(t *testing.T) {
	tree := newTestTree(t)

	cases := []struct {
		taxids []uint32
		want   uint32
	}{
		{[]uint32{100}, 100},
		{[]uint32{1000}, 1000},
		{[]uint32{100, 101}, 10},
		{[]uint32{101, 100}, 10},
		{[]uint32{1000, 101}, 10},
		{[]uint32{1000, 100}, 100},
		{[]uint32{100, 1000}, 100},
		{[]uint32{1000, 1000, 101}, 10},
		{[]uint32{101, 1000, 1000, 1000}, 10},
		{[]uint32{100, 100, 100}, 100},
		{[]uint32{100, 300}, 1},
		{[]uint32{500, 300, 1000}, 1},
		{[]uint32{30, 300, 300}, 30},
		{[]uint32{1, 100}, 1},
	}
	for _, c := range cases {
		lca, err := tree.FindLCA(c.taxids)
		if err != nil {
			t.Errorf("FindLCA(%v): %s", c.taxids, err)
			continue
		}
		if lca != c.want {
			t.Errorf("FindLCA(%v) = %d, want %d", c.taxids, lca, c.want)
		}
	}

	if _, err := tree.FindLCA(nil); err != ErrEmptyTaxIDs {
		t.Errorf("ErrEmptyTaxIDs expected, got %v", err)
	}
	_, err := tree.FindLCA([]uint32{100, 7})
	var e *TaxIDNotFoundError
	if !errors.As(err, &e) {
		t.Errorf("TaxIDNotFoundError expected, got %v", err)
	}
}

// the LCA is an ancestor-or-self of every input, and none of its children is
func TestFindLCAMinimality(t *testing.T) {
	tree := newTestTree(t)

	isCommon := func(anc uint32, taxids []uint32) bool {
		for _, taxid := range taxids {
			ok, err := tree.IsChildOrSelf(taxid, anc)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				return false
			}
		}
		return true
	}

	for _, a := range testTaxids {
		for _, b := range testTaxids {
			for _, c := range testTaxids {
				taxids := []uint32{a, b, c}
				lca, err := tree.FindLCA(taxids)
				if err != nil {
					t.Fatal(err)
				}
				if !isCommon(lca, taxids) {
					t.Errorf("FindLCA(%v) = %d is not a common ancestor", taxids, lca)
				}
				for _, child := range tree.Children(lca) {
					if isCommon(child, taxids) {
						t.Errorf("FindLCA(%v) = %d is not the lowest, %d is lower", taxids, lca, child)
					}
				}
			}
		}
	}
}

func TestLineage(t *testing.T) {
	tree := newTestTree(t)

	lineage, err := tree.Lineage(1000)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{2, 10, 100, 1000}
	if len(lineage) != len(want) {
		t.Fatalf("lineage of 1000: %v", lineage)
	}
	for i := range want {
		if lineage[i] != want[i] {
			t.Errorf("lineage of 1000: %v, want %v", lineage, want)
			break
		}
	}

	lineage, err = tree.Lineage(1)
	if err != nil || len(lineage) != 0 {
		t.Errorf("empty lineage expected for root: %v, %v", lineage, err)
	}

	names, err := tree.LineageNames(300)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(names, ";") != "Eukaryota;Metazoa;Homo sapiens" {
		t.Errorf("lineage names of 300: %v", names)
	}

	if _, err = tree.Lineage(4242); err == nil {
		t.Errorf("error expected for absent taxid")
	}
}

func TestParentWithRank(t *testing.T) {
	tree := newTestTree(t)

	cases := []struct {
		taxid uint32
		rank  string
		want  uint32
	}{
		{1000, "species", 100},
		{1000, "genus", 10},
		{1000, "superkingdom", 2},
		{100, "species", 100},
		{300, "kingdom", 30},
		{500, "species", NotFound}, // never reaches a species before root
		{1000, "kingdom", NotFound},
		{1000, "no rank", NotFound},
		{1, "species", NotFound},
	}
	for _, c := range cases {
		p, err := tree.ParentWithRank(c.taxid, c.rank)
		if err != nil {
			t.Errorf("ParentWithRank(%d, %s): %s", c.taxid, c.rank, err)
			continue
		}
		if p != c.want {
			t.Errorf("ParentWithRank(%d, %s) = %d, want %d", c.taxid, c.rank, p, c.want)
		}
	}

	if _, err := tree.ParentWithRank(4242, "species"); err == nil {
		t.Errorf("error expected for absent taxid")
	}
}

func TestCategory(t *testing.T) {
	tree := newTestTree(t)

	cases := []struct {
		taxid uint32
		want  uint32
	}{
		{2, 2},
		{1000, 2},
		{30, 30},
		{300, 30},
		{3, Unassigned},
		{500, Unassigned},
		{1, Unassigned},
	}
	for _, c := range cases {
		cat, ok := tree.Category(c.taxid)
		if !ok {
			t.Errorf("Category(%d): taxid should exist", c.taxid)
		}
		if cat != c.want {
			t.Errorf("Category(%d) = %d, want %d", c.taxid, cat, c.want)
		}
	}
	if _, ok := tree.Category(4242); ok {
		t.Errorf("Category(4242) should report an absent taxid")
	}

	// host seeds win over microbe seeds on overlap
	tree2, err := NewTree(strings.NewReader(testEdges), nil,
		Config{HostSeeds: []uint32{10}, MicrobeSeeds: []uint32{2}})
	if err != nil {
		t.Fatal(err)
	}
	if cat, _ := tree2.Category(1000); cat != 10 {
		t.Errorf("host label expected for 1000, got %d", cat)
	}
	if cat, _ := tree2.Category(2); cat != 2 {
		t.Errorf("microbe label expected for 2, got %d", cat)
	}
}

func TestRanks(t *testing.T) {
	if NormalizeRank(" Species ") != "species" {
		t.Errorf("rank not normalized")
	}
	for _, r := range []string{"", "no rank", "clade", "NO RANK"} {
		if NormalizeRank(r) != RankNone {
			t.Errorf("%q should be unranked", r)
		}
	}
	if !(RankLevel("superkingdom") < RankLevel("phylum") &&
		RankLevel("phylum") < RankLevel("class") &&
		RankLevel("class") < RankLevel("order") &&
		RankLevel("order") < RankLevel("family") &&
		RankLevel("family") < RankLevel("genus") &&
		RankLevel("genus") < RankLevel("species")) {
		t.Errorf("rank levels not ordered")
	}
	if RankLevel("no rank") != 0 || RankLevel("whatever") != 0 {
		t.Errorf("unknown ranks should have level 0")
	}
}

func TestNewTreeFromFilesAndFindFile(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	fileE := filepath.Join(sub, EdgeFileName)
	fileD := filepath.Join(sub, DataFileName)
	if err := os.WriteFile(fileE, []byte(testEdges), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fileD, []byte(testData), 0644); err != nil {
		t.Fatal(err)
	}

	found, err := FindFile(dir, EdgeFileName)
	if err != nil {
		t.Fatal(err)
	}
	if found != fileE {
		t.Errorf("FindFile: %s, want %s", found, fileE)
	}
	if _, err = FindFile(dir, "nothing"); err == nil {
		t.Errorf("error expected for a missing file")
	}

	tree, err := NewTreeFromFiles(fileE, fileD, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if tree.Name(300) != "Homo sapiens" {
		t.Errorf("name of 300: %s", tree.Name(300))
	}
	// bacteria (2) is a default microbe seed
	if cat, _ := tree.Category(1000); cat != 2 {
		t.Errorf("category of 1000: %d", cat)
	}
}
