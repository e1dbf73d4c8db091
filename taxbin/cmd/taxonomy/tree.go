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
	"fmt"

	"github.com/pkg/errors"
	"github.com/shenwei356/go-logging"
	"github.com/twotwotwo/sorts"
)

var log = logging.MustGetLogger("taxbin")

// Unassigned is the category of taxa outside of all seed subtrees.
const Unassigned uint32 = 0

// NotFound is returned by ParentWithRank when no ancestor has the rank.
const NotFound uint32 = 0

// ErrEmptyTaxIDs means an LCA query with no taxids.
var ErrEmptyTaxIDs = errors.New("taxonomy: empty taxid list, cannot find LCA")

// ErrNoRoot means no self-parented row was found in the edge table.
var ErrNoRoot = errors.New("taxonomy: root not found")

// TaxIDNotFoundError means a taxid absent from the parent map,
// which indicates an inconsistent taxonomy dump.
type TaxIDNotFoundError struct {
	TaxID uint32
}

func (e *TaxIDNotFoundError) Error() string {
	return fmt.Sprintf("taxonomy: taxid not found: %d", e.TaxID)
}

// Node holds the data of a taxon.
type Node struct {
	Name string
	Rank string
}

// Config holds the seed lists for host/microbe categories.
type Config struct {
	HostSeeds    []uint32 `yaml:"host_seeds"`
	MicrobeSeeds []uint32 `yaml:"microbe_seeds"`
}

// Tree is an immutable taxonomy tree.
type Tree struct {
	root     uint32
	parents  map[uint32]uint32 // child -> parent
	children map[uint32][]uint32
	nodes    map[uint32]Node

	category     map[uint32]uint32 // taxid -> seed
	hostSeeds    []uint32
	microbeSeeds []uint32
}

// New builds a tree from a child->parent map. The root is parented by
// itself. nodes could be nil or partial.
func New(parents map[uint32]uint32, nodes map[uint32]Node, cfg Config) (*Tree, error) {
	var root uint32
	var found bool
	for child, parent := range parents {
		if child != parent {
			continue
		}
		if found {
			return nil, fmt.Errorf("taxonomy: multiple roots: %d, %d", root, child)
		}
		root, found = child, true
	}
	if !found {
		return nil, ErrNoRoot
	}

	if nodes == nil {
		nodes = make(map[uint32]Node)
	}
	for taxid, node := range nodes {
		node.Rank = NormalizeRank(node.Rank)
		nodes[taxid] = node
	}

	t := &Tree{
		root:    root,
		parents: parents,
		nodes:   nodes,
	}
	t.children = make(map[uint32][]uint32, len(parents)>>1)
	for child, parent := range parents {
		if child == root {
			continue
		}
		t.children[parent] = append(t.children[parent], child)
	}
	for _, c := range t.children {
		sorts.Quicksort(uint32Slice(c))
	}

	t.setCategories(cfg)
	return t, nil
}

// Root returns the root taxid.
func (t *Tree) Root() uint32 { return t.root }

// Len returns the number of taxa.
func (t *Tree) Len() int { return len(t.parents) }

// Has tells whether the taxid exists.
func (t *Tree) Has(taxid uint32) bool {
	_, ok := t.parents[taxid]
	return ok
}

// Parent returns the parent of a taxid, the root is its own parent.
func (t *Tree) Parent(taxid uint32) (uint32, bool) {
	p, ok := t.parents[taxid]
	return p, ok
}

// Children returns direct children, sorted. Do not modify it.
func (t *Tree) Children(taxid uint32) []uint32 {
	return t.children[taxid]
}

// Name returns the scientific name, empty if unknown.
func (t *Tree) Name(taxid uint32) string {
	return t.nodes[taxid].Name
}

// Rank returns the rank, RankNone for unranked or unknown taxa.
func (t *Tree) Rank(taxid uint32) string {
	return t.nodes[taxid].Rank
}

// RankLevel returns the rank level of a taxid.
func (t *Tree) RankLevel(taxid uint32) int {
	return RankLevel(t.nodes[taxid].Rank)
}

// IsChild tells whether a is a strict descendant of b.
func (t *Tree) IsChild(a, b uint32) (bool, error) {
	if _, ok := t.parents[a]; !ok {
		return false, &TaxIDNotFoundError{a}
	}
	if a == b {
		return false, nil
	}
	if b == t.root {
		return true, nil
	}

	p := a
	var q uint32
	var ok bool
	for i := 0; i <= len(t.parents); i++ {
		if q, ok = t.parents[p]; !ok {
			return false, &TaxIDNotFoundError{p}
		}
		p = q
		if p == t.root {
			return false, nil
		}
		if p == b {
			return true, nil
		}
	}
	return false, fmt.Errorf("taxonomy: cycle detected from taxid %d", a)
}

// IsChildOrSelf tells whether a is b or a descendant of b.
func (t *Tree) IsChildOrSelf(a, b uint32) (bool, error) {
	if a == b {
		if _, ok := t.parents[a]; !ok {
			return false, &TaxIDNotFoundError{a}
		}
		return true, nil
	}
	return t.IsChild(a, b)
}

// FindLCA returns the lowest common ancestor of taxids.
// All walks go up one step per round, and a node is the answer once
// it has been visited by every input occurrence, duplicates included.
func (t *Tree) FindLCA(taxids []uint32) (uint32, error) {
	if len(taxids) == 0 {
		return 0, ErrEmptyTaxIDs
	}
	for _, taxid := range taxids {
		if _, ok := t.parents[taxid]; !ok {
			return 0, &TaxIDNotFoundError{taxid}
		}
	}

	n := len(taxids)
	visited := make(map[uint32]int, n<<2)
	current := make([]uint32, n)
	copy(current, taxids)
	next := make([]uint32, 0, n)
	var parent uint32
	var ok bool
	for len(current) > 0 {
		next = next[:0]
		for _, taxid := range current {
			visited[taxid]++
			if visited[taxid] == n {
				return taxid, nil
			}
			if taxid == t.root {
				continue
			}
			if parent, ok = t.parents[taxid]; !ok {
				return 0, &TaxIDNotFoundError{taxid}
			}
			next = append(next, parent)
		}
		current, next = next, current
	}
	// unreachable for a tree with a single root
	return 0, fmt.Errorf("taxonomy: no common ancestor for %v", taxids)
}

// Lineage returns taxids from just below the root down to the taxid.
func (t *Tree) Lineage(taxid uint32) ([]uint32, error) {
	lineage := make([]uint32, 0, 16)
	var parent uint32
	var ok bool
	for taxid != t.root {
		lineage = append(lineage, taxid)
		if parent, ok = t.parents[taxid]; !ok {
			return nil, &TaxIDNotFoundError{taxid}
		}
		taxid = parent
		if len(lineage) > len(t.parents) {
			return nil, fmt.Errorf("taxonomy: cycle detected from taxid %d", lineage[0])
		}
	}
	for i, j := 0, len(lineage)-1; i < j; i, j = i+1, j-1 {
		lineage[i], lineage[j] = lineage[j], lineage[i]
	}
	return lineage, nil
}

// LineageNames returns names of the lineage.
func (t *Tree) LineageNames(taxid uint32) ([]string, error) {
	lineage, err := t.Lineage(taxid)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(lineage))
	for i, id := range lineage {
		names[i] = t.nodes[id].Name
	}
	return names, nil
}

// ParentWithRank returns the first taxon of the given rank from the taxid
// upward, the taxid itself included. NotFound is returned if the root is
// reached first.
func (t *Tree) ParentWithRank(taxid uint32, rank string) (uint32, error) {
	rank = NormalizeRank(rank)
	var parent uint32
	var ok bool
	for i := 0; i <= len(t.parents); i++ {
		if taxid == t.root {
			return NotFound, nil
		}
		if rank != RankNone && t.nodes[taxid].Rank == rank {
			return taxid, nil
		}
		if parent, ok = t.parents[taxid]; !ok {
			return NotFound, &TaxIDNotFoundError{taxid}
		}
		taxid = parent
	}
	return NotFound, fmt.Errorf("taxonomy: cycle detected")
}

type uint32Slice []uint32

func (s uint32Slice) Len() int           { return len(s) }
func (s uint32Slice) Less(i, j int) bool { return s[i] < s[j] }
func (s uint32Slice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
