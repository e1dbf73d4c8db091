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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/iafan/cwalk"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/taxdump"
	"github.com/shenwei356/util/pathutil"
	"github.com/shenwei356/xopen"
)

// Default file names of the two taxonomy tables.
const (
	EdgeFileName = "ncbi_tax_tree"
	DataFileName = "taxid2namerank"
)

// NewTree reads an edge table ("child parent" per line) and a taxon
// data table ("taxid|name|rank" per line). data could be nil.
func NewTree(edges io.Reader, data io.Reader, cfg Config) (*Tree, error) {
	parents, err := ReadEdges(edges)
	if err != nil {
		return nil, err
	}
	var nodes map[uint32]Node
	if data != nil {
		nodes, err = ReadNodes(data)
		if err != nil {
			return nil, err
		}
	}
	return New(parents, nodes, cfg)
}

// NewTreeFromFiles is NewTree for (optionally gzipped) files.
func NewTreeFromFiles(edgeFile, dataFile string, cfg Config) (*Tree, error) {
	fhE, err := xopen.Ropen(edgeFile)
	if err != nil {
		return nil, errors.Wrap(err, edgeFile)
	}
	defer fhE.Close()

	parents, err := ReadEdges(fhE)
	if err != nil {
		return nil, errors.Wrap(err, edgeFile)
	}

	var nodes map[uint32]Node
	if dataFile != "" {
		fhD, err := xopen.Ropen(dataFile)
		if err != nil {
			return nil, errors.Wrap(err, dataFile)
		}
		defer fhD.Close()

		nodes, err = ReadNodes(fhD)
		if err != nil {
			return nil, errors.Wrap(err, dataFile)
		}
	}
	return New(parents, nodes, cfg)
}

// NewTreeFromTaxdump loads nodes.dmp and names.dmp of NCBI taxdump.
func NewTreeFromTaxdump(dir string, cfg Config) (*Tree, error) {
	fileNodes := filepath.Join(dir, "nodes.dmp")
	fileNames := filepath.Join(dir, "names.dmp")
	for _, file := range []string{fileNodes, fileNames} {
		existed, err := pathutil.Exists(file)
		if err != nil {
			return nil, errors.Wrapf(err, "checking %s", file)
		}
		if !existed {
			return nil, fmt.Errorf("taxdump file not found: %s", file)
		}
	}

	tax, err := taxdump.NewTaxonomyWithRankFromNCBI(fileNodes)
	if err != nil {
		return nil, errors.Wrapf(err, "loading taxonomy nodes from %s", fileNodes)
	}
	if err = tax.LoadNamesFromNCBI(fileNames); err != nil {
		return nil, errors.Wrapf(err, "loading taxonomy names from %s", fileNames)
	}

	parents := make(map[uint32]uint32, len(tax.Nodes))
	nodes := make(map[uint32]Node, len(tax.Nodes))
	for child, parent := range tax.Nodes {
		parents[child] = parent
		nodes[child] = Node{Name: tax.Names[child], Rank: tax.Rank(child)}
	}
	return New(parents, nodes, cfg)
}

// ReadEdges reads "child parent" pairs. The self-parented row marks
// the root.
func ReadEdges(r io.Reader) (map[uint32]uint32, error) {
	parents := make(map[uint32]uint32, 1<<16)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	var line string
	var items []string
	var child, parent uint64
	var err error
	var n int
	for scanner.Scan() {
		n++
		line = strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		items = strings.Fields(line)
		if len(items) != 2 {
			return nil, fmt.Errorf("line %d: two columns expected: %s", n, line)
		}
		if child, err = strconv.ParseUint(items[0], 10, 32); err != nil {
			return nil, fmt.Errorf("line %d: invalid taxid: %s", n, items[0])
		}
		if parent, err = strconv.ParseUint(items[1], 10, 32); err != nil {
			return nil, fmt.Errorf("line %d: invalid taxid: %s", n, items[1])
		}
		parents[uint32(child)] = uint32(parent)
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return parents, nil
}

// ReadNodes reads "taxid|name|rank" rows.
func ReadNodes(r io.Reader) (map[uint32]Node, error) {
	nodes := make(map[uint32]Node, 1<<16)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	var line string
	var items []string
	var taxid uint64
	var err error
	var n int
	for scanner.Scan() {
		n++
		line = strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" || line[0] == '#' {
			continue
		}
		items = strings.Split(line, "|")
		if len(items) != 3 {
			return nil, fmt.Errorf("line %d: three fields expected: %s", n, line)
		}
		if taxid, err = strconv.ParseUint(strings.TrimSpace(items[0]), 10, 32); err != nil {
			return nil, fmt.Errorf("line %d: invalid taxid: %s", n, items[0])
		}
		nodes[uint32(taxid)] = Node{
			Name: strings.TrimSpace(items[1]),
			Rank: strings.TrimSpace(items[2]),
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// FindFile searches a directory recursively for a file with the given
// name. The lexicographically first match is returned.
func FindFile(dir string, name string) (string, error) {
	var mu sync.Mutex
	var matches []string
	err := cwalk.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && info.Name() == name {
			mu.Lock()
			matches = append(matches, filepath.Join(dir, path))
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "searching %s in %s", name, dir)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%s not found in %s", name, dir)
	}
	sort.Strings(matches)
	return matches[0], nil
}
