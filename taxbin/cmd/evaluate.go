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

package cmd

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/taxbin/taxbin/cmd/binning"
	"github.com/shenwei356/util/cliutil"
	"github.com/spf13/cobra"
	"github.com/tatsushid/go-prettytable"
	"github.com/twotwotwo/sorts"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate read assignments against true taxa at each rank",
	Long: `Evaluate read assignments against true taxa at each rank

Both files are tab-delimited, with read ids in the first column and
taxids in the second one, e.g., the output of "taxbin lca".
A header line starting with "read_id" is skipped.

For every assigned read with a true taxid, its ancestors at ranks from
species to superkingdom are compared with the ones of the true taxid.
A rank is not counted if the assigned taxon has no ancestor of that rank,
and all ranks above a matched one count as correct.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer opt.Close()

		cfg, err := loadConfig(opt.ConfigFile)
		checkError(err)

		fileAssign := getFlagString(cmd, "assignments")
		fileTruth := getFlagString(cmd, "truth")
		if fileAssign == "" || fileTruth == "" {
			checkError(fmt.Errorf("flags --assignments and --truth needed"))
		}
		outFile := getFlagString(cmd, "out-file")

		tree := loadTaxonomy(cmd, opt, cfg)

		assigned, err := readTaxIDMap(fileAssign)
		checkError(err)
		truth, err := readTaxIDMap(fileTruth)
		checkError(err)

		ids := make([]string, 0, len(assigned))
		for id := range assigned {
			ids = append(ids, id)
		}
		sorts.Quicksort(sortStrings(ids))
		assignments := make([]binning.Assignment, len(ids))
		for i, id := range ids {
			if !tree.Has(assigned[id]) {
				checkError(fmt.Errorf("taxid of read %s not found in taxonomy: %d", id, assigned[id]))
			}
			assignments[i] = binning.Assignment{ReadID: id, TaxID: assigned[id]}
		}
		for id, taxid := range truth {
			if !tree.Has(taxid) {
				checkError(fmt.Errorf("true taxid of read %s not found in taxonomy: %d", id, taxid))
			}
		}

		acc, err := binning.EvaluateRanks(tree, assignments, truth)
		checkError(err)

		if opt.Verbose {
			log.Infof("%s reads evaluated, %s assigned reads without true taxa",
				humanize.Comma(int64(acc.Evaluated)), humanize.Comma(int64(acc.NoTruth)))
		}

		tbl, err := prettytable.NewTable([]prettytable.Column{
			{Header: "rank"},
			{Header: "true", AlignRight: true},
			{Header: "false", AlignRight: true},
			{Header: "precision", AlignRight: true},
		}...)
		checkError(err)
		tbl.Separator = "  "
		var precision string
		for _, c := range acc.Counts {
			if c.True+c.False > 0 {
				precision = fmt.Sprintf("%.4f", float64(c.True)/float64(c.True+c.False))
			} else {
				precision = "-"
			}
			tbl.AddRow(c.Rank, humanize.Comma(int64(c.True)), humanize.Comma(int64(c.False)), precision)
		}

		outfh, gw, w, err := outStream(outFile, isGzFile(outFile), opt.CompressionLevel)
		checkError(err)
		outfh.Write(tbl.Bytes())
		closeOutStream(outfh, gw, w)
	},
}

func init() {
	RootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringP("assignments", "a", "", "read assignment file")
	evaluateCmd.Flags().StringP("truth", "", "", "file of true taxids of reads")
	evaluateCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout)`)

	addTaxonomyFlags(evaluateCmd)
}

// readTaxIDMap reads read ids and taxids from the first two columns.
func readTaxIDMap(file string) (map[string]uint32, error) {
	kvs, err := cliutil.ReadKVs(file, false)
	if err != nil {
		return nil, err
	}
	m := make(map[string]uint32, len(kvs))
	var taxid uint64
	for k, v := range kvs {
		if k == "read_id" {
			continue
		}
		if taxid, err = strconv.ParseUint(v, 10, 32); err != nil {
			return nil, fmt.Errorf("%s: invalid taxid of read %s: %s", file, k, v)
		}
		m[k] = uint32(taxid)
	}
	return m, nil
}

type sortStrings []string

func (s sortStrings) Len() int           { return len(s) }
func (s sortStrings) Less(i, j int) bool { return s[i] < s[j] }
func (s sortStrings) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
