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
	"strings"

	"github.com/shenwei356/taxbin/taxbin/cmd/binning"
	"github.com/spf13/cobra"
)

var lineageCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Query lineages and rank-normalized ancestors of taxids",
	Long: `Query lineages and rank-normalized ancestors of taxids

Taxids are given as arguments, or one per line in files of --infile-list.

Output format:
  taxid  name  rank  category  lineage  lineage_taxids  species ... superkingdom

Ancestors absent at a rank are shown as "-".

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer opt.Close()

		cfg, err := loadConfig(opt.ConfigFile)
		checkError(err)
		outFile := getFlagString(cmd, "out-file")

		items := args
		if getFlagString(cmd, "infile-list") != "" {
			items = append(items, getFileListFromArgsAndFile(cmd, nil, false, "infile-list", false)...)
		}
		taxids, err := parseTaxIDs(items)
		checkError(err)
		if len(taxids) == 0 {
			checkError(fmt.Errorf("no taxids given"))
		}

		tree := loadTaxonomy(cmd, opt, cfg)

		outfh, gw, w, err := outStream(outFile, isGzFile(outFile), opt.CompressionLevel)
		checkError(err)
		defer closeOutStream(outfh, gw, w)

		outfh.WriteString("taxid\tname\trank\tcategory\tlineage\tlineage_taxids\t")
		outfh.WriteString(strings.Join(binning.AccuracyRanks, "\t"))
		outfh.WriteString("\n")

		var lineage []uint32
		var names []string
		ids := make([]string, 0, 16)
		var p uint32
		for _, taxid := range taxids {
			if !tree.Has(taxid) {
				log.Warningf("taxid not found: %d", taxid)
				continue
			}
			lineage, err = tree.Lineage(taxid)
			checkError(err)
			names, err = tree.LineageNames(taxid)
			checkError(err)
			ids = ids[:0]
			for _, id := range lineage {
				ids = append(ids, strconv.FormatUint(uint64(id), 10))
			}
			cat, _ := tree.Category(taxid)

			fmt.Fprintf(outfh, "%d\t%s\t%s\t%s\t%s\t%s", taxid, tree.Name(taxid), tree.Rank(taxid),
				taxidString(cat), strings.Join(names, ";"), strings.Join(ids, ";"))
			for _, rank := range binning.AccuracyRanks {
				p, err = tree.ParentWithRank(taxid, rank)
				checkError(err)
				outfh.WriteString("\t" + taxidString(p))
			}
			outfh.WriteString("\n")
		}
	},
}

func init() {
	RootCmd.AddCommand(lineageCmd)

	lineageCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout, suffix .gz for gzipped out)`)

	addTaxonomyFlags(lineageCmd)
}
