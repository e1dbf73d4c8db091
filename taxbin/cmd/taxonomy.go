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

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
	"github.com/shenwei356/taxbin/taxbin/cmd/taxonomy"
	"github.com/spf13/cobra"
)

func addTaxonomyFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("taxdump", "T", "", fmt.Sprintf("directory of NCBI taxonomy dump files (nodes.dmp, names.dmp), or set $%s", EnvTaxdump))
	cmd.Flags().StringP("tax-dir", "", "", fmt.Sprintf("directory to search for taxonomy tables (%s, %s)", taxonomy.EdgeFileName, taxonomy.DataFileName))
	cmd.Flags().StringP("tax-tree", "", "", `taxonomy edge table, "child parent" per line`)
	cmd.Flags().StringP("tax-data", "", "", `taxon data table, "taxid|name|rank" per line`)
}

// loadTaxonomy loads the tree from, in order of priority, the edge and
// data tables, a directory containing them, or an NCBI taxdump directory.
func loadTaxonomy(cmd *cobra.Command, opt *Options, cfg *Config) *taxonomy.Tree {
	fileTree := getFlagString(cmd, "tax-tree")
	fileData := getFlagString(cmd, "tax-data")
	dir := getFlagString(cmd, "tax-dir")
	taxdump := getFlagString(cmd, "taxdump")
	if taxdump == "" {
		taxdump = cfg.Taxdump
	}

	var tree *taxonomy.Tree
	var err error
	switch {
	case fileTree != "" || dir != "":
		if fileTree == "" {
			dir, err = homedir.Expand(dir)
			checkError(err)
			fileTree, err = taxonomy.FindFile(dir, taxonomy.EdgeFileName)
			checkError(err)
			if fileData == "" {
				fileData, err = taxonomy.FindFile(dir, taxonomy.DataFileName)
				if err != nil {
					log.Warningf("no taxon data table found, names and ranks will be empty: %s", err)
					fileData = ""
				}
			}
		}
		if opt.Verbose {
			log.Infof("loading taxonomy from: %s", fileTree)
		}
		tree, err = taxonomy.NewTreeFromFiles(fileTree, fileData, cfg.TaxonomyConfig())
	case taxdump != "":
		taxdump, err = homedir.Expand(taxdump)
		checkError(err)
		if opt.Verbose {
			log.Infof("loading taxonomy from taxdump: %s", taxdump)
		}
		tree, err = taxonomy.NewTreeFromTaxdump(taxdump, cfg.TaxonomyConfig())
	default:
		checkError(fmt.Errorf("taxonomy data needed, please give --tax-tree, --tax-dir or --taxdump"))
	}
	checkError(err)

	if opt.Verbose {
		log.Infof("  %s taxa loaded", humanize.Comma(int64(tree.Len())))
	}
	return tree
}
