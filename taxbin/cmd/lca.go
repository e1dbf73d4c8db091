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
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/taxbin/taxbin/cmd/binning"
	"github.com/shenwei356/taxbin/taxbin/cmd/records"
	"github.com/spf13/cobra"
)

var lcaCmd = &cobra.Command{
	Use:   "lca",
	Short: "Assign reads to the LCA of the taxa of their alignments",
	Long: `Assign reads to the LCA of the taxa of their alignments

Reads without any alignment mapped to a taxid are skipped.

Output format:
  read_id  taxid  name  rank

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer opt.Close()
		timeStart := time.Now()

		cfg, err := loadConfig(opt.ConfigFile)
		checkError(err)
		if v := getFlagString(cmd, "gi2taxid"); v != "" {
			cfg.TaxIDSource = v
		}
		if cfg.TaxIDSource == "" {
			cfg.TaxIDSource = cfg.RecordStore
		}
		if cfg.TaxIDSource == "" {
			checkError(fmt.Errorf("GI to taxid mapping needed, please give --gi2taxid"))
		}
		outFile := getFlagString(cmd, "out-file")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		ctx := context.Background()

		tree := loadTaxonomy(cmd, opt, cfg)
		rs := loadReads(opt, files)

		store, err := records.OpenTaxIDSource(ctx, cfg.TaxIDSource)
		checkError(err)
		defer store.Close()
		resolver, err := records.NewResolver(store, records.DefaultCacheSize)
		checkError(err)
		resolveTaxIDs(ctx, opt, tree, resolver, rs)

		assignments, skipped, err := binning.BinLCA(tree, rs)
		checkError(err)

		outfh, gw, w, err := outStream(outFile, isGzFile(outFile), opt.CompressionLevel)
		checkError(err)
		outfh.WriteString("read_id\ttaxid\tname\trank\n")
		for _, a := range assignments {
			fmt.Fprintf(outfh, "%s\t%d\t%s\t%s\n", a.ReadID, a.TaxID, tree.Name(a.TaxID), tree.Rank(a.TaxID))
		}
		closeOutStream(outfh, gw, w)

		if opt.Verbose {
			log.Infof("%s reads assigned, %s skipped",
				humanize.Comma(int64(len(assignments))), humanize.Comma(int64(skipped)))
			log.Infof("elapsed time: %s", time.Since(timeStart))
		}
	},
}

func init() {
	RootCmd.AddCommand(lcaCmd)

	lcaCmd.Flags().StringP("gi2taxid", "g", "", fmt.Sprintf("GI to taxid mapping file or database, or set $%s", EnvTaxIDDSN))
	lcaCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout, suffix .gz for gzipped out)`)

	addTaxonomyFlags(lcaCmd)
}
