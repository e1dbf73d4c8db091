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
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shenwei356/taxbin/taxbin/cmd/annotation"
	"github.com/shenwei356/taxbin/taxbin/cmd/binning"
	"github.com/shenwei356/taxbin/taxbin/cmd/cds"
	"github.com/shenwei356/taxbin/taxbin/cmd/host"
	"github.com/shenwei356/taxbin/taxbin/cmd/reads"
	"github.com/shenwei356/taxbin/taxbin/cmd/records"
	"github.com/shenwei356/taxbin/taxbin/cmd/taxonomy"
	"github.com/spf13/cobra"
)

var binCmd = &cobra.Command{
	Use:   "bin",
	Short: "Bin aligned reads to target organisms and coding regions",
	Long: `Bin aligned reads to target organisms and coding regions

Input format:
  One read per line, fields of the read and of each alignment are
  comma separated, the read and its alignments are semicolon separated:
    `+reads.LineFormat+`
  A trailing semicolon is optional. Lines starting with # are skipped.

Steps:
  1. GIs of alignments are mapped to taxids.
  2. Host reads, and then host alignments, are marked or removed.
  3. Alignments are mapped to coding regions of the reference records.
  4. Each read gets a status from its alignments and coding-region hits.
  5. Reads are binned by rules tried in order:
       discard:        no alignments, or only non-target organisms
       single-coding:  one alignment in coding regions of one target,
                       binned to the longest of them
       multi-coding:   coding regions of several targets, or of targets
                       and non-targets; the best-scoring target alignment
                       and its longest coding region are chosen
       non-coding:     target alignments outside coding regions
       inert:          others, kept for audit

Output files:
  <prefix>.organisms.tsv   reads per target organism, plus a "Host" row
  <prefix>.genes.tsv       identified coding regions with coverage
  <prefix>.binning.tsv     read assignments

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer opt.Close()
		timeStart := time.Now()

		cfg, err := loadConfig(opt.ConfigFile)
		checkError(err)

		if cmd.Flags().Changed("targets") {
			cfg.Targets = getFlagTaxIDs(cmd, "targets")
		}
		if cmd.Flags().Changed("potential-hosts") {
			cfg.PotentialHosts = getFlagTaxIDs(cmd, "potential-hosts")
		}
		if v := getFlagString(cmd, "records"); v != "" {
			cfg.RecordStore = v
		}
		if v := getFlagString(cmd, "gi2taxid"); v != "" {
			cfg.TaxIDSource = v
		}
		if cmd.Flags().Changed("host-rule") {
			cfg.HostFilter.ReadRule = getFlagString(cmd, "host-rule")
		}
		if cmd.Flags().Changed("host-percentage") {
			cfg.HostFilter.Percentage = getFlagFloat64(cmd, "host-percentage")
		}
		if getFlagBool(cmd, "delete-host-reads") {
			cfg.HostFilter.DeleteReads = true
		}
		if getFlagBool(cmd, "delete-host-alignments") {
			cfg.HostFilter.DeleteAlignments = true
		}
		checkError(cfg.Validate())
		if len(cfg.Targets) == 0 {
			checkError(fmt.Errorf("no target organisms given, please use --targets or set targets in the config file"))
		}
		if cfg.RecordStore == "" && cfg.TaxIDSource == "" {
			checkError(fmt.Errorf("GI to taxid mapping needed, please give --records or --gi2taxid"))
		}

		outPrefix := getFlagString(cmd, "out-prefix")
		if isStdout(outPrefix) {
			checkError(fmt.Errorf("value of --out-prefix should not be stdout"))
		}
		gzipped := getFlagBool(cmd, "gzip")
		opt.Compress = gzipped
		metricsFile := getFlagString(cmd, "metrics-file")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		runID := uuid.New().String()
		metrics := newRunMetrics(runID)
		ctx := context.Background()

		if opt.Verbose {
			log.Infof("taxbin v%s", VERSION)
			log.Info("  https://github.com/shenwei356/taxbin")
			log.Info()
			log.Infof("run: %s", runID)
			log.Infof("-------------------- [main parameters] --------------------")
			log.Infof("targets: %v", cfg.Targets)
			log.Infof("potential hosts: %v", cfg.PotentialHosts)
			log.Infof("host read rule: %s", cfg.HostFilter.ReadRule)
			log.Infof("delete host reads/alignments: %v/%v", cfg.HostFilter.DeleteReads, cfg.HostFilter.DeleteAlignments)
			log.Infof("input files: %d", len(files))
			log.Infof("-------------------- [main parameters] --------------------")
		}

		// ---------------------------------------------------------------
		// taxonomy and targets

		tree := loadTaxonomy(cmd, opt, cfg)
		for _, taxid := range cfg.Targets {
			if !tree.Has(taxid) {
				checkError(fmt.Errorf("target taxid not found in taxonomy: %d", taxid))
			}
		}
		targets := annotation.NewTargets(tree, cfg.Targets)
		metrics.stage("taxonomy")

		// ---------------------------------------------------------------
		// reads

		rs := loadReads(opt, files)
		metrics.reads.Set(float64(len(rs)))
		metrics.stage("reads")

		// ---------------------------------------------------------------
		// stores

		recStore, err := records.Open(ctx, cfg.RecordStore, "")
		checkError(err)
		defer recStore.Close()

		taxStore := recStore
		if cfg.TaxIDSource != "" {
			taxStore, err = records.OpenTaxIDSource(ctx, cfg.TaxIDSource)
			checkError(err)
			defer taxStore.Close()
		}

		resolver, err := records.NewResolver(taxStore, records.DefaultCacheSize)
		checkError(err)
		resolveTaxIDs(ctx, opt, tree, resolver, rs)
		metrics.stage("resolve")

		// ---------------------------------------------------------------
		// host filtering

		rule, err := host.ParseRule(cfg.HostFilter.ReadRule)
		checkError(err)
		filter := host.NewFilter(tree, cfg.PotentialHosts, cfg.HostFilter.FilterUnassigned)
		readFilter, err := host.NewReadFilter(filter, rule, cfg.HostFilter.Percentage)
		checkError(err)

		var nHostReads, nHostAlns int
		rs, nHostReads = readFilter.FilterReads(rs, cfg.HostFilter.DeleteReads)
		nHostAlns = filter.FilterAlignments(rs, cfg.HostFilter.DeleteAlignments)
		metrics.hostReads.Set(float64(nHostReads))
		metrics.hostAlignments.Set(float64(nHostAlns))
		if opt.Verbose {
			log.Infof("%s host reads %s, %s host alignments %s",
				humanize.Comma(int64(nHostReads)), boolStr("removed", "marked", cfg.HostFilter.DeleteReads),
				humanize.Comma(int64(nHostAlns)), boolStr("removed", "marked", cfg.HostFilter.DeleteAlignments))
		}

		resolver.Clear()
		metrics.stage("host")

		// ---------------------------------------------------------------
		// coding regions

		container := records.NewContainer(recStore)
		mapCodingRegions(ctx, opt, container, rs)
		missing := container.MissingStats()
		metrics.recordsMissing.Set(float64(missing.Missing))
		metrics.recordsTotal.Set(float64(missing.Total))
		if missing.Missing > 0 {
			log.Warningf("records not found for %s of %s accessions (%.2f%%)",
				humanize.Comma(int64(missing.Missing)), humanize.Comma(int64(missing.Total)), missing.Percentage)
		}

		index := cds.NewContainer()
		index.Populate(rs)
		metrics.cdsHit.Set(float64(index.Len()))
		if opt.Verbose {
			log.Infof("%s coding regions hit", humanize.Comma(int64(index.Len())))
		}
		metrics.stage("cds")

		// ---------------------------------------------------------------
		// annotating and binning

		if opt.Verbose {
			log.Infof("annotating reads with %d threads", opt.NumCPUs)
		}
		bar := newProgress(opt.Verbose, "annotating reads:", len(rs))
		annotator := &annotation.Annotator{
			Classifier: annotation.NewClassifier(targets),
			Threads:    opt.NumCPUs,
			OnDone:     bar.Increment,
		}
		err = annotator.Annotate(rs, index.Read2Cds())
		bar.Wait()
		checkError(err)
		metrics.stage("annotate")

		res, err := binning.NewBinner(tree, targets, index).Bin(rs)
		checkError(err)
		res.Host = nHostReads
		for _, r := range binning.Rules {
			metrics.binned.WithLabelValues(r.String()).Set(float64(res.Counts[r]))
		}
		metrics.stage("bin")

		// ---------------------------------------------------------------
		// output

		list := organismStatsOf(res)
		for _, s := range list {
			metrics.organismReads.WithLabelValues(s.taxid, s.name).Set(float64(s.reads))
		}

		outFile := outFileName(outPrefix, "organisms", gzipped)
		outfh, gw, w, err := outStream(outFile, gzipped, opt.CompressionLevel)
		checkError(err)
		writeOrganismReport(outfh, runID, list, missing)
		closeOutStream(outfh, gw, w)

		outFile = outFileName(outPrefix, "genes", gzipped)
		outfh, gw, w, err = outStream(outFile, gzipped, opt.CompressionLevel)
		checkError(err)
		writeGeneReport(outfh, res)
		closeOutStream(outfh, gw, w)

		outFile = outFileName(outPrefix, "binning", gzipped)
		outfh, gw, w, err = outStream(outFile, gzipped, opt.CompressionLevel)
		checkError(err)
		writeBinning(outfh, res)
		closeOutStream(outfh, gw, w)
		metrics.stage("output")

		if metricsFile != "" {
			checkError(metrics.write(metricsFile))
		}

		if opt.Verbose {
			for _, r := range binning.Rules {
				log.Infof("  %-14s %s", r.String()+":", humanize.Comma(int64(res.Counts[r])))
			}
			if len(res.Unhandled) > 0 {
				log.Infof("  %d inert reads not attributable to one target", len(res.Unhandled))
			}
			data, err := summaryTable(list)
			checkError(err)
			os.Stderr.Write(data)
			log.Infof("results saved with prefix: %s", outPrefix)
			log.Infof("elapsed time: %s", time.Since(timeStart))
		}
	},
}

func init() {
	RootCmd.AddCommand(binCmd)

	binCmd.Flags().StringSliceP("targets", "t", []string{}, "taxids of target organisms, comma separated")
	binCmd.Flags().StringSliceP("potential-hosts", "", []string{}, "taxids of potential hosts, which should be seeds of host categories")
	binCmd.Flags().StringP("records", "r", "", fmt.Sprintf("CDS table file, SQLite database file (.db/.sqlite) or PostgreSQL DSN, or set $%s", EnvRecordDSN))
	binCmd.Flags().StringP("gi2taxid", "g", "", fmt.Sprintf("GI to taxid mapping file or database, or set $%s", EnvTaxIDDSN))
	binCmd.Flags().StringP("host-rule", "", host.BestScore.String(), `rule to decide host reads: "best-score", "percentage" or "all"`)
	binCmd.Flags().Float64P("host-percentage", "", host.DefaultPercentage, `minimum fraction of host alignments for the rule "percentage"`)
	binCmd.Flags().BoolP("delete-host-reads", "", false, "remove host reads instead of marking them")
	binCmd.Flags().BoolP("delete-host-alignments", "", false, "remove host alignments instead of marking them")
	binCmd.Flags().StringP("out-prefix", "o", "taxbin", "out file prefix")
	binCmd.Flags().BoolP("gzip", "z", false, "gzip output files")
	binCmd.Flags().StringP("metrics-file", "", "", "write run metrics in Prometheus text format to this file")

	addTaxonomyFlags(binCmd)
}

// loadReads reads all files, read ids should be unique across files.
func loadReads(opt *Options, files []string) []*reads.Read {
	var rs []*reads.Read
	ids := make(map[string]string, mapInitSize)
	for _, file := range files {
		if opt.Verbose {
			log.Infof("reading alignments from: %s", file)
		}
		_rs, err := reads.LoadFile(file, opt.NumCPUs)
		checkError(err)
		for _, read := range _rs {
			if f, ok := ids[read.ID]; ok {
				checkError(fmt.Errorf("duplicated read id %s in %s and %s", read.ID, f, file))
			}
			ids[read.ID] = file
		}
		rs = append(rs, _rs...)
	}
	if opt.Verbose {
		log.Infof("  %s reads loaded", humanize.Comma(int64(len(rs))))
	}
	return rs
}

// resolveTaxIDs sets taxids of alignments by GIs. Taxids absent from the
// taxonomy are reset to 0 with a warning.
func resolveTaxIDs(ctx context.Context, opt *Options, tree *taxonomy.Tree,
	resolver *records.Resolver, rs []*reads.Read) {
	gis := make([]int, 0, len(rs))
	seen := make(map[int]struct{}, len(rs))
	for _, read := range rs {
		for _, a := range read.Alignments {
			if _, ok := seen[a.GI]; ok {
				continue
			}
			seen[a.GI] = struct{}{}
			gis = append(gis, a.GI)
		}
	}

	gi2taxid, err := resolver.TaxIDs(ctx, gis)
	checkError(err)

	absent := make(map[uint32]struct{})
	var unresolved int
	var taxid uint32
	var ok bool
	for _, read := range rs {
		for _, a := range read.Alignments {
			if taxid, ok = gi2taxid[a.GI]; !ok {
				unresolved++
				continue
			}
			if !tree.Has(taxid) {
				if _, ok = absent[taxid]; !ok {
					absent[taxid] = struct{}{}
					log.Warningf("taxid %d of GI %d not found in taxonomy, ignored", taxid, a.GI)
				}
				continue
			}
			a.TaxID = taxid
		}
	}
	if opt.Verbose {
		log.Infof("%s of %s GIs mapped to taxids, %s alignments unresolved",
			humanize.Comma(int64(len(gi2taxid))), humanize.Comma(int64(len(gis))),
			humanize.Comma(int64(unresolved)))
	}
}

// mapCodingRegions fetches records of alignments and maps alignments to
// coding regions. Host reads and host alignments are skipped.
func mapCodingRegions(ctx context.Context, opt *Options, container *records.Container, rs []*reads.Read) {
	if opt.Verbose {
		log.Infof("mapping alignments to coding regions")
	}
	bar := newProgress(opt.Verbose, "mapping reads:", len(rs))
	var rec *records.Record
	var err error
	for _, read := range rs {
		if read.PotentialHost != reads.Host {
			for _, a := range read.Alignments {
				if a.PotentialHost == reads.Host {
					continue
				}
				rec, err = container.Fetch(ctx, a.Accession)
				checkError(err)
				cds.MapAlignment(a, rec)
			}
		}
		bar.Increment()
	}
	bar.Wait()
	if opt.Verbose {
		log.Infof("  %s records fetched", humanize.Comma(int64(container.Len())))
	}
}
