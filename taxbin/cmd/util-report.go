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
	"bufio"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/taxbin/taxbin/cmd/binning"
	"github.com/shenwei356/taxbin/taxbin/cmd/records"
	"github.com/shenwei356/util/stats"
	"github.com/tatsushid/go-prettytable"
	"github.com/twotwotwo/sorts"
)

// organismStat is a row of the organism report.
type organismStat struct {
	taxid     string
	name      string
	rank      string
	reads     int
	coding    int
	noncoding int
	cds       int
	ambOrg    int
	ambCoding int

	scoreMean   float64
	scoreStd    float64
	scoreMedian float64
	scoreP90    float64
}

func newOrganismStat(o *binning.Organism) *organismStat {
	rs := o.Reads()
	s := &organismStat{
		taxid:     strconv.FormatUint(uint64(o.TaxID), 10),
		name:      o.Name,
		rank:      o.Rank,
		reads:     len(rs),
		coding:    len(o.CodingReads()),
		noncoding: len(o.NonCodingReads()),
		cds:       len(o.IdentifiedCds()),
		ambOrg:    len(o.AmbiguousOrganismReads()),
		ambCoding: len(o.AmbiguousCodingReads()),
	}
	if len(rs) == 0 {
		return s
	}
	scores := make([]float64, len(rs))
	q := stats.NewQuantiler()
	for i, r := range rs {
		scores[i] = r.Score
		q.Add(r.Score)
	}
	s.scoreMean, s.scoreStd = MeanStdev(scores)
	s.scoreMedian = q.Percentile(50)
	s.scoreP90 = q.Percentile(90)
	return s
}

type organismStats []*organismStat

func (s organismStats) Len() int { return len(s) }
func (s organismStats) Less(i, j int) bool {
	if s[i].reads == s[j].reads {
		return s[i].taxid < s[j].taxid
	}
	return s[i].reads > s[j].reads
}
func (s organismStats) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// organismStatsOf returns rows sorted by read count, and a pseudo
// organism "Host" for the host reads at the end.
func organismStatsOf(res *binning.Result) organismStats {
	list := make(organismStats, 0, len(res.Organisms)+1)
	for _, taxid := range res.Targets {
		list = append(list, newOrganismStat(res.Organism(taxid)))
	}
	sorts.Quicksort(list)
	list = append(list, &organismStat{taxid: "-", name: "Host", reads: res.Host})
	return list
}

func writeOrganismReport(outfh *bufio.Writer, runID string, list organismStats, missing records.MissingStats) {
	fmt.Fprintf(outfh, "# run: %s\n", runID)
	fmt.Fprintf(outfh, "# missing records: %d/%d (%.2f%%)\n", missing.Missing, missing.Total, missing.Percentage)
	outfh.WriteString("taxid\tname\trank\treads\tcoding_reads\tnoncoding_reads\tcds\tambiguous_organism\tambiguous_coding\tscore_mean\tscore_std\tscore_median\tscore_p90\n")
	for _, s := range list {
		fmt.Fprintf(outfh, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
			s.taxid, s.name, s.rank, s.reads, s.coding, s.noncoding, s.cds, s.ambOrg, s.ambCoding,
			s.scoreMean, s.scoreStd, s.scoreMedian, s.scoreP90)
	}
}

func writeGeneReport(outfh *bufio.Writer, res *binning.Result) {
	outfh.WriteString("taxid\torganism\trecord_id\tlocation\tgene\tproduct\tprotein_id\tlocus_tag\tlength\treads\tactive_reads\tmean_coverage\tstd_coverage\n")
	var active int
	var mean, std float64
	for _, taxid := range res.Targets {
		o := res.Organism(taxid)
		for _, ic := range o.IdentifiedCds() {
			c := ic.Cds
			active, mean, std = 0, 0, 0
			if ic.Alignment != nil {
				active = ic.Alignment.ActiveCount()
				mean = ic.Alignment.MeanCoverage()
				std = ic.Alignment.StdCoverage()
			}
			fmt.Fprintf(outfh, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%.4f\t%.4f\n",
				taxid, o.Name, c.RecordID, c.Location, c.Gene, c.Product, c.ProteinID, c.LocusTag,
				c.Len(), len(ic.Reads), active, mean, std)
		}
	}
}

func writeBinning(outfh *bufio.Writer, res *binning.Result) {
	outfh.WriteString("read_id\ttaxid\ttarget\trule\tscore\tlocation\n")
	for _, br := range res.Assignments {
		fmt.Fprintf(outfh, "%s\t%d\t%d\t%s\t%g\t%s\n",
			br.ReadID, br.TaxID, br.Target, br.Rule, br.Score, br.Loc.String())
	}
}

// summaryTable formats the organism rows for the terminal.
func summaryTable(list organismStats) ([]byte, error) {
	tbl, err := prettytable.NewTable([]prettytable.Column{
		{Header: "taxid"},
		{Header: "name"},
		{Header: "rank"},
		{Header: "reads", AlignRight: true},
		{Header: "coding", AlignRight: true},
		{Header: "non-coding", AlignRight: true},
		{Header: "CDS", AlignRight: true},
		{Header: "ambiguous", AlignRight: true},
	}...)
	if err != nil {
		return nil, err
	}
	tbl.Separator = "  "
	for _, s := range list {
		tbl.AddRow(s.taxid, s.name, s.rank,
			humanize.Comma(int64(s.reads)),
			humanize.Comma(int64(s.coding)),
			humanize.Comma(int64(s.noncoding)),
			humanize.Comma(int64(s.cds)),
			humanize.Comma(int64(s.ambOrg+s.ambCoding)))
	}
	return tbl.Bytes(), nil
}
