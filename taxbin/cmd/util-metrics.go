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
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// runMetrics holds counters of a run, written in the Prometheus text
// format for node-exporter's textfile collector.
type runMetrics struct {
	reg *prometheus.Registry

	reads              prometheus.Gauge
	hostReads          prometheus.Gauge
	hostAlignments     prometheus.Gauge
	recordsMissing     prometheus.Gauge
	recordsTotal       prometheus.Gauge
	cdsHit             prometheus.Gauge
	binned             *prometheus.GaugeVec
	organismReads      *prometheus.GaugeVec
	stageDuration      *prometheus.GaugeVec
	lastRunTimestamp   prometheus.Gauge
	lastStageStartTime time.Time
}

func newRunMetrics(runID string) *runMetrics {
	labels := prometheus.Labels{"run_id": runID}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taxbin", Name: name, Help: help, ConstLabels: labels,
		})
	}
	m := &runMetrics{
		reg:            prometheus.NewRegistry(),
		reads:          gauge("reads", "Number of reads loaded."),
		hostReads:      gauge("host_reads", "Number of reads classified as host."),
		hostAlignments: gauge("host_alignments", "Number of alignments classified as host."),
		recordsMissing: gauge("records_missing", "Number of accessions without records."),
		recordsTotal:   gauge("records_requested", "Number of distinct accessions requested."),
		cdsHit:         gauge("cds_hit", "Number of coding regions hit by reads."),
		binned: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "taxbin", Name: "reads_by_rule", Help: "Number of reads by binning rule.", ConstLabels: labels,
		}, []string{"rule"}),
		organismReads: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "taxbin", Name: "organism_reads", Help: "Number of reads binned to target organisms.", ConstLabels: labels,
		}, []string{"taxid", "name"}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "taxbin", Name: "stage_duration_seconds", Help: "Duration of pipeline stages.", ConstLabels: labels,
		}, []string{"stage"}),
		lastRunTimestamp:   gauge("last_run_timestamp_seconds", "Finishing time of the run."),
		lastStageStartTime: time.Now(),
	}
	m.reg.MustRegister(m.reads, m.hostReads, m.hostAlignments, m.recordsMissing,
		m.recordsTotal, m.cdsHit, m.binned, m.organismReads, m.stageDuration, m.lastRunTimestamp)
	return m
}

// stage records the time since the previous call.
func (m *runMetrics) stage(name string) {
	now := time.Now()
	m.stageDuration.WithLabelValues(name).Set(now.Sub(m.lastStageStartTime).Seconds())
	m.lastStageStartTime = now
}

func (m *runMetrics) write(file string) error {
	m.lastRunTimestamp.SetToCurrentTime()
	return errors.Wrapf(prometheus.WriteToTextfile(file, m.reg), "writing metrics to %s", file)
}
