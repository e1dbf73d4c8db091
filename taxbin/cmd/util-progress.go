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
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

// progress wraps a progress bar, which is a no-op when quiet.
type progress struct {
	pbs *mpb.Progress
	bar *mpb.Bar
}

func newProgress(verbose bool, name string, total int) *progress {
	if !verbose {
		return &progress{}
	}
	pbs := mpb.New(mpb.WithWidth(60))
	bar := pbs.AddBar(int64(total),
		mpb.BarStyle("[=>-]<+"),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DidentRight}),
			decor.Name("", decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
		),
	)
	return &progress{pbs: pbs, bar: bar}
}

// Increment is safe for concurrent use.
func (p *progress) Increment() {
	if p.bar != nil {
		p.bar.Increment()
	}
}

// Wait completes the bar and waits for rendering.
func (p *progress) Wait() {
	if p.pbs == nil {
		return
	}
	p.bar.SetTotal(p.bar.Current(), true)
	p.pbs.Wait()
}
