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

package reads

import (
	"fmt"
	"strconv"
	"strings"
)

// LineFormat is the layout of one read line. The alignment count is
// optional, strand is + or -.
const LineFormat = "read_id,num_alignments;accession,source,gi,score,start,end,strand;...;"

// ParseLine parses one read line in LineFormat.
// A malformed alignment is logged and skipped, a malformed header is
// an error. A declared alignment count differing from the alignments
// present is logged.
func ParseLine(line string) (*Read, error) {
	line = strings.TrimSpace(line)
	line = strings.TrimSuffix(line, ";")
	if line == "" {
		return nil, fmt.Errorf("empty read line")
	}
	fields := strings.Split(line, ";")

	header := strings.Split(fields[0], ",")
	id := strings.TrimPrefix(strings.TrimSpace(header[0]), "@")
	if id == "" {
		return nil, fmt.Errorf("empty read id: %s", fields[0])
	}
	declared := -1
	if len(header) > 1 {
		var err error
		if declared, err = strconv.Atoi(strings.TrimSpace(header[1])); err != nil {
			return nil, fmt.Errorf("read %s: invalid alignment count: %s", id, header[1])
		}
	}
	if declared >= 0 && declared != len(fields)-1 {
		log.Warningf("read %s: %d alignments declared, %d given", id, declared, len(fields)-1)
	}

	read := &Read{ID: id, Alignments: make([]*Alignment, 0, len(fields)-1)}
	for _, f := range fields[1:] {
		aln, err := parseAlignment(id, f)
		if err != nil {
			log.Warningf("read %s: skip alignment %q: %s", id, f, err)
			continue
		}
		read.Alignments = append(read.Alignments, aln)
	}
	return read, nil
}

func parseAlignment(readID, s string) (*Alignment, error) {
	items := strings.Split(s, ",")
	if len(items) != 7 {
		return nil, fmt.Errorf("7 fields expected, %d given", len(items))
	}
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	if items[0] == "" {
		return nil, fmt.Errorf("empty accession")
	}
	gi, err := strconv.Atoi(items[2])
	if err != nil {
		return nil, fmt.Errorf("invalid GI: %s", items[2])
	}
	score, err := strconv.ParseFloat(items[3], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid score: %s", items[3])
	}
	start, err := strconv.Atoi(items[4])
	if err != nil {
		return nil, fmt.Errorf("invalid start: %s", items[4])
	}
	end, err := strconv.Atoi(items[5])
	if err != nil {
		return nil, fmt.Errorf("invalid end: %s", items[5])
	}
	var complement bool
	switch items[6] {
	case "+":
	case "-":
		complement = true
	default:
		return nil, fmt.Errorf("invalid strand: %s", items[6])
	}
	return NewAlignment(readID, items[0], items[1], gi, score, start, end, complement), nil
}
