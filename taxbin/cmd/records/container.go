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

package records

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Container caches records fetched from a Store. Accessions absent
// from the store are remembered as missing and counted.
type Container struct {
	store Store

	mu      sync.Mutex
	records map[string]*Record // nil value for missing records
	missing int
}

// NewContainer returns a container backed by a store.
func NewContainer(store Store) *Container {
	return &Container{
		store:   store,
		records: make(map[string]*Record, 1024),
	}
}

// Fetch returns the record of an accession, querying the store on the
// first request. A missing record returns nil and no error.
func (c *Container) Fetch(ctx context.Context, accession string) (*Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, ok := c.records[accession]; ok {
		return rec, nil
	}
	rec, err := c.store.Record(ctx, accession)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			log.Debugf("no record with ID %s", accession)
			c.records[accession] = nil
			c.missing++
			return nil, nil
		}
		return nil, errors.Wrapf(err, "fetching record %s", accession)
	}
	c.records[accession] = rec
	return rec, nil
}

// Populate fetches all given accessions.
func (c *Container) Populate(ctx context.Context, accessions []string) error {
	for _, acc := range accessions {
		if _, err := c.Fetch(ctx, acc); err != nil {
			return err
		}
	}
	return nil
}

// Existing returns a fetched record without querying the store.
func (c *Container) Existing(accession string) *Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records[accession]
}

// Len returns the number of requested accessions, missing ones included.
func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// MissingStats summarizes missing records.
type MissingStats struct {
	Missing    int
	Total      int
	Percentage float64
}

// MissingStats returns the count of missing records among all requested.
func (c *Container) MissingStats() MissingStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := MissingStats{Missing: c.missing, Total: len(c.records)}
	if s.Total > 0 {
		s.Percentage = float64(s.Missing) / float64(s.Total) * 100
	}
	return s
}
