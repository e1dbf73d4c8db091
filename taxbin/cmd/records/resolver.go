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

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// DefaultCacheSize is the default capacity of the GI->taxid cache.
const DefaultCacheSize = 1 << 20

// Resolver maps GIs to taxids through a Store with an LRU cache.
// GIs without a taxon are cached too, as 0.
type Resolver struct {
	store Store
	cache *lru.Cache[int, uint32]
}

// NewResolver returns a resolver with a cache of the given size.
func NewResolver(store Store, size int) (*Resolver, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[int, uint32](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating taxid cache")
	}
	return &Resolver{store: store, cache: cache}, nil
}

// TaxIDs returns taxids of the GIs. GIs without a taxon are omitted.
func (r *Resolver) TaxIDs(ctx context.Context, gis []int) (map[int]uint32, error) {
	m := make(map[int]uint32, len(gis))
	query := make([]int, 0, len(gis))
	seen := make(map[int]struct{}, len(gis))
	for _, gi := range gis {
		if taxid, ok := r.cache.Get(gi); ok {
			if taxid > 0 {
				m[gi] = taxid
			}
			continue
		}
		if _, ok := seen[gi]; ok {
			continue
		}
		seen[gi] = struct{}{}
		query = append(query, gi)
	}
	if len(query) == 0 {
		return m, nil
	}

	found, err := r.store.TaxIDs(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "resolving taxids")
	}
	for _, gi := range query {
		taxid := found[gi]
		r.cache.Add(gi, taxid)
		if taxid > 0 {
			m[gi] = taxid
		}
	}
	return m, nil
}

// TaxID resolves a single GI.
func (r *Resolver) TaxID(ctx context.Context, gi int) (uint32, bool, error) {
	m, err := r.TaxIDs(ctx, []int{gi})
	if err != nil {
		return 0, false, err
	}
	taxid, ok := m[gi]
	return taxid, ok, nil
}

// Len returns the number of cached GIs.
func (r *Resolver) Len() int { return r.cache.Len() }

// Clear empties the cache.
func (r *Resolver) Clear() { r.cache.Purge() }
