// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/poiesic/icdmap/search"
)

// queryCache memoizes search responses for repeated queries. Entries expire
// after a TTL so a rebuilt index stops serving stale suggestions without a
// restart.
type queryCache struct {
	cache *ristretto.Cache[string, []*search.Match]
	ttl   time.Duration
}

func newQueryCache(maxEntries int64, ttl time.Duration) (*queryCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []*search.Match]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}
	return &queryCache{cache: cache, ttl: ttl}, nil
}

// cacheKey collapses case and whitespace so trivially different spellings of
// the same diagnosis share an entry.
func cacheKey(query string, topK int) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return fmt.Sprintf("%s|%d", normalized, topK)
}

func (q *queryCache) get(query string, topK int) ([]*search.Match, bool) {
	return q.cache.Get(cacheKey(query, topK))
}

func (q *queryCache) put(query string, topK int, matches []*search.Match) {
	q.cache.SetWithTTL(cacheKey(query, topK), matches, 1, q.ttl)
}

// wait blocks until buffered writes are applied. Only tests need it.
func (q *queryCache) wait() {
	q.cache.Wait()
}

func (q *queryCache) close() {
	q.cache.Close()
}
