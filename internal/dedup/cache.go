// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

// Package dedup provides the bounded in-memory seen-set shared between the
// scheduled feed poller and the webhook handler. It is a best-effort,
// single-process optimization: a restart clears it, and the store's
// idempotent inserts absorb the resulting burst of duplicate writes.
package dedup

import (
	"strings"
	"sync"
)

// DefaultCapacity bounds the seen-set. At typical feed volumes this covers
// several hours of items, far longer than any poll interval.
const DefaultCapacity = 1000

// Cache is a capacity-bounded set of previously seen dedup keys with
// insertion-order FIFO eviction. Unlike an LRU, re-seeing a key does not
// move it to the back of the eviction queue; only first insertion order
// matters. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	seen     map[string]struct{}
	order    []string // insertion order, oldest first
	hits     int64
}

// NewCache creates a dedup cache with the given capacity.
// Non-positive capacity falls back to DefaultCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		seen:     make(map[string]struct{}, capacity),
		order:    make([]string, 0, capacity),
	}
}

// Seen reports whether key has been marked before (and not yet evicted).
func (c *Cache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[key]
	if ok {
		c.hits++
	}
	return ok
}

// MarkSeen records key. Inserting past capacity evicts the single oldest
// entry. Marking an already-present key is a no-op and does not change its
// position in the eviction order.
func (c *Cache) MarkSeen(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[key]; ok {
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.seen, oldest)
	}

	c.seen[key] = struct{}{}
	c.order = append(c.order, key)
}

// CheckAndMark atomically tests and records key, returning true if the key
// was already present. Using this instead of Seen+MarkSeen closes the race
// between the feed poller and a concurrently arriving webhook delivery.
func (c *Cache) CheckAndMark(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[key]; ok {
		c.hits++
		return true
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.seen, oldest)
	}

	c.seen[key] = struct{}{}
	c.order = append(c.order, key)
	return false
}

// Len returns the number of keys currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// Hits returns the number of duplicate lookups answered so far.
func (c *Cache) Hits() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Key derives the dedup key for an external item: explicit GUID first, then
// URL, then the trimmed title as a last resort. An empty result means the
// item carries nothing identifying and cannot be deduplicated.
func Key(guid, url, title string) string {
	if k := strings.TrimSpace(guid); k != "" {
		return k
	}
	if k := strings.TrimSpace(url); k != "" {
		return k
	}
	return strings.TrimSpace(title)
}
