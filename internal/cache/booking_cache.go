// Package cache holds the in-process booking cache.  It is an accelerator
// only: the record store stays the source of truth and writers evict
// entries after persisting instead of writing through.
package cache

import (
	"sync"

	"github.com/iliyamo/mock-booking-api/internal/model"
)

// BookingCache maps booking ids to the last snapshot read from the store.
// Entries never expire and the map is unbounded; staleness is prevented by
// the writers calling Invalidate after every update or delete.
type BookingCache struct {
	mu       sync.RWMutex
	bookings map[int]model.Booking
	// gens counts invalidations per id, epoch counts Clear calls.  Together
	// they let a miss-path reader detect that a writer evicted the id while
	// it was loading from the store.
	gens  map[int]uint64
	epoch uint64
}

// Ticket is taken before a cache-miss read and presented to Fill.
type Ticket struct {
	id    int
	gen   uint64
	epoch uint64
}

func NewBookingCache() *BookingCache {
	return &BookingCache{
		bookings: make(map[int]model.Booking),
		gens:     make(map[int]uint64),
	}
}

// Get returns the cached snapshot for id, if any.
func (c *BookingCache) Get(id int) (model.Booking, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bookings[id]
	return b, ok
}

// Put stores b under id, replacing any existing entry.
func (c *BookingCache) Put(id int, b model.Booking) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bookings[id] = b
}

// Ticket records the invalidation state of id.
func (c *BookingCache) Ticket(id int) Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Ticket{id: id, gen: c.gens[id], epoch: c.epoch}
}

// Fill stores b under the ticket's id unless the id was invalidated or the
// cache cleared after the ticket was taken.  It reports whether b was stored.
func (c *BookingCache) Fill(t Ticket, b model.Booking) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[t.id] != t.gen || c.epoch != t.epoch {
		return false
	}
	c.bookings[t.id] = b
	return true
}

// Invalidate drops the entry for id.  Missing entries are not an error.
func (c *BookingCache) Invalidate(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bookings, id)
	c.gens[id]++
}

// Clear drops every entry.
func (c *BookingCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bookings = make(map[int]model.Booking)
	c.gens = make(map[int]uint64)
	c.epoch++
}

// Len returns the number of cached bookings.
func (c *BookingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bookings)
}
