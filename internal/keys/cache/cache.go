// Package cache implements the in-process database key cache: a bounded map
// of UUID to key material with LRU eviction, TTL expiry, and a freshness
// index readable without the writer lock.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"

	keysDomain "github.com/allisson/aegis/internal/keys/domain"
)

// LastAccessedInactivity is how long an entry may sit without a recency bump
// before a lookup schedules one. Bumps are amortized: a hot entry gets at most
// one bump per this interval, keeping recency writes off the lookup hot path.
const LastAccessedInactivity = 10 * time.Second

// Entry is a cached database key together with its bookkeeping.
type Entry struct {
	UUID         uuid.UUID
	Key          []byte    // the database key; immutable for the entry's lifetime
	Counter      uint64    // recency sequence number; totally orders insert/bump events
	LastAccessed time.Time // last observed access
	ExpiresAt    time.Time // insertion time + max age; never moved by bumps

	bumpPending bool
	elem        *list.Element
}

// Cache holds database keys under three coordinated indexes:
//
//   - byUUID: UUID → entry, the primary lookup path
//   - byRecency: entries ordered by Counter, front = least recently used
//   - freshness: UUID → ExpiresAt, readable concurrently with writers
//
// All mutation happens under mu; the key service is the sole writer. The
// freshness index is a sync.Map so encrypt/decrypt callers can run the fast
// freshness check on any goroutine without touching the writer lock. A reader
// may briefly observe freshness for an entry a sweep just deleted; the
// subsequent Lookup reports the miss and the caller falls back to the key
// manager, so the race is benign.
type Cache struct {
	mu          sync.Mutex
	byUUID      map[uuid.UUID]*Entry
	byRecency   *list.List
	freshness   sync.Map
	nextCounter uint64

	now func() time.Time
}

// New creates an empty key cache.
func New() *Cache {
	return &Cache{
		byUUID:    make(map[uuid.UUID]*Entry),
		byRecency: list.New(),
		now:       time.Now,
	}
}

// Insert installs a database key for id. An existing entry for the same UUID
// is deleted first. The new entry receives the next counter, the current time
// as last access, and now+maxAge as expiry. If the insert pushes the cache
// above limit, the least recently used entry (smallest counter) is evicted;
// the bound is crossed by at most one, so exactly one eviction suffices.
//
// Returns the UUID of the evicted entry, if any.
func (c *Cache) Insert(id uuid.UUID, key []byte, limit int, maxAge time.Duration) (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.byUUID[id]; ok {
		c.removeLocked(old)
	}

	now := c.now()
	entry := &Entry{
		UUID:         id,
		Key:          key,
		Counter:      c.nextCounter,
		LastAccessed: now,
		ExpiresAt:    now.Add(maxAge),
	}
	c.nextCounter++

	// Counters only grow, so appending keeps byRecency ordered by Counter.
	entry.elem = c.byRecency.PushBack(entry)
	c.byUUID[id] = entry
	c.freshness.Store(id, entry.ExpiresAt)

	if len(c.byUUID) > limit {
		victim := c.byRecency.Front().Value.(*Entry)
		c.removeLocked(victim)
		return victim.UUID, true
	}

	return uuid.Nil, false
}

// Lookup returns the database key for id if present. On a hit it also reports
// whether the caller should schedule a recency bump: true when the entry has
// not been accessed within LastAccessedInactivity and no bump is already
// pending, so each inactivity window schedules at most one bump.
func (c *Cache) Lookup(id uuid.UUID) (key []byte, needsBump bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.byUUID[id]
	if !ok {
		return nil, false, false
	}

	if !entry.bumpPending && c.now().Sub(entry.LastAccessed) > LastAccessedInactivity {
		entry.bumpPending = true
		needsBump = true
	}

	return entry.Key, needsBump, true
}

// Bump refreshes the recency of id: it assigns a new counter and last access
// time and moves the entry to the most-recent end of byRecency. The expiry is
// untouched. Bumps are best effort; a bump for an entry that was evicted or
// swept in the meantime is silently dropped, and a bump for a UUID that was
// re-inserted in the meantime applies to the new entry.
func (c *Cache) Bump(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.byUUID[id]
	if !ok {
		return
	}

	entry.Counter = c.nextCounter
	c.nextCounter++
	entry.LastAccessed = c.now()
	entry.bumpPending = false
	c.byRecency.MoveToBack(entry.elem)
}

// IsFresh reports whether id has an unexpired entry according to the
// freshness index alone. It never takes the writer lock, which makes it the
// fast-path gate for encrypt/decrypt. The answer is advisory: a stale true is
// corrected by the Lookup miss that follows.
func (c *Cache) IsFresh(id uuid.UUID) bool {
	value, ok := c.freshness.Load(id)
	if !ok {
		return false
	}
	return !value.(time.Time).Before(c.now())
}

// SweepExpired deletes every entry whose expiry has passed from all three
// indexes. The removal counts per index must agree; a mismatch means a prior
// write was lost and surfaces as ErrIndexDivergence, which the coordinator
// treats as fatal.
func (c *Cache) SweepExpired() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var fromMap, fromList, fromFreshness int

	for elem := c.byRecency.Front(); elem != nil; {
		next := elem.Next()
		entry := elem.Value.(*Entry)

		if !entry.ExpiresAt.After(now) {
			if _, ok := c.byUUID[entry.UUID]; ok {
				delete(c.byUUID, entry.UUID)
				fromMap++
			}
			c.byRecency.Remove(elem)
			fromList++
			if _, loaded := c.freshness.LoadAndDelete(entry.UUID); loaded {
				fromFreshness++
			}
		}

		elem = next
	}

	if fromMap != fromList || fromList != fromFreshness {
		return 0, keysDomain.ErrIndexDivergence
	}

	return fromMap, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byUUID)
}

// Purge zeros all cached key material and empties the cache. Called at
// service shutdown; the cache is transient and rebuilds on demand.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, entry := range c.byUUID {
		for i := range entry.Key {
			entry.Key[i] = 0
		}
		delete(c.byUUID, id)
		c.freshness.Delete(id)
	}
	c.byRecency.Init()
}

// removeLocked deletes entry from all three indexes. Caller holds mu.
func (c *Cache) removeLocked(entry *Entry) {
	delete(c.byUUID, entry.UUID)
	c.byRecency.Remove(entry.elem)
	c.freshness.Delete(entry.UUID)
}
