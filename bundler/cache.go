package bundler

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/text/unicode/norm"

	"github.com/erraggy/oasref/source"
)

// defaultKeyLength is the number of hex digits used for a content key
// before collisions force a longer one.
const defaultKeyLength = 7

var errNoPlugin = errors.New("no plugin can fetch this identifier")

// Cache holds fetched documents and the keys assigned to them. Sharing a
// Cache between Bundle calls (WithCache) fetches each identifier at most
// once across all of them.
//
// A Cache is safe for concurrent use. The documents it holds are mutated
// by bundling, so Bundle calls sharing a Cache should run one at a time.
type Cache struct {
	mu      sync.Mutex
	futures map[string]*future
	keys    map[string]string // identifier -> key
	owners  map[string]string // key -> identifier
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		futures: make(map[string]*future),
		keys:    make(map[string]string),
		owners:  make(map[string]string),
	}
}

// Len returns the number of identifiers fetched or being fetched.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.futures)
}

// future is a fetch that may still be running.
type future struct {
	done    chan struct{}
	value   any
	err     error
	claimed bool
}

func (f *future) wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load returns the future for id, dispatching the fetch if it has not been
// started. sem bounds the number of fetches in flight.
func (c *Cache) load(ctx context.Context, id string, plugins source.Plugins, sem *semaphore.Weighted) *future {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.futures[id]; ok {
		return f
	}
	f := &future{done: make(chan struct{})}
	c.futures[id] = f

	plugin := plugins.Find(id)
	if plugin == nil {
		f.err = errNoPlugin
		close(f.done)
		return f
	}

	go func() {
		defer close(f.done)
		if err := sem.Acquire(ctx, 1); err != nil {
			f.err = err
			c.forget(id, f)
			return
		}
		defer sem.Release(1)

		content, err := plugin.Fetch(ctx, id)
		if err != nil {
			f.err = fmt.Errorf("%s: %w", plugin.Name(), err)
			if ctx.Err() != nil {
				c.forget(id, f)
			}
			return
		}
		f.value = content.Value
	}()
	return f
}

// forget drops a future that failed because its context ended, so a later
// call can retry.
func (c *Cache) forget(id string, f *future) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.futures[id] == f {
		delete(c.futures, id)
	}
}

// claim reports whether the caller is the first to use the fetched value
// of f.
func (c *Cache) claim(f *future) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f.claimed {
		return false
	}
	f.claimed = true
	return true
}

// key returns the externals key for id. Keys are stable for the life of the
// cache and never shared by two identifiers. compress, when set, replaces
// the default SHA-1 prefix; collisions get a numeric suffix.
func (c *Cache) key(id string, compress func(string) string) string {
	id = norm.NFC.String(id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if k, ok := c.keys[id]; ok {
		return k
	}

	var k string
	if compress != nil {
		base := compress(id)
		k = base
		for n := 1; c.taken(k, id); n++ {
			k = base + "-" + strconv.Itoa(n)
		}
	} else {
		sum := sha1.Sum([]byte(id))
		digest := hex.EncodeToString(sum[:])
		k = digest[:defaultKeyLength]
		for n := defaultKeyLength + 1; c.taken(k, id); n++ {
			if n > len(digest) {
				k = digest + "-" + strconv.Itoa(n-len(digest))
				continue
			}
			k = digest[:n]
		}
	}

	c.keys[id] = k
	c.owners[k] = id
	return k
}

func (c *Cache) taken(k, id string) bool {
	owner, ok := c.owners[k]
	return ok && owner != id
}
