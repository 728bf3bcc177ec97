// internal/cache/memo.go
//
// Keyed invocation memo.
//
// Context
// -------
// Memo wraps an expensive call so identical keys resolve to the stored
// result without re-invoking it.  Concurrent callers for the same key share
// a single in-flight call through singleflight.  Only successful results
// are stored; a failed call leaves the key absent so the next caller
// retries.
package cache

import "golang.org/x/sync/singleflight"

// Memo is safe for concurrent use.  The zero value is not usable; call
// NewMemo.
type Memo struct {
	store *LRU
	sfg   singleflight.Group
}

// NewMemo returns a Memo bounded to maxEntries (0 keeps everything).
func NewMemo(maxEntries int) *Memo {
	return &Memo{store: New(maxEntries)}
}

// Do returns the stored value for key, or runs fn once and stores its
// result.  hit reports whether the value came from the store.
func (m *Memo) Do(key string, fn func() (any, error)) (val any, hit bool, err error) {
	if v, ok := m.store.Get(key); ok {
		return v, true, nil
	}

	v, err, _ := m.sfg.Do(key, func() (any, error) {
		// Double-check after singleflight barrier.
		if v, ok := m.store.Get(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		m.store.Add(key, v)
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, false, nil
}

// Get returns the stored value without invoking anything.
func (m *Memo) Get(key string) (any, bool) { return m.store.Get(key) }

// Forget drops one key.
func (m *Memo) Forget(key string) {
	m.store.Remove(key)
	m.sfg.Forget(key)
}

// Clear drops every stored result.
func (m *Memo) Clear() { m.store.Purge() }

// Len reports the number of stored results.
func (m *Memo) Len() int { return m.store.Len() }
