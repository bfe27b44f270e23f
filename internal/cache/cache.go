package cache

// Cache is the get-or-compute layer over a Store. Storage failures are
// never fatal: caching is best-effort, and a freshly computed result is
// always returned to the caller even when the write fails.
type Cache struct {
	store *Store
}

// New wraps a Store. A nil store disables caching entirely: every call
// computes.
func New(store *Store) *Cache {
	return &Cache{store: store}
}

// GetOrCompute returns the serialized result for fingerprint, computing
// and storing it on a miss. The returned hit flag reports whether the
// result came from the cache. Lookup errors degrade to a miss; store
// errors are dropped after compute succeeds.
func (c *Cache) GetOrCompute(fingerprint string, compute func() ([]byte, error)) (data []byte, hit bool, err error) {
	if c.store != nil {
		if cached, ok, err := c.store.Get(fingerprint); err == nil && ok {
			return cached, true, nil
		}
	}

	data, err = compute()
	if err != nil {
		return nil, false, err
	}

	if c.store != nil {
		// Best effort. The result is complete at this point, so a
		// failed write only costs a recompute next time.
		_ = c.store.Put(fingerprint, data)
	}
	return data, false, nil
}
