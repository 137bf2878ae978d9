package asynctask

// localCache is the registry.informers analogue: a label→id index plus
// an insertion-ordered id→Link map for exactly one (kind, group) pair.
type localCache struct {
	labels map[any]any
	links  map[any]*Link
	order  []any
}

func newLocalCache() *localCache {
	return &localCache{labels: map[any]any{}, links: map[any]*Link{}}
}

// insert installs l, indexing its label if it has one. l.cache is set so
// the Link can later be removed without the caller re-resolving which
// cache it lives in.
func (c *localCache) insert(l *Link) {
	c.links[l.ID] = l
	c.order = append(c.order, l.ID)
	if l.Label != nil {
		c.labels[l.Label] = l.ID
	}
	l.cache = c

	if len(c.order) > 2*len(c.links)+8 {
		c.compact()
	}
}

// compact drops ids whose Link has already been removed from order. It
// is called opportunistically by insert, never required for correctness
// — snapshot already filters by presence in links — only to keep order
// from growing without bound under long-running high-churn groups (e.g.
// a busy interval/listener group that keeps adding and removing labels).
func (c *localCache) compact() {
	fresh := make([]any, 0, len(c.links))
	for _, id := range c.order {
		if _, ok := c.links[id]; ok {
			fresh = append(fresh, id)
		}
	}
	c.order = fresh
}

// snapshot returns every currently live Link in insertion order. The
// caller may clear any of them while iterating the result without
// affecting the slice itself.
func (c *localCache) snapshot() []*Link {
	out := make([]*Link, 0, len(c.links))
	for _, id := range c.order {
		if l, ok := c.links[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// kindCache holds the root (ungrouped) cache for a Kind plus one cache
// per named group.
type kindCache struct {
	root   *localCache
	groups map[string]*localCache
}

// registry is the top-level kind→group→localCache index.
type registry struct {
	kinds map[Kind]*kindCache
}

func newRegistry() *registry {
	return &registry{kinds: map[Kind]*kindCache{}}
}

// cache resolves the localCache for (kind, group), creating both the
// kindCache and the group entry on demand. group == "" addresses the
// kind's root cache.
func (r *registry) cache(kind Kind, group string) *localCache {
	kc, ok := r.kinds[kind]
	if !ok {
		kc = &kindCache{root: newLocalCache(), groups: map[string]*localCache{}}
		r.kinds[kind] = kc
	}
	if group == "" {
		return kc.root
	}
	lc, ok := kc.groups[group]
	if !ok {
		lc = newLocalCache()
		kc.groups[group] = lc
	}
	return lc
}

// peek resolves (kind, group) without creating it, for read-only lookups
// such as clearAsync where a miss simply means "nothing to clear".
func (r *registry) peek(kind Kind, group string) (*localCache, bool) {
	kc, ok := r.kinds[kind]
	if !ok {
		return nil, false
	}
	if group == "" {
		return kc.root, true
	}
	lc, ok := kc.groups[group]
	return lc, ok
}
