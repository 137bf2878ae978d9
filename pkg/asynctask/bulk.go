package asynctask

import "regexp"

// clearAllOrder is ClearAll's fixed cross-kind teardown order: listeners
// (and the dnd composite, itself built from listeners) unwind first so
// their unsubscriptions never race a timer or worker they might depend
// on, then the timer family, then worker/request/proxy.
var clearAllOrder = []Kind{
	KindListener, KindDnD,
	KindImmediate, KindTimeout, KindInterval, KindFrame, KindIdle,
	KindWorker, KindRequest, KindProxy,
}

// ClearGroup clears every Link in exactly one named group of kind.
func (m *Manager) ClearGroup(kind Kind, group string, reason any) error {
	return m.clearAsync(kind, ClearOptions{Group: group, Reason: reason})
}

// ClearGroupPattern clears every group of kind whose name matches
// pattern.
func (m *Manager) ClearGroupPattern(kind Kind, pattern *regexp.Regexp, reason any) error {
	m.mu.Lock()
	kc, ok := m.registry.kinds[kind]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	var matched []*localCache
	for name, c := range kc.groups {
		if pattern.MatchString(name) {
			matched = append(matched, c)
		}
	}
	var targets []*Link
	for _, c := range matched {
		targets = append(targets, c.snapshot()...)
	}
	m.mu.Unlock()

	var firstErr error
	for _, l := range targets {
		ctx := CancelContext{Kind: kind, Group: l.Group, Label: l.Label, Link: l, Type: ReasonClearAsync, Reason: reason}
		if err := m.clearLink(l, ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ClearAllOptions selects the scope of a ClearAll call. The zero value
// clears everything.
type ClearAllOptions struct {
	Label  any
	Group  *regexp.Regexp
	Reason any
}

// ClearAll tears every kind down in clearAllOrder. With Label set, it
// clears just that label across every kind, in the root cache and in
// every group; with Group set (a regex), it
// clears every matching group across every kind; with neither, it clears
// everything the Manager still holds.
func (m *Manager) ClearAll(opts ClearAllOptions) error {
	var firstErr error
	note := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	switch {
	case opts.Group != nil:
		for _, k := range clearAllOrder {
			note(m.ClearGroupPattern(k, opts.Group, opts.Reason))
		}
	case opts.Label != nil:
		for _, k := range clearAllOrder {
			groups := []string{""}
			m.mu.Lock()
			if kc, ok := m.registry.kinds[k]; ok {
				for name := range kc.groups {
					groups = append(groups, name)
				}
			}
			m.mu.Unlock()
			for _, g := range groups {
				note(m.clearAsync(k, ClearOptions{Label: opts.Label, Group: g, Reason: opts.Reason}))
			}
		}
	default:
		for _, k := range clearAllOrder {
			note(m.clearAllAsync(k, opts.Reason))
		}
	}
	return firstErr
}
