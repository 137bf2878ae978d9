package asynctask

import "github.com/google/uuid"

// DragOptions configures a DragSequence composite recipe.
type DragOptions struct {
	// Group names the listener group the persistent mousedown/touchstart
	// binding lives in; a single ClearGroup on it permanently disables the
	// recipe. Each individual drag gesture gets its own generated
	// sub-group for the move/end pair, torn down when that gesture ends —
	// this group is never touched by that teardown. Defaults to a
	// generated "dnd-<uuid>" name.
	Group string
	// Document is the Emitter move/end listeners attach to once the
	// gesture starts. Defaults to element.
	Document Emitter
	OnMove   EventHandler
	OnEnd    EventHandler
}

// DragSequence registers mousedown/touchstart on element, persistently,
// under its own group; every time it fires it installs a fresh
// mousemove/touchmove listener and a one-shot mouseup/touchend listener
// on opts.Document under a newly generated per-gesture group, and tears
// down just that gesture's listeners — never the mousedown binding
// itself — as soon as the end event fires. This makes the recipe
// reusable: a second mousedown after the first gesture ends starts a new
// gesture the same way the first one did. It returns the name of the
// persistent group (opts.Group or the generated one).
func (m *Manager) DragSequence(element Emitter, opts DragOptions) (any, error) {
	doc := opts.Document
	if doc == nil {
		doc = element
	}
	group := opts.Group
	if group == "" {
		group = "dnd-" + uuid.NewString()
	}

	start := func(args ...any) {
		gesture := group + "/gesture-" + uuid.NewString()

		_, _ = m.On(doc, "mousemove touchmove", func(a ...any) {
			if opts.OnMove != nil {
				opts.OnMove(a...)
			}
		}, ListenOptions{Options: Options{Group: gesture}})

		_, _ = m.Once(doc, "mouseup touchend", func(a ...any) {
			if opts.OnEnd != nil {
				opts.OnEnd(a...)
			}
			_ = m.ClearGroup(KindListener, gesture, nil)
		}, ListenOptions{Options: Options{Group: gesture}})
	}

	ids, err := m.On(element, "mousedown touchstart", start, ListenOptions{Options: Options{Group: group}})
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return group, nil
}
