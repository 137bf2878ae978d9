package asynctask

import (
	"fmt"
	"strings"
)

// EventHandler receives whatever arguments an Emitter dispatches for one
// event.
type EventHandler func(args ...any)

// EventOptions mirrors the capture/once/passive bag addEventListener
// accepts in a browser. Emitters that care about it implement
// addEventListenerSubscriber / removeEventListenerUnsubscriber; plain
// emitters simply ignore it.
type EventOptions struct {
	Capture bool
	Once    bool
	Passive bool
}

// Emitter is any object exposing at least one of On, AddListener, or
// AddEventListener to subscribe, and at least one of Off, RemoveListener,
// or RemoveEventListener to unsubscribe, optionally a native Once.
type Emitter any

type onSubscriber interface {
	On(event string, h EventHandler) error
}
type addListenerSubscriber interface {
	AddListener(event string, h EventHandler) error
}
type addEventListenerSubscriber interface {
	AddEventListener(event string, h EventHandler, opts EventOptions) error
}
type onceSubscriber interface {
	Once(event string, h EventHandler) error
}

type offUnsubscriber interface {
	Off(event string, h EventHandler) error
}
type removeListenerUnsubscriber interface {
	RemoveListener(event string, h EventHandler) error
}
type removeEventListenerUnsubscriber interface {
	RemoveEventListener(event string, h EventHandler, opts EventOptions) error
}

// subscribe wires h to event on e, preferring a native Once when
// wantSingle is set and e exposes one. It reports whether a native
// once-shaped subscription was used, so the caller knows whether it still
// owns unsubscribing h after a single fire.
func subscribe(e Emitter, event string, h EventHandler, opts EventOptions, wantSingle bool) (usedNativeOnce bool, err error) {
	if wantSingle {
		if s, ok := e.(onceSubscriber); ok {
			return true, s.Once(event, h)
		}
	}
	if s, ok := e.(onSubscriber); ok {
		return false, s.On(event, h)
	}
	if s, ok := e.(addListenerSubscriber); ok {
		return false, s.AddListener(event, h)
	}
	if s, ok := e.(addEventListenerSubscriber); ok {
		return false, s.AddEventListener(event, h, opts)
	}
	return false, &ConfigurationError{Kind: KindListener, Detail: fmt.Sprintf("emitter %T exposes none of On/AddListener/AddEventListener", e)}
}

func unsubscribe(e Emitter, event string, h EventHandler, opts EventOptions) error {
	if s, ok := e.(offUnsubscriber); ok {
		return s.Off(event, h)
	}
	if s, ok := e.(removeListenerUnsubscriber); ok {
		return s.RemoveListener(event, h)
	}
	if s, ok := e.(removeEventListenerUnsubscriber); ok {
		return s.RemoveEventListener(event, h, opts)
	}
	return &ConfigurationError{Kind: KindListener, Detail: fmt.Sprintf("emitter %T exposes none of Off/RemoveListener/RemoveEventListener", e)}
}

// ListenOptions extends Options with listener-specific knobs.
type ListenOptions struct {
	Options
	// Single makes the subscription fire (and self-remove) at most once.
	Single bool
	Event  EventOptions
}

// On subscribes h to one or more space-separated events on e. Each event
// produces an independent Link; by default each lives in its own group
// named after the event — so Off(ClearOptions{Group: event}) targets just
// that event — unless opts.Group forces every event in the call to share
// one group.
func (m *Manager) On(e Emitter, events string, h EventHandler, opts ListenOptions) ([]any, error) {
	names := strings.Fields(events)
	ids := make([]any, 0, len(names))
	for _, event := range names {
		group := opts.Group
		if group == "" {
			group = event
		}
		evt := event

		id, err := m.setAsync(linkSpec{
			kind: KindListener, group: group, label: opts.Label, join: opts.Join,
			objName: opts.ObjName, onClear: opts.OnClear, onComplete: opts.OnComplete, isInterval: !opts.Single,
			start: func(link *Link) (any, any, error) {
				var handler EventHandler
				var native bool
				handler = func(args ...any) {
					if opts.Single {
						m.fireOnce(link, func() Result {
							h(args...)
							return Result{Value: args}
						})
						if !native {
							_ = unsubscribe(e, evt, handler, opts.Event)
						}
						return
					}
					m.fireRepeating(link, func() { h(args...) })
				}
				usedNative, err := subscribe(e, evt, handler, opts.Event, opts.Single)
				if err != nil {
					return nil, nil, err
				}
				native = usedNative
				return &handler, handler, nil
			},
			destroy: func(id, obj any, ctx CancelContext) error {
				hh, _ := obj.(EventHandler)
				return unsubscribe(e, evt, hh, opts.Event)
			},
		})
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Once subscribes h to fire at most once per event, then self-removes.
func (m *Manager) Once(e Emitter, events string, h EventHandler, opts ListenOptions) ([]any, error) {
	opts.Single = true
	return m.On(e, events, h, opts)
}

// Off clears listener Link(s) matching opts.
func (m *Manager) Off(opts ClearOptions) error { return m.clearAsync(KindListener, opts) }
