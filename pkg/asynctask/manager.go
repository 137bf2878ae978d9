package asynctask

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Manager is the owner-scoped task coordinator. Construct one per host
// object with NewManager; Managers never share state with one another.
type Manager struct {
	mu       sync.Mutex
	registry *registry

	log     logr.Logger
	clock   Clock
	frames  FrameSource
	metrics *metricsRecorder
	tracer  trace.Tracer

	panicHandler func(kind Kind, recovered any)
}

// ManagerOption configures a Manager at construction time.
type ManagerOption func(*Manager)

// WithLogger overrides the discard logger NewManager installs by default.
func WithLogger(l logr.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// WithClock overrides the real-time Clock used by the timer-family
// adapters. Tests inject a fake Clock for deterministic scheduling.
func WithClock(c Clock) ManagerOption {
	return func(m *Manager) { m.clock = c }
}

// WithFrameSource overrides the default ~60Hz animation-frame/idle-
// callback source.
func WithFrameSource(f FrameSource) ManagerOption {
	return func(m *Manager) { m.frames = f }
}

// WithTracer overrides the tracer NewManager otherwise resolves from the
// global OpenTelemetry tracer provider. Registration and clearing of every
// task are recorded as spans under it.
func WithTracer(t trace.Tracer) ManagerOption {
	return func(m *Manager) { m.tracer = t }
}

// WithPanicHandler installs a sink for panics recovered from task
// payloads. Without one, a payload panic propagates and crashes its
// goroutine exactly as it would without the coordinator in the way — the
// coordinator does not silently wrap user errors.
func WithPanicHandler(h func(kind Kind, recovered any)) ManagerOption {
	return func(m *Manager) { m.panicHandler = h }
}

// NewManager constructs a ready-to-use Manager with a real Clock, a
// default FrameSource built on that Clock, a discard logger, and fresh
// Prometheus collectors (see Manager.Collectors).
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		registry: newRegistry(),
		log:      logr.Discard(),
		clock:    realClock{},
		metrics:  newMetricsRecorder(),
		tracer:   otel.Tracer("go.datum.net/asynctask"),
	}
	for _, o := range opts {
		o(m)
	}
	if m.frames == nil {
		m.frames = newDefaultFrameSource(m.clock)
	}
	return m
}

// linkSpec is what an adapter constructs to register one task. start is
// called outside the Manager's mutex — it may invoke arbitrary wiring
// code (subscribing to an emitter, issuing a request) but must not
// synchronously invoke the fire callback it is given; real primitives
// never do, since they schedule onto their own goroutine or driver loop.
type linkSpec struct {
	kind       Kind
	group      string
	label      any
	join       JoinPolicy
	objName    string
	onClear    []ClearHook
	onComplete []CompletionHook
	isInterval bool
	start      func(link *Link) (id any, obj any, err error)
	destroy    destroyFunc
}

// setAsync is the generic registration engine shared by every primitive
// adapter: it resolves the (kind, group) cache, applies the join policy
// against any label collision, starts the primitive, installs the Link,
// and — for JoinNone/JoinReplace — cascades the clear of whatever the new
// Link displaced.
func (m *Manager) setAsync(spec linkSpec) (any, error) {
	_, span := m.tracer.Start(context.Background(), "asynctask.register",
		trace.WithAttributes(attribute.String("kind", string(spec.kind)), attribute.String("group", spec.group)))
	defer span.End()

	m.mu.Lock()
	cache := m.registry.cache(spec.kind, spec.group)

	var prior *Link
	if spec.label != nil {
		if priorID, ok := cache.labels[spec.label]; ok {
			if p, ok := cache.links[priorID]; ok {
				if spec.join == JoinMerge {
					m.mu.Unlock()
					// The new call's payload is discarded, but its hooks are
					// not: spec.md §3 promises that the prior's eventual
					// completion "notifies the late arrival via onComplete",
					// and if the prior is cleared instead of completing the
					// late caller must observe that too. Attach both chains
					// to the still-live prior Link before handing back its id.
					for _, h := range spec.onComplete {
						p.addOnComplete(h)
					}
					for _, h := range spec.onClear {
						p.addOnClear(h)
					}
					return p.ID, nil
				}
				prior = p
			}
		}
	}
	m.mu.Unlock()

	link := &Link{
		Kind:       spec.kind,
		Group:      spec.group,
		Label:      spec.label,
		ObjName:    spec.objName,
		isInterval: spec.isInterval,
		destroy:    spec.destroy,
		onClear:    append([]ClearHook{}, spec.onClear...),
		onComplete: append([]CompletionHook{}, spec.onComplete...),
	}

	id, obj, err := spec.start(link)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	link.ID = id
	link.Obj = obj

	m.mu.Lock()
	cache.insert(link)
	m.mu.Unlock()

	m.metrics.observeStart(spec.kind)
	m.log.V(2).Info("task registered", "kind", spec.kind, "group", spec.group, "label", spec.label, "id", id)

	if prior != nil {
		ctx := CancelContext{Kind: spec.kind, Group: spec.group, Label: spec.label, Link: prior, Type: ReasonClearAsync}
		if spec.join == JoinReplace {
			ctx.ReplacedBy = link
		}
		if err := m.clearLink(prior, ctx); err != nil {
			m.log.Error(err, "cascade clear of replaced task failed", "kind", spec.kind, "label", spec.label)
		}
	}

	return id, nil
}

// ClearOptions selects which Link(s) clearAsync targets. The zero value
// (no ID, no Label, Group == "") targets every Link in the kind's root
// cache.
type ClearOptions struct {
	ID     any
	Label  any
	Group  string
	Reason any
}

// clearAsync clears the Link(s) in (kind, opts.Group) matching opts.ID
// and/or opts.Label, or every Link in that cache if neither is set.
func (m *Manager) clearAsync(kind Kind, opts ClearOptions) error {
	m.mu.Lock()
	cache, ok := m.registry.peek(kind, opts.Group)
	if !ok {
		m.mu.Unlock()
		return nil
	}

	var targets []*Link
	switch {
	case opts.ID != nil && opts.Label != nil:
		if labelID, has := cache.labels[opts.Label]; has && labelID == opts.ID {
			if l, ok := cache.links[opts.ID]; ok {
				targets = []*Link{l}
			}
		}
	case opts.Label != nil:
		if id, has := cache.labels[opts.Label]; has {
			if l, ok := cache.links[id]; ok {
				targets = []*Link{l}
			}
		}
	case opts.ID != nil:
		if l, ok := cache.links[opts.ID]; ok {
			targets = []*Link{l}
		}
	default:
		targets = cache.snapshot()
	}
	m.mu.Unlock()

	var firstErr error
	for _, l := range targets {
		ctx := CancelContext{Kind: kind, Group: opts.Group, Label: l.Label, Link: l, Type: ReasonClearAsync, Reason: opts.Reason}
		if err := m.clearLink(l, ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// clearAllAsync clears every Link of kind across its root cache and every
// group.
func (m *Manager) clearAllAsync(kind Kind, reason any) error {
	m.mu.Lock()
	kc, ok := m.registry.kinds[kind]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	caches := make([]*localCache, 0, len(kc.groups)+1)
	caches = append(caches, kc.root)
	for _, c := range kc.groups {
		caches = append(caches, c)
	}
	var targets []*Link
	for _, c := range caches {
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

// clearLink removes l from the registry (a no-op if it was already
// removed, whether by an earlier clear or by natural completion), then
// runs its onClear hooks followed by its destructor.
func (m *Manager) clearLink(l *Link, ctx CancelContext) error {
	_, span := m.tracer.Start(context.Background(), "asynctask.clear",
		trace.WithAttributes(attribute.String("kind", string(l.Kind)), attribute.String("group", l.Group)))
	defer span.End()

	m.mu.Lock()
	if l.removed {
		m.mu.Unlock()
		return nil
	}
	m.removeLinkLocked(l)
	destroy := l.destroy
	id := l.ID
	obj := l.Obj
	kind := l.Kind
	m.mu.Unlock()

	m.metrics.observeClear(kind)

	clearErr := l.fireClear(ctx)

	var destroyErr error
	if destroy != nil {
		destroyErr = destroy(id, obj, ctx)
	}
	if clearErr != nil {
		span.RecordError(clearErr)
		return clearErr
	}
	if destroyErr != nil {
		span.RecordError(destroyErr)
	}
	return destroyErr
}

// removeLinkLocked detaches l from its cache and marks it removed. Must
// be called with m.mu held.
func (m *Manager) removeLinkLocked(l *Link) {
	if l.cache != nil {
		delete(l.cache.links, l.ID)
		if l.Label != nil {
			if cur, ok := l.cache.labels[l.Label]; ok && cur == l.ID {
				delete(l.cache.labels, l.Label)
			}
		}
	}
	l.removed = true
}

// fireOnce implements the single-shot completion path shared by every
// self-removing kind: the Link is removed from the registry before run
// is invoked, so a re-entrant registration under the same label — made
// either inside run or inside a completion hook it triggers — always
// finds an empty slot, never a stale one.
func (m *Manager) fireOnce(link *Link, run func() Result) {
	m.mu.Lock()
	if link.removed {
		m.mu.Unlock()
		return
	}
	m.removeLinkLocked(link)
	m.mu.Unlock()

	m.metrics.observeComplete(link.Kind)
	res := m.safeRun(link, run)
	link.complete(res)
}

// completeOnce is fireOnce's variant for tasks (requests, Wait's poll
// loop) whose Result is already known rather than produced by invoking a
// payload closure.
func (m *Manager) completeOnce(link *Link, res Result) {
	m.mu.Lock()
	if link.removed {
		m.mu.Unlock()
		return
	}
	m.removeLinkLocked(link)
	m.mu.Unlock()

	m.metrics.observeComplete(link.Kind)
	link.complete(res)
}

// fireRepeating invokes run for an interval-like Link on every tick,
// unless the Link has since been cleared.
func (m *Manager) fireRepeating(link *Link, run func()) {
	m.mu.Lock()
	removed := link.removed
	m.mu.Unlock()
	if removed {
		return
	}
	m.safeRunVoid(link, run)
}

func (m *Manager) safeRun(link *Link, run func() Result) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			if m.panicHandler != nil {
				m.panicHandler(link.Kind, r)
				res = Result{Err: fmt.Errorf("asynctask: payload panic: %v", r)}
				return
			}
			panic(r)
		}
	}()
	return run()
}

func (m *Manager) safeRunVoid(link *Link, run func()) {
	defer func() {
		if r := recover(); r != nil {
			if m.panicHandler != nil {
				m.panicHandler(link.Kind, r)
				return
			}
			panic(r)
		}
	}()
	run()
}
