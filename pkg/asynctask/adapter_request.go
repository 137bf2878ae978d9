package asynctask

import "fmt"

// Request is a thenable, abortable remote call — a wrapped RPC or HTTP
// round trip. It settles exactly once via Then's resolve or reject.
type Request interface {
	// Then registers the request's settlement callbacks. A conforming
	// Request invokes exactly one of resolve or reject exactly once.
	Then(resolve func(value any), reject func(err error))
	// Abort cancels an in-flight request. reason is the successor task's
	// id when the request was displaced by a join=Replace registration,
	// the caller-supplied clear reason otherwise.
	Abort(reason any) error
}

// SetRequest registers an abort-capable, thenable Request. Settling via
// Then removes the Link from the registry exactly once, following the
// same remove-before-call rule as every other single-shot kind.
func (m *Manager) SetRequest(req Request, opts Options) (any, error) {
	return m.setAsync(linkSpec{
		kind: KindRequest, group: opts.Group, label: opts.Label, join: opts.Join,
		objName: opts.ObjName, onClear: opts.OnClear, onComplete: opts.OnComplete,
		start: func(link *Link) (any, any, error) {
			req.Then(
				func(v any) { m.completeOnce(link, Result{Value: v}) },
				func(err error) { m.completeOnce(link, Result{Err: err}) },
			)
			return req, req, nil
		},
		destroy: abortRequestDestroy,
	})
}

func (m *Manager) ClearRequest(opts ClearOptions) error { return m.clearAsync(KindRequest, opts) }

func abortRequestDestroy(id, obj any, ctx CancelContext) error {
	r, ok := obj.(Request)
	if !ok {
		return fmt.Errorf("asynctask: request Link held non-Request object %T", obj)
	}
	var reason any
	if ctx.ReplacedBy != nil {
		reason = ctx.ReplacedBy.ID
	} else {
		reason = ctx.Reason
	}
	return r.Abort(reason)
}
